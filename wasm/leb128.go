package wasm

import (
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/wasm-gen/errors"
)

// LEB128 encoding utilities for the WebAssembly binary format.
//
// Each encoder is bounded by a bit width. The byte budget is ceil(width/7);
// a value whose natural encoding needs more bytes fails with an overflow
// error instead of being truncated.

// Bit widths used by the binary format.
const (
	Width1  uint = 1
	Width7  uint = 7
	Width32 uint = 32
	Width64 uint = 64
)

// MaxBytes returns the LEB128 byte budget for width.
func MaxBytes(width uint) int {
	return int((width + 6) / 7)
}

// EncodeUnsigned encodes v as unsigned LEB128 within width bits.
func EncodeUnsigned(v uint64, width uint) ([]byte, error) {
	return AppendUnsigned(nil, v, width)
}

// EncodeSigned encodes v as signed LEB128 within width bits.
func EncodeSigned(v int64, width uint) ([]byte, error) {
	return AppendSigned(nil, v, width)
}

// AppendUnsigned appends the unsigned LEB128 encoding of v to dst.
// On overflow dst is returned unchanged along with the error.
func AppendUnsigned(dst []byte, v uint64, width uint) ([]byte, error) {
	var buf [10]byte
	n := putUnsigned(buf[:], v)
	if n > MaxBytes(width) {
		return dst, errors.Overflow(v, width)
	}
	return append(dst, buf[:n]...), nil
}

// AppendSigned appends the signed LEB128 encoding of v to dst.
// On overflow dst is returned unchanged along with the error.
func AppendSigned(dst []byte, v int64, width uint) ([]byte, error) {
	var buf [10]byte
	n := putSigned(buf[:], v)
	if n > MaxBytes(width) {
		return dst, errors.Overflow(v, width)
	}
	return append(dst, buf[:n]...), nil
}

// SizeUnsigned returns the natural encoded length of v.
func SizeUnsigned(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

func putUnsigned(buf []byte, v uint64) int {
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if v == 0 {
			return n
		}
	}
}

func putSigned(buf []byte, v int64) int {
	n := 0
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		buf[n] = b
		n++
	}
	return n
}

// writeUnsigned records the unsigned encoding of x on v.
func writeUnsigned(v Visitor, x uint64, width uint) error {
	var buf [10]byte
	n := putUnsigned(buf[:], x)
	if n > MaxBytes(width) {
		return errors.Overflow(x, width)
	}
	v.Record(buf[:n]...)
	return nil
}

// writeSigned records the signed encoding of x on v.
func writeSigned(v Visitor, x int64, width uint) error {
	var buf [10]byte
	n := putSigned(buf[:], x)
	if n > MaxBytes(width) {
		return errors.Overflow(x, width)
	}
	v.Record(buf[:n]...)
	return nil
}

// writeName records a length-prefixed UTF-8 string.
func writeName(v Visitor, s string) error {
	if !utf8.ValidString(s) {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Value(s).
			Detail("name %s is not valid UTF-8", strconv.QuoteToASCII(s)).
			Build()
	}
	if err := writeUnsigned(v, uint64(len(s)), Width32); err != nil {
		return err
	}
	v.Record([]byte(s)...)
	return nil
}
