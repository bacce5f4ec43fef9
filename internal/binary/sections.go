package binary

import (
	"errors"
	"fmt"
)

const (
	magic   = 0x6D736100
	version = 0x01
)

// RawSection is one top-level section as it appears in the byte stream.
type RawSection struct {
	Payload []byte
	Offset  int // offset of the id byte
	ID      byte
}

// ReadSections checks the header and splits data into sections without
// interpreting their payloads.
func ReadSections(data []byte) ([]RawSection, error) {
	r := NewBytesReader(data)
	m, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if m != magic {
		return nil, r.WrapError("header", fmt.Errorf("bad magic %#08x", m))
	}
	v, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if v != version {
		return nil, r.WrapError("header", fmt.Errorf("unsupported version %d", v))
	}

	var out []RawSection
	for r.Position() < len(data) {
		off := r.Position()
		id, err := r.ReadByte()
		if err != nil {
			return nil, r.WrapError("section", err)
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section", err)
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, r.WrapError("section", err)
		}
		out = append(out, RawSection{ID: id, Offset: off, Payload: payload})
	}
	return out, nil
}

// SectionIDs returns the ids of sections in order.
func SectionIDs(sections []RawSection) []byte {
	ids := make([]byte, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	return ids
}

// Instr is a decoded instruction of the subset package wasm emits.
type Instr struct {
	Args   []int64
	Opcode byte
}

// immediate layouts
const (
	immNone = iota
	immU32
	immS32
	immBlock
	immMem
)

var immLayout = map[byte]int{
	0x02: immBlock, // block
	0x03: immBlock, // loop
	0x0B: immNone,  // end
	0x0C: immU32,   // br
	0x0D: immU32,   // br_if
	0x0F: immNone,  // return
	0x10: immU32,   // call
	0x20: immU32,   // local.get
	0x21: immU32,   // local.set
	0x2D: immMem,   // i32.load8_u
	0x3A: immMem,   // i32.store8
	0x41: immS32,   // i32.const
	0x45: immNone,  // i32.eqz
	0x6A: immNone,  // i32.add
	0x6B: immNone,  // i32.sub
}

// DecodeInstructions decodes a raw instruction stream.
func DecodeInstructions(code []byte) ([]Instr, error) {
	r := NewBytesReader(code)
	var out []Instr
	for r.Position() < len(code) {
		op, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		layout, ok := immLayout[op]
		if !ok {
			return nil, r.WrapError("code", fmt.Errorf("unknown opcode %#02x", op))
		}
		in := Instr{Opcode: op}
		switch layout {
		case immU32:
			v, err := r.ReadUnsigned(32)
			if err != nil {
				return nil, err
			}
			in.Args = []int64{int64(v)}
		case immS32:
			v, err := r.ReadSigned(32)
			if err != nil {
				return nil, err
			}
			in.Args = []int64{v}
		case immBlock:
			v, err := r.ReadSigned(7)
			if err != nil {
				return nil, err
			}
			in.Args = []int64{v}
		case immMem:
			align, err := r.ReadUnsigned(32)
			if err != nil {
				return nil, err
			}
			offset, err := r.ReadUnsigned(32)
			if err != nil {
				return nil, err
			}
			in.Args = []int64{int64(align), int64(offset)}
		}
		out = append(out, in)
	}
	return out, nil
}

// FuncBody is a decoded code-section entry.
type FuncBody struct {
	Locals [][2]int64 // (count, type) runs
	Code   []byte     // instructions including the final end
}

// ReadCodeSection decodes the payload of a code section.
func ReadCodeSection(payload []byte) ([]FuncBody, error) {
	r := NewBytesReader(payload)
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	bodies := make([]FuncBody, 0, n)
	for i := uint32(0); i < n; i++ {
		size, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		raw, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, err
		}
		br := NewBytesReader(raw)
		runs, err := br.ReadU32()
		if err != nil {
			return nil, err
		}
		var body FuncBody
		for j := uint32(0); j < runs; j++ {
			count, err := br.ReadU32()
			if err != nil {
				return nil, err
			}
			t, err := br.ReadSigned(7)
			if err != nil {
				return nil, err
			}
			body.Locals = append(body.Locals, [2]int64{int64(count), t})
		}
		body.Code = raw[br.Position():]
		if len(body.Code) == 0 || body.Code[len(body.Code)-1] != 0x0B {
			return nil, errors.New("function body does not end with end")
		}
		bodies = append(bodies, body)
	}
	return bodies, nil
}
