package wasm

import (
	"fmt"

	"github.com/wippyai/wasm-gen/errors"
)

// Instruction is one instruction of the supported subset. Imm holds the
// immediate matching Opcode, or nil for opcodes without immediates.
type Instruction struct {
	Imm    any
	Opcode byte
}

// BlockImm holds the block type for block and loop.
type BlockImm struct {
	Type BlockType
}

// BranchImm holds the relative label depth for br and br_if.
// Depth 0 is the innermost open block or loop.
type BranchImm struct {
	LabelIdx uint32
}

// CallImm holds the function index for call.
type CallImm struct {
	FuncIdx uint32
}

// LocalImm holds the local index for local.get and local.set.
type LocalImm struct {
	LocalIdx uint32
}

// MemoryImm holds the alignment exponent and static offset of a load or store.
type MemoryImm struct {
	Align  uint32
	Offset uint32
}

// I32Imm holds the constant for i32.const.
type I32Imm struct {
	Value int32
}

// EncodeInstruction appends the encoding of in to dst.
func EncodeInstruction(dst []byte, in Instruction) ([]byte, error) {
	switch in.Opcode {
	case OpI32Add, OpI32Sub, OpI32Eqz, OpEnd, OpReturn:
		if in.Imm != nil {
			return dst, badImmediate(in)
		}
		return append(dst, in.Opcode), nil

	case OpBlock, OpLoop:
		imm, ok := in.Imm.(BlockImm)
		if !ok {
			return dst, badImmediate(in)
		}
		out, err := AppendSigned(append(dst, in.Opcode), int64(imm.Type), Width7)
		if err != nil {
			return dst, err
		}
		return out, nil

	case OpBr, OpBrIf:
		imm, ok := in.Imm.(BranchImm)
		if !ok {
			return dst, badImmediate(in)
		}
		return AppendUnsigned(append(dst, in.Opcode), uint64(imm.LabelIdx), Width32)

	case OpCall:
		imm, ok := in.Imm.(CallImm)
		if !ok {
			return dst, badImmediate(in)
		}
		return AppendUnsigned(append(dst, in.Opcode), uint64(imm.FuncIdx), Width32)

	case OpLocalGet, OpLocalSet:
		imm, ok := in.Imm.(LocalImm)
		if !ok {
			return dst, badImmediate(in)
		}
		return AppendUnsigned(append(dst, in.Opcode), uint64(imm.LocalIdx), Width32)

	case OpI32Load8U, OpI32Store8:
		imm, ok := in.Imm.(MemoryImm)
		if !ok {
			return dst, badImmediate(in)
		}
		out, err := AppendUnsigned(append(dst, in.Opcode), uint64(imm.Align), Width32)
		if err != nil {
			return dst, err
		}
		if out, err = AppendUnsigned(out, uint64(imm.Offset), Width32); err != nil {
			return dst, err
		}
		return out, nil

	case OpI32Const:
		imm, ok := in.Imm.(I32Imm)
		if !ok {
			return dst, badImmediate(in)
		}
		return AppendSigned(append(dst, in.Opcode), int64(imm.Value), Width32)
	}
	return dst, errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("opcode %#02x", in.Opcode))
}

// EncodeInstructions encodes a sequence of instructions.
func EncodeInstructions(instrs []Instruction) ([]byte, error) {
	var out []byte
	for _, in := range instrs {
		var err error
		if out, err = EncodeInstruction(out, in); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func badImmediate(in Instruction) error {
	return errors.New(errors.PhaseEncode, errors.KindUnsupported).
		Value(in.Imm).
		Detail("opcode %#02x does not take immediate %T", in.Opcode, in.Imm).
		Build()
}

// Emitter accumulates encoded instructions. Every method returns the
// emitter so calls chain:
//
//	e.LocalGet(0).I32Load8U(0, 0).I32Eqz().BrIf(1)
//
// Nesting of Block/Loop/End and label depths are not checked.
type Emitter struct {
	err error
	buf []byte
}

// NewEmitter returns an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Emit appends in. The first encoding error is kept and later calls are
// ignored; see Err.
func (e *Emitter) Emit(in Instruction) *Emitter {
	if e.err != nil {
		return e
	}
	e.buf, e.err = EncodeInstruction(e.buf, in)
	return e
}

// Bytes returns the encoded instructions.
func (e *Emitter) Bytes() []byte {
	return e.buf
}

// Len returns the number of encoded bytes.
func (e *Emitter) Len() int {
	return len(e.buf)
}

// Err returns the first encoding error.
func (e *Emitter) Err() error {
	return e.err
}

// Reset discards all instructions and any error.
func (e *Emitter) Reset() {
	e.buf = e.buf[:0]
	e.err = nil
}

// Copy returns a copy of the encoded bytes.
func (e *Emitter) Copy() []byte {
	return append([]byte(nil), e.buf...)
}

// Append appends raw, already encoded instruction bytes.
func (e *Emitter) Append(code []byte) *Emitter {
	if e.err == nil {
		e.buf = append(e.buf, code...)
	}
	return e
}

func (e *Emitter) I32Const(v int32) *Emitter {
	return e.Emit(Instruction{Opcode: OpI32Const, Imm: I32Imm{Value: v}})
}

func (e *Emitter) LocalGet(idx uint32) *Emitter {
	return e.Emit(Instruction{Opcode: OpLocalGet, Imm: LocalImm{LocalIdx: idx}})
}

func (e *Emitter) LocalSet(idx uint32) *Emitter {
	return e.Emit(Instruction{Opcode: OpLocalSet, Imm: LocalImm{LocalIdx: idx}})
}

func (e *Emitter) I32Add() *Emitter {
	return e.Emit(Instruction{Opcode: OpI32Add})
}

func (e *Emitter) I32Sub() *Emitter {
	return e.Emit(Instruction{Opcode: OpI32Sub})
}

// I32Load8U loads one byte and zero-extends it. align is the log2 alignment.
func (e *Emitter) I32Load8U(align, offset uint32) *Emitter {
	return e.Emit(Instruction{Opcode: OpI32Load8U, Imm: MemoryImm{Align: align, Offset: offset}})
}

// I32Store8 stores the low byte of an i32.
func (e *Emitter) I32Store8(align, offset uint32) *Emitter {
	return e.Emit(Instruction{Opcode: OpI32Store8, Imm: MemoryImm{Align: align, Offset: offset}})
}

func (e *Emitter) I32Eqz() *Emitter {
	return e.Emit(Instruction{Opcode: OpI32Eqz})
}

func (e *Emitter) Block(bt BlockType) *Emitter {
	return e.Emit(Instruction{Opcode: OpBlock, Imm: BlockImm{Type: bt}})
}

func (e *Emitter) Loop(bt BlockType) *Emitter {
	return e.Emit(Instruction{Opcode: OpLoop, Imm: BlockImm{Type: bt}})
}

func (e *Emitter) End() *Emitter {
	return e.Emit(Instruction{Opcode: OpEnd})
}

// BrIf branches to the label depth levels out when the top of stack is non-zero.
func (e *Emitter) BrIf(depth uint32) *Emitter {
	return e.Emit(Instruction{Opcode: OpBrIf, Imm: BranchImm{LabelIdx: depth}})
}

// Br branches unconditionally to the label depth levels out.
func (e *Emitter) Br(depth uint32) *Emitter {
	return e.Emit(Instruction{Opcode: OpBr, Imm: BranchImm{LabelIdx: depth}})
}

func (e *Emitter) Call(funcIdx uint32) *Emitter {
	return e.Emit(Instruction{Opcode: OpCall, Imm: CallImm{FuncIdx: funcIdx}})
}

func (e *Emitter) Return() *Emitter {
	return e.Emit(Instruction{Opcode: OpReturn})
}
