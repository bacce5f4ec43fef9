package wasm

import (
	"github.com/wippyai/wasm-gen/errors"
)

// Index is a reference into one index space (types, functions, locals,
// memories). Spaces are never unified: equal values in different spaces are
// unrelated.
type Index uint32

// Flatten records the index as varuint32.
func (i Index) Flatten(v Visitor) error {
	return writeUnsigned(v, uint64(i), Width32)
}

// FunctionImport is the type descriptor of an imported function: its type index.
type FunctionImport = Index

// RawBytes is a node that records its bytes verbatim.
type RawBytes []byte

// Flatten records b as-is.
func (b RawBytes) Flatten(v Visitor) error {
	v.Record(b...)
	return nil
}

// FuncType represents a function signature with zero or one result.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// NewFuncType returns a signature over params with an optional result.
func NewFuncType(params []ValType, results ...ValType) FuncType {
	return FuncType{Params: params, Results: results}
}

// Flatten records form, params and results.
//
//	form: varint7 (-0x20)
//	param_count: varuint32
//	param_types: value_type*
//	return_count: varuint1
//	return_type: value_type?
func (ft FuncType) Flatten(v Visitor) error {
	if len(ft.Results) > 1 {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Value(len(ft.Results)).
			Detail("function type has %d results, at most 1 allowed", len(ft.Results)).
			Build()
	}
	if err := writeSigned(v, int64(TypeFunc), Width7); err != nil {
		return err
	}
	if err := writeValTypes(v, ft.Params, Width32); err != nil {
		return err
	}
	return writeValTypes(v, ft.Results, Width1)
}

func writeValTypes(v Visitor, types []ValType, countWidth uint) error {
	if err := writeUnsigned(v, uint64(len(types)), countWidth); err != nil {
		return err
	}
	for _, t := range types {
		if err := writeSigned(v, int64(t), Width7); err != nil {
			return err
		}
	}
	return nil
}

// ImportEntry represents an imported definition. Type holds the
// kind-specific descriptor, a FunctionImport for KindFunc.
type ImportEntry struct {
	Type   Node
	Module string
	Field  string
	Kind   ExternalKind
}

// Flatten records module name, field name, kind and descriptor.
func (e ImportEntry) Flatten(v Visitor) error {
	if e.Type == nil {
		return errors.Unimplemented(errors.PhaseEncode, "import descriptor")
	}
	if err := writeName(v, e.Module); err != nil {
		return err
	}
	if err := writeName(v, e.Field); err != nil {
		return err
	}
	v.Record(byte(e.Kind))
	return e.Type.Flatten(v)
}

// ExportEntry represents an exported definition.
type ExportEntry struct {
	Field string
	Index uint32
	Kind  ExternalKind
}

// Flatten records field name, kind and index.
func (e ExportEntry) Flatten(v Visitor) error {
	if err := writeName(v, e.Field); err != nil {
		return err
	}
	v.Record(byte(e.Kind))
	return writeUnsigned(v, uint64(e.Index), Width32)
}

// ResizableLimits is an initial size with an optional maximum, in pages for
// memories.
type ResizableLimits struct {
	Maximum *uint32
	Initial uint32
}

// MemoryType describes a linear memory.
type MemoryType = ResizableLimits

// Flatten records the has-maximum flag, initial and optional maximum.
func (l ResizableLimits) Flatten(v Visitor) error {
	flags := LimitsNoMax
	if l.Maximum != nil {
		flags = LimitsHasMax
	}
	if err := writeUnsigned(v, flags, Width1); err != nil {
		return err
	}
	if err := writeUnsigned(v, uint64(l.Initial), Width32); err != nil {
		return err
	}
	if l.Maximum != nil {
		return writeUnsigned(v, uint64(*l.Maximum), Width32)
	}
	return nil
}

// LocalEntry declares Count consecutive locals of one type.
type LocalEntry struct {
	Count uint32
	Type  ValType
}

// Flatten records count and type.
func (l LocalEntry) Flatten(v Visitor) error {
	if err := writeUnsigned(v, uint64(l.Count), Width32); err != nil {
		return err
	}
	return writeSigned(v, int64(l.Type), Width7)
}

// FuncBody is the code of one locally defined function: local declarations
// followed by instructions. The terminating end is appended by Flatten, not
// by the caller.
type FuncBody struct {
	Locals ArraySection
	Code   Emitter
}

// AddLocals declares count locals of type t and returns the number of locals
// declared before them.
func (b *FuncBody) AddLocals(count uint32, t ValType) uint32 {
	var before uint32
	for i := 0; i < b.Locals.Len(); i++ {
		if le, ok := b.Locals.At(i).(LocalEntry); ok {
			before += le.Count
		}
	}
	b.Locals.Add(LocalEntry{Count: count, Type: t})
	return before
}

// Flatten records locals, instruction bytes and the closing end.
func (b *FuncBody) Flatten(v Visitor) error {
	if err := b.Code.Err(); err != nil {
		return err
	}
	if err := b.Locals.Flatten(v); err != nil {
		return errors.WithPath(err, "locals")
	}
	v.Record(b.Code.Bytes()...)
	v.Record(OpEnd)
	return nil
}

// DataSegment is an active data segment placed at a constant offset.
type DataSegment struct {
	Init     []byte
	MemIndex uint32
	Offset   int32
}

// Flatten records memory index, offset expression and payload.
//
//	index: varuint32
//	offset: init_expr (i32.const offset; end)
//	size: varuint32
//	data: bytes
func (d DataSegment) Flatten(v Visitor) error {
	if err := writeUnsigned(v, uint64(d.MemIndex), Width32); err != nil {
		return err
	}
	v.Record(OpI32Const)
	if err := writeSigned(v, int64(d.Offset), Width32); err != nil {
		return err
	}
	v.Record(OpEnd)
	if err := writeUnsigned(v, uint64(len(d.Init)), Width32); err != nil {
		return err
	}
	v.Record(d.Init...)
	return nil
}
