package wasm_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	wasmerrors "github.com/wippyai/wasm-gen/errors"
	"github.com/wippyai/wasm-gen/wasm"
)

func TestSizer(t *testing.T) {
	var s wasm.Sizer
	s.Record(1, 2, 3)
	s.Record()
	s.Record(4)
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
}

func TestWriterShortBuffer(t *testing.T) {
	w := wasm.NewWriter(2)
	w.Record(0xaa)
	w.Record(0xbb, 0xcc)
	w.Record(0xdd)

	if !errors.Is(w.Err(), wasmerrors.ErrShortBuffer) {
		t.Fatalf("Err() = %v, want short buffer", w.Err())
	}
	if !bytes.Equal(w.Bytes(), []byte{0xaa}) {
		t.Errorf("Bytes() = %x, want aa", w.Bytes())
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
}

func TestSizeNilNode(t *testing.T) {
	if _, err := wasm.Size(nil); !errors.Is(err, wasmerrors.ErrUnimplemented) {
		t.Fatalf("Size(nil) = %v, want unimplemented", err)
	}
	if _, err := wasm.Serialize(nil); !errors.Is(err, wasmerrors.ErrUnimplemented) {
		t.Fatalf("Serialize(nil) = %v, want unimplemented", err)
	}
}

// unstableNode records a different number of bytes on every call.
type unstableNode struct {
	calls *int
	grow  bool
}

func (n unstableNode) Flatten(v wasm.Visitor) error {
	*n.calls++
	size := 4 - *n.calls
	if n.grow {
		size = *n.calls
	}
	v.Record(make([]byte, size)...)
	return nil
}

func TestSerializeDetectsUnstableNodes(t *testing.T) {
	for _, grow := range []bool{true, false} {
		calls := 0
		_, err := wasm.Serialize(unstableNode{calls: &calls, grow: grow})
		if !errors.Is(err, wasmerrors.ErrShortBuffer) {
			t.Errorf("grow=%v: got %v, want short buffer", grow, err)
		}
	}
}

func TestSerializeNestedSections(t *testing.T) {
	inner := &wasm.ArraySection{}
	inner.Add(wasm.Index(1))
	inner.Add(wasm.RawBytes{0xff})

	node := wasm.TaggedSection{ID: wasm.SectionType, Payload: inner}
	got, err := wasm.Serialize(node)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x03, 0x02, 0x01, 0xff}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

var valTypes = []wasm.ValType{wasm.ValI32, wasm.ValI64, wasm.ValF32, wasm.ValF64}

func genValType(t *rapid.T, label string) wasm.ValType {
	return rapid.SampledFrom(valTypes).Draw(t, label)
}

func genFuncType(t *rapid.T) wasm.FuncType {
	params := rapid.SliceOfN(rapid.SampledFrom(valTypes), 0, 6).Draw(t, "params")
	if rapid.Bool().Draw(t, "has_result") {
		return wasm.NewFuncType(params, genValType(t, "result"))
	}
	return wasm.NewFuncType(params)
}

func genLimits(t *rapid.T) wasm.ResizableLimits {
	l := wasm.ResizableLimits{Initial: rapid.Uint32().Draw(t, "initial")}
	if rapid.Bool().Draw(t, "has_max") {
		maximum := rapid.Uint32().Draw(t, "maximum")
		l.Maximum = &maximum
	}
	return l
}

func genFuncBody(t *rapid.T) *wasm.FuncBody {
	body := &wasm.FuncBody{}
	fillFuncBody(t, body)
	return body
}

func fillFuncBody(t *rapid.T, body *wasm.FuncBody) {
	runs := rapid.IntRange(0, 3).Draw(t, "local_runs")
	for iter, iterN := 0, runs; iter < iterN; iter++ {
		body.AddLocals(rapid.Uint32Range(1, 1<<20).Draw(t, "local_count"), genValType(t, "local_type"))
	}
	ops := rapid.IntRange(0, 8).Draw(t, "ops")
	for iter, iterN := 0, ops; iter < iterN; iter++ {
		switch rapid.IntRange(0, 4).Draw(t, "op") {
		case 0:
			body.Code.I32Const(rapid.Int32().Draw(t, "const"))
		case 1:
			body.Code.LocalGet(rapid.Uint32().Draw(t, "local"))
		case 2:
			body.Code.LocalSet(rapid.Uint32().Draw(t, "local"))
		case 3:
			body.Code.Call(rapid.Uint32().Draw(t, "callee"))
		default:
			body.Code.I32Add()
		}
	}
}

// genModule draws a module through the builder API. Indices are not
// validated by the encoder, so they need not refer to real definitions.
func genModule(t *rapid.T) *wasm.Module {
	m := wasm.NewModule()
	for iter, iterN := 0, rapid.IntRange(0, 3).Draw(t, "types"); iter < iterN; iter++ {
		m.AddType(genFuncType(t))
	}
	for iter, iterN := 0, rapid.IntRange(0, 2).Draw(t, "imports"); iter < iterN; iter++ {
		m.ImportFunction(rapid.String().Draw(t, "module"), rapid.String().Draw(t, "field"), rapid.Uint32Range(0, 4).Draw(t, "import_type"))
	}
	if rapid.Bool().Draw(t, "memory") {
		l := genLimits(t)
		m.AddMemory(l.Initial, l.Maximum)
		m.ExportMemory(rapid.String().Draw(t, "memory_name"), 0)
	}
	for iter, iterN := 0, rapid.IntRange(0, 3).Draw(t, "functions"); iter < iterN; iter++ {
		body := m.AddFunction(rapid.Uint32Range(0, 4).Draw(t, "func_type"))
		fillFuncBody(t, body)
		idx, _ := m.FuncIndex(body)
		if rapid.Bool().Draw(t, "export") {
			m.ExportFunction(rapid.String().Draw(t, "export_name"), idx)
		}
	}
	if rapid.Bool().Draw(t, "start") {
		m.SetStart(rapid.Uint32().Draw(t, "start_index"))
	}
	for iter, iterN := 0, rapid.IntRange(0, 2).Draw(t, "data"); iter < iterN; iter++ {
		m.AddData(rapid.Int32().Draw(t, "data_offset"), rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "data_init"))
	}
	return m
}

// genNode draws a random node graph built from every composable node type.
// Kinds below leafKinds never recurse.
func genNode(t *rapid.T, depth int) wasm.Node {
	const leafKinds = 9
	choice := rapid.IntRange(0, leafKinds+3).Draw(t, "kind")
	if depth <= 0 {
		choice %= leafKinds
	}
	switch choice {
	case 0:
		return wasm.Index(rapid.Uint32().Draw(t, "index"))
	case 1:
		return wasm.RawBytes(rapid.SliceOfN(rapid.Byte(), 0, 300).Draw(t, "raw"))
	case 2:
		return wasm.DataSegment{
			Offset: rapid.Int32().Draw(t, "offset"),
			Init:   rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(t, "init"),
		}
	case 3:
		return genFuncType(t)
	case 4:
		return wasm.ImportEntry{
			Module: rapid.String().Draw(t, "module"),
			Field:  rapid.String().Draw(t, "field"),
			Kind:   wasm.KindFunc,
			Type:   wasm.FunctionImport(rapid.Uint32().Draw(t, "type_index")),
		}
	case 5:
		return wasm.ExportEntry{
			Field: rapid.String().Draw(t, "field"),
			Kind:  rapid.SampledFrom([]wasm.ExternalKind{wasm.KindFunc, wasm.KindMemory}).Draw(t, "kind"),
			Index: rapid.Uint32().Draw(t, "export_index"),
		}
	case 6:
		return genLimits(t)
	case 7:
		return wasm.LocalEntry{
			Count: rapid.Uint32().Draw(t, "count"),
			Type:  genValType(t, "type"),
		}
	case 8:
		return genFuncBody(t)
	case 9:
		a := &wasm.ArraySection{}
		n := rapid.IntRange(0, 4).Draw(t, "len")
		for iter, iterN := 0, n; iter < iterN; iter++ {
			a.Add(genNode(t, depth-1))
		}
		return a
	case 10:
		return wasm.SizedSection{Payload: genNode(t, depth-1)}
	case 11:
		id := wasm.SectionID(rapid.IntRange(1, 11).Draw(t, "id"))
		return wasm.TaggedSection{ID: id, Payload: genNode(t, depth-1)}
	default:
		return genModule(t)
	}
}

func TestSizeMatchesSerialize(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		node := genNode(t, 3)
		size, err := wasm.Size(node)
		if err != nil {
			t.Fatalf("Size: %v", err)
		}
		out, err := wasm.Serialize(node)
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		if len(out) != size {
			t.Fatalf("len(Serialize) = %d, Size = %d", len(out), size)
		}
		again, err := wasm.Serialize(node)
		if err != nil {
			t.Fatalf("second Serialize: %v", err)
		}
		if !bytes.Equal(out, again) {
			t.Fatalf("Serialize is not deterministic")
		}
	})
}
