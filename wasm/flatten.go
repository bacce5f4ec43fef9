package wasm

import (
	"github.com/wippyai/wasm-gen/errors"
)

// Visitor receives the bytes a Node produces during Flatten.
type Visitor interface {
	Record(b ...byte)
}

// Node is implemented by every encodable structural element.
//
// Flatten must be a pure function of the node's state: two runs over an
// unchanged node record the same bytes, so a size pass followed by a write
// pass agree on the length.
type Node interface {
	Flatten(v Visitor) error
}

// Sizer is a Visitor that only counts bytes.
type Sizer struct {
	n int
}

// Record adds len(b) to the running count.
func (s *Sizer) Record(b ...byte) {
	s.n += len(b)
}

// Len returns the number of bytes recorded.
func (s *Sizer) Len() int {
	return s.n
}

// Writer is a Visitor that copies bytes into a fixed-capacity buffer.
// It never grows the buffer; a write past capacity is remembered and
// reported by Err.
type Writer struct {
	err error
	buf []byte
	pos int
}

// NewWriter returns a Writer over a buffer of exactly size bytes.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, size)}
}

// Record copies b at the cursor.
func (w *Writer) Record(b ...byte) {
	if w.err != nil {
		return
	}
	if w.pos+len(b) > len(w.buf) {
		w.err = errors.ShortBuffer(len(w.buf), w.pos+len(b))
		return
	}
	w.pos += copy(w.buf[w.pos:], b)
}

// Bytes returns the written prefix of the buffer.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.pos]
}

// Len returns the cursor position.
func (w *Writer) Len() int {
	return w.pos
}

// Err returns the first short-buffer error, if any.
func (w *Writer) Err() error {
	return w.err
}

// Size returns the exact serialized length of n.
func Size(n Node) (int, error) {
	if n == nil {
		return 0, errors.Unimplemented(errors.PhaseEncode, "nil node")
	}
	var s Sizer
	if err := n.Flatten(&s); err != nil {
		return 0, err
	}
	return s.Len(), nil
}

// Serialize runs the size pass, allocates exactly that many bytes and runs
// the write pass into them.
func Serialize(n Node) ([]byte, error) {
	size, err := Size(n)
	if err != nil {
		return nil, err
	}
	w := NewWriter(size)
	if err := n.Flatten(w); err != nil {
		return nil, err
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	if w.Len() != size {
		return nil, errors.New(errors.PhaseEncode, errors.KindShortBuffer).
			Value(w.Len()).
			Detail("write pass produced %d bytes, size pass %d", w.Len(), size).
			Build()
	}
	return w.Bytes(), nil
}
