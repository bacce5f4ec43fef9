package wasm

import (
	"strconv"

	"github.com/wippyai/wasm-gen/errors"
)

// ArraySection is a count-prefixed vector of nodes, flattened in insertion
// order.
//
//	count: varuint32
//	entries: elem*
type ArraySection struct {
	elems []Node
}

// Add appends n and returns its zero-based position.
func (a *ArraySection) Add(n Node) uint32 {
	a.elems = append(a.elems, n)
	return uint32(len(a.elems) - 1)
}

// Len returns the number of entries.
func (a *ArraySection) Len() int {
	return len(a.elems)
}

// At returns the entry at position i.
func (a *ArraySection) At(i int) Node {
	return a.elems[i]
}

// Flatten records the count followed by every entry.
func (a *ArraySection) Flatten(v Visitor) error {
	if err := writeUnsigned(v, uint64(len(a.elems)), Width32); err != nil {
		return err
	}
	for i, e := range a.elems {
		if e == nil {
			return errors.WithPath(errors.Unimplemented(errors.PhaseEncode, "array entry"), strconv.Itoa(i))
		}
		if err := e.Flatten(v); err != nil {
			return errors.WithPath(err, strconv.Itoa(i))
		}
	}
	return nil
}

// SizedSection prefixes its payload with the payload's byte length.
//
//	payload_size: varuint32
//	payload: *
type SizedSection struct {
	Payload Node
}

// Flatten records the payload length then the payload.
func (s SizedSection) Flatten(v Visitor) error {
	if s.Payload == nil {
		return errors.Unimplemented(errors.PhaseEncode, "sized payload")
	}
	n, err := Size(s.Payload)
	if err != nil {
		return err
	}
	if err := writeUnsigned(v, uint64(n), Width32); err != nil {
		return err
	}
	return s.Payload.Flatten(v)
}

// TaggedSection is a section id byte followed by a size-prefixed payload.
type TaggedSection struct {
	Payload Node
	ID      SectionID
}

// Flatten records the id then the sized payload.
func (t TaggedSection) Flatten(v Visitor) error {
	if err := writeUnsigned(v, uint64(t.ID), Width7); err != nil {
		return err
	}
	if err := (SizedSection{Payload: t.Payload}).Flatten(v); err != nil {
		return errors.WithPath(err, SectionName(t.ID))
	}
	return nil
}
