package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode  Phase = "encode"  // node graph to bytes
	PhaseBuild   Phase = "build"   // module assembly
	PhaseCompile Phase = "compile" // front-end translation
	PhaseConfig  Phase = "config"  // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindOverflow      Kind = "overflow"
	KindUnimplemented Kind = "unimplemented"
	KindShortBuffer   Kind = "short_buffer"
	KindUnsupported   Kind = "unsupported"
	KindInvalidInput  Kind = "invalid_input"
	KindUnbalanced    Kind = "unbalanced"
)

// Sentinels for errors.Is. They match on Phase and Kind only.
var (
	ErrOverflow      = &Error{Phase: PhaseEncode, Kind: KindOverflow}
	ErrUnimplemented = &Error{Phase: PhaseEncode, Kind: KindUnimplemented}
	ErrShortBuffer   = &Error{Phase: PhaseEncode, Kind: KindShortBuffer}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Width  uint
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Width != 0 {
		b.WriteString(": width ")
		b.WriteString(strconv.FormatUint(uint64(e.Width), 10))
	}

	if e.Detail != "" {
		if e.Width != 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the node path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Width sets the requested bit width
func (b *Builder) Width(w uint) *Builder {
	b.err.Width = w
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Overflow creates a LEB128 width overflow error.
func Overflow(value any, width uint) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindOverflow,
		Width:  width,
		Value:  value,
		Detail: fmt.Sprintf("value %v does not fit in %d bits", value, width),
	}
}

// Unimplemented reports a node with no concrete encoding.
func Unimplemented(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnimplemented,
		Detail: fmt.Sprintf("%s has no encoding", what),
	}
}

// ShortBuffer reports a write past the capacity sized by the size pass.
func ShortBuffer(capacity, need int) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindShortBuffer,
		Detail: fmt.Sprintf("write of %d bytes exceeds capacity %d", need, capacity),
		Value:  need,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unbalanced reports an unmatched structured-control delimiter at offset.
func Unbalanced(offset int, delim byte) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindUnbalanced,
		Value:  offset,
		Detail: fmt.Sprintf("unmatched %q at offset %d", delim, offset),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath returns err with path segments prepended when err is an *Error.
// Other errors are returned unchanged.
func WithPath(err error, path ...string) error {
	e, ok := err.(*Error)
	if !ok || len(path) == 0 {
		return err
	}
	cp := *e
	cp.Path = append(append([]string(nil), path...), e.Path...)
	return &cp
}
