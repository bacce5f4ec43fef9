// Package errors provides structured error types for the wasm-gen module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending value, the requested bit width for codec
// failures, a field path into the node graph, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindOverflow).
//		Path("code", "0", "locals").
//		Value(v).
//		Width(32).
//		Detail("count does not fit").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Overflow(int64(64), 7)
//	err := errors.Unimplemented(errors.PhaseEncode, "section payload")
//
// All errors implement the standard error interface and support errors.Is/As.
// Sentinels such as ErrOverflow match any Error with the same Phase and Kind.
package errors
