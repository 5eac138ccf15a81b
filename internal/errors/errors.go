// Package errors defines the typed error kinds raised by the context-pack
// pipeline, mirroring the way the teacher distinguishes indexing/parse/search
// errors rather than returning ad-hoc fmt.Errorf values.
package errors

import "fmt"

// Kind identifies which failure mode a PackError represents.
type Kind string

const (
	// KindInvalidTarget means a "<path>:<ranges>" target string was malformed.
	KindInvalidTarget Kind = "invalid_target"
	// KindInvalidRange means a range exceeded file bounds or violated an invariant.
	KindInvalidRange Kind = "invalid_range"
	// KindHardOverflow means hard items alone exceed the budget.
	KindHardOverflow Kind = "hard_overflow"
	// KindNoveltyFloorUnmet is informational: the novelty reservation could not be met.
	KindNoveltyFloorUnmet Kind = "novelty_floor_unmet"
	// KindUnknownModel means the tokenizer selector rejected a model name.
	KindUnknownModel Kind = "unknown_model"
	// KindReadFailure means a file view could not be produced (I/O or encoding).
	KindReadFailure Kind = "read_failure"
)

// PackError is the common error type for the core pipeline. Operation and
// Underlying give context; Recoverable marks whether the caller should drop
// the offending item and continue (true) or abort the whole pipeline (false).
type PackError struct {
	Kind        Kind
	Operation   string
	Underlying  error
	Recoverable bool
}

func (e *PackError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Operation, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Operation)
}

// Unwrap lets errors.Is/errors.As see through to the underlying cause.
func (e *PackError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether the caller should drop the offending item
// (and continue assembling the rest of the pack) rather than abort.
func (e *PackError) IsRecoverable() bool {
	return e.Recoverable
}

func newErr(kind Kind, op string, recoverable bool, err error) *PackError {
	return &PackError{Kind: kind, Operation: op, Underlying: err, Recoverable: recoverable}
}

// InvalidTarget wraps a malformed "<path>:<ranges>" target string. Aborts only the item.
func InvalidTarget(op string, err error) *PackError {
	return newErr(KindInvalidTarget, op, true, err)
}

// InvalidRange wraps a range that exceeds file bounds or violates an invariant. Aborts only the item.
func InvalidRange(op string, err error) *PackError {
	return newErr(KindInvalidRange, op, true, err)
}

// HardOverflow reports that hard items alone exceed the budget. Aborts the whole pipeline.
func HardOverflow(op string, err error) *PackError {
	return newErr(KindHardOverflow, op, false, err)
}

// NoveltyFloorUnmet is informational; the pack is still emitted.
func NoveltyFloorUnmet(op string, err error) *PackError {
	return newErr(KindNoveltyFloorUnmet, op, true, err)
}

// UnknownModel reports that the tokenizer selector rejected a model name. Aborts the whole pipeline.
func UnknownModel(op string, err error) *PackError {
	return newErr(KindUnknownModel, op, false, err)
}

// ReadFailure wraps an I/O or encoding failure producing a file view. Aborts only the item.
func ReadFailure(op string, err error) *PackError {
	return newErr(KindReadFailure, op, true, err)
}

// Is lets errors.Is(err, errors.KindInvalidTarget) style checks work by kind.
func Is(err error, kind Kind) bool {
	pe, ok := err.(*PackError)
	return ok && pe.Kind == kind
}
