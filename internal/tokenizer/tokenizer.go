// Package tokenizer implements the count_tokens(str) -> usize capability
// the core contracts over (spec.md §1), selected by model name. Adapted
// from the tiktoken-go wrapper in AbdelazizMoustafa10m-Harvx's
// internal/tokenizer package.
package tokenizer

import (
	"fmt"

	rerr "github.com/standardbeagle/roughup/internal/errors"
)

// Tokenizer counts tokens in text. Implementations must be safe for
// concurrent use (spec.md §5: symbol provider and tokenizer are pure).
type Tokenizer interface {
	// Count returns the number of tokens in text. 0 for empty text.
	Count(text string) int
	// Name returns the model/encoding name reported in pack output.
	Name() string
}

// Supported model identifiers.
const (
	CL100KBase = "cl100k_base"
	O200KBase  = "o200k_base"
)

// New returns a Tokenizer for the given model name. An empty name defaults
// to cl100k_base. Unknown names fail with errors.KindUnknownModel.
func New(model string) (Tokenizer, error) {
	if model == "" {
		model = CL100KBase
	}

	switch model {
	case CL100KBase, O200KBase:
		return newTiktokenTokenizer(model)
	default:
		return nil, rerr.UnknownModel("tokenizer.new", fmt.Errorf("unsupported model %q (supported: %s, %s)", model, CL100KBase, O200KBase))
	}
}
