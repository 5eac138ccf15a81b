package tokenizer

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"

	rerr "github.com/standardbeagle/roughup/internal/errors"
)

// tiktokenTokenizer counts tokens using pkoukk/tiktoken-go's BPE encoder.
// The encoding is loaded once at construction; Count does not mutate
// shared state afterward, so it is safe across concurrent pipeline runs.
type tiktokenTokenizer struct {
	name string
	enc  *tiktoken.Tiktoken
}

func newTiktokenTokenizer(model string) (*tiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding(model)
	if err != nil {
		return nil, rerr.UnknownModel("tokenizer.new", fmt.Errorf("loading encoding %q: %w", model, err))
	}
	return &tiktokenTokenizer{name: model, enc: enc}, nil
}

func (t *tiktokenTokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

func (t *tiktokenTokenizer) Name() string {
	return t.name
}
