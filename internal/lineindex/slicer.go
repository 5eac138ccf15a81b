package lineindex

import (
	"fmt"
	"strings"

	rerr "github.com/standardbeagle/roughup/internal/errors"
)

// ExtractLines concatenates the byte spans for each (already validated,
// sorted, merged) inclusive 1-based line range in order, joining
// successive ranges with a single '\n' even when the prior range ended on
// a CRLF-stripped boundary.
func ExtractLines(content string, ranges []LineRange) (string, error) {
	data := []byte(content)
	idx := Build(data)

	if idx.LineCount() == 0 {
		return "", nil
	}

	var out strings.Builder
	out.Grow(len(ranges) * 60)

	for i, r := range ranges {
		if r.Start == 0 || r.Start > r.End || r.Start > idx.LineCount() {
			return "", rerr.InvalidRange("extract_lines", fmt.Errorf("invalid range: %d-%d", r.Start, r.End))
		}

		end := r.End
		if end > idx.LineCount() {
			end = idx.LineCount()
		}

		lo, hi, ok := idx.ByteRangeForLines(r.Start, end, data)
		if !ok {
			return "", rerr.InvalidRange("extract_lines", fmt.Errorf("range out of bounds: %d-%d", r.Start, end))
		}

		out.WriteString(content[lo:hi])
		if i+1 != len(ranges) {
			out.WriteByte('\n')
		}
	}

	return out.String(), nil
}
