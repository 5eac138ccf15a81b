package lineindex

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	rerr "github.com/standardbeagle/roughup/internal/errors"
)

// LineRange is an inclusive 1-based (start, end) line span.
type LineRange struct {
	Start, End int
}

// ExtractionTarget is one file plus its merged, sorted, non-adjacent line
// ranges, as produced by ParseTarget.
type ExtractionTarget struct {
	File   string
	Ranges []LineRange
}

// ParseTarget parses a "<path>:<ranges>" string such as "src/main.rs:1-5,10"
// or "C:\src\lib.rs:20-25". The *last* ':' separates ranges from path, so
// Windows drive letters are preserved. Ranges are comma-separated; each
// segment is either "N" or "A-B", both 1-based and inclusive. The parsed
// ranges are sorted by start and merged when adjacent or overlapping
// (s <= last.End+1).
func ParseTarget(input string) (*ExtractionTarget, error) {
	s := strings.TrimSpace(input)

	lastColon := strings.LastIndexByte(s, ':')
	if lastColon < 0 {
		return nil, rerr.InvalidTarget("parse_target", fmt.Errorf("missing ':' in %q", input))
	}

	pathStr := strings.TrimSpace(s[:lastColon])
	rangesStr := strings.TrimSpace(s[lastColon+1:])
	if pathStr == "" {
		return nil, rerr.InvalidTarget("parse_target", fmt.Errorf("missing file path before ':' in %q", input))
	}
	if rangesStr == "" {
		return nil, rerr.InvalidTarget("parse_target", fmt.Errorf("missing range spec after ':' in %q", input))
	}

	var ranges []LineRange
	for _, seg := range strings.Split(rangesStr, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		if a, b, ok := strings.Cut(seg, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(a))
			if err != nil {
				return nil, rerr.InvalidTarget("parse_target", fmt.Errorf("invalid start %q: %w", seg, err))
			}
			end, err := strconv.Atoi(strings.TrimSpace(b))
			if err != nil {
				return nil, rerr.InvalidTarget("parse_target", fmt.Errorf("invalid end %q: %w", seg, err))
			}
			if start == 0 || end == 0 {
				return nil, rerr.InvalidTarget("parse_target", fmt.Errorf("line numbers must be >= 1: %q", seg))
			}
			if start > end {
				return nil, rerr.InvalidTarget("parse_target", fmt.Errorf("start > end in range: %q", seg))
			}
			ranges = append(ranges, LineRange{Start: start, End: end})
			continue
		}

		n, err := strconv.Atoi(seg)
		if err != nil {
			return nil, rerr.InvalidTarget("parse_target", fmt.Errorf("invalid line %q: %w", seg, err))
		}
		if n == 0 {
			return nil, rerr.InvalidTarget("parse_target", fmt.Errorf("line numbers must be >= 1: %q", seg))
		}
		ranges = append(ranges, LineRange{Start: n, End: n})
	}

	if len(ranges) == 0 {
		return nil, rerr.InvalidTarget("parse_target", fmt.Errorf("no valid ranges in %q", input))
	}

	return &ExtractionTarget{File: pathStr, Ranges: MergeRanges(ranges)}, nil
}

// MergeRanges sorts ranges by start and merges overlapping or adjacent
// ones: consecutive (a1,b1),(a2,b2) merge when a2 <= b1+1.
func MergeRanges(ranges []LineRange) []LineRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]LineRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := make([]LineRange, 0, len(sorted))
	for _, r := range sorted {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End+1 {
			if r.End > merged[n-1].End {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
