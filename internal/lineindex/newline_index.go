// Package lineindex provides the newline index, target parser, and line
// slicer that together map between 1-based line numbers and byte offsets
// for a single file snapshot.
package lineindex

import "bytes"

// NewlineIndex records the byte offset of every '\n' in a buffer, once,
// so that line <-> byte mapping afterwards is O(1) (start/end of line) or
// O(log n) (line containing a byte offset). Built once per file snapshot;
// immutable afterward.
type NewlineIndex struct {
	nlPositions []int
	length      int
}

// Build scans bytes once, recording the offset of every '\n'.
func Build(data []byte) *NewlineIndex {
	idx := &NewlineIndex{length: len(data)}
	if len(data) == 0 {
		return idx
	}

	idx.nlPositions = make([]int, 0, len(data)/48)
	off := 0
	for {
		pos := bytes.IndexByte(data[off:], '\n')
		if pos < 0 {
			break
		}
		abs := off + pos
		idx.nlPositions = append(idx.nlPositions, abs)
		off = abs + 1
	}
	return idx
}

// LineCount returns 0 for an empty buffer, else the number of '\n' plus one.
func (idx *NewlineIndex) LineCount() int {
	if idx.length == 0 {
		return 0
	}
	return len(idx.nlPositions) + 1
}

// StartByteOfLine returns the inclusive start byte of a 1-based line, or
// (0, false) if the line is out of range.
func (idx *NewlineIndex) StartByteOfLine(line int) (int, bool) {
	total := idx.LineCount()
	if line <= 0 || line > total {
		return 0, false
	}
	if line == 1 {
		return 0, true
	}
	// Line L>1 starts one past the previous '\n'.
	return idx.nlPositions[line-2] + 1, true
}

// EndByteOfLine returns the exclusive end byte of a 1-based line, or
// (0, false) if out of range. A CRLF line's terminating '\r' is excluded.
func (idx *NewlineIndex) EndByteOfLine(line int, data []byte) (int, bool) {
	total := idx.LineCount()
	if line <= 0 || line > total {
		return 0, false
	}

	if line <= len(idx.nlPositions) {
		nl := idx.nlPositions[line-1]
		if nl > 0 && data[nl-1] == '\r' {
			return nl - 1, true
		}
		return nl, true
	}

	// Last line, no trailing '\n': ends at EOF.
	return idx.length, true
}

// ByteRangeForLines returns the byte span [start, end) for an inclusive
// 1-based line span, clamping endLine to LineCount. Returns (0, 0, false)
// for an invalid or out-of-range span.
func (idx *NewlineIndex) ByteRangeForLines(startLine, endLine int, data []byte) (int, int, bool) {
	if startLine <= 0 || endLine <= 0 || startLine > endLine {
		return 0, 0, false
	}
	total := idx.LineCount()
	if total == 0 {
		return 0, 0, false
	}

	s, ok := idx.StartByteOfLine(startLine)
	if !ok {
		return 0, 0, false
	}
	if endLine > total {
		endLine = total
	}
	e, ok := idx.EndByteOfLine(endLine, data)
	if !ok {
		return 0, 0, false
	}

	if s <= e && e <= idx.length {
		return s, e, true
	}
	return 0, 0, false
}

// LineOfByte returns the 1-based line number containing the given byte
// offset. An offset that equals a '\n' position belongs to the next line.
// Returns 0 for an empty buffer.
func (idx *NewlineIndex) LineOfByte(off int) int {
	if idx.length == 0 {
		return 0
	}

	// Binary search for the first '\n' position >= off.
	lo, hi := 0, len(idx.nlPositions)
	for lo < hi {
		mid := (lo + hi) / 2
		if idx.nlPositions[mid] < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	// An offset landing exactly on a '\n' belongs to the line after it.
	count := lo
	if lo < len(idx.nlPositions) && idx.nlPositions[lo] == off {
		count = lo + 1
	}
	return count + 1
}
