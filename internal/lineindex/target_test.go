package lineindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetSimple(t *testing.T) {
	tgt, err := ParseTarget("src/main.rs:1-5,10-15")
	require.NoError(t, err)
	assert.Equal(t, "src/main.rs", tgt.File)
	assert.Equal(t, []LineRange{{1, 5}, {10, 15}}, tgt.Ranges)
}

func TestParseTargetWindowsDriveLetter(t *testing.T) {
	tgt, err := ParseTarget(`C:\src\lib.rs:20-25`)
	require.NoError(t, err)
	assert.Equal(t, `C:\src\lib.rs`, tgt.File)
	assert.Equal(t, []LineRange{{20, 25}}, tgt.Ranges)
}

func TestParseTargetSingleLines(t *testing.T) {
	tgt, err := ParseTarget("a.go:3,7,1")
	require.NoError(t, err)
	assert.Equal(t, []LineRange{{1, 1}, {3, 3}, {7, 7}}, tgt.Ranges)
}

func TestParseTargetMergesAdjacentAndOverlapping(t *testing.T) {
	tgt, err := ParseTarget("a.go:1-3,2-5,7-9")
	require.NoError(t, err)
	assert.Equal(t, []LineRange{{1, 5}, {7, 9}}, tgt.Ranges)
}

func TestParseTargetRejectsMissingColon(t *testing.T) {
	_, err := ParseTarget("nocolonhere")
	assert.Error(t, err)
}

func TestParseTargetRejectsEmptyRanges(t *testing.T) {
	_, err := ParseTarget("a.go:")
	assert.Error(t, err)
}

func TestParseTargetRejectsZeroLine(t *testing.T) {
	_, err := ParseTarget("a.go:0")
	assert.Error(t, err)
	_, err = ParseTarget("a.go:0-5")
	assert.Error(t, err)
}

func TestParseTargetRejectsReversedRange(t *testing.T) {
	_, err := ParseTarget("a.go:5-1")
	assert.Error(t, err)
}

func TestParseTargetSkipsEmptySegments(t *testing.T) {
	tgt, err := ParseTarget("a.go:1-2,,5")
	require.NoError(t, err)
	assert.Equal(t, []LineRange{{1, 2}, {5, 5}}, tgt.Ranges)
}

func TestMergeRangesDisjointPreserved(t *testing.T) {
	merged := MergeRanges([]LineRange{{1, 3}, {2, 5}, {7, 9}})
	assert.Equal(t, []LineRange{{1, 5}, {7, 9}}, merged)

	merged = MergeRanges([]LineRange{{1, 2}, {3, 4}})
	assert.Equal(t, []LineRange{{1, 4}}, merged)
}
