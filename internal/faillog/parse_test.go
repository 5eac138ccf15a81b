package faillog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/roughup/internal/budget"
)

func TestParseGroupsByFileAndTakesWorstSeverity(t *testing.T) {
	input := `src/lib.rs:85: warning: unused variable [x]
src/lib.rs:92: error: type mismatch [y]
src/other.rs:10: info: note
`
	signals, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, signals, 2)

	lib := signals[0]
	assert.Equal(t, "src/lib.rs", lib.File)
	assert.Equal(t, budget.SeverityError, lib.Severity)
	assert.ElementsMatch(t, []int{85, 92}, lib.LineHits)
	assert.Contains(t, lib.Symbols, "y")

	other := signals[1]
	assert.Equal(t, "src/other.rs", other.File)
	assert.Equal(t, budget.SeverityInfo, other.Severity)
}

func TestParseIgnoresUnrecognizedLines(t *testing.T) {
	input := "this is not a diagnostic line\nsrc/a.rs:1: error: oops\n"
	signals, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "src/a.rs", signals[0].File)
}

func TestParseEmptyInput(t *testing.T) {
	signals, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, signals)
}
