package anchor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/roughup/internal/symbols"
)

func writeMainRS(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	content := "// header\n// more header\nfunc main() {\n\tdoWork()\n}\n"
	full := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return root
}

func TestResolveGoodAtStart(t *testing.T) {
	root := writeMainRS(t)
	provider, err := symbols.NewHeuristic(root)
	require.NoError(t, err)

	report := Resolve(root, provider, "main.go:3", "main.go", 3)
	assert.Equal(t, StatusGood, report.Status)
	assert.Equal(t, ValidityPerfect, report.Factors.AnchorValidity)
	require.NotNil(t, report.Function)
	assert.Equal(t, "main", report.Function.Name)
}

func TestResolveGoodInsideBody(t *testing.T) {
	root := writeMainRS(t)
	provider, err := symbols.NewHeuristic(root)
	require.NoError(t, err)

	report := Resolve(root, provider, "main.go:4", "main.go", 4)
	assert.Equal(t, StatusGood, report.Status)
	assert.Equal(t, ValidityApproximate, report.Factors.AnchorValidity)
}

func TestResolveOutsideScope(t *testing.T) {
	root := writeMainRS(t)
	provider, err := symbols.NewHeuristic(root)
	require.NoError(t, err)

	report := Resolve(root, provider, "main.go:1", "main.go", 1)
	assert.Equal(t, StatusOutsideScope, report.Status)
	assert.Nil(t, report.Function)
	assert.NotEmpty(t, report.NearestFunctions)
}

func TestResolveNotAFile(t *testing.T) {
	root := writeMainRS(t)
	provider, err := symbols.NewHeuristic(root)
	require.NoError(t, err)

	report := Resolve(root, provider, "nonexistent.go:1", "nonexistent.go", 1)
	assert.Equal(t, StatusNotAFile, report.Status)
}
