package symbols

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestHeuristicFindsGoFunctions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mini.go", "func b() {\n}\nfunc a() {\n\tb()\n}\n")

	h, err := NewHeuristic(root)
	require.NoError(t, err)

	fns := h.Functions()
	require.Len(t, fns, 2)
	assert.Equal(t, "b", fns[0].Name)
	assert.Equal(t, "a", fns[1].Name)
	assert.Equal(t, []string{"b"}, h.CallsFrom("a"))
	assert.Nil(t, h.CallsFrom("b"))
}

func TestHeuristicFunctionAt(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mini.go", "func b() {\n}\nfunc a() {\n\tb()\n}\n")

	h, err := NewHeuristic(root)
	require.NoError(t, err)

	fn := h.FunctionAt("mini.go", 4)
	require.NotNil(t, fn)
	assert.Equal(t, "a", fn.Name)

	assert.Nil(t, h.FunctionAt("mini.go", 100))
	assert.Nil(t, h.FunctionAt("missing.go", 1))
}

func TestHeuristicFunctionsByName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "func dup() {\n}\n")
	writeFile(t, root, "b.go", "func dup() {\n}\n")

	h, err := NewHeuristic(root)
	require.NoError(t, err)

	assert.Len(t, h.FunctionsByName("dup"), 2)
	assert.Empty(t, h.FunctionsByName("nope"))
}

func TestHeuristicSkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real.go", "func keep() {\n}\n")
	writeFile(t, root, "vendor/dep.go", "func ignored() {\n}\n")

	h, err := NewHeuristic(root)
	require.NoError(t, err)

	assert.Empty(t, h.FunctionsByName("ignored"))
	assert.Len(t, h.FunctionsByName("keep"), 1)
}

func TestHeuristicPython(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mini.py", "def helper():\n    return 1\n\n\ndef caller():\n    helper()\n    return 2\n")

	h, err := NewHeuristic(root)
	require.NoError(t, err)

	fn := h.FunctionAt("mini.py", 6)
	require.NotNil(t, fn)
	assert.Equal(t, "caller", fn.Name)
	assert.Equal(t, []string{"helper"}, h.CallsFrom("caller"))
}

func TestDetectBuildOutputsGo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module example.com/x\n\ngo 1.24\n")

	excludes := DetectBuildOutputs(root)
	assert.Contains(t, excludes, "**/bin/**")
}
