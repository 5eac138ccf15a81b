package callgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/roughup/internal/symbols"
)

// miniFixture reproduces the call_distance.rs mini.rs fixture in Go syntax:
// fn b on its own line, fn a calling b from within its body.
const miniFixture = `
func b() {
}
func a() {
	b()
}
`

func writeMini(t *testing.T) (root string) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "mini.go"), []byte(miniFixture), 0o644))
	return root
}

func TestCallDistanceFromHopStrictlyDecreasing(t *testing.T) {
	d0 := CallDistanceFromHop(0)
	d1 := CallDistanceFromHop(1)
	d2 := CallDistanceFromHop(2)
	d3 := CallDistanceFromHop(3)
	assert.Greater(t, d0, d1)
	assert.Greater(t, d1, d2)
	assert.Greater(t, d2, d3)
	assert.Greater(t, d3, 0.0)
}

func TestCollectCallGraphHops(t *testing.T) {
	root := writeMini(t)
	provider, err := symbols.NewHeuristic(root)
	require.NoError(t, err)

	anchorFn := provider.FunctionAt("mini.go", 4) // inside func a
	require.NotNil(t, anchorFn)
	assert.Equal(t, "a", anchorFn.Name)

	hopper := New(provider)
	hops := hopper.CollectCallGraphHops(anchorFn.Name, 1)

	assert.Equal(t, 0, hops["a"])
	assert.Equal(t, 1, hops["b"])
}

func TestScoreFromCallDistanceForFn(t *testing.T) {
	root := writeMini(t)
	provider, err := symbols.NewHeuristic(root)
	require.NoError(t, err)
	hopper := New(provider)

	hops := hopper.CollectCallGraphHops("a", 1)

	scoreA := ScoreFromCallDistanceForFn("a", hops, 1.0)
	scoreB := ScoreFromCallDistanceForFn("b", hops, 1.0)
	scoreX := ScoreFromCallDistanceForFn("x", hops, 1.0)

	assert.Greater(t, scoreA, scoreB)
	assert.Equal(t, 0.0, scoreX)
}

func TestScoreFromCallDistanceForSpan(t *testing.T) {
	root := writeMini(t)
	provider, err := symbols.NewHeuristic(root)
	require.NoError(t, err)
	hopper := New(provider)

	hops := hopper.CollectCallGraphHops("a", 1)

	scoreInA := hopper.ScoreFromCallDistanceForSpan("mini.go", 4, hops, 1.0)
	scoreInB := hopper.ScoreFromCallDistanceForSpan("mini.go", 2, hops, 1.0)
	scoreUnknownFile := hopper.ScoreFromCallDistanceForSpan("nope.go", 1, hops, 1.0)

	assert.Greater(t, scoreInA, scoreInB)
	assert.Equal(t, 0.0, scoreUnknownFile)
}

func TestScoreFromCallDistanceWeightClamped(t *testing.T) {
	hops := Hops{"a": 0}
	assert.Equal(t, CallDistanceFromHop(0), ScoreFromCallDistanceForFn("a", hops, 5.0))
	assert.Equal(t, 0.0, ScoreFromCallDistanceForFn("a", hops, -1.0))
}
