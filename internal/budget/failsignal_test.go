package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailSignalBoostWithinSpan(t *testing.T) {
	items := []Item{
		{ID: "src/lib.rs:85-100", Content: "fn test() {}", Priority: LowPriority()},
	}
	signal := FailSignal{File: "src/lib.rs", LineHits: []int{90}, Severity: SeverityError}

	boosted := FailSignalBoost(items, signal)
	assert.Greater(t, boosted[0].Priority.Level, items[0].Priority.Level)
}

func TestFailSignalBoostClampedAt100(t *testing.T) {
	items := []Item{
		{ID: "src/lib.rs:85-100", Content: "fn test() {}", Priority: Priority{Level: 99}},
	}
	signal := FailSignal{File: "src/lib.rs", LineHits: []int{90}, Severity: SeverityError}

	boosted := FailSignalBoost(items, signal)
	assert.LessOrEqual(t, boosted[0].Priority.Level, 100)
}

func TestFailSignalBoostSkipsTemplateItems(t *testing.T) {
	items := []Item{
		{ID: "__template__", Content: "Template content", Priority: HighPriority(), Hard: true},
	}
	signal := FailSignal{File: "src/lib.rs", LineHits: []int{90}, Severity: SeverityError}

	boosted := FailSignalBoost(items, signal)
	assert.Equal(t, items[0].Priority.Level, boosted[0].Priority.Level)
}

func TestFailSignalBoostDecaysWithDistance(t *testing.T) {
	near := []Item{{ID: "src/lib.rs:85-85", Content: "x", Priority: LowPriority()}}
	far := []Item{{ID: "src/lib.rs:200-200", Content: "x", Priority: LowPriority()}}
	signal := FailSignal{File: "src/lib.rs", LineHits: []int{85}, Severity: SeverityError}

	boostedNear := FailSignalBoost(near, signal)
	boostedFar := FailSignalBoost(far, signal)
	assert.Greater(t, boostedNear[0].Priority.Level, boostedFar[0].Priority.Level)
}

func TestFailSignalBoostDifferentFileUnaffected(t *testing.T) {
	items := []Item{
		{ID: "src/other.rs:85-100", Content: "x", Priority: LowPriority()},
	}
	signal := FailSignal{File: "src/lib.rs", LineHits: []int{90}, Severity: SeverityError}

	boosted := FailSignalBoost(items, signal)
	assert.Equal(t, items[0].Priority.Level, boosted[0].Priority.Level)
}

func TestSeverityWeightOrdering(t *testing.T) {
	assert.Equal(t, 3.0, severityWeight(SeverityError))
	assert.Equal(t, 1.5, severityWeight(SeverityWarn))
	assert.Equal(t, 1.0, severityWeight(SeverityInfo))
}

func TestParseItemIDSingleLine(t *testing.T) {
	path, start, end, ok := parseItemID("src/lib.rs:42")
	assert.True(t, ok)
	assert.Equal(t, "src/lib.rs", path)
	assert.Equal(t, 42, start)
	assert.Equal(t, 42, end)
}

func TestParseItemIDWindowsDriveLetter(t *testing.T) {
	path, start, end, ok := parseItemID(`C:\src\lib.rs:20-25`)
	assert.True(t, ok)
	assert.Equal(t, `C:\src\lib.rs`, path)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)
}
