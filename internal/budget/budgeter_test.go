package budget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBudgeter(t *testing.T) *Budgeter {
	t.Helper()
	b, err := New("cl100k_base")
	require.NoError(t, err)
	return b
}

func body(words int) string {
	var sb strings.Builder
	for i := 0; i < words; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("v")
	}
	return sb.String()
}

func TestFitPlacesHardItemsUnconditionally(t *testing.T) {
	b := newTestBudgeter(t)
	items := []Item{
		{ID: "hard-1", Content: "fixed content here", Priority: LowPriority(), Hard: true},
		{ID: "soft-1", Content: body(500), Priority: HighPriority(), MinTokens: 1},
	}
	res, err := b.Fit(items, 10)
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, fi := range res.Fitted {
		ids[fi.ID] = true
	}
	assert.True(t, ids["hard-1"])
}

func TestFitHardOverflowFails(t *testing.T) {
	b := newTestBudgeter(t)
	items := []Item{
		{ID: "hard-1", Content: body(1000), Priority: LowPriority(), Hard: true},
	}
	_, err := b.Fit(items, 2)
	require.Error(t, err)
}

func TestFitTrimsLineGranular(t *testing.T) {
	b := newTestBudgeter(t)
	content := "line one\nline two\nline three\nline four\nline five"
	items := []Item{
		{ID: "big", Content: content, Priority: MediumPriority(), MinTokens: 0},
	}
	res, err := b.Fit(items, 3)
	require.NoError(t, err)
	require.Len(t, res.Fitted, 1)
	assert.True(t, res.Fitted[0].Trimmed)
	assert.LessOrEqual(t, res.Fitted[0].Tokens, 3)
}

func TestFitDropsBelowMinTokens(t *testing.T) {
	b := newTestBudgeter(t)
	items := []Item{
		{ID: "tiny-budget", Content: body(100), Priority: MediumPriority(), MinTokens: 50},
	}
	res, err := b.Fit(items, 2)
	require.NoError(t, err)
	assert.Empty(t, res.Fitted)
	assert.Contains(t, res.Dropped, "tiny-budget")
}

func TestFitPriorityOrder(t *testing.T) {
	b := newTestBudgeter(t)
	items := []Item{
		{ID: "low", Content: "a", Priority: LowPriority()},
		{ID: "high", Content: "b", Priority: HighPriority()},
		{ID: "medium", Content: "c", Priority: MediumPriority()},
	}
	res, err := b.Fit(items, 1000)
	require.NoError(t, err)
	require.Len(t, res.Fitted, 3)
	assert.Equal(t, "high", res.Fitted[0].ID)
	assert.Equal(t, "medium", res.Fitted[1].ID)
	assert.Equal(t, "low", res.Fitted[2].ID)
}

// TestBucketCapsEnforcedLocally reproduces context_bucket_local.rs: three
// buckets of items, each capped independently, with up to 2 tokens of
// drift tolerated.
func TestBucketCapsEnforcedLocally(t *testing.T) {
	b := newTestBudgeter(t)

	var items []TaggedItem
	for i := 0; i < 3; i++ {
		it := NewTaggedItem(Item{ID: idFor("code", i), Content: body(30), Priority: MediumPriority()})
		it.Tags[TagCode] = true
		items = append(items, it)
	}
	for i := 0; i < 2; i++ {
		it := NewTaggedItem(Item{ID: idFor("iface", i), Content: body(40), Priority: HighPriority()})
		it.Tags[TagInterface] = true
		items = append(items, it)
	}
	for i := 0; i < 2; i++ {
		it := NewTaggedItem(Item{ID: idFor("test", i), Content: body(25), Priority: LowPriority()})
		it.Tags[TagTest] = true
		items = append(items, it)
	}

	caps := BucketCaps{Code: 60, Interfaces: 60, Tests: 40}
	res, err := b.FitWithBuckets(items, caps, nil)
	require.NoError(t, err)

	var code, iface, test int
	for _, fi := range res.Fitted {
		switch {
		case strings.HasPrefix(fi.ID, "code-"):
			code += fi.Tokens
		case strings.HasPrefix(fi.ID, "iface-"):
			iface += fi.Tokens
		case strings.HasPrefix(fi.ID, "test-"):
			test += fi.Tokens
		}
	}

	assert.LessOrEqual(t, code, 62)
	assert.LessOrEqual(t, iface, 62)
	assert.LessOrEqual(t, test, 42)
}

func idFor(prefix string, i int) string {
	return prefix + "-" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}

func TestNoveltyFloorMetKeepsNovelItem(t *testing.T) {
	b := newTestBudgeter(t)

	novel := NewTaggedItem(Item{ID: "novel", Content: body(5), Priority: LowPriority()})
	novel.Novel = true
	stale := NewTaggedItem(Item{ID: "stale", Content: body(5), Priority: HighPriority()})

	floor := 3
	res, err := b.FitWithBuckets([]TaggedItem{novel, stale}, BucketCaps{Code: 1000}, &floor)
	require.NoError(t, err)
	assert.False(t, res.NoveltyFloorUnmet)

	ids := map[string]bool{}
	for _, fi := range res.Fitted {
		ids[fi.ID] = true
	}
	assert.True(t, ids["novel"])
}
