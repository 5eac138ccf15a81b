// Package budget implements the token budgeter: priority-aware packing,
// bucket caps, a novelty floor, and the fail-signal relevance boost
// (spec.md §4.4).
package budget

import "github.com/standardbeagle/roughup/internal/tokenizer"

// Priority is a 0-100 importance score; higher packs first.
type Priority struct {
	Level int
}

// Convenience constructors matching spec.md §3's named levels.
func LowPriority() Priority    { return Priority{Level: 25} }
func MediumPriority() Priority { return Priority{Level: 50} }
func HighPriority() Priority   { return Priority{Level: 75} }

// Item is the budgeter's input unit: an addressable span of content with
// a packing priority and hard/soft semantics.
type Item struct {
	ID        string
	Content   string
	Priority  Priority
	Hard      bool
	MinTokens int
}

// SpanTag classifies an item for bucket-cap purposes.
type SpanTag string

const (
	TagCode      SpanTag = "Code"
	TagInterface SpanTag = "Interface"
	TagTest      SpanTag = "Test"
)

// TaggedItem is an Item annotated with the SpanTags it belongs to (an
// item may match more than one) and whether it is "novel" with respect
// to some prior output, for novelty-floor accounting.
type TaggedItem struct {
	Item
	Tags  map[SpanTag]bool
	Novel bool
}

// NewTaggedItem wraps it with an empty tag set.
func NewTaggedItem(it Item) TaggedItem {
	return TaggedItem{Item: it, Tags: map[SpanTag]bool{}}
}

// PrimaryBucket resolves the bucket used for cap accounting when an item
// carries multiple tags: Interface > Test > Code.
func (t TaggedItem) PrimaryBucket() SpanTag {
	if t.Tags[TagInterface] {
		return TagInterface
	}
	if t.Tags[TagTest] {
		return TagTest
	}
	return TagCode
}

// FittedItem is the budgeter's output unit.
type FittedItem struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	Tokens   int     `json:"tokens"`
	Priority int     `json:"priority"`
	Bucket   SpanTag `json:"bucket"`
	Trimmed  bool    `json:"trimmed"`
}

// FitResult is the result of a single (unbucketed) fit() call.
type FitResult struct {
	Fitted      []FittedItem
	Dropped     []string
	TotalTokens int
	Budget      int
	Model       string
}

// BucketCaps bounds per-bucket token totals.
type BucketCaps struct {
	Code       int
	Interfaces int
	Tests      int
}

func (c BucketCaps) forBucket(b SpanTag) int {
	switch b {
	case TagInterface:
		return c.Interfaces
	case TagTest:
		return c.Tests
	default:
		return c.Code
	}
}

// BucketedResult is the result of fit_with_buckets.
type BucketedResult struct {
	Fitted            []FittedItem
	Dropped           []string
	TotalTokens       int
	Model             string
	NoveltyFloorUnmet bool
}

// Pack is the stable output schema (spec.md §6).
type Pack struct {
	SchemaVersion int          `json:"schema_version"`
	Model         string       `json:"model"`
	Budget        int          `json:"budget"`
	TotalTokens   int          `json:"total_tokens"`
	Items         []FittedItem `json:"items"`
}

// counter names the token-counting capability; the assertion below checks
// at compile time that tokenizer.Tokenizer provides it. The Budgeter holds
// a tokenizer.Tokenizer directly, and the dedup engine counts tokens
// through *Budgeter.CountTokens.
type counter interface {
	Count(s string) int
	Name() string
}

var _ counter = tokenizer.Tokenizer(nil)
