package budget

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/roughup/internal/errors"
	"github.com/standardbeagle/roughup/internal/tokenizer"
)

// Budgeter packs Items under a token budget using a named tokenizer
// model, reporting the model identity in every result it produces.
type Budgeter struct {
	tok   tokenizer.Tokenizer
	model string
}

// New constructs a Budgeter for model (e.g. "cl100k_base").
func New(model string) (*Budgeter, error) {
	tok, err := tokenizer.New(model)
	if err != nil {
		return nil, err
	}
	return &Budgeter{tok: tok, model: tok.Name()}, nil
}

// CountTokens is the budgeter's public token-counting capability, used
// by the dedup engine's tie-break (spec.md §4.3) without coupling it to
// a concrete tokenizer.
func (b *Budgeter) CountTokens(s string) int {
	return b.tok.Count(s)
}

// Model reports the tokenizer identity selected at construction.
func (b *Budgeter) Model() string {
	return b.model
}

// priorityLess implements the (priority.level DESC, hard DESC, id ASC)
// ordering from spec.md §4.4.
func priorityLess(items []Item, i, j int) bool {
	a, c := items[i], items[j]
	if a.Priority.Level != c.Priority.Level {
		return a.Priority.Level > c.Priority.Level
	}
	if a.Hard != c.Hard {
		return a.Hard
	}
	return a.ID < c.ID
}

// Fit packs items under budget tokens: hard items are placed in full
// unconditionally (failing with HardOverflow if their sum exceeds
// budget), then soft items are greedily placed in priority order,
// trimmed line-by-line from the end when they don't fit whole, and
// dropped if trimming would take them below MinTokens.
func (b *Budgeter) Fit(items []Item, budget int) (*FitResult, error) {
	var hard, soft []Item
	hardTokens := 0
	for _, it := range items {
		n := b.tok.Count(it.Content)
		if it.Hard {
			hard = append(hard, it)
			hardTokens += n
		} else {
			soft = append(soft, it)
		}
	}

	if hardTokens > budget {
		return nil, errors.HardOverflow("Fit", fmt.Errorf("hard item tokens %d exceed budget %d", hardTokens, budget))
	}

	var fitted []FittedItem
	var dropped []string
	total := 0

	for _, it := range hard {
		n := b.tok.Count(it.Content)
		fitted = append(fitted, FittedItem{
			ID: it.ID, Content: it.Content, Tokens: n,
			Priority: it.Priority.Level, Trimmed: false,
		})
		total += n
	}

	remaining := budget - hardTokens

	sort.SliceStable(soft, func(i, j int) bool { return priorityLess(soft, i, j) })

	for _, it := range soft {
		n := b.tok.Count(it.Content)
		if n <= remaining {
			fitted = append(fitted, FittedItem{
				ID: it.ID, Content: it.Content, Tokens: n,
				Priority: it.Priority.Level, Trimmed: false,
			})
			remaining -= n
			total += n
			continue
		}

		content, trimmedTokens, ok := b.trimToFit(it.Content, remaining, it.MinTokens)
		if !ok {
			dropped = append(dropped, it.ID)
			continue
		}
		fitted = append(fitted, FittedItem{
			ID: it.ID, Content: content, Tokens: trimmedTokens,
			Priority: it.Priority.Level, Trimmed: true,
		})
		remaining -= trimmedTokens
		total += trimmedTokens
	}

	sort.SliceStable(fitted, func(i, j int) bool {
		a, c := fitted[i], fitted[j]
		if a.Priority != c.Priority {
			return a.Priority > c.Priority
		}
		return a.ID < c.ID
	})

	return &FitResult{
		Fitted:      fitted,
		Dropped:     dropped,
		TotalTokens: total,
		Budget:      budget,
		Model:       b.model,
	}, nil
}

// trimToFit drops whole lines from the end of content until it fits in
// remaining tokens, refusing (returning ok=false) once the trimmed
// content's token count would fall below minTokens.
func (b *Budgeter) trimToFit(content string, remaining, minTokens int) (string, int, bool) {
	lines := strings.Split(content, "\n")
	for len(lines) > 0 {
		candidate := strings.Join(lines, "\n")
		n := b.tok.Count(candidate)
		if n <= remaining {
			if n < minTokens {
				return "", 0, false
			}
			return candidate, n, true
		}
		if n < minTokens {
			return "", 0, false
		}
		lines = lines[:len(lines)-1]
	}
	return "", 0, false
}

// FitWithBuckets packs TaggedItems into Code/Interface/Test buckets,
// each capped independently (no spill across buckets); each bucket is
// fitted with Fit against its exact cap, so no bucket's total exceeds
// its cap. When noveltyFloor is non-nil, at least that many tokens across
// all buckets must come from items marked Novel; if the floor cannot be
// met after dropping the lowest-priority non-novel fitted items, the
// pack is still returned with NoveltyFloorUnmet set.
func (b *Budgeter) FitWithBuckets(items []TaggedItem, caps BucketCaps, noveltyFloor *int) (*BucketedResult, error) {
	buckets := map[SpanTag][]Item{}
	for _, ti := range items {
		bucket := ti.PrimaryBucket()
		buckets[bucket] = append(buckets[bucket], ti.Item)
	}

	novelIDs := map[string]bool{}
	for _, ti := range items {
		if ti.Novel {
			novelIDs[ti.ID] = true
		}
	}

	var allFitted []FittedItem
	var allDropped []string
	total := 0

	for _, bucket := range []SpanTag{TagCode, TagInterface, TagTest} {
		bucketCap := caps.forBucket(bucket)
		bucketItems := buckets[bucket]
		if len(bucketItems) == 0 {
			continue
		}
		res, err := b.Fit(bucketItems, bucketCap)
		if err != nil {
			return nil, err
		}
		for i := range res.Fitted {
			res.Fitted[i].Bucket = bucket
		}
		allFitted = append(allFitted, res.Fitted...)
		allDropped = append(allDropped, res.Dropped...)
		total += res.TotalTokens
	}

	result := &BucketedResult{
		Fitted:      allFitted,
		Dropped:     allDropped,
		TotalTokens: total,
		Model:       b.model,
	}

	if noveltyFloor != nil {
		enforceNoveltyFloor(result, novelIDs, *noveltyFloor)
	}

	return result, nil
}

// enforceNoveltyFloor drops the lowest-priority non-novel fitted items
// (in ascending priority order) until the remaining novel-item token sum
// reaches floor, or there is nothing left to drop.
func enforceNoveltyFloor(result *BucketedResult, novelIDs map[string]bool, floor int) {
	novelTokens := 0
	for _, fi := range result.Fitted {
		if novelIDs[fi.ID] {
			novelTokens += fi.Tokens
		}
	}
	if novelTokens >= floor {
		return
	}

	nonNovel := make([]FittedItem, 0, len(result.Fitted))
	kept := make([]FittedItem, 0, len(result.Fitted))
	for _, fi := range result.Fitted {
		if novelIDs[fi.ID] {
			kept = append(kept, fi)
		} else {
			nonNovel = append(nonNovel, fi)
		}
	}
	sort.SliceStable(nonNovel, func(i, j int) bool {
		return nonNovel[i].Priority < nonNovel[j].Priority
	})

	for novelTokens < floor && len(nonNovel) > 0 {
		drop := nonNovel[0]
		nonNovel = nonNovel[1:]
		result.Dropped = append(result.Dropped, drop.ID)
		result.TotalTokens -= drop.Tokens
	}

	merged := append(kept, nonNovel...)
	sort.SliceStable(merged, func(i, j int) bool {
		a, c := merged[i], merged[j]
		if a.Priority != c.Priority {
			return a.Priority > c.Priority
		}
		return a.ID < c.ID
	})
	result.Fitted = merged
	if novelTokens < floor {
		result.NoveltyFloorUnmet = true
	}
}
