package budget

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// NgramMode selects the shingle extraction strategy for the dedup engine.
type NgramMode string

const (
	NgramWord NgramMode = "Word"
	NgramChar NgramMode = "Char"
)

// DedupeConfig configures the near-duplicate detector (spec.md §4.3).
type DedupeConfig struct {
	NgramMode        NgramMode
	N                int
	JaccardThreshold float64
	HashWindow       int
	CharFallback     bool
}

// DefaultDedupeConfig returns the spec's default word-mode configuration.
func DefaultDedupeConfig() DedupeConfig {
	return DedupeConfig{
		NgramMode:        NgramWord,
		N:                3,
		JaccardThreshold: 0.7,
		HashWindow:       4,
		CharFallback:     true,
	}
}

// minShinglesForWordMode is the floor below which word mode falls back
// to char mode when CharFallback is set (spec.md §4.3's "very short
// content" case).
const minShinglesForWordMode = 2

// DedupeEngine removes near-duplicate Items, keeping the best
// representative per spec.md §4.3's better-selection rule.
type DedupeEngine struct {
	cfg DedupeConfig
}

// NewDedupeEngine constructs an engine with explicit defaults.
func NewDedupeEngine() *DedupeEngine {
	return &DedupeEngine{cfg: DefaultDedupeConfig()}
}

// WithConfig constructs an engine from an explicit configuration,
// filling zero-valued fields (N, JaccardThreshold) from the mode's
// defaults the way the caller would expect from a partial override.
func WithConfig(cfg DedupeConfig) *DedupeEngine {
	if cfg.N == 0 {
		if cfg.NgramMode == NgramChar {
			cfg.N = 5
		} else {
			cfg.N = 3
		}
	}
	if cfg.JaccardThreshold == 0 {
		if cfg.NgramMode == NgramChar {
			cfg.JaccardThreshold = 0.5
		} else {
			cfg.JaccardThreshold = 0.7
		}
	}
	return &DedupeEngine{cfg: cfg}
}

// shingles extracts the configured engine's n-gram set for s. The bool
// return reports whether extraction used char mode (either because the
// engine is configured for it, or because word mode fell back to it).
func (e *DedupeEngine) shingles(s string) (map[string]bool, bool) {
	if e.cfg.NgramMode == NgramChar {
		return charShingles(s, e.cfg.N), true
	}

	words := wordShingles(s, e.cfg.N)
	if len(words) >= minShinglesForWordMode || !e.cfg.CharFallback {
		return words, false
	}
	return charShingles(s, 5), true
}

// wordShingles splits on whitespace only (not inner punctuation), so
// that removing or adding spacing shifts the whole window stream: two
// expressions with identical identifiers but reflowed whitespace are
// NOT treated as equivalent under word mode — that distinction is what
// separates word mode from char mode (spec.md §8 invariant #5).
func wordShingles(s string, n int) map[string]bool {
	words := strings.Fields(strings.ToLower(s))
	return ngramSet(words, n)
}

func charShingles(s string, n int) map[string]bool {
	normalized := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	runes := []rune(normalized)
	set := map[string]bool{}
	if len(runes) < n {
		if len(runes) > 0 {
			set[string(runes)] = true
		}
		return set
	}
	for i := 0; i+n <= len(runes); i++ {
		set[string(runes[i:i+n])] = true
	}
	return set
}

func ngramSet(tokens []string, n int) map[string]bool {
	set := map[string]bool{}
	if len(tokens) < n {
		if len(tokens) > 0 {
			set[strings.Join(tokens, " ")] = true
		}
		return set
	}
	for i := 0; i+n <= len(tokens); i++ {
		set[strings.Join(tokens[i:i+n], " ")] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// hashShingles computes 64-bit xxhash values of hashWindow-sized char
// shingles, used by the prefilter to cheaply skip full n-gram Jaccard
// computation on clearly-dissimilar pairs (spec.md §4.3 "Prefilter").
func hashShingles(s string, hashWindow int) map[uint64]bool {
	normalized := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	runes := []rune(normalized)
	set := map[uint64]bool{}
	if len(runes) < hashWindow {
		return set
	}
	for i := 0; i+hashWindow <= len(runes); i++ {
		set[xxhash.Sum64String(string(runes[i:i+hashWindow]))] = true
	}
	return set
}

func hashJaccard(a, b map[uint64]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 1 // nothing to prefilter on; fall through to full comparison
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

const prefilterThreshold = 0.3

// IsDuplicate reports whether a and b are near-duplicates under the
// engine's configured mode, threshold, and prefilter.
func (e *DedupeEngine) IsDuplicate(a, b string) bool {
	if e.cfg.HashWindow > 0 {
		ha, hb := hashShingles(a, e.cfg.HashWindow), hashShingles(b, e.cfg.HashWindow)
		if hashJaccard(ha, hb) < prefilterThreshold {
			return false
		}
	}

	sa, aFellBack := e.shingles(a)
	sb, bFellBack := e.shingles(b)

	threshold := e.cfg.JaccardThreshold
	if e.cfg.NgramMode == NgramWord && (aFellBack || bFellBack) {
		threshold = 0.5 // fell back to char mode: use char mode's threshold
	}

	return jaccard(sa, sb) >= threshold
}

// IsDuplicateWithBetterSelection scans kept for a duplicate of candidate
// under the engine's similarity rule; if found, applies the
// better-selection rule (higher priority, then hard, then more tokens,
// then lexicographically smaller id) to decide which survives in kept,
// replacing in place. Returns whether a duplicate was found.
func (e *DedupeEngine) IsDuplicateWithBetterSelection(candidate Item, kept *[]Item, budgeter *Budgeter) bool {
	for i, k := range *kept {
		if !e.IsDuplicate(candidate.Content, k.Content) {
			continue
		}
		if betterOf(candidate, k, budgeter) == candidate.ID {
			(*kept)[i] = candidate
		}
		return true
	}
	return false
}

// betterOf applies the better-selection rule and returns the winning
// item's id.
func betterOf(a, b Item, budgeter *Budgeter) string {
	if a.Priority.Level != b.Priority.Level {
		if a.Priority.Level > b.Priority.Level {
			return a.ID
		}
		return b.ID
	}
	if a.Hard != b.Hard {
		if a.Hard {
			return a.ID
		}
		return b.ID
	}
	ta, tb := budgeter.CountTokens(a.Content), budgeter.CountTokens(b.Content)
	if ta != tb {
		if ta > tb {
			return a.ID
		}
		return b.ID
	}
	ids := []string{a.ID, b.ID}
	sort.Strings(ids)
	return ids[0]
}
