// Package assemble wires the line index, call-graph hop scorer, dedup
// engine, and budgeter into the end-to-end context-pack pipeline
// (spec.md §4.5).
package assemble

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/roughup/internal/budget"
	"github.com/standardbeagle/roughup/internal/callgraph"
	"github.com/standardbeagle/roughup/internal/fsview"
	"github.com/standardbeagle/roughup/internal/lineindex"
	"github.com/standardbeagle/roughup/internal/symbols"
)

// AnchorInput is the caller-supplied anchor position.
type AnchorInput struct {
	File string
	Line int
}

// Options configures a single Assemble run.
type Options struct {
	Queries         []string
	Anchor          *AnchorInput
	Model           string
	Caps            budget.BucketCaps
	FailSignals     []budget.FailSignal
	DedupeConfig    budget.DedupeConfig
	CallGraphDepth  int
	CallGraphWeight float64
	NoveltyFloor    *int
	IncludeTemplate bool
}

// candidate is an intermediate representation before priority scoring
// settles into a final Item.
type candidate struct {
	id       string
	file     string
	content  string
	priority int
	matchSim float64
}

// Pipeline assembles context packs from a single repository root's
// symbol provider. It is stateless beyond its inputs and safe to run
// concurrently from multiple goroutines, each with its own Pipeline and
// underlying provider/newline-index cache (spec.md §5).
type Pipeline struct {
	root     string
	provider symbols.Provider
}

// New constructs a Pipeline rooted at root, backed by provider.
func New(root string, provider symbols.Provider) *Pipeline {
	return &Pipeline{root: root, provider: provider}
}

const (
	matchQualityThreshold = 0.6
	neighbourWindow       = 1
	baseBonusAnchorFile   = 30
	baseBonusAnchorDir    = 20
	baseBonusSiblingDir   = 10
	callGraphBonusScale   = 20
	matchQualityBonus     = 15
)

// Assemble runs the full pipeline: candidate gathering, priority
// scoring, fail-signal boost, dedup, and bucket-capped fitting.
func (p *Pipeline) Assemble(ctx context.Context, opts Options) (*budget.Pack, error) {
	b, err := budget.New(opts.Model)
	if err != nil {
		return nil, err
	}

	candidates, err := p.gatherCandidates(ctx, opts)
	if err != nil {
		return nil, err
	}

	items := make([]budget.Item, 0, len(candidates))
	seen := map[string]bool{}
	for _, c := range candidates {
		if seen[c.id] {
			continue
		}
		seen[c.id] = true
		items = append(items, budget.Item{
			ID:       c.id,
			Content:  c.content,
			Priority: budget.Priority{Level: clampLevel(c.priority)},
			Hard:     false,
			MinTokens: 1,
		})
	}

	for _, sig := range opts.FailSignals {
		items = budget.FailSignalBoost(items, sig)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority.Level != items[j].Priority.Level {
			return items[i].Priority.Level > items[j].Priority.Level
		}
		return items[i].ID < items[j].ID
	})

	dedupCfg := opts.DedupeConfig
	if dedupCfg.NgramMode == "" {
		dedupCfg = budget.DefaultDedupeConfig()
	}
	engine := budget.WithConfig(dedupCfg)

	var kept []budget.Item
	for _, it := range items {
		if engine.IsDuplicateWithBetterSelection(it, &kept, b) {
			continue
		}
		kept = append(kept, it)
	}

	tagged := make([]budget.TaggedItem, 0, len(kept))
	for _, it := range kept {
		ti := budget.NewTaggedItem(it)
		ti.Tags[bucketFor(it.ID)] = true
		ti.Novel = true
		tagged = append(tagged, ti)
	}

	res, err := b.FitWithBuckets(tagged, opts.Caps, opts.NoveltyFloor)
	if err != nil {
		return nil, err
	}

	fittedItems := res.Fitted
	if opts.IncludeTemplate {
		fittedItems = append([]budget.FittedItem{templateItem(opts)}, fittedItems...)
	}

	budgetTotal := opts.Caps.Code + opts.Caps.Interfaces + opts.Caps.Tests

	return &budget.Pack{
		SchemaVersion: 1,
		Model:         b.Model(),
		Budget:        budgetTotal,
		TotalTokens:   res.TotalTokens,
		Items:         fittedItems,
	}, nil
}

// gatherCandidates resolves candidate spans for each query (concurrently
// — pure reads against the symbol provider and filesystem) and the
// anchor's containing symbol plus its immediate neighbours, then merges
// them back in a deterministic (query-index, then candidate) order.
func (p *Pipeline) gatherCandidates(ctx context.Context, opts Options) ([]candidate, error) {
	perQuery := make([][]candidate, len(opts.Queries))

	g, _ := errgroup.WithContext(ctx)
	for i, q := range opts.Queries {
		i, q := i, q
		g.Go(func() error {
			cs, err := p.candidatesForQuery(q, opts)
			if err != nil {
				return err
			}
			perQuery[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []candidate
	for _, cs := range perQuery {
		all = append(all, cs...)
	}

	if opts.Anchor != nil {
		anchorCandidates, err := p.candidatesForAnchor(*opts.Anchor, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, anchorCandidates...)
	}

	return all, nil
}

func (p *Pipeline) candidatesForQuery(query string, opts Options) ([]candidate, error) {
	var matches []*symbols.Function
	var matchSim float64 = 1.0

	if exact := p.provider.FunctionsByName(query); len(exact) > 0 {
		matches = exact
	} else {
		best, sim := p.fuzzyMatch(query)
		if best != nil && sim >= matchQualityThreshold {
			matches = []*symbols.Function{best}
			matchSim = sim
		}
	}

	var out []candidate
	for _, fn := range matches {
		c, err := p.candidateFromFunction(fn, opts)
		if err != nil {
			continue
		}
		c.matchSim = matchSim
		c.priority += int(matchSim * matchQualityBonus)
		out = append(out, c)
	}
	return out, nil
}

// fuzzyMatch finds the provider function whose name is most similar to
// query by Jaro-Winkler similarity, grounded on the teacher's
// internal/semantic fuzzy_matcher.go usage of hbollon/go-edlib.
func (p *Pipeline) fuzzyMatch(query string) (*symbols.Function, float64) {
	var best *symbols.Function
	bestScore := 0.0
	for _, fn := range p.provider.Functions() {
		score, err := edlib.StringsSimilarity(query, fn.Name, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		s := float64(score)
		if s > bestScore {
			bestScore = s
			best = fn
		}
	}
	return best, bestScore
}

func (p *Pipeline) candidatesForAnchor(anchor AnchorInput, opts Options) ([]candidate, error) {
	fn := p.provider.FunctionAt(anchor.File, anchor.Line)
	if fn == nil {
		return nil, nil
	}

	var out []candidate
	c, err := p.candidateFromFunction(fn, opts)
	if err == nil {
		out = append(out, c)
	}

	allInFile := p.provider.Functions()
	idx := -1
	for i, other := range allInFile {
		if other == fn {
			idx = i
			break
		}
	}
	if idx >= 0 {
		for d := 1; d <= neighbourWindow; d++ {
			for _, j := range []int{idx - d, idx + d} {
				if j < 0 || j >= len(allInFile) {
					continue
				}
				neighbour := allInFile[j]
				if neighbour.File != fn.File {
					continue
				}
				nc, err := p.candidateFromFunction(neighbour, opts)
				if err != nil {
					continue
				}
				out = append(out, nc)
			}
		}
	}

	return out, nil
}

func (p *Pipeline) candidateFromFunction(fn *symbols.Function, opts Options) (candidate, error) {
	view, err := fsview.ReadSmart(filepath.Join(p.root, fn.File))
	if err != nil {
		return candidate{}, err
	}
	defer view.Close()

	content, err := lineindex.ExtractLines(view.String(), []lineindex.LineRange{{Start: fn.StartLine, End: fn.EndLine}})
	if err != nil {
		return candidate{}, err
	}

	priority := 50 + p.rankingHintBonus(fn.File, opts.Anchor) + p.callGraphBonus(fn, opts)

	return candidate{
		id:       fmt.Sprintf("%s:%d-%d", fn.File, fn.StartLine, fn.EndLine),
		file:     fn.File,
		content:  content,
		priority: priority,
	}, nil
}

// rankingHintBonus implements "anchor-file > sibling-file > outside-file"
// (spec.md §4.5) as an additive priority bonus: the anchor's own file
// ranks above other files in its directory, which rank above files in
// its top-level package, which rank above everything else.
func (p *Pipeline) rankingHintBonus(file string, anchor *AnchorInput) int {
	if anchor == nil {
		return 0
	}
	if file == anchor.File {
		return baseBonusAnchorFile
	}
	anchorDir := filepath.Dir(anchor.File)
	fileDir := filepath.Dir(file)
	if fileDir == anchorDir {
		return baseBonusAnchorDir
	}
	if topLevel(fileDir) == topLevel(anchorDir) {
		return baseBonusSiblingDir
	}
	return 0
}

func topLevel(dir string) string {
	parts := strings.Split(filepath.ToSlash(dir), "/")
	if len(parts) == 0 {
		return dir
	}
	return parts[0]
}

func (p *Pipeline) callGraphBonus(fn *symbols.Function, opts Options) int {
	if opts.Anchor == nil {
		return 0
	}
	anchorFn := p.provider.FunctionAt(opts.Anchor.File, opts.Anchor.Line)
	if anchorFn == nil {
		return 0
	}
	weight := opts.CallGraphWeight
	if weight == 0 {
		weight = 1.0
	}
	hopper := callgraph.New(p.provider)
	hops := hopper.CollectCallGraphHops(anchorFn.Name, opts.CallGraphDepth)
	score := callgraph.ScoreFromCallDistanceForFn(fn.Name, hops, weight)
	return int(score * callGraphBonusScale)
}

// bucketFor infers a SpanTag from a "path:start-end" item id's path
// (spec.md §4.5 "Bucket inference (default)").
func bucketFor(id string) budget.SpanTag {
	idx := strings.LastIndex(id, ":")
	path := id
	if idx >= 0 {
		path = id[:idx]
	}
	lower := strings.ToLower(path)

	if strings.Contains(lower, "/test") || strings.HasPrefix(lower, "test") {
		return budget.TagTest
	}
	switch filepath.Ext(lower) {
	case ".h", ".hpp":
		return budget.TagInterface
	}
	if strings.HasSuffix(lower, ".d.ts") {
		return budget.TagInterface
	}
	return budget.TagCode
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

func templateItem(opts Options) budget.FittedItem {
	var b strings.Builder
	b.WriteString("queries: ")
	b.WriteString(strings.Join(opts.Queries, ", "))
	if opts.Anchor != nil {
		fmt.Fprintf(&b, "\nanchor: %s:%d", opts.Anchor.File, opts.Anchor.Line)
	}
	content := b.String()
	return budget.FittedItem{
		ID:       "__template__",
		Content:  content,
		Tokens:   len(strings.Fields(content)),
		Priority: 100,
		Bucket:   budget.TagCode,
		Trimmed:  false,
	}
}
