// Package callgraph implements the call-graph hop scorer: BFS over the
// static call relation from an anchor function, and the scoring functions
// derived from hop distance (spec.md §4.2).
package callgraph

import "github.com/standardbeagle/roughup/internal/symbols"

// Hops maps function name -> minimum hop count from the anchor (0 = anchor).
type Hops map[string]int

// Hopper runs BFS over a symbols.Provider's static call relation.
type Hopper struct {
	provider symbols.Provider
}

// New returns a Hopper backed by provider.
func New(provider symbols.Provider) *Hopper {
	return &Hopper{provider: provider}
}

// CollectCallGraphHops performs BFS starting at anchorFn (hop 0), following
// provider.CallsFrom edges, stopping once a function has already been
// assigned a hop or the depth limit is exceeded. A function once seen is
// never revisited, so cyclic call graphs are seen as a DAG (spec.md §9).
func (h *Hopper) CollectCallGraphHops(anchorFn string, depth int) Hops {
	hops := Hops{anchorFn: 0}
	if depth < 0 {
		return hops
	}

	frontier := []string{anchorFn}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, fn := range frontier {
			for _, callee := range h.provider.CallsFrom(fn) {
				if _, seen := hops[callee]; seen {
					continue
				}
				hops[callee] = level + 1
				next = append(next, callee)
			}
		}
		frontier = next
	}

	return hops
}

// CallDistanceFromHop is a strictly decreasing, bounded transform of hop
// distance: distance(0) > distance(1) > distance(2) > distance(3) > 0.
func CallDistanceFromHop(hop int) float64 {
	if hop < 0 {
		hop = 0
	}
	return 1.0 / float64(1+hop)
}

// ScoreFromCallDistanceForFn returns weight*distance(hops[name]) if name
// has a known hop, else 0. weight is clamped to [0, 1].
func ScoreFromCallDistanceForFn(name string, hops Hops, weight float64) float64 {
	weight = clampWeight(weight)
	hop, ok := hops[name]
	if !ok {
		return 0
	}
	return weight * CallDistanceFromHop(hop)
}

// ScoreFromCallDistanceForSpan resolves the function owning line in file
// via provider, then delegates to ScoreFromCallDistanceForFn. Returns 0
// when no function owns line.
func (h *Hopper) ScoreFromCallDistanceForSpan(file string, line int, hops Hops, weight float64) float64 {
	fn := h.provider.FunctionAt(file, line)
	if fn == nil {
		return 0
	}
	return ScoreFromCallDistanceForFn(fn.Name, hops, weight)
}

func clampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
