package symbols

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultExcludes are directories skipped during the walk regardless of
// DetectBuildOutputs (build_artifacts.go) finds, mirroring the teacher's
// always-on exclusions (vendor/VCS directories).
var defaultExcludes = []string{
	"**/.git/**", "**/node_modules/**", "**/vendor/**",
	"**/.lci.kdl", "**/.rup.kdl",
}

// declPattern matches a function/method declaration across the small set
// of languages this heuristic provider recognises, capturing the name in
// group 1. This is deliberately shallow: full parsing is out of scope
// (spec.md §1), so only the common "keyword name(" shapes are covered.
var declPattern = regexp.MustCompile(`(?m)^\s*(?:pub(?:\([^)]*\))?\s+)?(?:func|fn|def|function)\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// callPattern matches bare identifier calls, used to approximate the
// static call relation from a function's body text.
var callPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// Heuristic is a regex/indentation-based Provider over a filesystem
// subtree. It recognises Go, Rust, Python, and JS/TS style function
// declarations well enough to resolve an anchor and walk one or two call
// hops; it makes no claim to full-language fidelity.
type Heuristic struct {
	root      string
	functions []*Function
	byName    map[string][]*Function
	byFile    map[string][]*Function
	calls     map[string][]string // function name -> callee names
}

// NewHeuristic walks root (respecting defaultExcludes and any
// language-specific build-output directories detected by DetectBuildOutputs)
// and extracts a shallow function index.
func NewHeuristic(root string) (*Heuristic, error) {
	h := &Heuristic{
		root:   root,
		byName: make(map[string][]*Function),
		byFile: make(map[string][]*Function),
		calls:  make(map[string][]string),
	}

	excludes := append(append([]string{}, defaultExcludes...), DetectBuildOutputs(root)...)

	matches, err := doublestar.Glob(os.DirFS(root), "**/*")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	for _, rel := range matches {
		if isExcluded(rel, excludes) {
			continue
		}
		if !recognisedExt(rel) {
			continue
		}

		full := filepath.Join(root, rel)
		data, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		h.indexFile(rel, string(data))
	}

	sort.Slice(h.functions, func(i, j int) bool {
		if h.functions[i].File != h.functions[j].File {
			return h.functions[i].File < h.functions[j].File
		}
		return h.functions[i].StartLine < h.functions[j].StartLine
	})

	return h, nil
}

func isExcluded(rel string, excludes []string) bool {
	for _, pat := range excludes {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

func recognisedExt(rel string) bool {
	switch filepath.Ext(rel) {
	case ".go", ".rs", ".py", ".js", ".ts", ".jsx", ".tsx":
		return true
	default:
		return false
	}
}

func (h *Heuristic) indexFile(relPath, content string) {
	lines := strings.Split(content, "\n")
	isPython := filepath.Ext(relPath) == ".py"

	for lineIdx, line := range lines {
		m := declPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		startLine := lineIdx + 1

		var endLine int
		if isPython {
			endLine = pythonBlockEnd(lines, lineIdx)
		} else {
			endLine = braceBlockEnd(lines, lineIdx)
		}

		fn := &Function{
			Name:          name,
			QualifiedName: qualifiedName(relPath, name),
			Kind:          KindFunction,
			File:          relPath,
			StartLine:     startLine,
			EndLine:       endLine,
			Confidence:    0.6,
		}

		h.functions = append(h.functions, fn)
		h.byName[name] = append(h.byName[name], fn)
		h.byFile[relPath] = append(h.byFile[relPath], fn)
		h.calls[name] = extractCalls(lines, startLine, endLine, name)
	}
}

func qualifiedName(relPath, name string) string {
	dir := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	dir = strings.ReplaceAll(dir, string(filepath.Separator), "::")
	dir = strings.ReplaceAll(dir, "/", "::")
	return dir + "::" + name
}

// braceBlockEnd returns the 1-based line of the closing '}' that matches
// the first '{' found at or after declLine, or the file's last line if
// none is found (e.g. a forward declaration with no body).
func braceBlockEnd(lines []string, declLine int) int {
	depth := 0
	seenOpen := false
	for i := declLine; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				seenOpen = true
			case '}':
				depth--
				if seenOpen && depth == 0 {
					return i + 1
				}
			}
		}
	}
	return len(lines)
}

// pythonBlockEnd returns the last line of an indented block starting
// below declLine, ending at the first subsequent non-blank line whose
// indentation is <= the declaration's.
func pythonBlockEnd(lines []string, declLine int) int {
	declIndent := indentOf(lines[declLine])
	last := declLine + 1
	for i := declLine + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if indentOf(lines[i]) <= declIndent {
			break
		}
		last = i + 1
	}
	return last
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' || r == '\t' {
			n++
			continue
		}
		break
	}
	return n
}

// extractCalls scans [startLine, endLine) of a function's body for bare
// identifier calls, excluding the function's own declaration name and
// common control-flow keywords.
func extractCalls(lines []string, startLine, endLine int, ownName string) []string {
	if endLine <= startLine {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	for i := startLine; i < endLine && i < len(lines); i++ {
		for _, m := range callPattern.FindAllStringSubmatch(lines[i], -1) {
			name := m[1]
			if name == ownName || isKeyword(name) || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

var keywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "match": true,
	"func": true, "fn": true, "def": true, "function": true, "return": true,
	"else": true, "catch": true, "try": true, "elif": true,
}

func isKeyword(name string) bool {
	return keywords[name]
}

func (h *Heuristic) FunctionAt(file string, line int) *Function {
	var best *Function
	for _, fn := range h.byFile[file] {
		if line >= fn.StartLine && line <= fn.EndLine {
			if best == nil || (fn.EndLine-fn.StartLine) < (best.EndLine-best.StartLine) {
				best = fn
			}
		}
	}
	return best
}

func (h *Heuristic) FunctionsByName(name string) []*Function {
	return h.byName[name]
}

func (h *Heuristic) Functions() []*Function {
	return h.functions
}

func (h *Heuristic) CallsFrom(functionName string) []string {
	return h.calls[functionName]
}
