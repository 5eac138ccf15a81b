// Package symbols defines the SymbolProvider capability — the boundary
// between the context-assembly core and language-specific parsing, which
// spec.md §1 explicitly treats as an opaque, externally-supplied input
// ("Symbol indexing and language-specific parsing (treated as an opaque
// symbol provider)"). This package ships one concrete implementation
// (Heuristic) good enough to drive the call-graph hop scorer and the
// assembly pipeline end to end; it is intentionally not a real parser.
package symbols

// Kind distinguishes top-level functions from methods attached to a type.
type Kind string

const (
	KindFunction Kind = "Function"
	KindMethod   Kind = "Method"
)

// Function describes one function/method span discovered by a Provider.
type Function struct {
	Name          string
	QualifiedName string
	Kind          Kind
	File          string // path relative to the provider's root
	StartLine     int
	EndLine       int
	Confidence    float64 // 0..1, heuristic confidence in the span boundaries
}

// Provider is the capability the core depends on: mapping (file, line) to
// the containing function, looking functions up by name, listing all
// functions (for "nearest functions" and candidate gathering), and
// emitting the static call relation a function body references.
type Provider interface {
	// FunctionAt returns the function containing line in file, or nil if
	// line falls outside any known function span.
	FunctionAt(file string, line int) *Function

	// FunctionsByName returns every function across the indexed root
	// whose bare name equals name.
	FunctionsByName(name string) []*Function

	// Functions returns every function the provider knows about, in a
	// stable (file, start line) order.
	Functions() []*Function

	// CallsFrom returns the bare names of functions statically called
	// from the body of functionName, deduplicated. Functions with no
	// known callees (or an unknown name) return nil.
	CallsFrom(functionName string) []string
}
