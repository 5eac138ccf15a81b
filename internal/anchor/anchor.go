// Package anchor implements the anchor why-report: given a "file:line"
// target, explain whether the line resolves to a known function and how
// confidently, for the `rup anchor --why` surface (spec.md §6).
package anchor

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/standardbeagle/roughup/internal/symbols"
)

// Status is the top-level verdict of resolving an anchor.
type Status string

const (
	StatusGood         Status = "Good"
	StatusOutsideScope Status = "OutsideScope"
	StatusNotAFile     Status = "NotAFile"
)

// Validity describes how precisely the requested line lines up with the
// resolved function, if any.
type Validity string

const (
	ValidityPerfect     Validity = "perfect"
	ValidityApproximate Validity = "approximate"
	ValidityNone        Validity = "none"
)

// Importance is a coarse structural-size bucket for the resolved function.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// Factors bundles the report's scoring explanation.
type Factors struct {
	AnchorValidity       Validity   `json:"anchor_validity"`
	LikelyRelevance      float64    `json:"likely_relevance"`
	StructuralImportance Importance `json:"structural_importance"`
}

// FunctionInfo mirrors symbols.Function for the report's JSON schema.
type FunctionInfo struct {
	Name          string        `json:"name"`
	QualifiedName string        `json:"qualified_name"`
	Kind          symbols.Kind  `json:"kind"`
	File          string        `json:"file"`
	StartLine     int           `json:"start_line"`
	EndLine       int           `json:"end_line"`
	Confidence    float64       `json:"confidence"`
}

// Report is the stable why-report schema (spec.md §6).
type Report struct {
	SchemaVersion   int            `json:"schema_version"`
	Status          Status         `json:"status"`
	Query           string         `json:"query"`
	RequestedLine   int            `json:"requested_line"`
	Function        *FunctionInfo  `json:"function,omitempty"`
	NearestFunctions []FunctionInfo `json:"nearest_functions"`
	Factors         Factors        `json:"factors"`
	Reason          string         `json:"reason"`
}

// nearestCount bounds how many nearestFunctions entries OutsideScope
// reports include.
const nearestCount = 3

// Resolve builds the why-report for query "file:line" against provider,
// rooted at root (used only to check the file's existence on disk —
// function resolution itself is delegated to provider).
func Resolve(root string, provider symbols.Provider, query, file string, line int) Report {
	base := Report{
		SchemaVersion: 1,
		Query:         query,
		RequestedLine: line,
	}

	if info, err := os.Stat(joinIfRel(root, file)); err != nil || info.IsDir() {
		base.Status = StatusNotAFile
		base.Reason = "File does not exist"
		base.Factors = Factors{AnchorValidity: ValidityNone, LikelyRelevance: 0, StructuralImportance: ImportanceLow}
		base.NearestFunctions = []FunctionInfo{}
		return base
	}

	fn := provider.FunctionAt(file, line)
	if fn == nil {
		base.Status = StatusOutsideScope
		base.Reason = "Line is outside any known function scope"
		base.Factors = Factors{AnchorValidity: ValidityNone, LikelyRelevance: 0.1, StructuralImportance: ImportanceLow}
		base.NearestFunctions = nearestFunctions(provider, file, line)
		return base
	}

	base.Status = StatusGood
	base.Reason = "Line is inside a function"
	info := toInfo(fn)
	base.Function = &info
	base.NearestFunctions = []FunctionInfo{}

	validity := ValidityApproximate
	relevance := 0.75
	if line == fn.StartLine {
		validity = ValidityPerfect
		relevance = 0.95
	}
	base.Factors = Factors{
		AnchorValidity:       validity,
		LikelyRelevance:      relevance,
		StructuralImportance: importanceOf(fn),
	}

	return base
}

func importanceOf(fn *symbols.Function) Importance {
	size := fn.EndLine - fn.StartLine
	switch {
	case size >= 50:
		return ImportanceHigh
	case size >= 10:
		return ImportanceMedium
	default:
		return ImportanceLow
	}
}

func toInfo(fn *symbols.Function) FunctionInfo {
	return FunctionInfo{
		Name:          fn.Name,
		QualifiedName: fn.QualifiedName,
		Kind:          fn.Kind,
		File:          fn.File,
		StartLine:     fn.StartLine,
		EndLine:       fn.EndLine,
		Confidence:    fn.Confidence,
	}
}

// nearestFunctions returns up to nearestCount functions in file sorted
// by absolute distance from line, for an OutsideScope report.
func nearestFunctions(provider symbols.Provider, file string, line int) []FunctionInfo {
	var candidates []*symbols.Function
	for _, fn := range provider.Functions() {
		if fn.File == file {
			candidates = append(candidates, fn)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return distanceToSpan(line, candidates[i]) < distanceToSpan(line, candidates[j])
	})

	if len(candidates) > nearestCount {
		candidates = candidates[:nearestCount]
	}

	out := make([]FunctionInfo, 0, len(candidates))
	for _, fn := range candidates {
		out = append(out, toInfo(fn))
	}
	return out
}

func distanceToSpan(line int, fn *symbols.Function) int {
	switch {
	case line < fn.StartLine:
		return fn.StartLine - line
	case line > fn.EndLine:
		return line - fn.EndLine
	default:
		return 0
	}
}

func joinIfRel(root, file string) string {
	if root == "" {
		return file
	}
	return filepath.Join(root, file)
}
