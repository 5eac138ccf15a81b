// Package faillog parses compiler/test-failure log lines into
// budget.FailSignal values, the relevance-booster input spec.md §1 scopes
// as "inputs only; their ranking hook is specified" — this package only
// produces FailSignals, it never touches ranking itself.
package faillog

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/standardbeagle/roughup/internal/budget"
)

// diagnosticPattern matches the common compiler/linter diagnostic shape
// "path:line: severity: message" (rustc, go vet, eslint --format unix all
// agree on this layout), capturing path, line, severity word, message.
var diagnosticPattern = regexp.MustCompile(`^(.+?):(\d+):\s*(error|warning|warn|info)?:?\s*(.*)$`)

// Parse reads newline-delimited diagnostic lines from r and groups them
// by file into one FailSignal per file, taking the worst severity seen
// for that file and collecting every hit line and any bracketed
// `[symbol]` annotations as Symbols.
func Parse(r io.Reader) ([]budget.FailSignal, error) {
	byFile := map[string]*budget.FailSignal{}
	var order []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		m := diagnosticPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		file := strings.TrimSpace(m[1])
		lineNum, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		severity := parseSeverity(m[3])
		message := strings.TrimSpace(m[4])

		sig, ok := byFile[file]
		if !ok {
			sig = &budget.FailSignal{File: file, Severity: severity}
			byFile[file] = sig
			order = append(order, file)
		}
		sig.LineHits = append(sig.LineHits, lineNum)
		if message != "" {
			sig.Message = message
		}
		if severityRank(severity) > severityRank(sig.Severity) {
			sig.Severity = severity
		}
		for _, sym := range extractBracketedSymbols(message) {
			sig.Symbols = append(sig.Symbols, sym)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	out := make([]budget.FailSignal, 0, len(order))
	for _, file := range order {
		out = append(out, *byFile[file])
	}
	return out, nil
}

func parseSeverity(word string) budget.Severity {
	switch strings.ToLower(word) {
	case "error":
		return budget.SeverityError
	case "warning", "warn":
		return budget.SeverityWarn
	default:
		return budget.SeverityInfo
	}
}

func severityRank(s budget.Severity) int {
	switch s {
	case budget.SeverityError:
		return 3
	case budget.SeverityWarn:
		return 2
	default:
		return 1
	}
}

var bracketedSymbolPattern = regexp.MustCompile(`\[([A-Za-z_][A-Za-z0-9_]*)\]`)

func extractBracketedSymbols(message string) []string {
	var out []string
	for _, m := range bracketedSymbolPattern.FindAllStringSubmatch(message, -1) {
		out = append(out, m[1])
	}
	return out
}
