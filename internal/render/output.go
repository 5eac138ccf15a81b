// Package render formats a budget.Pack as stable JSON or as
// human-readable text, including the `--template` "{{items}}"
// substitution mode (spec.md §6 "Output record").
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/standardbeagle/roughup/internal/budget"
)

// JSON marshals pack with the stable schema field order/indentation.
func JSON(pack *budget.Pack) ([]byte, error) {
	return json.MarshalIndent(pack, "", "  ")
}

// Text renders pack as a human-readable listing: one header line per
// item followed by its content, separated by a rule.
func Text(pack *budget.Pack) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "model=%s budget=%d total_tokens=%d items=%d\n",
		pack.Model, pack.Budget, pack.TotalTokens, len(pack.Items))

	for _, it := range pack.Items {
		fmt.Fprintf(&sb, "\n--- %s [%s, %d tokens%s] ---\n", it.ID, it.Bucket, it.Tokens, trimmedSuffix(it.Trimmed))
		sb.WriteString(it.Content)
		if !strings.HasSuffix(it.Content, "\n") {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func trimmedSuffix(trimmed bool) string {
	if trimmed {
		return ", trimmed"
	}
	return ""
}

// Template renders pack by substituting "{{items}}" in tmpl with the
// pack's items, each as an "id:" line followed by its content, items
// separated by a newline (no Text-style header rule), and "{{model}}",
// "{{budget}}", "{{total_tokens}}" with their scalar values. Unknown
// placeholders are left untouched.
func Template(pack *budget.Pack, tmpl string) string {
	var items strings.Builder
	for i, it := range pack.Items {
		if i > 0 {
			items.WriteString("\n")
		}
		fmt.Fprintf(&items, "%s:\n%s", it.ID, it.Content)
	}

	out := tmpl
	out = strings.ReplaceAll(out, "{{items}}", items.String())
	out = strings.ReplaceAll(out, "{{model}}", pack.Model)
	out = strings.ReplaceAll(out, "{{budget}}", fmt.Sprintf("%d", pack.Budget))
	out = strings.ReplaceAll(out, "{{total_tokens}}", fmt.Sprintf("%d", pack.TotalTokens))
	return out
}
