package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// loadKDL reads .rup.kdl from projectRoot and overlays it onto base,
// following the teacher's kdl_config.go node-by-node traversal idiom.
// Returns (nil, nil) when no .rup.kdl file exists.
func loadKDL(projectRoot string, base *Config) (*Config, error) {
	path := filepath.Join(projectRoot, ".rup.kdl")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read .rup.kdl: %w", err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse .rup.kdl: %w", err)
	}

	cfg := *base

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "budget":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "model":
					if s, ok := firstStringArg(cn); ok {
						cfg.Budget.Model = s
					}
				case "default_budget":
					if v, ok := firstIntArg(cn); ok {
						cfg.Budget.DefaultBudget = v
					}
				case "code_cap":
					if v, ok := firstIntArg(cn); ok {
						cfg.Budget.CodeCap = v
					}
				case "interface_cap":
					if v, ok := firstIntArg(cn); ok {
						cfg.Budget.InterfaceCap = v
					}
				case "test_cap":
					if v, ok := firstIntArg(cn); ok {
						cfg.Budget.TestCap = v
					}
				case "novelty_floor":
					if v, ok := firstIntArg(cn); ok {
						cfg.Budget.NoveltyFloor = v
					}
				case "call_graph_depth":
					if v, ok := firstIntArg(cn); ok {
						cfg.Budget.CallGraphDepth = v
					}
				case "call_graph_weight":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Budget.CallGraphWeight = v
					}
				case "fail_signal_influence":
					if v, ok := firstIntArg(cn); ok {
						cfg.Budget.FailSignalInfluence = v
					}
				}
			}
		case "dedupe":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "ngram_mode":
					if s, ok := firstStringArg(cn); ok {
						cfg.Dedupe.NgramMode = s
					}
				case "n":
					if v, ok := firstIntArg(cn); ok {
						cfg.Dedupe.N = v
					}
				case "jaccard_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Dedupe.JaccardThreshold = v
					}
				case "hash_window":
					if v, ok := firstIntArg(cn); ok {
						cfg.Dedupe.HashWindow = v
					}
				case "char_fallback":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Dedupe.CharFallback = b
					}
				}
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "exclude":
					if patterns := collectStringArgs(cn); len(patterns) > 0 {
						cfg.Index.Exclude = patterns
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.FollowSymlinks = b
					}
				case "max_file_size":
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Index.MaxFileSize = sz
						}
					} else if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileSize = int64(v)
					}
				}
			}
		}
	}

	if cfg.Project.Root != "" && !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
	}

	return &cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB", used by
// the index.max_file_size setting.
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
