// Command rup is roughup's CLI: assembles token-budgeted context packs
// for an LLM coding session, explains how an anchor line resolves, walks
// a project's symbols, and serves the same operations over MCP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/roughup/internal/anchor"
	"github.com/standardbeagle/roughup/internal/assemble"
	"github.com/standardbeagle/roughup/internal/budget"
	"github.com/standardbeagle/roughup/internal/config"
	"github.com/standardbeagle/roughup/internal/faillog"
	roughmcp "github.com/standardbeagle/roughup/internal/mcp"
	"github.com/standardbeagle/roughup/internal/render"
	"github.com/standardbeagle/roughup/internal/symbols"
	"github.com/standardbeagle/roughup/internal/version"
)

// diagLog writes diagnostics to stderr only, so stdout stays parseable
// JSON/text for callers piping rup's output (SPEC_FULL.md §2 "Logging").
var diagLog = log.New(os.Stderr, "rup: ", log.LstdFlags)

func main() {
	app := &cli.App{
		Name:    "rup",
		Usage:   "Assemble token-budgeted context packs for LLM coding sessions",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to .rup.kdl, relative to root",
				Value: ".rup.kdl",
			},
		},
		Commands: []*cli.Command{
			anchorCommand(),
			contextCommand(),
			symbolsCommand(),
			mcpCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		diagLog.Printf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	absRoot, err := absPath(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %q: %w", root, err)
	}
	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func absPath(p string) (string, error) {
	if p == "" {
		p = "."
	}
	return filepath.Abs(p)
}

func anchorCommand() *cli.Command {
	return &cli.Command{
		Name:  "anchor",
		Usage: "Explain how a file:line target resolves against known functions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "why",
				Usage:    "Target in FILE:LINE form",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text|json",
				Value: "text",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			file, line, err := splitFileLine(c.String("why"))
			if err != nil {
				return err
			}
			provider, err := symbols.NewHeuristic(cfg.Project.Root)
			if err != nil {
				return fmt.Errorf("building symbol provider: %w", err)
			}

			report := anchor.Resolve(cfg.Project.Root, provider, "anchor --why", file, line)

			switch c.String("format") {
			case "json":
				out, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			default:
				fmt.Printf("status=%s validity=%s importance=%s reason=%s\n",
					report.Status, report.Factors.AnchorValidity, report.Factors.StructuralImportance, report.Reason)
				if report.Function != nil {
					fmt.Printf("function=%s (%s:%d-%d)\n", report.Function.QualifiedName, report.Function.File, report.Function.StartLine, report.Function.EndLine)
				}
				for _, nf := range report.NearestFunctions {
					fmt.Printf("near=%s (%s:%d-%d)\n", nf.QualifiedName, nf.File, nf.StartLine, nf.EndLine)
				}
			}
			return nil
		},
	}
}

func contextCommand() *cli.Command {
	return &cli.Command{
		Name:      "context",
		Usage:     "Assemble a token-budgeted context pack",
		ArgsUsage: "QUERY...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "anchor", Usage: "File to anchor the pack on"},
			&cli.IntFlag{Name: "anchor-line", Usage: "Line within --anchor to anchor on"},
			&cli.IntFlag{Name: "budget", Usage: "Total token budget"},
			&cli.StringFlag{Name: "model", Usage: "Tokenizer model name"},
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
			&cli.StringFlag{Name: "format", Usage: "Output format: text|json", Value: "text"},
			&cli.StringFlag{Name: "template", Usage: "Template file with an {{items}} placeholder"},
			&cli.StringFlag{Name: "fail-signal", Usage: "Compiler/linter log file to parse as fail-signal input"},
			&cli.StringSliceFlag{Name: "hint-anchors", Usage: "Extra symbol names added to the queries"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			queries := append([]string{}, c.Args().Slice()...)
			queries = append(queries, c.StringSlice("hint-anchors")...)
			if len(queries) == 0 {
				return fmt.Errorf("context requires at least one QUERY or --hint-anchors name")
			}

			model := c.String("model")
			if model == "" {
				model = cfg.Budget.Model
			}
			total := c.Int("budget")
			if total == 0 {
				total = cfg.Budget.DefaultBudget
			}

			opts := assemble.Options{
				Queries: queries,
				Model:   model,
				Caps: budget.BucketCaps{
					Code:       scaledCap(cfg.Budget.CodeCap, total, cfg.Budget.DefaultBudget),
					Interfaces: scaledCap(cfg.Budget.InterfaceCap, total, cfg.Budget.DefaultBudget),
					Tests:      scaledCap(cfg.Budget.TestCap, total, cfg.Budget.DefaultBudget),
				},
				DedupeConfig: budget.DedupeConfig{
					NgramMode:        budget.NgramMode(cfg.Dedupe.NgramMode),
					N:                cfg.Dedupe.N,
					JaccardThreshold: cfg.Dedupe.JaccardThreshold,
					HashWindow:       cfg.Dedupe.HashWindow,
					CharFallback:     cfg.Dedupe.CharFallback,
				},
				CallGraphDepth:  cfg.Budget.CallGraphDepth,
				CallGraphWeight: cfg.Budget.CallGraphWeight,
			}
			if cfg.Budget.NoveltyFloor > 0 {
				floor := cfg.Budget.NoveltyFloor
				opts.NoveltyFloor = &floor
			}
			if c.String("anchor") != "" {
				opts.Anchor = &assemble.AnchorInput{File: c.String("anchor"), Line: c.Int("anchor-line")}
			}
			if logPath := c.String("fail-signal"); logPath != "" {
				signals, err := loadFailSignals(logPath)
				if err != nil {
					return err
				}
				opts.FailSignals = signals
			}

			provider, err := symbols.NewHeuristic(cfg.Project.Root)
			if err != nil {
				return fmt.Errorf("building symbol provider: %w", err)
			}
			pipeline := assemble.New(cfg.Project.Root, provider)

			pack, err := pipeline.Assemble(context.Background(), opts)
			if err != nil {
				return err
			}

			format := c.String("format")
			if c.Bool("json") {
				format = "json"
			}
			return writePack(pack, format, c.String("template"))
		},
	}
}

func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "symbols",
		Usage: "Walk the project and report symbol counts",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			provider, err := symbols.NewHeuristic(cfg.Project.Root)
			if err != nil {
				return fmt.Errorf("building symbol provider: %w", err)
			}
			fns := provider.Functions()
			byFile := map[string]int{}
			for _, fn := range fns {
				byFile[fn.File]++
			}
			fmt.Printf("total functions: %d across %d files\n", len(fns), len(byFile))
			for file, count := range byFile {
				fmt.Printf("  %s: %d\n", file, count)
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve context_pack and anchor_why over MCP (stdio transport)",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			provider, err := symbols.NewHeuristic(cfg.Project.Root)
			if err != nil {
				return fmt.Errorf("building symbol provider: %w", err)
			}
			diagLog.Printf("starting MCP server over stdio for root %s", cfg.Project.Root)
			server := roughmcp.NewServer(cfg.Project.Root, provider)
			return server.Run(context.Background())
		},
	}
}

func scaledCap(configured, requestedTotal, defaultTotal int) int {
	if requestedTotal <= 0 || defaultTotal <= 0 {
		return configured
	}
	return configured * requestedTotal / defaultTotal
}

func splitFileLine(target string) (string, int, error) {
	idx := strings.LastIndex(target, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("invalid target %q, expected FILE:LINE", target)
	}
	file := target[:idx]
	line, err := strconv.Atoi(target[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid line number in %q: %w", target, err)
	}
	return file, line, nil
}

func loadFailSignals(path string) ([]budget.FailSignal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fail-signal log %q: %w", path, err)
	}
	defer f.Close()
	return faillog.Parse(f)
}

func writePack(pack *budget.Pack, format, templatePath string) error {
	if templatePath != "" {
		tmplBytes, err := os.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("reading template %q: %w", templatePath, err)
		}
		fmt.Println(render.Template(pack, string(tmplBytes)))
		return nil
	}

	switch format {
	case "json":
		out, err := render.JSON(pack)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		fmt.Print(render.Text(pack))
	}
	return nil
}
