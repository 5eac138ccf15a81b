// Package mcp exposes roughup's context-pack assembly and anchor
// resolution as MCP tools, for editors and agents that talk the Model
// Context Protocol instead of shelling out to the CLI (spec.md §6).
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	gosdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/roughup/internal/anchor"
	"github.com/standardbeagle/roughup/internal/assemble"
	"github.com/standardbeagle/roughup/internal/budget"
	"github.com/standardbeagle/roughup/internal/render"
	"github.com/standardbeagle/roughup/internal/symbols"
	"github.com/standardbeagle/roughup/internal/version"
)

// Server hosts the roughup MCP tool surface over a single repository
// root. Callers construct one Server per root and Run it once; nothing
// on Server is mutated after NewServer returns, so a Server is safe to
// share across Run invocations in tests.
type Server struct {
	root     string
	provider symbols.Provider
	server   *gosdk.Server
}

// NewServer builds the MCP server and registers its tools. provider is
// the symbol provider to resolve anchors and candidates against; callers
// typically pass a *symbols.Heuristic built from root.
func NewServer(root string, provider symbols.Provider) *Server {
	s := &Server{
		root:     root,
		provider: provider,
		server: gosdk.NewServer(&gosdk.Implementation{
			Name:    "roughup-mcp-server",
			Version: version.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Run serves the MCP protocol over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gosdk.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&gosdk.Tool{
		Name:        "context_pack",
		Description: "Assemble a token-budgeted context pack for one or more queries, optionally anchored at a file:line, ranked by call-graph distance and deduplicated.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"queries": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Function or symbol names to search for (exact match preferred, fuzzy fallback).",
				},
				"anchor_file": {
					Type:        "string",
					Description: "Path (relative to the repo root) of the file to anchor the pack on.",
				},
				"anchor_line": {
					Type:        "integer",
					Description: "1-based line number within anchor_file to anchor the pack on.",
				},
				"model": {
					Type:        "string",
					Description: "Tokenizer model name for budget accounting, e.g. cl100k_base.",
				},
				"budget": {
					Type:        "integer",
					Description: "Total token budget, split evenly across the code/interface/test buckets (default 6000).",
				},
			},
			Required: []string{"queries"},
		},
	}, s.handleContextPack)

	s.server.AddTool(&gosdk.Tool{
		Name:        "anchor_why",
		Description: "Explain how a file:line target resolves: which function it falls in (if any), how confidently, and the nearest functions when it falls outside any known function.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Path (relative to the repo root) of the target file.",
				},
				"line": {
					Type:        "integer",
					Description: "1-based line number within the target file.",
				},
			},
			Required: []string{"file", "line"},
		},
	}, s.handleAnchorWhy)
}

// contextPackParams mirrors context_pack's input schema for
// json.Unmarshal-based decoding (spec.md §6 "manual deserialization to
// avoid unknown-field errors" convention).
type contextPackParams struct {
	Queries    []string `json:"queries"`
	AnchorFile string   `json:"anchor_file"`
	AnchorLine int      `json:"anchor_line"`
	Model      string   `json:"model"`
	Budget     int      `json:"budget"`
}

func (s *Server) handleContextPack(ctx context.Context, req *gosdk.CallToolRequest) (*gosdk.CallToolResult, error) {
	var params contextPackParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("context_pack", fmt.Errorf("invalid parameters: %w", err))
	}

	model := params.Model
	if model == "" {
		model = "cl100k_base"
	}
	total := params.Budget
	if total <= 0 {
		total = 6000
	}
	perBucket := total / 3

	opts := assemble.Options{
		Queries: params.Queries,
		Model:   model,
		Caps: budget.BucketCaps{
			Code:       perBucket,
			Interfaces: perBucket,
			Tests:      perBucket,
		},
		DedupeConfig:    budget.DefaultDedupeConfig(),
		CallGraphDepth:  3,
		CallGraphWeight: 1.0,
	}
	if params.AnchorFile != "" {
		opts.Anchor = &assemble.AnchorInput{File: params.AnchorFile, Line: params.AnchorLine}
	}

	pipeline := assemble.New(s.root, s.provider)
	pack, err := pipeline.Assemble(ctx, opts)
	if err != nil {
		return errorResult("context_pack", err)
	}

	data, err := render.JSON(pack)
	if err != nil {
		return errorResult("context_pack", err)
	}
	return textResult(string(data)), nil
}

type anchorWhyParams struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

func (s *Server) handleAnchorWhy(ctx context.Context, req *gosdk.CallToolRequest) (*gosdk.CallToolResult, error) {
	var params anchorWhyParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("anchor_why", fmt.Errorf("invalid parameters: %w", err))
	}

	report := anchor.Resolve(s.root, s.provider, "anchor_why", params.File, params.Line)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errorResult("anchor_why", err)
	}
	return textResult(string(data)), nil
}

func textResult(text string) *gosdk.CallToolResult {
	return &gosdk.CallToolResult{
		Content: []gosdk.Content{&gosdk.TextContent{Text: text}},
	}
}

func errorResult(operation string, err error) (*gosdk.CallToolResult, error) {
	data, marshalErr := json.Marshal(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	return &gosdk.CallToolResult{
		Content: []gosdk.Content{&gosdk.TextContent{Text: string(data)}},
		IsError: true,
	}, nil
}
