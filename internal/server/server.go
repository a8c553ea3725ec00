package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openitup/storycode/internal/engine"
	"github.com/openitup/storycode/internal/logger"
	"github.com/openitup/storycode/internal/prompts"
)

// Server wraps the MCP server and connects it to the pipeline engine.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
	log *logger.Logger
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, log *logger.Logger) (*Server, error) {
	if eng == nil {
		return nil, fmt.Errorf("server: nil engine")
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		eng: eng,
		log: log.With("component", "mcp"),
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "storycode",
		Version: "0.1.0",
	}, nil)

	s.mcp = mcpServer
	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// registerResources adds MCP resources describing the pipeline.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         "storycode://features",
		Name:        "Features",
		Description: "Every feature with its output kind and parameters, plus the languages the story feature can analyze",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		data, err := s.featuresJSON()
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: req.Params.URI, Text: string(data), MIMEType: "application/json"},
			},
		}, nil
	})
}

func (s *Server) featuresJSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		Features  []engine.Feature `json:"features"`
		Languages []string         `json:"languages"`
	}{engine.Catalog(), s.eng.Languages()}, "", "  ")
}

// analyzeCodeArgs are the arguments for the analyze_code tool.
type analyzeCodeArgs struct {
	Code     string `json:"code" jsonschema:"Source code snippet to analyze"`
	Language string `json:"language,omitempty" jsonschema:"Language of the snippet: python (default), typescript, tsx or go"`
}

// featureArgs are the arguments shared by every feature tool.
type featureArgs struct {
	Input    string            `json:"input,omitempty" jsonschema:"The code, text or description the feature works on"`
	Language string            `json:"language,omitempty" jsonschema:"Language of the code for the story feature"`
	Params   map[string]string `json:"params,omitempty" jsonschema:"Feature parameters such as style, language, code_before and code_after"`
}

// registerTools adds the analyze_code tool and one tool per feature.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_code",
		Description: "Extract the structure of a code snippet: function names, loops, conditionals and bound variables. Returns JSON.",
	}, s.handleAnalyze)

	for _, f := range engine.Catalog() {
		mcp.AddTool(s.mcp, &mcp.Tool{
			Name:        string(f.Name),
			Description: toolDescription(f),
		}, s.featureHandler(f.Name))
	}
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest, args analyzeCodeArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Code) == "" {
		return errorResult("code is required"), nil, nil
	}
	st, err := s.eng.Analyze(args.Language, args.Code)
	if err != nil {
		return errorResult(engine.DisplayError(err)), nil, nil
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal structure: %v", err)), nil, nil
	}
	return textResult(string(data)), nil, nil
}

func (s *Server) featureHandler(name prompts.Feature) func(context.Context, *mcp.CallToolRequest, featureArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args featureArgs) (*mcp.CallToolResult, any, error) {
		res, err := s.eng.Run(ctx, engine.Request{
			Feature:  name,
			Input:    args.Input,
			Language: args.Language,
			Params:   args.Params,
		})
		if err != nil {
			s.log.Warn("tool failed", "tool", name, "error", err)
			return errorResult(engine.DisplayError(err)), nil, nil
		}

		result := textResult(res.Output.Display())
		if res.Output.Fallback != "" {
			result.Content = append(result.Content, &mcp.TextContent{
				Text: fmt.Sprintf("(model output could not be used as-is: %s)", res.Output.Fallback),
			})
		}
		return result, nil, nil
	}
}

func toolDescription(f engine.Feature) string {
	desc := f.Title + ": " + f.Description
	if len(f.Params) > 0 {
		desc += " Params: " + strings.Join(f.Params, ", ") + "."
	}
	return desc
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
