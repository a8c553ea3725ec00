package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openitup/storycode/internal/completion"
	"github.com/openitup/storycode/internal/config"
	"github.com/openitup/storycode/internal/engine"
	"github.com/openitup/storycode/internal/extractors/pyextractor"
	"github.com/openitup/storycode/internal/facts"
	"github.com/openitup/storycode/internal/prompts"
)

func newTestServer(t *testing.T, client completion.Client) *Server {
	t.Helper()
	eng, err := engine.New(config.Default(), client, nil)
	if err != nil {
		t.Fatal(err)
	}
	eng.RegisterExtractor(pyextractor.New())
	s, err := New(eng, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	var parts []string
	for _, c := range r.Content {
		tc, ok := c.(*mcp.TextContent)
		if !ok {
			t.Fatalf("unexpected content type %T", c)
		}
		parts = append(parts, tc.Text)
	}
	return strings.Join(parts, "\n")
}

func TestNew_NilEngine(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Error("expected error for nil engine")
	}
}

func TestHandleAnalyze(t *testing.T) {
	s := newTestServer(t, completion.NewFakeClient(""))

	res, _, err := s.handleAnalyze(context.Background(), nil, analyzeCodeArgs{Code: "def f(a):\n    for x in a:\n        pass\n"})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	var st facts.Structure
	if err := json.Unmarshal([]byte(resultText(t, res)), &st); err != nil {
		t.Fatalf("result is not a structure: %v", err)
	}
	if len(st.Functions) != 1 || st.Functions[0] != "f" || !st.HasVariable("x") {
		t.Errorf("structure = %+v", st)
	}
}

func TestHandleAnalyze_Errors(t *testing.T) {
	s := newTestServer(t, completion.NewFakeClient(""))
	tests := []struct {
		name string
		args analyzeCodeArgs
		want string
	}{
		{"empty", analyzeCodeArgs{Code: "  "}, "code is required"},
		{"syntax", analyzeCodeArgs{Code: "def f(:"}, "Error parsing code"},
		{"language", analyzeCodeArgs{Code: "x", Language: "cobol"}, "unsupported language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := s.handleAnalyze(context.Background(), nil, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError || !strings.Contains(resultText(t, res), tt.want) {
				t.Errorf("result = %v %q, want error containing %q", res.IsError, resultText(t, res), tt.want)
			}
		})
	}
}

func TestFeatureHandler(t *testing.T) {
	fake := completion.NewFakeClient("  a regex: ^a+$  ").
		On("programmer comedian", "no json today")
	s := newTestServer(t, fake)

	res, _, err := s.featureHandler(prompts.FeatureRegexGenerate)(context.Background(), nil, featureArgs{Input: "one or more a"})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || resultText(t, res) != "a regex: ^a+$" {
		t.Errorf("result = %q", resultText(t, res))
	}

	res, _, err = s.featureHandler(prompts.FeatureBugJoke)(context.Background(), nil, featureArgs{Input: "null pointer"})
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	if res.IsError || !strings.Contains(text, "couldn't parse") || !strings.Contains(text, "no_json_object") {
		t.Errorf("fallback result = %q", text)
	}
}

func TestFeatureHandler_ServiceError(t *testing.T) {
	fake := completion.NewFakeClient("").FailWith(&completion.ServiceError{Op: "request"})
	s := newTestServer(t, fake)

	res, _, err := s.featureHandler(prompts.FeatureErrorSleuth)(context.Background(), nil, featureArgs{Input: "segfault"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.HasPrefix(resultText(t, res), "Error connecting to the completion service") {
		t.Errorf("result = %q", resultText(t, res))
	}
}

func TestFeaturesJSON(t *testing.T) {
	s := newTestServer(t, completion.NewFakeClient(""))
	data, err := s.featuresJSON()
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Features  []engine.Feature `json:"features"`
		Languages []string         `json:"languages"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Features) != len(prompts.All()) || len(got.Languages) != 1 {
		t.Errorf("features = %d, languages = %v", len(got.Features), got.Languages)
	}
}

func TestToolDescription(t *testing.T) {
	f, _ := engine.Lookup(prompts.FeatureCommitMessage)
	got := toolDescription(f)
	if !strings.HasPrefix(got, "Commit poet: ") || !strings.HasSuffix(got, "Params: code_before, code_after, style.") {
		t.Errorf("description = %q", got)
	}
}

func TestServer_InMemorySession(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, completion.NewFakeClient("Once upon a time."))

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := s.mcp.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools.Tools) != len(engine.Catalog())+1 {
		t.Errorf("tools = %d, want %d", len(tools.Tools), len(engine.Catalog())+1)
	}

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      string(prompts.FeatureStory),
		Arguments: map[string]any{"input": "def hero():\n    pass\n"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError || resultText(t, res) != "Once upon a time." {
		t.Errorf("story result = %q", resultText(t, res))
	}
}
