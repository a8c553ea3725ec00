package normalize

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize_JSONEmbeddedInProse(t *testing.T) {
	n := New()
	payload := `{"joke":"x","explanation":"y"}`
	tests := []struct {
		name string
		raw  string
	}{
		{"bare", payload},
		{"leading prose", "Sure! Here you go: " + payload},
		{"trailing prose", payload + "\nHope you enjoyed it."},
		{"fenced", "```json\n" + payload + "\n```"},
		{"both sides", "Here:\n" + payload + "\nThat's all."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := n.Normalize(tt.raw, KindJSON)
			if out.Fallback != DiagNone {
				t.Fatalf("unexpected fallback %q", out.Fallback)
			}
			want := map[string]any{"joke": "x", "explanation": "y"}
			if !reflect.DeepEqual(out.Object, want) {
				t.Errorf("object = %v, want %v", out.Object, want)
			}
		})
	}
}

func TestNormalize_JSONValuesKeptVerbatim(t *testing.T) {
	raw := `Here: {"joke":"In JS, \\u0041 is just A","explanation":"Escape \\u0041 and\\nnewline"}`
	out := New().Normalize(raw, KindJSON)
	if out.Fallback != DiagNone {
		t.Fatalf("unexpected fallback %q", out.Fallback)
	}
	want := map[string]any{
		"joke":        `In JS, \u0041 is just A`,
		"explanation": `Escape \u0041 and\nnewline`,
	}
	if !reflect.DeepEqual(out.Object, want) {
		t.Errorf("object = %q, want %q", out.Object, want)
	}
}

func TestNormalize_JSONNoBraces(t *testing.T) {
	out := New().Normalize("no braces here", KindJSON)
	if out.Kind != KindJSON {
		t.Fatalf("kind = %q, want json", out.Kind)
	}
	if out.Fallback != DiagNoJSONObject {
		t.Errorf("fallback = %q, want %q", out.Fallback, DiagNoJSONObject)
	}
	if out.Object["joke"] != "The model told a joke I couldn't parse!" {
		t.Errorf("joke = %v", out.Object["joke"])
	}
	if _, ok := out.Object["explanation"].(string); !ok {
		t.Errorf("explanation missing: %v", out.Object)
	}
}

func TestNormalize_JSONMalformedEmbedsRaw(t *testing.T) {
	raw := `Here: {"joke": "unterminated, "explanation": }`
	out := New().Normalize(raw, KindJSON)
	if out.Fallback != DiagInvalidJSON {
		t.Fatalf("fallback = %q, want %q", out.Fallback, DiagInvalidJSON)
	}
	if out.Object["joke"] != "The AI's JSON was malformed!" {
		t.Errorf("joke = %v", out.Object["joke"])
	}
	explanation, _ := out.Object["explanation"].(string)
	if !strings.HasSuffix(explanation, raw) {
		t.Errorf("explanation %q does not embed raw text", explanation)
	}
}

func TestNormalize_JSONFallbacksDistinguishable(t *testing.T) {
	n := New()
	missing := n.Normalize("nothing to see", KindJSON)
	malformed := n.Normalize("{not json}", KindJSON)
	if missing.Fallback == malformed.Fallback {
		t.Fatalf("both fallbacks tagged %q", missing.Fallback)
	}
	if reflect.DeepEqual(missing.Object, malformed.Object) {
		t.Fatal("fallback objects are identical")
	}
}

func TestNormalize_JSONClosingBeforeOpening(t *testing.T) {
	out := New().Normalize("} backwards {", KindJSON)
	if out.Fallback != DiagNoJSONObject {
		t.Errorf("fallback = %q, want %q", out.Fallback, DiagNoJSONObject)
	}
}

func TestNormalize_JSONArrayIsNotObject(t *testing.T) {
	// The brace span here is "{"a":1}, {"b":2}", which is not one object.
	out := New().Normalize(`[{"a":1}, {"b":2}]`, KindJSON)
	if out.Fallback != DiagInvalidJSON {
		t.Errorf("fallback = %q, want %q", out.Fallback, DiagInvalidJSON)
	}
}

func TestNormalize_CustomFallbackKeys(t *testing.T) {
	n := &Normalizer{SummaryKey: "title", DetailKey: "detail"}
	out := n.Normalize("plain", KindJSON)
	if _, ok := out.Object["title"]; !ok {
		t.Errorf("missing title key: %v", out.Object)
	}
	if _, ok := out.Object["detail"]; !ok {
		t.Errorf("missing detail key: %v", out.Object)
	}
}

func TestExtractJSONObject_Errors(t *testing.T) {
	if _, err := ExtractJSONObject("none"); !errors.Is(err, ErrNoJSONObject) {
		t.Errorf("err = %v, want ErrNoJSONObject", err)
	}
	_, err := ExtractJSONObject("x {bad} y")
	var invalid *InvalidJSONError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want *InvalidJSONError", err)
	}
	if invalid.Candidate != "{bad}" {
		t.Errorf("candidate = %q, want {bad}", invalid.Candidate)
	}
}

func TestNormalize_DiagramDuplicateHeader(t *testing.T) {
	out := New().Normalize("flowchart TD\nA-->B\nflowchart TD\nC-->D", KindDiagram)
	want := []string{"flowchart TD", "A-->B", "C-->D"}
	if out.Fallback != DiagNone {
		t.Fatalf("unexpected fallback %q", out.Fallback)
	}
	if !reflect.DeepEqual(out.Lines, want) {
		t.Errorf("lines = %q, want %q", out.Lines, want)
	}
	if out.Text != strings.Join(want, "\n") {
		t.Errorf("text = %q", out.Text)
	}
}

func TestNormalize_DiagramNoHeader(t *testing.T) {
	out := New().Normalize("some text with no header", KindDiagram)
	if out.Fallback != DiagNoDiagramHeader {
		t.Fatalf("fallback = %q, want %q", out.Fallback, DiagNoDiagramHeader)
	}
	if out.Text != ErrorDiagram {
		t.Errorf("text = %q, want %q", out.Text, ErrorDiagram)
	}
	if out.Lines[0] != "flowchart TD" {
		t.Errorf("error diagram header = %q", out.Lines[0])
	}
}

func TestNormalize_DiagramCleanup(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "prose and fence before header",
			raw:  "Here is the chart:\n```mermaid\nflowchart LR\n  A --> B\n```",
			want: []string{"flowchart LR", "A --> B", "```"},
		},
		{
			name: "case-insensitive header",
			raw:  "FlowChart TD\nA-->B\nFLOWCHART TD\nB-->C",
			want: []string{"FlowChart TD", "A-->B", "B-->C"},
		},
		{
			name: "blank and padded lines",
			raw:  "flowchart TD\n\n   A-->B   \r\n\t\nB-->C",
			want: []string{"flowchart TD", "A-->B", "B-->C"},
		},
		{
			name: "header only",
			raw:  "flowchart TD",
			want: []string{"flowchart TD"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanDiagram(tt.raw, "flowchart")
			if err != nil {
				t.Fatalf("CleanDiagram: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize_DiagramIdempotent(t *testing.T) {
	n := New()
	inputs := []string{
		"flowchart TD\nA-->B\nflowchart TD\nC-->D",
		"Sure!\n\nflowchart LR\n  start --> stop\n\n",
		"no header at all",
		ErrorDiagram,
	}
	for _, raw := range inputs {
		first := n.Normalize(raw, KindDiagram)
		second := n.Normalize(first.Text, KindDiagram)
		if second.Text != first.Text {
			t.Errorf("not idempotent for %q:\nfirst  %q\nsecond %q", raw, first.Text, second.Text)
		}
		if !reflect.DeepEqual(second.Lines, first.Lines) {
			t.Errorf("lines changed for %q: %q -> %q", raw, first.Lines, second.Lines)
		}
	}
}

func TestNormalize_DiagramCustomHeader(t *testing.T) {
	n := &Normalizer{DiagramHeader: "sequenceDiagram"}
	out := n.Normalize("x\nsequenceDiagram\nA->>B: hi", KindDiagram)
	want := []string{"sequenceDiagram", "A->>B: hi"}
	if !reflect.DeepEqual(out.Lines, want) {
		t.Errorf("lines = %q, want %q", out.Lines, want)
	}
}

func TestNormalize_SVG(t *testing.T) {
	n := New()
	doc := `<svg viewBox="0 0 10 10"><circle r="5"/></svg>`

	out := n.Normalize("Here it is:\n```svg\n"+doc+"\n```", KindSVG)
	if out.Fallback != DiagNone || out.Text != doc {
		t.Errorf("got %+v, want %q", out, doc)
	}

	out = n.Normalize("I cannot draw that.", KindSVG)
	if out.Fallback != DiagNoSVG || out.Text != ErrorSVG {
		t.Errorf("got %+v, want error svg", out)
	}
}

func TestNormalize_PlainText(t *testing.T) {
	out := New().Normalize("\n  a poem  \n\n", KindText)
	if out.Kind != KindText || out.Text != "a poem" {
		t.Errorf("got %+v", out)
	}
	if unknown := New().Normalize(" x ", Kind("mystery")); unknown.Text != "x" {
		t.Errorf("unknown kind text = %q", unknown.Text)
	}
}

func TestNormalize_InvalidUTF8(t *testing.T) {
	raw := "flow\xffchart\xfe flowchart TD\n\xffA-->B"
	n := New()
	for _, kind := range []Kind{KindText, KindJSON, KindDiagram, KindSVG} {
		out := n.Normalize(raw, kind)
		if out.Kind != kind {
			t.Errorf("kind = %q, want %q", out.Kind, kind)
		}
	}
}

func TestNormalize_RecoversFromPanic(t *testing.T) {
	var n *Normalizer // nil receiver panics on field access
	out := n.Normalize("flowchart TD\nA-->B", KindDiagram)
	if out.Fallback != DiagInternal || out.Text != InternalErrorDiagram {
		t.Errorf("got %+v, want internal error diagram", out)
	}
}

func TestNormalizer_InternalFallbackShapes(t *testing.T) {
	var n *Normalizer
	obj := n.internalFallback("raw reply", KindJSON)
	if obj.Fallback != DiagInternal || obj.Object["joke"] == nil {
		t.Errorf("json fallback = %+v", obj)
	}
	if !strings.HasSuffix(obj.Object["explanation"].(string), "raw reply") {
		t.Errorf("explanation = %v", obj.Object["explanation"])
	}
	if svg := n.internalFallback("", KindSVG); svg.Text != ErrorSVG {
		t.Errorf("svg fallback = %q", svg.Text)
	}
}

func TestOutput_Display(t *testing.T) {
	out := Output{Kind: KindJSON, Object: map[string]any{"joke": "<b>"}}
	if got := out.Display(); !strings.Contains(got, `"joke": "<b>"`) {
		t.Errorf("Display = %q", got)
	}
	diagram := Output{Kind: KindDiagram, Text: "flowchart TD"}
	if diagram.Display() != "flowchart TD" {
		t.Errorf("Display = %q", diagram.Display())
	}
}
