// Package normalize recovers a predictable output shape from free-form
// completion text. Every entry point is total: malformed replies resolve to a
// fixed fallback value tagged with a Diagnostic, never to an error.
package normalize

import (
	"strings"

	"github.com/openitup/storycode/internal/util/jsonutil"
)

// Kind is the output shape a caller expects from the model.
type Kind string

// Output kinds.
const (
	KindText    Kind = "text"
	KindJSON    Kind = "json"
	KindDiagram Kind = "diagram"
	KindSVG     Kind = "svg"
)

// Diagnostic tags an Output that holds a fallback instead of the model's
// payload. The zero value means the payload was recovered.
type Diagnostic string

// Diagnostics.
const (
	DiagNone            Diagnostic = ""
	DiagNoJSONObject    Diagnostic = "no_json_object"
	DiagInvalidJSON     Diagnostic = "invalid_json"
	DiagNoDiagramHeader Diagnostic = "no_diagram_header"
	DiagNoSVG           Diagnostic = "no_svg"
	DiagInternal        Diagnostic = "internal_error"
)

// Output is the normalized form of one completion.
type Output struct {
	Kind     Kind           `json:"kind"`
	Text     string         `json:"text,omitempty"`     // text, diagram (joined lines), svg
	Object   map[string]any `json:"object,omitempty"`   // json
	Lines    []string       `json:"lines,omitempty"`    // diagram, header first
	Fallback Diagnostic     `json:"fallback,omitempty"` // set when a fallback replaced the payload
}

// Display renders the output as a single string for text-only callers.
func (o Output) Display() string {
	if o.Kind != KindJSON {
		return o.Text
	}
	data, err := jsonutil.MarshalIndentNoEscape(o.Object)
	if err != nil {
		return ""
	}
	return string(data)
}

// DefaultDiagramHeader is the Mermaid declaration keyword expected at the top
// of a flowchart block.
const DefaultDiagramHeader = "flowchart"

// Normalizer holds the per-feature knobs of normalization. The zero value is
// usable and equivalent to New().
type Normalizer struct {
	// DiagramHeader is the keyword that opens a diagram block.
	DiagramHeader string
	// SummaryKey and DetailKey name the two fields of a fallback object.
	SummaryKey string
	DetailKey  string
}

// New returns a Normalizer with the default flowchart header and the
// joke/explanation fallback keys.
func New() *Normalizer {
	return &Normalizer{
		DiagramHeader: DefaultDiagramHeader,
		SummaryKey:    "joke",
		DetailKey:     "explanation",
	}
}

// Normalize converts raw into the requested shape. It never fails: a panic
// anywhere below is converted into the kind's internal-error fallback.
// Unknown kinds are treated as plain text.
func (n *Normalizer) Normalize(raw string, kind Kind) (out Output) {
	defer func() {
		if r := recover(); r != nil {
			out = n.internalFallback(raw, kind)
		}
	}()

	switch kind {
	case KindJSON:
		return n.normalizeJSON(raw)
	case KindDiagram:
		return n.normalizeDiagram(raw)
	case KindSVG:
		return normalizeSVG(raw)
	default:
		return Output{Kind: KindText, Text: PlainText(raw)}
	}
}

// PlainText trims surrounding whitespace.
func PlainText(raw string) string {
	return strings.TrimSpace(raw)
}

func (n *Normalizer) header() string {
	if n.DiagramHeader == "" {
		return DefaultDiagramHeader
	}
	return n.DiagramHeader
}

// keys is nil-safe because the internal-error fallback calls it after a
// recovered panic.
func (n *Normalizer) keys() (string, string) {
	summary, detail := "joke", "explanation"
	if n == nil {
		return summary, detail
	}
	if n.SummaryKey != "" {
		summary = n.SummaryKey
	}
	if n.DetailKey != "" {
		detail = n.DetailKey
	}
	return summary, detail
}

func (n *Normalizer) internalFallback(raw string, kind Kind) Output {
	switch kind {
	case KindJSON:
		summary, detail := n.keys()
		return Output{
			Kind: KindJSON,
			Object: map[string]any{
				summary: "The model's reply tripped up the parser!",
				detail:  "An unexpected error occurred while parsing the model response. Response was: " + raw,
			},
			Fallback: DiagInternal,
		}
	case KindDiagram:
		return diagramOutput(InternalErrorDiagram, DiagInternal)
	case KindSVG:
		return Output{Kind: KindSVG, Text: ErrorSVG, Fallback: DiagInternal}
	default:
		return Output{Kind: KindText, Text: "", Fallback: DiagInternal}
	}
}
