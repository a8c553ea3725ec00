package normalize

import (
	"errors"
	"strings"
)

// Fixed diagrams returned when the model's reply cannot be used.
const (
	ErrorDiagram         = "flowchart TD\nA[Error] --> B[Model did not return valid Mermaid syntax.]"
	InternalErrorDiagram = "flowchart TD\nA[Error] --> B[An error occurred while parsing the model response.]"
)

// ErrNoDiagramHeader means the header keyword does not occur in the text.
var ErrNoDiagramHeader = errors.New("normalize: no diagram header in completion")

// CleanDiagram extracts the diagram block that starts at the first
// case-insensitive occurrence of header. The first header line is kept once,
// trimmed but otherwise as written; later header lines are dropped because
// models sometimes repeat the declaration. Every other non-empty line is kept
// trimmed and in order.
func CleanDiagram(raw, header string) ([]string, error) {
	if header == "" {
		header = DefaultDiagramHeader
	}
	start := indexFold(raw, header)
	if start < 0 {
		return nil, ErrNoDiagramHeader
	}

	var lines []string
	seenHeader := false
	for _, line := range strings.Split(raw[start:], "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case hasPrefixFold(line, header):
			if seenHeader {
				continue
			}
			seenHeader = true
			lines = append(lines, line)
		default:
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (n *Normalizer) normalizeDiagram(raw string) Output {
	lines, err := CleanDiagram(raw, n.header())
	if err != nil {
		return diagramOutput(ErrorDiagram, DiagNoDiagramHeader)
	}
	return Output{Kind: KindDiagram, Text: strings.Join(lines, "\n"), Lines: lines}
}

func diagramOutput(text string, diag Diagnostic) Output {
	return Output{
		Kind:     KindDiagram,
		Text:     text,
		Lines:    strings.Split(text, "\n"),
		Fallback: diag,
	}
}

// indexFold is strings.Index with ASCII-insensitive matching. It reports byte
// offsets into s, so slicing s at the result is always safe.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if hasPrefixFold(s[i:], substr) {
			return i
		}
	}
	return -1
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
