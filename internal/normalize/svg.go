package normalize

import (
	"errors"
	"html"
)

// ErrorSVG is returned when the model's reply holds no SVG document.
var ErrorSVG = MessageSVG("The model did not return valid SVG.")

// MessageSVG renders msg as a 400x400 SVG card in the art generator's palette.
func MessageSVG(msg string) string {
	return `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="400" viewBox="0 0 400 400">` +
		`<rect width="400" height="400" fill="#111"/>` +
		`<text x="200" y="200" fill="#f55" font-family="monospace" font-size="14" text-anchor="middle">` +
		html.EscapeString(msg) +
		`</text></svg>`
}

// ErrNoSVG means no `<svg … </svg>` span occurs in the text.
var ErrNoSVG = errors.New("normalize: no svg document in completion")

// ExtractSVG slices raw from its first `<svg` to the end of its last `</svg>`,
// dropping any prose or markdown fences around the document.
func ExtractSVG(raw string) (string, error) {
	const open, closing = "<svg", "</svg>"
	start := indexFold(raw, open)
	end := lastIndexFold(raw, closing)
	if start < 0 || end < 0 || end < start {
		return "", ErrNoSVG
	}
	return raw[start : end+len(closing)], nil
}

func normalizeSVG(raw string) Output {
	svg, err := ExtractSVG(raw)
	if err != nil {
		return Output{Kind: KindSVG, Text: ErrorSVG, Fallback: DiagNoSVG}
	}
	return Output{Kind: KindSVG, Text: svg}
}

func lastIndexFold(s, substr string) int {
	for i := len(s) - len(substr); i >= 0; i-- {
		if hasPrefixFold(s[i:], substr) {
			return i
		}
	}
	return -1
}
