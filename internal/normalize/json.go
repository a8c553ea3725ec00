package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openitup/storycode/internal/util/jsonutil"
)

// ErrNoJSONObject means the text holds no `{ … }` span at all.
var ErrNoJSONObject = errors.New("normalize: no JSON object in completion")

// InvalidJSONError means a `{ … }` span was found but does not parse as a
// JSON object.
type InvalidJSONError struct {
	Candidate string
	Err       error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("normalize: malformed JSON object: %v", e.Err)
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }

// ExtractJSONObject slices raw from its first `{` to its last `}` and decodes
// the span as a JSON object. Prose before and after the object is ignored.
func ExtractJSONObject(raw string) (map[string]any, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || end < start {
		return nil, ErrNoJSONObject
	}

	candidate := raw[start : end+1]
	obj, err := jsonutil.DecodeObject([]byte(candidate))
	if err != nil {
		return nil, &InvalidJSONError{Candidate: candidate, Err: err}
	}
	return obj, nil
}

func (n *Normalizer) normalizeJSON(raw string) Output {
	obj, err := ExtractJSONObject(raw)
	if err == nil {
		return Output{Kind: KindJSON, Object: obj}
	}

	summary, detail := n.keys()
	var invalid *InvalidJSONError
	if errors.As(err, &invalid) {
		return Output{
			Kind: KindJSON,
			Object: map[string]any{
				summary: "The AI's JSON was malformed!",
				detail:  "The response from the model was not valid JSON, which caused a parsing error. Response was: " + raw,
			},
			Fallback: DiagInvalidJSON,
		}
	}
	return Output{
		Kind: KindJSON,
		Object: map[string]any{
			summary: "The model told a joke I couldn't parse!",
			detail:  "The AI's response was not in the expected JSON format. This is like an API returning XML when you're expecting JSON, a classic mix-up!",
		},
		Fallback: DiagNoJSONObject,
	}
}
