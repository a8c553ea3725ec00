// Package jsonutil holds JSON helpers for text produced by language models.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrUnparseable is returned when no decoding strategy yields a JSON value.
	ErrUnparseable = errors.New("jsonutil: cannot parse JSON payload")
	// ErrNotObject is returned by DecodeObject for valid JSON that is not an object.
	ErrNotObject = errors.New("jsonutil: payload is not a JSON object")
)

// UnmarshalFlex decodes raw into v, first strictly and then after repairing
// payloads that arrive wrapped in a JSON string or with double-escaped
// unicode sequences (e.g. "\\u003e").
func UnmarshalFlex(raw []byte, v any) error {
	err := json.Unmarshal(raw, v)
	if err == nil {
		return nil
	}
	repaired, rerr := Repair(raw)
	if rerr != nil {
		return err
	}
	return json.Unmarshal(repaired, v)
}

// DecodeObject decodes raw as a JSON object. A payload that decodes strictly
// is returned as is; only payloads that need Repair get their string values
// unescaped.
func DecodeObject(raw []byte) (map[string]any, error) {
	var obj map[string]any
	if err := UnmarshalFlex(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrNotObject
	}
	return obj, nil
}

// Repair parses raw, unwrapping up to two levels of string quoting, and
// re-encodes it with every string value unescaped.
func Repair(raw []byte) ([]byte, error) {
	var val any
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, ErrUnparseable
	}
	for range 2 {
		s, ok := val.(string)
		if !ok {
			break
		}
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			break
		}
		val = inner
	}
	if _, ok := val.(string); ok {
		return nil, ErrUnparseable
	}
	return MarshalNoEscape(deepUnescape(val))
}

// MarshalNoEscape encodes v without escaping <, > and & so model-facing text
// stays readable.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalIndentNoEscape is MarshalNoEscape with two-space indentation.
func MarshalIndentNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// unescapeString decodes literal unicode escapes such as `\u003e` left
// inside an already-decoded string.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, `\u`) {
		return s, nil
	}
	quoted := `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	var out string
	if err := json.Unmarshal([]byte(quoted), &out); err != nil {
		return "", err
	}
	return out, nil
}

func deepUnescape(v any) any {
	switch x := v.(type) {
	case string:
		if s, err := unescapeString(x); err == nil {
			return s
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepUnescape(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepUnescape(vv)
		}
		return out
	default:
		return v
	}
}
