package jsonutil

import (
	"errors"
	"testing"
)

func TestDecodeObject_Strict(t *testing.T) {
	obj, err := DecodeObject([]byte(`{"joke":"x","explanation":"y"}`))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if obj["joke"] != "x" || obj["explanation"] != "y" {
		t.Errorf("unexpected object %v", obj)
	}
}

func TestDecodeObject_StrictPayloadUnchanged(t *testing.T) {
	obj, err := DecodeObject([]byte(`{"joke":"In JS, \\u0041 is just A","explanation":"Escape \\u0041 and\\nnewline"}`))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if obj["joke"] != `In JS, \u0041 is just A` {
		t.Errorf("joke = %q, want the literal escape kept", obj["joke"])
	}
	if obj["explanation"] != `Escape \u0041 and\nnewline` {
		t.Errorf("explanation = %q, want the literal escapes kept", obj["explanation"])
	}
}

func TestDecodeObject_RepairUnescapesLiteralUnicode(t *testing.T) {
	// Quoted payload whose inner JSON double-escaped ">".
	obj, err := DecodeObject([]byte(`"{\"rule\":\"a \\\\u003e b\"}"`))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if obj["rule"] != "a > b" {
		t.Errorf("rule = %q, want %q", obj["rule"], "a > b")
	}
}

func TestDecodeObject_KeepsOtherBackslashes(t *testing.T) {
	obj, err := DecodeObject([]byte(`{"pattern":"\\d+"}`))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if obj["pattern"] != `\d+` {
		t.Errorf("pattern = %q, want %q", obj["pattern"], `\d+`)
	}
}

func TestDecodeObject_QuotedPayload(t *testing.T) {
	obj, err := DecodeObject([]byte(`"{\"joke\":\"x\"}"`))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if obj["joke"] != "x" {
		t.Errorf("unexpected object %v", obj)
	}
}

func TestDecodeObject_Failures(t *testing.T) {
	if _, err := DecodeObject([]byte(`{"joke": }`)); err == nil {
		t.Error("expected error for malformed object")
	}
	if _, err := DecodeObject([]byte(`null`)); !errors.Is(err, ErrNotObject) {
		t.Errorf("expected ErrNotObject for null, got %v", err)
	}
	if _, err := DecodeObject([]byte(`[1,2]`)); err == nil {
		t.Error("expected error for array payload")
	}
}

func TestMarshalNoEscape(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"svg": "<svg>&</svg>"})
	if err != nil {
		t.Fatalf("MarshalNoEscape: %v", err)
	}
	if string(out) != `{"svg":"<svg>&</svg>"}` {
		t.Errorf("got %s", out)
	}

	indented, err := MarshalIndentNoEscape(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("MarshalIndentNoEscape: %v", err)
	}
	if string(indented) != "{\n  \"a\": 1\n}" {
		t.Errorf("got %q", indented)
	}
}
