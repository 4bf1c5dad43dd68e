package core

import (
	"encoding/json"
	"testing"
)

func TestParts_DiscriminatedUnion(t *testing.T) {
	parts := []Part{
		TextPart{Text: "hello"},
		ToolCallPart{Name: "f"},
		ToolResultPart{Name: "f", Result: "ok"},
	}
	for _, p := range parts {
		switch pt := p.(type) {
		case TextPart, ToolCallPart, ToolResultPart:
		default:
			t.Fatalf("Unexpected part type: %T (%v)", pt, pt)
		}
	}
}

func TestToolResultPart_DisplayString(t *testing.T) {
	tests := []struct {
		name   string
		result any
		want   string
	}{
		{name: "nil", result: nil, want: ""},
		{name: "string", result: "42", want: "42"},
		{name: "empty string", result: "", want: ""},
		{name: "map", result: map[string]any{"a": 1}, want: `{"a":1}`},
		{name: "number", result: 3.5, want: "3.5"},
		{name: "html not escaped", result: map[string]string{"q": "<a&b>"}, want: `{"q":"<a&b>"}`},
		{name: "raw json", result: json.RawMessage("{ \"a\" : [1, 2] }"), want: `{"a":[1,2]}`},
		{name: "plain bytes", result: []byte("not json"), want: "not json"},
		{name: "nil map", result: map[string]any(nil), want: ""},
		{name: "nil slice", result: []int(nil), want: ""},
		{name: "nil pointer", result: (*struct{ A int })(nil), want: ""},
		{name: "struct", result: struct {
			City string `json:"city"`
		}{City: "Berlin"}, want: `{"city":"Berlin"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToolResultPart{Name: "t", Result: tt.result}.DisplayString()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DisplayString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToolResultPart_HasResult(t *testing.T) {
	var nilErr error
	tests := []struct {
		name   string
		result any
		want   bool
	}{
		{name: "untyped nil", result: nil, want: false},
		{name: "nil map", result: map[string]any(nil), want: false},
		{name: "nil pointer", result: (*int)(nil), want: false},
		{name: "nil interface value", result: nilErr, want: false},
		{name: "empty string", result: "", want: true},
		{name: "zero number", result: 0, want: true},
		{name: "empty map", result: map[string]any{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (ToolResultPart{Result: tt.result}).HasResult(); got != tt.want {
				t.Errorf("HasResult() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToolResultPart_DisplayStringUnencodable(t *testing.T) {
	p := ToolResultPart{Name: "bad", Result: map[string]any{"ch": make(chan int)}}
	if _, err := p.DisplayString(); err == nil {
		t.Fatal("expected an error for a channel value")
	}
}
