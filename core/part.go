package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string `json:"text"`
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// ToolCallPart is a tool invocation requested by the model.
type ToolCallPart struct {
	ID        string `json:"id,omitempty"`        // Provider supplied call id
	Name      string `json:"name"`                // Tool name
	Arguments string `json:"arguments,omitempty"` // Serialized JSON arguments
}

// isPart implements the Part interface for ToolCallPart.
func (ToolCallPart) isPart() {}

// ToolResultPart carries the outcome of a tool invocation. Result may be a
// string or any structured value; IsError marks results describing a failure.
type ToolResultPart struct {
	CallID  string `json:"call_id,omitempty"` // Matches the originating ToolCallPart ID
	Name    string `json:"name"`
	Result  any    `json:"result,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
}

// isPart implements the Part interface for ToolResultPart.
func (ToolResultPart) isPart() {}

// HasResult reports whether Result holds a value. Typed nils (nil maps,
// slices, pointers and interfaces) count as no result.
func (p ToolResultPart) HasResult() bool {
	if p.Result == nil {
		return false
	}

	v := reflect.ValueOf(p.Result)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !v.IsNil()
	}

	return true
}

// DisplayString renders Result as text. Strings are returned unchanged,
// raw JSON is compacted and every other value is encoded as compact JSON
// without HTML escaping. A missing result, typed nils included, renders as "".
// A value that cannot be encoded yields an error.
func (p ToolResultPart) DisplayString() (string, error) {
	if !p.HasResult() {
		return "", nil
	}

	switch v := p.Result.(type) {
	case string:
		return v, nil
	case json.RawMessage:
		return compactJSON(v)
	case []byte:
		if json.Valid(v) {
			return compactJSON(v)
		}
		return string(v), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p.Result); err != nil {
		return "", fmt.Errorf("encode tool result %q: %w", p.Name, err)
	}

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func compactJSON(raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}
