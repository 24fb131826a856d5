// Package parser turns generation backend responses into scenario text and
// structured exercise records.
//
// Everything in this package is pure: no I/O, no shared state, safe to call
// from concurrent request handlers.
package parser

import (
	"encoding/json"
	"fmt"
)

// emptyObject is how an empty mapping stringifies.
const emptyObject = "{}"

// Shape identifies which known layout a raw backend response follows.
type Shape int

const (
	// ShapeOpaque is anything we have no extractor for.
	ShapeOpaque Shape = iota
	// ShapeNestedOutputs is {"outputs":[{"outputs":[{"results":{"message":...}}]}]}.
	ShapeNestedOutputs
	// ShapeFlatText is a mapping carrying text, content or message at the top.
	ShapeFlatText
	// ShapeBareString is a response that is already plain text.
	ShapeBareString
)

func (s Shape) String() string {
	switch s {
	case ShapeNestedOutputs:
		return "nested_outputs"
	case ShapeFlatText:
		return "flat_text"
	case ShapeBareString:
		return "bare_string"
	default:
		return "opaque"
	}
}

// Classify reports the shape of a decoded JSON response.
func Classify(raw any) Shape {
	switch v := raw.(type) {
	case string:
		return ShapeBareString
	case map[string]any:
		if outputs, ok := v["outputs"].([]any); ok && len(outputs) > 0 {
			return ShapeNestedOutputs
		}
		return ShapeFlatText
	default:
		return ShapeOpaque
	}
}

// Normalize extracts the best available text payload from a raw response.
// It never fails: when no known shape yields text, the whole value is
// stringified.
func Normalize(raw any) string {
	var text string
	switch Classify(raw) {
	case ShapeNestedOutputs:
		text = nestedOutputsText(raw.(map[string]any))
	case ShapeFlatText:
		text = flatText(raw.(map[string]any))
	case ShapeBareString:
		text = raw.(string)
	}

	if text == "" || text == emptyObject {
		return Stringify(raw)
	}
	return text
}

func nestedOutputsText(m map[string]any) string {
	outputs := m["outputs"].([]any)
	first, _ := outputs[0].(map[string]any)

	var output map[string]any
	if inner, ok := first["outputs"].([]any); ok && len(inner) > 0 {
		output, _ = inner[0].(map[string]any)
	}
	results, _ := output["results"].(map[string]any)

	message, ok := results["message"]
	if !ok {
		return emptyObject
	}
	return messageText(message)
}

func flatText(m map[string]any) string {
	for _, key := range []string{"text", "content", "message"} {
		v := m[key]
		if !truthy(v) {
			continue
		}
		return messageText(v)
	}
	return ""
}

// messageText reads text, then content, from a message mapping and
// stringifies anything else.
func messageText(v any) string {
	switch msg := v.(type) {
	case nil:
		return ""
	case string:
		return msg
	case map[string]any:
		for _, key := range []string{"text", "content"} {
			if s, ok := msg[key].(string); ok && s != "" {
				return s
			}
		}
		return Stringify(msg)
	default:
		return Stringify(msg)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// Stringify renders any decoded value as text. Strings are returned as is,
// everything else as compact JSON.
func Stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
