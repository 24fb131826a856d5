package parser

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "nested outputs text",
			raw:  `{"outputs":[{"outputs":[{"results":{"message":{"text":"T"}}}]}]}`,
			want: "T",
		},
		{
			name: "nested outputs content",
			raw:  `{"outputs":[{"outputs":[{"results":{"message":{"content":"C"}}}]}]}`,
			want: "C",
		},
		{
			name: "nested outputs text preferred over content",
			raw:  `{"outputs":[{"outputs":[{"results":{"message":{"text":"T","content":"C"}}}]}]}`,
			want: "T",
		},
		{
			name: "nested outputs string message",
			raw:  `{"outputs":[{"outputs":[{"results":{"message":"plain"}}]}]}`,
			want: "plain",
		},
		{
			name: "nested outputs message without text is stringified",
			raw:  `{"outputs":[{"outputs":[{"results":{"message":{"sender":"AI"}}}]}]}`,
			want: `{"sender":"AI"}`,
		},
		{
			name: "nested outputs without message falls back to whole response",
			raw:  `{"outputs":[{"outputs":[]}]}`,
			want: `{"outputs":[{"outputs":[]}]}`,
		},
		{
			name: "empty outputs list is flat",
			raw:  `{"outputs":[],"text":"flat"}`,
			want: "flat",
		},
		{
			name: "flat text",
			raw:  `{"text":"hello"}`,
			want: "hello",
		},
		{
			name: "flat content",
			raw:  `{"text":"","content":"c"}`,
			want: "c",
		},
		{
			name: "flat message string",
			raw:  `{"message":"m"}`,
			want: "m",
		},
		{
			name: "flat message mapping recurses",
			raw:  `{"message":{"content":"inner"}}`,
			want: "inner",
		},
		{
			name: "flat message mapping without text is stringified",
			raw:  `{"message":{"foo":"bar"}}`,
			want: `{"foo":"bar"}`,
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: `{}`,
		},
		{
			name: "empty text and content",
			raw:  `{"text":"","content":""}`,
			want: `{"content":"","text":""}`,
		},
		{
			name: "bare string",
			raw:  `"just text"`,
			want: "just text",
		},
		{
			name: "array",
			raw:  `["a",1]`,
			want: `["a",1]`,
		},
		{
			name: "number",
			raw:  `42`,
			want: "42",
		},
		{
			name: "null",
			raw:  `null`,
			want: "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(decode(t, tt.raw)); got != tt.want {
				t.Errorf("Normalize(%s) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeNeverSilentlyEmpty(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`{}`, `{"text":"","content":""}`, `{"message":{}}`, `[]`} {
		if got := Normalize(decode(t, raw)); got == "" {
			t.Errorf("Normalize(%s) returned empty string", raw)
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Shape
	}{
		{`{"outputs":[{}]}`, ShapeNestedOutputs},
		{`{"outputs":[]}`, ShapeFlatText},
		{`{"text":"x"}`, ShapeFlatText},
		{`"x"`, ShapeBareString},
		{`[1,2]`, ShapeOpaque},
		{`true`, ShapeOpaque},
	}
	for _, tt := range tests {
		if got := Classify(decode(t, tt.raw)); got != tt.want {
			t.Errorf("Classify(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
