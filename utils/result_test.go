package utils

import "testing"

func TestParseWorkflowResult(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		wantKind ResultKind
		wantText string
	}{
		{
			name:     "markdown fenced json",
			input:    "```json\n{\"headline\": \"Buy now\"}\n```",
			wantKind: ResultMarkdownFencedJSON,
			wantText: `{"headline": "Buy now"}`,
		},
		{
			name:     "bare fence without language hint",
			input:    "```\n[1, 2, 3]\n```",
			wantKind: ResultMarkdownFencedJSON,
			wantText: "[1, 2, 3]",
		},
		{
			name:     "embedded json object",
			input:    `  {"a": 1}  `,
			wantKind: ResultEmbeddedJSON,
			wantText: `{"a": 1}`,
		},
		{
			name:     "embedded json array",
			input:    `["x", "y"]`,
			wantKind: ResultEmbeddedJSON,
			wantText: `["x", "y"]`,
		},
		{
			name:     "plain prose",
			input:    "Here is your answer.",
			wantKind: ResultRawText,
			wantText: "Here is your answer.",
		},
		{
			name:     "fenced non-json falls through to raw",
			input:    "```\nnot json at all\n```",
			wantKind: ResultRawText,
			wantText: "```\nnot json at all\n```",
		},
		{
			name:     "bare number stays raw text",
			input:    "42",
			wantKind: ResultRawText,
			wantText: "42",
		},
		{
			name:     "quoted string stays raw text",
			input:    `"hello"`,
			wantKind: ResultRawText,
			wantText: `"hello"`,
		},
		{
			name:     "invalid json braces stay raw text",
			input:    `{"broken":`,
			wantKind: ResultRawText,
			wantText: `{"broken":`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseWorkflowResult(tc.input)
			if got.Kind != tc.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tc.wantKind)
			}
			if got.Text != tc.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tc.wantText)
			}
			if tc.wantKind == ResultRawText && got.JSON != nil {
				t.Error("raw text result must not carry a JSON payload")
			}
			if tc.wantKind != ResultRawText && got.JSON == nil {
				t.Error("JSON result must carry the JSON payload")
			}
		})
	}
}
