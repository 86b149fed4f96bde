package utils

import (
	"encoding/json"
	"strings"
)

// ResultKind tags the shape a workflow result arrived in. The upstream
// returns result strings that are sometimes plain text, sometimes a JSON
// document, and sometimes JSON wrapped in a markdown code fence.
type ResultKind string

const (
	ResultRawText            ResultKind = "raw_text"
	ResultEmbeddedJSON       ResultKind = "embedded_json"
	ResultMarkdownFencedJSON ResultKind = "markdown_fenced_json"
)

// WorkflowResult is the parsed form of an upstream result string
type WorkflowResult struct {
	Kind ResultKind      `json:"kind"`
	Text string          `json:"text"`           // always the usable content
	JSON json.RawMessage `json:"json,omitempty"` // set for the JSON kinds
}

// ParseWorkflowResult resolves the result shape with fixed precedence:
// a markdown-fenced JSON block wins, then the whole string as JSON, then
// raw text. One parse path instead of scattered try/catch fallbacks.
func ParseWorkflowResult(s string) WorkflowResult {
	if inner, ok := stripJSONFence(s); ok {
		if raw, ok := asJSON(inner); ok {
			return WorkflowResult{Kind: ResultMarkdownFencedJSON, Text: inner, JSON: raw}
		}
	}

	trimmed := strings.TrimSpace(s)
	if raw, ok := asJSON(trimmed); ok {
		return WorkflowResult{Kind: ResultEmbeddedJSON, Text: trimmed, JSON: raw}
	}

	return WorkflowResult{Kind: ResultRawText, Text: s}
}

// stripJSONFence extracts the body of a ```json ... ``` (or bare ```) block
func stripJSONFence(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return "", false
	}

	rest := strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// drop the language hint line, e.g. "json"
		rest = rest[nl+1:]
	}

	end := strings.LastIndex(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// asJSON accepts only JSON objects and arrays; bare strings and numbers
// stay raw text.
func asJSON(s string) (json.RawMessage, bool) {
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return nil, false
	}
	if !json.Valid([]byte(s)) {
		return nil, false
	}
	return json.RawMessage(s), true
}
