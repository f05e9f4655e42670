// Package metrics counts what happened during one agent turn.
package metrics

import (
	"strings"
	"time"
	"unicode/utf8"
)

// TextFeatures are cheap size measures of a piece of text.
type TextFeatures struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// MeasureText computes TextFeatures for s. Empty text has zero lines.
func MeasureText(s string) TextFeatures {
	f := TextFeatures{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
	}
	if s != "" {
		f.Lines = strings.Count(s, "\n") + 1
	}
	return f
}

// Turn accumulates counters for a single user turn.
type Turn struct {
	Input         TextFeatures  `json:"input"`
	ModelRequests int           `json:"model_requests"`
	ModelFailures int           `json:"model_failures"`
	ToolCalls     int           `json:"tool_calls"`
	ToolErrors    int           `json:"tool_errors"`
	SkippedCalls  int           `json:"skipped_calls"`
	ModelTime     time.Duration `json:"model_time"`
	ToolTime      time.Duration `json:"tool_time"`
}

// NewTurn starts counters for a turn triggered by input.
func NewTurn(input string) *Turn {
	return &Turn{Input: MeasureText(input)}
}

// ModelRequest records one completion request.
func (t *Turn) ModelRequest(d time.Duration, failed bool) {
	t.ModelRequests++
	t.ModelTime += d
	if failed {
		t.ModelFailures++
	}
}

// ToolCall records one dispatched tool call.
func (t *Turn) ToolCall(d time.Duration, failed bool) {
	t.ToolCalls++
	t.ToolTime += d
	if failed {
		t.ToolErrors++
	}
}

// Skipped records calls left undispatched after a terminating call.
func (t *Turn) Skipped(n int) { t.SkippedCalls += n }

// Fields flattens the counters for event emission.
func (t *Turn) Fields() map[string]any {
	return map[string]any{
		"input_bytes":    t.Input.Bytes,
		"input_words":    t.Input.Words,
		"model_requests": t.ModelRequests,
		"model_failures": t.ModelFailures,
		"tool_calls":     t.ToolCalls,
		"tool_errors":    t.ToolErrors,
		"skipped_calls":  t.SkippedCalls,
		"model_ms":       t.ModelTime.Milliseconds(),
		"tool_ms":        t.ToolTime.Milliseconds(),
	}
}
