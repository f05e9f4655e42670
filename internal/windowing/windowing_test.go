package windowing_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petasbytes/toolagent/internal/windowing"
	"github.com/petasbytes/toolagent/memory"
)

func user(text string) memory.Message {
	return memory.Message{Role: memory.RoleUser, Content: text}
}

func asst(ids ...string) memory.Message {
	m := memory.Message{Role: memory.RoleAssistant}
	for _, id := range ids {
		m.ToolCalls = append(m.ToolCalls, memory.ToolCall{ID: id, Name: "t", Arguments: json.RawMessage(`{}`)})
	}
	return m
}

func result(id string) memory.Message {
	return memory.Message{Role: memory.RoleTool, ToolCallID: id, Content: "ok"}
}

func TestGroupMessages_Invariants(t *testing.T) {
	tests := []struct {
		name string
		msgs []memory.Message
		want []windowing.Group
	}{
		{
			name: "complete batch",
			msgs: []memory.Message{user("q"), asst("t1"), result("t1")},
			want: []windowing.Group{
				{Kind: windowing.GroupSingleton, Start: 0, End: 1},
				{Kind: windowing.GroupToolBatch, Start: 1, End: 3, Complete: true},
			},
		},
		{
			name: "parallel calls answered in any order",
			msgs: []memory.Message{asst("t1", "t2"), result("t2"), result("t1"), user("next")},
			want: []windowing.Group{
				{Kind: windowing.GroupToolBatch, Start: 0, End: 3, Complete: true},
				{Kind: windowing.GroupSingleton, Start: 3, End: 4},
			},
		},
		{
			name: "terminated batch stays incomplete",
			msgs: []memory.Message{asst("t1", "t2", "t3"), result("t1"), {Role: memory.RoleAssistant, Content: "bye"}},
			want: []windowing.Group{
				{Kind: windowing.GroupToolBatch, Start: 0, End: 2},
				{Kind: windowing.GroupSingleton, Start: 2, End: 3},
			},
		},
		{
			name: "foreign result ends the batch",
			msgs: []memory.Message{asst("t1"), result("zz")},
			want: []windowing.Group{
				{Kind: windowing.GroupToolBatch, Start: 0, End: 1},
				{Kind: windowing.GroupSingleton, Start: 1, End: 2},
			},
		},
		{
			name: "plain assistant is a singleton",
			msgs: []memory.Message{{Role: memory.RoleAssistant, Content: "hi"}},
			want: []windowing.Group{{Kind: windowing.GroupSingleton, Start: 0, End: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, windowing.GroupMessages(tt.msgs))
		})
	}
}

func TestHeuristicCounter_CountsRunesPlusOverhead(t *testing.T) {
	h := windowing.HeuristicCounter{}
	// "héllo" is 5 runes, 6 bytes.
	assert.Equal(t, 5+4, h.CountMessage(user("héllo")))

	m := memory.Message{Role: memory.RoleAssistant, ToolCalls: []memory.ToolCall{
		{ID: "1", Name: "ab", Arguments: json.RawMessage(`{"x":1}`)},
	}}
	// empty content overhead + (2 + 7 + 4)
	assert.Equal(t, 4+13, h.CountMessage(m))
}

func TestMeasure(t *testing.T) {
	assert.Equal(t, windowing.Stats{}, windowing.Measure(nil, nil))

	msgs := []memory.Message{
		{Role: memory.RoleSystem, Content: "sys"},
		user("q"),
		asst("a", "b"),
		result("a"),
		{Role: memory.RoleAssistant, Content: "done"},
	}
	s := windowing.Measure(msgs, nil)
	assert.Equal(t, 5, s.Messages)
	assert.Equal(t, 4, s.Groups)
	assert.Equal(t, 1, s.ToolBatches)
	assert.Equal(t, 1, s.IncompleteBatches)
	assert.Equal(t, 4+4, s.Newest)

	h := windowing.HeuristicCounter{}
	want := 0
	for _, m := range msgs {
		want += h.CountMessage(m)
	}
	assert.Equal(t, want, s.Estimated)
	assert.Equal(t, want, s.Fields()["total_estimated"])
}
