package provider_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/toolagent/internal/provider"
	"github.com/petasbytes/toolagent/memory"
	"github.com/petasbytes/toolagent/tools"
)

func openRouterServer(t *testing.T, status int, resp string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))
		if got != nil {
			b, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(b, got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenRouter_ToolCallsReply(t *testing.T) {
	resp := `{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[
		{"id":"call_1","type":"function","function":{"name":"multiply_numbers","arguments":"{\"num1\":6,\"num2\":7}"}},
		{"type":"function","function":{"name":"list_files","arguments":""}}
	]},"finish_reason":"tool_calls"}]}`
	var sent map[string]any
	srv := openRouterServer(t, 200, resp, &sent)

	m := provider.NewOpenRouter("or-key", srv.URL, "openai/gpt-4o-mini", 256)
	reply, err := m.Complete(context.Background(),
		[]memory.Message{{Role: memory.RoleSystem, Content: "sys"}, {Role: memory.RoleUser, Content: "6*7?"}},
		tools.Default(tools.DemoFiles()).Schemas())
	require.NoError(t, err)

	req, ok := reply.(provider.ToolRequest)
	require.True(t, ok, "want ToolRequest, got %T", reply)
	require.Len(t, req.Calls, 2)
	assert.Equal(t, "call_1", req.Calls[0].ID)
	assert.JSONEq(t, `{"num1":6,"num2":7}`, string(req.Calls[0].Arguments))
	assert.NotEmpty(t, req.Calls[1].ID, "missing ids are generated")
	assert.Equal(t, "{}", string(req.Calls[1].Arguments))

	assert.Equal(t, "openai/gpt-4o-mini", sent["model"])
	assert.EqualValues(t, 256, sent["max_tokens"])
	msgs := sent["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Len(t, sent["tools"], 4)
}

func TestOpenRouter_PlainAnswer(t *testing.T) {
	srv := openRouterServer(t, 200, `{"choices":[{"message":{"role":"assistant","content":"Hello!"}}]}`, nil)
	m := provider.NewOpenRouter("or-key", srv.URL+"/", "m", 0)

	reply, err := m.Complete(context.Background(), []memory.Message{{Role: memory.RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, provider.PlainAnswer{Text: "Hello!"}, reply)
}

func TestOpenRouter_SendsSynthesizedResultsForSkippedCalls(t *testing.T) {
	var sent map[string]any
	srv := openRouterServer(t, 200, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`, &sent)
	m := provider.NewOpenRouter("or-key", srv.URL, "m", 0)

	history := []memory.Message{
		{Role: memory.RoleUser, Content: "q"},
		{Role: memory.RoleAssistant, ToolCalls: []memory.ToolCall{
			{ID: "x", Name: "terminate", Arguments: json.RawMessage(`{"message":"bye"}`)},
			{ID: "y", Name: "list_files"},
		}},
		{Role: memory.RoleUser, Content: "follow-up"},
	}
	_, err := m.Complete(context.Background(), history, nil)
	require.NoError(t, err)

	msgs := sent["messages"].([]any)
	require.Len(t, msgs, 5)
	asst := msgs[1].(map[string]any)
	calls := asst["tool_calls"].([]any)
	fn := calls[1].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "{}", fn["arguments"])
	assert.Equal(t, "x", msgs[2].(map[string]any)["tool_call_id"])
	assert.Equal(t, "y", msgs[3].(map[string]any)["tool_call_id"])
	assert.Equal(t, "follow-up", msgs[4].(map[string]any)["content"])
}

func TestOpenRouter_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"http status", 502, `upstream down`},
		{"error body", 200, `{"error":{"message":"quota exceeded","code":429}}`},
		{"no choices", 200, `{"choices":[]}`},
		{"bad json", 200, `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := openRouterServer(t, tc.status, tc.body, nil)
			m := provider.NewOpenRouter("or-key", srv.URL, "m", 0)
			_, err := m.Complete(context.Background(), []memory.Message{{Role: memory.RoleUser, Content: "hi"}}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "openrouter")
		})
	}
}
