package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petasbytes/toolagent/tools"
)

func newTestDispatcher(t *testing.T, extra ...tools.Definition) *tools.Dispatcher {
	t.Helper()
	r := tools.Default(tools.DemoFiles())
	for _, d := range extra {
		require.NoError(t, r.Register(d))
	}
	return tools.NewDispatcher(r, nil)
}

func decodePayload(t *testing.T, res tools.Result) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Payload()), &m))
	return m
}

func TestDispatch_UnknownToolBecomesPayload(t *testing.T) {
	d := newTestDispatcher(t)
	for _, name := range []string{"rm_rf", "", "List_Files", "terminate2"} {
		var res tools.Result
		require.NotPanics(t, func() {
			res = d.Invoke(context.Background(), name, json.RawMessage(`{}`))
		})
		require.ErrorIs(t, res.Err, tools.ErrUnknownTool)
		payload := decodePayload(t, res)
		require.Contains(t, payload["error"], name)
		require.NotContains(t, payload, "result")
	}
}

func TestDispatch_InvalidArguments(t *testing.T) {
	d := newTestDispatcher(t)
	cases := []struct {
		name string
		tool string
		args string
	}{
		{"missing required", "multiply_numbers", `{"num1": 3}`},
		{"extra key", "multiply_numbers", `{"num1": 3, "num2": 4, "num3": 5}`},
		{"extra key on no-arg tool", "list_files", `{"path": "."}`},
		{"not an object", "read_file", `["project_plan.md"]`},
		{"malformed json", "read_file", `{"file_name":`},
		{"wrong type", "multiply_numbers", `{"num1": "three", "num2": 4}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := d.Invoke(context.Background(), tc.tool, json.RawMessage(tc.args))
			require.ErrorIs(t, res.Err, tools.ErrInvalidArguments)
			require.Nil(t, res.Value)
			require.Contains(t, decodePayload(t, res), "error")
		})
	}
}

func TestDispatch_ParsesArgumentsIntoTypedValues(t *testing.T) {
	d := newTestDispatcher(t)
	res := d.Invoke(context.Background(), "multiply_numbers", json.RawMessage(`{"num1": 3, "num2": 4}`))
	require.NoError(t, res.Err)
	require.Equal(t, float64(12), res.Value)
	require.Equal(t, "multiply_numbers", res.Tool)

	schema := d.Registry().Schemas()[2]
	require.Equal(t, []string{"num1", "num2"}, schema.Required())
}

func TestDispatch_ToolFailureIsCaptured(t *testing.T) {
	boom := tools.New("boom", "always fails", func(context.Context, struct{}) (any, error) {
		return nil, errors.New("disk on fire")
	})
	panicky := tools.New("panicky", "panics", func(context.Context, struct{}) (any, error) {
		panic("unexpected")
	})
	d := newTestDispatcher(t, boom, panicky)

	res := d.Invoke(context.Background(), "boom", nil)
	require.ErrorIs(t, res.Err, tools.ErrToolExecution)
	require.Contains(t, decodePayload(t, res)["error"], "disk on fire")

	require.NotPanics(t, func() {
		res = d.Invoke(context.Background(), "panicky", nil)
	})
	require.ErrorIs(t, res.Err, tools.ErrToolExecution)
	require.Contains(t, res.Payload(), "unexpected")
}

func TestResult_PayloadShapes(t *testing.T) {
	require.JSONEq(t, `{"result": ["a"]}`, tools.Result{Value: []string{"a"}}.Payload())
	require.JSONEq(t, `{"result": null}`, tools.Result{}.Payload())
	require.JSONEq(t, `{"error": "x"}`, tools.Result{Err: errors.New("x")}.Payload())

	unserializable := tools.Result{Tool: "ch", Value: make(chan int)}
	require.Contains(t, decodePayload(t, unserializable), "error")
}
