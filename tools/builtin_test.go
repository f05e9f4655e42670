package tools_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/petasbytes/toolagent/tools"
)

func invoke(t *testing.T, r *tools.Registry, name, args string) tools.Result {
	t.Helper()
	return tools.NewDispatcher(r, nil).Invoke(context.Background(), name, json.RawMessage(args))
}

func TestListFiles_Demo(t *testing.T) {
	res := invoke(t, tools.Default(tools.DemoFiles()), "list_files", `{}`)
	if !res.OK() {
		t.Fatalf("unexpected err: %v", res.Err)
	}
	got, ok := res.Value.([]string)
	if !ok || len(got) != 3 || got[0] != "project_plan.md" {
		t.Fatalf("got %#v", res.Value)
	}
}

func TestReadFile_Demo(t *testing.T) {
	r := tools.Default(tools.DemoFiles())
	res := invoke(t, r, "read_file", `{"file_name":"project_plan.md"}`)
	if res.Value != "Project Plan: The main goal is to build a Streamlit chatbot." {
		t.Fatalf("got %#v (err %v)", res.Value, res.Err)
	}

	res = invoke(t, r, "read_file", `{"file_name":"apu_the_cat.jpg"}`)
	if !res.OK() {
		t.Fatalf("missing file should not be a dispatch error: %v", res.Err)
	}
	if res.Value != "Error: File 'apu_the_cat.jpg' not found or cannot be read." {
		t.Fatalf("got %#v", res.Value)
	}
}

func TestReadFile_Idempotent(t *testing.T) {
	r := tools.Default(tools.DemoFiles())
	first := invoke(t, r, "read_file", `{"file_name":"project_plan.md"}`)
	second := invoke(t, r, "read_file", `{"file_name":"project_plan.md"}`)
	if first.Payload() != second.Payload() {
		t.Fatalf("reads differ: %s vs %s", first.Payload(), second.Payload())
	}
}

func TestMultiplyNumbers(t *testing.T) {
	res := invoke(t, tools.Default(tools.DemoFiles()), "multiply_numbers", `{"num1": 3, "num2": 4}`)
	if res.Value != float64(12) {
		t.Fatalf("got %#v (err %v)", res.Value, res.Err)
	}
	if res.Payload() != `{"result":12}` {
		t.Fatalf("payload %s", res.Payload())
	}
}

func TestTerminate_ReturnsMessage(t *testing.T) {
	res := invoke(t, tools.Default(tools.DemoFiles()), "terminate", `{"message":"bye"}`)
	term, ok := res.Value.(tools.Termination)
	if !ok || term.Message != "bye" {
		t.Fatalf("got %#v (err %v)", res.Value, res.Err)
	}
}

func TestWorkspaceFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	files, err := tools.NewWorkspaceFiles(dir)
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	r := tools.Default(files)

	res := invoke(t, r, "list_files", ``)
	names, _ := res.Value.([]string)
	if len(names) != 2 || names[0] != "notes.md" || names[1] != "sub/" {
		t.Fatalf("list: %#v (err %v)", res.Value, res.Err)
	}

	res = invoke(t, r, "read_file", `{"file_name":"notes.md"}`)
	if res.Value != "# notes" {
		t.Fatalf("read: %#v (err %v)", res.Value, res.Err)
	}

	res = invoke(t, r, "read_file", `{"file_name":"sub"}`)
	if res.Value != "Error: File 'sub' not found or cannot be read." {
		t.Fatalf("dir read: %#v (err %v)", res.Value, res.Err)
	}

	res = invoke(t, r, "read_file", `{"file_name":"../outside"}`)
	if res.OK() {
		t.Fatalf("escape should be a tool error, got %#v", res.Value)
	}
}
