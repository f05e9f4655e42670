package fsops_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/petasbytes/toolagent/internal/fsops"
	"github.com/petasbytes/toolagent/internal/safety"
)

func setupWorkspace(t *testing.T) (*fsops.Workspace, string) {
	t.Helper()
	dir := t.TempDir()
	ws, err := fsops.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return ws, ws.Root()
}

func TestReadFile_HappyPath(t *testing.T) {
	ws, dir := setupWorkspace(t)
	want := "hello world"
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte(want), 0o644); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	got, err := ws.ReadFile("a.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != want {
		t.Fatalf("content mismatch: got %q want %q", got, want)
	}
}

func TestReadFile_Errors(t *testing.T) {
	ws, dir := setupWorkspace(t)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		path string
		code string
	}{
		{"missing.txt", safety.CodeNotFound},
		{"sub", safety.CodeNotAFile},
		{"../escape.txt", safety.CodeOutsideRoot},
	}
	for _, tc := range cases {
		_, err := ws.ReadFile(tc.path)
		var te safety.ToolError
		if !errors.As(err, &te) || te.Code != tc.code {
			t.Errorf("%s: want %s, got %v", tc.path, tc.code, err)
		}
	}
}

func TestListFiles_SortedNonRecursive(t *testing.T) {
	ws, dir := setupWorkspace(t)
	for _, n := range []string{"c.txt", "a.txt"} {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "b", "deep"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ws.ListFiles("")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{"a.txt", "b/", "c.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestListFiles_MissingDir(t *testing.T) {
	ws, _ := setupWorkspace(t)
	_, err := ws.ListFiles("nope")
	var te safety.ToolError
	if !errors.As(err, &te) || te.Code != safety.CodeNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}
