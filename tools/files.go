package tools

import (
	"errors"
	"fmt"

	"github.com/petasbytes/toolagent/internal/fsops"
	"github.com/petasbytes/toolagent/internal/safety"
)

// FileSource backs the list_files and read_file tools.
type FileSource interface {
	List() ([]string, error)
	// Read returns the file contents, or an error wrapping ErrFileNotFound.
	Read(name string) (string, error)
}

// FixtureFiles is an in-memory FileSource. Listed names without content
// cannot be read.
type FixtureFiles struct {
	Names    []string
	Contents map[string]string
}

// DemoFiles returns the fixture used when no workspace is configured.
func DemoFiles() *FixtureFiles {
	return &FixtureFiles{
		Names: []string{"project_plan.md", "data_report.csv", "apu_the_cat.jpg"},
		Contents: map[string]string{
			"project_plan.md": "Project Plan: The main goal is to build a Streamlit chatbot.",
		},
	}
}

func (f *FixtureFiles) List() ([]string, error) {
	return append([]string(nil), f.Names...), nil
}

func (f *FixtureFiles) Read(name string) (string, error) {
	c, ok := f.Contents[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return c, nil
}

// WorkspaceFiles serves files from a sandboxed directory.
type WorkspaceFiles struct {
	ws *fsops.Workspace
}

// NewWorkspaceFiles opens root as a read-only workspace.
func NewWorkspaceFiles(root string) (*WorkspaceFiles, error) {
	ws, err := fsops.Open(root)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	return &WorkspaceFiles{ws: ws}, nil
}

func (w *WorkspaceFiles) List() ([]string, error) {
	return w.ws.ListFiles(".")
}

func (w *WorkspaceFiles) Read(name string) (string, error) {
	s, err := w.ws.ReadFile(name)
	var te safety.ToolError
	if errors.As(err, &te) && (te.Code == safety.CodeNotFound || te.Code == safety.CodeNotAFile) {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return s, err
}
