// Package fsops performs read-only file operations inside a workspace root.
package fsops

import (
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/petasbytes/toolagent/internal/safety"
)

// Workspace is a directory the file tools may read from.
type Workspace struct {
	root string
}

// Open resolves root and returns a Workspace bound to it.
func Open(root string) (*Workspace, error) {
	abs, err := safety.ResolveRoot(root)
	if err != nil {
		return nil, err
	}
	return &Workspace{root: abs}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string { return w.root }

// ListFiles lists the entries of relDir (non-recursive), sorted by name.
// Directories carry a trailing "/".
func (w *Workspace) ListFiles(relDir string) ([]string, error) {
	if relDir == "" {
		relDir = "."
	}
	absDir, err := safety.ValidateRelPath(w.root, relDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, translate(err, relDir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadFile returns the contents of the file at relPath.
func (w *Workspace) ReadFile(relPath string) (string, error) {
	absPath, err := safety.ValidateRelPath(w.root, relPath)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(absPath)
	if err != nil {
		return "", translate(err, relPath)
	}
	if fi.IsDir() {
		return "", safety.ToolError{Code: safety.CodeNotAFile, Message: relPath + " is a directory"}
	}
	b, err := os.ReadFile(absPath)
	if err != nil {
		return "", translate(err, relPath)
	}
	return string(b), nil
}

func translate(err error, rel string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return safety.ToolError{Code: safety.CodeNotFound, Message: rel + " does not exist"}
	}
	return err
}
