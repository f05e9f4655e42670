// Package safety confines file tool access to a workspace root.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Error codes carried by ToolError.
const (
	CodeOutsideRoot = "ERR_PATH_OUTSIDE_ROOT"
	CodeDeniedRead  = "ERR_DENIED_READ"
	CodeNotAFile    = "ERR_NOT_A_FILE"
	CodeNotFound    = "ERR_NOT_FOUND"
)

// ToolError is a machine-readable error body surfaced to the model as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns the compact JSON form so tool payloads stay small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// deniedDirs are never readable, whatever the root.
var deniedDirs = []string{".git", ".agent"}

// ResolveRoot returns the absolute, symlink-resolved form of root.
// An empty root means the current working directory.
func ResolveRoot(root string) (string, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("abs(%s): %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", abs, err)
	}
	fi, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("workspace root %s is not a directory", resolved)
	}
	return resolved, nil
}

// ValidateRelPath joins relPath onto absRoot and returns the absolute result if
// it stays inside the root. Absolute inputs, parent traversal, symlink escapes
// and reads under denied directories yield a ToolError.
func ValidateRelPath(absRoot, relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", ToolError{Code: CodeOutsideRoot, Message: "absolute paths are not allowed"}
	}

	candidate := filepath.Join(absRoot, filepath.Clean(relPath))

	// Resolve the leaf when it exists, else its parent, so a symlinked
	// directory cannot smuggle the path out of the root.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if parent, err := filepath.EvalSymlinks(filepath.Dir(candidate)); err == nil {
		candidate = filepath.Join(parent, filepath.Base(candidate))
	}

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", ToolError{Code: CodeOutsideRoot, Message: "path resolves outside the workspace root"}
	}

	slashed := filepath.ToSlash(rel)
	for _, d := range deniedDirs {
		if slashed == d || strings.HasPrefix(slashed, d+"/") {
			return "", ToolError{Code: CodeDeniedRead, Message: "reads under " + d + "/ are not allowed"}
		}
	}
	return candidate, nil
}
