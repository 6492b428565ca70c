// Package pathutil provides the workspace path-containment primitive used
// as a precondition by the command execution engine.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors returned by EnsureInsideWorkspace.
var (
	// ErrOutsideWorkspace indicates the path resolves outside the workspace root.
	ErrOutsideWorkspace = errors.New("pathutil: path outside workspace")

	// ErrNotFound indicates the workspace root or the path does not exist.
	ErrNotFound = errors.New("pathutil: path not found")
)

// EnsureInsideWorkspace resolves path against workspaceRoot and returns its
// absolute, symlink-canonicalized form, guaranteed to lie inside the
// workspace root. path may be relative (resolved against the root) or
// absolute (accepted only when inside the root). Both the root and the path
// must exist on disk; symlinks are resolved before the containment check so
// a link pointing out of the workspace is rejected.
func EnsureInsideWorkspace(workspaceRoot, path string) (string, error) {
	root, err := filepath.EvalSymlinks(workspaceRoot)
	if err != nil {
		return "", fmt.Errorf("%w: workspace root %q: %v", ErrNotFound, workspaceRoot, err)
	}
	if !filepath.IsAbs(root) {
		if root, err = filepath.Abs(root); err != nil {
			return "", fmt.Errorf("pathutil: resolve workspace root: %w", err)
		}
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(root, resolved)
	}
	canonical, err := filepath.EvalSymlinks(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		return "", fmt.Errorf("pathutil: resolve %q: %w", path, err)
	}

	if !isWithin(root, canonical) {
		return "", fmt.Errorf("%w: %q resolves to %q", ErrOutsideWorkspace, path, canonical)
	}
	return canonical, nil
}

// isWithin reports whether path is root itself or a descendant of root.
// A plain prefix check is not enough: /ws must not contain /ws2.
func isWithin(root, path string) bool {
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return strings.HasPrefix(path, string(filepath.Separator))
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
