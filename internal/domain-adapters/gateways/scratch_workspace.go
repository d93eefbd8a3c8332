package gateways

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ScratchWorkspace is the single temporary directory owned by one analysis
// run. Shared objects are staged and extracted in per-object subdirectories
// and the whole tree is removed by Close.
type ScratchWorkspace struct {
	root   string
	mu     sync.Mutex
	closed bool
}

// NewScratchWorkspace creates the run's temporary directory under parent
// (the system temp directory when parent is empty)
func NewScratchWorkspace(parent string) (*ScratchWorkspace, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0750); err != nil {
			return nil, fmt.Errorf("failed to create scratch parent: %w", err)
		}
	}

	root, err := os.MkdirTemp(parent, "wheelsize-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	// External tools run with a different working directory, so paths handed
	// to them must be absolute
	abs, err := filepath.Abs(root)
	if err != nil {
		_ = os.RemoveAll(root)
		return nil, fmt.Errorf("failed to resolve scratch directory: %w", err)
	}

	return &ScratchWorkspace{root: abs}, nil
}

// Root returns the workspace directory
func (w *ScratchWorkspace) Root() string {
	return w.root
}

// Subdir creates a fresh, empty directory inside the workspace
func (w *ScratchWorkspace) Subdir(name string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return "", fmt.Errorf("scratch workspace already closed")
	}

	dir := filepath.Join(w.root, filepath.Base(name))
	if err := os.Mkdir(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create scratch subdirectory: %w", err)
	}
	return dir, nil
}

// Release deletes a subdirectory early to bound disk usage on large archives
func (w *ScratchWorkspace) Release(dir string) error {
	if !strings.HasPrefix(filepath.Clean(dir), w.root+string(filepath.Separator)) {
		return fmt.Errorf("%s is not inside the scratch workspace", dir)
	}
	return os.RemoveAll(dir)
}

// Close removes the workspace and everything in it. It is safe to call more
// than once.
func (w *ScratchWorkspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("failed to remove scratch directory: %w", err)
	}
	return nil
}
