package gateways

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ochairo/wheelsize/internal/domain/entities"
)

// fakeResponse is the canned outcome of one tool invocation
type fakeResponse struct {
	output    string
	fail      bool
	timedOut  bool
	fragments map[string]int // files written into the invocation dir
}

// fakeRunner replays canned tool output keyed by "tool first-flag"
// (or just "tool" when the only argument is the file)
type fakeRunner struct {
	mu        sync.Mutex
	available map[string]bool
	responses map[string]fakeResponse
	calls     []string
}

func newFakeRunner(tools ...string) *fakeRunner {
	f := &fakeRunner{
		available: make(map[string]bool),
		responses: make(map[string]fakeResponse),
	}
	for _, tool := range tools {
		f.available[tool] = true
	}
	return f
}

func (f *fakeRunner) on(key string, resp fakeResponse) *fakeRunner {
	f.responses[key] = resp
	return f
}

func (f *fakeRunner) LookPath(tool string) (string, bool) {
	if f.available[tool] {
		return tool, true
	}
	return "", false
}

func (f *fakeRunner) Run(_ context.Context, inv entities.ToolInvocation) *entities.ToolResult {
	key := inv.Tool
	if len(inv.Args) > 1 {
		key += " " + inv.Args[0]
	}

	f.mu.Lock()
	f.calls = append(f.calls, key)
	resp, ok := f.responses[key]
	f.mu.Unlock()

	if !f.available[inv.Tool] {
		return &entities.ToolResult{ExitCode: -1, Err: entities.ErrToolUnavailable}
	}
	if !ok || resp.fail {
		return &entities.ToolResult{ExitCode: 1, Output: resp.output}
	}
	if resp.timedOut {
		return &entities.ToolResult{ExitCode: -1, TimedOut: true}
	}

	for name, size := range resp.fragments {
		data := []byte(strings.Repeat("x", size))
		if err := os.WriteFile(filepath.Join(inv.Dir, name), data, 0600); err != nil {
			return &entities.ToolResult{ExitCode: -1, Err: err}
		}
	}
	return &entities.ToolResult{Success: true, Output: resp.output}
}

func (f *fakeRunner) callKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// zipFile is one entry of a test archive; a trailing slash makes a directory
type zipFile struct {
	name string
	data []byte
}

func writeZip(t *testing.T, path string, files []zipFile) string {
	t.Helper()

	//nolint:gosec // G304: test fixture path
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(out)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", f.name, err)
		}
		if len(f.data) > 0 {
			if _, err := w.Write(f.data); err != nil {
				t.Fatalf("zip write %s: %v", f.name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return path
}
