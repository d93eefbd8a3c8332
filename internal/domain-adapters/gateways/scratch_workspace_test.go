package gateways

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScratchWorkspace_Lifecycle(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "nested", "scratch")

	ws, err := NewScratchWorkspace(parent)
	if err != nil {
		t.Fatalf("NewScratchWorkspace() error = %v", err)
	}

	root := ws.Root()
	if !filepath.IsAbs(root) {
		t.Errorf("Root() = %s, want absolute path", root)
	}
	if !strings.HasPrefix(filepath.Base(root), "wheelsize-") {
		t.Errorf("Root() = %s, want wheelsize- prefix", root)
	}

	sub, err := ws.Subdir("so-0001")
	if err != nil {
		t.Fatalf("Subdir() error = %v", err)
	}
	if filepath.Dir(sub) != root {
		t.Errorf("Subdir() = %s, want child of %s", sub, root)
	}
	if err := os.WriteFile(filepath.Join(sub, "lib.so"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := ws.Subdir("so-0001"); err == nil {
		t.Error("Subdir() reusing a name should fail")
	}

	if err := ws.Release(sub); err != nil {
		t.Errorf("Release() error = %v", err)
	}
	if _, err := os.Stat(sub); !os.IsNotExist(err) {
		t.Errorf("released dir still exists: %v", err)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("workspace root still exists after Close(): %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := ws.Subdir("late"); err == nil {
		t.Error("Subdir() after Close() should fail")
	}
}

func TestScratchWorkspace_SubdirStaysInside(t *testing.T) {
	ws, err := NewScratchWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	//nolint:errcheck // Test cleanup
	defer ws.Close()

	sub, err := ws.Subdir("../../escape")
	if err != nil {
		t.Fatalf("Subdir() error = %v", err)
	}
	if filepath.Dir(sub) != ws.Root() {
		t.Errorf("Subdir() = %s escaped %s", sub, ws.Root())
	}
}

func TestScratchWorkspace_ReleaseOutside(t *testing.T) {
	ws, err := NewScratchWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	//nolint:errcheck // Test cleanup
	defer ws.Close()

	outside := t.TempDir()
	for _, dir := range []string{outside, ws.Root(), filepath.Join(ws.Root(), "..")} {
		if err := ws.Release(dir); err == nil {
			t.Errorf("Release(%s) should be refused", dir)
		}
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("outside dir was touched: %v", err)
	}
}
