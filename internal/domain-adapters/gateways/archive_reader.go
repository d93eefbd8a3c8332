package gateways

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ochairo/wheelsize/internal/domain/entities"
	"github.com/ochairo/wheelsize/internal/domain/interfaces/gateways"
)

// ArchiveReader opens zip-format package archives (wheels)
type ArchiveReader struct{}

// NewArchiveReader creates a new archive reader
func NewArchiveReader() *ArchiveReader {
	return &ArchiveReader{}
}

// Open opens the archive and classifies its entries. Any failure is an
// *entities.ArchiveError.
func (r *ArchiveReader) Open(path string) (gateways.Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &entities.ArchiveError{Path: path, Op: "open", Err: err}
	}

	handle := &archiveHandle{path: path, zr: zr}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		handle.files = append(handle.files, f)
		handle.entries = append(handle.entries, entities.ArchiveEntry{
			Name:             f.Name,
			UncompressedSize: f.UncompressedSize64,
			CompressedSize:   f.CompressedSize64,
			Kind:             entities.ClassifyEntry(f.Name),
		})
	}

	return handle, nil
}

// archiveHandle is an opened zip archive; entries and files share indices
type archiveHandle struct {
	path    string
	zr      *zip.ReadCloser
	files   []*zip.File
	entries []entities.ArchiveEntry
}

// Entries returns a copy of the classified entries in archive order
func (h *archiveHandle) Entries() []entities.ArchiveEntry {
	return append([]entities.ArchiveEntry(nil), h.entries...)
}

// Stage decompresses entry index into dir. Safe for concurrent use with
// distinct directories.
func (h *archiveHandle) Stage(index int, dir string) (string, error) {
	if index < 0 || index >= len(h.files) {
		return "", fmt.Errorf("entry index %d out of range", index)
	}
	f := h.files[index]

	rc, err := f.Open()
	if err != nil {
		return "", &entities.ArchiveError{Path: h.path, Op: "read", Err: fmt.Errorf("%s: %w", f.Name, err)}
	}
	//nolint:errcheck // Defer close on read-only entry
	defer rc.Close()

	// Only the base name is used so entry paths cannot escape dir
	dest := filepath.Join(dir, filepath.Base(f.Name))

	//nolint:gosec // G304: destination is inside the run's scratch workspace
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}

	//nolint:gosec // G110: entry sizes come from the archive being measured
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return "", &entities.ArchiveError{Path: h.path, Op: "read", Err: fmt.Errorf("%s: %w", f.Name, err)}
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}

	return dest, nil
}

// Close releases the underlying file
func (h *archiveHandle) Close() error {
	return h.zr.Close()
}
