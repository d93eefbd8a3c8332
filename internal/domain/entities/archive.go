// Package entities defines core domain models and data structures.
package entities

import (
	"fmt"
	"strings"
)

// EntryKind classifies an archive entry by its file extension
type EntryKind string

const (
	// KindSource is interpreted-language source code (.py)
	KindSource EntryKind = "source"
	// KindSharedObject is a compiled shared library (.so)
	KindSharedObject EntryKind = "shared_object"
	// KindOther is everything else (metadata, data files, headers)
	KindOther EntryKind = "other"
)

// ClassifyEntry derives the kind of an entry from its name alone
func ClassifyEntry(name string) EntryKind {
	switch {
	case strings.HasSuffix(name, ".py"):
		return KindSource
	case strings.HasSuffix(name, ".so"):
		return KindSharedObject
	default:
		return KindOther
	}
}

// ArchiveEntry is one non-directory member of a zip archive
type ArchiveEntry struct {
	Name             string
	UncompressedSize uint64
	CompressedSize   uint64
	Kind             EntryKind
}

// ArchiveMeta identifies the archive a report was built from
type ArchiveMeta struct {
	Name   string
	SHA256 string
}

// ArchiveError reports that the input archive could not be opened or read.
// It is the only failure that aborts an analysis.
type ArchiveError struct {
	Path string
	Op   string // "open", "read", "hash"
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s: %s failed: %v", e.Path, e.Op, e.Err)
}

// Unwrap returns the underlying cause
func (e *ArchiveError) Unwrap() error {
	return e.Err
}
