// Package gateways defines the contracts the analysis core needs from the
// host: external tools, the archive container and the filesystem.
package gateways

import (
	"context"

	"github.com/ochairo/wheelsize/internal/domain/entities"
)

// ToolRunner runs external command-line tools with a bounded lifetime
type ToolRunner interface {
	// LookPath resolves a tool name to an executable path
	LookPath(tool string) (string, bool)

	// Run executes a tool; failures are reported in the result, never panicked or returned
	Run(ctx context.Context, inv entities.ToolInvocation) *entities.ToolResult
}

// Archive is an opened package archive
type Archive interface {
	// Entries lists every non-directory entry in archive order
	Entries() []entities.ArchiveEntry

	// Stage copies the entry at index into dir and returns the staged file path
	Stage(index int, dir string) (string, error)

	Close() error
}

// ArchiveOpener opens package archives
type ArchiveOpener interface {
	Open(path string) (Archive, error)
}

// ArchitectureDetector finds the GPU architectures compiled into a shared object
type ArchitectureDetector interface {
	// Detect never returns an empty set; at minimum it returns {"unknown"}
	Detect(ctx context.Context, soPath string) []entities.ArchitectureTag
}

// SizeAttributor splits a shared object's size across architectures
type SizeAttributor interface {
	Attribute(ctx context.Context, soPath string, fileSize uint64, detected []entities.ArchitectureTag, workDir string) entities.Attribution
}

// ChecksumCalculator computes file digests
type ChecksumCalculator interface {
	CalculateChecksum(filePath string) (string, error)
}
