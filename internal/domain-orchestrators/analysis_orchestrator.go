// Package orchestrators coordinates the analysis workflow across domain services and gateways.
package orchestrators

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ochairo/wheelsize/internal/domain/entities"
	"github.com/ochairo/wheelsize/internal/domain/interfaces"
	"github.com/ochairo/wheelsize/internal/domain/interfaces/gateways"
	"github.com/ochairo/wheelsize/internal/domain/interfaces/services"
)

// Workspace is the scoped scratch directory of one run
type Workspace interface {
	Subdir(name string) (string, error)
	Release(dir string) error
	Close() error
}

// WorkspaceFactory creates the run's scratch workspace under parent
type WorkspaceFactory func(parent string) (Workspace, error)

// AnalysisOrchestrator runs one archive through detection, attribution and
// aggregation
type AnalysisOrchestrator struct {
	opener        gateways.ArchiveOpener
	detector      gateways.ArchitectureDetector
	attributor    gateways.SizeAttributor
	checksum      gateways.ChecksumCalculator
	reports       services.ReportService
	newWorkspace  WorkspaceFactory
	logger        interfaces.Logger
	workers       int
	scratchParent string
}

// AnalysisOrchestratorConfig holds configuration for the orchestrator
type AnalysisOrchestratorConfig struct {
	// Workers bounds how many shared objects are analyzed at once; 1 is sequential
	Workers int
	// ScratchDir is the parent of the run's scratch workspace (system temp when empty)
	ScratchDir string
}

// NewAnalysisOrchestrator creates a new analysis orchestrator
func NewAnalysisOrchestrator(
	opener gateways.ArchiveOpener,
	detector gateways.ArchitectureDetector,
	attributor gateways.SizeAttributor,
	checksum gateways.ChecksumCalculator,
	reports services.ReportService,
	newWorkspace WorkspaceFactory,
	logger interfaces.Logger,
	config AnalysisOrchestratorConfig,
) *AnalysisOrchestrator {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &AnalysisOrchestrator{
		opener:        opener,
		detector:      detector,
		attributor:    attributor,
		checksum:      checksum,
		reports:       reports,
		newWorkspace:  newWorkspace,
		logger:        logger,
		workers:       workers,
		scratchParent: config.ScratchDir,
	}
}

// Analyze measures the archive at path. An unreadable archive aborts with an
// *entities.ArchiveError and no report; tool failures only degrade the result.
func (o *AnalysisOrchestrator) Analyze(ctx context.Context, path string) (*entities.Report, error) {
	startTime := time.Now()

	archive, err := o.opener.Open(path)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close on read-only archive
	defer archive.Close()

	ws, err := o.newWorkspace(o.scratchParent)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			o.logger.Warn("failed to remove scratch workspace", interfaces.F("error", cerr))
		}
	}()

	digest, err := o.checksum.CalculateChecksum(path)
	if err != nil {
		return nil, &entities.ArchiveError{Path: path, Op: "hash", Err: err}
	}

	entries := archive.Entries()
	var targets []int
	for i, e := range entries {
		if e.Kind == entities.KindSharedObject {
			targets = append(targets, i)
		}
	}

	o.logger.Info("analyzing archive",
		interfaces.F("archive", filepath.Base(path)),
		interfaces.F("entries", len(entries)),
		interfaces.F("shared_objects", len(targets)),
		interfaces.F("workers", o.workers))

	records := make([]entities.SharedObjectRecord, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for slot, index := range targets {
		g.Go(func() error {
			record, err := o.analyzeObject(gctx, archive, ws, slot, index, entries[index])
			if err != nil {
				return err
			}
			records[slot] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := o.reports.Aggregate(entities.ArchiveMeta{
		Name:   filepath.Base(path),
		SHA256: digest,
	}, entries, records)

	if report.Approximate {
		o.logger.Warn("some shared objects were attributed approximately; architecture totals over-count",
			interfaces.F("archive", report.ArchiveName))
	}
	o.logger.Info("analysis complete",
		interfaces.F("archive", report.ArchiveName),
		interfaces.F("grand_total", report.GrandTotal),
		interfaces.F("duration", time.Since(startTime).Round(time.Millisecond)))

	return report, nil
}

// analyzeObject stages one shared object into its own subdirectory, runs the
// detector then the attributor on it, and releases the subdirectory
func (o *AnalysisOrchestrator) analyzeObject(
	ctx context.Context,
	archive gateways.Archive,
	ws Workspace,
	slot, index int,
	entry entities.ArchiveEntry,
) (entities.SharedObjectRecord, error) {
	if err := ctx.Err(); err != nil {
		return entities.SharedObjectRecord{}, err
	}

	dir, err := ws.Subdir(fmt.Sprintf("so-%04d", slot))
	if err != nil {
		return entities.SharedObjectRecord{}, err
	}
	defer func() {
		if rerr := ws.Release(dir); rerr != nil {
			o.logger.Debug("failed to release scratch subdirectory", interfaces.F("dir", dir), interfaces.F("error", rerr))
		}
	}()

	soPath, err := archive.Stage(index, dir)
	if err != nil {
		return entities.SharedObjectRecord{}, err
	}

	extractDir, err := ws.Subdir(fmt.Sprintf("so-%04d-extract", slot))
	if err != nil {
		return entities.SharedObjectRecord{}, err
	}
	defer func() {
		_ = ws.Release(extractDir)
	}()

	detected := o.detector.Detect(ctx, soPath)
	attribution := o.attributor.Attribute(ctx, soPath, entry.UncompressedSize, detected, extractDir)

	if attribution.Mode == entities.AttributionApproximate {
		o.logger.Warn("exact attribution unavailable, charging whole file to each architecture",
			interfaces.F("object", entry.Name),
			interfaces.F("architectures", len(detected)))
	}

	return entities.SharedObjectRecord{
		Name:             entry.Name,
		UncompressedSize: entry.UncompressedSize,
		CompressedSize:   entry.CompressedSize,
		Detected:         detected,
		Mode:             attribution.Mode,
		Attributions:     attribution.Entries,
	}, nil
}
