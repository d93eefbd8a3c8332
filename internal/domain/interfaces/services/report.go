// Package services defines interfaces for domain service contracts.
package services

import "github.com/ochairo/wheelsize/internal/domain/entities"

// ReportService turns per-entry analysis results into a report
type ReportService interface {
	// Aggregate builds the final, canonically ordered report
	Aggregate(meta entities.ArchiveMeta, entries []entities.ArchiveEntry, records []entities.SharedObjectRecord) *entities.Report
}
