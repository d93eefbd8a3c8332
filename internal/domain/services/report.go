// Package services implements domain business logic and use cases.
package services

import (
	"sort"

	"github.com/ochairo/wheelsize/internal/domain/entities"
	"github.com/ochairo/wheelsize/internal/domain/interfaces/services"
)

// reportService implements ReportService with pure accumulation logic
type reportService struct{}

// NewReportService creates a new report service
func NewReportService() services.ReportService {
	return &reportService{}
}

// Aggregate sums per-kind totals, merges per-object attributions into the
// architecture summary and orders everything canonically, so that the same
// inputs always produce an identical report.
// Pure business logic - no I/O
func (s *reportService) Aggregate(
	meta entities.ArchiveMeta,
	entries []entities.ArchiveEntry,
	records []entities.SharedObjectRecord,
) *entities.Report {
	report := &entities.Report{
		ArchiveName:   meta.Name,
		ArchiveSHA256: meta.SHA256,
		EntryCount:    len(entries),
	}

	for _, entry := range entries {
		// Grand total comes from entry sizes, never from attributions, so the
		// fallback over-count cannot leak into it.
		report.GrandTotal += entry.UncompressedSize

		switch entry.Kind {
		case entities.KindSource:
			report.SourceTotal += entry.UncompressedSize
			report.SourceFileCount++
		case entities.KindSharedObject:
			report.SharedObjectTotal += entry.UncompressedSize
		default:
			report.OtherTotal += entry.UncompressedSize
		}
	}

	summary := make(map[entities.ArchitectureTag]uint64)
	report.SharedObjects = make([]entities.SharedObjectRecord, 0, len(records))

	for _, rec := range records {
		rec = copyRecord(rec)
		entities.SortAttributions(rec.Attributions)
		entities.SortTags(rec.Detected)

		for _, a := range rec.Attributions {
			summary[a.Tag] += a.Bytes
		}
		if rec.Mode == entities.AttributionApproximate {
			report.Approximate = true
		}
		report.SharedObjects = append(report.SharedObjects, rec)
	}

	sortRecords(report.SharedObjects)

	report.ArchitectureSummary = make([]entities.AttributionEntry, 0, len(summary))
	for tag, bytes := range summary {
		report.ArchitectureSummary = append(report.ArchitectureSummary, entities.AttributionEntry{Tag: tag, Bytes: bytes})
	}
	entities.SortAttributions(report.ArchitectureSummary)

	return report
}

// sortRecords orders shared objects largest first, then by name
func sortRecords(records []entities.SharedObjectRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UncompressedSize != records[j].UncompressedSize {
			return records[i].UncompressedSize > records[j].UncompressedSize
		}
		return records[i].Name < records[j].Name
	})
}

// copyRecord detaches the record's slices from the caller's
func copyRecord(rec entities.SharedObjectRecord) entities.SharedObjectRecord {
	rec.Attributions = append([]entities.AttributionEntry(nil), rec.Attributions...)
	rec.Detected = append([]entities.ArchitectureTag(nil), rec.Detected...)
	return rec
}
