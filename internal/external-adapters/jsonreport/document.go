// Package jsonreport encodes analysis reports as canonical JSON.
package jsonreport

import "github.com/ochairo/wheelsize/internal/domain/entities"

// SchemaVersion is bumped on any incompatible change to Document
const SchemaVersion = "1"

// Document is the JSON shape of a report
type Document struct {
	SchemaVersion string            `json:"schema_version"`
	Archive       ArchiveDoc        `json:"archive"`
	Totals        TotalsDoc         `json:"totals"`
	Approximate   bool              `json:"approximate"`
	Architectures []ArchitectureDoc `json:"architectures"`
	SharedObjects []SharedObjectDoc `json:"shared_objects"`
}

// ArchiveDoc identifies the analyzed archive
type ArchiveDoc struct {
	Name    string `json:"name"`
	SHA256  string `json:"sha256"`
	Entries int    `json:"entries"`
}

// TotalsDoc holds the per-category byte totals
type TotalsDoc struct {
	Source        uint64 `json:"source"`
	SourceFiles   int    `json:"source_files"`
	SharedObjects uint64 `json:"shared_objects"`
	Other         uint64 `json:"other"`
	Grand         uint64 `json:"grand"`
}

// ArchitectureDoc is one row of the architecture summary
type ArchitectureDoc struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
	Bytes uint64 `json:"bytes"`
}

// SharedObjectDoc is the breakdown of one shared object
type SharedObjectDoc struct {
	Name           string           `json:"name"`
	Size           uint64           `json:"size"`
	CompressedSize uint64           `json:"compressed_size"`
	Mode           string           `json:"mode"`
	Detected       []string         `json:"detected"`
	Attributions   []AttributionDoc `json:"attributions"`
}

// AttributionDoc is the share of one architecture within a shared object
type AttributionDoc struct {
	Tag   string `json:"tag"`
	Bytes uint64 `json:"bytes"`
}

// NewDocument converts a report; every slice is non-nil so arrays are never null
func NewDocument(report *entities.Report) Document {
	doc := Document{
		SchemaVersion: SchemaVersion,
		Archive: ArchiveDoc{
			Name:    report.ArchiveName,
			SHA256:  report.ArchiveSHA256,
			Entries: report.EntryCount,
		},
		Totals: TotalsDoc{
			Source:        report.SourceTotal,
			SourceFiles:   report.SourceFileCount,
			SharedObjects: report.SharedObjectTotal,
			Other:         report.OtherTotal,
			Grand:         report.GrandTotal,
		},
		Approximate:   report.Approximate,
		Architectures: make([]ArchitectureDoc, 0, len(report.ArchitectureSummary)),
		SharedObjects: make([]SharedObjectDoc, 0, len(report.SharedObjects)),
	}

	for _, e := range report.ArchitectureSummary {
		doc.Architectures = append(doc.Architectures, ArchitectureDoc{
			Tag:   string(e.Tag),
			Label: e.Tag.Label(),
			Bytes: e.Bytes,
		})
	}

	for _, rec := range report.SharedObjects {
		so := SharedObjectDoc{
			Name:           rec.Name,
			Size:           rec.UncompressedSize,
			CompressedSize: rec.CompressedSize,
			Mode:           string(rec.Mode),
			Detected:       make([]string, 0, len(rec.Detected)),
			Attributions:   make([]AttributionDoc, 0, len(rec.Attributions)),
		}
		for _, tag := range rec.Detected {
			so.Detected = append(so.Detected, string(tag))
		}
		for _, a := range rec.Attributions {
			so.Attributions = append(so.Attributions, AttributionDoc{Tag: string(a.Tag), Bytes: a.Bytes})
		}
		doc.SharedObjects = append(doc.SharedObjects, so)
	}

	return doc
}
