// Package yaml provides the YAML encoding of analysis reports.
package yaml

import (
	"bytes"
	"fmt"

	"github.com/ochairo/wheelsize/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// yamlReport represents the emitted YAML structure
type yamlReport struct {
	Archive       yamlArchive        `yaml:"archive"`
	Totals        yamlTotals         `yaml:"totals"`
	Approximate   bool               `yaml:"approximate"`
	Architectures []yamlArchitecture `yaml:"architectures"`
	SharedObjects []yamlSharedObject `yaml:"shared_objects"`
}

type yamlArchive struct {
	Name    string `yaml:"name"`
	SHA256  string `yaml:"sha256,omitempty"`
	Entries int    `yaml:"entries"`
}

type yamlTotals struct {
	Source        uint64 `yaml:"source"`
	SourceFiles   int    `yaml:"source_files"`
	SharedObjects uint64 `yaml:"shared_objects"`
	Other         uint64 `yaml:"other"`
	Grand         uint64 `yaml:"grand"`
}

type yamlArchitecture struct {
	Gencode string `yaml:"gencode"`
	Bytes   uint64 `yaml:"bytes"`
}

type yamlSharedObject struct {
	Name           string             `yaml:"name"`
	Size           uint64             `yaml:"size"`
	CompressedSize uint64             `yaml:"compressed_size"`
	Attribution    string             `yaml:"attribution"`
	Detected       []string           `yaml:"detected,flow"`
	Gencodes       []yamlArchitecture `yaml:"gencodes,omitempty"`
}

// ReportEncoder writes reports as YAML documents
type ReportEncoder struct {
	indent int
}

// NewReportEncoder creates a new YAML report encoder
func NewReportEncoder() *ReportEncoder {
	return &ReportEncoder{indent: 2}
}

// Encode renders the report as a YAML document. Field and list order follow
// the report, so the output is stable across runs.
func (e *ReportEncoder) Encode(report *entities.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("report is nil")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(e.indent)
	if err := enc.Encode(convertReport(report)); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish report: %w", err)
	}
	return buf.Bytes(), nil
}

func convertReport(r *entities.Report) yamlReport {
	out := yamlReport{
		Archive: yamlArchive{
			Name:    r.ArchiveName,
			SHA256:  r.ArchiveSHA256,
			Entries: r.EntryCount,
		},
		Totals: yamlTotals{
			Source:        r.SourceTotal,
			SourceFiles:   r.SourceFileCount,
			SharedObjects: r.SharedObjectTotal,
			Other:         r.OtherTotal,
			Grand:         r.GrandTotal,
		},
		Approximate:   r.Approximate,
		Architectures: convertAttributions(r.ArchitectureSummary),
		SharedObjects: make([]yamlSharedObject, 0, len(r.SharedObjects)),
	}

	for _, rec := range r.SharedObjects {
		detected := make([]string, 0, len(rec.Detected))
		for _, tag := range rec.Detected {
			detected = append(detected, string(tag))
		}
		out.SharedObjects = append(out.SharedObjects, yamlSharedObject{
			Name:           rec.Name,
			Size:           rec.UncompressedSize,
			CompressedSize: rec.CompressedSize,
			Attribution:    string(rec.Mode),
			Detected:       detected,
			Gencodes:       convertAttributions(rec.Attributions),
		})
	}

	return out
}

func convertAttributions(entries []entities.AttributionEntry) []yamlArchitecture {
	out := make([]yamlArchitecture, 0, len(entries))
	for _, e := range entries {
		out = append(out, yamlArchitecture{Gencode: string(e.Tag), Bytes: e.Bytes})
	}
	return out
}
