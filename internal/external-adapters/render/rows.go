// Package render prints analysis reports as terminal tables.
package render

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ochairo/wheelsize/internal/domain/entities"
)

const (
	summaryTitle   = "Wheel Size Summary"
	breakdownTitle = "Shared Object Breakdown"

	// approximateMarker flags objects whose gencode split is a whole-file fallback
	approximateMarker = "~"

	// hostCodeMarker flags the unknown row when it holds bytes of exactly
	// split objects that belong to no gencode
	hostCodeMarker = "*"
	noData         = "-"
)

var (
	summaryHeaders   = []string{"Component", "Size", "% of total"}
	breakdownHeaders = []string{"Shared object", "Total size", "Zipped size", "Gencode", "Chunk size", "% of SO"}

	// columns holding numbers are right-aligned in both renderers
	summaryNumeric   = map[int]bool{1: true, 2: true}
	breakdownNumeric = map[int]bool{1: true, 2: true, 4: true, 5: true}
)

func formatSize(n uint64) string {
	return humanize.IBytes(n)
}

func formatPercent(part, whole uint64) string {
	if whole == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(whole)*100)
}

// summaryRows lists Python code, one row per gencode, Other when non-zero,
// and the Total
func summaryRows(r *entities.Report) [][]string {
	rows := [][]string{
		{"Python code", formatSize(r.SourceTotal), formatPercent(r.SourceTotal, r.GrandTotal)},
	}
	hostCode := hasHostRemainder(r)
	for _, e := range r.ArchitectureSummary {
		label := "CUDA " + e.Tag.Label()
		if hostCode && e.Tag == entities.UnknownArchitecture {
			label += " " + hostCodeMarker
		}
		rows = append(rows, []string{
			label,
			formatSize(e.Bytes),
			formatPercent(e.Bytes, r.GrandTotal),
		})
	}
	if r.OtherTotal > 0 {
		rows = append(rows, []string{"Other", formatSize(r.OtherTotal), formatPercent(r.OtherTotal, r.GrandTotal)})
	}
	return append(rows, []string{"Total", formatSize(r.GrandTotal), "100.0%"})
}

// breakdownRows groups gencode rows under each shared object; only the first
// row of a group carries the object's name and sizes
func breakdownRows(r *entities.Report) [][]string {
	var rows [][]string
	for _, rec := range r.SharedObjects {
		name := rec.Name
		if rec.Mode == entities.AttributionApproximate {
			name += " " + approximateMarker
		}
		size := formatSize(rec.UncompressedSize)
		zipped := formatSize(rec.CompressedSize)

		if !rec.HasGencodeData() {
			rows = append(rows, []string{name, size, zipped, noData, noData, noData})
			continue
		}

		for i, a := range rec.Attributions {
			row := []string{"", "", "", a.Tag.Label(), formatSize(a.Bytes), fmt.Sprintf("%.1f%%", a.Percent(rec.UncompressedSize))}
			if i == 0 {
				row[0], row[1], row[2] = name, size, zipped
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// hasHostRemainder reports whether any exactly split object charged bytes to
// unknown, which then include host code and container overhead
func hasHostRemainder(r *entities.Report) bool {
	for _, rec := range r.SharedObjects {
		if rec.Mode != entities.AttributionExact {
			continue
		}
		for _, a := range rec.Attributions {
			if a.Tag == entities.UnknownArchitecture && a.Bytes > 0 {
				return true
			}
		}
	}
	return false
}

// footnote explains the unknown row and the over-count of fallback objects
func footnote(r *entities.Report) string {
	var notes []string
	if hasHostRemainder(r) {
		notes = append(notes, hostCodeMarker+" unknown includes host code and container overhead of shared objects "+
			"that were split exactly; these bytes belong to no gencode.")
	}
	if r.Approximate {
		notes = append(notes, approximateMarker+" exact extraction was unavailable for this object; its full size is counted "+
			"once per detected gencode, so gencode totals over-count and may exceed the archive size.")
	}
	return strings.Join(notes, "\n")
}
