package entities

import "sort"

// AttributionMode tells how a shared object's bytes were split across architectures
type AttributionMode string

const (
	// AttributionExact means sizes come from individually extracted device-code fragments
	AttributionExact AttributionMode = "exact"
	// AttributionApproximate means the whole file size was assigned to every
	// detected architecture, so the per-object sum over-counts by design
	AttributionApproximate AttributionMode = "approximate"
	// AttributionNone means no gencode data was found for the object
	AttributionNone AttributionMode = "none"
)

// AttributionEntry is the part of one shared object attributed to one architecture
type AttributionEntry struct {
	Tag   ArchitectureTag
	Bytes uint64
}

// Percent returns the share of objectSize this entry represents
func (a AttributionEntry) Percent(objectSize uint64) float64 {
	if objectSize == 0 {
		return 0
	}
	return float64(a.Bytes) / float64(objectSize) * 100
}

// Attribution is the outcome of splitting one shared object by architecture
type Attribution struct {
	Mode    AttributionMode
	Entries []AttributionEntry
}

// SortAttributions sorts entries in tag display order
func SortAttributions(entries []AttributionEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Tag.Compare(entries[j].Tag) < 0
	})
}

// SharedObjectRecord is the analysis result for one .so entry
type SharedObjectRecord struct {
	Name             string
	UncompressedSize uint64
	CompressedSize   uint64
	Detected         []ArchitectureTag
	Mode             AttributionMode
	Attributions     []AttributionEntry
}

// AttributedBytes sums the attribution entries of the record
func (r SharedObjectRecord) AttributedBytes() uint64 {
	var total uint64
	for _, a := range r.Attributions {
		total += a.Bytes
	}
	return total
}

// HasGencodeData reports whether the record carries any attribution
func (r SharedObjectRecord) HasGencodeData() bool {
	return len(r.Attributions) > 0
}
