package entities

// Report is the size composition of one archive. It is built once by the
// report service and treated as read-only afterwards.
type Report struct {
	ArchiveName       string
	ArchiveSHA256     string
	EntryCount        int
	SourceFileCount   int
	SourceTotal       uint64
	SharedObjectTotal uint64
	OtherTotal        uint64
	GrandTotal        uint64

	// ArchitectureSummary maps each tag to its bytes summed over all shared
	// objects, kept as a slice in tag display order.
	ArchitectureSummary []AttributionEntry
	SharedObjects       []SharedObjectRecord

	// Approximate is set when at least one shared object fell back to
	// whole-file attribution, so per-architecture totals over-count.
	Approximate bool
}

// SummaryBytes returns the aggregated bytes for tag, or 0 when absent
func (r *Report) SummaryBytes(tag ArchitectureTag) uint64 {
	for _, e := range r.ArchitectureSummary {
		if e.Tag == tag {
			return e.Bytes
		}
	}
	return 0
}
