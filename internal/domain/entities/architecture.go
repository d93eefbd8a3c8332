package entities

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ArchitectureTag identifies a GPU compute capability such as "8.0" or "9.0a".
// The literal "unknown" is used when no target could be determined.
type ArchitectureTag string

// UnknownArchitecture is the tag for code whose target could not be determined
const UnknownArchitecture ArchitectureTag = "unknown"

var numericTagPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([a-z]?)$`)

// IsNumeric reports whether the tag carries a compute capability value
func (t ArchitectureTag) IsNumeric() bool {
	return numericTagPattern.MatchString(string(t))
}

// Label is the display form: "sm_8.0" for numeric tags, the bare tag otherwise
func (t ArchitectureTag) Label() string {
	if t.IsNumeric() {
		return "sm_" + string(t)
	}
	return string(t)
}

// split returns the numeric value and letter suffix of a numeric tag
func (t ArchitectureTag) split() (float64, string, bool) {
	m := numericTagPattern.FindStringSubmatch(string(t))
	if m == nil {
		return 0, "", false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	return value, m[2], true
}

// Compare orders tags by numeric value, then letter suffix, with
// non-numeric tags ("unknown") after every numeric one.
func (t ArchitectureTag) Compare(other ArchitectureTag) int {
	av, as, aok := t.split()
	bv, bs, bok := other.split()

	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case !aok && !bok:
		return strings.Compare(string(t), string(other))
	}

	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	}
	if c := strings.Compare(as, bs); c != 0 {
		return c
	}
	return strings.Compare(string(t), string(other))
}

// SortTags sorts tags in place in display order
func SortTags(tags []ArchitectureTag) {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Compare(tags[j]) < 0
	})
}
