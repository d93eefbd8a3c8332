package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ochairo/wheelsize/internal/domain/entities"
)

// architectureTokenPattern matches sm_XX / compute_XX tokens, with an optional
// variant letter (sm_90a), in tool output and extracted file names.
var architectureTokenPattern = regexp.MustCompile(`(?i)(?:sm|compute)_([0-9]{2,3}[a-z]?)`)

// rawTokenPattern accepts a full token or a bare digit run with optional letter
var rawTokenPattern = regexp.MustCompile(`^(?:(?:sm|compute)_)?([0-9]+)([a-z]?)$`)

// NormalizeArchitecture converts a raw token into a canonical tag.
// "sm_90a" -> "9.0a", "compute_75" -> "7.5", "sm_9" -> "9".
// Anything unparseable yields "unknown"; the function never fails.
func NormalizeArchitecture(raw string) entities.ArchitectureTag {
	m := rawTokenPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(raw)))
	if m == nil {
		return entities.UnknownArchitecture
	}
	digits, letter := m[1], m[2]

	if len(digits) == 1 {
		n, err := strconv.Atoi(digits)
		if err != nil {
			return entities.UnknownArchitecture
		}
		return entities.ArchitectureTag(strconv.Itoa(n) + letter)
	}

	major, err := strconv.Atoi(digits[:len(digits)-1])
	if err != nil {
		return entities.UnknownArchitecture
	}
	minor, err := strconv.Atoi(digits[len(digits)-1:])
	if err != nil {
		return entities.UnknownArchitecture
	}
	return entities.ArchitectureTag(strconv.Itoa(major) + "." + strconv.Itoa(minor) + letter)
}

// ScanArchitectures extracts every architecture token from tool output.
// Tokens that fail normalization are dropped. The result is deduplicated and
// sorted in display order; it is empty when nothing matched.
func ScanArchitectures(text string) []entities.ArchitectureTag {
	seen := make(map[entities.ArchitectureTag]struct{})
	var tags []entities.ArchitectureTag

	for _, m := range architectureTokenPattern.FindAllStringSubmatch(text, -1) {
		tag := NormalizeArchitecture(m[1])
		if tag == entities.UnknownArchitecture {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	entities.SortTags(tags)
	return tags
}

// TagFromFilename recovers the architecture of an extracted fragment from its
// file name, e.g. "_C.abi3.2.sm_80.cubin" -> "8.0".
func TagFromFilename(name string) entities.ArchitectureTag {
	m := architectureTokenPattern.FindStringSubmatch(name)
	if m == nil {
		return entities.UnknownArchitecture
	}
	return NormalizeArchitecture(m[1])
}
