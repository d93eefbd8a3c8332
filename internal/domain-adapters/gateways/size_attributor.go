package gateways

import (
	"context"
	"fmt"
	"math/bits"
	"os"
	"sort"
	"strings"

	"github.com/ochairo/wheelsize/internal/domain/entities"
	"github.com/ochairo/wheelsize/internal/domain/interfaces"
	"github.com/ochairo/wheelsize/internal/domain/interfaces/gateways"
	"github.com/ochairo/wheelsize/internal/domain/services"
)

// fragmentSuffixes are the device-code files cuobjdump --extract-elf writes
var fragmentSuffixes = []string{".cubin", ".ptx", ".o"}

// SizeAttributor splits a shared object's bytes across GPU architectures
type SizeAttributor struct {
	runner  gateways.ToolRunner
	toolkit Toolkit
	logger  interfaces.Logger
}

// NewSizeAttributor creates an attributor over the resolved toolkit
func NewSizeAttributor(runner gateways.ToolRunner, toolkit Toolkit, logger interfaces.Logger) *SizeAttributor {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &SizeAttributor{
		runner:  runner,
		toolkit: toolkit,
		logger:  logger,
	}
}

// Attribute extracts the embedded device code of soPath into workDir and
// sizes it per architecture. When extraction is unavailable or fails, every
// detected architecture is charged the whole file size instead.
func (a *SizeAttributor) Attribute(
	ctx context.Context,
	soPath string,
	fileSize uint64,
	detected []entities.ArchitectureTag,
	workDir string,
) entities.Attribution {
	if a.toolkit.Cuobjdump != "" {
		result := a.runner.Run(ctx, entities.ToolInvocation{
			Tool:          a.toolkit.Cuobjdump,
			Args:          []string{"--extract-elf", "all", soPath},
			Dir:           workDir,
			Timeout:       a.toolkit.ExtractTimeout,
			DiscardOutput: true,
		})
		if result.Success {
			attribution, err := collectFragments(workDir, fileSize)
			if err == nil {
				return attribution
			}
			a.logger.Debug("reading extracted fragments failed", interfaces.F("file", soPath), interfaces.F("error", err))
		} else {
			a.logger.Debug("device code extraction failed",
				interfaces.F("file", soPath),
				interfaces.F("exit_code", result.ExitCode),
				interfaces.F("timed_out", result.TimedOut),
				interfaces.F("error", result.Err))
		}
	}

	return FallbackAttribution(detected, fileSize)
}

// FallbackAttribution charges the whole file to every detected architecture.
// With n architectures the attributed bytes sum to n x fileSize; the mode
// records that the split is approximate.
func FallbackAttribution(detected []entities.ArchitectureTag, fileSize uint64) entities.Attribution {
	if len(detected) == 0 {
		return entities.Attribution{Mode: entities.AttributionNone}
	}

	seen := make(map[entities.ArchitectureTag]struct{}, len(detected))
	entries := make([]entities.AttributionEntry, 0, len(detected))
	for _, tag := range detected {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		entries = append(entries, entities.AttributionEntry{Tag: tag, Bytes: fileSize})
	}
	entities.SortAttributions(entries)

	return entities.Attribution{Mode: entities.AttributionApproximate, Entries: entries}
}

// collectFragments sums extracted fragment sizes per architecture
func collectFragments(dir string, fileSize uint64) (entities.Attribution, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return entities.Attribution{}, fmt.Errorf("failed to list extraction directory: %w", err)
	}

	sums := make(map[entities.ArchitectureTag]uint64)
	fragments := 0
	for _, de := range dirEntries {
		if de.IsDir() || !isFragment(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return entities.Attribution{}, fmt.Errorf("failed to stat fragment %s: %w", de.Name(), err)
		}
		sums[services.TagFromFilename(de.Name())] += uint64(info.Size()) //nolint:gosec // G115: file sizes are non-negative
		fragments++
	}

	if fragments == 0 {
		return entities.Attribution{Mode: entities.AttributionNone}, nil
	}

	return entities.Attribution{
		Mode:    entities.AttributionExact,
		Entries: reconcileExact(sums, fileSize),
	}, nil
}

func isFragment(name string) bool {
	for _, suffix := range fragmentSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// reconcileExact makes the fragment sizes sum to fileSize. Bytes not covered
// by any fragment (host code, ELF overhead) are charged to "unknown"; when
// the fragments are larger than the file (fatbins are often compressed) they
// are scaled down proportionally using largest-remainder rounding.
func reconcileExact(sums map[entities.ArchitectureTag]uint64, fileSize uint64) []entities.AttributionEntry {
	var total uint64
	for _, v := range sums {
		total += v
	}

	if total <= fileSize {
		if rest := fileSize - total; rest > 0 {
			sums[entities.UnknownArchitecture] += rest
		}
		return sortedEntries(sums)
	}

	type share struct {
		tag       entities.ArchitectureTag
		bytes     uint64
		remainder uint64
	}

	entries := sortedEntries(sums)
	shares := make([]share, len(entries))
	var assigned uint64
	for i, e := range entries {
		// e.Bytes <= total, so the quotient always fits in 64 bits
		hi, lo := bits.Mul64(e.Bytes, fileSize)
		q, r := bits.Div64(hi, lo, total)
		shares[i] = share{tag: e.Tag, bytes: q, remainder: r}
		assigned += q
	}

	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return shares[order[i]].remainder > shares[order[j]].remainder
	})
	for k := uint64(0); k < fileSize-assigned; k++ {
		shares[order[int(k)%len(order)]].bytes++ //nolint:gosec // G115: k < len(order)
	}

	for i := range entries {
		entries[i].Bytes = shares[i].bytes
	}
	return entries
}

func sortedEntries(sums map[entities.ArchitectureTag]uint64) []entities.AttributionEntry {
	entries := make([]entities.AttributionEntry, 0, len(sums))
	for tag, b := range sums {
		entries = append(entries, entities.AttributionEntry{Tag: tag, Bytes: b})
	}
	entities.SortAttributions(entries)
	return entries
}
