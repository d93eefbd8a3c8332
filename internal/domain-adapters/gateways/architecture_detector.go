package gateways

import (
	"context"

	"github.com/ochairo/wheelsize/internal/domain/entities"
	"github.com/ochairo/wheelsize/internal/domain/interfaces"
	"github.com/ochairo/wheelsize/internal/domain/interfaces/gateways"
	"github.com/ochairo/wheelsize/internal/domain/services"
)

// detectionStrategy is one guarded attempt at listing architectures: a tool
// and the flags that make it print sm_XX / compute_XX tokens
type detectionStrategy struct {
	name string
	tool string
	args []string
}

// ArchitectureDetector finds GPU targets in a shared object by running an
// ordered chain of external tools; the first one that reports any token wins.
type ArchitectureDetector struct {
	runner   gateways.ToolRunner
	toolkit  Toolkit
	fallback StringsFallback
	logger   interfaces.Logger
}

// NewArchitectureDetector creates a detector over the resolved toolkit
func NewArchitectureDetector(
	runner gateways.ToolRunner,
	toolkit Toolkit,
	fallback StringsFallback,
	logger interfaces.Logger,
) *ArchitectureDetector {
	if fallback == "" {
		fallback = StringsFallbackAuto
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ArchitectureDetector{
		runner:   runner,
		toolkit:  toolkit,
		fallback: fallback,
		logger:   logger,
	}
}

// strategies returns the chain for this host, in priority order
func (d *ArchitectureDetector) strategies() []detectionStrategy {
	var chain []detectionStrategy

	if d.toolkit.Cuobjdump != "" {
		chain = append(chain,
			detectionStrategy{name: "cuobjdump-elf", tool: d.toolkit.Cuobjdump, args: []string{"--list-elf"}},
			detectionStrategy{name: "cuobjdump-ptx", tool: d.toolkit.Cuobjdump, args: []string{"--list-ptx"}},
		)
	}
	if d.toolkit.Nvdisasm != "" {
		chain = append(chain,
			detectionStrategy{name: "nvdisasm-sass", tool: d.toolkit.Nvdisasm, args: []string{"-list-sass"}},
		)
	}
	if d.toolkit.Strings != "" && d.stringsAllowed() {
		chain = append(chain,
			detectionStrategy{name: "strings", tool: d.toolkit.Strings},
		)
	}

	return chain
}

func (d *ArchitectureDetector) stringsAllowed() bool {
	switch d.fallback {
	case StringsFallbackAlways:
		return true
	case StringsFallbackNever:
		return false
	default:
		return !d.toolkit.HasCUDAUtilities()
	}
}

// Detect returns the sorted architecture set of soPath, or {"unknown"} when
// no strategy produced a token. Tool failures never surface as errors.
func (d *ArchitectureDetector) Detect(ctx context.Context, soPath string) []entities.ArchitectureTag {
	for _, strategy := range d.strategies() {
		if tags, ok := d.run(ctx, strategy, soPath); ok {
			d.logger.Debug("architectures detected",
				interfaces.F("file", soPath),
				interfaces.F("strategy", strategy.name),
				interfaces.F("count", len(tags)))
			return tags
		}
	}

	d.logger.Debug("no architecture detected", interfaces.F("file", soPath))
	return []entities.ArchitectureTag{entities.UnknownArchitecture}
}

// run executes one strategy; ok is false for any failure or an empty scan
func (d *ArchitectureDetector) run(ctx context.Context, s detectionStrategy, soPath string) ([]entities.ArchitectureTag, bool) {
	args := append(append([]string(nil), s.args...), soPath)

	result := d.runner.Run(ctx, entities.ToolInvocation{
		Tool:    s.tool,
		Args:    args,
		Timeout: d.toolkit.Timeout,
	})
	if !result.Success {
		d.logger.Debug("detection strategy produced no result",
			interfaces.F("strategy", s.name),
			interfaces.F("exit_code", result.ExitCode),
			interfaces.F("timed_out", result.TimedOut),
			interfaces.F("error", result.Err))
		return nil, false
	}

	tags := services.ScanArchitectures(result.Output)
	return tags, len(tags) > 0
}
