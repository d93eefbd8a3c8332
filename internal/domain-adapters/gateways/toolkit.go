package gateways

import (
	"sort"
	"time"

	"github.com/ochairo/wheelsize/internal/domain/interfaces/gateways"
)

// Tool names as reported by the tools command
const (
	ToolCuobjdump = "cuobjdump"
	ToolNvdisasm  = "nvdisasm"
	ToolStrings   = "strings"
)

// StringsFallback controls when the raw string scan runs
type StringsFallback string

const (
	// StringsFallbackAuto scans strings only when no CUDA binary utility is installed
	StringsFallbackAuto StringsFallback = "auto"
	// StringsFallbackAlways scans strings whenever the CUDA utilities found nothing
	StringsFallbackAlways StringsFallback = "always"
	// StringsFallbackNever disables the string scan
	StringsFallbackNever StringsFallback = "never"
)

// ToolPaths are the configured names or paths of the inspection tools
type ToolPaths struct {
	Cuobjdump string
	Nvdisasm  string
	Strings   string
}

// Toolkit is the set of inspection tools resolved on this host. An empty
// path means the tool is absent.
type Toolkit struct {
	Cuobjdump string
	Nvdisasm  string
	Strings   string

	Timeout        time.Duration
	ExtractTimeout time.Duration
}

// ResolveToolkit looks every configured tool up once per run
func ResolveToolkit(runner gateways.ToolRunner, paths ToolPaths, timeout, extractTimeout time.Duration) Toolkit {
	kit := Toolkit{Timeout: timeout, ExtractTimeout: extractTimeout}
	if p, ok := runner.LookPath(paths.Cuobjdump); ok {
		kit.Cuobjdump = p
	}
	if p, ok := runner.LookPath(paths.Nvdisasm); ok {
		kit.Nvdisasm = p
	}
	if p, ok := runner.LookPath(paths.Strings); ok {
		kit.Strings = p
	}
	return kit
}

// HasCUDAUtilities reports whether any specialized CUDA binary utility is present
func (k Toolkit) HasCUDAUtilities() bool {
	return k.Cuobjdump != "" || k.Nvdisasm != ""
}

// Names maps the tool names to their configured values, for probing
func (p ToolPaths) Names() map[string]string {
	return map[string]string{
		ToolCuobjdump: p.Cuobjdump,
		ToolNvdisasm:  p.Nvdisasm,
		ToolStrings:   p.Strings,
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
