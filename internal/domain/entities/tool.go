package entities

import (
	"errors"
	"time"
)

// ErrToolUnavailable is reported when an external tool is not installed
var ErrToolUnavailable = errors.New("tool not available")

// ToolInvocation describes one bounded run of an external command-line tool
type ToolInvocation struct {
	Tool    string // executable name or path
	Args    []string
	Dir     string
	Timeout time.Duration
	// DiscardOutput skips capturing stdout/stderr (extraction runs)
	DiscardOutput bool
}

// ToolResult is the outcome of a tool invocation. Failures are carried as
// values so callers can treat them as "no signal" instead of aborting.
type ToolResult struct {
	Success  bool
	ExitCode int
	Output   string // combined stdout and stderr
	Duration time.Duration
	TimedOut bool
	Err      error
}

// ToolStatus reports whether a tool was found on the host
type ToolStatus struct {
	Name      string
	Path      string
	Available bool
}
