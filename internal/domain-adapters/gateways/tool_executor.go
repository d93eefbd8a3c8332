// Package gateways provides adapter implementations for external services and tools.
package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/ochairo/wheelsize/internal/domain/entities"
)

// ToolExecutor runs external inspection tools (cuobjdump, nvdisasm, strings)
type ToolExecutor struct {
	defaultTimeout time.Duration
	lookPath       func(string) (string, error)
}

// NewToolExecutor creates a new tool executor
func NewToolExecutor(defaultTimeout time.Duration) *ToolExecutor {
	if defaultTimeout <= 0 {
		defaultTimeout = 2 * time.Minute
	}
	return &ToolExecutor{
		defaultTimeout: defaultTimeout,
		lookPath:       exec.LookPath,
	}
}

// LookPath resolves a tool name or path to an executable
func (te *ToolExecutor) LookPath(tool string) (string, bool) {
	if tool == "" {
		return "", false
	}
	path, err := te.lookPath(tool)
	if err != nil {
		return "", false
	}
	return path, true
}

// Run executes the tool with its own deadline and reports the outcome as a
// value. A missing binary, non-zero exit or timeout leaves Success false.
func (te *ToolExecutor) Run(ctx context.Context, inv entities.ToolInvocation) *entities.ToolResult {
	startTime := time.Now()
	result := &entities.ToolResult{}

	path, ok := te.LookPath(inv.Tool)
	if !ok {
		result.ExitCode = -1
		result.Err = fmt.Errorf("%s: %w", inv.Tool, entities.ErrToolUnavailable)
		return result
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = te.defaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: tool path is resolved from configuration, arguments are fixed flags plus a staged file
	cmd := exec.CommandContext(execCtx, path, inv.Args...)
	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}
	// Kill grandchildren holding the pipes open after the deadline
	cmd.WaitDelay = time.Second

	// Discarded output stays nil so exec connects /dev/null instead of a pipe
	// that background children could hold open
	var output bytes.Buffer
	if !inv.DiscardOutput {
		// Architecture tokens can show up on either stream
		cmd.Stdout = &output
		cmd.Stderr = &output
	}

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Output = output.String()

	if err != nil {
		result.Err = err
		result.ExitCode = -1

		var exitErr *exec.ExitError
		//nolint:gocritic // ifElseChain: checking different error types, not suitable for switch
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			result.TimedOut = true
			result.Err = fmt.Errorf("%s timed out after %v", inv.Tool, timeout)
		} else if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}

// Probe reports which of the named tools are present on the host
func (te *ToolExecutor) Probe(tools map[string]string) []entities.ToolStatus {
	statuses := make([]entities.ToolStatus, 0, len(tools))
	for _, name := range sortedKeys(tools) {
		path, ok := te.LookPath(tools[name])
		statuses = append(statuses, entities.ToolStatus{
			Name:      name,
			Path:      path,
			Available: ok,
		})
	}
	return statuses
}
