// Command wheelsize reports how the bytes of a Python wheel split between
// Python code, GPU architectures and everything else.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
)

var (
	// Version is the semantic version (set via -ldflags)
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags)
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags)
	BuildDate = "unknown"
)

func main() {
	// fang prints the error itself; only the exit code is left to us
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}
