package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ochairo/wheelsize/internal/config"
	"github.com/ochairo/wheelsize/internal/logger"
)

// rootOptions are the persistent flags shared by every subcommand
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "wheelsize",
		Short: "Break down a wheel's size by Python code and GPU architecture",
		Long: titleStyle.Render("wheelsize") + subtitleStyle.Render(" - where do the bytes in a wheel go?") + `

wheelsize opens a zip-format package archive (a Python wheel), totals the
Python sources, shared objects and other files, and splits every shared
object across the CUDA architectures (gencodes) compiled into it.

Architecture detection uses cuobjdump, nvdisasm or strings when they are
installed and degrades gracefully when they are not.

` + subtitleStyle.Render("Examples:") + `
  wheelsize analyze dist/pkg-1.0-cp311-cp311-linux_x86_64.whl
  wheelsize analyze https://example.com/pkg.whl --format json
  wheelsize tools`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/wheelsize/config.yml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging on stderr")

	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newToolsCmd(opts))
	cmd.AddCommand(newSchemaCmd())

	return cmd
}

// loadConfig reads the layered configuration
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(config.LoadOptions{ConfigPath: o.configPath})
}

// newLogger builds the stderr logger; --verbose forces debug
func (o *rootOptions) newLogger(cfg *config.Config, w io.Writer) (*logger.Logger, error) {
	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	}
	return logger.New(w, logger.Options{
		Level:      level,
		Timestamps: cfg.Log.Timestamps,
	})
}
