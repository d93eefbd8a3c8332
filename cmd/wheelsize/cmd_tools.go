package main

import (
	"github.com/spf13/cobra"

	"github.com/ochairo/wheelsize/internal/domain-adapters/gateways"
	"github.com/ochairo/wheelsize/internal/external-adapters/render"
)

func newToolsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Show which inspection tools were found",
		Long: `Show which inspection tools were found on this host.

Without cuobjdump, shared objects cannot be split exactly and each detected
architecture is charged the whole file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			paths := gateways.ToolPaths{
				Cuobjdump: cfg.Tools.Cuobjdump,
				Nvdisasm:  cfg.Tools.Nvdisasm,
				Strings:   cfg.Tools.Strings,
			}
			statuses := gateways.NewToolExecutor(cfg.Tools.Timeout).Probe(paths.Names())
			return render.Tools(cmd.OutOrStdout(), statuses)
		},
	}
}
