package main

import (
	"github.com/spf13/cobra"

	"github.com/ochairo/wheelsize/internal/external-adapters/jsonreport"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of --format json reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(jsonreport.Schema())
			return err
		},
	}
}
