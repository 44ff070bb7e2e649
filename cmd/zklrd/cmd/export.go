package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zklr-network/zklr/app"
)

const flagOutput = "output"

// ExportCmd returns the command exporting the latest state as genesis
func ExportCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the latest state as a genesis file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString(flagOutput)
			return withEngine(cctx, func(e *app.Engine) error {
				gs, err := e.ExportGenesis(cmd.Context())
				if err != nil {
					return err
				}
				if output == "" {
					return printJSON(cmd, gs)
				}
				return app.WriteGenesis(output, gs)
			})
		},
	}
	cmd.Flags().String(flagOutput, "", "write to this file instead of stdout")
	return cmd
}
