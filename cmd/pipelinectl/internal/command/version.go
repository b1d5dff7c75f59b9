package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/pipelinekit/flow"
	"github.com/kbukum/pipelinekit/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build and document version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetVersionInfo(flow.CurrentVersion)
			if cli.Output == OutputJSON {
				enc := json.NewEncoder(cli.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintln(cli.Out, info.String())
			fmt.Fprintf(cli.Out, "document version: %d\n", info.DocumentVersion)
			return nil
		},
	}
}
