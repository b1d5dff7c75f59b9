package command

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/pipelinekit/dag"
	"github.com/kbukum/pipelinekit/flow"
)

// NewLevelsCommand creates the levels command.
func NewLevelsCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "levels FILE",
		Short: "Print the execution levels of the primary pipeline",
		Long: highlight("pipelinectl levels FILE") + "\n\n" +
			"Group the nodes of the primary pipeline by dependency level. Nodes in the\n" +
			"same level do not depend on each other. Fails when the pipeline has a cycle.\n",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLevels(cli, args[0])
		},
	}
}

func runLevels(cli *CLI, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}
	doc, err := flow.Decode(data)
	if err != nil {
		return err
	}
	primary := doc.Primary()
	if primary == nil {
		return fmt.Errorf("%s: document has no pipelines", file)
	}
	levels, err := dag.BuildLevels(dag.FromPipeline(primary))
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	labeled := make([][]string, len(levels))
	for i, level := range levels {
		for _, id := range level {
			labeled[i] = append(labeled[i], primary.FindNode(id).Label())
		}
	}

	if cli.Output == OutputJSON {
		enc := json.NewEncoder(cli.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(labeled)
	}
	for i, level := range labeled {
		fmt.Fprintf(cli.Out, "%s %s\n", highlight("%d:", i+1), strings.Join(level, ", "))
	}
	return nil
}
