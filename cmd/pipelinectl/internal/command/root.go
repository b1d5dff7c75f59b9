package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kbukum/pipelinekit/flow"
	"github.com/kbukum/pipelinekit/version"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// ErrProblems is returned when a command completed but found problems. The
// process exits with status 1 without printing it.
var ErrProblems = errors.New("problems found")

// CLI holds the state shared by every subcommand.
type CLI struct {
	Out io.Writer
	Err io.Writer

	Output        string
	ConfigFile    string
	RegistryPaths []string
	Debug         bool
}

// NewCLI creates a CLI writing results to out and diagnostics to errOut.
func NewCLI(out, errOut io.Writer) *CLI {
	return &CLI{Out: out, Err: errOut, Output: OutputText}
}

// NewRootCommand builds the pipelinectl command tree.
func NewRootCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipelinectl",
		Short: "Validate, migrate and serve pipeline documents",
		Long: highlight("pipelinectl [global options] <command> [args]") + "\n\n" +
			"pipelinectl checks pipeline documents against a palette of node types,\n" +
			"migrates older documents to the current format and serves both over HTTP.\n",
		Version:       version.GetVersionInfo(flow.CurrentVersion).String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cli.Output != OutputText && cli.Output != OutputJSON {
				return fmt.Errorf("invalid output format %q: expected %s or %s", cli.Output, OutputText, OutputJSON)
			}
			return nil
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.Output, "output", "o", OutputText, "Output format. One of: (text | json)")
	flags.StringVarP(&cli.ConfigFile, "config", "c", "", "Path to the configuration file")
	flags.StringSliceVarP(&cli.RegistryPaths, "registry", "r", nil, "Node type spec files or directories (overrides registry.paths)")
	flags.BoolVar(&cli.Debug, "debug", false, "Set log level to debug")

	cmd.AddCommand(
		NewValidateCommand(cli),
		NewMigrateCommand(cli),
		NewLevelsCommand(cli),
		NewServeCommand(cli),
		NewVersionCommand(cli),
	)
	return cmd
}

// Execute runs pipelinectl and exits the process.
func Execute() {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		color.NoColor = true
	}

	cli := NewCLI(os.Stdout, os.Stderr)
	root := NewRootCommand(cli)
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, ErrProblems) {
			fmt.Fprintln(cli.Err, color.RedString("Error:"), err)
		}
		os.Exit(1)
	}
}

func highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}
