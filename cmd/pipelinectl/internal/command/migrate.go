package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/pipelinekit/logger"
	"github.com/kbukum/pipelinekit/migration"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(cli *CLI) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "migrate FILE",
		Short: "Upgrade a pipeline document to the current version",
		Long: highlight("pipelinectl migrate FILE") + "\n\n" +
			"Apply every migration step newer than the document's version and print\n" +
			"the result. With --write the file is updated in place.\n",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cli.loadConfig(); err != nil {
				return err
			}
			return runMigrate(cli, args[0], write)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the migrated document back to FILE")
	return cmd
}

func runMigrate(cli *CLI, file string, write bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}
	migrated, err := migration.MigrateJSON(data, migration.WithLogger(logger.Get("migration")))
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if !write {
		_, err = fmt.Fprintln(cli.Out, string(migrated))
		return err
	}

	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, append(migrated, '\n'), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	fmt.Fprintln(cli.Err, highlight("Migrated"), file)
	return nil
}
