package command

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kbukum/pipelinekit/problems"
)

// fileProblems is the JSON form of one validated file.
type fileProblems struct {
	File     string           `json:"file"`
	Problems []locatedProblem `json:"problems"`
}

type locatedProblem struct {
	problems.Problem
	Line   int `json:"line"`
	Column int `json:"column"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check pipeline documents for problems",
		Long: highlight("pipelinectl validate FILE...") + "\n\n" +
			"Check pipeline documents for circular links, missing components and\n" +
			"missing or invalid properties. Exits with status 1 when problems are found.\n\n" +
			"Examples:\n" +
			"  pipelinectl validate -r ./palette train.pipeline\n" +
			"  pipelinectl validate -o json *.pipeline\n",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cli.loadEnvironment()
			if err != nil {
				return err
			}
			return runValidate(cli, env, args)
		},
	}
}

func runValidate(cli *CLI, env *environment, files []string) error {
	opts := []problems.Option{
		problems.WithPipelineProperties(env.pipelineProps),
		problems.WithCycleTimeout(env.cfg.Validation.CycleTimeout),
	}

	results := make([]fileProblems, 0, len(files))
	total := 0
	for _, file := range files {
		text, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		result := fileProblems{File: file, Problems: []locatedProblem{}}
		for _, p := range problems.Validate(text, env.reg, opts...) {
			line, col := problems.Position(text, p.Range.Offset)
			result.Problems = append(result.Problems, locatedProblem{Problem: p, Line: line, Column: col})
		}
		total += len(result.Problems)
		results = append(results, result)
	}

	if cli.Output == OutputJSON {
		enc := json.NewEncoder(cli.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		renderProblems(cli, results, total)
	}

	if total > 0 {
		return ErrProblems
	}
	return nil
}

func renderProblems(cli *CLI, results []fileProblems, total int) {
	for _, r := range results {
		for _, p := range r.Problems {
			fmt.Fprintf(cli.Out, "%s:%d:%d: %s %s\n", r.File, p.Line, p.Column, severityLabel(p.Severity), p.Message)
		}
	}
	if total == 0 {
		fmt.Fprintln(cli.Out, highlight("Valid!"), fmt.Sprintf("no problems found in %d file(s).", len(results)))
		return
	}
	fmt.Fprintln(cli.Out, color.RedString("Invalid!"), fmt.Sprintf("%d problem(s) found.", total))
}

func severityLabel(s problems.Severity) string {
	label := s.String() + ":"
	switch s {
	case problems.SeverityError:
		return color.RedString(label)
	case problems.SeverityWarning:
		return color.YellowString(label)
	default:
		return color.CyanString(label)
	}
}
