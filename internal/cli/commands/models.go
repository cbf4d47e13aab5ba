package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewModelsCommand creates the models command.
func NewModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the dbt models that would be generated",
		Long: `List the models selected from the dbt manifest and catalog, with
their schema, column count, and tags. Useful for checking what a
generate run would cover before running it.`,
		Example: `  # List every model in the artifacts
  lookgen models

  # List models carrying a tag
  lookgen models --tag looker`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runModels(cmd)
		},
	}

	cmd.Flags().StringSlice("select", nil, "List only the named models")
	cmd.Flags().StringSlice("tag", nil, "List only models carrying one of these dbt tags")
	cmd.Flags().Bool("exposures-only", false, "List only models referenced by a dbt exposure")

	return cmd
}

func runModels(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	if cmd.Flags().Changed("select") {
		cfg.Select, _ = cmd.Flags().GetStringSlice("select")
	}
	if cmd.Flags().Changed("tag") {
		cfg.Tags, _ = cmd.Flags().GetStringSlice("tag")
	}
	if cmd.Flags().Changed("exposures-only") {
		cfg.ExposedOnly, _ = cmd.Flags().GetBool("exposures-only")
	}

	models, err := cmdCtx.LoadModels()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Model", "Schema", "Columns", "Tags"})
	for i := range models {
		m := &models[i]
		t.AppendRow(table.Row{m.Name, m.Schema, len(m.Columns), strings.Join(m.Tags, ", ")})
	}
	t.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d model(s)\n", len(models))
	return nil
}
