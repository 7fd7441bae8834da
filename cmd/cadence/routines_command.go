package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRoutinesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "routines",
		Short: "List the routine library (built-ins plus user catalog)",
		RunE: func(cmd *cobra.Command, args []string) error {
			library, err := ctx.library()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, template := range library.All() {
				labels := make([]string, 0, len(template.Steps))
				for _, step := range template.Steps {
					labels = append(labels, fmt.Sprintf("%s (%dm)", step.Label, step.DurationMinutes))
				}
				rows = append(rows, []string{
					template.ID,
					template.Title,
					strconv.Itoa(template.TotalMinutes()),
					strings.Join(labels, ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Minutes", "Steps"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
