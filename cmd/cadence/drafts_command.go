package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cadence/internal/engine"
	"cadence/internal/records"
)

func newDraftsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "drafts",
		Short: "List recorded sessions, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := ctx.userID()
			if err != nil {
				return err
			}
			return ctx.withRecorder(func(recorder *records.Store) error {
				listed, err := recorder.List(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if len(listed) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No recorded sessions yet.")
					return nil
				}
				var rows [][]string
				for _, draft := range listed {
					checkIn := "-"
					if draft.CheckIn != nil {
						checkIn = fmt.Sprintf("mood %d, focus %d, goal %s",
							draft.CheckIn.Mood, draft.CheckIn.Focus, yesNo(draft.CheckIn.GoalAchieved))
					}
					rows = append(rows, []string{
						draft.CompletedAt.Local().Format("2006-01-02 15:04"),
						draft.Status,
						draft.Title,
						strconv.Itoa(draft.SetCount),
						engine.FormatElapsed(draft.ElapsedSeconds),
						checkIn,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Completed", "Status", "Routine", "Sets", "Elapsed", "Check-in"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}
