package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/cache"
	"cadence/internal/engine"
	"cadence/internal/plan"
	"cadence/internal/planstore"
	"cadence/internal/routine"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect and edit the weekly plan",
	}
	planCmd.AddCommand(newPlanShowCommand(ctx))
	planCmd.AddCommand(newPlanAddCommand(ctx))
	planCmd.AddCommand(newPlanRemoveCommand(ctx))
	planCmd.AddCommand(newPlanMoveCommand(ctx))
	planCmd.AddCommand(newPlanSetTimeCommand(ctx))
	return planCmd
}

func newPlanShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the weekly plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := ctx.userID()
			if err != nil {
				return err
			}
			library, err := ctx.library()
			if err != nil {
				return err
			}
			return ctx.withPlanStore(func(plans *planstore.Store, _ *cache.Store) error {
				weekly, err := plans.Load(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if weekly.Len() == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "The weekly plan is empty. Add a routine with `cadence plan add`.")
					return nil
				}
				var rows [][]string
				for _, weekday := range plan.Weekdays() {
					for _, item := range weekly.Day(weekday) {
						rows = append(rows, []string{
							weekday.String(),
							startAtLabel(item),
							item.ResolveTitle(library),
							strconv.Itoa(item.Sets()),
							plannedLabel(item, library),
							item.PlanID,
						})
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Day", "Start", "Routine", "Sets", "Planned", "Plan ID"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newPlanAddCommand(ctx *commandContext) *cobra.Command {
	var startAt string
	var sets int

	cmd := &cobra.Command{
		Use:   "add <weekday> <routine-id>",
		Short: "Add a routine to a weekday",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekday, err := plan.ParseWeekday(args[0])
			if err != nil {
				return err
			}
			userID, err := ctx.userID()
			if err != nil {
				return err
			}
			library, err := ctx.library()
			if err != nil {
				return err
			}
			routineID := strings.TrimSpace(args[1])
			if _, found := library.Resolve(routineID); !found {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: routine %q is not in the library; the item will be inert until it exists\n", routineID)
			}

			item := plan.NewItem(routineID)
			if startAt != "" {
				if _, ok := plan.ParseStartAt(startAt); !ok {
					return fmt.Errorf("invalid start time %q (expected HH:MM)", startAt)
				}
				item.StartAt = startAt
			}
			if sets > 0 {
				item.SetCount = sets
			}

			return ctx.withPlanStore(func(plans *planstore.Store, _ *cache.Store) error {
				weekly, err := plans.Load(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if err := weekly.Add(weekday, item); err != nil {
					return err
				}
				if err := plans.Save(cmd.Context(), userID, weekly); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s (plan id %s)\n", item.ResolveTitle(library), weekday, item.PlanID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&startAt, "at", "", "Start time (HH:MM); empty means unscheduled")
	cmd.Flags().IntVar(&sets, "sets", 0, "Set count (default 1)")
	return cmd
}

func newPlanRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <plan-id>",
		Short: "Remove a plan item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := ctx.userID()
			if err != nil {
				return err
			}
			return ctx.withPlanStore(func(plans *planstore.Store, _ *cache.Store) error {
				weekly, err := plans.Load(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if !weekly.Remove(args[0]) {
					return fmt.Errorf("no plan item with id %s", args[0])
				}
				if err := plans.Save(cmd.Context(), userID, weekly); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newPlanMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <plan-id> <position>",
		Short: "Reorder a plan item within its weekday (1-based position)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[1])
			if err != nil || position < 1 {
				return fmt.Errorf("invalid position %q", args[1])
			}
			userID, err := ctx.userID()
			if err != nil {
				return err
			}
			return ctx.withPlanStore(func(plans *planstore.Store, _ *cache.Store) error {
				weekly, err := plans.Load(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if !weekly.Move(args[0], position-1) {
					return fmt.Errorf("no plan item with id %s", args[0])
				}
				if err := plans.Save(cmd.Context(), userID, weekly); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to position %d\n", args[0], position)
				return nil
			})
		},
	}
}

func newPlanSetTimeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-time <plan-id> <HH:MM|none>",
		Short: "Change a plan item's start time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			startAt := strings.TrimSpace(args[1])
			if startAt == "none" {
				startAt = ""
			} else if _, ok := plan.ParseStartAt(startAt); !ok {
				return fmt.Errorf("invalid start time %q (expected HH:MM or none)", args[1])
			}
			userID, err := ctx.userID()
			if err != nil {
				return err
			}
			return ctx.withPlanStore(func(plans *planstore.Store, _ *cache.Store) error {
				weekly, err := plans.Load(cmd.Context(), userID)
				if err != nil {
					return err
				}
				_, item, found := weekly.Find(args[0])
				if !found {
					return fmt.Errorf("no plan item with id %s", args[0])
				}
				item.StartAt = startAt
				if !weekly.Update(item) {
					return errors.New("plan item vanished during update")
				}
				if err := plans.Save(cmd.Context(), userID, weekly); err != nil {
					return err
				}
				if startAt == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Unscheduled %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Set %s to start at %s\n", args[0], startAt)
				}
				return nil
			})
		},
	}
}

func startAtLabel(item plan.Item) string {
	if strings.TrimSpace(item.StartAt) == "" {
		return "-"
	}
	return item.StartAt
}

func plannedLabel(item plan.Item, library *routine.Library) string {
	steps := item.ResolveSteps(library)
	if len(steps) == 0 {
		return "inert"
	}
	minutes := routine.SumMinutes(steps) * item.Sets()
	return engine.FormatElapsed(minutes * 60)
}
