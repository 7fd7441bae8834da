package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cadence/internal/cache"
	"cadence/internal/notify"
	"cadence/internal/planstore"
	"cadence/internal/trigger"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reload the plan and re-register all reminder triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
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

			capability := notify.NewCapability(cfg, ctx.quietLogger())
			return ctx.withPlanStore(func(plans *planstore.Store, local *cache.Store) error {
				weekly, err := plans.Load(cmd.Context(), userID)
				if err != nil {
					return err
				}
				scheduler := trigger.New(capability, local, ctx.quietLogger())
				result, err := scheduler.SyncAll(cmd.Context(), userID, weekly, library)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.PermissionDenied {
					fmt.Fprintln(out, "Reminders are disabled (no permission or no ntfy topic configured); nothing registered.")
					return nil
				}
				fmt.Fprintf(out, "Triggers synced: %d registered, %d cancelled, %d skipped, %d failed\n",
					result.Registered, result.Cancelled, result.Skipped, result.Failed)
				return nil
			})
		},
	}
}
