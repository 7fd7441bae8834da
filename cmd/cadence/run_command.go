package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cadence/internal/cache"
	"cadence/internal/engine"
	"cadence/internal/plan"
	"cadence/internal/planstore"
	"cadence/internal/records"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var sets int

	cmd := &cobra.Command{
		Use:   "run [routine-id]",
		Short: "Run today's routines, or one routine ad hoc",
		Args:  cobra.MaximumNArgs(1),
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

			var queue []engine.QueueItem
			if len(args) == 1 {
				template, found := library.Resolve(strings.TrimSpace(args[0]))
				if !found {
					return fmt.Errorf("routine %q is not in the library", args[0])
				}
				if sets <= 0 {
					sets = cfg.Execution.DefaultSetCount
				}
				queue = engine.SingleQueue(template, sets)
			}

			return ctx.withPlanStore(func(plans *planstore.Store, local *cache.Store) error {
				if queue == nil {
					weekly, err := plans.Load(cmd.Context(), userID)
					if err != nil {
						return err
					}
					today := plan.Today(time.Now(), cfg.Execution.DayBoundaryHour)
					queue = engine.BuildQueue(weekly, library, today)
				}
				if len(queue) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to run today.")
					return nil
				}

				remote, err := ctx.remoteStore()
				if err != nil {
					return err
				}
				recorder := records.New(local, remote, ctx.quietLogger())
				defer recorder.Flush()

				session := engine.NewSession(queue, recorder, engine.SessionConfig{
					UserID:          userID,
					Rules:           engine.Rules{SettleDelaySeconds: cfg.Execution.SettleDelaySeconds},
					DayBoundaryHour: cfg.Execution.DayBoundaryHour,
				}, ctx.quietLogger())
				return runInteractive(cmd, session)
			})
		},
	}

	cmd.Flags().IntVar(&sets, "sets", 0, "Set count for an ad hoc run")
	return cmd
}

func runInteractive(cmd *cobra.Command, session *engine.Session) error {
	out := cmd.OutOrStdout()
	printQueue(out, session.Queue())
	if err := session.Begin(); err != nil {
		return err
	}
	defer session.Exit()

	printStatus(out, session)
	fmt.Fprintln(out, "Commands: start, pause, resume, skip, status, draft (save draft and exit), quit")

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	for {
		select {
		case <-session.Done():
			fmt.Fprintln(out, "Session complete.")
			return nil
		case line, ok := <-lines:
			if !ok {
				// Input closed: treat like draft-and-exit so progress survives.
				session.DraftAndExit(cmd.Context())
				<-session.Done()
				return nil
			}
			if err := handleCommand(cmd, session, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				fmt.Fprintln(out, err)
			}
			if session.State().Phase == engine.PhaseCheckingIn {
				fmt.Fprintln(out, "Routine complete. Check in with: checkin <mood 1-5> <focus 1-5> <goal y/n>")
			}
		}
	}
}

var errQuit = errors.New("quit")

func handleCommand(cmd *cobra.Command, session *engine.Session, line string) error {
	out := cmd.OutOrStdout()
	fields := strings.Fields(line)
	if len(fields) == 0 {
		printStatus(out, session)
		return nil
	}
	switch fields[0] {
	case "start":
		session.Start()
	case "pause":
		session.Pause()
	case "resume":
		session.Resume()
	case "skip":
		session.SkipStep()
	case "status":
	case "draft":
		session.DraftAndExit(cmd.Context())
		<-session.Done()
		fmt.Fprintln(out, "Draft saved.")
		return errQuit
	case "checkin":
		checkIn, err := parseCheckIn(fields[1:])
		if err != nil {
			return err
		}
		if err := session.ConfirmCheckIn(cmd.Context(), checkIn); err != nil {
			return err
		}
	case "quit", "exit":
		session.Exit()
		return errQuit
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	printStatus(out, session)
	return nil
}

func parseCheckIn(fields []string) (records.CheckIn, error) {
	if len(fields) != 3 {
		return records.CheckIn{}, errors.New("usage: checkin <mood 1-5> <focus 1-5> <goal y/n>")
	}
	mood, err := strconv.Atoi(fields[0])
	if err != nil {
		return records.CheckIn{}, fmt.Errorf("invalid mood %q", fields[0])
	}
	focus, err := strconv.Atoi(fields[1])
	if err != nil {
		return records.CheckIn{}, fmt.Errorf("invalid focus %q", fields[1])
	}
	goal := strings.EqualFold(fields[2], "y") || strings.EqualFold(fields[2], "yes")
	checkIn := records.CheckIn{Mood: mood, Focus: focus, GoalAchieved: goal}
	if !checkIn.Valid() {
		return records.CheckIn{}, errors.New("mood and focus must be between 1 and 5")
	}
	return checkIn, nil
}

func printQueue(out io.Writer, queue []engine.QueueItem) {
	var rows [][]string
	for i, item := range queue {
		start := "-"
		if item.Scheduled() {
			start = plan.FormatStartAt(item.StartAtMinutes)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			start,
			item.Title,
			strconv.Itoa(item.SetCount),
			engine.FormatElapsed(item.PlannedMinutes() * 60),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Start", "Routine", "Sets", "Planned"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
	))
}

func printStatus(out io.Writer, session *engine.Session) {
	state := session.State()
	item, ok := session.Current()
	if !ok {
		return
	}
	switch state.Phase {
	case engine.PhaseReady:
		fmt.Fprintf(out, "[%d/%d] %s: ready, %s planned. Type start to begin.\n",
			state.QueueIndex+1, len(session.Queue()), item.Title, engine.FormatElapsed(item.PlannedMinutes()*60))
	case engine.PhaseRunning:
		step := item.Steps[state.StepIndex]
		mode := "running"
		if state.Paused {
			mode = "paused"
		}
		fmt.Fprintf(out, "[%d/%d] %s: set %d/%d, step %d/%d (%s), %s remaining (%s)\n",
			state.QueueIndex+1, len(session.Queue()), item.Title,
			state.SetIndex+1, item.SetCount, state.StepIndex+1, len(item.Steps), step.Label,
			engine.FormatElapsed(state.RemainingSeconds), mode)
	case engine.PhaseCheckingIn:
		fmt.Fprintf(out, "[%d/%d] %s: done, %s elapsed\n",
			state.QueueIndex+1, len(session.Queue()), item.Title, engine.FormatElapsed(state.ElapsedSeconds))
	}
}
