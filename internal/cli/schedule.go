package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mirandabohm/Auto-Launcher/internal/scheduler"
	"github.com/mirandabohm/Auto-Launcher/internal/sequencer"
	"github.com/spf13/cobra"
)

var (
	scheduleAt     string
	scheduleDryRun bool
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", "time of day to fire (08:30, 20:30, or 5:45pm)")
	scheduleCmd.Flags().BoolVar(&scheduleDryRun, "dry-run", false, "print the computed delay without arming a timer")
	_ = scheduleCmd.MarkFlagRequired("at")
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <profile>",
	Short: "Launch a profile at the next occurrence of a time of day",
	Long:  "Arm a one-shot timer that launches the profile at the next occurrence of\nthe given wall-clock time, today or tomorrow. The timer lives in this\nprocess; Ctrl-C cancels it. A target equal to the current time fires\nimmediately.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		store, err := loadStore()
		if err != nil {
			return err
		}
		profile, err := store.Profile(name)
		if err != nil {
			return err
		}

		if scheduleDryRun {
			secs, err := scheduler.ParseTimeOfDay(scheduleAt)
			if err != nil {
				return err
			}
			delay := scheduler.DelayUntil(time.Now(), secs)
			fmt.Fprintf(cmd.OutOrStdout(), "Would fire %q in %s.\n", name, delay)
			return nil
		}

		database, repo, err := openHistory(ctx)
		if err != nil {
			return err
		}
		if database != nil {
			defer database.Close()
		}
		var recorder sequencer.Recorder
		if repo != nil {
			recorder = repo
		}
		seq := newSequencer(recorder)

		settings := store.Settings()
		sched, err := scheduler.New(func(string) {
			run := seq.Start(ctx, sequencer.RunRequest{
				Profile:  profile.Name,
				Items:    profile.Items,
				Settings: settings,
				Announce: true,
			})
			drainRun(cmd.OutOrStdout(), run, "")
			<-run.Done()
		}, nil)
		if err != nil {
			return err
		}

		handle, err := sched.Schedule(name, scheduleAt)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %q in %s (fires at %s).\n",
			name, handle.Task.Delay, handle.Task.FireAt.Format("15:04:05"))

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(interrupt)

		select {
		case <-handle.Fired():
			return nil
		case <-interrupt:
			if err := sched.Cancel(handle.Task.ID); err != nil {
				// Fired between the signal and the cancel; let it finish.
				<-handle.Fired()
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled pending launch of %q.\n", name)
			return nil
		case <-ctx.Done():
			_ = sched.Cancel(handle.Task.ID)
			return ctx.Err()
		}
	},
}
