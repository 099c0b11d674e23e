package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/mirandabohm/Auto-Launcher/internal/config"
	"github.com/mirandabohm/Auto-Launcher/internal/models"
	"github.com/mirandabohm/Auto-Launcher/internal/sequencer"
	"github.com/spf13/cobra"
)

var (
	launchAll       bool
	launchItems     string
	launchStaggerMS int
)

func init() {
	rootCmd.AddCommand(launchCmd)

	launchCmd.Flags().BoolVar(&launchAll, "all", false, "launch every profile, each as an independent run")
	launchCmd.Flags().StringVar(&launchItems, "items", "", "launch only these 1-based item indexes (e.g. 1,3)")
	launchCmd.Flags().IntVar(&launchStaggerMS, "stagger-ms", -1, "override the configured stagger delay")
}

var launchCmd = &cobra.Command{
	Use:   "launch [profile]",
	Short: "Launch a profile's items in order",
	Long:  "Launch the named profile's items in stored order, pacing launches by the\nconfigured stagger delay and logging one line per item.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := loadStore()
		if err != nil {
			return err
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
		if launchStaggerMS >= 0 {
			settings.StaggerMS = launchStaggerMS
		}

		if launchAll {
			return launchEverything(cmd, store, seq, settings)
		}

		if len(args) == 0 {
			return fmt.Errorf("profile name required (or --all); known profiles: %s",
				strings.Join(store.Names(), ", "))
		}

		profile, err := store.Profile(args[0])
		if err != nil {
			return err
		}

		req := sequencer.RunRequest{
			Profile:  profile.Name,
			Items:    profile.Items,
			Settings: settings,
			Announce: true,
		}
		if launchItems != "" {
			req, err = selectItems(profile, launchItems, settings)
			if err != nil {
				return err
			}
		}

		run := seq.Start(ctx, req)
		drainRun(cmd.OutOrStdout(), run, "")
		<-run.Done()
		return run.Err()
	},
}

// launchEverything starts one independent run per profile, each with its
// own progress counter, and waits for all of them.
func launchEverything(cmd *cobra.Command, store *config.Store, seq *sequencer.Sequencer, settings models.Settings) error {
	profiles := store.Profiles()
	if len(profiles) == 0 {
		return fmt.Errorf("no profiles defined in %s", store.Path())
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, profile := range profiles {
		run := seq.Start(cmd.Context(), sequencer.RunRequest{
			Profile:  profile.Name,
			Items:    profile.Items,
			Settings: settings,
			Announce: true,
		})

		wg.Add(1)
		go func(name string, run *sequencer.Run) {
			defer wg.Done()
			drainRun(cmd.OutOrStdout(), run, name+": ")
			<-run.Done()
			if err := run.Err(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(profile.Name, run)
	}

	wg.Wait()
	return firstErr
}

// selectItems builds a manual run over a subset of a profile's items.
// Manual runs log under the name "Manual" and are not counted as profile
// launches by the usage aggregator.
func selectItems(profile models.Profile, spec string, settings models.Settings) (sequencer.RunRequest, error) {
	var items []models.LaunchItem
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		index, err := strconv.Atoi(field)
		if err != nil || index < 1 || index > len(profile.Items) {
			return sequencer.RunRequest{}, fmt.Errorf("invalid item index %q (profile %s has %d items)",
				field, profile.Name, len(profile.Items))
		}
		items = append(items, profile.Items[index-1])
	}
	if len(items) == 0 {
		return sequencer.RunRequest{}, fmt.Errorf("no items selected")
	}

	return sequencer.RunRequest{
		Profile:  "Manual",
		Items:    items,
		Settings: settings,
	}, nil
}

// drainRun prints one status line per event until the run's channel closes.
func drainRun(out io.Writer, run *sequencer.Run, prefix string) {
	for event := range run.Events() {
		if event.Err != nil {
			fmt.Fprintf(os.Stderr, "%slaunch aborted: %v\n", prefix, event.Err)
			continue
		}
		fmt.Fprintf(out, "%s[%d/%d] %s\n", prefix, event.Index, event.Total, event.Outcome.Message())
	}
}
