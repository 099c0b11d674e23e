// Package cli provides the TUI launch command.
package cli

import (
	"github.com/mirandabohm/Auto-Launcher/internal/sequencer"
	"github.com/mirandabohm/Auto-Launcher/internal/tui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(uiCmd)
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the interactive terminal interface",
	Long:  "Pick a profile and watch its launch progress in a terminal interface.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if IsNonInteractive() {
			return errNoTTY
		}

		store, err := loadStore()
		if err != nil {
			return err
		}

		database, repo, err := openHistory(cmd.Context())
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

		return tui.Run(tui.Config{
			Store:     store,
			Sequencer: newSequencer(recorder),
			Settings:  store.Settings(),
		})
	},
}
