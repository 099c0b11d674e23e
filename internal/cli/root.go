// Package cli implements the autolauncher command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mirandabohm/Auto-Launcher/internal/config"
	"github.com/mirandabohm/Auto-Launcher/internal/db"
	"github.com/mirandabohm/Auto-Launcher/internal/events"
	"github.com/mirandabohm/Auto-Launcher/internal/launcher"
	"github.com/mirandabohm/Auto-Launcher/internal/logging"
	"github.com/mirandabohm/Auto-Launcher/internal/probe"
	"github.com/mirandabohm/Auto-Launcher/internal/sequencer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "AUTOLAUNCHER"

var (
	configPath     string
	launchLogPath  string
	historyDBPath  string
	logLevel       string
	noHistory      bool
	nonInteractive bool
)

var rootCmd = &cobra.Command{
	Use:           "autolauncher",
	Short:         "Open bundles of URLs and applications on demand or on a schedule",
	Long:          "Auto-Launcher opens user-defined bundles of URLs and local applications\n(\"profiles\") on demand or on a schedule, logs each launch, and avoids\nrelaunching an already-running executable.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logging.Options{
			Level:   viper.GetString("log_level"),
			Console: true,
		})
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "profile config file (default launcher_profiles.json)")
	flags.StringVar(&launchLogPath, "log-file", "", "launch log file (default auto_launcher_log.txt)")
	flags.StringVar(&historyDBPath, "db", "", "launch history database (default auto_launcher.db)")
	flags.StringVar(&logLevel, "log-level", "warn", "diagnostic log level (debug, info, warn, error)")
	flags.BoolVar(&noHistory, "no-history", false, "disable sqlite launch history recording")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt; fail instead")

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetDefault("config", config.DefaultConfigFile)
	viper.SetDefault("log_file", events.DefaultLogFile)
	viper.SetDefault("db_file", db.DefaultDBFile)
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("log_file", flags.Lookup("log-file"))
	_ = viper.BindPFlag("db_file", flags.Lookup("db"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadStore loads and validates the profile config. Missing or malformed
// config is fatal to the invoking command.
func loadStore() (*config.Store, error) {
	return config.Load(viper.GetString("config"))
}

// openLaunchLog returns the append-only launch log.
func openLaunchLog() *events.Log {
	return events.NewLog(viper.GetString("log_file"))
}

// openHistory opens the sqlite launch history, or returns nils when
// history recording is disabled.
func openHistory(ctx context.Context) (*db.DB, *db.LaunchRepository, error) {
	if noHistory {
		return nil, nil, nil
	}

	database, err := db.Open(viper.GetString("db_file"))
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}
	return database, db.NewLaunchRepository(database), nil
}

// newSequencer wires the production sequencer: host process probe,
// os/exec spawner, default-browser opener, real clock.
func newSequencer(recorder sequencer.Recorder) *sequencer.Sequencer {
	itemLauncher := launcher.New(nil, nil, probe.NewHostProber())
	return sequencer.New(itemLauncher, openLaunchLog(), recorder, nil)
}
