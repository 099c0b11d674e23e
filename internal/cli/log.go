package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	logTailLines int
	logOpen      bool
	logPathOnly  bool
)

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().IntVar(&logTailLines, "lines", 20, "number of trailing lines to print")
	logCmd.Flags().BoolVar(&logOpen, "open", false, "open the log with the platform default viewer")
	logCmd.Flags().BoolVar(&logPathOnly, "path", false, "print the log file path and exit")
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the launch log",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("log_file")

		if logPathOnly {
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}

		if logOpen {
			return browser.OpenFile(path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No log file found.")
				return nil
			}
			return fmt.Errorf("read launch log %s: %w", path, err)
		}

		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if logTailLines > 0 && len(lines) > logTailLines {
			lines = lines[len(lines)-logTailLines:]
		}
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}
