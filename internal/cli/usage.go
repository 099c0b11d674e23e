package cli

import (
	"fmt"
	"strconv"

	"github.com/mirandabohm/Auto-Launcher/internal/usage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	usageFromDB bool
	usageTop    int
)

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().BoolVar(&usageFromDB, "db", false, "summarize from the sqlite launch history instead of the text log")
	usageCmd.Flags().IntVar(&usageTop, "top", 10, "number of profiles to show with --db")
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize per-profile launch counts",
	Long:  "Scan the launch log for profile launches and report per-profile counts\nand last-used timestamps. With --db, summarize from the sqlite launch\nhistory instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if usageFromDB {
			return usageFromHistory(cmd)
		}

		summary, err := usage.AggregateFile(viper.GetString("log_file"))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), summary.Render())
		return nil
	},
}

func usageFromHistory(cmd *cobra.Command) error {
	ctx := cmd.Context()

	database, repo, err := openHistory(ctx)
	if err != nil {
		return err
	}
	if database == nil {
		return fmt.Errorf("--db conflicts with --no-history")
	}
	defer database.Close()

	usages, err := repo.TopProfiles(ctx, usageTop)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(usages))
	for _, u := range usages {
		last := "-"
		if u.LastUsedAt != nil {
			last = u.LastUsedAt.Local().Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{
			u.Profile,
			strconv.FormatInt(u.LaunchCount, 10),
			strconv.FormatInt(u.ItemCount, 10),
			last,
		})
	}
	return writeTable(cmd.OutOrStdout(), []string{"PROFILE", "LAUNCHES", "ITEMS", "LAST USED"}, rows)
}
