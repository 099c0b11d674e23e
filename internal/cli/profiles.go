package cli

import (
	"fmt"
	"strconv"

	"github.com/mirandabohm/Auto-Launcher/internal/config"
	"github.com/mirandabohm/Auto-Launcher/internal/logging"
	"github.com/mirandabohm/Auto-Launcher/internal/models"
	"github.com/spf13/cobra"
)

var (
	itemAddType   string
	itemAddLabel  string
	itemAddTarget string

	settingsStaggerMS       int
	settingsAvoidDuplicates string
)

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesAddCmd)
	profilesCmd.AddCommand(profilesRenameCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)
	profilesCmd.AddCommand(profilesAddItemCmd)
	profilesCmd.AddCommand(profilesRemoveItemCmd)
	profilesCmd.AddCommand(profilesSettingsCmd)

	profilesAddItemCmd.Flags().StringVar(&itemAddType, "type", "url", "item type (url or app)")
	profilesAddItemCmd.Flags().StringVar(&itemAddLabel, "label", "", "display label (defaults to the target)")
	profilesAddItemCmd.Flags().StringVar(&itemAddTarget, "target", "", "URL or executable path")
	_ = profilesAddItemCmd.MarkFlagRequired("target")

	profilesSettingsCmd.Flags().IntVar(&settingsStaggerMS, "stagger-ms", -1, "set the inter-item stagger delay")
	profilesSettingsCmd.Flags().StringVar(&settingsAvoidDuplicates, "avoid-duplicates", "", "set duplicate suppression (true or false)")
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage launch profiles",
	Long:  "List and edit the named launch profiles in the config file. Edits are\nsaved back to the file and visible to every observer of the store.",
}

// openMutableStore loads the store with a change-logging observer
// attached, so every mutation is visible in diagnostics.
func openMutableStore() (*config.Store, error) {
	store, err := loadStore()
	if err != nil {
		return nil, err
	}
	logger := logging.Component("profiles")
	store.Subscribe("cli", func(change config.Change) {
		logger.Debug().Str("op", change.Op).Str("profile", change.Profile).Msg("config changed")
	})
	return store, nil
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles and their item counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore()
		if err != nil {
			return err
		}

		rows := make([][]string, 0)
		for _, profile := range store.Profiles() {
			rows = append(rows, []string{profile.Name, strconv.Itoa(len(profile.Items))})
		}
		return writeTable(cmd.OutOrStdout(), []string{"PROFILE", "ITEMS"}, rows)
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <profile>",
	Short: "Show a profile's items in launch order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore()
		if err != nil {
			return err
		}
		profile, err := store.Profile(args[0])
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(profile.Items))
		for i, item := range profile.Items {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				string(item.Type),
				item.DisplayLabel(),
				item.Target,
			})
		}
		return writeTable(cmd.OutOrStdout(), []string{"#", "TYPE", "LABEL", "TARGET"}, rows)
	},
}

var profilesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new, empty profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMutableStore()
		if err != nil {
			return err
		}
		if err := store.AddProfile(args[0]); err != nil {
			return err
		}
		return store.Save()
	},
}

var profilesRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a profile, keeping its items",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMutableStore()
		if err != nil {
			return err
		}
		if err := store.RenameProfile(args[0], args[1]); err != nil {
			return err
		}
		return store.Save()
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile and its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMutableStore()
		if err != nil {
			return err
		}
		if err := confirm(cmd, fmt.Sprintf("Delete profile %q?", args[0])); err != nil {
			return err
		}
		if err := store.DeleteProfile(args[0]); err != nil {
			return err
		}
		return store.Save()
	},
}

var profilesAddItemCmd = &cobra.Command{
	Use:   "add-item <profile>",
	Short: "Append a launch item to a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMutableStore()
		if err != nil {
			return err
		}

		itemType := models.ItemType(itemAddType)
		if itemType != models.ItemTypeURL && itemType != models.ItemTypeApp {
			return fmt.Errorf("unsupported item type %q (want url or app)", itemAddType)
		}

		item := models.LaunchItem{Type: itemType, Label: itemAddLabel, Target: itemAddTarget}
		if err := store.AddItem(args[0], item); err != nil {
			return err
		}
		return store.Save()
	},
}

var profilesRemoveItemCmd = &cobra.Command{
	Use:   "remove-item <profile> <index>",
	Short: "Remove the item at a 1-based index from a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMutableStore()
		if err != nil {
			return err
		}

		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid item index %q", args[1])
		}
		if err := store.RemoveItem(args[0], index-1); err != nil {
			return err
		}
		return store.Save()
	},
}

var profilesSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the global launch settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMutableStore()
		if err != nil {
			return err
		}

		settings := store.Settings()
		changed := false
		if settingsStaggerMS >= 0 {
			settings.StaggerMS = settingsStaggerMS
			changed = true
		}
		if settingsAvoidDuplicates != "" {
			value, err := strconv.ParseBool(settingsAvoidDuplicates)
			if err != nil {
				return fmt.Errorf("invalid --avoid-duplicates value %q", settingsAvoidDuplicates)
			}
			settings.AvoidDuplicates = value
			changed = true
		}

		if changed {
			store.SetSettings(settings)
			if err := store.Save(); err != nil {
				return err
			}
		}

		return writeTable(cmd.OutOrStdout(), []string{"SETTING", "VALUE"}, [][]string{
			{"stagger_ms", strconv.Itoa(settings.StaggerMS)},
			{"avoid_duplicates", formatYesNo(settings.AvoidDuplicates)},
		})
	},
}
