package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mirandabohm/Auto-Launcher/internal/models"
)

const sampleConfig = `{
  "profiles": {
    "Morning": [
      {"type": "url", "label": "Mail", "target": "https://mail.example.com"},
      {"type": "app", "label": "Editor", "target": "editor.exe"}
    ],
    "Evening": []
  },
  "launch": {"stagger_ms": 250, "avoid_duplicates": true}
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launcher_profiles.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	store, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	names := store.Names()
	if len(names) != 2 || names[0] != "Evening" || names[1] != "Morning" {
		t.Fatalf("Names = %v", names)
	}

	profile, err := store.Profile("Morning")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if len(profile.Items) != 2 {
		t.Fatalf("Morning items = %d, want 2", len(profile.Items))
	}
	// Stored order is launch order.
	if profile.Items[0].Label != "Mail" || profile.Items[1].Label != "Editor" {
		t.Fatalf("item order = %v", profile.Items)
	}

	settings := store.Settings()
	if settings.StaggerMS != 250 || !settings.AvoidDuplicates {
		t.Fatalf("settings = %+v", settings)
	}
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("Load = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadMissingProfilesObjectIsFatal(t *testing.T) {
	_, err := Load(writeConfig(t, `{"launch": {"stagger_ms": 100}}`))
	if !errors.Is(err, ErrMissingProfiles) {
		t.Fatalf("Load = %v, want ErrMissingProfiles", err)
	}
}

func TestLoadMalformedJSONIsFatal(t *testing.T) {
	if _, err := Load(writeConfig(t, `{"profiles": `)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSettingsDefaultWhenOmitted(t *testing.T) {
	store, err := Load(writeConfig(t, `{"profiles": {}}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := store.Settings(), models.DefaultSettings(); got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

func TestMutationsNotifyObservers(t *testing.T) {
	store, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var changes []Change
	store.Subscribe("test", func(change Change) {
		changes = append(changes, change)
	})

	if err := store.AddProfile("Weekend"); err != nil {
		t.Fatalf("AddProfile: %v", err)
	}
	if err := store.AddItem("Weekend", models.LaunchItem{Type: models.ItemTypeURL, Target: "https://example.com"}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := store.RenameProfile("Weekend", "Sunday"); err != nil {
		t.Fatalf("RenameProfile: %v", err)
	}
	if err := store.DeleteProfile("Sunday"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}

	want := []Change{
		{Op: "add", Profile: "Weekend"},
		{Op: "item-add", Profile: "Weekend"},
		{Op: "rename", Profile: "Sunday"},
		{Op: "delete", Profile: "Sunday"},
	}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("change %d = %v, want %v", i, changes[i], want[i])
		}
	}

	store.Unsubscribe("test")
	if err := store.AddProfile("Quiet"); err != nil {
		t.Fatalf("AddProfile: %v", err)
	}
	if len(changes) != len(want) {
		t.Fatal("unsubscribed observer still notified")
	}
}

func TestMutationErrors(t *testing.T) {
	store, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := store.AddProfile("Morning"); !errors.Is(err, ErrProfileExists) {
		t.Errorf("AddProfile existing = %v", err)
	}
	if err := store.DeleteProfile("Nope"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("DeleteProfile missing = %v", err)
	}
	if err := store.RenameProfile("Morning", "Evening"); !errors.Is(err, ErrProfileExists) {
		t.Errorf("RenameProfile collision = %v", err)
	}
	if err := store.RemoveItem("Morning", 5); !errors.Is(err, ErrItemIndex) {
		t.Errorf("RemoveItem out of range = %v", err)
	}
	if _, err := store.Profile("Nope"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Profile missing = %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := store.AddProfile("Weekend"); err != nil {
		t.Fatalf("AddProfile: %v", err)
	}
	if err := store.RemoveItem("Morning", 0); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	store.SetSettings(models.Settings{StaggerMS: 100, AvoidDuplicates: false})
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Names()) != 3 {
		t.Fatalf("Names after reload = %v", reloaded.Names())
	}
	profile, err := reloaded.Profile("Morning")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if len(profile.Items) != 1 || profile.Items[0].Label != "Editor" {
		t.Fatalf("Morning items after reload = %v", profile.Items)
	}
	if settings := reloaded.Settings(); settings.StaggerMS != 100 || settings.AvoidDuplicates {
		t.Fatalf("settings after reload = %+v", settings)
	}
}
