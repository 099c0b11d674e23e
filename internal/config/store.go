// Package config owns the launcher profile document and its on-disk JSON form.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mirandabohm/Auto-Launcher/internal/logging"
	"github.com/mirandabohm/Auto-Launcher/internal/models"
	"github.com/rs/zerolog"
)

// Config store errors.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrMissingProfiles = errors.New("missing 'profiles' object in config")
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile not found")
	ErrItemIndex       = errors.New("item index out of range")
)

// DefaultConfigFile is the config filename resolved relative to the
// working directory when no path is given.
const DefaultConfigFile = "launcher_profiles.json"

// document is the on-disk JSON shape.
type document struct {
	Profiles map[string][]models.LaunchItem `json:"profiles"`
	Launch   *models.Settings               `json:"launch,omitempty"`
}

// Observer is notified after every successful mutation of the store.
type Observer func(change Change)

// Change describes a store mutation for observers.
type Change struct {
	// Op is the mutation kind: add, rename, delete, item-add, item-remove,
	// settings.
	Op string

	// Profile is the affected profile name (the new name for renames).
	Profile string
}

// Store is the single owned configuration object shared by all views.
// Mutations go through its methods, which notify registered observers.
type Store struct {
	mu        sync.RWMutex
	path      string
	doc       document
	observers map[string]Observer
	logger    zerolog.Logger
}

// Load reads and validates the config document at path.
// A missing file or a missing profiles object is a fatal startup error.
func Load(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if doc.Profiles == nil {
		return nil, fmt.Errorf("%w (%s)", ErrMissingProfiles, path)
	}

	return &Store{
		path:      path,
		doc:       doc,
		observers: make(map[string]Observer),
		logger:    logging.Component("config"),
	}, nil
}

// Path returns the file the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Settings returns the process-wide launch settings, falling back to
// defaults when the config omits the launch object.
func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc.Launch == nil {
		return models.DefaultSettings()
	}
	settings := *s.doc.Launch
	if settings.StaggerMS < 0 {
		settings.StaggerMS = 0
	}
	return settings
}

// Names returns all profile names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.doc.Profiles))
	for name := range s.doc.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile returns the named profile with its items in stored order.
func (s *Store) Profile(name string) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.doc.Profiles[name]
	if !ok {
		return models.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return models.Profile{Name: name, Items: append([]models.LaunchItem(nil), items...)}, nil
}

// Profiles returns every profile, sorted by name.
func (s *Store) Profiles() []models.Profile {
	names := s.Names()
	profiles := make([]models.Profile, 0, len(names))
	for _, name := range names {
		if p, err := s.Profile(name); err == nil {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

// AddProfile creates a new, empty profile.
func (s *Store) AddProfile(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("profile name is required")
	}

	s.mu.Lock()
	if _, exists := s.doc.Profiles[name]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProfileExists, name)
	}
	s.doc.Profiles[name] = []models.LaunchItem{}
	s.mu.Unlock()

	s.notify(Change{Op: "add", Profile: name})
	return nil
}

// RenameProfile renames a profile, keeping its items.
func (s *Store) RenameProfile(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("new profile name is required")
	}

	s.mu.Lock()
	items, ok := s.doc.Profiles[oldName]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProfileNotFound, oldName)
	}
	if _, exists := s.doc.Profiles[newName]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProfileExists, newName)
	}
	delete(s.doc.Profiles, oldName)
	s.doc.Profiles[newName] = items
	s.mu.Unlock()

	s.notify(Change{Op: "rename", Profile: newName})
	return nil
}

// DeleteProfile removes a profile and its items.
func (s *Store) DeleteProfile(name string) error {
	s.mu.Lock()
	if _, ok := s.doc.Profiles[name]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	delete(s.doc.Profiles, name)
	s.mu.Unlock()

	s.notify(Change{Op: "delete", Profile: name})
	return nil
}

// AddItem appends an item to the named profile.
func (s *Store) AddItem(profile string, item models.LaunchItem) error {
	s.mu.Lock()
	items, ok := s.doc.Profiles[profile]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProfileNotFound, profile)
	}
	s.doc.Profiles[profile] = append(items, item)
	s.mu.Unlock()

	s.notify(Change{Op: "item-add", Profile: profile})
	return nil
}

// RemoveItem deletes the item at index from the named profile.
func (s *Store) RemoveItem(profile string, index int) error {
	s.mu.Lock()
	items, ok := s.doc.Profiles[profile]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProfileNotFound, profile)
	}
	if index < 0 || index >= len(items) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrItemIndex, index)
	}
	s.doc.Profiles[profile] = append(items[:index], items[index+1:]...)
	s.mu.Unlock()

	s.notify(Change{Op: "item-remove", Profile: profile})
	return nil
}

// SetSettings replaces the launch settings object.
func (s *Store) SetSettings(settings models.Settings) {
	s.mu.Lock()
	s.doc.Launch = &settings
	s.mu.Unlock()

	s.notify(Change{Op: "settings"})
}

// Save writes the document back to its source path.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.doc, "", "  ")
	path := s.path
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}

	s.logger.Debug().Str("path", path).Msg("config saved")
	return nil
}

// Subscribe registers an observer under the given key. Registering an
// existing key replaces the previous observer.
func (s *Store) Subscribe(key string, observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers[key] = observer
}

// Unsubscribe removes the observer registered under key.
func (s *Store) Unsubscribe(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.observers, key)
}

func (s *Store) notify(change Change) {
	s.mu.RLock()
	observers := make([]Observer, 0, len(s.observers))
	for _, observer := range s.observers {
		observers = append(observers, observer)
	}
	s.mu.RUnlock()

	for _, observer := range observers {
		observer(change)
	}
}
