// Package launcher performs the platform action for a single launch item.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mirandabohm/Auto-Launcher/internal/logging"
	"github.com/mirandabohm/Auto-Launcher/internal/models"
	"github.com/mirandabohm/Auto-Launcher/internal/probe"
	"github.com/rs/zerolog"
)

// Spawner starts the target as a new process with no shell interpretation.
// The spawned process is not waited on.
type Spawner interface {
	Spawn(ctx context.Context, target string) error
}

// URLOpener opens a URL in the system's default handler.
type URLOpener interface {
	OpenURL(url string) error
}

// executableSuffixes are the filename suffixes that mark a target as a
// probe-able executable for duplicate suppression.
var executableSuffixes = []string{".exe", ".bat", ".cmd", ".com"}

// Launcher dispatches a launch item to the matching OS action.
type Launcher struct {
	spawner Spawner
	opener  URLOpener
	prober  probe.Prober
	logger  zerolog.Logger
}

// New creates a Launcher over the given ports. Nil spawner or opener
// select the OS-backed defaults.
func New(spawner Spawner, opener URLOpener, prober probe.Prober) *Launcher {
	if spawner == nil {
		spawner = NewExecSpawner()
	}
	if opener == nil {
		opener = NewBrowserOpener()
	}
	return &Launcher{
		spawner: spawner,
		opener:  opener,
		prober:  prober,
		logger:  logging.Component("launcher"),
	}
}

// Launch performs at most one process spawn or one URL-open for the item
// and returns its outcome. The error return is reserved for unexpected
// spawn failures; anticipated failures (target not found, opener errors)
// come back as recoverable outcomes.
func (l *Launcher) Launch(ctx context.Context, item models.LaunchItem, avoidDuplicates bool) (models.Outcome, error) {
	label := item.DisplayLabel()

	switch item.Type {
	case models.ItemTypeURL:
		return l.launchURL(item, label), nil

	case models.ItemTypeApp:
		return l.launchApp(ctx, item, label, avoidDuplicates)

	default:
		l.logger.Debug().Str("type", string(item.Type)).Str("label", label).Msg("unknown item type")
		return models.Outcome{
			Status: models.OutcomeUnknownType,
			Label:  label,
			Detail: string(item.Type),
		}, nil
	}
}

func (l *Launcher) launchURL(item models.LaunchItem, label string) models.Outcome {
	if err := l.opener.OpenURL(item.Target); err != nil {
		l.logger.Warn().Err(err).Str("url", item.Target).Msg("url open failed")
		return models.Outcome{
			Status: models.OutcomeFailed,
			Label:  label,
			Detail: err.Error(),
		}
	}

	l.logger.Debug().Str("url", item.Target).Msg("url opened")
	return models.Outcome{Status: models.OutcomeOpened, Label: label}
}

func (l *Launcher) launchApp(ctx context.Context, item models.LaunchItem, label string, avoidDuplicates bool) (models.Outcome, error) {
	exeName := strings.ToLower(filepath.Base(item.Target))

	if avoidDuplicates && isExecutableName(exeName) && l.prober != nil && l.prober.IsRunning(ctx, exeName) {
		l.logger.Debug().Str("exe", exeName).Msg("duplicate launch suppressed")
		return models.Outcome{Status: models.OutcomeAlreadyRunning, Label: label}, nil
	}

	if err := l.spawner.Spawn(ctx, item.Target); err != nil {
		if isNotFound(err) {
			l.logger.Debug().Str("target", item.Target).Msg("target not found")
			return models.Outcome{
				Status: models.OutcomeNotFound,
				Label:  label,
				Detail: item.Target,
			}, nil
		}
		return models.Outcome{}, fmt.Errorf("spawn %s: %w", item.Target, err)
	}

	l.logger.Debug().Str("target", item.Target).Msg("app launched")
	return models.Outcome{Status: models.OutcomeLaunched, Label: label}, nil
}

func isExecutableName(name string) bool {
	for _, suffix := range executableSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound)
}
