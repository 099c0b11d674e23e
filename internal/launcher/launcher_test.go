package launcher

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/mirandabohm/Auto-Launcher/internal/models"
	"github.com/stretchr/testify/require"
)

type spySpawner struct {
	spawned []string
	err     error
}

func (s *spySpawner) Spawn(ctx context.Context, target string) error {
	if s.err != nil {
		return s.err
	}
	s.spawned = append(s.spawned, target)
	return nil
}

type spyOpener struct {
	opened []string
	err    error
}

func (o *spyOpener) OpenURL(url string) error {
	if o.err != nil {
		return o.err
	}
	o.opened = append(o.opened, url)
	return nil
}

type stubProber struct {
	running map[string]bool
	asked   []string
}

func (p *stubProber) IsRunning(ctx context.Context, name string) bool {
	p.asked = append(p.asked, name)
	return p.running[name]
}

func TestLaunchURLNeverSpawns(t *testing.T) {
	spawner := &spySpawner{}
	opener := &spyOpener{}
	l := New(spawner, opener, &stubProber{})

	outcome, err := l.Launch(context.Background(), models.LaunchItem{
		Type:   models.ItemTypeURL,
		Label:  "Docs",
		Target: "https://example.com/docs",
	}, true)

	require.NoError(t, err)
	require.Equal(t, models.OutcomeOpened, outcome.Status)
	require.Equal(t, "Opened URL: Docs", outcome.Message())
	require.Equal(t, []string{"https://example.com/docs"}, opener.opened)
	require.Empty(t, spawner.spawned)
}

func TestLaunchURLOpenerFailureIsRecoverable(t *testing.T) {
	opener := &spyOpener{err: errors.New("no browser registered")}
	l := New(&spySpawner{}, opener, &stubProber{})

	outcome, err := l.Launch(context.Background(), models.LaunchItem{
		Type:   models.ItemTypeURL,
		Label:  "Docs",
		Target: "https://example.com",
	}, false)

	require.NoError(t, err)
	require.Equal(t, models.OutcomeFailed, outcome.Status)
	require.Contains(t, outcome.Message(), "Failed to launch Docs")
	require.Contains(t, outcome.Message(), "no browser registered")
}

func TestLaunchAppSuppressesDuplicate(t *testing.T) {
	spawner := &spySpawner{}
	prober := &stubProber{running: map[string]bool{"notepad.exe": true}}
	l := New(spawner, &spyOpener{}, prober)

	outcome, err := l.Launch(context.Background(), models.LaunchItem{
		Type:   models.ItemTypeApp,
		Label:  "Notepad",
		Target: "Notepad.EXE",
	}, true)

	require.NoError(t, err)
	require.Equal(t, models.OutcomeAlreadyRunning, outcome.Status)
	require.Equal(t, "Already running: Notepad", outcome.Message())
	require.Empty(t, spawner.spawned, "suppressed launch must not spawn")
	require.Equal(t, []string{"notepad.exe"}, prober.asked)
}

func TestLaunchAppSpawnsWhenNotRunning(t *testing.T) {
	spawner := &spySpawner{}
	prober := &stubProber{}
	l := New(spawner, &spyOpener{}, prober)

	outcome, err := l.Launch(context.Background(), models.LaunchItem{
		Type:   models.ItemTypeApp,
		Label:  "Notepad",
		Target: "notepad.exe",
	}, true)

	require.NoError(t, err)
	require.Equal(t, models.OutcomeLaunched, outcome.Status)
	require.Equal(t, "Launched app: Notepad", outcome.Message())
	require.Equal(t, []string{"notepad.exe"}, spawner.spawned)
}

func TestLaunchAppSkipsProbeWithoutExecutableSuffix(t *testing.T) {
	spawner := &spySpawner{}
	prober := &stubProber{running: map[string]bool{"firefox": true}}
	l := New(spawner, &spyOpener{}, prober)

	outcome, err := l.Launch(context.Background(), models.LaunchItem{
		Type:   models.ItemTypeApp,
		Label:  "Firefox",
		Target: "/usr/bin/firefox",
	}, true)

	require.NoError(t, err)
	require.Equal(t, models.OutcomeLaunched, outcome.Status)
	require.Empty(t, prober.asked, "suffix-less targets are not probed")
}

func TestLaunchAppDuplicatesAllowedWhenDisabled(t *testing.T) {
	spawner := &spySpawner{}
	prober := &stubProber{running: map[string]bool{"notepad.exe": true}}
	l := New(spawner, &spyOpener{}, prober)

	outcome, err := l.Launch(context.Background(), models.LaunchItem{
		Type:   models.ItemTypeApp,
		Target: "notepad.exe",
	}, false)

	require.NoError(t, err)
	require.Equal(t, models.OutcomeLaunched, outcome.Status)
	require.Empty(t, prober.asked)
}

func TestLaunchAppNotFound(t *testing.T) {
	spawner := &spySpawner{err: fs.ErrNotExist}
	l := New(spawner, &spyOpener{}, &stubProber{})

	outcome, err := l.Launch(context.Background(), models.LaunchItem{
		Type:   models.ItemTypeApp,
		Label:  "Ghost",
		Target: "/opt/ghost/bin/ghost.exe",
	}, false)

	require.NoError(t, err)
	require.Equal(t, models.OutcomeNotFound, outcome.Status)
	require.Equal(t, "Not found: Ghost (/opt/ghost/bin/ghost.exe)", outcome.Message())
}

func TestLaunchAppUnexpectedErrorPropagates(t *testing.T) {
	spawner := &spySpawner{err: errors.New("fork bomb detected")}
	l := New(spawner, &spyOpener{}, &stubProber{})

	_, err := l.Launch(context.Background(), models.LaunchItem{
		Type:   models.ItemTypeApp,
		Label:  "Weird",
		Target: "weird.exe",
	}, false)

	require.Error(t, err)
	require.Contains(t, err.Error(), "fork bomb detected")
}

func TestLaunchUnknownTypeHasNoSideEffects(t *testing.T) {
	spawner := &spySpawner{}
	opener := &spyOpener{}
	prober := &stubProber{}
	l := New(spawner, opener, prober)

	outcome, err := l.Launch(context.Background(), models.LaunchItem{
		Type:   "script",
		Label:  "Mystery",
		Target: "mystery.sh",
	}, true)

	require.NoError(t, err)
	require.Equal(t, models.OutcomeUnknownType, outcome.Status)
	require.Equal(t, "Unknown item type: script", outcome.Message())
	require.Empty(t, spawner.spawned)
	require.Empty(t, opener.opened)
	require.Empty(t, prober.asked)
}

func TestLaunchLabelFallsBackToTarget(t *testing.T) {
	opener := &spyOpener{}
	l := New(&spySpawner{}, opener, &stubProber{})

	outcome, err := l.Launch(context.Background(), models.LaunchItem{
		Type:   models.ItemTypeURL,
		Target: "https://example.com",
	}, false)

	require.NoError(t, err)
	require.Equal(t, "Opened URL: https://example.com", outcome.Message())
}
