package launcher

import (
	"context"
	"os/exec"

	"github.com/pkg/browser"
)

// ExecSpawner starts targets with os/exec, detached from the launcher
// process. No shell is involved; the target is the argv[0] of the child.
type ExecSpawner struct{}

// NewExecSpawner creates the default process spawner.
func NewExecSpawner() *ExecSpawner {
	return &ExecSpawner{}
}

// Spawn starts the target and releases the child so it outlives the
// launcher. The child is never waited on; cancelling ctx does not kill an
// already-started launch.
func (ExecSpawner) Spawn(_ context.Context, target string) error {
	cmd := exec.Command(target)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// BrowserOpener opens URLs with the platform default browser.
type BrowserOpener struct{}

// NewBrowserOpener creates the default URL opener.
func NewBrowserOpener() *BrowserOpener {
	return &BrowserOpener{}
}

// OpenURL hands the URL to the system handler.
func (BrowserOpener) OpenURL(url string) error {
	return browser.OpenURL(url)
}
