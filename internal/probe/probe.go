// Package probe answers whether a process with a given name is running.
package probe

import (
	"context"
	"strings"

	"github.com/mirandabohm/Auto-Launcher/internal/logging"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"
)

// Prober reports whether a process by executable name is currently running.
// Implementations must degrade to "assume not running" on enumeration
// failure rather than surface an error.
type Prober interface {
	IsRunning(ctx context.Context, name string) bool
}

// HostProber enumerates host processes via gopsutil.
type HostProber struct {
	logger zerolog.Logger
}

// NewHostProber creates a prober for the local host.
func NewHostProber() *HostProber {
	return &HostProber{logger: logging.Component("probe")}
}

// IsRunning compares name case-insensitively against every host process
// name. Processes that vanish or are inaccessible during enumeration are
// skipped. Returns false when enumeration itself is unavailable.
func (p *HostProber) IsRunning(ctx context.Context, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		p.logger.Debug().Err(err).Msg("process enumeration unavailable")
		return false
	}

	for _, proc := range procs {
		procName, err := proc.NameWithContext(ctx)
		if err != nil {
			// Vanished or inaccessible, skip.
			continue
		}
		if strings.ToLower(procName) == name {
			return true
		}
	}
	return false
}
