// Package sequencer runs the ordered launch-and-log loop over profile items.
package sequencer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mirandabohm/Auto-Launcher/internal/events"
	"github.com/mirandabohm/Auto-Launcher/internal/logging"
	"github.com/mirandabohm/Auto-Launcher/internal/models"
	"github.com/rs/zerolog"
)

// ItemLauncher performs the platform action for one launch item.
type ItemLauncher interface {
	Launch(ctx context.Context, item models.LaunchItem, avoidDuplicates bool) (models.Outcome, error)
}

// Recorder persists launch outcomes. Optional; a nil Recorder disables
// history recording.
type Recorder interface {
	Create(ctx context.Context, record *models.LaunchRecord) error
	RecordRun(ctx context.Context, profile string) error
}

// RunRequest names one ordered item list to launch.
type RunRequest struct {
	// Profile is the name recorded in log lines for this request.
	Profile string

	// Items are launched strictly in order.
	Items []models.LaunchItem

	// Settings are the process-wide launch settings for this run.
	Settings models.Settings

	// Announce controls whether the run writes the per-run
	// "Launching profile:" marker line. Manual item selections leave
	// this false so they are not counted as profile launches.
	Announce bool
}

// Event reports one processed item on a run's event channel.
type Event struct {
	// RunID identifies the emitting run.
	RunID string

	// Profile is the request the item belonged to.
	Profile string

	// Index is the 1-based position within the run's progress total.
	Index int

	// Total is the run's progress maximum.
	Total int

	// Outcome is the item's launch result. Zero when Err is set.
	Outcome models.Outcome

	// Err is set on the terminal event of an aborted run.
	Err error
}

// Run is one in-flight execution of the launch loop. Each run owns its
// event channel and progress counter; concurrent runs share nothing.
type Run struct {
	// ID is the generated run identifier.
	ID string

	total  int
	done   atomic.Int64
	events chan Event
	donech chan struct{}
	err    atomic.Value // error
}

// Events returns the run's event channel. It is closed when the run ends.
// The channel is buffered for the whole run, so a consumer that drains it
// sees every event in order.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Done is closed when the run has finished or aborted.
func (r *Run) Done() <-chan struct{} {
	return r.donech
}

// Err returns the terminal error of an aborted run, nil otherwise.
// Valid after Done is closed.
func (r *Run) Err() error {
	if v := r.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Progress returns processed and total item counts. The total is at least
// one, so a progress display never has a zero maximum.
func (r *Run) Progress() (done, total int) {
	return int(r.done.Load()), r.total
}

// Sequencer launches item lists in order with a fixed stagger between
// consecutive launches, one goroutine per run.
type Sequencer struct {
	launcher ItemLauncher
	log      *events.Log
	recorder Recorder
	clock    clockwork.Clock
	logger   zerolog.Logger
}

// New creates a Sequencer. A nil clock selects the real clock; a nil
// recorder disables history recording.
func New(itemLauncher ItemLauncher, launchLog *events.Log, recorder Recorder, clock clockwork.Clock) *Sequencer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sequencer{
		launcher: itemLauncher,
		log:      launchLog,
		recorder: recorder,
		clock:    clock,
		logger:   logging.Component("sequencer"),
	}
}

// Start launches one request on its own goroutine and returns immediately.
func (s *Sequencer) Start(ctx context.Context, req RunRequest) *Run {
	return s.StartBatch(ctx, []RunRequest{req})
}

// StartBatch launches several requests back to back as a single run, in
// caller order, with one progress counter spanning all items.
func (s *Sequencer) StartBatch(ctx context.Context, reqs []RunRequest) *Run {
	total := 0
	for _, req := range reqs {
		total += len(req.Items)
	}
	if total < 1 {
		total = 1
	}

	run := &Run{
		ID:     uuid.New().String(),
		total:  total,
		events: make(chan Event, total+1),
		donech: make(chan struct{}),
	}

	go s.execute(ctx, run, reqs)
	return run
}

func (s *Sequencer) execute(ctx context.Context, run *Run, reqs []RunRequest) {
	defer close(run.donech)
	defer close(run.events)

	logger := s.logger.With().Str("run_id", run.ID).Logger()

	index := 0
	for _, req := range reqs {
		if req.Announce {
			s.announce(ctx, req.Profile)
		}

		for _, item := range req.Items {
			outcome, err := s.launcher.Launch(ctx, item, req.Settings.AvoidDuplicates)
			if err != nil {
				// Unexpected launch failure aborts the remainder of this
				// run; prior outcomes and log lines stand.
				run.err.Store(err)
				logger.Error().Err(err).Str("profile", req.Profile).
					Str("label", item.DisplayLabel()).Msg("run aborted")
				s.emit(run, Event{
					RunID:   run.ID,
					Profile: req.Profile,
					Index:   index,
					Total:   run.total,
					Err:     err,
				})
				return
			}

			index++
			s.record(ctx, req.Profile, item, outcome)
			s.emit(run, Event{
				RunID:   run.ID,
				Profile: req.Profile,
				Index:   index,
				Total:   run.total,
				Outcome: outcome,
			})
			run.done.Add(1)

			logger.Debug().Str("profile", req.Profile).
				Str("status", string(outcome.Status)).
				Int("index", index).Int("total", run.total).
				Msg(outcome.Message())

			if index < run.total {
				if !s.stagger(ctx, run, req.Settings.Stagger()) {
					return
				}
			}
		}
	}
}

// announce writes the per-run marker line and history row for a profile.
func (s *Sequencer) announce(ctx context.Context, profile string) {
	if s.log != nil {
		if err := s.log.AppendLaunch(profile); err != nil {
			s.logger.Warn().Err(err).Msg("launch log append failed")
		}
	}
	if s.recorder != nil {
		if err := s.recorder.RecordRun(ctx, profile); err != nil {
			s.logger.Warn().Err(err).Msg("history record failed")
		}
	}
}

// record writes the per-item log line and history row.
func (s *Sequencer) record(ctx context.Context, profile string, item models.LaunchItem, outcome models.Outcome) {
	if s.log != nil {
		if err := s.log.AppendOutcome(profile, outcome.Message()); err != nil {
			s.logger.Warn().Err(err).Msg("launch log append failed")
		}
	}
	if s.recorder != nil {
		err := s.recorder.Create(ctx, &models.LaunchRecord{
			Profile:   profile,
			ItemType:  item.Type,
			ItemLabel: item.DisplayLabel(),
			Status:    outcome.Status,
			Message:   outcome.Message(),
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("history record failed")
		}
	}
}

// stagger pauses between consecutive launches. Returns false when the run
// context was cancelled during the pause.
func (s *Sequencer) stagger(ctx context.Context, run *Run, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		run.err.Store(ctx.Err())
		return false
	case <-s.clock.After(delay):
		return true
	}
}

// emit delivers an event without ever blocking the run. The channel is
// sized for the whole run, so nothing is dropped whether or not a
// consumer is draining; Progress is tracked independently either way.
func (s *Sequencer) emit(run *Run, event Event) {
	select {
	case run.events <- event:
	default:
	}
}
