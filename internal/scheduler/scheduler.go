// Package scheduler arms one-shot launch timers for wall-clock times of day.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mirandabohm/Auto-Launcher/internal/logging"
	"github.com/mirandabohm/Auto-Launcher/internal/models"
	"github.com/rs/zerolog"
)

// Scheduler errors.
var (
	ErrInvalidTime  = errors.New("invalid time of day")
	ErrTaskNotFound = errors.New("scheduled task not found")
	ErrNilFireFunc  = errors.New("fire function is required")
)

const secondsPerDay = 24 * 60 * 60

// FireFunc is invoked exactly once when an armed timer expires.
type FireFunc func(profile string)

// Handle is the caller's view of one armed task.
type Handle struct {
	// Task describes the armed timer.
	Task models.ScheduledTask

	fired chan struct{}
}

// Fired is closed after the task's fire function has returned.
// It never closes for a cancelled task.
func (h *Handle) Fired() <-chan struct{} {
	return h.fired
}

// Scheduler holds the registry of armed one-shot launch timers. Tasks are
// independent: arming a new one never cancels a pending one, and nothing
// survives process exit.
type Scheduler struct {
	fire   FireFunc
	clock  clockwork.Clock
	logger zerolog.Logger

	mu    sync.Mutex
	tasks map[string]*armedTask
	wg    sync.WaitGroup
}

type armedTask struct {
	handle *Handle
	cancel chan struct{}
}

// New creates a Scheduler. A nil clock selects the real clock.
func New(fire FireFunc, clock clockwork.Clock) (*Scheduler, error) {
	if fire == nil {
		return nil, ErrNilFireFunc
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		fire:   fire,
		clock:  clock,
		logger: logging.Component("scheduler"),
		tasks:  make(map[string]*armedTask),
	}, nil
}

// Schedule arms a timer that fires the profile at the next occurrence of
// timeOfDay. A target equal to the current time fires immediately rather
// than wrapping a full day.
func (s *Scheduler) Schedule(profile, timeOfDay string) (*Handle, error) {
	targetSecs, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	delay := DelayUntil(now, targetSecs)

	handle := &Handle{
		Task: models.ScheduledTask{
			ID:      uuid.New().String(),
			Profile: profile,
			FireAt:  now.Add(delay),
			Delay:   delay,
		},
		fired: make(chan struct{}),
	}
	task := &armedTask{handle: handle, cancel: make(chan struct{})}

	s.mu.Lock()
	s.tasks[handle.Task.ID] = task
	s.mu.Unlock()

	s.logger.Info().
		Str("task_id", handle.Task.ID).
		Str("profile", profile).
		Dur("delay", delay).
		Time("fire_at", handle.Task.FireAt).
		Msg("schedule armed")

	s.wg.Add(1)
	go s.wait(task, delay)

	return handle, nil
}

// Cancel disarms a pending task. Firing and cancellation race; a task
// that already fired reports not found.
func (s *Scheduler) Cancel(id string) error {
	s.mu.Lock()
	task, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	close(task.cancel)
	s.logger.Info().Str("task_id", id).Str("profile", task.handle.Task.Profile).Msg("schedule cancelled")
	return nil
}

// List returns all pending tasks ordered by fire time.
func (s *Scheduler) List() []models.ScheduledTask {
	s.mu.Lock()
	tasks := make([]models.ScheduledTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task.handle.Task)
	}
	s.mu.Unlock()

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].FireAt.Equal(tasks[j].FireAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].FireAt.Before(tasks[j].FireAt)
	})
	return tasks
}

// Wait blocks until every armed timer has fired or been cancelled.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) wait(task *armedTask, delay time.Duration) {
	defer s.wg.Done()

	select {
	case <-task.cancel:
		return
	case <-s.clock.After(delay):
	}

	id := task.handle.Task.ID

	s.mu.Lock()
	_, pending := s.tasks[id]
	delete(s.tasks, id)
	s.mu.Unlock()

	// Lost the race against Cancel.
	if !pending {
		return
	}

	profile := task.handle.Task.Profile
	s.logger.Info().Str("task_id", id).Str("profile", profile).Msg("schedule firing")
	s.fire(profile)
	close(task.handle.fired)
}

// ParseTimeOfDay parses a 12-hour ("5:45pm") or 24-hour ("08:30") time
// string into seconds since midnight.
func ParseTimeOfDay(value string) (int, error) {
	s := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "")

	meridiem := ""
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		meridiem, s = s[len(s)-2:], s[:len(s)-2]
	}

	hourStr, minuteStr, ok := strings.Cut(s, ":")
	if !ok || strings.Contains(minuteStr, ":") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}

	switch meridiem {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}

	return hour*3600 + minute*60, nil
}

// DelayUntil computes the wait from now until the target seconds-since-
// midnight, wrapping past midnight when the target has already passed
// today. A result of zero means fire immediately, not in 24 hours.
func DelayUntil(now time.Time, targetSecs int) time.Duration {
	nowSecs := now.Hour()*3600 + now.Minute()*60 + now.Second()
	delta := (targetSecs - nowSecs) % secondsPerDay
	if delta < 0 {
		delta += secondsPerDay
	}
	return time.Duration(delta) * time.Second
}
