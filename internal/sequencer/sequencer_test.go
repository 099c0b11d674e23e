package sequencer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mirandabohm/Auto-Launcher/internal/events"
	"github.com/mirandabohm/Auto-Launcher/internal/models"
)

// fakeLauncher records launch calls and returns scripted outcomes.
type fakeLauncher struct {
	mu       sync.Mutex
	launched []string
	failOn   string
}

func (f *fakeLauncher) Launch(ctx context.Context, item models.LaunchItem, avoidDuplicates bool) (models.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn != "" && item.Label == f.failOn {
		return models.Outcome{}, errors.New("spawn exploded")
	}

	f.launched = append(f.launched, item.Label)
	return models.Outcome{Status: models.OutcomeOpened, Label: item.DisplayLabel()}, nil
}

func (f *fakeLauncher) launchedLabels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.launched...)
}

// fakeRecorder captures history writes.
type fakeRecorder struct {
	mu      sync.Mutex
	records []*models.LaunchRecord
	runs    []string
}

func (f *fakeRecorder) Create(ctx context.Context, record *models.LaunchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRecorder) RecordRun(ctx context.Context, profile string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, profile)
	return nil
}

func testItems(labels ...string) []models.LaunchItem {
	items := make([]models.LaunchItem, 0, len(labels))
	for _, label := range labels {
		items = append(items, models.LaunchItem{
			Type:   models.ItemTypeURL,
			Label:  label,
			Target: "https://example.com/" + label,
		})
	}
	return items
}

func tempLog(t *testing.T) *events.Log {
	t.Helper()
	return events.NewLog(filepath.Join(t.TempDir(), "launch.txt"))
}

func readLogLines(t *testing.T, log *events.Log) []string {
	t.Helper()
	data, err := os.ReadFile(log.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read log: %v", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestRunProcessesItemsInOrder(t *testing.T) {
	launcher := &fakeLauncher{}
	recorder := &fakeRecorder{}
	log := tempLog(t)
	seq := New(launcher, log, recorder, clockwork.NewFakeClock())

	run := seq.Start(context.Background(), RunRequest{
		Profile:  "Morning",
		Items:    testItems("mail", "calendar", "notes"),
		Settings: models.Settings{StaggerMS: 0},
		Announce: true,
	})

	var got []Event
	for event := range run.Events() {
		got = append(got, event)
	}
	<-run.Done()

	if err := run.Err(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	for i, event := range got {
		if event.Index != i+1 {
			t.Errorf("event %d: index = %d, want %d", i, event.Index, i+1)
		}
		if event.Total != 3 {
			t.Errorf("event %d: total = %d, want 3", i, event.Total)
		}
	}

	labels := launcher.launchedLabels()
	want := []string{"mail", "calendar", "notes"}
	for i, label := range want {
		if labels[i] != label {
			t.Fatalf("launch order = %v, want %v", labels, want)
		}
	}

	done, total := run.Progress()
	if done != 3 || total != 3 {
		t.Fatalf("progress = %d/%d, want 3/3", done, total)
	}

	// One marker line plus one line per item, in order.
	lines := readLogLines(t, log)
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], events.LaunchMarker+" Morning") {
		t.Fatalf("first line is not the launch marker: %q", lines[0])
	}
	for i, label := range want {
		if !strings.Contains(lines[i+1], "Morning - Opened URL: "+label) {
			t.Fatalf("line %d = %q, want outcome for %s", i+1, lines[i+1], label)
		}
	}

	if len(recorder.runs) != 1 || recorder.runs[0] != "Morning" {
		t.Fatalf("recorded runs = %v, want [Morning]", recorder.runs)
	}
	if len(recorder.records) != 3 {
		t.Fatalf("recorded %d item records, want 3", len(recorder.records))
	}
}

func TestRunProgressTotalNeverZero(t *testing.T) {
	seq := New(&fakeLauncher{}, nil, nil, clockwork.NewFakeClock())

	run := seq.Start(context.Background(), RunRequest{Profile: "Empty"})
	<-run.Done()

	if _, total := run.Progress(); total != 1 {
		t.Fatalf("empty run total = %d, want 1", total)
	}
}

func TestRunStaggerPacesBetweenItems(t *testing.T) {
	clock := clockwork.NewFakeClock()
	launcher := &fakeLauncher{}
	seq := New(launcher, nil, nil, clock)

	run := seq.Start(context.Background(), RunRequest{
		Profile:  "Paced",
		Items:    testItems("one", "two", "three"),
		Settings: models.Settings{StaggerMS: 500},
	})

	// First item launches without any delay.
	first := <-run.Events()
	if first.Index != 1 {
		t.Fatalf("first event index = %d", first.Index)
	}

	// The run now sleeps the stagger before item two.
	clock.BlockUntil(1)
	if got := launcher.launchedLabels(); len(got) != 1 {
		t.Fatalf("launched %v before stagger elapsed", got)
	}
	clock.Advance(500 * time.Millisecond)

	second := <-run.Events()
	if second.Index != 2 {
		t.Fatalf("second event index = %d", second.Index)
	}

	clock.BlockUntil(1)
	clock.Advance(500 * time.Millisecond)

	third := <-run.Events()
	if third.Index != 3 {
		t.Fatalf("third event index = %d", third.Index)
	}

	<-run.Done()
	if err := run.Err(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestBatchSharesOneProgressCounter(t *testing.T) {
	launcher := &fakeLauncher{}
	recorder := &fakeRecorder{}
	seq := New(launcher, tempLog(t), recorder, clockwork.NewFakeClock())

	run := seq.StartBatch(context.Background(), []RunRequest{
		{Profile: "Morning", Items: testItems("a", "b"), Announce: true},
		{Profile: "Evening", Items: testItems("c"), Announce: true},
	})

	var got []Event
	for event := range run.Events() {
		got = append(got, event)
	}
	<-run.Done()

	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	for i, event := range got {
		if event.Index != i+1 || event.Total != 3 {
			t.Fatalf("event %d = %d/%d, want %d/3", i, event.Index, event.Total, i+1)
		}
	}
	if got[0].Profile != "Morning" || got[2].Profile != "Evening" {
		t.Fatalf("profiles out of caller order: %v", got)
	}

	if len(recorder.runs) != 2 {
		t.Fatalf("recorded runs = %v, want both profiles", recorder.runs)
	}
}

func TestRunAbortsOnUnexpectedError(t *testing.T) {
	launcher := &fakeLauncher{failOn: "boom"}
	log := tempLog(t)
	seq := New(launcher, log, nil, clockwork.NewFakeClock())

	run := seq.Start(context.Background(), RunRequest{
		Profile: "Fragile",
		Items:   testItems("ok", "boom", "never"),
	})

	var got []Event
	for event := range run.Events() {
		got = append(got, event)
	}
	<-run.Done()

	if run.Err() == nil {
		t.Fatal("expected run error")
	}
	if len(got) != 2 {
		t.Fatalf("expected success event plus terminal error event, got %d", len(got))
	}
	if got[1].Err == nil {
		t.Fatal("terminal event missing error")
	}

	// The item before the failure keeps its outcome and log line; the
	// failing item and everything after it are not launched.
	if labels := launcher.launchedLabels(); len(labels) != 1 || labels[0] != "ok" {
		t.Fatalf("launched = %v, want [ok]", labels)
	}
	lines := readLogLines(t, log)
	if len(lines) != 1 || !strings.Contains(lines[0], "Fragile - Opened URL: ok") {
		t.Fatalf("log lines = %v", lines)
	}

	done, _ := run.Progress()
	if done != 1 {
		t.Fatalf("progress after abort = %d, want 1", done)
	}
}

func TestConcurrentRunsAreIsolated(t *testing.T) {
	launcher := &fakeLauncher{}
	log := tempLog(t)
	seq := New(launcher, log, nil, clockwork.NewRealClock())

	runs := make([]*Run, 0, 3)
	for i := 0; i < 3; i++ {
		runs = append(runs, seq.Start(context.Background(), RunRequest{
			Profile:  fmt.Sprintf("P%d", i),
			Items:    testItems("x", "y"),
			Settings: models.Settings{StaggerMS: 0},
			Announce: true,
		}))
	}

	for _, run := range runs {
		<-run.Done()
		if err := run.Err(); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if done, total := run.Progress(); done != 2 || total != 2 {
			t.Fatalf("progress = %d/%d, want 2/2", done, total)
		}
	}

	// Appends from all runs land in the shared log: 3 markers + 6 items.
	lines := readLogLines(t, log)
	if len(lines) != 9 {
		t.Fatalf("expected 9 log lines, got %d", len(lines))
	}
}

func TestRunCancelledDuringStagger(t *testing.T) {
	clock := clockwork.NewFakeClock()
	seq := New(&fakeLauncher{}, nil, nil, clock)

	ctx, cancel := context.WithCancel(context.Background())
	run := seq.Start(ctx, RunRequest{
		Profile:  "Cancelled",
		Items:    testItems("one", "two"),
		Settings: models.Settings{StaggerMS: 1000},
	})

	<-run.Events()
	clock.BlockUntil(1)
	cancel()
	<-run.Done()

	if !errors.Is(run.Err(), context.Canceled) {
		t.Fatalf("run error = %v, want context.Canceled", run.Err())
	}
	if done, _ := run.Progress(); done != 1 {
		t.Fatalf("progress = %d, want 1", done)
	}
}
