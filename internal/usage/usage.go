// Package usage aggregates launch counts from the plain-text launch log.
package usage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mirandabohm/Auto-Launcher/internal/events"
)

// Summary holds per-profile launch statistics scanned from the log.
type Summary struct {
	// Counts maps profile name to launch count.
	Counts map[string]int

	// LastUsed maps profile name to the timestamp text of its most recent
	// launch line.
	LastUsed map[string]string

	// MostUsed is the profile with the highest count; ties break
	// alphabetically. Empty when the log has no launch lines.
	MostUsed string

	// Total is the sum of all counts.
	Total int
}

// Aggregate scans launch-log lines from r. Only lines containing the
// launch marker are counted; everything else in the log is ignored.
func Aggregate(r io.Reader) (*Summary, error) {
	summary := &Summary{
		Counts:   make(map[string]int),
		LastUsed: make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, events.LaunchMarker)
		if idx < 0 {
			continue
		}

		profile := strings.TrimSpace(line[idx+len(events.LaunchMarker):])
		if profile == "" {
			continue
		}

		summary.Counts[profile]++
		summary.Total++

		// Timestamp is everything before the first " - " separator.
		if ts, _, ok := strings.Cut(line, " - "); ok {
			summary.LastUsed[profile] = strings.TrimSpace(ts)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan launch log: %w", err)
	}

	summary.MostUsed = mostUsed(summary.Counts)
	return summary, nil
}

// AggregateFile scans the launch log at path. A missing log yields an
// empty summary, not an error.
func AggregateFile(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Summary{
				Counts:   make(map[string]int),
				LastUsed: make(map[string]string),
			}, nil
		}
		return nil, fmt.Errorf("open launch log %s: %w", path, err)
	}
	defer f.Close()

	return Aggregate(f)
}

// Profiles returns the counted profile names in sorted order.
func (s *Summary) Profiles() []string {
	names := make([]string, 0, len(s.Counts))
	for name := range s.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render formats the summary as one line per profile, sorted by name.
func (s *Summary) Render() string {
	if s.Total == 0 {
		return "No launches recorded."
	}

	var b strings.Builder
	for _, name := range s.Profiles() {
		last := s.LastUsed[name]
		if last == "" {
			last = "-"
		}
		fmt.Fprintf(&b, "%s: %d launches (last: %s)\n", name, s.Counts[name], last)
	}
	fmt.Fprintf(&b, "Most used: %s. Total launches: %d.\n", s.MostUsed, s.Total)
	return b.String()
}

func mostUsed(counts map[string]int) string {
	best := ""
	bestCount := 0
	for name, count := range counts {
		if count > bestCount || (count == bestCount && (best == "" || name < best)) {
			best = name
			bestCount = count
		}
	}
	return best
}
