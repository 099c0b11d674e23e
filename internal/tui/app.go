// Package tui implements the interactive launcher terminal interface.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mirandabohm/Auto-Launcher/internal/config"
	"github.com/mirandabohm/Auto-Launcher/internal/models"
	"github.com/mirandabohm/Auto-Launcher/internal/sequencer"
)

// Config wires the TUI to the launcher services.
type Config struct {
	Store     *config.Store
	Sequencer *sequencer.Sequencer
	Settings  models.Settings
}

// Run launches the TUI program and blocks until it exits.
func Run(cfg Config) error {
	program := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type sessionState int

const (
	statePicking sessionState = iota
	stateRunning
	stateDone
)

const maxStatusLines = 8

type model struct {
	cfg    Config
	styles styles

	state    sessionState
	width    int
	height   int
	profiles []string
	cursor   int

	run      *sequencer.Run
	launched string
	bar      progress.Model
	status   []string
	runErr   error
}

func newModel(cfg Config) model {
	return model{
		cfg:      cfg,
		styles:   defaultStyles(),
		profiles: cfg.Store.Names(),
		bar:      progress.New(progress.WithDefaultGradient()),
	}
}

// Messages delivered by the run's event channel.
type (
	runEventMsg  sequencer.Event
	runClosedMsg struct{}
)

func waitForEvent(events <-chan sequencer.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return runClosedMsg{}
		}
		return runEventMsg(event)
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-4, 60)
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case runEventMsg:
		event := sequencer.Event(msg)
		if event.Err != nil {
			m.runErr = event.Err
			m.status = appendStatus(m.status, fmt.Sprintf("aborted: %v", event.Err))
			return m, waitForEvent(m.run.Events())
		}
		m.status = appendStatus(m.status, event.Outcome.Message())
		done, total := m.run.Progress()
		return m, tea.Batch(
			m.bar.SetPercent(float64(done)/float64(total)),
			waitForEvent(m.run.Events()),
		)

	case runClosedMsg:
		m.state = stateDone
		if err := m.run.Err(); err != nil {
			m.runErr = err
		}
		return m, nil

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.state == statePicking && m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.state == statePicking && m.cursor < len(m.profiles)-1 {
			m.cursor++
		}

	case "enter":
		switch m.state {
		case statePicking:
			return m.startRun()
		case stateDone:
			// Back to the picker for another launch.
			m.state = statePicking
			m.status = nil
			m.runErr = nil
			m.run = nil
			m.bar = progress.New(progress.WithDefaultGradient())
			if m.width > 0 {
				m.bar.Width = min(m.width-4, 60)
			}
		}
	}
	return m, nil
}

func (m model) startRun() (tea.Model, tea.Cmd) {
	if len(m.profiles) == 0 {
		return m, nil
	}

	name := m.profiles[m.cursor]
	profile, err := m.cfg.Store.Profile(name)
	if err != nil {
		m.status = appendStatus(m.status, err.Error())
		return m, nil
	}

	m.run = m.cfg.Sequencer.Start(context.Background(), sequencer.RunRequest{
		Profile:  profile.Name,
		Items:    profile.Items,
		Settings: m.cfg.Settings,
		Announce: true,
	})
	m.launched = name
	m.state = stateRunning
	m.status = nil
	m.runErr = nil

	return m, waitForEvent(m.run.Events())
}

func (m model) View() string {
	switch m.state {
	case statePicking:
		return m.pickerView()
	default:
		return m.runView()
	}
}

func (m model) pickerView() string {
	lines := []string{
		m.styles.title.Render("Auto-Launcher"),
		"",
	}

	if len(m.profiles) == 0 {
		lines = append(lines, m.styles.muted.Render("No profiles defined."))
	}
	for i, name := range m.profiles {
		marker := "  "
		style := m.styles.item
		if i == m.cursor {
			marker = "> "
			style = m.styles.selected
		}
		lines = append(lines, style.Render(marker+name))
	}

	lines = append(lines, "", m.styles.muted.Render("enter launch | j/k move | q quit"))
	return joinLines(lines)
}

func (m model) runView() string {
	header := fmt.Sprintf("Launching %q", m.launched)
	if m.state == stateDone {
		if m.runErr != nil {
			header = fmt.Sprintf("Launch of %q aborted", m.launched)
		} else {
			header = fmt.Sprintf("Launched %q", m.launched)
		}
	}

	done, total := 0, 1
	if m.run != nil {
		done, total = m.run.Progress()
	}

	lines := []string{
		m.styles.title.Render(header),
		"",
		m.bar.View(),
		m.styles.muted.Render(fmt.Sprintf("%d of %d items", done, total)),
		"",
	}

	for _, line := range m.status {
		lines = append(lines, m.styles.item.Render(line))
	}

	if m.state == stateDone {
		lines = append(lines, "", m.styles.muted.Render("enter back | q quit"))
	} else {
		lines = append(lines, "", m.styles.muted.Render("q quit"))
	}
	return joinLines(lines)
}

func appendStatus(status []string, line string) []string {
	status = append(status, line)
	if len(status) > maxStatusLines {
		status = status[len(status)-maxStatusLines:]
	}
	return status
}

func joinLines(lines []string) string {
	out := ""
	for _, line := range lines {
		out += line + "\n"
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
