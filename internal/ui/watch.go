package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WatchSnapshot is one device state sample shown by WatchModel.
type WatchSnapshot struct {
	Time       time.Time
	Mode       string
	Configured bool
	SSID       string
	WiFiStatus int
	IP         string
}

// NextFunc blocks until the next snapshot arrives or the stream ends.
type NextFunc func() (WatchSnapshot, error)

type snapshotMsg WatchSnapshot

type streamClosedMsg struct{ err error }

// maxWatchHistory bounds the transition log.
const maxWatchHistory = 8

type watchKeyMap struct {
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Quit} }

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Quit}} }

// WatchModel follows a device's event stream: the latest snapshot plus a
// log of mode transitions.
type WatchModel struct {
	target  string
	next    NextFunc
	spinner spinner.Model
	help    help.Model
	keys    watchKeyMap

	latest  *WatchSnapshot
	history []WatchSnapshot
	err     error
	done    bool
	width   int
}

// NewWatchModel creates a watch model for target that pulls from next.
func NewWatchModel(target string, next NextFunc) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)
	return WatchModel{
		target:  target,
		next:    next,
		spinner: s,
		help:    help.New(),
		keys: watchKeyMap{Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		)},
		width: GetTerminalWidth(),
	}
}

// Err returns the error that ended the stream, if any.
func (m WatchModel) Err() error { return m.err }

// History returns the recorded mode transitions, oldest first.
func (m WatchModel) History() []WatchSnapshot { return m.history }

func (m WatchModel) wait() tea.Cmd {
	next := m.next
	return func() tea.Msg {
		snap, err := next()
		if err != nil {
			return streamClosedMsg{err: err}
		}
		return snapshotMsg(snap)
	}
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait())
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width)
	case snapshotMsg:
		snap := WatchSnapshot(msg)
		if m.latest == nil || m.latest.Mode != snap.Mode {
			m.history = append(m.history, snap)
			if len(m.history) > maxWatchHistory {
				m.history = m.history[len(m.history)-maxWatchHistory:]
			}
		}
		m.latest = &snap
		return m, m.wait()
	case streamClosedMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m WatchModel) View() string {
	var b strings.Builder
	b.WriteString(HeaderTitleStyle.Render("WATCHING " + m.target))
	b.WriteString("\n\n")

	if m.latest == nil {
		b.WriteString("  " + m.spinner.View() + " waiting for first event...\n")
	} else {
		s := m.latest
		b.WriteString("  " + ModeBadge(s.Mode) + "\n\n")
		for _, f := range []Field{
			{"Network", orDash(s.SSID)},
			{"WiFi status", fmt.Sprintf("%d", s.WiFiStatus)},
			{"Address", orDash(s.IP)},
			{"Updated", s.Time.Format(time.TimeOnly)},
		} {
			b.WriteString(ResultKeyStyle.Render("  "+f.Key+":") + " " + ResultValueStyle.Render(f.Value) + "\n")
		}
	}

	if len(m.history) > 0 {
		b.WriteString("\n" + TroubleshootingTitleStyle.Render("  Transitions:") + "\n")
		for _, h := range m.history {
			b.WriteString(StepNoteStyle.Render(fmt.Sprintf("    %s  ", h.Time.Format(time.TimeOnly))))
			b.WriteString(lipgloss.NewStyle().Foreground(ModeColor(h.Mode)).Render(h.Mode) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n" + ErrorMessageStyle.Render("  stream closed: "+m.err.Error()) + "\n")
	}
	if !m.done {
		b.WriteString("\n  " + m.help.View(m.keys) + "\n")
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
