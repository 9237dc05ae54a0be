package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/tempo/internal/models"
)

// SessionPoller fetches the most recent session from the daemon.
// Returns nil when no session exists.
type SessionPoller func() (*models.Session, error)

// WatchModel is the TUI model for the live session view. It polls the
// daemon once a second and renders the current session, if any.
type WatchModel struct {
	width  int
	height int

	poll    SessionPoller
	session *models.Session
	pollErr error

	loading bool
	spin    spinner.Model
}

// pollTickMsg triggers the next daemon poll
type pollTickMsg struct{}

// pollResultMsg carries one poll's outcome
type pollResultMsg struct {
	session *models.Session
	err     error
}

// NewWatchModel creates the live watch model around a poller.
func NewWatchModel(poll SessionPoller) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	return WatchModel{
		poll:    poll,
		loading: true,
		spin:    s,
	}
}

// Init starts the spinner and the first poll
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.pollCmd())
}

func (m WatchModel) pollCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.poll()
		return pollResultMsg{session: session, err: err}
	}
}

// Update handles messages
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pollResultMsg:
		m.loading = false
		m.session = msg.session
		m.pollErr = msg.err
		return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
			return pollTickMsg{}
		})

	case pollTickMsg:
		return m, m.pollCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

var (
	watchCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(1, 2)

	watchTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorAccentBright))

	watchLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText))

	watchActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorSuccess))

	watchHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText))
)

// View renders the watch TUI
func (m WatchModel) View() string {
	if m.loading {
		return m.spin.View() + " connecting to daemon..."
	}

	var body string
	switch {
	case m.pollErr != nil:
		body = watchLabelStyle.Render("daemon unreachable: ") + m.pollErr.Error()
	case m.session == nil || m.session.Status != models.SessionActive:
		body = watchLabelStyle.Render("No active session")
	default:
		elapsed := time.Duration(m.session.DurationSeconds) * time.Second
		body = watchActiveStyle.Render("● "+m.session.Context.Label()) + "\n\n" +
			watchLabelStyle.Render("Tracked: ") + elapsed.String()
		if m.session.Context.FilePath != "" {
			body += "\n" + watchLabelStyle.Render("File:    ") + m.session.Context.FilePath
		}
		if m.session.Context.ProjectPath != "" {
			body += "\n" + watchLabelStyle.Render("Project: ") + m.session.Context.ProjectPath
		}
	}

	card := watchCardStyle.Render(watchTitleStyle.Render("tempo") + "\n\n" + body)
	return card + "\n" + watchHelpStyle.Render("q to quit")
}

// RunWatch starts the live watch TUI.
func RunWatch(poll SessionPoller) error {
	program := tea.NewProgram(NewWatchModel(poll), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
