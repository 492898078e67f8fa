// Package tui is the live terminal view of a running dashboard.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
)

// Fetcher returns the current rendered dashboard.
type Fetcher func(ctx context.Context) (*render.Dashboard, error)

type dashboardMsg struct {
	dashboard *render.Dashboard
}

type errMsg struct {
	err error
}

type tickMsg time.Time

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc3545"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
)

// Model polls the dashboard server and redraws on every answer.
type Model struct {
	fetch     Fetcher
	interval  time.Duration
	timeout   time.Duration
	dashboard *render.Dashboard
	err       error
	width     int
	updatedAt time.Time
}

func NewModel(fetch Fetcher, interval time.Duration) Model {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return Model{
		fetch:    fetch,
		interval: interval,
		timeout:  interval,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return m.fetchCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case dashboardMsg:
		m.dashboard = msg.dashboard
		m.err = nil
		m.updatedAt = time.Now()
		return m, m.tickCmd()

	case errMsg:
		m.err = msg.err
		return m, m.tickCmd()

	case tickMsg:
		return m, m.fetchCmd()
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	if m.dashboard == nil {
		body = helpStyle.Render("Connecting to dashboard...") + "\n"
	} else {
		body = render.TerminalDashboard(*m.dashboard, m.width)
	}

	if m.err != nil {
		body += "\n" + errorStyle.Render("Error: "+m.err.Error())
	}
	help := "r refresh • q quit"
	if !m.updatedAt.IsZero() {
		help = "updated " + m.updatedAt.Format("15:04:05") + " • " + help
	}
	return body + "\n" + helpStyle.Render(help)
}

func (m Model) fetchCmd() tea.Cmd {
	fetch, timeout := m.fetch, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		d, err := fetch(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return dashboardMsg{dashboard: d}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
