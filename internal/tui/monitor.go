// Package tui provides the terminal user interface for fleetmux's watch
// mode: a periodically refreshed view of per-role activity.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Kensan196948G/fleetmux/internal/orchestrator"
)

// Sweeper runs one activity sweep. Satisfied by *orchestrator.Orchestrator.
type Sweeper interface {
	ActivitySweep(ctx context.Context) (*orchestrator.SweepReport, error)
}

var _ Sweeper = (*orchestrator.Orchestrator)(nil)

// SweepMsg carries a finished sweep into the model.
type SweepMsg struct {
	Report *orchestrator.SweepReport
	Err    error
}

// RulesReloadedMsg is sent when the keyword rules file changed on disk and
// the router was swapped. Err is non-nil when the new file did not compile.
type RulesReloadedMsg struct {
	Err error
}

// tickMsg schedules the next sweep.
type tickMsg time.Time

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Bold(true).
			Padding(0, 1)

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#96E6A1"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// Monitor is the bubbletea model for fleetmux monitor --watch.
type Monitor struct {
	sweeper  Sweeper
	interval time.Duration
	table    table.Model
	report   *orchestrator.SweepReport
	err      error
	notice   string
	quitting bool
}

// NewMonitor creates a Monitor sweeping at the given interval.
func NewMonitor(sweeper Sweeper, interval time.Duration) *Monitor {
	columns := []table.Column{
		{Title: "Role", Width: 12},
		{Title: "Target", Width: 18},
		{Title: "Last Dispatch", Width: 14},
		{Title: "Last Activity", Width: 14},
		{Title: "Status", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("#45B7D1"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return &Monitor{
		sweeper:  sweeper,
		interval: interval,
		table:    t,
	}
}

// Init implements tea.Model.
func (m *Monitor) Init() tea.Cmd {
	return m.sweep
}

// Update implements tea.Model.
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.sweep
		}

	case tickMsg:
		return m, m.sweep

	case SweepMsg:
		m.report = msg.Report
		m.err = msg.Err
		if msg.Report != nil {
			m.table.SetRows(rowsFor(msg.Report))
		}
		return m, m.tick()

	case RulesReloadedMsg:
		if msg.Err != nil {
			m.notice = fmt.Sprintf("keyword rules reload failed: %v", msg.Err)
		} else {
			m.notice = "keyword rules reloaded"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Monitor) View() string {
	if m.quitting {
		return ""
	}

	title := titleStyle.Render("fleetmux monitor")
	if m.report != nil {
		title += footerStyle.Render(fmt.Sprintf("  session %s", m.report.Session))
	}

	var status string
	switch {
	case m.err != nil:
		status = staleStyle.Render(fmt.Sprintf("sweep failed: %v", m.err))
	case m.report == nil:
		status = footerStyle.Render("sweeping...")
	case len(m.report.StaleRoles()) > 0:
		status = staleStyle.Render(fmt.Sprintf("%d stale role(s) pinged", len(m.report.StaleRoles())))
	default:
		status = okStyle.Render("all roles active")
	}

	footer := footerStyle.Render(fmt.Sprintf("refresh %s  •  r: sweep now  •  q: quit", m.interval))
	if m.notice != "" {
		footer = footerStyle.Render(m.notice) + "\n" + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		tableStyle.Render(m.table.View()),
		status,
		footer,
	)
}

// sweep runs one activity sweep off the Update loop.
func (m *Monitor) sweep() tea.Msg {
	report, err := m.sweeper.ActivitySweep(context.Background())
	return SweepMsg{Report: report, Err: err}
}

// tick schedules the next periodic sweep.
func (m *Monitor) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// rowsFor converts a sweep report into table rows.
func rowsFor(report *orchestrator.SweepReport) []table.Row {
	rows := make([]table.Row, 0, len(report.Roles))
	for _, role := range report.Roles {
		status := "active"
		if role.Stale {
			status = "STALE"
			if role.Pinged {
				status = "STALE ⚡"
			}
		}
		rows = append(rows, table.Row{
			role.Role,
			role.Address.Target(),
			humanSince(report.SweptAt, role.LastDispatch),
			humanSince(report.SweptAt, role.LastActivity),
			status,
		})
	}
	return rows
}

// humanSince renders a timestamp as a relative age.
func humanSince(now, t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	gap := now.Sub(t)
	switch {
	case gap < time.Minute:
		return "just now"
	case gap < time.Hour:
		return fmt.Sprintf("%dm ago", int(gap.Minutes()))
	case gap < 24*time.Hour:
		return fmt.Sprintf("%dh%02dm ago", int(gap.Hours()), int(gap.Minutes())%60)
	default:
		return fmt.Sprintf("%dd ago", int(gap.Hours()/24))
	}
}
