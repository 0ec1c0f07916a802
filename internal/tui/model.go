// Package tui provides the Bubble Tea progress screen for dataset generation.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/sortbench/internal/tournament"
)

const (
	defaultWidth = 80
	recentRuns   = 5
	maxBarWidth  = 72
)

// EventMsg carries a tournament progress event into the program.
type EventMsg tournament.ProgressEvent

// DoneMsg reports that dataset generation finished.
type DoneMsg struct {
	Err error
}

type standing struct {
	runs     int
	wins     int
	failures int
}

// Model implements the Bubble Tea progress UI.
type Model struct {
	cancel context.CancelFunc

	bar   progress.Model
	spin  spinner.Model
	board table.Model

	width  int
	height int

	total     int
	completed int
	skipped   int
	failures  int
	current   string
	recent    []string
	standings map[string]*standing

	startedAt   time.Time
	done        bool
	interrupted bool
	err         error
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	winStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	boardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// NewModel constructs a progress model. cancel is called when the user quits.
func NewModel(cancel context.CancelFunc) *Model {
	m := &Model{
		cancel:    cancel,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultWidth-8)),
		spin:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(currentStyle)),
		standings: map[string]*standing{},
		startedAt: time.Now(),
	}
	m.board = table.New(
		table.WithColumns(boardColumns(defaultWidth)),
		table.WithHeight(6),
		table.WithFocused(false),
	)
	m.board.SetStyles(boardStyles())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.interrupt()
			return m, tea.Quit
		case tea.KeyRunes:
			if string(msg.Runes) == "q" {
				m.interrupt()
				return m, tea.Quit
			}
		}
		return m, nil
	case EventMsg:
		return m, m.apply(tournament.ProgressEvent(msg))
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		if bar, ok := updated.(progress.Model); ok {
			m.bar = bar
		}
		return m, cmd
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("sortbench"))
	b.WriteString("  ")
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.bar.View())
	b.WriteString("\n\n")
	if m.current != "" {
		b.WriteString(currentStyle.Render(runewidth.Truncate(m.current, width-2, "…")))
		b.WriteString("\n")
	}
	for _, line := range m.recent {
		b.WriteString(runewidth.Truncate(line, width, "…"))
		b.WriteString("\n")
	}
	if len(m.standings) > 0 {
		b.WriteString("\n")
		b.WriteString(boardStyle.Render(m.board.View()))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

// Interrupted reports whether the user stopped the program.
func (m *Model) Interrupted() bool {
	return m.interrupted
}

// Err returns the error reported by DoneMsg, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) interrupt() {
	m.interrupted = true
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	barWidth := width - 8
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	if barWidth < 10 {
		barWidth = 10
	}
	m.bar.Width = barWidth
	m.board.SetColumns(boardColumns(width))
	rows := height - 14
	if rows < 3 {
		rows = 3
	}
	m.board.SetHeight(rows)
}

func (m *Model) apply(ev tournament.ProgressEvent) tea.Cmd {
	if ev.Total > 0 {
		m.total = ev.Total
	}
	m.completed = ev.Completed
	switch ev.EventType {
	case tournament.EventRunStart:
		m.current = fmt.Sprintf("run %d  %s vs %s  %s n=%d", ev.RunID, ev.A, ev.B, ev.Shape, ev.Size)
	case tournament.EventRunComplete:
		m.record(ev.A, ev.WonA, ev.FailedA)
		m.record(ev.B, ev.WonB, ev.FailedB)
		m.pushRecent(describeRun(ev))
		m.refreshBoard()
	case tournament.EventRunSkipped:
		m.skipped++
		m.pushRecent(failStyle.Render(fmt.Sprintf("run %d skipped: %v", ev.RunID, ev.Err)))
	case tournament.EventTournamentComplete:
		m.current = ""
		m.skipped = ev.Skipped
		m.failures = ev.Failures
	}
	return m.bar.SetPercent(ev.Percent() / 100)
}

func (m *Model) record(name string, won bool, failed error) {
	s, ok := m.standings[name]
	if !ok {
		s = &standing{}
		m.standings[name] = s
	}
	s.runs++
	if won {
		s.wins++
	}
	if failed != nil {
		s.failures++
		m.failures++
	}
}

func (m *Model) pushRecent(line string) {
	m.recent = append(m.recent, line)
	if len(m.recent) > recentRuns {
		m.recent = m.recent[len(m.recent)-recentRuns:]
	}
}

func (m *Model) refreshBoard() {
	names := make([]string, 0, len(m.standings))
	for name := range m.standings {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := m.standings[names[i]], m.standings[names[j]]
		if si.wins == sj.wins {
			return names[i] < names[j]
		}
		return si.wins > sj.wins
	})
	rows := make([]table.Row, 0, len(names))
	for _, name := range names {
		s := m.standings[name]
		rows = append(rows, table.Row{
			name,
			fmt.Sprintf("%d", s.runs),
			fmt.Sprintf("%d", s.wins),
			fmt.Sprintf("%d", s.failures),
		})
	}
	m.board.SetRows(rows)
}

func (m *Model) renderHeader() string {
	pct := 100.0
	if m.total > 0 {
		pct = float64(m.completed) / float64(m.total) * 100
	}
	status := m.spin.View()
	if m.done {
		status = "done"
	}
	return fmt.Sprintf("%s run %d/%d · %.0f%%", status, m.completed, m.total, pct)
}

func (m *Model) renderFooter() string {
	elapsed := time.Since(m.startedAt).Truncate(time.Second)
	segments := []string{
		fmt.Sprintf("Elapsed %s", elapsed),
		fmt.Sprintf("Failed executions %d", m.failures),
		fmt.Sprintf("Skipped %d", m.skipped),
		"q to stop",
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func describeRun(ev tournament.ProgressEvent) string {
	outcome := "tie"
	switch {
	case ev.WonA:
		outcome = ev.A + " won"
	case ev.WonB:
		outcome = ev.B + " won"
	}
	line := fmt.Sprintf("run %d  %s vs %s  %s  %s", ev.RunID, ev.A, ev.B, ev.Shape, outcome)
	if ev.FailedA != nil || ev.FailedB != nil {
		return failStyle.Render(line + " (failure)")
	}
	if outcome == "tie" {
		return mutedStyle.Render(line)
	}
	return winStyle.Render(line)
}

func boardColumns(width int) []table.Column {
	nameWidth := width - 30
	if nameWidth < 16 {
		nameWidth = 16
	}
	if nameWidth > 28 {
		nameWidth = 28
	}
	return []table.Column{
		{Title: "Algorithm", Width: nameWidth},
		{Title: "Runs", Width: 6},
		{Title: "Wins", Width: 6},
		{Title: "Failed", Width: 6},
	}
}

func boardStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(false)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(false)
	return styles
}
