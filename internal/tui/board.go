package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/punchbook/punchbook/internal/ledger"
	"github.com/punchbook/punchbook/internal/models"
)

// FetchReport reloads the event log and recomputes every derived view.
// The board calls it on every refresh tick; there is no cache to go
// stale.
type FetchReport func() (ledger.Report, error)

// BoardModel is the live crew board: who is on the clock right now plus
// each scheme's budget envelope.
type BoardModel struct {
	fetch FetchReport

	width  int
	height int

	table    table.Model
	progress progress.Model
	report   ledger.Report
	fetchErr error
}

type refreshTickMsg time.Time

type reportMsg struct {
	report ledger.Report
	err    error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentMain)).
			Bold(true)
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText))
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError))
	schemeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimaryText))
	cappedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 1)
)

// NewBoardModel creates the crew board model.
func NewBoardModel(fetch FetchReport) BoardModel {
	cols := []table.Column{
		{Title: "Worker", Width: 16},
		{Title: "State", Width: 9},
		{Title: "Scheme", Width: 7},
		{Title: "Since", Width: 6},
		{Title: "Elapsed", Width: 8},
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(8),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		Foreground(lipgloss.Color(ColorSecondaryText)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		BorderBottom(true)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorAccentMain))
	t.SetStyles(st)

	return BoardModel{
		fetch:    fetch,
		table:    t,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(m.refresh, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m BoardModel) refresh() tea.Msg {
	rep, err := m.fetch()
	return reportMsg{report: rep, err: err}
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshTickMsg:
		return m, tea.Batch(m.refresh, tick())

	case reportMsg:
		m.fetchErr = msg.err
		if msg.err == nil {
			m.report = msg.report
			m.table.SetRows(statusRows(msg.report.Statuses))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(48, msg.Width-20)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m BoardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render("🏗️  punchbook — crew board")

	var storeLine string
	if m.fetchErr != nil {
		storeLine = errStyle.Render("⚠ store unreachable, data may be stale")
	}

	budgets := ""
	for _, b := range m.report.Statement.Budgets {
		ratio := 0.0
		if limit := b.Limit.InexactFloat64(); limit > 0 {
			ratio = b.TotalSpent.InexactFloat64() / limit
		}
		label := schemeStyle.Render(fmt.Sprintf("%-9s $%s/h", b.Scheme, b.EffectiveRate.StringFixed(0)))
		if b.Capped {
			label = cappedStyle.Render(fmt.Sprintf("%-9s $%s/h capped", b.Scheme, b.EffectiveRate.StringFixed(0)))
		}
		budgets += fmt.Sprintf("%s %s $%s/$%s\n",
			label,
			m.progress.ViewAs(ratio),
			b.TotalSpent.StringFixed(0),
			b.Limit.StringFixed(0))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		storeLine,
		boxStyle.Render(m.table.View()),
		boxStyle.Render(budgets),
		helpStyle.Render("q: quit  •  refreshes every second"),
	)
	return body + "\n"
}

func statusRows(statuses []models.WorkerStatus) []table.Row {
	rows := make([]table.Row, 0, len(statuses))
	for _, st := range statuses {
		state, scheme, since, elapsed := "⚪ off", "-", "-", "-"
		switch st.State {
		case models.StateWorking:
			state = "🟢 work"
		case models.StateResting:
			state = "🟡 rest"
		}
		if st.State != models.StateOff {
			scheme = fmt.Sprintf("%d", int(st.Scheme))
			since = st.Since.Format("15:04")
			elapsed = formatElapsed(time.Since(st.Since))
		}
		rows = append(rows, table.Row{st.Worker, state, scheme, since, elapsed})
	}
	return rows
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	mn := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %02dm", h, mn)
}

// RunBoard starts the live board and blocks until the user quits.
func RunBoard(fetch FetchReport) error {
	p := tea.NewProgram(NewBoardModel(fetch), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
