package screens

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/neurolung/cmd/neurolung/shell/components"
	"github.com/mrsinham/neurolung/internal/casefile"
	"github.com/shirou/gopsutil/v3/cpu"
)

// CPUInterval is how often the dashboard samples host CPU usage.
const CPUInterval = 2 * time.Second

// CPUMsg carries a host CPU sample
type CPUMsg struct {
	Percent float64
	Err     error
}

// DashboardAction is what the user asked for on the dashboard
type DashboardAction int

const (
	ActionNone DashboardAction = iota
	ActionOpen
	ActionUpload
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			Width(22)

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	cardValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	criticalValueStyle = cardValueStyle.
				Foreground(lipgloss.Color("196"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// DashboardScreen lists the roster and the session statistics
type DashboardScreen struct {
	roster     *casefile.Roster
	cases      []casefile.PatientCase
	table      table.Model
	search     textinput.Model
	searching  bool
	cpuPercent float64
	cpuErr     error
	notice     string
	action     DashboardAction
	selected   string
	cancelled  bool
	width      int
	height     int
}

// NewDashboardScreen creates the dashboard for roster
func NewDashboardScreen(roster *casefile.Roster) *DashboardScreen {
	ti := textinput.New()
	ti.Placeholder = "Search patient ID..."
	ti.Prompt = "/ "
	ti.CharLimit = 32
	ti.Width = 24

	s := &DashboardScreen{roster: roster, search: ti, width: 100, height: 30}
	s.Refresh()
	return s
}

// Refresh rebuilds the table from the roster and clears the last action.
func (s *DashboardScreen) Refresh() {
	s.cases = s.filtered()
	s.action = ActionNone
	s.selected = ""
	s.buildTable()
}

// filtered returns the roster cases whose ID or name contains the search text.
func (s *DashboardScreen) filtered() []casefile.PatientCase {
	query := strings.ToLower(strings.TrimSpace(s.search.Value()))
	all := s.roster.All()
	if query == "" {
		return all
	}
	out := make([]casefile.PatientCase, 0, len(all))
	for _, pc := range all {
		if strings.Contains(strings.ToLower(pc.ID), query) || strings.Contains(strings.ToLower(pc.Name), query) {
			out = append(out, pc)
		}
	}
	return out
}

func (s *DashboardScreen) applyFilter() {
	s.cases = s.filtered()
	s.table.SetCursor(0)
	s.buildTable()
}

func (s *DashboardScreen) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.search.SetValue("")
		s.search.Blur()
		s.searching = false
		s.applyFilter()
		return s, nil
	case "enter", "down", "up":
		s.search.Blur()
		s.searching = false
		return s, nil
	}

	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	s.applyFilter()
	return s, cmd
}

func (s *DashboardScreen) buildTable() {
	cursor := s.table.Cursor()

	columns := []table.Column{
		{Title: "Patient ID", Width: 13},
		{Title: "Name", Width: 22},
		{Title: "Scan Date", Width: 11},
		{Title: "Status", Width: 11},
		{Title: "AI Findings", Width: 24},
	}

	rows := make([]table.Row, 0, len(s.cases))
	for _, pc := range s.cases {
		rows = append(rows, table.Row{
			pc.ID,
			pc.Name,
			pc.ScanDateString(),
			pc.Status.String(),
			FindingsSummary(pc),
		})
	}

	height := max(4, min(len(rows)+1, s.height-14))
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("33")).
		Bold(false)
	t.SetStyles(st)
	t.SetCursor(min(cursor, max(0, len(rows)-1)))

	s.table = t
}

// FindingsSummary is the AI findings cell of a case row.
func FindingsSummary(pc casefile.PatientCase) string {
	if pc.Stage == "" || pc.Stage == "-" {
		return "Waiting for AI..."
	}
	return fmt.Sprintf("Stage %s / %s Risk", pc.Stage, pc.Risk)
}

// sampleCPU reads host CPU usage since the previous call.
func sampleCPU() tea.Msg {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return CPUMsg{Err: err}
	}
	if len(percents) == 0 {
		return CPUMsg{Err: fmt.Errorf("no CPU sample")}
	}
	return CPUMsg{Percent: percents[0]}
}

func tickCPU() tea.Cmd {
	return tea.Every(CPUInterval, func(time.Time) tea.Msg {
		return sampleCPU()
	})
}

// Init implements tea.Model
func (s *DashboardScreen) Init() tea.Cmd {
	return tea.Batch(sampleCPU, tickCPU())
}

// Update implements tea.Model
func (s *DashboardScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.searching && msg.String() != "ctrl+c" {
			return s.updateSearch(msg)
		}
		switch msg.String() {
		case "/":
			s.searching = true
			return s, s.search.Focus()
		case "esc":
			if s.search.Value() != "" {
				s.search.SetValue("")
				s.applyFilter()
			}
			return s, nil
		case "ctrl+c", "q":
			s.cancelled = true
			return s, tea.Quit
		case "u":
			s.action = ActionUpload
			return s, nil
		case "enter":
			s.openSelected()
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.buildTable()
	case CPUMsg:
		s.cpuPercent = msg.Percent
		s.cpuErr = msg.Err
		return s, tickCPU()
	}

	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return s, cmd
}

func (s *DashboardScreen) openSelected() {
	i := s.table.Cursor()
	if i < 0 || i >= len(s.cases) {
		return
	}
	pc := s.cases[i]
	if pc.Status != casefile.StatusAnalyzed {
		s.notice = fmt.Sprintf("%s is %s, no findings to review yet", pc.ID, strings.ToLower(pc.Status.String()))
		return
	}
	s.notice = ""
	s.action = ActionOpen
	s.selected = pc.ID
}

// View implements tea.Model
func (s *DashboardScreen) View() string {
	if s.cancelled {
		return "Goodbye.\n"
	}

	title := components.TitleStyle.Render("NEUROLUNG AI - Dashboard")

	analyzed := s.roster.Count(func(pc casefile.PatientCase) bool { return pc.Status == casefile.StatusAnalyzed })
	critical := s.roster.Count(func(pc casefile.PatientCase) bool { return pc.Risk == casefile.RiskCritical })

	cpuValue := fmt.Sprintf("%.0f%%", s.cpuPercent)
	if s.cpuErr != nil {
		cpuValue = "n/a"
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Cases Loaded", cardValueStyle.Render(fmt.Sprintf("%d", s.roster.Len()))),
		card("Analyzed", cardValueStyle.Render(fmt.Sprintf("%d", analyzed))),
		card("Critical Findings", criticalValueStyle.Render(fmt.Sprintf("%d", critical))),
		card("Host CPU", cardValueStyle.Render(cpuValue)),
	)

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(cards)
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		components.SubtitleStyle.Render("Recent Scans"), "    ", s.search.View()))
	sb.WriteString("\n")
	sb.WriteString(s.table.View())
	sb.WriteString("\n\n")
	if s.notice != "" {
		sb.WriteString(noticeStyle.Render(s.notice))
		sb.WriteString("\n\n")
	}
	sb.WriteString(components.HintStyle.Render("↑/↓: Select | Enter: View report | /: Search | u: New analysis | q: Quit"))

	return sb.String()
}

func card(label, value string) string {
	return cardStyle.Render(cardLabelStyle.Render(label) + "\n" + value)
}

// Action returns what the user asked for, ActionNone while browsing
func (s *DashboardScreen) Action() DashboardAction {
	return s.action
}

// Selected returns the patient ID to open when Action is ActionOpen
func (s *DashboardScreen) Selected() string {
	return s.selected
}

// Cancelled returns true if the user quit
func (s *DashboardScreen) Cancelled() bool {
	return s.cancelled
}

// Searching reports whether the search box has focus
func (s *DashboardScreen) Searching() bool {
	return s.searching
}

// SetNotice shows a one-line message above the key hints
func (s *DashboardScreen) SetNotice(notice string) {
	s.notice = notice
}
