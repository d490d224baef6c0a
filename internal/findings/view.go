package findings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/neurolung/internal/casefile"
	"github.com/muesli/reflow/truncate"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Bold(true)

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	tnmStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	rowSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("33")).
				Bold(true)

	rowDetailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	// Bar colours follow the class: red, orange, green.
	barColors = map[casefile.Histology]lipgloss.Color{
		casefile.Adenocarcinoma: lipgloss.Color("196"),
		casefile.Squamous:       lipgloss.Color("214"),
		casefile.Benign:         lipgloss.Color("42"),
	}
)

// minWidth keeps the bars readable on narrow terminals.
const minWidth = 24

// View renders the panel into a block width columns wide. selected is the
// highlighted nodule row, or -1 for none.
func (p Panel) View(width, selected int) string {
	if width < minWidth {
		width = minWidth
	}

	var sb strings.Builder
	sb.WriteString(headingStyle.Render("AI Findings"))
	sb.WriteString("\n\n")

	sb.WriteString(sectionStyle.Render("Predicted Stage"))
	sb.WriteString("\n")
	sb.WriteString(stageStyle.Render("Stage " + p.Stage))
	sb.WriteString("\n")
	tnm := make([]string, 0, len(p.TNM))
	for _, code := range p.TNM {
		tnm = append(tnm, tnmStyle.Render(code))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tnm...))
	sb.WriteString("\n\n")

	sb.WriteString(sectionStyle.Render("HISTOLOGY PROBABILITY"))
	sb.WriteString("\n")
	for _, b := range p.Bars {
		sb.WriteString(labelLine(b.Label, b.Text, width))
		sb.WriteString("\n")
		sb.WriteString(renderBar(b, width))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(sectionStyle.Render("DETECTED NODULES"))
	sb.WriteString("\n")
	if len(p.Rows) == 0 {
		sb.WriteString(rowDetailStyle.Render("No nodules detected"))
		sb.WriteString("\n")
	}
	for i, r := range p.Rows {
		style := rowStyle
		if i == selected {
			style = rowSelectedStyle
		}
		sb.WriteString(style.Render(labelLineRaw(r.Title(), r.Action, width)))
		sb.WriteString("\n")
		size := "Size: " + r.Size
		location := truncate.StringWithTail(r.Location, uint(max(1, width-len(size)-1)), "…")
		sb.WriteString(rowDetailStyle.Render(labelLineRaw(location, size, width)))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// renderBar draws a █/░ bar whose filled part is proportional to the probability.
func renderBar(b Bar, width int) string {
	filled := int(b.WidthPercent / 100 * float64(width))
	filled = max(0, min(width, filled))
	fill := lipgloss.NewStyle().Foreground(barColors[b.Class])
	return fill.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

func labelLine(left, right string, width int) string {
	return rowStyle.Render(labelLineRaw(left, right, width))
}

// labelLineRaw pads left and right apart so the line spans width columns.
func labelLineRaw(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return fmt.Sprintf("%s%s%s", left, strings.Repeat(" ", gap), right)
}
