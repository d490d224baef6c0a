package screens

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/neurolung/cmd/neurolung/shell/components"
	"github.com/mrsinham/neurolung/internal/casefile"
	"github.com/mrsinham/neurolung/internal/dicom"
	"github.com/mrsinham/neurolung/internal/render"
	"github.com/mrsinham/neurolung/internal/util"
	"github.com/mrsinham/neurolung/internal/viewer"
	"github.com/mrsinham/neurolung/internal/workstation"
)

// PageStep is how many slices PgUp/PgDn move.
const PageStep = 10

// ExportDoneMsg reports the end of a DICOM series export
type ExportDoneMsg struct {
	PatientID string
	Dir       string
	Files     int
	Err       error
}

// ViewerOptions configures where the viewer writes its exports
type ViewerOptions struct {
	ReportDir string
	DicomDir  string
	Tags      util.TagOverrides
	Workers   int
}

var (
	viewerNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	viewerMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	scanFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	toggleOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	toggleOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	sliderLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))
)

// ViewerScreen shows an open workstation session
type ViewerScreen struct {
	ws        *workstation.Workstation
	opts      ViewerOptions
	selected  int
	status    string
	statusErr bool
	exporting bool
	closed    bool
	width     int
	height    int
}

// NewViewerScreen wraps an open session
func NewViewerScreen(ws *workstation.Workstation, opts ViewerOptions) *ViewerScreen {
	return &ViewerScreen{ws: ws, opts: opts, width: 120, height: 40}
}

// Init implements tea.Model
func (s *ViewerScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *ViewerScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s, s.handleKey(msg.String())
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	case ExportDoneMsg:
		s.exporting = false
		if msg.Err != nil {
			s.setStatus(fmt.Sprintf("DICOM export failed: %v", msg.Err), true)
			return s, nil
		}
		s.setStatus(fmt.Sprintf("✓ %d DICOM files written to %s", msg.Files, msg.Dir), false)
	}
	return s, nil
}

func (s *ViewerScreen) handleKey(key string) tea.Cmd {
	rows := len(s.ws.Panel().Rows)

	switch key {
	case "esc":
		if err := s.ws.Close(); err != nil {
			log.Printf("close %s: %v", s.ws.Case().ID, err)
		}
		s.closed = true
	case "left":
		s.ws.Step(-1)
	case "right":
		s.ws.Step(1)
	case "pgup":
		s.ws.Step(-PageStep)
	case "pgdown":
		s.ws.Step(PageStep)
	case "home":
		s.ws.SetSlice(viewer.MinSlice)
	case "end":
		s.ws.SetSlice(viewer.MaxSlice)
	case "h":
		s.ws.ToggleHeatmap()
	case "s":
		s.ws.ToggleSegmentation()
	case "up":
		if s.selected > 0 {
			s.selected--
		}
	case "down":
		if s.selected < rows-1 {
			s.selected++
		}
	case "enter":
		if err := s.ws.JumpToNodule(s.selected); err != nil {
			s.setStatus(err.Error(), true)
		}
	case "d":
		s.saveReport()
	case "x":
		return s.exportSeries()
	}
	return nil
}

func (s *ViewerScreen) saveReport() {
	path, err := s.ws.ExportReport(s.opts.ReportDir)
	if err != nil {
		log.Printf("report: %v", err)
		s.setStatus(fmt.Sprintf("Report failed: %v", err), true)
		return
	}
	log.Printf("report for %s saved to %s", s.ws.Case().ID, path)
	s.setStatus("✓ Report saved to "+path, false)
}

// exportSeries writes the DICOM series in the background. It works on a copy
// of the case and its own renderers, never on the session surface.
func (s *ViewerScreen) exportSeries() tea.Cmd {
	if s.exporting {
		return nil
	}
	s.exporting = true
	s.setStatus("Exporting DICOM series...", false)

	pc := s.ws.Case()
	opts := dicom.ExportOptions{
		OutputDir: s.opts.DicomDir,
		Heatmap:   s.ws.State().Heatmap,
		Workers:   s.opts.Workers,
		Tags:      s.opts.Tags,
		Quiet:     true,
	}
	return func() tea.Msg {
		files, err := dicom.ExportSeries(pc, opts)
		if err != nil {
			log.Printf("dicom export for %s: %v", pc.ID, err)
		}
		return ExportDoneMsg{
			PatientID: pc.ID,
			Dir:       filepath.Join(opts.OutputDir, pc.ID),
			Files:     len(files),
			Err:       err,
		}
	}
}

func (s *ViewerScreen) setStatus(text string, isErr bool) {
	s.status = text
	s.statusErr = isErr
}

// scanSize returns the terminal cells used for the scan: a square image is
// twice as many pixel rows as cell rows.
func (s *ViewerScreen) scanSize() (cols, rows int) {
	cols = max(32, min(96, s.width*55/100))
	rows = cols / 2
	if limit := s.height - 12; limit > 8 && rows > limit {
		rows = limit
		cols = rows * 2
	}
	return cols, rows
}

// View implements tea.Model
func (s *ViewerScreen) View() string {
	if s.closed {
		return ""
	}

	pc := s.ws.Case()
	state := s.ws.State()

	header := viewerNameStyle.Render(pc.Name) + "  " +
		viewerMetaStyle.Render(fmt.Sprintf("ID: %s • Age: %d • Scan: %s", pc.ID, pc.Age, pc.ScanDateString()))

	cols, rows := s.scanSize()
	scan := scanFrameStyle.Render(render.Terminal(s.ws.Surface(), cols, rows))

	left := lipgloss.JoinVertical(lipgloss.Left,
		scan,
		s.sliderView(cols, state),
		s.togglesView(state),
	)

	panelWidth := max(28, s.width-cols-6)
	right := s.ws.Panel().View(panelWidth, s.selected)

	var sb strings.Builder
	sb.WriteString(components.TitleStyle.Render("NEUROLUNG AI - Analysis Workstation"))
	sb.WriteString("\n")
	sb.WriteString(header)
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	sb.WriteString("\n\n")
	if s.status != "" {
		if s.statusErr {
			sb.WriteString(components.ErrorStyle.Render(s.status))
		} else {
			sb.WriteString(components.SuccessStyle.Render(s.status))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(components.HintStyle.Render("←/→: Slice | PgUp/PgDn: ±10 | h: Heatmap | s: Segmentation | ↑/↓ Enter: Nodule | d: Report | x: DICOM | Esc: Back"))

	return sb.String()
}

func (s *ViewerScreen) sliderView(cols int, state viewer.State) string {
	width := max(10, cols-22)
	percent := float64(state.Slice-viewer.MinSlice) / float64(viewer.MaxSlice-viewer.MinSlice) * 100
	return sliderLabelStyle.Render("Inferior ") +
		components.Bar(percent, width) +
		sliderLabelStyle.Render(fmt.Sprintf(" Superior %3d", state.Slice))
}

func (s *ViewerScreen) togglesView(state viewer.State) string {
	toggle := func(label string, on bool) string {
		if on {
			return toggleOnStyle.Render("[x] " + label)
		}
		return toggleOffStyle.Render("[ ] " + label)
	}
	return toggle("Grad-CAM Heatmap", state.Heatmap) + "   " + toggle("Segmentation", state.Segmentation)
}

// Case returns the case under review
func (s *ViewerScreen) Case() casefile.PatientCase {
	return s.ws.Case()
}

// Selected returns the highlighted nodule row
func (s *ViewerScreen) Selected() int {
	return s.selected
}

// Status returns the last status line
func (s *ViewerScreen) Status() string {
	return s.status
}

// Closed returns true once the user closed the case
func (s *ViewerScreen) Closed() bool {
	return s.closed
}

// Close ends the session if it is still open.
func (s *ViewerScreen) Close() {
	if !s.ws.Closed() {
		_ = s.ws.Close()
	}
	s.closed = true
}
