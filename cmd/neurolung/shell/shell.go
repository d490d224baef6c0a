// Package shell provides the interactive TUI around the analysis workstation:
// the case dashboard, the upload form, the analysis progress and the viewer.
package shell

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mrsinham/neurolung/cmd/neurolung/shell/screens"
	"github.com/mrsinham/neurolung/internal/analysis"
	"github.com/mrsinham/neurolung/internal/casefile"
	"github.com/mrsinham/neurolung/internal/workstation"
)

// View is the screen the shell is showing. Only the types below implement it.
type View interface {
	isView()
}

// DashboardView lists the roster.
type DashboardView struct{}

// UploadView asks for a scan file.
type UploadView struct{}

// ProcessingView follows one analysis job.
type ProcessingView struct {
	JobID uuid.UUID
}

// ViewerView reviews one analyzed case.
type ViewerView struct {
	PatientID string
}

func (DashboardView) isView()  {}
func (UploadView) isView()     {}
func (ProcessingView) isView() {}
func (ViewerView) isView()     {}

// Config holds what the shell needs from the command line.
type Config struct {
	Roster   *casefile.Roster
	Provider analysis.Provider
	Job      analysis.JobOptions
	Viewer   screens.ViewerOptions
	Now      func() time.Time // Defaults to time.Now
}

// Shell is the root bubbletea model.
type Shell struct {
	cfg  Config
	view View

	dashboard  *screens.DashboardScreen
	upload     *screens.UploadScreen
	processing *screens.ProcessingScreen
	viewer     *screens.ViewerScreen

	width  int
	height int
	quit   bool
}

// New creates a shell on the dashboard.
func New(cfg Config) *Shell {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Roster == nil {
		cfg.Roster, _ = casefile.NewRoster()
	}
	if cfg.Provider == nil {
		cfg.Provider = analysis.NewDemoProvider(cfg.Now().UnixNano())
	}
	return &Shell{
		cfg:       cfg,
		view:      DashboardView{},
		dashboard: screens.NewDashboardScreen(cfg.Roster),
	}
}

// Current returns the screen being shown.
func (s *Shell) Current() View {
	return s.view
}

// Init implements tea.Model.
func (s *Shell) Init() tea.Cmd {
	return s.dashboard.Init()
}

// Update implements tea.Model.
func (s *Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			s.teardown()
			s.quit = true
			return s, tea.Quit
		}
	case screens.CPUMsg:
		// The dashboard keeps sampling while other screens are shown.
		_, cmd := s.dashboard.Update(msg)
		return s, cmd
	case screens.JobClosedMsg:
		return s, nil
	case screens.JobEventMsg:
		if v, ok := s.view.(ProcessingView); !ok || v.JobID != msg.Event.JobID {
			return s, nil
		}
	case screens.ExportDoneMsg:
		if v, ok := s.view.(ViewerView); !ok || v.PatientID != msg.PatientID {
			log.Printf("dicom export for %s finished after its viewer closed", msg.PatientID)
			return s, nil
		}
	}

	switch s.view.(type) {
	case DashboardView:
		return s.updateDashboard(msg)
	case UploadView:
		return s.updateUpload(msg)
	case ProcessingView:
		return s.updateProcessing(msg)
	case ViewerView:
		return s.updateViewer(msg)
	}
	return s, nil
}

// View implements tea.Model.
func (s *Shell) View() string {
	if s.quit {
		return ""
	}
	switch s.view.(type) {
	case UploadView:
		return s.upload.View()
	case ProcessingView:
		return s.processing.View()
	case ViewerView:
		return s.viewer.View()
	default:
		return s.dashboard.View()
	}
}

func (s *Shell) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := s.dashboard.Update(msg)

	if s.dashboard.Cancelled() {
		s.quit = true
		return s, tea.Quit
	}

	switch s.dashboard.Action() {
	case screens.ActionUpload:
		return s.toUpload()
	case screens.ActionOpen:
		return s.openCase(s.dashboard.Selected())
	}
	return s, cmd
}

func (s *Shell) updateUpload(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := s.upload.Update(msg)

	if s.upload.Cancelled() {
		return s.toDashboard("")
	}
	if s.upload.Done() {
		path, size := s.upload.File()
		return s.startJob(path, size)
	}
	return s, cmd
}

func (s *Shell) updateProcessing(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := s.processing.Update(msg)

	if s.processing.Cancelled() {
		s.processing = nil
		return s.toDashboard("Analysis abandoned")
	}
	if !s.processing.Done() {
		return s, cmd
	}

	pc, err := s.processing.Result()
	s.processing = nil
	if err != nil {
		return s.toDashboard(fmt.Sprintf("Analysis failed: %v", err))
	}
	if err := s.cfg.Roster.Add(pc); err != nil {
		return s.toDashboard(fmt.Sprintf("Could not add %s: %v", pc.ID, err))
	}
	return s.openCase(pc.ID)
}

func (s *Shell) updateViewer(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := s.viewer.Update(msg)

	if s.viewer.Closed() {
		s.viewer = nil
		return s.toDashboard("")
	}
	return s, cmd
}

func (s *Shell) toDashboard(notice string) (tea.Model, tea.Cmd) {
	s.view = DashboardView{}
	s.upload = nil
	s.dashboard.Refresh()
	s.dashboard.SetNotice(notice)
	return s, nil
}

func (s *Shell) toUpload() (tea.Model, tea.Cmd) {
	s.view = UploadView{}
	s.upload = screens.NewUploadScreen()
	s.resize(s.upload)
	return s, s.upload.Init()
}

func (s *Shell) startJob(path string, size int64) (tea.Model, tea.Cmd) {
	upload := analysis.NewUpload(filepath.Base(path), size, s.cfg.Now())
	job := analysis.NewJob(upload, s.cfg.Provider, s.cfg.Job)

	s.upload = nil
	s.processing = screens.NewProcessingScreen(job)
	s.view = ProcessingView{JobID: job.ID()}
	s.resize(s.processing)
	return s, s.processing.Init()
}

func (s *Shell) openCase(id string) (tea.Model, tea.Cmd) {
	pc, ok := s.cfg.Roster.Get(id)
	if !ok {
		return s.toDashboard(fmt.Sprintf("Case %s not found", id))
	}

	ws := workstation.Open(pc, workstation.WithClock(s.cfg.Now))
	log.Printf("opened %s", pc.ID)

	s.viewer = screens.NewViewerScreen(ws, s.cfg.Viewer)
	s.view = ViewerView{PatientID: pc.ID}
	s.resize(s.viewer)
	return s, s.viewer.Init()
}

// resize hands the known window size to a newly created screen.
func (s *Shell) resize(m tea.Model) {
	if s.width > 0 {
		m.Update(tea.WindowSizeMsg{Width: s.width, Height: s.height})
	}
}

// teardown stops the running job and closes the open session.
func (s *Shell) teardown() {
	if s.processing != nil {
		s.processing.Stop()
	}
	if s.viewer != nil {
		s.viewer.Close()
	}
}

// Run starts the interactive shell and blocks until the user quits.
func Run(cfg Config) error {
	sh := New(cfg)
	p := tea.NewProgram(sh, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		sh.teardown()
		return fmt.Errorf("running shell: %w", err)
	}
	sh.teardown()
	return nil
}
