package screens

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/neurolung/cmd/neurolung/shell/components"
)

// UploadScreen asks for the scan file that starts an analysis
type UploadScreen struct {
	form      *huh.Form
	helpPanel *components.HelpPanel
	path      string
	info      os.FileInfo
	notice    string
	done      bool
	cancelled bool
	width     int
}

// NewUploadScreen creates the upload form
func NewUploadScreen() *UploadScreen {
	s := &UploadScreen{helpPanel: components.NewHelpPanel("upload")}
	s.form = s.newForm()
	return s
}

func (s *UploadScreen) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("scan_path").
				Title("Upload DICOM Series").
				Description("Path of the scan file to analyze").
				Placeholder("e.g., ./scans/chest_ct.zip").
				Value(&s.path).
				Validate(ValidateScanPath),
		),
	).WithShowHelp(false).WithShowErrors(true)
}

// ValidateScanPath accepts an existing regular file. The content is not read.
func ValidateScanPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("a scan file is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	return nil
}

// Init implements tea.Model
func (s *UploadScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *UploadScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.cancelled = true
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.helpPanel.SetWidth(min(msg.Width, 72))
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted && !s.done {
		return s, tea.Batch(cmd, s.finish())
	}

	return s, cmd
}

// finish records the submitted file. A file that vanished after validation
// brings back a fresh form so the user can pick another one or leave.
func (s *UploadScreen) finish() tea.Cmd {
	s.path = strings.TrimSpace(s.path)
	info, err := os.Stat(s.path)
	if err != nil {
		s.notice = fmt.Sprintf("%s is no longer available", s.path)
		s.form = s.newForm()
		return s.form.Init()
	}
	s.info = info
	s.notice = ""
	s.done = true
	return nil
}

// View implements tea.Model
func (s *UploadScreen) View() string {
	title := components.TitleStyle.Render("NEUROLUNG AI - New Analysis")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		s.form.View(),
		s.noticeView(),
		"",
		s.helpPanel.View(),
		"",
		components.HintStyle.Render("Enter: Start analysis | Esc: Back"),
	)
}

func (s *UploadScreen) noticeView() string {
	if s.notice == "" {
		return ""
	}
	return components.ErrorStyle.Render(s.notice)
}

// Done returns true once a valid file was submitted
func (s *UploadScreen) Done() bool {
	return s.done
}

// Cancelled returns true if the user went back
func (s *UploadScreen) Cancelled() bool {
	return s.cancelled
}

// File returns the submitted path and its size
func (s *UploadScreen) File() (string, int64) {
	if s.info == nil {
		return s.path, 0
	}
	return s.path, s.info.Size()
}
