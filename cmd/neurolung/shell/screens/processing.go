package screens

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mrsinham/neurolung/cmd/neurolung/shell/components"
	"github.com/mrsinham/neurolung/internal/analysis"
	"github.com/mrsinham/neurolung/internal/casefile"
)

// JobEventMsg carries one event of a running analysis job
type JobEventMsg struct {
	Event  analysis.Event
	events <-chan analysis.Event
}

// JobClosedMsg is sent when a job's event stream ends without a final event
type JobClosedMsg struct {
	JobID uuid.UUID
}

// ModelVersion is the model label shown while a job runs.
const ModelVersion = "v2.4.1 (MAE-ViT-L)"

var (
	progressPercentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("63")).
				Bold(true)

	progressStageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	progressInfoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))

	pipelineActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("33")).
				Bold(true)
)

// ProcessingScreen follows an analysis job until it produces a case
type ProcessingScreen struct {
	job       *analysis.Job
	cancel    context.CancelFunc
	progress  int
	stage     string
	startTime time.Time
	result    casefile.PatientCase
	err       error
	done      bool
	cancelled bool
	width     int
}

// NewProcessingScreen creates the screen for job. The job starts in Init.
func NewProcessingScreen(job *analysis.Job) *ProcessingScreen {
	return &ProcessingScreen{
		job:   job,
		stage: analysis.StageLabel(0),
	}
}

// waitForEvent reads the next job event as a tea message.
func waitForEvent(id uuid.UUID, events <-chan analysis.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return JobClosedMsg{JobID: id}
		}
		return JobEventMsg{Event: ev, events: events}
	}
}

// Init implements tea.Model
func (s *ProcessingScreen) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.startTime = time.Now()
	log.Printf("analysis %s started for %s", s.job.ID(), s.job.Upload().FileName)
	return waitForEvent(s.job.ID(), s.job.Start(ctx))
}

// Update implements tea.Model
func (s *ProcessingScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.Stop()
			s.cancelled = true
			log.Printf("analysis %s abandoned at %d%%", s.job.ID(), s.progress)
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
	case JobEventMsg:
		if s.cancelled || s.done || msg.Event.JobID != s.job.ID() {
			return s, nil
		}
		s.apply(msg.Event)
		if s.done {
			return s, nil
		}
		return s, waitForEvent(s.job.ID(), msg.events)
	}

	return s, nil
}

func (s *ProcessingScreen) apply(ev analysis.Event) {
	if !ev.Done {
		s.progress = ev.Progress
		s.stage = ev.Stage
		return
	}
	s.done = true
	s.result = ev.Case
	s.err = ev.Err
	s.Stop()
	if ev.Err != nil {
		log.Printf("analysis %s failed: %v", s.job.ID(), ev.Err)
		return
	}
	log.Printf("analysis %s produced %s", s.job.ID(), ev.Case.ID)
}

// Stop cancels the job. It is safe to call more than once.
func (s *ProcessingScreen) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// View implements tea.Model
func (s *ProcessingScreen) View() string {
	title := components.TitleStyle.Render("Analyzing CT Scan")

	barWidth := 40
	if s.width > 60 {
		barWidth = min(60, s.width/2)
	}

	elapsed := time.Duration(0)
	if !s.startTime.IsZero() {
		elapsed = time.Since(s.startTime)
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	sb.WriteString(components.Bar(float64(s.progress), barWidth))
	sb.WriteString(" ")
	sb.WriteString(progressPercentStyle.Render(fmt.Sprintf("%d%%", s.progress)))
	sb.WriteString("\n\n")
	sb.WriteString(progressStageStyle.Render(s.stage))
	sb.WriteString("\n\n")
	sb.WriteString(progressInfoStyle.Render("Pipeline Status: "))
	sb.WriteString(pipelineActiveStyle.Render("Active"))
	sb.WriteString("\n")
	sb.WriteString(progressInfoStyle.Render("Model Version:   " + ModelVersion))
	sb.WriteString("\n")
	sb.WriteString(progressInfoStyle.Render(fmt.Sprintf("Job:             %s", s.job.ID())))
	sb.WriteString("\n")
	sb.WriteString(progressInfoStyle.Render(fmt.Sprintf("Elapsed:         %.1fs", elapsed.Seconds())))
	sb.WriteString("\n\n")
	sb.WriteString(components.HintStyle.Render("Press Esc to abandon"))

	return sb.String()
}

// JobID returns the identifier of the followed job
func (s *ProcessingScreen) JobID() uuid.UUID {
	return s.job.ID()
}

// Progress returns the last reported progress
func (s *ProcessingScreen) Progress() int {
	return s.progress
}

// Done returns true once the job produced a case or failed
func (s *ProcessingScreen) Done() bool {
	return s.done
}

// Cancelled returns true if the user abandoned the job
func (s *ProcessingScreen) Cancelled() bool {
	return s.cancelled
}

// Result returns the analyzed case, or the error the job ended with
func (s *ProcessingScreen) Result() (casefile.PatientCase, error) {
	return s.result, s.err
}
