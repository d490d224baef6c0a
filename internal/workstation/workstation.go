// Package workstation ties one open case to its viewer state, the scan
// surface and the findings panel.
//
// A Workstation is created when a case is opened and dropped when the viewer
// closes, so viewer state never leaks from one case into the next. Like the
// viewer controller it is driven from a single event loop.
package workstation

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/mrsinham/neurolung/internal/casefile"
	"github.com/mrsinham/neurolung/internal/findings"
	"github.com/mrsinham/neurolung/internal/render"
	"github.com/mrsinham/neurolung/internal/report"
	"github.com/mrsinham/neurolung/internal/viewer"
)

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("workstation session is closed")
	// ErrNoSuchNodule is returned when a nodule row index is out of range.
	ErrNoSuchNodule = errors.New("no such nodule")
)

// Workstation is an open review session for one case.
type Workstation struct {
	pc       casefile.PatientCase
	nodules  []casefile.Nodule
	ctrl     *viewer.Controller
	renderer *render.Renderer
	surface  *image.RGBA
	now      func() time.Time
	renders  int
	closed   bool
}

// Option configures a session.
type Option func(*Workstation)

// WithRenderer draws with r instead of a fresh renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(w *Workstation) {
		if r != nil {
			w.renderer = r
		}
	}
}

// WithClock replaces time.Now for report dates.
func WithClock(now func() time.Time) Option {
	return func(w *Workstation) {
		if now != nil {
			w.now = now
		}
	}
}

// Open starts a session for pc in the initial viewer state and draws the
// first frame.
func Open(pc casefile.PatientCase, opts ...Option) *Workstation {
	w := &Workstation{
		pc:       pc,
		nodules:  pc.Results().Nodules,
		renderer: render.New(),
		surface:  render.NewSurface(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.ctrl = viewer.New(w.redraw)
	w.redraw(w.ctrl.State())
	return w
}

func (w *Workstation) redraw(s viewer.State) {
	if w.closed {
		return
	}
	w.renderer.Render(w.surface, s.Frame(w.nodules))
	w.renders++
}

// Case returns the case under review.
func (w *Workstation) Case() casefile.PatientCase {
	return w.pc
}

// State returns the current viewer state.
func (w *Workstation) State() viewer.State {
	return w.ctrl.State()
}

// Surface returns the drawn scan, or nil once the session is closed.
func (w *Workstation) Surface() *image.RGBA {
	return w.surface
}

// Frame returns the render input for the current state.
func (w *Workstation) Frame() render.Frame {
	return w.ctrl.State().Frame(w.nodules)
}

// Panel returns the findings panel of the case.
func (w *Workstation) Panel() findings.Panel {
	return findings.Project(w.pc)
}

// Renders returns how many times the surface has been drawn.
func (w *Workstation) Renders() int {
	return w.renders
}

// Closed reports whether Close was called.
func (w *Workstation) Closed() bool {
	return w.closed
}

// SetSlice moves to slice n, clamped to the scan range. No-op once closed.
func (w *Workstation) SetSlice(n int) {
	if w.closed {
		return
	}
	w.ctrl.SetSlice(n)
}

// Step moves delta slices from the current one.
func (w *Workstation) Step(delta int) {
	if w.closed {
		return
	}
	w.ctrl.Step(delta)
}

// ToggleHeatmap switches the heatmap overlay.
func (w *Workstation) ToggleHeatmap() {
	if w.closed {
		return
	}
	w.ctrl.ToggleHeatmap()
}

// ToggleSegmentation switches the segmentation flag. It does not change the drawing.
func (w *Workstation) ToggleSegmentation() {
	if w.closed {
		return
	}
	w.ctrl.ToggleSegmentation()
}

// JumpToNodule moves to the reference slice of the nodule at row index.
func (w *Workstation) JumpToNodule(index int) error {
	if w.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(w.nodules) {
		return fmt.Errorf("%w: row %d of %d", ErrNoSuchNodule, index, len(w.nodules))
	}
	w.ctrl.JumpToNodule(w.nodules[index])
	return nil
}

// Report formats the clinical report dated with the session clock.
func (w *Workstation) Report() string {
	return report.Format(w.pc, w.now())
}

// ExportReport writes the report into dir and returns the file path.
func (w *Workstation) ExportReport(dir string) (string, error) {
	if w.closed {
		return "", ErrClosed
	}
	path, err := report.Save(dir, w.pc, w.now())
	if err != nil {
		return "", fmt.Errorf("export report for %s: %w", w.pc.ID, err)
	}
	return path, nil
}

// Close ends the session and releases the surface.
func (w *Workstation) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	w.surface = nil
	return nil
}
