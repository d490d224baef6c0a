// Package viewer holds the slice navigation state of an open case.
package viewer

import (
	"github.com/mrsinham/neurolung/internal/casefile"
	"github.com/mrsinham/neurolung/internal/render"
)

const (
	MinSlice     = render.MinSlice
	MaxSlice     = render.MaxSlice
	DefaultSlice = 50
	FadeWindow   = render.FadeWindow
)

// State is the navigation state of the viewer.
type State struct {
	Slice        int
	Heatmap      bool
	Segmentation bool
}

// Initial returns the state a freshly opened case starts in.
func Initial() State {
	return State{Slice: DefaultSlice, Heatmap: true}
}

// Controller owns a State and reports every change to a redraw callback.
// It is not safe for concurrent use; callers drive it from one event loop.
type Controller struct {
	state  State
	redraw func(State)
}

// New returns a controller in the initial state. redraw may be nil.
func New(redraw func(State)) *Controller {
	return &Controller{state: Initial(), redraw: redraw}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// SetSlice moves to slice n, clamped to [MinSlice, MaxSlice].
func (c *Controller) SetSlice(n int) {
	c.state.Slice = render.ClampSlice(n)
	c.changed()
}

// Step moves delta slices forward (or back when negative).
func (c *Controller) Step(delta int) {
	c.SetSlice(c.state.Slice + delta)
}

// ToggleHeatmap flips the heatmap overlay.
func (c *Controller) ToggleHeatmap() {
	c.state.Heatmap = !c.state.Heatmap
	c.changed()
}

// ToggleSegmentation flips the segmentation flag.
func (c *Controller) ToggleSegmentation() {
	c.state.Segmentation = !c.state.Segmentation
	c.changed()
}

// JumpToNodule moves to the reference slice of n.
func (c *Controller) JumpToNodule(n casefile.Nodule) {
	c.SetSlice(n.Slice)
}

// Reset restores the initial state.
func (c *Controller) Reset() {
	c.state = Initial()
	c.changed()
}

// Frame returns the render input for the current state.
func (s State) Frame(nodules []casefile.Nodule) render.Frame {
	return render.Frame{
		Slice:        s.Slice,
		Nodules:      nodules,
		Heatmap:      s.Heatmap,
		Segmentation: s.Segmentation,
	}
}

func (c *Controller) changed() {
	if c.redraw != nil {
		c.redraw(c.state)
	}
}
