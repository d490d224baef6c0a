// Package findings projects a patient case into the findings sidebar: stage,
// TNM triplet, histology probability bars and the clickable nodule list.
package findings

import (
	"fmt"

	"github.com/mrsinham/neurolung/internal/casefile"
)

// Panel is the display model of the findings sidebar.
type Panel struct {
	Stage string
	TNM   [3]string
	Bars  []Bar
	Rows  []Row
}

// Bar is one histology probability.
type Bar struct {
	Class        casefile.Histology
	Label        string
	Probability  float64
	WidthPercent float64 // Probability × 100
	Text         string  // Whole-number percentage, e.g. "87%"
}

// Row is one entry of the nodule list. Selecting it jumps to Slice.
type Row struct {
	NoduleID int
	Location string
	Size     string
	Slice    int
	Action   string
}

// Title returns the row heading, e.g. "Nodule #2".
func (r Row) Title() string {
	return fmt.Sprintf("Nodule #%d", r.NoduleID)
}

// Project builds the panel for pc. Cases without analysis get the fallback
// values: zero probabilities, "-" TNM and no rows.
func Project(pc casefile.PatientCase) Panel {
	res := pc.Results()

	p := Panel{
		Stage: pc.Stage,
		TNM:   res.TNM.Codes(),
		Bars:  make([]Bar, 0, len(casefile.HistologyClasses())),
		Rows:  make([]Row, 0, len(res.Nodules)),
	}
	if p.Stage == "" {
		p.Stage = "-"
	}

	for _, h := range casefile.HistologyClasses() {
		prob := res.Probability(h)
		p.Bars = append(p.Bars, Bar{
			Class:        h,
			Label:        h.Label(),
			Probability:  prob,
			WidthPercent: prob * 100,
			Text:         fmt.Sprintf("%.0f%%", prob*100),
		})
	}

	for _, n := range res.Nodules {
		p.Rows = append(p.Rows, Row{
			NoduleID: n.ID,
			Location: n.Location,
			Size:     n.Size,
			Slice:    n.Slice,
			Action:   fmt.Sprintf("Go to Slice %d", n.Slice),
		})
	}

	return p
}
