// Package casefile holds the patient case records consumed by every view of
// the workstation.
package casefile

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for scan dates.
const DateLayout = "2006-01-02"

var (
	// ErrMissingAnalysis is returned when an analyzed case carries no analysis result.
	ErrMissingAnalysis = errors.New("analyzed case has no analysis result")
	// ErrDuplicateID is returned when a roster already holds a case with the same ID.
	ErrDuplicateID = errors.New("duplicate patient ID")
)

// PatientCase is a single patient scan and, once analyzed, its findings.
type PatientCase struct {
	ID       string
	Name     string
	Age      int
	ScanDate time.Time
	Status   Status
	Risk     Risk
	Stage    string // Free-form stage label, "-" when unknown

	// Analysis is nil until the case has been analyzed.
	Analysis *AnalysisResult
}

// AnalysisResult holds the diagnostic payload of an analyzed case.
type AnalysisResult struct {
	// Probabilities are not normalized; each value lies in [0,1].
	Probabilities map[Histology]float64
	TNM           TNM
	// Nodules are kept in display order. The first nodule is the one drawn by the viewer.
	Nodules []Nodule
}

// TNM is the Tumor/Node/Metastasis staging triplet.
type TNM struct {
	T string
	N string
	M string
}

// Codes returns the triplet in T, N, M order.
func (t TNM) Codes() [3]string {
	return [3]string{t.T, t.N, t.M}
}

// Nodule is a detected region of interest.
type Nodule struct {
	ID         int
	Location   string  // e.g. "RUL (Right Upper Lobe)"
	Size       string  // e.g. "24mm"
	Confidence float64 // [0,1]
	Slice      int     // Reference slice the nodule is centered on
}

// FallbackAnalysis returns the zero-value analysis shown for cases without results.
func FallbackAnalysis() AnalysisResult {
	probs := make(map[Histology]float64, len(HistologyClasses()))
	for _, h := range HistologyClasses() {
		probs[h] = 0
	}
	return AnalysisResult{
		Probabilities: probs,
		TNM:           TNM{T: "-", N: "-", M: "-"},
		Nodules:       []Nodule{},
	}
}

// Results returns the case analysis, or the fallback when the case has none.
func (pc PatientCase) Results() AnalysisResult {
	if pc.Analysis == nil {
		return FallbackAnalysis()
	}
	return *pc.Analysis
}

// Probability returns the probability for a histology class, 0 when absent.
func (a AnalysisResult) Probability(h Histology) float64 {
	return a.Probabilities[h]
}

// FirstNodule returns the nodule drawn by the viewer, if any.
func (a AnalysisResult) FirstNodule() (Nodule, bool) {
	if len(a.Nodules) == 0 {
		return Nodule{}, false
	}
	return a.Nodules[0], true
}

// ScanDateString returns the scan date formatted with DateLayout.
func (pc PatientCase) ScanDateString() string {
	if pc.ScanDate.IsZero() {
		return "-"
	}
	return pc.ScanDate.Format(DateLayout)
}

// Validate checks the data model invariants of a case.
func (pc PatientCase) Validate() error {
	if pc.ID == "" {
		return fmt.Errorf("patient ID is required")
	}
	if pc.Status == StatusAnalyzed && pc.Analysis == nil {
		return fmt.Errorf("patient %s: %w", pc.ID, ErrMissingAnalysis)
	}
	if pc.Analysis == nil {
		return nil
	}
	for h, p := range pc.Analysis.Probabilities {
		if p < 0 || p > 1 {
			return fmt.Errorf("patient %s: %s probability %.3f outside [0,1]", pc.ID, h, p)
		}
	}
	seen := make(map[int]bool, len(pc.Analysis.Nodules))
	for _, n := range pc.Analysis.Nodules {
		if seen[n.ID] {
			return fmt.Errorf("patient %s: duplicate nodule id %d", pc.ID, n.ID)
		}
		seen[n.ID] = true
		if n.Confidence < 0 || n.Confidence > 1 {
			return fmt.Errorf("patient %s: nodule %d confidence %.3f outside [0,1]", pc.ID, n.ID, n.Confidence)
		}
	}
	return nil
}

// MustDate parses a DateLayout date and panics on malformed input.
// Intended for literal dates in built-in data.
func MustDate(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(fmt.Sprintf("invalid date %q: %v", s, err))
	}
	return d
}
