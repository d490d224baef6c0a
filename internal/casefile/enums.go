package casefile

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Status is the lifecycle status of a case.
type Status int

const (
	StatusPending Status = iota
	StatusProcessing
	StatusAnalyzed
)

// String returns the display form of the status
func (s Status) String() string {
	switch s {
	case StatusProcessing:
		return "Processing"
	case StatusAnalyzed:
		return "Analyzed"
	default:
		return "Pending"
	}
}

// ParseStatus parses a string into a Status
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "processing":
		return StatusProcessing, nil
	case "analyzed":
		return StatusAnalyzed, nil
	default:
		return StatusPending, fmt.Errorf("invalid status: %s (valid: Pending, Processing, Analyzed)", s)
	}
}

// Risk is the risk category assigned to a case.
type Risk int

const (
	RiskLow Risk = iota
	RiskHigh
	RiskCritical
)

// String returns the display form of the risk
func (r Risk) String() string {
	switch r {
	case RiskHigh:
		return "High"
	case RiskCritical:
		return "Critical"
	default:
		return "Low"
	}
}

// ParseRisk parses a string into a Risk
func ParseRisk(s string) (Risk, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, nil
	case "high":
		return RiskHigh, nil
	case "critical":
		return RiskCritical, nil
	default:
		return RiskLow, fmt.Errorf("invalid risk: %s (valid: Low, High, Critical)", s)
	}
}

// GenerateRisk draws a risk with the demo distribution.
// Distribution: 30% Low, 40% High, 30% Critical
func GenerateRisk(rng *rand.Rand) Risk {
	r := rng.Float64()
	if r <= 0.3 {
		return RiskLow
	} else if r <= 0.7 {
		return RiskHigh
	}
	return RiskCritical
}

// Histology is a tumor-type class the analysis assigns a probability to.
type Histology int

const (
	Adenocarcinoma Histology = iota
	Squamous
	Benign
)

// HistologyClasses returns the fixed class set in display order.
func HistologyClasses() []Histology {
	return []Histology{Adenocarcinoma, Squamous, Benign}
}

// String returns the key used in roster files
func (h Histology) String() string {
	switch h {
	case Squamous:
		return "squamous"
	case Benign:
		return "benign"
	default:
		return "adenocarcinoma"
	}
}

// Label returns the short label shown in the findings panel.
func (h Histology) Label() string {
	switch h {
	case Squamous:
		return "Squamous Cell"
	case Benign:
		return "Benign"
	default:
		return "Adenocarcinoma"
	}
}

// ReportLabel returns the label used in exported reports.
func (h Histology) ReportLabel() string {
	switch h {
	case Squamous:
		return "Squamous Cell Carcinoma"
	case Benign:
		return "Benign/Non-Malignant"
	default:
		return "Adenocarcinoma"
	}
}

// ParseHistology parses a roster key into a Histology
func ParseHistology(s string) (Histology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "adenocarcinoma":
		return Adenocarcinoma, nil
	case "squamous":
		return Squamous, nil
	case "benign":
		return Benign, nil
	default:
		return Adenocarcinoma, fmt.Errorf("invalid histology class: %s (valid: adenocarcinoma, squamous, benign)", s)
	}
}
