package casefile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RosterFile represents a roster file for YAML serialization.
type RosterFile struct {
	Cases []CaseYAML `yaml:"cases"`
}

// CaseYAML holds a patient case with YAML tags.
type CaseYAML struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Age      int           `yaml:"age"`
	ScanDate string        `yaml:"scan_date"`
	Status   string        `yaml:"status"`
	Risk     string        `yaml:"risk"`
	Stage    string        `yaml:"stage"`
	Analysis *AnalysisYAML `yaml:"analysis,omitempty"`
}

// AnalysisYAML holds an analysis result with YAML tags.
type AnalysisYAML struct {
	Probabilities map[string]float64 `yaml:"probabilities"`
	TNM           TNMYAML            `yaml:"tnm"`
	Nodules       []NoduleYAML       `yaml:"nodules"`
}

// TNMYAML holds the staging triplet with YAML tags.
type TNMYAML struct {
	T string `yaml:"t"`
	N string `yaml:"n"`
	M string `yaml:"m"`
}

// NoduleYAML holds a nodule with YAML tags.
type NoduleYAML struct {
	ID         int     `yaml:"id"`
	Location   string  `yaml:"location"`
	Size       string  `yaml:"size"`
	Confidence float64 `yaml:"confidence"`
	Slice      int     `yaml:"slice"`
}

// LoadRosterYAML reads a roster file. Every case is validated and IDs must be unique.
func LoadRosterYAML(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}

	var file RosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse roster file: %w", err)
	}

	roster := &Roster{index: make(map[string]int, len(file.Cases))}
	for i, cy := range file.Cases {
		pc, err := cy.toCase()
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}
		if err := roster.Append(pc); err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}
	}
	return roster, nil
}

// SaveRosterYAML writes the roster to path, replacing any existing file.
func SaveRosterYAML(r *Roster, path string) error {
	file := RosterFile{Cases: make([]CaseYAML, 0, r.Len())}
	for _, pc := range r.All() {
		file.Cases = append(file.Cases, fromCase(pc))
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write roster file: %w", err)
	}
	return nil
}

func (cy CaseYAML) toCase() (PatientCase, error) {
	status, err := ParseStatus(cy.Status)
	if err != nil {
		return PatientCase{}, err
	}
	risk, err := ParseRisk(cy.Risk)
	if err != nil {
		return PatientCase{}, err
	}

	pc := PatientCase{
		ID:     cy.ID,
		Name:   cy.Name,
		Age:    cy.Age,
		Status: status,
		Risk:   risk,
		Stage:  cy.Stage,
	}
	if pc.Stage == "" {
		pc.Stage = "-"
	}
	if cy.ScanDate != "" {
		d, err := time.Parse(DateLayout, cy.ScanDate)
		if err != nil {
			return PatientCase{}, fmt.Errorf("invalid scan date %q: %w", cy.ScanDate, err)
		}
		pc.ScanDate = d
	}

	if cy.Analysis != nil {
		a := &AnalysisResult{
			Probabilities: make(map[Histology]float64, len(HistologyClasses())),
			TNM:           TNM{T: cy.Analysis.TNM.T, N: cy.Analysis.TNM.N, M: cy.Analysis.TNM.M},
			Nodules:       make([]Nodule, 0, len(cy.Analysis.Nodules)),
		}
		for key, p := range cy.Analysis.Probabilities {
			h, err := ParseHistology(key)
			if err != nil {
				return PatientCase{}, err
			}
			a.Probabilities[h] = p
		}
		for _, n := range cy.Analysis.Nodules {
			a.Nodules = append(a.Nodules, Nodule(n))
		}
		pc.Analysis = a
	}

	return pc, nil
}

func fromCase(pc PatientCase) CaseYAML {
	cy := CaseYAML{
		ID:     pc.ID,
		Name:   pc.Name,
		Age:    pc.Age,
		Status: pc.Status.String(),
		Risk:   pc.Risk.String(),
		Stage:  pc.Stage,
	}
	if !pc.ScanDate.IsZero() {
		cy.ScanDate = pc.ScanDate.Format(DateLayout)
	}
	if pc.Analysis != nil {
		ay := &AnalysisYAML{
			Probabilities: make(map[string]float64, len(pc.Analysis.Probabilities)),
			TNM:           TNMYAML{T: pc.Analysis.TNM.T, N: pc.Analysis.TNM.N, M: pc.Analysis.TNM.M},
			Nodules:       make([]NoduleYAML, 0, len(pc.Analysis.Nodules)),
		}
		for h, p := range pc.Analysis.Probabilities {
			ay.Probabilities[h.String()] = p
		}
		for _, n := range pc.Analysis.Nodules {
			ay.Nodules = append(ay.Nodules, NoduleYAML(n))
		}
		cy.Analysis = ay
	}
	return cy
}
