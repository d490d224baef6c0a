// Package report formats and saves the plain-text clinical report of a case.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrsinham/neurolung/internal/casefile"
)

// MIMEType is the media type of an exported report.
const MIMEType = "text/plain"

const ruleWidth = 60

var rule = strings.Repeat("-", ruleWidth)

// Format returns the report text for pc. analysisDate is printed as the
// analysis date. Cases without analysis use the fallback values.
func Format(pc casefile.PatientCase, analysisDate time.Time) string {
	res := pc.Results()

	var sb strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	line("NEUROLUNG AI - CLINICAL REPORT")
	line(rule)
	line("PATIENT DETAILS")
	line("ID: %s", pc.ID)
	line("Name: %s", pc.Name)
	line("Scan Date: %s", pc.ScanDateString())
	line("Analysis Date: %s", analysisDate.Format(casefile.DateLayout))
	line("")
	line("DIAGNOSTIC SUMMARY")
	line(rule)
	line("Predicted Stage: %s", pc.Stage)
	line("Risk Assessment: %s", pc.Risk)
	line("")
	line("TNM CLASSIFICATION")
	line("Tumor (T): %s", res.TNM.T)
	line("Node (N):  %s", res.TNM.N)
	line("Metastasis (M): %s", res.TNM.M)
	line("")
	line("AI PROBABILITY ANALYSIS")
	for _, h := range casefile.HistologyClasses() {
		line("%s: %.1f%%", h.ReportLabel(), res.Probability(h)*100)
	}
	line("")
	line("DETECTED NODULES")
	line(rule)
	for i, n := range res.Nodules {
		line("")
		line("Nodule #%d", i+1)
		line("  Location:   %s", n.Location)
		line("  Size:       %s", n.Size)
		line("  Slice Ref:  #%d", n.Slice)
		line("  Confidence: %.1f%%", n.Confidence*100)
	}
	line(rule)
	line("CONFIDENTIAL: This report was generated by an AI Diagnostic Support System.")
	line("Clinical correlation is required.")

	return sb.String()
}

// FileName returns the download name of the report for pc.
func FileName(pc casefile.PatientCase) string {
	return pc.ID + "_Report.txt"
}

// Save writes the report for pc into dir, creating dir when needed, and
// returns the written path.
func Save(dir string, pc casefile.PatientCase, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	path := filepath.Join(dir, FileName(pc))
	if err := os.WriteFile(path, []byte(Format(pc, now)), 0644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}
