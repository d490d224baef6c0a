package casefile

import (
	"math/rand/v2"
	"testing"
)

func TestParseStatus_Valid(t *testing.T) {
	tests := []struct {
		input    string
		expected Status
	}{
		{"Pending", StatusPending},
		{"processing", StatusProcessing},
		{"ANALYZED", StatusAnalyzed},
		{" analyzed ", StatusAnalyzed},
	}

	for _, tc := range tests {
		result, err := ParseStatus(tc.input)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned error: %v", tc.input, err)
		}
		if result != tc.expected {
			t.Errorf("ParseStatus(%q) = %v, want %v", tc.input, result, tc.expected)
		}
	}
}

func TestParseStatus_Invalid(t *testing.T) {
	if _, err := ParseStatus("done"); err == nil {
		t.Error("ParseStatus(done) should return error")
	}
}

func TestParseRisk(t *testing.T) {
	tests := []struct {
		input    string
		expected Risk
		wantErr  bool
	}{
		{"Low", RiskLow, false},
		{"high", RiskHigh, false},
		{"CRITICAL", RiskCritical, false},
		{"severe", RiskLow, true},
	}

	for _, tc := range tests {
		result, err := ParseRisk(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseRisk(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && result != tc.expected {
			t.Errorf("ParseRisk(%q) = %v, want %v", tc.input, result, tc.expected)
		}
	}
}

func TestEnumStringRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusAnalyzed} {
		got, err := ParseStatus(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStatus(%s) = %v, %v", s, got, err)
		}
	}
	for _, r := range []Risk{RiskLow, RiskHigh, RiskCritical} {
		got, err := ParseRisk(r.String())
		if err != nil || got != r {
			t.Errorf("ParseRisk(%s) = %v, %v", r, got, err)
		}
	}
	for _, h := range HistologyClasses() {
		got, err := ParseHistology(h.String())
		if err != nil || got != h {
			t.Errorf("ParseHistology(%s) = %v, %v", h, got, err)
		}
	}
}

func TestHistologyLabels(t *testing.T) {
	tests := []struct {
		class  Histology
		label  string
		report string
	}{
		{Adenocarcinoma, "Adenocarcinoma", "Adenocarcinoma"},
		{Squamous, "Squamous Cell", "Squamous Cell Carcinoma"},
		{Benign, "Benign", "Benign/Non-Malignant"},
	}

	for _, tc := range tests {
		if got := tc.class.Label(); got != tc.label {
			t.Errorf("%s.Label() = %q, want %q", tc.class, got, tc.label)
		}
		if got := tc.class.ReportLabel(); got != tc.report {
			t.Errorf("%s.ReportLabel() = %q, want %q", tc.class, got, tc.report)
		}
	}
}

func TestHistologyClasses_Order(t *testing.T) {
	classes := HistologyClasses()
	want := []Histology{Adenocarcinoma, Squamous, Benign}
	if len(classes) != len(want) {
		t.Fatalf("HistologyClasses() has %d entries, want %d", len(classes), len(want))
	}
	for i := range want {
		if classes[i] != want[i] {
			t.Errorf("HistologyClasses()[%d] = %v, want %v", i, classes[i], want[i])
		}
	}
}

func TestGenerateRisk_Distribution(t *testing.T) {
	counts := map[Risk]int{}
	rng := rand.New(rand.NewPCG(42, 42))

	for i := 0; i < 1000; i++ {
		counts[GenerateRisk(rng)]++
	}

	// Expect roughly 30% Low, 40% High, 30% Critical
	if counts[RiskLow] < 200 || counts[RiskLow] > 400 {
		t.Errorf("Low count %d outside expected range [200, 400]", counts[RiskLow])
	}
	if counts[RiskHigh] < 300 || counts[RiskHigh] > 500 {
		t.Errorf("High count %d outside expected range [300, 500]", counts[RiskHigh])
	}
	if counts[RiskCritical] < 200 || counts[RiskCritical] > 400 {
		t.Errorf("Critical count %d outside expected range [200, 400]", counts[RiskCritical])
	}
}
