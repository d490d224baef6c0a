package casefile

// DemoRoster returns the built-in cases shown when no roster file is given.
func DemoRoster() []PatientCase {
	return []PatientCase{
		{
			ID:       "PT-2024-089",
			Name:     "Eleanor Vance",
			Age:      64,
			ScanDate: MustDate("2024-05-14"),
			Status:   StatusAnalyzed,
			Risk:     RiskHigh,
			Stage:    "IIIA",
			Analysis: &AnalysisResult{
				Probabilities: map[Histology]float64{Adenocarcinoma: 0.87, Squamous: 0.10, Benign: 0.03},
				TNM:           TNM{T: "T2a", N: "N1", M: "M0"},
				Nodules: []Nodule{
					{ID: 1, Location: "RUL (Right Upper Lobe)", Size: "24mm", Confidence: 0.92, Slice: 45},
					{ID: 2, Location: "RLL (Right Lower Lobe)", Size: "8mm", Confidence: 0.65, Slice: 62},
				},
			},
		},
		{
			ID:       "PT-2024-092",
			Name:     "Hugh Crain",
			Age:      58,
			ScanDate: MustDate("2024-05-15"),
			Status:   StatusAnalyzed,
			Risk:     RiskLow,
			Stage:    "IA",
			Analysis: &AnalysisResult{
				Probabilities: map[Histology]float64{Adenocarcinoma: 0.12, Squamous: 0.05, Benign: 0.83},
				TNM:           TNM{T: "T1b", N: "N0", M: "M0"},
				Nodules: []Nodule{
					{ID: 1, Location: "LUL (Left Upper Lobe)", Size: "6mm", Confidence: 0.45, Slice: 33},
				},
			},
		},
		{
			ID:       "PT-2024-095",
			Name:     "Arthur Montague",
			Age:      71,
			ScanDate: MustDate("2024-05-15"),
			Status:   StatusAnalyzed,
			Risk:     RiskCritical,
			Stage:    "IV",
			Analysis: &AnalysisResult{
				Probabilities: map[Histology]float64{Adenocarcinoma: 0.10, Squamous: 0.88, Benign: 0.02},
				TNM:           TNM{T: "T4", N: "N2", M: "M1a"},
				Nodules: []Nodule{
					{ID: 1, Location: "RUL (Right Upper Lobe)", Size: "42mm", Confidence: 0.98, Slice: 55},
					{ID: 2, Location: "Mediastinal", Size: "15mm", Confidence: 0.95, Slice: 48},
					{ID: 3, Location: "Pleural", Size: "12mm", Confidence: 0.91, Slice: 70},
				},
			},
		},
		{
			ID:       "PT-2024-081",
			Name:     "Theodora C.",
			Age:      45,
			ScanDate: MustDate("2024-05-12"),
			Status:   StatusAnalyzed,
			Risk:     RiskLow,
			Stage:    "IA",
			Analysis: &AnalysisResult{
				Probabilities: map[Histology]float64{Adenocarcinoma: 0.05, Squamous: 0.01, Benign: 0.94},
				TNM:           TNM{T: "T1a", N: "N0", M: "M0"},
				Nodules: []Nodule{
					{ID: 1, Location: "RLL (Right Lower Lobe)", Size: "4mm", Confidence: 0.30, Slice: 25},
				},
			},
		},
	}
}
