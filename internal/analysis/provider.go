// Package analysis turns an uploaded scan into an analyzed case. The
// provider produces the diagnostic payload; the simulator paces the progress
// shown while it runs.
package analysis

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mrsinham/neurolung/internal/casefile"
	"github.com/mrsinham/neurolung/internal/render"
)

// Upload describes a submitted scan file. Its content is never read.
type Upload struct {
	JobID    uuid.UUID
	FileName string
	Size     int64
	Received time.Time
}

// NewUpload stamps a new upload with a random job ID.
func NewUpload(fileName string, size int64, received time.Time) Upload {
	return Upload{
		JobID:    uuid.New(),
		FileName: fileName,
		Size:     size,
		Received: received,
	}
}

// Provider analyzes an upload and returns the resulting case.
type Provider interface {
	Analyze(ctx context.Context, u Upload) (casefile.PatientCase, error)
}

// DemoProvider fabricates plausible results from a seeded generator. It does
// not look at the upload beyond its receive time.
type DemoProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDemoProvider returns a provider whose output sequence is fixed by seed.
func NewDemoProvider(seed int64) *DemoProvider {
	return &DemoProvider{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)))}
}

// SeedFromString derives a provider seed from a string, e.g. a file name.
func SeedFromString(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// Analyze implements Provider.
func (p *DemoProvider) Analyze(ctx context.Context, u Upload) (casefile.PatientCase, error) {
	if err := ctx.Err(); err != nil {
		return casefile.PatientCase{}, fmt.Errorf("analyze %s: %w", u.FileName, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	received := u.Received
	if received.IsZero() {
		received = time.Now()
	}
	scanDate := time.Date(received.Year(), received.Month(), received.Day(), 0, 0, 0, 0, time.UTC)

	risk := casefile.GenerateRisk(p.rng)
	cancer := risk != casefile.RiskLow

	n := p.rng.IntN(10000)
	pc := casefile.PatientCase{
		ID:       fmt.Sprintf("PT-%d-%d", received.Year(), n),
		Name:     fmt.Sprintf("Analyzed Case #%d", n),
		Age:      40 + p.rng.IntN(40),
		ScanDate: scanDate,
		Status:   casefile.StatusAnalyzed,
		Risk:     risk,
	}

	a := &casefile.AnalysisResult{}
	switch risk {
	case casefile.RiskCritical:
		pc.Stage = "IV"
		a.TNM = casefile.TNM{T: "T4", N: "N2", M: "M1"}
	case casefile.RiskHigh:
		pc.Stage = "IIIA"
		a.TNM = casefile.TNM{T: "T2a", N: "N1", M: "M0"}
	default:
		pc.Stage = "IA"
		a.TNM = casefile.TNM{T: "T1a", N: "N0", M: "M0"}
	}

	if cancer {
		a.Probabilities = map[casefile.Histology]float64{
			casefile.Adenocarcinoma: 0.5 + p.rng.Float64()*0.4,
			casefile.Squamous:       p.rng.Float64() * 0.2,
			casefile.Benign:         0.05,
		}
	} else {
		a.Probabilities = map[casefile.Histology]float64{
			casefile.Adenocarcinoma: 0.02,
			casefile.Squamous:       0.01,
			casefile.Benign:         0.97,
		}
	}

	location := "RUL (Right Upper)"
	if p.rng.Float64() > 0.5 {
		location = "LUL (Left Upper)"
	}
	size := "4mm"
	if cancer {
		size = fmt.Sprintf("%dmm", 10+p.rng.IntN(30))
	}
	a.Nodules = []casefile.Nodule{{
		ID:         1,
		Location:   location,
		Size:       size,
		Confidence: 0.94,
		Slice:      25 + p.rng.IntN(render.MaxSlice/2),
	}}

	pc.Analysis = a
	return pc, nil
}
