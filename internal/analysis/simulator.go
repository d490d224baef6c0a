package analysis

import (
	"context"
	"time"
)

const (
	// DefaultTick is the interval between two progress increments.
	DefaultTick = 200 * time.Millisecond

	// DefaultSettle is the pause between reaching 100% and delivering the result.
	DefaultSettle = 800 * time.Millisecond

	Complete = 100
)

// stage is a pipeline step shown while progress is at or below threshold.
type stage struct {
	threshold int
	label     string
}

var stages = []stage{
	{10, "Uploading to S3 Bucket..."},
	{30, "Preprocessing (Normalization & Resampling)..."},
	{50, "3D MAE Feature Extraction..."},
	{75, "Running Multiple Instance Learning (MIL)..."},
	{90, "Generating Grad-CAM & Radiomics Report..."},
	{100, "Analysis Complete."},
}

// StageLabel returns the pipeline step label for a progress value.
func StageLabel(progress int) string {
	for _, s := range stages {
		if progress <= s.threshold {
			return s.label
		}
	}
	return "Finalizing..."
}

// Step returns the progress after one tick: fast below 50, slower above,
// never past Complete.
func Step(progress int) int {
	if progress >= Complete {
		return Complete
	}
	if progress < 50 {
		return min(Complete, progress+5)
	}
	return min(Complete, progress+2)
}

// Simulator paces a fake progress bar from 0 to Complete.
type Simulator struct {
	Tick time.Duration
}

// NewSimulator returns a simulator ticking every tick, or DefaultTick when tick <= 0.
func NewSimulator(tick time.Duration) *Simulator {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Simulator{Tick: tick}
}

// Run calls onTick with each new progress value until Complete is reached or
// ctx is cancelled. The ticker is stopped before Run returns. It returns
// ctx.Err() when cancelled.
func (s *Simulator) Run(ctx context.Context, onTick func(progress int)) error {
	tick := s.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	progress := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			progress = Step(progress)
			if onTick != nil {
				onTick(progress)
			}
			if progress >= Complete {
				return nil
			}
		}
	}
}
