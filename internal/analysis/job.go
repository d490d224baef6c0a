package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mrsinham/neurolung/internal/casefile"
)

// Event reports job progress. The last event of a job has Done set and
// carries either Case or Err.
type Event struct {
	JobID    uuid.UUID
	Progress int
	Stage    string
	Done     bool
	Case     casefile.PatientCase
	Err      error
}

// JobOptions tune the pacing of a job.
type JobOptions struct {
	Tick   time.Duration // Default DefaultTick
	Settle time.Duration // Default DefaultSettle; negative means no pause
}

// Job runs one upload through the simulator and the provider.
type Job struct {
	upload   Upload
	provider Provider
	sim      *Simulator
	settle   time.Duration
}

// NewJob prepares a job for upload. Nothing runs until Start.
func NewJob(upload Upload, provider Provider, opts JobOptions) *Job {
	settle := opts.Settle
	if settle == 0 {
		settle = DefaultSettle
	}
	if settle < 0 {
		settle = 0
	}
	return &Job{
		upload:   upload,
		provider: provider,
		sim:      NewSimulator(opts.Tick),
		settle:   settle,
	}
}

// ID returns the job identifier.
func (j *Job) ID() uuid.UUID {
	return j.upload.JobID
}

// Upload returns the upload being analyzed.
func (j *Job) Upload() Upload {
	return j.upload
}

// Start runs the job in a goroutine and returns its event stream. The channel
// is closed after the final event, or without one when ctx is cancelled.
func (j *Job) Start(ctx context.Context) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		send := func(ev Event) bool {
			ev.JobID = j.upload.JobID
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		err := j.sim.Run(ctx, func(p int) {
			send(Event{Progress: p, Stage: StageLabel(p)})
		})
		if err != nil {
			return
		}

		if j.settle > 0 {
			timer := time.NewTimer(j.settle)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		pc, err := j.provider.Analyze(ctx, j.upload)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			send(Event{Progress: Complete, Stage: StageLabel(Complete), Done: true, Err: fmt.Errorf("job %s: %w", j.upload.JobID, err)})
			return
		}
		send(Event{Progress: Complete, Stage: StageLabel(Complete), Done: true, Case: pc})
	}()

	return events
}
