// Package jobs tracks long-running background operations such as lineup
// scrapes and roster imports, so API clients can poll for progress while
// classification runs.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is the lifecycle phase of a background job
type Phase string

const (
	// PhaseScanning means the lineup source is being fetched and parsed
	PhaseScanning Phase = "scanning"

	// PhaseClassifying means artists are being classified
	PhaseClassifying Phase = "classifying"

	// PhaseDone means the job finished successfully
	PhaseDone Phase = "done"

	// PhaseError means the job failed
	PhaseError Phase = "error"
)

// Job is a snapshot of one background job's state.
type Job struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	Festival      string     `json:"festival,omitempty"`
	Phase         Phase      `json:"phase"`
	Total         int        `json:"total"`
	Done          int        `json:"done"`
	CurrentArtist string     `json:"current_artist,omitempty"`
	ArtistCount   int        `json:"artist_count,omitempty"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// Finished reports whether the job reached a terminal phase.
func (j *Job) Finished() bool {
	return j.Phase == PhaseDone || j.Phase == PhaseError
}

// Tracker manages background jobs in memory. All methods are safe for
// concurrent use.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

// NewTracker creates an empty job tracker.
func NewTracker() *Tracker {
	return &Tracker{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Start registers a new job in the scanning phase and returns its id.
func (t *Tracker) Start(kind, festival string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.NewString()
	t.jobs[id] = &Job{
		ID:        id,
		Kind:      kind,
		Festival:  festival,
		Phase:     PhaseScanning,
		StartedAt: t.now().UTC(),
	}
	return id
}

// Get returns a snapshot of the job with the given id.
func (t *Tracker) Get(id string) (Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// SetFestival records the festival name once a scrape discovers it.
func (t *Tracker) SetFestival(id, festival string) {
	t.update(id, func(job *Job) {
		job.Festival = festival
	})
}

// BeginClassifying moves the job into the classifying phase with the given total.
func (t *Tracker) BeginClassifying(id string, total int) {
	t.update(id, func(job *Job) {
		job.Phase = PhaseClassifying
		job.Total = total
		job.Done = 0
	})
}

// Progress records classification progress for the job.
func (t *Tracker) Progress(id string, done int, currentArtist string) {
	t.update(id, func(job *Job) {
		job.Done = done
		job.CurrentArtist = currentArtist
	})
}

// Complete marks the job as done with the final artist count.
func (t *Tracker) Complete(id string, artistCount int) {
	t.update(id, func(job *Job) {
		now := t.now().UTC()
		job.Phase = PhaseDone
		job.ArtistCount = artistCount
		job.CurrentArtist = ""
		job.FinishedAt = &now
	})
}

// Fail marks the job as failed with the given error.
func (t *Tracker) Fail(id string, err error) {
	t.update(id, func(job *Job) {
		now := t.now().UTC()
		job.Phase = PhaseError
		job.Error = err.Error()
		job.CurrentArtist = ""
		job.FinishedAt = &now
	})
}

func (t *Tracker) update(id string, fn func(*Job)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if job, ok := t.jobs[id]; ok {
		fn(job)
	}
}

// Run starts fn in a background goroutine tracked as a new job, returning
// the job id immediately. fn reports its outcome through the tracker using
// the provided job id.
func (t *Tracker) Run(ctx context.Context, kind, festival string, fn func(ctx context.Context, jobID string) (int, error)) string {
	id := t.Start(kind, festival)

	go func() {
		artistCount, err := fn(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "Background job failed",
				"job_id", id,
				"kind", kind,
				"error", err)
			t.Fail(id, err)
			return
		}
		t.Complete(id, artistCount)
	}()

	return id
}
