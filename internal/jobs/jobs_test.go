package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Lifecycle(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	id := tracker.Start("scrape", "")
	require.NotEmpty(t, id)

	job, ok := tracker.Get(id)
	require.True(t, ok)
	assert.Equal(t, PhaseScanning, job.Phase)
	assert.Equal(t, "scrape", job.Kind)
	assert.False(t, job.Finished())
	assert.False(t, job.StartedAt.IsZero())

	tracker.SetFestival(id, "Glasto Fest")
	tracker.BeginClassifying(id, 10)
	tracker.Progress(id, 3, "Portishead")

	job, ok = tracker.Get(id)
	require.True(t, ok)
	assert.Equal(t, PhaseClassifying, job.Phase)
	assert.Equal(t, "Glasto Fest", job.Festival)
	assert.Equal(t, 10, job.Total)
	assert.Equal(t, 3, job.Done)
	assert.Equal(t, "Portishead", job.CurrentArtist)

	tracker.Complete(id, 10)

	job, ok = tracker.Get(id)
	require.True(t, ok)
	assert.Equal(t, PhaseDone, job.Phase)
	assert.Equal(t, 10, job.ArtistCount)
	assert.Empty(t, job.CurrentArtist)
	assert.True(t, job.Finished())
	require.NotNil(t, job.FinishedAt)
}

func TestTracker_Fail(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	id := tracker.Start("import", "fest")

	tracker.Fail(id, errors.New("roster file not found"))

	job, ok := tracker.Get(id)
	require.True(t, ok)
	assert.Equal(t, PhaseError, job.Phase)
	assert.Equal(t, "roster file not found", job.Error)
	assert.True(t, job.Finished())
}

func TestTracker_GetUnknownJob(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	_, ok := tracker.Get("no-such-job")
	assert.False(t, ok)
}

func TestTracker_UpdateUnknownJobIsNoop(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.Progress("no-such-job", 1, "x")
	tracker.Complete("no-such-job", 1)
	tracker.Fail("no-such-job", errors.New("boom"))
}

func TestTracker_RunSuccess(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	id := tracker.Run(context.Background(), "scrape", "fest", func(_ context.Context, jobID string) (int, error) {
		tracker.BeginClassifying(jobID, 2)
		tracker.Progress(jobID, 2, "Bonobo")
		return 2, nil
	})

	require.Eventually(t, func() bool {
		job, ok := tracker.Get(id)
		return ok && job.Finished()
	}, 5*time.Second, 10*time.Millisecond)

	job, _ := tracker.Get(id)
	assert.Equal(t, PhaseDone, job.Phase)
	assert.Equal(t, 2, job.ArtistCount)
}

func TestTracker_RunFailure(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	id := tracker.Run(context.Background(), "scrape", "fest", func(_ context.Context, _ string) (int, error) {
		return 0, errors.New("scrape failed")
	})

	require.Eventually(t, func() bool {
		job, ok := tracker.Get(id)
		return ok && job.Finished()
	}, 5*time.Second, 10*time.Millisecond)

	job, _ := tracker.Get(id)
	assert.Equal(t, PhaseError, job.Phase)
	assert.Equal(t, "scrape failed", job.Error)
}
