package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, store *Store, id string, want jobs.JobStatus) *jobs.ExportReportJob {
	t.Helper()
	var job *jobs.ExportReportJob
	require.Eventually(t, func() bool {
		var err error
		job, err = store.GetJob(context.Background(), id)
		return err == nil && job.Status == want
	}, 2*time.Second, 5*time.Millisecond, "job %s never reached %s", id, want)
	return job
}

func newTestQueue(store *Store) *Queue {
	return NewQueue(10, store, WithWorkers(2), WithBackoff(func(int) time.Duration { return time.Millisecond }))
}

func TestQueue_Completes(t *testing.T) {
	store := NewStore()
	q := newTestQueue(store)
	ctx := context.Background()

	var seen atomic.Value
	require.NoError(t, q.Start(ctx, func(_ context.Context, job jobs.Job) error {
		seen.Store(job.(*jobs.ExportReportJob).Tool)
		return nil
	}))
	defer q.Close()

	job := &jobs.ExportReportJob{Tool: "listPricingPlans", Destination: "gs://b/o.json"}
	require.NoError(t, q.PublishExportReport(ctx, job))
	require.NotEmpty(t, job.JobID)
	assert.Equal(t, 3, job.MaxRetries)

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	assert.Equal(t, "listPricingPlans", seen.Load())
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
	assert.Zero(t, done.RetryCount)
}

func TestQueue_RetriesThenSucceeds(t *testing.T) {
	store := NewStore()
	q := newTestQueue(store)
	ctx := context.Background()

	var calls atomic.Int32
	require.NoError(t, q.Start(ctx, func(context.Context, jobs.Job) error {
		if calls.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	}))
	defer q.Close()

	job := &jobs.ExportReportJob{Tool: "getRevenueSummary"}
	require.NoError(t, q.PublishExportReport(ctx, job))

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	assert.Equal(t, 1, done.RetryCount)
	assert.Empty(t, done.Error)
	assert.EqualValues(t, 2, calls.Load())
}

func TestQueue_ExhaustsRetries(t *testing.T) {
	store := NewStore()
	q := newTestQueue(store)
	ctx := context.Background()

	var calls atomic.Int32
	require.NoError(t, q.Start(ctx, func(context.Context, jobs.Job) error {
		calls.Add(1)
		return errors.New("bucket unavailable")
	}))
	defer q.Close()

	job := &jobs.ExportReportJob{Tool: "getExpenseSummary", MaxRetries: 2}
	require.NoError(t, q.PublishExportReport(ctx, job))

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	assert.Equal(t, 2, failed.RetryCount)
	assert.Equal(t, "bucket unavailable", failed.Error)
	assert.EqualValues(t, 3, calls.Load())
}

func TestQueue_PermanentErrorIsNotRetried(t *testing.T) {
	store := NewStore()
	q := newTestQueue(store)
	ctx := context.Background()

	var calls atomic.Int32
	require.NoError(t, q.Start(ctx, func(context.Context, jobs.Job) error {
		calls.Add(1)
		return fmt.Errorf("%w: unknown tool", jobs.ErrPermanent)
	}))
	defer q.Close()

	job := &jobs.ExportReportJob{Tool: "nope"}
	require.NoError(t, q.PublishExportReport(ctx, job))

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	assert.Zero(t, failed.RetryCount)
	assert.EqualValues(t, 1, calls.Load())
}

func TestQueue_Closed(t *testing.T) {
	q := NewQueue(1, nil)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	err := q.PublishExportReport(context.Background(), &jobs.ExportReportJob{Tool: "x"})
	assert.ErrorIs(t, err, jobs.ErrQueueClosed)
	assert.ErrorIs(t, q.Start(context.Background(), nil), jobs.ErrQueueClosed)
}
