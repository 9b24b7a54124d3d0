// Package worker drains the jobs table. Each goroutine claims one due job at
// a time, hands it to a JobExecutor and records the outcome, rescheduling
// failed jobs with exponential backoff until max_attempts is reached.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/gsarma/codetester/internal/store"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// JobExecutor executes a single job by type and payload.
type JobExecutor interface {
	ExecuteJob(ctx context.Context, jobID uuid.UUID, tenantID uuid.UUID, jobType string, payload json.RawMessage) error
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the worker fails the job without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var perm *permanentError
	return errors.As(err, &perm)
}

// Backoff is the delay before attempt+1 runs: 2^attempt * 10s.
func Backoff(attempt int32) time.Duration {
	return time.Duration(int64(1)<<uint(attempt)) * 10 * time.Second
}

// Worker polls the database for pending jobs and executes them concurrently.
type Worker struct {
	store        store.Querier
	executor     JobExecutor
	concurrency  int
	pollInterval time.Duration
	log          *zap.Logger
}

// Option configures a Worker.
type Option func(*Worker)

func WithLogger(l *zap.Logger) Option {
	return func(w *Worker) { w.log = l }
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

func New(q store.Querier, executor JobExecutor, concurrency int, opts ...Option) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	w := &Worker{
		store:        q,
		executor:     executor,
		concurrency:  concurrency,
		pollInterval: 500 * time.Millisecond,
		log:          zap.NewNop(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Start spawns the polling goroutines and blocks until ctx is cancelled and
// every in-flight job has been recorded.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("worker started", zap.Int("concurrency", w.concurrency), zap.Duration("poll_interval", w.pollInterval))
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
	w.log.Info("worker stopped")
}

func (w *Worker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processNext(ctx)
		}
	}
}

func (w *Worker) processNext(ctx context.Context) {
	job, err := w.store.ClaimNextJob(ctx)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) && ctx.Err() == nil {
			w.log.Error("claim job", zap.Error(err))
		}
		return
	}

	log := w.log.With(
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", job.JobType),
		zap.Int32("attempt", job.Attempt),
	)
	log.Debug("job claimed")

	execErr := w.executor.ExecuteJob(ctx, job.ID, job.TenantID, job.JobType, json.RawMessage(job.Payload))

	// Record the outcome even when shutdown cancelled the job context.
	recordCtx := context.WithoutCancel(ctx)
	if interrupted(ctx, execErr) {
		if _, err := w.store.ReleaseJob(recordCtx, job.ID); err != nil {
			log.Error("release job", zap.Error(err))
			return
		}
		log.Info("job released on shutdown", zap.Error(execErr))
		return
	}
	params := nextState(job, execErr, time.Now())
	if _, err := w.store.UpdateJobStatus(recordCtx, params); err != nil {
		log.Error("update job status", zap.String("status", params.Status), zap.Error(err))
		return
	}

	switch params.Status {
	case StatusCompleted:
		log.Info("job completed")
	case StatusPending:
		log.Warn("job failed, retry scheduled", zap.Time("run_at", params.RunAt), zap.Error(execErr))
	default:
		log.Error("job failed", zap.Error(execErr))
	}
}

// interrupted reports whether execErr came from shutdown cancelling ctx
// rather than from the job itself.
func interrupted(ctx context.Context, execErr error) bool {
	return execErr != nil && ctx.Err() != nil && !IsPermanent(execErr)
}

// nextState maps an execution outcome onto the job's next row state.
func nextState(job store.Job, execErr error, now time.Time) store.UpdateJobStatusParams {
	if execErr == nil {
		return store.UpdateJobStatusParams{
			ID:          job.ID,
			Status:      StatusCompleted,
			Error:       pgtype.Text{Valid: false},
			CompletedAt: &now,
			RunAt:       job.RunAt,
		}
	}

	failure := pgtype.Text{String: execErr.Error(), Valid: true}
	if job.Attempt < job.MaxAttempts && !IsPermanent(execErr) {
		return store.UpdateJobStatusParams{
			ID:     job.ID,
			Status: StatusPending,
			Error:  failure,
			RunAt:  now.Add(Backoff(job.Attempt)),
		}
	}
	return store.UpdateJobStatusParams{
		ID:          job.ID,
		Status:      StatusFailed,
		Error:       failure,
		CompletedAt: &now,
		RunAt:       job.RunAt,
	}
}
