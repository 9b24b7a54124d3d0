package codetester

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// JobsService provides job status lookup operations.
type JobsService struct {
	c *Client
}

// Get retrieves the current status of a background job.
func (s *JobsService) Get(ctx context.Context, jobID string) (*Job, error) {
	return doRequest[Job](ctx, s.c, http.MethodGet, fmt.Sprintf("/jobs/%s", jobID), nil, nil, http.StatusOK)
}

// Wait polls the job every interval until it completes or fails, or ctx ends.
func (s *JobsService) Wait(ctx context.Context, jobID string, interval time.Duration) (*Job, error) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		job, err := s.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.Done() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-t.C:
		}
	}
}
