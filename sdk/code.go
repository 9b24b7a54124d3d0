package codetester

import (
	"context"
	"fmt"
	"net/http"
)

// CodeService runs snippets against a code provider.
type CodeService struct {
	c *Client
}

// EvaluateOptions controls how an evaluation is executed.
type EvaluateOptions struct {
	// Sync waits for the judge and returns the result inline instead of
	// queueing a job.
	Sync bool
}

// SetConfig stores the tenant's own judge endpoint or credentials for provider.
func (s *CodeService) SetConfig(ctx context.Context, provider string, cfg Judge0Config) error {
	_, err := doRequest[StatusResponse](ctx, s.c, http.MethodPost, fmt.Sprintf("/code/%s/config", provider), nil, cfg, http.StatusOK)
	return err
}

// Evaluate submits a snippet. By default it is queued and only JobID is set;
// with opts.Sync the RunResult is returned in Result.
func (s *CodeService) Evaluate(ctx context.Context, provider string, req EvaluateRequest, opts *EvaluateOptions) (*EvaluateResponse, error) {
	path := fmt.Sprintf("/code/%s/evaluate", provider)
	if opts != nil && opts.Sync {
		res, err := doRequest[RunResult](ctx, s.c, http.MethodPost, path, map[string]string{"sync": "true"}, req, http.StatusOK)
		if err != nil {
			return nil, err
		}
		return &EvaluateResponse{Status: "completed", Result: res}, nil
	}
	return doRequest[EvaluateResponse](ctx, s.c, http.MethodPost, path, nil, req, http.StatusAccepted)
}

// GetExecution returns the stored result of a queued evaluation.
func (s *CodeService) GetExecution(ctx context.Context, jobID string) (*CodeExecution, error) {
	return doRequest[CodeExecution](ctx, s.c, http.MethodGet, fmt.Sprintf("/code/executions/%s", jobID), nil, nil, http.StatusOK)
}

// Languages lists the languages the server can run.
func (s *CodeService) Languages(ctx context.Context) ([]Language, error) {
	out, err := doRequest[languageList](ctx, s.c, http.MethodGet, "/languages", nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return out.Languages, nil
}
