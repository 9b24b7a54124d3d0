package codetester

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "key-1")
}

func TestEvaluate_Sync(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/code/judge0/evaluate" || r.URL.Query().Get("sync") != "true" {
			t.Errorf("unexpected request %s", r.URL)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Errorf("unexpected Authorization %q", got)
		}
		var body EvaluateRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.FunctionName != "f" || len(body.TestCases) != 2 {
			t.Errorf("unexpected body %+v", body)
		}
		json.NewEncoder(w).Encode(RunResult{Token: "tok", Output: "1\n2\n", Verdict: VerdictCorrect})
	})

	resp, err := c.Code.Evaluate(context.Background(), "judge0", EvaluateRequest{
		SourceCode:   "function f(x){return x}",
		Language:     "js",
		FunctionName: "f",
		TestCases:    []string{"1", "2"},
	}, &EvaluateOptions{Sync: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Result == nil || resp.Result.Verdict != VerdictCorrect || !resp.Result.Succeeded() {
		t.Errorf("unexpected result %+v", resp.Result)
	}
}

func TestEvaluate_Queued(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-1", "status": "queued"})
	})

	resp, err := c.Code.Evaluate(context.Background(), "judge0", EvaluateRequest{SourceCode: "1", Language: "js"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.JobID != "job-1" || resp.Result != nil {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestEvaluate_BadGatewayCarriesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{
			"error":  "judge0 submit: HTTP 401",
			"result": RunResult{TransportError: "judge0 submit: HTTP 401"},
		})
	})

	_, err := c.Code.Evaluate(context.Background(), "judge0", EvaluateRequest{SourceCode: "1", Language: "js"}, &EvaluateOptions{Sync: true})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Result == nil || apiErr.Result.TransportError == "" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestAPIError_FallsBackToStatusText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Quizzes.Get(context.Background(), "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Not Found" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestJobs_Wait(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		status := JobStatusRunning
		if calls >= 3 {
			status = JobStatusCompleted
		}
		json.NewEncoder(w).Encode(Job{ID: "job-1", Status: status})
	})

	job, err := c.Jobs.Wait(context.Background(), "job-1", time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != JobStatusCompleted || calls != 3 {
		t.Errorf("expected completed after 3 calls, got %s after %d", job.Status, calls)
	}
}

func TestProvisioner_NoAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("provisioning must not send an API key")
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateTenantResponse{TenantID: "t-1", APIKey: "k"})
	}))
	defer srv.Close()

	out, err := NewProvisioner(srv.URL).CreateTenant(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.APIKey != "k" {
		t.Errorf("unexpected response %+v", out)
	}
}
