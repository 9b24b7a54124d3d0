// Package codetester provides a Go client for the codetester API.
//
// codetester runs code snippets on a Judge0 server, optionally calling a
// function with test arguments and grading the combined output.
//
// Usage:
//
//	// Create a tenant (no API key required)
//	provisioner := codetester.NewProvisioner("http://localhost:8080")
//	tenant, err := provisioner.CreateTenant(ctx)
//
//	client := codetester.New("http://localhost:8080", tenant.APIKey)
//	expected := "true true false"
//	resp, err := client.Code.Evaluate(ctx, "judge0", codetester.EvaluateRequest{
//	    SourceCode:     "function checkIsEven(n) { return n % 2 === 0 }",
//	    Language:       "js",
//	    FunctionName:   "checkIsEven",
//	    TestCases:      []string{"2", "4", "7"},
//	    ExpectedResult: &expected,
//	}, &codetester.EvaluateOptions{Sync: true})
package codetester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client is the authenticated codetester API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	Code    *CodeService
	Quizzes *QuizService
	Jobs    *JobsService
}

// Provisioner is an unauthenticated client used only for tenant provisioning.
type Provisioner struct {
	c *Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Synchronous evaluations block for
// the judge's full polling window, so keep its timeout above that.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates an authenticated client.
// apiKey is the Bearer token returned when a tenant is provisioned.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	c.Code = &CodeService{c: c}
	c.Quizzes = &QuizService{c: c}
	c.Jobs = &JobsService{c: c}
	return c
}

// NewProvisioner creates an unauthenticated client for tenant provisioning.
func NewProvisioner(baseURL string, opts ...Option) *Provisioner {
	return &Provisioner{c: New(baseURL, "", opts...)}
}

// CreateTenant provisions a new tenant and returns its API key.
// The key is shown only once.
func (p *Provisioner) CreateTenant(ctx context.Context) (*CreateTenantResponse, error) {
	return doRequest[CreateTenantResponse](ctx, p.c, http.MethodPost, "/tenants", nil, nil, http.StatusCreated)
}

// Health checks that the server is reachable.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	return doRequest[HealthResponse](ctx, c, http.MethodGet, "/health", nil, nil, http.StatusOK)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query map[string]string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("codetester: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func doRequest[T any](ctx context.Context, c *Client, method, path string, query map[string]string, body any, expectedStatus int) (*T, error) {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		return nil, parseError(resp)
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("codetester: decode response: %w", err)
	}
	return &out, nil
}

func parseError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error  string     `json:"error"`
		Result *RunResult `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		e.Message = body.Error
		e.Result = body.Result
	} else {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
