package code

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const resultFields = "stdout,stderr,status_id,language_id,status,compile_output,time,memory"

// Judge0Config holds the connection settings for a Judge0 CE instance.
// URL is the base URL of the Judge0 server (e.g. "http://judge0-server:2358").
// AuthToken is optional; send it as X-Auth-Token when AUTHN_TOKEN is configured.
// RapidAPIKey/RapidAPIHost are used instead when talking to the hosted RapidAPI endpoint.
type Judge0Config struct {
	URL          string        `json:"url"`
	AuthToken    string        `json:"auth_token,omitempty"`
	RapidAPIKey  string        `json:"rapidapi_key,omitempty"`
	RapidAPIHost string        `json:"rapidapi_host,omitempty"`
	Stdin        string        `json:"stdin,omitempty"`
	Timeout      time.Duration `json:"-"`
}

// Judge0Provider calls the Judge0 CE REST API. It holds only the
// configuration it was built with, so one instance can serve many runs.
type Judge0Provider struct {
	url          string
	authToken    string
	rapidAPIKey  string
	rapidAPIHost string
	stdin        string
	client       *http.Client
}

var _ Provider = (*Judge0Provider)(nil)

// NewJudge0Provider constructs a Judge0Provider from the given config.
func NewJudge0Provider(cfg Judge0Config) *Judge0Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	p := &Judge0Provider{
		url:          strings.TrimRight(cfg.URL, "/"),
		authToken:    cfg.AuthToken,
		rapidAPIKey:  cfg.RapidAPIKey,
		rapidAPIHost: cfg.RapidAPIHost,
		stdin:        cfg.Stdin,
		client:       &http.Client{Timeout: timeout},
	}
	if p.rapidAPIKey != "" && p.rapidAPIHost == "" {
		if u, err := url.Parse(p.url); err == nil {
			p.rapidAPIHost = u.Host
		}
	}
	return p
}

// Submit posts an already-encoded program and returns the submission token.
func (p *Judge0Provider) Submit(ctx context.Context, lang LanguageSpec, encodedProgram string) (string, error) {
	reqBody := map[string]interface{}{
		"source_code": encodedProgram,
		"language_id": lang.JudgeLanguageID,
	}
	if p.stdin != "" {
		reqBody["stdin"] = Encode(p.stdin)
	}

	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.url+"/submissions?base64_encoded=true", bytes.NewReader(bodyJSON))
	if err != nil {
		return "", &TransportError{Op: "submit", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &TransportError{Op: "submit", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &TransportError{Op: "submit", StatusCode: resp.StatusCode, Err: responseError(resp)}
	}

	var raw struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", &TransportError{Op: "submit", StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if raw.Token == "" {
		return "", &TransportError{Op: "submit", StatusCode: resp.StatusCode, Err: errors.New("response carried no token")}
	}
	return raw.Token, nil
}

// FetchResult retrieves the current state of a submission. Text fields are
// decoded; if one is malformed the partially decoded outcome is returned
// together with a *DecodeError.
func (p *Judge0Provider) FetchResult(ctx context.Context, token string) (*Outcome, error) {
	endpoint := fmt.Sprintf("%s/submissions/%s?base64_encoded=true&fields=%s",
		p.url, url.PathEscape(token), resultFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Op: "fetch", StatusCode: resp.StatusCode, Err: responseError(resp)}
	}

	var raw struct {
		Stdout        *string `json:"stdout"`
		Stderr        *string `json:"stderr"`
		CompileOutput *string `json:"compile_output"`
		StatusID      *int    `json:"status_id"`
		LanguageID    *int    `json:"language_id"`
		Time          *string `json:"time"`
		Memory        *int    `json:"memory"`
		Status        *struct {
			ID          int    `json:"id"`
			Description string `json:"description"`
		} `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &TransportError{Op: "fetch", StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	out := &Outcome{}
	if raw.StatusID != nil {
		out.StatusID = *raw.StatusID
	}
	if raw.Status != nil {
		if out.StatusID == 0 {
			out.StatusID = raw.Status.ID
		}
		out.Status = raw.Status.Description
	}
	if out.Status == "" && out.StatusID != 0 {
		out.Status = StatusDescription(out.StatusID)
	}
	if raw.LanguageID != nil {
		out.LanguageID = *raw.LanguageID
	}
	if raw.Time != nil {
		out.Time = *raw.Time
	}
	if raw.Memory != nil {
		out.Memory = *raw.Memory
	}

	var decodeErr error
	if out.Stdout, err = decodeField("stdout", raw.Stdout); err != nil {
		decodeErr = err
	}
	if out.Stderr, err = decodeField("stderr", raw.Stderr); err != nil && decodeErr == nil {
		decodeErr = err
	}
	if out.CompileOutput, err = decodeField("compile_output", raw.CompileOutput); err != nil && decodeErr == nil {
		decodeErr = err
	}
	return out, decodeErr
}

func (p *Judge0Provider) authorize(req *http.Request) {
	if p.authToken != "" {
		req.Header.Set("X-Auth-Token", p.authToken)
	}
	if p.rapidAPIKey != "" {
		req.Header.Set("X-RapidAPI-Key", p.rapidAPIKey)
		req.Header.Set("X-RapidAPI-Host", p.rapidAPIHost)
	}
}

// responseError summarises an error body. Judge0 replies with {"error": "..."}
// or a field->messages map for validation failures.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return errors.New(e.Error)
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return errors.New(msg)
	}
	return errors.New(http.StatusText(resp.StatusCode))
}
