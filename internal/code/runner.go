package code

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RunState is the lifecycle position of a single run.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateSubmitted RunState = "submitted"
	StatePending   RunState = "pending"
	StateResolved  RunState = "resolved"
	StateFailed    RunState = "failed"
)

// PollConfig controls how long the runner waits for the judge.
type PollConfig struct {
	// SettleDelay is waited once after submission before the first fetch.
	SettleDelay time.Duration
	// PollInterval is the first wait between fetches; it doubles up to MaxPollInterval.
	PollInterval    time.Duration
	MaxPollInterval time.Duration
	// MaxWait bounds the time from submission to a terminal status.
	MaxWait time.Duration
}

// DefaultPollConfig mirrors the judge's typical turnaround: one second to
// settle, then backoff from 250ms to 2s for at most 20s.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		SettleDelay:     time.Second,
		PollInterval:    250 * time.Millisecond,
		MaxPollInterval: 2 * time.Second,
		MaxWait:         20 * time.Second,
	}
}

// Request is one caller invocation.
type Request struct {
	Source   string
	Language LanguageSpec
	Call     *CallSpec
}

func (r Request) expected() *string {
	if r.Call == nil {
		return nil
	}
	return r.Call.ExpectedResult
}

// Runner drives template -> submit -> poll -> evaluate for each request.
// It keeps no per-run state, so concurrent Run calls are independent.
type Runner struct {
	provider Provider
	poll     PollConfig
	observer func(token string, state RunState)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithPollConfig overrides the default polling schedule. Zero fields keep their defaults.
func WithPollConfig(cfg PollConfig) RunnerOption {
	return func(r *Runner) {
		if cfg.SettleDelay > 0 {
			r.poll.SettleDelay = cfg.SettleDelay
		}
		if cfg.PollInterval > 0 {
			r.poll.PollInterval = cfg.PollInterval
		}
		if cfg.MaxPollInterval > 0 {
			r.poll.MaxPollInterval = cfg.MaxPollInterval
		}
		if cfg.MaxWait > 0 {
			r.poll.MaxWait = cfg.MaxWait
		}
	}
}

// WithObserver registers a hook called on every state transition.
func WithObserver(fn func(token string, state RunState)) RunnerOption {
	return func(r *Runner) {
		r.observer = fn
	}
}

// NewRunner builds a Runner around a judge provider.
func NewRunner(p Provider, opts ...RunnerOption) *Runner {
	r := &Runner{provider: p, poll: DefaultPollConfig()}
	for _, o := range opts {
		o(r)
	}
	if r.poll.MaxPollInterval < r.poll.PollInterval {
		r.poll.MaxPollInterval = r.poll.PollInterval
	}
	return r
}

// Run executes one request to completion and never returns an error: every
// failure is reported through the RunResult.
func (r *Runner) Run(ctx context.Context, req Request) RunResult {
	r.notify("", StateIdle)

	program, err := Build(req.Source, req.Language, req.Call)
	if err != nil {
		r.notify("", StateFailed)
		res := RunResult{ErrorText: err.Error()}
		if req.expected() != nil {
			res.Verdict = VerdictNotEvaluated
		}
		return res
	}

	token, err := r.provider.Submit(ctx, req.Language, Encode(program))
	if err != nil {
		r.notify("", StateFailed)
		return RunResult{TransportError: err.Error()}
	}
	r.notify(token, StateSubmitted)

	outcome, err := r.await(ctx, token)
	res := r.resolve(token, outcome, err, req.expected())
	res.Token = token
	return res
}

// await waits out the settle delay and polls until the submission reaches a
// terminal status or MaxWait elapses.
func (r *Runner) await(ctx context.Context, token string) (*Outcome, error) {
	start := time.Now()
	deadline := start.Add(r.poll.MaxWait)

	if err := sleep(ctx, r.poll.SettleDelay); err != nil {
		return nil, err
	}
	r.notify(token, StatePending)

	interval := r.poll.PollInterval
	for {
		outcome, err := r.provider.FetchResult(ctx, token)
		if err != nil {
			return outcome, err
		}
		if IsTerminalStatus(outcome.StatusID) || (outcome.StatusID == 0 && outcome.hasResult()) {
			return outcome, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return outcome, &TimeoutError{Token: token, Waited: time.Since(start), StatusID: outcome.StatusID}
		}
		if err := sleep(ctx, min(interval, remaining)); err != nil {
			return nil, err
		}
		interval = min(interval*2, r.poll.MaxPollInterval)
	}
}

func (r *Runner) resolve(token string, outcome *Outcome, err error, expected *string) RunResult {
	var (
		decodeErr  *DecodeError
		timeoutErr *TimeoutError
	)
	switch {
	case err == nil:
		r.notify(token, StateResolved)
		return Evaluate(*outcome, expected)
	case errors.As(err, &decodeErr), errors.As(err, &timeoutErr):
		r.notify(token, StateResolved)
		res := RunResult{Inconclusive: true, Note: err.Error()}
		if outcome != nil {
			res.StatusID, res.Status = outcome.StatusID, outcome.Status
		}
		if expected != nil {
			res.Verdict = VerdictNotEvaluated
		}
		return res
	default:
		r.notify(token, StateFailed)
		return RunResult{TransportError: err.Error()}
	}
}

func (r *Runner) notify(token string, state RunState) {
	if r.observer != nil {
		r.observer(token, state)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting for judge: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
