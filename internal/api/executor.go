package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/gsarma/codetester/internal/code"
	"github.com/gsarma/codetester/internal/store"
	"github.com/gsarma/codetester/internal/worker"
)

// ExecuteJob dispatches a job to the appropriate handler by type.
// It implements worker.JobExecutor.
func (h *Handler) ExecuteJob(ctx context.Context, jobID, tenantID uuid.UUID, jobType string, payload json.RawMessage) error {
	t, err := h.queries.GetTenantByID(ctx, tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return worker.Permanent(fmt.Errorf("tenant %s not found", tenantID))
	}
	if err != nil {
		return fmt.Errorf("load tenant: %w", err)
	}
	switch jobType {
	case JobTypeCodeEvaluate:
		return h.executeCodeJob(ctx, jobID, &t, payload)
	default:
		return worker.Permanent(fmt.Errorf("unknown job type: %s", jobType))
	}
}

// executeCodeJob runs a queued evaluation and stores its RunResult. A judge
// transport failure is stored and then fails the job without a retry, since
// a resubmission may run the program twice. Every other outcome, including
// compile errors and inconclusive runs, completes the job. A run cut short by
// shutdown is not stored.
func (h *Handler) executeCodeJob(ctx context.Context, jobID uuid.UUID, t *store.Tenant, raw json.RawMessage) error {
	var p code.JobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return worker.Permanent(fmt.Errorf("invalid code job payload: %w", err))
	}
	lang, err := h.langs.Lookup(p.Language)
	if err != nil {
		return worker.Permanent(err)
	}
	provider, err := h.buildCodeProvider(ctx, t, p.Provider)
	if errors.Is(err, errUnsupportedProvider) {
		return worker.Permanent(err)
	}
	if err != nil {
		return err
	}

	res := h.newRunner(provider).Run(ctx, code.Request{Source: p.SourceCode, Language: lang, Call: p.Call})
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = h.queries.InsertCodeExecution(ctx, executionParams(jobID, t.ID, res))
	if err != nil {
		return fmt.Errorf("store code execution: %w", err)
	}
	h.log.Info("code evaluated",
		zap.String("job_id", jobID.String()),
		zap.String("token", res.Token),
		zap.String("verdict", string(res.Verdict)),
		zap.Bool("inconclusive", res.Inconclusive),
	)

	if res.TransportError != "" {
		return worker.Permanent(errors.New(res.TransportError))
	}
	return nil
}

func executionParams(jobID, tenantID uuid.UUID, res code.RunResult) store.InsertCodeExecutionParams {
	return store.InsertCodeExecutionParams{
		JobID:          jobID,
		TenantID:       tenantID,
		Token:          res.Token,
		Output:         res.Output,
		ErrorText:      res.ErrorText,
		TransportError: res.TransportError,
		Verdict:        pgtype.Text{String: string(res.Verdict), Valid: res.Verdict != ""},
		Inconclusive:   res.Inconclusive,
		Note:           res.Note,
		StatusID:       int32(res.StatusID),
		Status:         res.Status,
	}
}
