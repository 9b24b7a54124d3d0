package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/gsarma/codetester/internal/code"
	"github.com/gsarma/codetester/internal/store"
	"github.com/gsarma/codetester/internal/tenant"
)

const (
	ProviderJudge0      = "judge0"
	JobTypeCodeEvaluate = "code.evaluate"
)

var errUnsupportedProvider = errors.New("unsupported code provider")

// evaluateRequest is the body of POST /code/:provider/evaluate.
type evaluateRequest struct {
	SourceCode     string   `json:"source_code" binding:"required"`
	Language       string   `json:"language" binding:"required"`
	FunctionName   string   `json:"function_name"`
	TestCases      []string `json:"test_cases"`
	ExpectedResult *string  `json:"expected_result"`
}

func (r evaluateRequest) callSpec() (*code.CallSpec, error) {
	if r.FunctionName == "" {
		if r.TestCases != nil || r.ExpectedResult != nil {
			return nil, errors.New("function_name is required with test_cases or expected_result")
		}
		return nil, nil
	}
	return &code.CallSpec{
		FunctionName:      r.FunctionName,
		TestCaseArguments: r.TestCases,
		ExpectedResult:    r.ExpectedResult,
	}, nil
}

// SetCodeProviderConfig stores a tenant's judge endpoint and credentials,
// sealed with the tenant data key. Unset fields fall back to the server config.
//
//	{"url": "https://judge0-ce.p.rapidapi.com", "rapidapi_key": "...", "auth_token": "..."}
func (h *Handler) SetCodeProviderConfig(c *gin.Context) {
	t := tenant.FromContext(c)
	providerName := c.Param("provider")
	if providerName != ProviderJudge0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s: %s", errUnsupportedProvider, providerName)})
		return
	}

	var cfg code.Judge0Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cfg.URL == "" && cfg.AuthToken == "" && cfg.RapidAPIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "one of url, auth_token or rapidapi_key is required"})
		return
	}

	sealed, err := h.tenantSvc.Seal(t, cfg)
	if err != nil {
		h.log.Error("seal judge config", zap.String("tenant_id", t.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encryption error"})
		return
	}

	_, err = h.queries.UpsertCodeProviderConfig(c.Request.Context(), store.UpsertCodeProviderConfigParams{
		TenantID:        t.ID,
		Provider:        providerName,
		EncryptedConfig: sealed,
	})
	if err != nil {
		h.log.Error("save judge config", zap.String("tenant_id", t.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save config"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// EvaluateCode templates, submits and grades a snippet.
//
// Async (default): queues a code.evaluate job and returns 202 {"job_id", "status": "queued"};
// fetch the result from GET /code/executions/:job_id once GET /jobs/:id reports completed.
// Sync (?sync=true): runs to completion and returns the RunResult. A judge
// transport failure answers 502 with the result attached.
func (h *Handler) EvaluateCode(c *gin.Context) {
	t := tenant.FromContext(c)
	providerName := c.Param("provider")

	var body evaluateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	call, err := body.callSpec()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lang, err := h.langs.Lookup(body.Language)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if providerName != ProviderJudge0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s: %s", errUnsupportedProvider, providerName)})
		return
	}

	if c.Query("sync") != "true" {
		payload, _ := json.Marshal(code.JobPayload{
			Provider:   providerName,
			SourceCode: body.SourceCode,
			Language:   lang.Name,
			Call:       call,
		})
		job, err := h.queries.CreateJob(c.Request.Context(), store.CreateJobParams{
			TenantID: t.ID,
			JobType:  JobTypeCodeEvaluate,
			Payload:  payload,
		})
		if err != nil {
			h.log.Error("queue evaluation", zap.String("tenant_id", t.ID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue job"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID, "status": "queued"})
		return
	}

	p, err := h.buildCodeProvider(c.Request.Context(), t, providerName)
	if err != nil {
		h.log.Error("build code provider", zap.String("tenant_id", t.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	res := h.newRunner(p).Run(c.Request.Context(), code.Request{Source: body.SourceCode, Language: lang, Call: call})
	if res.TransportError != "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": res.TransportError, "result": res})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetCodeExecution returns the stored result of a finished code.evaluate job.
func (h *Handler) GetCodeExecution(c *gin.Context) {
	t := tenant.FromContext(c)
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	exec, err := h.queries.GetCodeExecution(c.Request.Context(), store.GetCodeExecutionParams{
		JobID:    jobID,
		TenantID: t.ID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "execution result not found"})
		return
	}
	if err != nil {
		h.log.Error("get code execution", zap.String("job_id", jobID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load execution"})
		return
	}

	c.JSON(http.StatusOK, exec)
}

// buildCodeProvider overlays the tenant's stored judge config, if any, on the
// server default.
func (h *Handler) buildCodeProvider(ctx context.Context, t *store.Tenant, providerName string) (code.Provider, error) {
	if providerName != ProviderJudge0 {
		return nil, fmt.Errorf("%w: %s", errUnsupportedProvider, providerName)
	}
	cfg := h.judge

	row, err := h.queries.GetCodeProviderConfig(ctx, store.GetCodeProviderConfigParams{
		TenantID: t.ID,
		Provider: providerName,
	})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return code.NewJudge0Provider(cfg), nil
	case err != nil:
		return nil, fmt.Errorf("load %s config: %w", providerName, err)
	}

	var override code.Judge0Config
	if err := h.tenantSvc.Open(t, row.EncryptedConfig, &override); err != nil {
		return nil, fmt.Errorf("decrypt %s config: %w", providerName, err)
	}
	if override.URL != "" {
		// Server credentials belong to the server endpoint.
		cfg.URL = override.URL
		cfg.AuthToken, cfg.RapidAPIKey, cfg.RapidAPIHost = "", "", ""
	}
	if override.AuthToken != "" {
		cfg.AuthToken = override.AuthToken
	}
	if override.RapidAPIKey != "" {
		cfg.RapidAPIKey = override.RapidAPIKey
		cfg.RapidAPIHost = override.RapidAPIHost
	}
	if override.Stdin != "" {
		cfg.Stdin = override.Stdin
	}
	return code.NewJudge0Provider(cfg), nil
}

func (h *Handler) newRunner(p code.Provider) *code.Runner {
	return code.NewRunner(p,
		code.WithPollConfig(h.poll),
		code.WithObserver(func(token string, state code.RunState) {
			h.log.Debug("run state", zap.String("token", token), zap.String("state", string(state)))
		}),
	)
}
