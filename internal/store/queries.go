package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Querier interface {
	CreateTenant(ctx context.Context, arg CreateTenantParams) (Tenant, error)
	GetTenantByAPIKeyHash(ctx context.Context, apiKeyHash string) (Tenant, error)
	GetTenantByID(ctx context.Context, id uuid.UUID) (Tenant, error)

	UpsertCodeProviderConfig(ctx context.Context, arg UpsertCodeProviderConfigParams) (CodeProviderConfig, error)
	GetCodeProviderConfig(ctx context.Context, arg GetCodeProviderConfigParams) (CodeProviderConfig, error)

	CreateJob(ctx context.Context, arg CreateJobParams) (Job, error)
	GetJob(ctx context.Context, arg GetJobParams) (Job, error)
	ClaimNextJob(ctx context.Context) (Job, error)
	UpdateJobStatus(ctx context.Context, arg UpdateJobStatusParams) (Job, error)
	ReleaseJob(ctx context.Context, id uuid.UUID) (Job, error)

	InsertCodeExecution(ctx context.Context, arg InsertCodeExecutionParams) (CodeExecution, error)
	GetCodeExecution(ctx context.Context, arg GetCodeExecutionParams) (CodeExecution, error)
}

var _ Querier = (*Queries)(nil)

// --- tenants ---

const createTenant = `
INSERT INTO tenants (api_key_hash, encrypted_data_key)
VALUES ($1, $2)
RETURNING id, api_key_hash, encrypted_data_key, created_at`

type CreateTenantParams struct {
	ApiKeyHash       string
	EncryptedDataKey []byte
}

func (q *Queries) CreateTenant(ctx context.Context, arg CreateTenantParams) (Tenant, error) {
	row := q.db.QueryRow(ctx, createTenant, arg.ApiKeyHash, arg.EncryptedDataKey)
	var i Tenant
	err := row.Scan(&i.ID, &i.ApiKeyHash, &i.EncryptedDataKey, &i.CreatedAt)
	return i, err
}

const getTenantByAPIKeyHash = `
SELECT id, api_key_hash, encrypted_data_key, created_at
FROM tenants
WHERE api_key_hash = $1`

func (q *Queries) GetTenantByAPIKeyHash(ctx context.Context, apiKeyHash string) (Tenant, error) {
	row := q.db.QueryRow(ctx, getTenantByAPIKeyHash, apiKeyHash)
	var i Tenant
	err := row.Scan(&i.ID, &i.ApiKeyHash, &i.EncryptedDataKey, &i.CreatedAt)
	return i, err
}

const getTenantByID = `
SELECT id, api_key_hash, encrypted_data_key, created_at
FROM tenants
WHERE id = $1`

func (q *Queries) GetTenantByID(ctx context.Context, id uuid.UUID) (Tenant, error) {
	row := q.db.QueryRow(ctx, getTenantByID, id)
	var i Tenant
	err := row.Scan(&i.ID, &i.ApiKeyHash, &i.EncryptedDataKey, &i.CreatedAt)
	return i, err
}

// --- code provider configs ---

const upsertCodeProviderConfig = `
INSERT INTO code_provider_configs (tenant_id, provider, encrypted_config)
VALUES ($1, $2, $3)
ON CONFLICT (tenant_id, provider)
DO UPDATE SET encrypted_config = EXCLUDED.encrypted_config, updated_at = now()
RETURNING tenant_id, provider, encrypted_config, updated_at`

type UpsertCodeProviderConfigParams struct {
	TenantID        uuid.UUID
	Provider        string
	EncryptedConfig []byte
}

func (q *Queries) UpsertCodeProviderConfig(ctx context.Context, arg UpsertCodeProviderConfigParams) (CodeProviderConfig, error) {
	row := q.db.QueryRow(ctx, upsertCodeProviderConfig, arg.TenantID, arg.Provider, arg.EncryptedConfig)
	var i CodeProviderConfig
	err := row.Scan(&i.TenantID, &i.Provider, &i.EncryptedConfig, &i.UpdatedAt)
	return i, err
}

const getCodeProviderConfig = `
SELECT tenant_id, provider, encrypted_config, updated_at
FROM code_provider_configs
WHERE tenant_id = $1 AND provider = $2`

type GetCodeProviderConfigParams struct {
	TenantID uuid.UUID
	Provider string
}

func (q *Queries) GetCodeProviderConfig(ctx context.Context, arg GetCodeProviderConfigParams) (CodeProviderConfig, error) {
	row := q.db.QueryRow(ctx, getCodeProviderConfig, arg.TenantID, arg.Provider)
	var i CodeProviderConfig
	err := row.Scan(&i.TenantID, &i.Provider, &i.EncryptedConfig, &i.UpdatedAt)
	return i, err
}

// --- jobs ---

const jobColumns = `id, tenant_id, job_type, payload, status, attempt, max_attempts, error, run_at, completed_at, created_at`

func scanJob(row interface{ Scan(...interface{}) error }) (Job, error) {
	var i Job
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.JobType,
		&i.Payload,
		&i.Status,
		&i.Attempt,
		&i.MaxAttempts,
		&i.Error,
		&i.RunAt,
		&i.CompletedAt,
		&i.CreatedAt,
	)
	return i, err
}

const createJob = `
INSERT INTO jobs (tenant_id, job_type, payload, max_attempts)
VALUES ($1, $2, $3, COALESCE(NULLIF($4::int, 0), 3))
RETURNING ` + jobColumns

type CreateJobParams struct {
	TenantID    uuid.UUID
	JobType     string
	Payload     []byte
	MaxAttempts int32
}

func (q *Queries) CreateJob(ctx context.Context, arg CreateJobParams) (Job, error) {
	return scanJob(q.db.QueryRow(ctx, createJob, arg.TenantID, arg.JobType, arg.Payload, arg.MaxAttempts))
}

const getJob = `
SELECT ` + jobColumns + `
FROM jobs
WHERE id = $1 AND tenant_id = $2`

type GetJobParams struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

func (q *Queries) GetJob(ctx context.Context, arg GetJobParams) (Job, error) {
	return scanJob(q.db.QueryRow(ctx, getJob, arg.ID, arg.TenantID))
}

// ClaimNextJob atomically moves the oldest due pending job to running and
// bumps its attempt counter. Concurrent workers skip rows another worker holds.
const claimNextJob = `
UPDATE jobs
SET status = 'running', attempt = attempt + 1
WHERE id = (
    SELECT id FROM jobs
    WHERE status = 'pending' AND run_at <= now()
    ORDER BY run_at
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
RETURNING ` + jobColumns

func (q *Queries) ClaimNextJob(ctx context.Context) (Job, error) {
	return scanJob(q.db.QueryRow(ctx, claimNextJob))
}

const updateJobStatus = `
UPDATE jobs
SET status = $2, error = $3, completed_at = $4, run_at = $5
WHERE id = $1
RETURNING ` + jobColumns

type UpdateJobStatusParams struct {
	ID          uuid.UUID
	Status      string
	Error       pgtype.Text
	CompletedAt *time.Time
	RunAt       time.Time
}

func (q *Queries) UpdateJobStatus(ctx context.Context, arg UpdateJobStatusParams) (Job, error) {
	return scanJob(q.db.QueryRow(ctx, updateJobStatus, arg.ID, arg.Status, arg.Error, arg.CompletedAt, arg.RunAt))
}

// ReleaseJob returns a running job to the queue and gives back the attempt
// its claim consumed.
const releaseJob = `
UPDATE jobs
SET status = 'pending', attempt = GREATEST(attempt - 1, 0), run_at = now()
WHERE id = $1 AND status = 'running'
RETURNING ` + jobColumns

func (q *Queries) ReleaseJob(ctx context.Context, id uuid.UUID) (Job, error) {
	return scanJob(q.db.QueryRow(ctx, releaseJob, id))
}

// --- code executions ---

const codeExecutionColumns = `id, job_id, tenant_id, token, output, error_text, transport_error, verdict, inconclusive, note, status_id, status, created_at`

func scanCodeExecution(row interface{ Scan(...interface{}) error }) (CodeExecution, error) {
	var i CodeExecution
	err := row.Scan(
		&i.ID,
		&i.JobID,
		&i.TenantID,
		&i.Token,
		&i.Output,
		&i.ErrorText,
		&i.TransportError,
		&i.Verdict,
		&i.Inconclusive,
		&i.Note,
		&i.StatusID,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

const insertCodeExecution = `
INSERT INTO code_executions (job_id, tenant_id, token, output, error_text, transport_error, verdict, inconclusive, note, status_id, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (job_id) DO UPDATE SET
    token = EXCLUDED.token,
    output = EXCLUDED.output,
    error_text = EXCLUDED.error_text,
    transport_error = EXCLUDED.transport_error,
    verdict = EXCLUDED.verdict,
    inconclusive = EXCLUDED.inconclusive,
    note = EXCLUDED.note,
    status_id = EXCLUDED.status_id,
    status = EXCLUDED.status
RETURNING ` + codeExecutionColumns

type InsertCodeExecutionParams struct {
	JobID          uuid.UUID
	TenantID       uuid.UUID
	Token          string
	Output         string
	ErrorText      string
	TransportError string
	Verdict        pgtype.Text
	Inconclusive   bool
	Note           string
	StatusID       int32
	Status         string
}

func (q *Queries) InsertCodeExecution(ctx context.Context, arg InsertCodeExecutionParams) (CodeExecution, error) {
	return scanCodeExecution(q.db.QueryRow(ctx, insertCodeExecution,
		arg.JobID,
		arg.TenantID,
		arg.Token,
		arg.Output,
		arg.ErrorText,
		arg.TransportError,
		arg.Verdict,
		arg.Inconclusive,
		arg.Note,
		arg.StatusID,
		arg.Status,
	))
}

const getCodeExecution = `
SELECT ` + codeExecutionColumns + `
FROM code_executions
WHERE job_id = $1 AND tenant_id = $2`

type GetCodeExecutionParams struct {
	JobID    uuid.UUID
	TenantID uuid.UUID
}

func (q *Queries) GetCodeExecution(ctx context.Context, arg GetCodeExecutionParams) (CodeExecution, error) {
	return scanCodeExecution(q.db.QueryRow(ctx, getCodeExecution, arg.JobID, arg.TenantID))
}
