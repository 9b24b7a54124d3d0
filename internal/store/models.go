package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Tenant struct {
	ID               uuid.UUID `json:"id"`
	ApiKeyHash       string    `json:"-"`
	EncryptedDataKey []byte    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

type CodeProviderConfig struct {
	TenantID        uuid.UUID `json:"tenant_id"`
	Provider        string    `json:"provider"`
	EncryptedConfig []byte    `json:"-"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Job struct {
	ID          uuid.UUID   `json:"id"`
	TenantID    uuid.UUID   `json:"tenant_id"`
	JobType     string      `json:"job_type"`
	Payload     []byte      `json:"-"`
	Status      string      `json:"status"`
	Attempt     int32       `json:"attempt"`
	MaxAttempts int32       `json:"max_attempts"`
	Error       pgtype.Text `json:"error"`
	RunAt       time.Time   `json:"run_at"`
	CompletedAt *time.Time  `json:"completed_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

type CodeExecution struct {
	ID             uuid.UUID   `json:"id"`
	JobID          uuid.UUID   `json:"job_id"`
	TenantID       uuid.UUID   `json:"tenant_id"`
	Token          string      `json:"token"`
	Output         string      `json:"output"`
	ErrorText      string      `json:"error_text"`
	TransportError string      `json:"transport_error"`
	Verdict        pgtype.Text `json:"verdict"`
	Inconclusive   bool        `json:"inconclusive"`
	Note           string      `json:"note"`
	StatusID       int32       `json:"status_id"`
	Status         string      `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
}
