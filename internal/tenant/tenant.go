package tenant

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gsarma/codetester/internal/crypto"
	"github.com/gsarma/codetester/internal/store"
)

var ErrInvalidAPIKey = errors.New("invalid API key")

// Service provisions tenants, resolves API keys and seals per-tenant
// judge credentials.
type Service struct {
	queries store.Querier
	enc     *crypto.Encryptor
}

func NewService(q store.Querier, enc *crypto.Encryptor) *Service {
	return &Service{queries: q, enc: enc}
}

// Create provisions a new tenant, returning the raw API key (shown once).
func (s *Service) Create(ctx context.Context) (apiKey string, tenantID uuid.UUID, err error) {
	rawKey, err := generateAPIKey()
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("generate api key: %w", err)
	}

	_, sealedKey, err := s.enc.NewDataKey()
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("generate data key: %w", err)
	}

	t, err := s.queries.CreateTenant(ctx, store.CreateTenantParams{
		ApiKeyHash:       hashAPIKey(rawKey),
		EncryptedDataKey: sealedKey,
	})
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("create tenant: %w", err)
	}
	return rawKey, t.ID, nil
}

// GetByAPIKey resolves a tenant from a raw API key.
func (s *Service) GetByAPIKey(ctx context.Context, rawKey string) (*store.Tenant, error) {
	t, err := s.queries.GetTenantByAPIKeyHash(ctx, hashAPIKey(rawKey))
	if err != nil {
		return nil, ErrInvalidAPIKey
	}
	return &t, nil
}

// Seal encrypts v as JSON with the tenant's data key.
func (s *Service) Seal(t *store.Tenant, v any) ([]byte, error) {
	key, err := s.enc.OpenDataKey(t.EncryptedDataKey)
	if err != nil {
		return nil, err
	}
	return crypto.SealJSON(key, v)
}

// Open reverses Seal.
func (s *Service) Open(t *store.Tenant, data []byte, v any) error {
	key, err := s.enc.OpenDataKey(t.EncryptedDataKey)
	if err != nil {
		return err
	}
	return crypto.OpenJSON(key, data, v)
}

func hashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

func generateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
