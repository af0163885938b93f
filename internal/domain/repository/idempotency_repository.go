package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses per tenant and key.
type IdempotencyRepository interface {
	// Find returns the live record for key, or nil once it has expired.
	Find(ctx context.Context, tenantID uuid.UUID, key string, now time.Time) (*entity.IdempotencyKey, error)
	// Save keeps the first record stored under a key; later saves are no-ops.
	Save(ctx context.Context, record *entity.IdempotencyKey) error
	Purge(ctx context.Context, before time.Time) (int64, error)
}
