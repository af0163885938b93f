package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/enum"
)

// ChangeNotifier announces that a tenant's collection changed so live
// subscribers reload it. Delivery problems are logged, never returned,
// so a committed write is never reported as failed.
type ChangeNotifier interface {
	Notify(ctx context.Context, collection enum.Collection, tenantID uuid.UUID)
}
