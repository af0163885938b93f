package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
)

// announce tells live subscribers that a tenant collection changed. It is
// called only after the write committed.
func announce(ctx context.Context, n repository.ChangeNotifier, c enum.Collection, tenantID uuid.UUID) {
	if n != nil {
		n.Notify(ctx, c, tenantID)
	}
}
