package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/infrastructure/database/dbtest"
	"gorm.io/gorm"
)

type notice struct {
	collection enum.Collection
	tenantID   uuid.UUID
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (r *recordingNotifier) Notify(_ context.Context, c enum.Collection, tenantID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{c, tenantID})
}

func (r *recordingNotifier) count(c enum.Collection) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notices {
		if x.collection == c {
			n++
		}
	}
	return n
}

func newTestDB(t *testing.T) (*gorm.DB, uuid.UUID) {
	t.Helper()
	return dbtest.New(t), uuid.New()
}
