package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdempotencyKey remembers the response of a write so a retry carrying the
// same key replays it. Fingerprint ties the key to one route and body.
type IdempotencyKey struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_idempotency_tenant_key"`
	Key         string    `gorm:"size:255;not null;uniqueIndex:idx_idempotency_tenant_key"`
	Fingerprint string    `gorm:"size:64;not null"`
	Route       string    `gorm:"size:255;not null"`
	StatusCode  int       `gorm:"not null"`
	ContentType string    `gorm:"size:100"`
	Body        []byte
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

func (k *IdempotencyKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// Matches reports whether a retry is the same request the key was first
// used for.
func (k *IdempotencyKey) Matches(fingerprint string) bool {
	return k.Fingerprint == fingerprint
}
