package entity

import "github.com/google/uuid"

// TenantScope identifies whose data a session works on. Public scope is
// read-mostly: it may read settings and templates and create inquiries.
type TenantScope struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Public   bool      `json:"public"`
}

// Valid reports whether the scope names a tenant.
func (s TenantScope) Valid() bool {
	return s.TenantID != uuid.Nil
}

// OwnerScope is the scope of an authenticated tenant working on its own data.
func OwnerScope(tenantID uuid.UUID) TenantScope {
	return TenantScope{TenantID: tenantID}
}

// PublicScope is the scope of an anonymous visitor of a tenant's share link.
func PublicScope(tenantID uuid.UUID) TenantScope {
	return TenantScope{TenantID: tenantID, Public: true}
}
