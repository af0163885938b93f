package syncer

import (
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
)

// SeedState tracks the one-time default catalog seed of a session.
type SeedState int

const (
	Unseeded SeedState = iota
	Seeded
)

func (s SeedState) String() string {
	if s == Seeded {
		return "seeded"
	}
	return "unseeded"
}

func (s SeedState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is the local mirror of a scope's live collections.
type State struct {
	Scope           entity.TenantScope       `json:"scope"`
	Settings        entity.CompanySettings   `json:"settings"`
	Templates       []entity.ServiceTemplate `json:"templates"`
	NewInquiries    []entity.Inquiry         `json:"new_inquiries,omitempty"`
	NewInquiryCount int                      `json:"new_inquiry_count"`
	Seed            SeedState                `json:"seed"`
	Ready           bool                     `json:"ready"`
	// Errors holds the last subscription error of each frozen mirror.
	Errors  map[enum.Collection]string `json:"errors,omitempty"`
	Version uint64                     `json:"version"`
}

func emptyState(scope entity.TenantScope) State {
	return State{
		Scope:     scope,
		Settings:  *entity.DefaultCompanySettings(scope.TenantID),
		Templates: []entity.ServiceTemplate{},
	}
}

func (s State) clone() State {
	out := s
	out.Templates = append([]entity.ServiceTemplate(nil), s.Templates...)
	if out.Templates == nil {
		out.Templates = []entity.ServiceTemplate{}
	}
	if s.NewInquiries != nil {
		out.NewInquiries = append([]entity.Inquiry(nil), s.NewInquiries...)
	}
	if s.Errors != nil {
		out.Errors = make(map[enum.Collection]string, len(s.Errors))
		for k, v := range s.Errors {
			out.Errors[k] = v
		}
	}
	return out
}
