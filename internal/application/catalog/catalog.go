// Package catalog holds the built-in service modules and turns template
// selections into priced line items.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// defaultNamespace derives stable identifiers for the built-in modules so a
// visitor can select them before the tenant has a stored catalog.
var defaultNamespace = uuid.MustParse("6f1c1f5e-3a0e-4d5e-9b7a-2f64a1c0d7e3")

type defaultsFile struct {
	Templates []struct {
		Name        string                `yaml:"name"`
		Description string                `yaml:"description"`
		Items       []entity.TemplateItem `yaml:"items"`
	} `yaml:"templates"`
}

var (
	loadOnce  sync.Once
	defaults  []entity.ServiceTemplate
	loadError error
)

// Parse decodes a catalog document in the defaults.yaml format.
func Parse(data []byte) ([]entity.ServiceTemplate, error) {
	var file defaultsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	templates := make([]entity.ServiceTemplate, 0, len(file.Templates))
	for i, t := range file.Templates {
		if errs := Validate(t.Name, t.Items); len(errs) > 0 {
			return nil, fmt.Errorf("catalog template %d (%q) is invalid: %v", i, t.Name, errs)
		}
		templates = append(templates, entity.ServiceTemplate{
			ID:          uuid.NewSHA1(defaultNamespace, []byte(t.Name)),
			Name:        t.Name,
			Description: t.Description,
			Items:       datatypes.JSONSlice[entity.TemplateItem](t.Items),
			Position:    i,
		})
	}
	return templates, nil
}

// Defaults returns a fresh copy of the built-in catalog.
func Defaults() []entity.ServiceTemplate {
	loadOnce.Do(func() {
		defaults, loadError = Parse(defaultsYAML)
	})
	if loadError != nil {
		panic(loadError)
	}
	return cloneTemplates(defaults)
}

// ForTenant returns the default catalog stamped with a tenant id, ready for
// insertion. Identifiers are cleared so storage assigns canonical ones.
func ForTenant(tenantID uuid.UUID) []entity.ServiceTemplate {
	templates := Defaults()
	for i := range templates {
		templates[i].ID = uuid.Nil
		templates[i].TenantID = tenantID
	}
	return templates
}

// Resolve falls back to the built-in catalog when a tenant has none stored.
func Resolve(stored []entity.ServiceTemplate) []entity.ServiceTemplate {
	if len(stored) > 0 {
		return stored
	}
	return Defaults()
}

// ExpandTemplate prices every item of t at the floored midpoint of its
// range with quantity 1.
func ExpandTemplate(t entity.ServiceTemplate) []entity.LineItem {
	items := make([]entity.LineItem, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, entity.LineItem{
			ID:          uuid.NewString(),
			Type:        enum.ItemTypeService,
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    1,
			UnitPrice:   entity.Amount(it.MidpointPrice()),
		})
	}
	return items
}

// Expand concatenates the items of the selected templates in selection
// order. Unknown identifiers are skipped.
func Expand(templates []entity.ServiceTemplate, selected []uuid.UUID) []entity.LineItem {
	byID := make(map[uuid.UUID]entity.ServiceTemplate, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}

	items := []entity.LineItem{}
	for _, id := range selected {
		if t, ok := byID[id]; ok {
			items = append(items, ExpandTemplate(t)...)
		}
	}
	return items
}

// Validate checks a template form and returns field-keyed errors.
func Validate(name string, items []entity.TemplateItem) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(name) == "" {
		errs["name"] = "name is required"
	}
	for i, it := range items {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case strings.TrimSpace(it.Description) == "":
			errs[field+".description"] = "description is required"
		case it.PriceMin.Float() < 0 || it.PriceMax.Float() < 0:
			errs[field+".price"] = "prices must not be negative"
		case it.PriceMin.Float() > it.PriceMax.Float():
			errs[field+".price_min"] = "price_min must not exceed price_max"
		}
	}
	return errs
}

func cloneTemplates(in []entity.ServiceTemplate) []entity.ServiceTemplate {
	out := make([]entity.ServiceTemplate, len(in))
	for i, t := range in {
		items := make([]entity.TemplateItem, len(t.Items))
		copy(items, t.Items)
		t.Items = items
		out[i] = t
	}
	return out
}
