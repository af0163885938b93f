package entity

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/sangkips/quotecrm/internal/domain/enum"
)

// Amount is a quantity or price that decodes leniently: numbers and numeric
// strings are accepted, anything else (null, empty, garbage) becomes 0.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = Amount(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		*a = Amount(f)
	}
	return nil
}

// Float returns the amount, mapping NaN and infinities to 0.
func (a Amount) Float() float64 {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// LineItem is one row of a quote or inquiry. Text rows carry only a
// description and never contribute to totals.
type LineItem struct {
	ID          string        `json:"id"`
	Type        enum.ItemType `json:"type"`
	Description string        `json:"description"`
	Unit        string        `json:"unit,omitempty"`
	Quantity    Amount        `json:"quantity"`
	UnitPrice   Amount        `json:"unit_price"`
	IsManual    bool          `json:"is_manual"`
}

// IsText reports whether the row is an unpriced separator.
func (i LineItem) IsText() bool {
	return i.Type == enum.ItemTypeText
}

// CloneItems returns a deep copy of items so drafts never share backing arrays.
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// DescribeItems joins item descriptions for summaries and exports.
func DescribeItems(items []LineItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Description)
	}
	return strings.Join(parts, "; ")
}
