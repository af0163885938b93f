package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotePDF(t *testing.T) {
	pdf, err := QuotePDF(Quote{
		Company:   Company{Name: "Studio", Phone: "02-1234", Websites: []string{"https://studio.example"}},
		QuoteNo:   "Q20240501",
		QuoteDate: "2024-05-01",
		Lines: []Line{
			{Description: "Design", Unit: "set", Quantity: "1", UnitPrice: "999", Amount: "999"},
			{Text: true, Description: "---"},
		},
		Subtotal: "999",
		TaxLabel: "Tax (5%)",
		Tax:      "50",
		Total:    "1049",
		Note:     "line one\nline two",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "a / c", joinNonEmpty(" / ", "a", " ", "c"))
	assert.Equal(t, "", joinNonEmpty(" / "))
}
