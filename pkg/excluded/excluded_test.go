package excluded

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		expected bool
	}{
		{"exact PascalSnake", "Product_Line", true},
		{"exact lower snake", "product_line", true},
		{"exact upper snake", "PRODUCT_LINE", true},
		{"exact spaced", "Product Line", true},
		{"bracketed business unit", "[Business Unit]", true},
		{"business unit code", "BUSINESS_UNIT_CODE", true},
		{"bracketed product type", "[Product Type]", true},
		{"lowercase business unit with space", "business unit", true},
		{"unrelated column", "customer_id", false},
		{"case mismatch is not excluded", "PRODUCT_line", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsExcluded(tt.field))
		})
	}
}
