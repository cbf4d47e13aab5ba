package lookml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"orders", "orders"},
		{"Order-Items", "order_items"},
		{"a b.c", "a_b_c"},
		{"total$", "total_"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeSegment(tt.in), tt.in)
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"items", "items"},
		{"items.sku", "items__sku"},
		{"a.b.c", "a__b__c"},
		{"Items.SKU-Code", "items__sku_code"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizePath(tt.in), tt.in)
	}
}

func TestTitleLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"order_items", "Order Items"},
		{"orders", "Orders"},
		{"items.sku", "Items Sku"},
		{"a__b", "A B"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, titleLabel(tt.in), tt.in)
	}
}
