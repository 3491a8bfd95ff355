package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "orders", Order{}.TableName())
	assert.Equal(t, "order_items", OrderItem{}.TableName())
	assert.Equal(t, "dishes", Dish{}.TableName())
	assert.Equal(t, "tables", Table{}.TableName())
	assert.Equal(t, "workers", Worker{}.TableName())
}

func TestTableHeldByOther(t *testing.T) {
	waiter := uint(7)

	tests := []struct {
		name   string
		table  Table
		caller uint
		want   bool
	}{
		{"free table", Table{}, 7, false},
		{"held by caller", Table{IsActive: true, WorkerID: &waiter}, 7, false},
		{"held by someone else", Table{IsActive: true, WorkerID: &waiter}, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.table.HeldByOther(tt.caller))
		})
	}
}

func TestOrderItemLineTotal(t *testing.T) {
	item := OrderItem{Quantity: 3, UnitPrice: 25000}
	assert.Equal(t, int64(75000), item.LineTotal())
}

func TestValidCategory(t *testing.T) {
	for _, c := range []string{"food", "drink", "salad", "dessert", "shashlik", "other"} {
		assert.True(t, ValidCategory(c), c)
	}
	assert.False(t, ValidCategory("salat"))
	assert.False(t, ValidCategory(""))
}

func TestOrderIsOpen(t *testing.T) {
	assert.True(t, Order{Status: OrderStatusOpen}.IsOpen())
	assert.False(t, Order{Status: OrderStatusClosed}.IsOpen())
}
