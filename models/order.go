package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. closed is terminal.
const (
	OrderStatusOpen   = "open"
	OrderStatusClosed = "closed"
)

// Order is a snapshot of reserved line items placed on one table by one waiter
type Order struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TableID    uint           `gorm:"not null;index" json:"table_id"`
	Table      *Table         `gorm:"foreignKey:TableID" json:"table,omitempty"`
	WorkerID   uint           `gorm:"not null;index" json:"worker_id"` // creating waiter
	Worker     *Worker        `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	Items      []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	TotalPrice int64          `gorm:"not null;check:total_price >= 0" json:"total_price"`
	Status     string         `gorm:"not null;default:'open';index" json:"status"` // open, closed
	ClosedByID *uint          `json:"closed_by_id,omitempty"`
	ClosedAt   *time.Time     `json:"closed_at,omitempty"`
	ReceiptKey *string        `json:"receipt_key,omitempty"`                // archived receipt object key
	ReceiptURL *string        `gorm:"-" json:"receipt_url,omitempty"` // computed field, presigned URL for the receipt
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsOpen reports whether the order can still be closed
func (o Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

// OrderItem is one line of an order. Name, price and category are copied from
// the dish at creation so later dish edits do not rewrite past orders.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	DishID    uint      `gorm:"not null;index" json:"dish_id"`
	Name      string    `gorm:"not null" json:"name"`
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	Category  string    `gorm:"not null" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is quantity times the captured unit price
func (i OrderItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}
