package models

import (
	"time"

	"gorm.io/gorm"
)

// Worker roles
const (
	RoleAdmin  = "admin"
	RoleWaiter = "waiter"
	RoleChef   = "chef"
)

// Worker represents a member of staff. Subject is the identity token's 'sub' claim.
type Worker struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Subject   string         `gorm:"uniqueIndex;not null" json:"subject"`
	Fullname  string         `gorm:"not null" json:"fullname"`
	Role      string         `gorm:"not null;default:'waiter'" json:"role"` // admin, waiter, chef
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Worker model
func (Worker) TableName() string {
	return "workers"
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{&Worker{}, &Dish{}, &Table{}, &Order{}, &OrderItem{}}
}
