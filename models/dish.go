package models

import (
	"time"

	"gorm.io/gorm"
)

// Dish categories as stored on the menu
const (
	CategoryFood     = "food"
	CategoryDrink    = "drink"
	CategorySalad    = "salad"
	CategoryDessert  = "dessert"
	CategoryShashlik = "shashlik"
	CategoryOther    = "other"
)

// Dish represents a menu item with its price and stock on hand
type Dish struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Price     int64          `gorm:"not null;check:price >= 0" json:"price"` // whole so'm
	Category  string         `gorm:"not null;default:'food'" json:"category"`
	Quantity  int            `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Dish model
func (Dish) TableName() string {
	return "dishes"
}

// ValidCategory reports whether c is a known dish category
func ValidCategory(c string) bool {
	switch c {
	case CategoryFood, CategoryDrink, CategorySalad, CategoryDessert, CategoryShashlik, CategoryOther:
		return true
	}
	return false
}
