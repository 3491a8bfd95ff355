package models

import "time"

// Table is a dining table on the floor. While active it is held by at most
// one waiter; an inactive table has no waiter.
type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    int       `gorm:"uniqueIndex;not null" json:"number"`
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`
	WorkerID  *uint     `gorm:"index" json:"worker_id"` // lookup key only, no cascade
	Worker    *Worker   `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Table model
func (Table) TableName() string {
	return "tables"
}

// HeldByOther reports whether the table is assigned to a worker other than workerID
func (t Table) HeldByOther(workerID uint) bool {
	return t.WorkerID != nil && *t.WorkerID != workerID
}
