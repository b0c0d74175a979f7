package models

import "time"

// Supplier is referenced by purchase orders. Contact fields are optional.
type Supplier struct {
	ID          uint   `gorm:"primaryKey"`
	CompanyName string `gorm:"not null;index"`
	Phone       string
	Email       string
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
