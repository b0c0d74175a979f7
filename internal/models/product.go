package models

import "time"

// Product is a catalog entry with its current stock level. Quantity is only
// mutated by product CRUD and by order completion; it must never go negative.
type Product struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"not null"`
	Code      string  `gorm:"size:40;unique;not null;index"`
	Price     float64 `gorm:"not null"`
	Quantity  int     `gorm:"not null;default:0;check:quantity >= 0"`
	Unit      string  `gorm:"size:20"` // unit of measure, e.g. kom, kg, l
	CreatedAt time.Time
	UpdatedAt time.Time
}
