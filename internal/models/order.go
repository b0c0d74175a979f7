package models

import "time"

// OrderType distinguishes inbound purchases from outbound sales. Completion
// of a PURCHASE increases stock, completion of a SALE decreases it.
type OrderType string

const (
	OrderTypePurchase OrderType = "PURCHASE"
	OrderTypeSale     OrderType = "SALE"
)

func (t OrderType) Valid() bool {
	return t == OrderTypePurchase || t == OrderTypeSale
}

// OrderStatus values recognized on the wire. The chain is not strictly
// ordered: callers may move an order to any recognized status, but the stock
// side effect fires only on the first entry into COMPLETED.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusSent      OrderStatus = "SENT"
	StatusInTransit OrderStatus = "IN_TRANSIT"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every recognized status, in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusCreated, StatusSent, StatusInTransit,
	StatusDelivered, StatusCompleted, StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusSent, StatusInTransit,
		StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order is an order document (narudžbenica). Total is a snapshot computed
// from product prices at creation time; later price edits do not change it.
type Order struct {
	ID           uint        `gorm:"primaryKey"`
	Type         OrderType   `gorm:"type:varchar(16);not null"`
	Status       OrderStatus `gorm:"type:varchar(16);not null;index"`
	Note         string
	Total        float64 `gorm:"not null"`
	DocumentPath string
	CreatedByID  uint `gorm:"not null;index"`
	CreatedBy    User `gorm:"foreignKey:CreatedByID"`
	SupplierID   *uint
	Supplier     *Supplier `gorm:"foreignKey:SupplierID"`
	CourierID    *uint     `gorm:"index"`
	Courier      *User     `gorm:"foreignKey:CourierID"`
	Lines        []OrderLine
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderLine belongs to exactly one order. Total is quantity times the product
// price captured at order creation; it is never re-read from the product.
// The product reference is restrictive: a product with lines cannot be deleted.
type OrderLine struct {
	ID        uint    `gorm:"primaryKey"`
	OrderID   uint    `gorm:"not null;index"`
	ProductID uint    `gorm:"not null;index"`
	Product   Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Quantity  int     `gorm:"not null;check:quantity > 0"`
	Total     float64 `gorm:"not null"`
}
