package models

import "time"

// Role is the closed set of account roles. Authorization decisions branch on
// this value only; there is no per-user permission storage.
type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleWorker  Role = "WORKER"
	RoleCourier Role = "COURIER"
)

// Roles lists every recognized role, in display order.
var Roles = []Role{RoleOwner, RoleWorker, RoleCourier}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleWorker, RoleCourier:
		return true
	}
	return false
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	Email        string `gorm:"unique;not null;index"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
