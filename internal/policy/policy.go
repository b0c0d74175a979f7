// Package policy holds the role-based authorization rules for every
// operation that is not open to all authenticated users. Rules are pure
// functions over the caller identity and the loaded resource, so they can be
// re-checked inside a transaction against fresh state.
package policy

import (
	"github.com/magacin-dev/magacin/internal/auth"
	"github.com/magacin-dev/magacin/internal/models"
)

// CanTransitionOrder reports whether the role may change order status at all.
// Whether a courier may touch this particular order is decided by
// IsAssignedCourier against the row loaded inside the transaction.
func CanTransitionOrder(role models.Role) bool {
	return role == models.RoleOwner || role == models.RoleCourier
}

// IsAssignedCourier reports whether the caller is the courier assigned to the
// order. Owners bypass this check; workers never reach it.
func IsAssignedCourier(caller auth.Identity, o *models.Order) bool {
	return o.CourierID != nil && *o.CourierID == caller.ID
}

// CanAssignCourier: only owners may set or change the assigned courier.
func CanAssignCourier(role models.Role) bool {
	return role == models.RoleOwner
}

// CanDeleteOrder: only owners may delete order documents.
func CanDeleteOrder(role models.Role) bool {
	return role == models.RoleOwner
}

// CanManageUsers: only owners may list accounts or change roles.
func CanManageUsers(role models.Role) bool {
	return role == models.RoleOwner
}

// CanViewOrder: couriers see only their assigned orders, everyone else sees all.
func CanViewOrder(caller auth.Identity, o *models.Order) bool {
	if caller.Role == models.RoleCourier {
		return IsAssignedCourier(caller, o)
	}
	return true
}
