package policy

import (
	"testing"

	"github.com/magacin-dev/magacin/internal/auth"
	"github.com/magacin-dev/magacin/internal/models"
)

func TestRoleGates(t *testing.T) {
	cases := []struct {
		name string
		fn   func(models.Role) bool
		want map[models.Role]bool
	}{
		{"transition", CanTransitionOrder, map[models.Role]bool{
			models.RoleOwner: true, models.RoleWorker: false, models.RoleCourier: true,
		}},
		{"assign courier", CanAssignCourier, map[models.Role]bool{
			models.RoleOwner: true, models.RoleWorker: false, models.RoleCourier: false,
		}},
		{"delete order", CanDeleteOrder, map[models.Role]bool{
			models.RoleOwner: true, models.RoleWorker: false, models.RoleCourier: false,
		}},
		{"manage users", CanManageUsers, map[models.Role]bool{
			models.RoleOwner: true, models.RoleWorker: false, models.RoleCourier: false,
		}},
	}
	for _, tc := range cases {
		for role, want := range tc.want {
			if got := tc.fn(role); got != want {
				t.Errorf("%s: role %s got %v want %v", tc.name, role, got, want)
			}
		}
	}
}

func TestCanViewOrder(t *testing.T) {
	courierID := uint(7)
	order := &models.Order{CourierID: &courierID}
	unassigned := &models.Order{}

	if !CanViewOrder(auth.Identity{ID: 1, Role: models.RoleWorker}, unassigned) {
		t.Error("worker should see any order")
	}
	if !CanViewOrder(auth.Identity{ID: 7, Role: models.RoleCourier}, order) {
		t.Error("assigned courier should see the order")
	}
	if CanViewOrder(auth.Identity{ID: 8, Role: models.RoleCourier}, order) {
		t.Error("other courier should not see the order")
	}
	if CanViewOrder(auth.Identity{ID: 7, Role: models.RoleCourier}, unassigned) {
		t.Error("courier should not see unassigned orders")
	}
}
