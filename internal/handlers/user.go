package handlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/magacin-dev/magacin/internal/auth"
	"github.com/magacin-dev/magacin/internal/httpx"
	"github.com/magacin-dev/magacin/internal/models"
	"github.com/magacin-dev/magacin/internal/policy"
)

type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler { return &UserHandler{DB: db} }

// List returns all accounts. Owner only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	if !policy.CanManageUsers(caller.Role) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	var users []models.User
	if err := h.DB.Order("id desc").Find(&users).Error; err != nil {
		writeDBError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

// UpdateRole changes another user's role. Owner only, and an owner may not
// change their own role so the system always keeps at least one owner.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	if !policy.CanManageUsers(caller.Role) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	role := models.Role(input.Role)
	if !role.Valid() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"role": "unrecognized"})
		return
	}
	if id == caller.ID {
		httpx.JSONError(w, http.StatusBadRequest, "cannot_change_own_role", nil)
		return
	}
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		writeDBError(w, err)
		return
	}
	user.Role = role
	if err := h.DB.Save(&user).Error; err != nil {
		writeDBError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
