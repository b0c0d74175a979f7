package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/magacin-dev/magacin/internal/httpx"
	"github.com/magacin-dev/magacin/internal/models"
	"github.com/magacin-dev/magacin/internal/validation"
)

type SupplierHandler struct {
	DB *gorm.DB
}

func NewSupplierHandler(db *gorm.DB) *SupplierHandler { return &SupplierHandler{DB: db} }

func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	var suppliers []models.Supplier
	if err := h.DB.Order("company_name asc").Find(&suppliers).Error; err != nil {
		writeDBError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, suppliers)
}

func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CompanyName string `json:"company_name"`
		Phone       string `json:"phone"`
		Email       string `json:"email"`
		Address     string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("company_name", input.CompanyName, v)
	if input.Email != "" {
		validation.Email("email", input.Email, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	supplier := models.Supplier{
		CompanyName: strings.TrimSpace(input.CompanyName),
		Phone:       input.Phone,
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Address:     input.Address,
	}
	if err := h.DB.Create(&supplier).Error; err != nil {
		writeDBError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, supplier)
}
