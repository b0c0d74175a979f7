package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/magacin-dev/magacin/internal/httpx"
	"github.com/magacin-dev/magacin/internal/models"
	"github.com/magacin-dev/magacin/internal/validation"
)

type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Model(&models.Product{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(code) LIKE ?", like, like)
	}
	var products []models.Product
	if err := dbq.Order("id desc").Find(&products).Error; err != nil {
		writeDBError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		writeDBError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string  `json:"name"`
		Code     string  `json:"code"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
		Unit     string  `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.Required("code", input.Code, v)
	validation.PositiveFloat("price", input.Price, v)
	validation.NonNegativeInt("quantity", input.Quantity, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	product := models.Product{
		Name:     strings.TrimSpace(input.Name),
		Code:     strings.ToUpper(strings.TrimSpace(input.Code)),
		Price:    input.Price,
		Quantity: input.Quantity,
		Unit:     input.Unit,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		writeDBError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Update applies a partial edit: only fields present in the body change.
// A supplied quantity overwrites the stock level directly (manual correction);
// order completion remains the only other stock-mutation path.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		writeDBError(w, err)
		return
	}
	var body struct {
		Name     *string  `json:"name"`
		Code     *string  `json:"code"`
		Price    *float64 `json:"price"`
		Quantity *int     `json:"quantity"`
		Unit     *string  `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if body.Name != nil {
		validation.Required("name", *body.Name, v)
	}
	if body.Code != nil {
		validation.Required("code", *body.Code, v)
	}
	if body.Price != nil {
		validation.PositiveFloat("price", *body.Price, v)
	}
	if body.Quantity != nil {
		validation.NonNegativeInt("quantity", *body.Quantity, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if body.Name != nil {
		product.Name = strings.TrimSpace(*body.Name)
	}
	if body.Code != nil {
		product.Code = strings.ToUpper(strings.TrimSpace(*body.Code))
	}
	if body.Price != nil {
		product.Price = *body.Price
	}
	if body.Quantity != nil {
		product.Quantity = *body.Quantity
	}
	if body.Unit != nil {
		product.Unit = *body.Unit
	}
	if err := h.DB.Save(&product).Error; err != nil {
		writeDBError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete removes a product. A product referenced by order lines is kept and
// the conflict reported, so historical documents stay intact.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		writeDBError(w, err)
		return
	}
	var refs int64
	if err := h.DB.Model(&models.OrderLine{}).Where("product_id = ?", product.ID).Count(&refs).Error; err != nil {
		writeDBError(w, err)
		return
	}
	if refs > 0 {
		httpx.JSONError(w, http.StatusConflict, "in_use", nil)
		return
	}
	if err := h.DB.Delete(&product).Error; err != nil {
		writeDBError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": product.ID})
}

// pathID parses the {id} path segment, writing a 400 on garbage input.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	n, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || n <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(n), true
}
