package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/magacin-dev/magacin/internal/httpx"
	"github.com/magacin-dev/magacin/internal/models"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler { return &DashboardHandler{DB: db} }

// Summary aggregates the numbers the landing screen shows: entity counts,
// stock totals, order counts broken down by type and status, and the latest
// five documents. Statuses with no orders still appear with a zero count.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var productCount, supplierCount, orderCount, userCount int64
	for _, c := range []struct {
		model any
		dst   *int64
	}{
		{&models.Product{}, &productCount},
		{&models.Supplier{}, &supplierCount},
		{&models.Order{}, &orderCount},
		{&models.User{}, &userCount},
	} {
		if err := h.DB.Model(c.model).Count(c.dst).Error; err != nil {
			writeDBError(w, err)
			return
		}
	}

	var stock struct {
		TotalQuantity int64   `json:"total_quantity"`
		TotalValue    float64 `json:"total_value"`
	}
	err := h.DB.Model(&models.Product{}).
		Select("COALESCE(SUM(quantity),0) AS total_quantity, COALESCE(SUM(quantity * price),0) AS total_value").
		Scan(&stock).Error
	if err != nil {
		writeDBError(w, err)
		return
	}

	byStatus := map[models.OrderStatus]int64{}
	for _, s := range models.OrderStatuses {
		byStatus[s] = 0
	}
	var statusRows []struct {
		Status models.OrderStatus
		N      int64
	}
	if err := h.DB.Model(&models.Order{}).Select("status, COUNT(*) AS n").Group("status").Scan(&statusRows).Error; err != nil {
		writeDBError(w, err)
		return
	}
	for _, row := range statusRows {
		byStatus[row.Status] = row.N
	}

	byType := map[models.OrderType]int64{
		models.OrderTypePurchase: 0,
		models.OrderTypeSale:     0,
	}
	var typeRows []struct {
		Type models.OrderType
		N    int64
	}
	if err := h.DB.Model(&models.Order{}).Select("type, COUNT(*) AS n").Group("type").Scan(&typeRows).Error; err != nil {
		writeDBError(w, err)
		return
	}
	for _, row := range typeRows {
		byType[row.Type] = row.N
	}

	var recent []models.Order
	if err := h.DB.Preload("Supplier").Order("created_at desc, id desc").Limit(5).Find(&recent).Error; err != nil {
		writeDBError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":         productCount,
		"suppliers":        supplierCount,
		"orders":           orderCount,
		"users":            userCount,
		"stock":            stock,
		"orders_by_status": byStatus,
		"orders_by_type":   byType,
		"recent_orders":    recent,
	})
}
