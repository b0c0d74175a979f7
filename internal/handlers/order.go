package handlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/magacin-dev/magacin/internal/auth"
	"github.com/magacin-dev/magacin/internal/httpx"
	"github.com/magacin-dev/magacin/internal/services"
)

type OrderHandler struct {
	Orders *services.OrderService
}

func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{Orders: services.NewOrderService(db)}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	orders, err := h.Orders.List(caller, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	var input services.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	order, err := h.Orders.Create(caller, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.Orders.Get(caller, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Transition moves an order to a new status, optionally assigning a courier.
// The stock side effect on completion happens inside the service transaction.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input services.TransitionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	order, err := h.Orders.Transition(caller, id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Orders.Delete(caller, id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
