package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/magacin-dev/magacin/internal/httpx"
	"github.com/magacin-dev/magacin/internal/logger"
	"github.com/magacin-dev/magacin/internal/services"
)

// writeServiceError translates a service error into the matching HTTP
// response. Unknown errors are logged and reported as a generic 500 so
// internals never leak to the client.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
		return
	}
	var serr *services.InsufficientStockError
	if errors.As(err, &serr) {
		httpx.JSON(w, http.StatusConflict, map[string]any{
			"error":        "insufficient_stock",
			"product_id":   serr.ProductID,
			"product_name": serr.ProductName,
			"requested":    serr.Requested,
			"available":    serr.Available,
		})
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, services.ErrConflict):
		httpx.JSONError(w, http.StatusConflict, "conflict", nil)
	default:
		logger.Log.Error("unhandled service error", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// writeDBError handles errors from handlers that talk to gorm directly.
func writeDBError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		httpx.JSONError(w, http.StatusConflict, "already_exists", nil)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		httpx.JSONError(w, http.StatusConflict, "in_use", nil)
	default:
		logger.Log.Error("database error", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
