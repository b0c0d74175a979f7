package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/magacin-dev/magacin/internal/auth"
	"github.com/magacin-dev/magacin/internal/handlers"
	"github.com/magacin-dev/magacin/internal/httpx"
	"github.com/magacin-dev/magacin/internal/logger"
	"github.com/magacin-dev/magacin/internal/models"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("POST /api/auth/register", ah.Register)
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.HandleFunc("POST /api/auth/logout", ah.Logout)
	mux.Handle("GET /api/auth/me", protected(http.HandlerFunc(ah.Me)))

	ph := handlers.NewProductHandler(db)
	mux.Handle("GET /api/products", protected(http.HandlerFunc(ph.List)))
	mux.Handle("POST /api/products", protected(http.HandlerFunc(ph.Create)))
	mux.Handle("GET /api/products/{id}", protected(http.HandlerFunc(ph.Get)))
	mux.Handle("PUT /api/products/{id}", protected(http.HandlerFunc(ph.Update)))
	mux.Handle("DELETE /api/products/{id}", protected(http.HandlerFunc(ph.Delete)))

	sh := handlers.NewSupplierHandler(db)
	mux.Handle("GET /api/suppliers", protected(http.HandlerFunc(sh.List)))
	mux.Handle("POST /api/suppliers", protected(http.HandlerFunc(sh.Create)))

	uh := handlers.NewUserHandler(db)
	mux.Handle("GET /api/users", protected(http.HandlerFunc(uh.List)))
	mux.Handle("PATCH /api/users/{id}/role", protected(http.HandlerFunc(uh.UpdateRole)))

	oh := handlers.NewOrderHandler(db)
	mux.Handle("GET /api/orders", protected(http.HandlerFunc(oh.List)))
	mux.Handle("POST /api/orders", protected(http.HandlerFunc(oh.Create)))
	mux.Handle("GET /api/orders/{id}", protected(http.HandlerFunc(oh.Get)))
	mux.Handle("PATCH /api/orders/{id}/status", protected(http.HandlerFunc(oh.Transition)))
	mux.Handle("DELETE /api/orders/{id}", protected(http.HandlerFunc(oh.Delete)))

	dh := handlers.NewDashboardHandler(db)
	mux.Handle("GET /api/dashboard", protected(http.HandlerFunc(dh.Summary)))

	return withRecover(logger.RequestLogger(mux))
}

func protected(next http.Handler) http.Handler {
	return auth.Middleware(auth.RequireAuth(next))
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.Error("panic recovered", zap.Any("panic", rec))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
