package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/magacin-dev/magacin/internal/models"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Supplier{}, &models.Product{}, &models.Order{}, &models.OrderLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func TestHealthEndpoints(t *testing.T) {
	h := setupRouter(t)
	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := setupRouter(t)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/products"},
		{http.MethodGet, "/api/orders"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/auth/me"},
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", route.method, route.path, w.Code)
		}
	}
}

// End to end: register, authenticate with the returned token, create a
// product and a purchase order, complete it and confirm the stock moved.
func TestRegisterAndOrderFlow(t *testing.T) {
	h := setupRouter(t)

	do := func(method, path, token, body string) *httptest.ResponseRecorder {
		var r *http.Request
		if body != "" {
			r = httptest.NewRequest(method, path, strings.NewReader(body))
			r.Header.Set("Content-Type", "application/json")
		} else {
			r = httptest.NewRequest(method, path, nil)
		}
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	w := do(http.MethodPost, "/api/auth/register", "", `{"first_name":"Ana","last_name":"Anić","email":"ana@test.com","password":"lozinka123","role":"OWNER"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var reg struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil || reg.Token == "" {
		t.Fatalf("no token in register response: %v %s", err, w.Body.String())
	}

	w = do(http.MethodPost, "/api/suppliers", reg.Token, `{"company_name":"Veletrgovina d.o.o."}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("supplier: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	w = do(http.MethodPost, "/api/products", reg.Token, `{"name":"Brašno","code":"BR-1","price":2.5,"quantity":0,"unit":"kg"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("product: expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	w = do(http.MethodPost, "/api/orders", reg.Token, `{"type":"PURCHASE","supplier_id":1,"lines":[{"product_id":1,"quantity":12}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("order: expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	w = do(http.MethodPatch, "/api/orders/1/status", reg.Token, `{"status":"COMPLETED"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("transition: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	w = do(http.MethodGet, "/api/products/1", reg.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("product get: expected 200 got %d", w.Code)
	}
	var product models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if product.Quantity != 12 {
		t.Fatalf("expected quantity 12 got %d", product.Quantity)
	}
}
