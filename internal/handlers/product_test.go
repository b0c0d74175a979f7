package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/magacin-dev/magacin/internal/auth"
	"github.com/magacin-dev/magacin/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Supplier{}, &models.Product{}, &models.Order{}, &models.OrderLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("lozinka123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{FirstName: "Test", LastName: "User", Email: email, PasswordHash: string(hash), Role: role}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return &u
}

// authedRequest builds a JSON request with the caller identity injected the
// way auth.Middleware would after verifying a token.
func authedRequest(method, target, body string, u *models.User) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if u != nil {
		r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role}))
	}
	return r
}

func TestProductCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	owner := seedUser(t, db, "owner@test", models.RoleOwner)

	req := authedRequest(http.MethodPost, "/api/products", `{"name":"Brašno T-500","code":"bras-500","price":2.5,"quantity":40,"unit":"kg"}`, owner)
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Code != "BRAS-500" {
		t.Fatalf("expected upper-cased code, got %q", created.Code)
	}

	w2 := httptest.NewRecorder()
	h.List(w2, authedRequest(http.MethodGet, "/api/products", "", owner))
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w2.Code)
	}
	var products []models.Product
	if err := json.Unmarshal(w2.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product got %d", len(products))
	}
}

func TestProductCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	owner := seedUser(t, db, "owner@test", models.RoleOwner)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/products", `{"name":"","code":"","price":-1}`, owner))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "validation_failed") {
		t.Fatalf("expected validation_failed, got %s", w.Body.String())
	}
}

func TestProductDuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	owner := seedUser(t, db, "owner@test", models.RoleOwner)

	body := `{"name":"Šećer","code":"SEC-1","price":1.2}`
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/products", body, owner))
	if w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201 got %d", w.Code)
	}
	w2 := httptest.NewRecorder()
	h.Create(w2, authedRequest(http.MethodPost, "/api/products", body, owner))
	if w2.Code != http.StatusConflict {
		t.Fatalf("duplicate create: expected 409 got %d body=%s", w2.Code, w2.Body.String())
	}
}

func TestProductPartialUpdate(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	owner := seedUser(t, db, "owner@test", models.RoleOwner)

	p := models.Product{Name: "Ulje", Code: "ULJE-1", Price: 3.1, Quantity: 12, Unit: "l"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	req := authedRequest(http.MethodPut, "/api/products/1", `{"price":3.5}`, owner)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var updated models.Product
	if err := db.First(&updated, p.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.Price != 3.5 {
		t.Fatalf("price not updated: %v", updated.Price)
	}
	// Untouched fields keep their values, including stock.
	if updated.Name != "Ulje" || updated.Quantity != 12 {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}

	// A supplied quantity is a direct stock correction.
	req2 := authedRequest(http.MethodPut, "/api/products/1", `{"quantity":25}`, owner)
	req2.SetPathValue("id", "1")
	w2 := httptest.NewRecorder()
	h.Update(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("quantity update: expected 200 got %d body=%s", w2.Code, w2.Body.String())
	}
	if err := db.First(&updated, p.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.Quantity != 25 {
		t.Fatalf("quantity update ignored: sent 25, stored %d", updated.Quantity)
	}

	// Negative stock is rejected.
	req3 := authedRequest(http.MethodPut, "/api/products/1", `{"quantity":-3}`, owner)
	req3.SetPathValue("id", "1")
	w3 := httptest.NewRecorder()
	h.Update(w3, req3)
	if w3.Code != http.StatusBadRequest {
		t.Fatalf("negative quantity: expected 400 got %d", w3.Code)
	}
	if err := db.First(&updated, p.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.Quantity != 25 {
		t.Fatalf("rejected update must not change stock, got %d", updated.Quantity)
	}
}

func TestProductDeleteInUse(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	owner := seedUser(t, db, "owner@test", models.RoleOwner)

	p := models.Product{Name: "Kafa", Code: "KAFA-1", Price: 9, Quantity: 5}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	order := models.Order{Type: models.OrderTypeSale, Status: models.StatusCreated, CreatedByID: owner.ID}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	line := models.OrderLine{OrderID: order.ID, ProductID: p.ID, Quantity: 1, Total: 9}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("seed line: %v", err)
	}

	req := authedRequest(http.MethodDelete, "/api/products/1", "", owner)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", w.Code)
	}

	// Remove the line and the delete goes through.
	if err := db.Delete(&line).Error; err != nil {
		t.Fatalf("cleanup line: %v", err)
	}
	req2 := authedRequest(http.MethodDelete, "/api/products/1", "", owner)
	req2.SetPathValue("id", "1")
	w2 := httptest.NewRecorder()
	h.Delete(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w2.Code)
	}
}

func TestProductGetUnknownID(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	owner := seedUser(t, db, "owner@test", models.RoleOwner)

	req := authedRequest(http.MethodGet, "/api/products/99", "", owner)
	req.SetPathValue("id", "99")
	w := httptest.NewRecorder()
	h.Get(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}

	req2 := authedRequest(http.MethodGet, "/api/products/abc", "", owner)
	req2.SetPathValue("id", "abc")
	w2 := httptest.NewRecorder()
	h.Get(w2, req2)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w2.Code)
	}
}
