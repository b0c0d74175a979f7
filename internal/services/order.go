package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/magacin-dev/magacin/internal/auth"
	"github.com/magacin-dev/magacin/internal/models"
	"github.com/magacin-dev/magacin/internal/policy"
	"github.com/magacin-dev/magacin/internal/validation"
)

// OrderService owns the order document lifecycle: creation with a price
// snapshot, status transitions with the stock side effect, and deletion of
// not-yet-sent documents. Every multi-row write runs in one transaction.
type OrderService struct{ DB *gorm.DB }

func NewOrderService(db *gorm.DB) *OrderService { return &OrderService{DB: db} }

type OrderLineInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderInput struct {
	Type       string           `json:"type"`
	SupplierID *uint            `json:"supplier_id"`
	Note       string           `json:"note"`
	Lines      []OrderLineInput `json:"lines"`
}

type TransitionInput struct {
	Status    string `json:"status"`
	CourierID *uint  `json:"courier_id"`
}

// Create inserts the order header and its lines in one transaction, capturing
// each line total from the current product price and writing the accumulated
// total back to the header. Later price changes do not touch existing orders.
func (s *OrderService) Create(caller auth.Identity, in CreateOrderInput) (*models.Order, error) {
	v := validation.Violations{}
	typ := models.OrderType(in.Type)
	if !typ.Valid() {
		v["type"] = "must_be_purchase_or_sale"
	}
	if typ == models.OrderTypePurchase && in.SupplierID == nil {
		v["supplier_id"] = "required_for_purchase"
	}
	if typ == models.OrderTypeSale && in.SupplierID != nil {
		v["supplier_id"] = "forbidden_for_sale"
	}
	if len(in.Lines) == 0 {
		v["lines"] = "required"
	}
	for _, l := range in.Lines {
		if l.ProductID == 0 || l.Quantity <= 0 {
			v["lines"] = "invalid_product_or_quantity"
			break
		}
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	order := models.Order{
		Type:        typ,
		Status:      models.StatusCreated,
		Note:        in.Note,
		Total:       0,
		CreatedByID: caller.ID,
		SupplierID:  in.SupplierID,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if in.SupplierID != nil {
			var supplier models.Supplier
			if err := tx.First(&supplier, *in.SupplierID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("supplier %d: %w", *in.SupplierID, ErrNotFound)
				}
				return err
			}
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		var total float64
		for _, l := range in.Lines {
			var product models.Product
			if err := tx.First(&product, l.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", l.ProductID, ErrNotFound)
				}
				return err
			}
			line := models.OrderLine{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  l.Quantity,
				Total:     float64(l.Quantity) * product.Price,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			total += line.Total
		}
		order.Total = total
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("total", total).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(order.ID)
}

// Get returns the order with lines, products and joined references. Couriers
// may only fetch orders assigned to them.
func (s *OrderService) Get(caller auth.Identity, id uint) (*models.Order, error) {
	order, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewOrder(caller, order) {
		return nil, ErrForbidden
	}
	return order, nil
}

// List returns orders newest first, optionally filtered by status. Couriers
// see only orders assigned to them; owners and workers see all.
func (s *OrderService) List(caller auth.Identity, status string) ([]models.Order, error) {
	if status != "" && !models.OrderStatus(status).Valid() {
		return nil, &ValidationError{Violations: validation.Violations{"status": "unrecognized"}}
	}
	q := s.DB.Preload("Supplier").Preload("CreatedBy")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if caller.Role == models.RoleCourier {
		q = q.Where("courier_id = ?", caller.ID)
	}
	var orders []models.Order
	if err := q.Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Transition applies a status change, optionally assigning a courier, and
// fires the stock side effect exactly once when the order first enters
// COMPLETED. The whole procedure is one transaction: authorization is
// re-checked against the assignment loaded inside it, the status update is
// conditional on the previously read status (a concurrent change surfaces as
// a retryable conflict), and any failure rolls back all stock adjustments.
func (s *OrderService) Transition(caller auth.Identity, id uint, in TransitionInput) (*models.Order, error) {
	newStatus := models.OrderStatus(in.Status)
	if !newStatus.Valid() {
		return nil, &ValidationError{Violations: validation.Violations{"status": "unrecognized"}}
	}
	if !policy.CanTransitionOrder(caller.Role) {
		return nil, ErrForbidden
	}
	if in.CourierID != nil && !policy.CanAssignCourier(caller.Role) {
		return nil, ErrForbidden
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if caller.Role == models.RoleCourier && !policy.IsAssignedCourier(caller, &order) {
			return ErrForbidden
		}
		updates := map[string]any{"status": newStatus}
		if in.CourierID != nil {
			var courier models.User
			err := tx.Where("id = ? AND role = ?", *in.CourierID, models.RoleCourier).First(&courier).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ValidationError{Violations: validation.Violations{"courier_id": "not_a_courier"}}
			}
			if err != nil {
				return err
			}
			updates["courier_id"] = *in.CourierID
		}
		// Guarding on the status read above makes concurrent transitions of
		// the same order mutually exclusive: the loser matches zero rows.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d modified concurrently: %w", order.ID, ErrConflict)
		}
		if newStatus == models.StatusCompleted && order.Status != models.StatusCompleted {
			if err := applyStockAdjustment(tx, &order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(id)
}

// applyStockAdjustment moves stock for every line of the order. Purchases add
// to quantity on hand; sales subtract with an atomic quantity >= ? guard so
// two concurrent completions touching the same product cannot both pass a
// sufficiency check and drive stock negative.
func applyStockAdjustment(tx *gorm.DB, order *models.Order) error {
	var lines []models.OrderLine
	if err := tx.Where("order_id = ?", order.ID).Find(&lines).Error; err != nil {
		return err
	}
	for _, line := range lines {
		if order.Type == models.OrderTypePurchase {
			res := tx.Model(&models.Product{}).
				Where("id = ?", line.ProductID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			continue
		}
		res := tx.Model(&models.Product{}).
			Where("id = ? AND quantity >= ?", line.ProductID, line.Quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", line.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var product models.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				return err
			}
			return &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Quantity,
			}
		}
	}
	return nil
}

// Delete removes an order and its lines. Only owners may delete, and only
// while the order is still CREATED: anything further along has had real-world
// or stock effects and is kept for the record.
func (s *OrderService) Delete(caller auth.Identity, id uint) error {
	if !policy.CanDeleteOrder(caller.Role) {
		return ErrForbidden
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.Status != models.StatusCreated {
			return fmt.Errorf("order %d has status %s: %w", order.ID, order.Status, ErrConflict)
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}

func (s *OrderService) load(id uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.
		Preload("Lines.Product").
		Preload("Supplier").
		Preload("CreatedBy").
		Preload("Courier").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
