package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/pkg/logger"
	"github.com/tnmle/vastra-backend/pkg/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrMissingShipping   = errors.New("missing shipping details")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrOrderAccessDenied = errors.New("order access denied")
)

// CheckoutError is a checkout failure carrying the client-facing HTTP
// status. It wraps one of the sentinel errors above so callers can still
// branch with errors.Is.
type CheckoutError struct {
	Status  int
	Message string
	err     error
}

func (e *CheckoutError) Error() string { return e.Message }
func (e *CheckoutError) Unwrap() error { return e.err }

func newCheckoutError(status int, sentinel error, format string, args ...interface{}) *CheckoutError {
	return &CheckoutError{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
		err:     sentinel,
	}
}

// orderTransitions is the legal transition graph. Completed and Cancelled
// are terminal.
var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusNew:        {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusShipping, model.OrderStatusCancelled},
	model.OrderStatusShipping:   {model.OrderStatusCompleted, model.OrderStatusCancelled},
	model.OrderStatusCompleted:  {},
	model.OrderStatusCancelled:  {},
}

func isKnownStatus(status model.OrderStatus) bool {
	_, ok := orderTransitions[status]
	return ok
}

func canTransition(from, to model.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderEventPublisher receives order lifecycle events for the admin feed.
// Implementations must not block.
type OrderEventPublisher interface {
	PublishOrderEvent(event string, order *model.Order)
}

type CheckoutItemInput struct {
	SKUID    uint
	Quantity int
}

type CheckoutInput struct {
	UserID          *uint // nil for guest checkout
	Items           []CheckoutItemInput
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	PaymentMethod   model.PaymentMethod
	Note            string
	ClearCart       bool // consume the user's cart rows in the same transaction
}

type OrderService interface {
	CreateOrder(input CheckoutInput) (*model.Order, error)
	GetOrderByID(orderID uint) (*model.Order, error)
	GetUserOrder(userID, orderID uint) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	ListOrders(filter repository.OrderFilter) ([]model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	db        *gorm.DB
	events    OrderEventPublisher
}

func NewOrderService(orderRepo repository.OrderRepository, db *gorm.DB, events OrderEventPublisher) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		db:        db,
		events:    events,
	}
}

func (s *orderService) publish(event string, order *model.Order) {
	if s.events != nil && order != nil {
		s.events.PublishOrderEvent(event, order)
	}
}

// CreateOrder turns a validated cart into a persisted order while
// adjusting inventory. All-or-nothing: the affected SKU rows are locked
// for the duration of one transaction, so concurrent checkouts against
// the same SKU serialize and stock can never go negative.
func (s *orderService) CreateOrder(input CheckoutInput) (*model.Order, error) {
	logger.Info("Creating order", map[string]interface{}{
		"user_id":    input.UserID,
		"item_count": len(input.Items),
	})

	if len(input.Items) == 0 {
		return nil, newCheckoutError(http.StatusBadRequest, ErrEmptyCart, "cart is empty")
	}
	for _, item := range input.Items {
		if item.SKUID == 0 || item.Quantity <= 0 {
			return nil, newCheckoutError(http.StatusBadRequest, ErrInvalidQuantity,
				"invalid quantity for SKU %d", item.SKUID)
		}
	}
	if input.ShippingName == "" || input.ShippingPhone == "" || input.ShippingAddress == "" {
		return nil, newCheckoutError(http.StatusBadRequest, ErrMissingShipping,
			"shipping name, phone and address are required")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = model.PaymentCOD
	}

	// Duplicate SKU ids collapse into one line before locking
	quantities := make(map[uint]int, len(input.Items))
	skuIDs := make([]uint, 0, len(input.Items))
	for _, item := range input.Items {
		if _, seen := quantities[item.SKUID]; !seen {
			skuIDs = append(skuIDs, item.SKUID)
		}
		quantities[item.SKUID] += item.Quantity
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": input.UserID,
			})
		}
	}()

	// Lock every referenced SKU in one query
	var skus []model.ProductSKU
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Product").
		Preload("ColorValue").
		Preload("SizeValue").
		Where("id IN ?", skuIDs).
		Find(&skus).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to lock SKU rows during checkout", err, map[string]interface{}{
			"sku_ids": skuIDs,
		})
		return nil, err
	}

	if len(skus) != len(skuIDs) {
		tx.Rollback()
		logger.Warn("Checkout references missing SKUs", map[string]interface{}{
			"requested": len(skuIDs),
			"found":     len(skus),
		})
		return nil, newCheckoutError(http.StatusBadRequest, ErrSKUNotFound,
			"one or more products are no longer available")
	}

	var (
		totalAmount float64
		details     []model.OrderDetail
	)

	for i := range skus {
		sku := &skus[i]
		quantity := quantities[sku.ID]

		if quantity > sku.StockQuantity {
			tx.Rollback()
			logger.Warn("Checkout failed: insufficient stock", map[string]interface{}{
				"sku_id":    sku.ID,
				"requested": quantity,
				"available": sku.StockQuantity,
			})
			return nil, newCheckoutError(http.StatusBadRequest, ErrInsufficientStock,
				"insufficient stock for %q", sku.Product.Name)
		}

		// Price is captured at order time, not live-linked
		unitPrice := sku.Price
		subtotal := unitPrice * float64(quantity)
		totalAmount += subtotal

		var colorName, sizeName string
		if sku.ColorValue != nil {
			colorName = sku.ColorValue.Value
		}
		if sku.SizeValue != nil {
			sizeName = sku.SizeValue.Value
		}

		skuID := sku.ID
		details = append(details, model.OrderDetail{
			ProductID:    sku.ProductID,
			ProductSKUID: &skuID,
			ProductName:  sku.Product.Name,
			ColorName:    colorName,
			SizeName:     sizeName,
			Quantity:     quantity,
			UnitPrice:    unitPrice,
			Subtotal:     subtotal,
		})
	}

	order := &model.Order{
		Code:            util.GenerateOrderCode(),
		UserID:          input.UserID,
		TotalAmount:     totalAmount,
		Status:          model.OrderStatusNew,
		PaymentMethod:   input.PaymentMethod,
		ShippingName:    input.ShippingName,
		ShippingPhone:   input.ShippingPhone,
		ShippingAddress: input.ShippingAddress,
		Note:            input.Note,
		Details:         details,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id":      input.UserID,
			"total_amount": totalAmount,
		})
		return nil, err
	}

	for i := range skus {
		sku := &skus[i]
		quantity := quantities[sku.ID]

		if err := tx.Model(&model.ProductSKU{}).
			Where("id = ?", sku.ID).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to decrement SKU stock", err, map[string]interface{}{
				"sku_id": sku.ID,
			})
			return nil, err
		}

		if err := tx.Model(&model.Product{}).
			Where("id = ?", sku.ProductID).
			Update("total_sold", gorm.Expr("total_sold + ?", quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to increment product sold counter", err, map[string]interface{}{
				"product_id": sku.ProductID,
			})
			return nil, err
		}
	}

	if input.ClearCart && input.UserID != nil {
		if err := tx.Where("user_id = ?", *input.UserID).Delete(&model.CartItem{}).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to clear cart after checkout", err, map[string]interface{}{
				"user_id": *input.UserID,
			})
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"order_code": order.Code,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"order_id":     order.ID,
		"order_code":   order.Code,
		"total_amount": totalAmount,
		"item_count":   len(details),
	})

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}
	s.publish("order.created", created)
	return created, nil
}

func (s *orderService) GetOrderByID(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetUserOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, error) {
	return s.orderRepo.FindWithFilter(filter)
}

// UpdateOrderStatus moves an order along the lifecycle graph. A
// transition into Cancelled restocks every line exactly once; cancelling
// an already-cancelled order is a no-op.
func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id":   orderID,
		"new_status": status,
	})

	if !isKnownStatus(status) {
		return nil, ErrInvalidStatus
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during status update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"order_id": orderID,
			})
		}
	}()

	var order model.Order
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Details").
		First(&order, orderID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order for status update", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if order.Status == status {
		// Repeating the current status (including a second cancel) has no
		// further effect
		tx.Rollback()
		return s.orderRepo.FindByID(orderID)
	}

	if !canTransition(order.Status, status) {
		tx.Rollback()
		logger.Warn("Illegal order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidTransition
	}

	if status == model.OrderStatusCancelled {
		if err := restockOrder(tx, &order); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Model(&model.Order{}).
		Where("id = ?", order.ID).
		Update("status", status).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to persist order status", err, map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit status update", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	logger.Info("Order status updated successfully", map[string]interface{}{
		"order_id": orderID,
		"from":     order.Status,
		"to":       status,
	})

	updated, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	s.publish("order.status_changed", updated)
	return updated, nil
}

// restockOrder returns each line's quantity to its SKU and rolls the
// product sold counter back. Lines whose SKU was deleted since purchase
// only adjust the counter.
func restockOrder(tx *gorm.DB, order *model.Order) error {
	for _, detail := range order.Details {
		if detail.ProductSKUID != nil {
			if err := tx.Model(&model.ProductSKU{}).
				Where("id = ?", *detail.ProductSKUID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", detail.Quantity)).Error; err != nil {
				logger.Error("Failed to restock SKU", err, map[string]interface{}{
					"order_id": order.ID,
					"sku_id":   *detail.ProductSKUID,
				})
				return err
			}
		}

		if err := tx.Model(&model.Product{}).
			Where("id = ?", detail.ProductID).
			Update("total_sold", gorm.Expr("total_sold - ?", detail.Quantity)).Error; err != nil {
			logger.Error("Failed to roll back product sold counter", err, map[string]interface{}{
				"order_id":   order.ID,
				"product_id": detail.ProductID,
			})
			return err
		}
	}

	logger.Info("Order restocked", map[string]interface{}{
		"order_id":   order.ID,
		"line_count": len(order.Details),
	})
	return nil
}
