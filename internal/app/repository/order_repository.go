package repository

import (
	"time"

	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Status string
	Limit  int
	Offset int
}

// DashboardStats aggregates the order figures shown on the admin dashboard
type DashboardStats struct {
	TotalOrders      int64   `json:"total_orders"`
	NewOrders        int64   `json:"new_orders"`
	ProcessingOrders int64   `json:"processing_orders"`
	ShippingOrders   int64   `json:"shipping_orders"`
	CompletedOrders  int64   `json:"completed_orders"`
	CancelledOrders  int64   `json:"cancelled_orders"`
	TotalRevenue     float64 `json:"total_revenue"`
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindWithFilter(filter OrderFilter) ([]model.Order, error)
	FindCreatedBetween(from, to time.Time) ([]model.Order, error)
	GetDashboardStats() (*DashboardStats, error)
	SumShippedQuantities() (map[uint]int, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Preload("ProductSKU").Order("order_details.id ASC")
	}).Preload("User")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"code":         order.Code,
		"total_amount": order.TotalAmount,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"code": order.Code,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.preloadOrder().
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindWithFilter(filter OrderFilter) ([]model.Order, error) {
	query := r.preloadOrder()

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []model.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders in database", err, map[string]interface{}{
			"status": filter.Status,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindCreatedBetween(from, to time.Time) ([]model.Order, error) {
	var orders []model.Order
	if err := r.preloadOrder().
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := r.db.Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		logger.Error("Failed to count total orders", err)
		return nil, err
	}

	statusCounts := []struct {
		Status model.OrderStatus
		Count  int64
	}{}
	if err := r.db.Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		logger.Error("Failed to count orders by status", err)
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case model.OrderStatusNew:
			stats.NewOrders = sc.Count
		case model.OrderStatusProcessing:
			stats.ProcessingOrders = sc.Count
		case model.OrderStatusShipping:
			stats.ShippingOrders = sc.Count
		case model.OrderStatusCompleted:
			stats.CompletedOrders = sc.Count
		case model.OrderStatusCancelled:
			stats.CancelledOrders = sc.Count
		}
	}

	// Revenue counts paid, non-cancelled orders only
	var revenue struct {
		TotalRevenue float64
	}
	if err := r.db.Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0) as total_revenue").
		Where("is_paid = ? AND status <> ?", true, model.OrderStatusCancelled).
		Scan(&revenue).Error; err != nil {
		logger.Error("Failed to calculate total revenue", err)
		return nil, err
	}
	stats.TotalRevenue = revenue.TotalRevenue

	return stats, nil
}

// SumShippedQuantities returns, per product, the quantity across all
// non-cancelled orders. The reconciliation job compares this against
// products.total_sold.
func (r *orderRepository) SumShippedQuantities() (map[uint]int, error) {
	rows := []struct {
		ProductID uint
		Total     int
	}{}
	if err := r.db.Model(&model.OrderDetail{}).
		Select("order_details.product_id, COALESCE(SUM(order_details.quantity), 0) as total").
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Where("orders.status <> ? AND orders.deleted_at IS NULL", model.OrderStatusCancelled).
		Group("order_details.product_id").
		Scan(&rows).Error; err != nil {
		logger.Error("Failed to sum shipped quantities", err)
		return nil, err
	}

	result := make(map[uint]int, len(rows))
	for _, row := range rows {
		result[row.ProductID] = row.Total
	}
	return result, nil
}
