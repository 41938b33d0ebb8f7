package service

import (
	"context"
	"errors"
	"time"

	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/pkg/logger"
	"github.com/tnmle/vastra-backend/pkg/redis"
)

const (
	dashboardCacheKey = "dashboard:overview"
	dashboardCacheTTL = time.Minute
)

type DashboardOverview struct {
	Stats       *repository.DashboardStats `json:"stats"`
	TopSellers  []model.Product            `json:"top_sellers"`
	LowStock    []model.ProductSKU         `json:"low_stock"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

type DashboardService interface {
	GetOverview() (*DashboardOverview, error)
	InvalidateCache()
}

type dashboardService struct {
	orderRepo         repository.OrderRepository
	productRepo       repository.ProductRepository
	skuRepo           repository.SKURepository
	lowStockThreshold int
}

func NewDashboardService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, skuRepo repository.SKURepository, lowStockThreshold int) DashboardService {
	return &dashboardService{
		orderRepo:         orderRepo,
		productRepo:       productRepo,
		skuRepo:           skuRepo,
		lowStockThreshold: lowStockThreshold,
	}
}

// GetOverview serves the admin dashboard, cached for a minute. The
// numbers are aggregates; slightly stale is fine.
func (s *dashboardService) GetOverview() (*DashboardOverview, error) {
	ctx := context.Background()

	var cached DashboardOverview
	if err := redis.GetCachedJSON(ctx, dashboardCacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, redis.ErrCacheMiss) {
		logger.Warn("Dashboard cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	stats, err := s.orderRepo.GetDashboardStats()
	if err != nil {
		return nil, err
	}

	topSellers, err := s.productRepo.TopSellers(5)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.skuRepo.FindLowStock(s.lowStockThreshold, 20)
	if err != nil {
		return nil, err
	}

	overview := &DashboardOverview{
		Stats:       stats,
		TopSellers:  topSellers,
		LowStock:    lowStock,
		GeneratedAt: time.Now(),
	}

	if err := redis.CacheJSON(ctx, dashboardCacheKey, overview, dashboardCacheTTL); err != nil {
		logger.Warn("Dashboard cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return overview, nil
}

func (s *dashboardService) InvalidateCache() {
	redis.InvalidateCache(context.Background(), dashboardCacheKey)
}
