package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/internal/storage"
	"github.com/tnmle/vastra-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReconcileResult reports drift fixed between products' sold counters
// and the quantities actually present on non-cancelled orders
type ReconcileResult struct {
	Checked   int `json:"checked"`
	Corrected int `json:"corrected"`
}

type ReportService interface {
	ReconcileTotalSold() (*ReconcileResult, error)
	ExportOrders(filter repository.OrderFilter) ([]byte, error)
	BuildDailyReport(ctx context.Context, day time.Time) (string, error)
}

type reportService struct {
	orderRepo         repository.OrderRepository
	productRepo       repository.ProductRepository
	skuRepo           repository.SKURepository
	db                *gorm.DB
	storage           storage.ObjectStorage
	lowStockThreshold int
}

func NewReportService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, skuRepo repository.SKURepository, db *gorm.DB, store storage.ObjectStorage, lowStockThreshold int) ReportService {
	return &reportService{
		orderRepo:         orderRepo,
		productRepo:       productRepo,
		skuRepo:           skuRepo,
		db:                db,
		storage:           store,
		lowStockThreshold: lowStockThreshold,
	}
}

// ReconcileTotalSold rewrites each product's total_sold from the order
// details of non-cancelled orders. Drift can accumulate if a crash
// lands between an order write and its counter update.
func (s *reportService) ReconcileTotalSold() (*ReconcileResult, error) {
	shipped, err := s.orderRepo.SumShippedQuantities()
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if err := s.db.Select("id", "total_sold").Find(&products).Error; err != nil {
		return nil, err
	}

	result := &ReconcileResult{Checked: len(products)}
	for _, p := range products {
		expected := shipped[p.ID]
		if p.TotalSold == expected {
			continue
		}
		if err := s.db.Model(&model.Product{}).
			Where("id = ?", p.ID).
			Update("total_sold", expected).Error; err != nil {
			return nil, err
		}
		logger.Warn("Corrected sold counter drift", map[string]interface{}{
			"product_id": p.ID,
			"was":        p.TotalSold,
			"now":        expected,
		})
		result.Corrected++
	}

	return result, nil
}

// ExportOrders renders the filtered order list as an xlsx workbook
func (s *reportService) ExportOrders(filter repository.OrderFilter) ([]byte, error) {
	orders, err := s.orderRepo.FindWithFilter(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Code", "Date", "Status", "Payment", "Paid", "Customer", "Phone", "Address", "Items", "Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range orders {
		itemCount := 0
		for _, d := range order.Details {
			itemCount += d.Quantity
		}
		values := []interface{}{
			order.Code,
			order.CreatedAt.Format("2006-01-02 15:04"),
			string(order.Status),
			string(order.PaymentMethod),
			order.IsPaid,
			order.ShippingName,
			order.ShippingPhone,
			order.ShippingAddress,
			itemCount,
			order.TotalAmount,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render order export: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildDailyReport assembles the previous day's sales summary and low
// stock list, renders it as xlsx, and archives it to object storage.
// Returns the archive URL, or an empty string when no storage is
// configured.
func (s *reportService) BuildDailyReport(ctx context.Context, day time.Time) (string, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24 * time.Hour)

	orders, err := s.orderRepo.FindCreatedBetween(from, to)
	if err != nil {
		return "", err
	}

	lowStock, err := s.skuRepo.FindLowStock(s.lowStockThreshold, 100)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	f.SetSheetName("Sheet1", summarySheet)

	var revenue float64
	cancelled := 0
	for _, o := range orders {
		if o.Status == model.OrderStatusCancelled {
			cancelled++
			continue
		}
		revenue += o.TotalAmount
	}

	summary := [][]interface{}{
		{"Report date", from.Format("2006-01-02")},
		{"Orders", len(orders)},
		{"Cancelled", cancelled},
		{"Revenue", revenue},
	}
	for row, pair := range summary {
		for col, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+1)
			f.SetCellValue(summarySheet, cell, v)
		}
	}

	const stockSheet = "Low stock"
	if _, err := f.NewSheet(stockSheet); err != nil {
		return "", err
	}
	stockHeaders := []string{"SKU", "Product", "Stock"}
	for i, h := range stockHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(stockSheet, cell, h)
	}
	for row, sku := range lowStock {
		values := []interface{}{sku.SKUCode, sku.Product.Name, sku.StockQuantity}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(stockSheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("failed to render daily report: %w", err)
	}

	if s.storage == nil {
		logger.Info("Daily report built, no archive storage configured", map[string]interface{}{
			"date": from.Format("2006-01-02"),
		})
		return "", nil
	}

	key := fmt.Sprintf("reports/daily-%s.xlsx", from.Format("2006-01-02"))
	url, err := s.storage.Put(ctx, key, buf.Bytes(), xlsxContentType)
	if err != nil {
		return "", err
	}

	logger.Info("Daily report archived", map[string]interface{}{
		"date": from.Format("2006-01-02"),
		"url":  url,
	})
	return url, nil
}
