package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/internal/db"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupReportServiceTest(t *testing.T) (ReportService, OrderService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	skuRepo := repository.NewSKURepository(testDB)

	reportService := NewReportService(orderRepo, productRepo, skuRepo, testDB, nil, 5)
	orderService := NewOrderService(orderRepo, testDB, nil)
	return reportService, orderService, testDB
}

func TestReportService_ReconcileTotalSold(t *testing.T) {
	reportService, orderService, testDB := setupReportServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 10)

	_, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 3}))
	require.NoError(t, err)

	// Counters in sync: nothing to correct
	result, err := reportService.ReconcileTotalSold()
	require.NoError(t, err)
	assert.Zero(t, result.Corrected)

	// Inject drift
	require.NoError(t, testDB.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Update("total_sold", 99).Error)

	result, err = reportService.ReconcileTotalSold()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Corrected)

	var p model.Product
	require.NoError(t, testDB.First(&p, product.ID).Error)
	assert.Equal(t, 3, p.TotalSold)
}

func TestReportService_ReconcileExcludesCancelled(t *testing.T) {
	reportService, orderService, testDB := setupReportServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 10)

	order, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 4}))
	require.NoError(t, err)
	_, err = orderService.UpdateOrderStatus(order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)

	result, err := reportService.ReconcileTotalSold()
	require.NoError(t, err)
	assert.Zero(t, result.Corrected)

	var p model.Product
	require.NoError(t, testDB.First(&p, product.ID).Error)
	assert.Zero(t, p.TotalSold)
}

func TestReportService_ExportOrders(t *testing.T) {
	reportService, orderService, testDB := setupReportServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 10)

	order, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 2}))
	require.NoError(t, err)

	raw, err := reportService.ExportOrders(repository.OrderFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Code", rows[0][0])
	assert.Equal(t, order.Code, rows[1][0])
}
