package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/internal/db"
	"gorm.io/gorm"
)

type capturedEvent struct {
	event string
	order *model.Order
}

type recordingPublisher struct {
	events []capturedEvent
}

func (p *recordingPublisher) PublishOrderEvent(event string, order *model.Order) {
	p.events = append(p.events, capturedEvent{event: event, order: order})
}

func setupOrderServiceTest(t *testing.T) (OrderService, *gorm.DB, *recordingPublisher) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	publisher := &recordingPublisher{}
	orderService := NewOrderService(orderRepo, testDB, publisher)

	return orderService, testDB, publisher
}

func createTestProduct(t *testing.T, testDB *gorm.DB, name string, basePrice float64) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:      name,
		Slug:      name,
		BasePrice: basePrice,
		IsActive:  true,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createTestSKU(t *testing.T, testDB *gorm.DB, product *model.Product, code string, price float64, stock int) *model.ProductSKU {
	t.Helper()
	sku := &model.ProductSKU{
		ProductID:     product.ID,
		SKUCode:       code,
		Price:         price,
		StockQuantity: stock,
	}
	require.NoError(t, testDB.Create(sku).Error)
	return sku
}

func checkoutInput(userID *uint, items ...CheckoutItemInput) CheckoutInput {
	return CheckoutInput{
		UserID:          userID,
		Items:           items,
		ShippingName:    "Jordan Tran",
		ShippingPhone:   "0901234567",
		ShippingAddress: "12 Le Loi, District 1",
	}
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	orderService, testDB, publisher := setupOrderServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 3)

	order, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 2}))
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.NotEmpty(t, order.Code)
	assert.Nil(t, order.UserID)
	assert.Equal(t, model.OrderStatusNew, order.Status)
	assert.Equal(t, model.PaymentCOD, order.PaymentMethod)
	assert.Equal(t, float64(200000), order.TotalAmount)
	require.Len(t, order.Details, 1)
	assert.Equal(t, "Linen Shirt", order.Details[0].ProductName)
	assert.Equal(t, float64(100000), order.Details[0].UnitPrice)
	assert.Equal(t, float64(200000), order.Details[0].Subtotal)

	// Stock decreased, sold counter increased
	var updatedSKU model.ProductSKU
	require.NoError(t, testDB.First(&updatedSKU, sku.ID).Error)
	assert.Equal(t, 1, updatedSKU.StockQuantity)

	var updatedProduct model.Product
	require.NoError(t, testDB.First(&updatedProduct, product.ID).Error)
	assert.Equal(t, 2, updatedProduct.TotalSold)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "order.created", publisher.events[0].event)
}

func TestOrderService_CreateOrder_TotalIsSumOfSubtotals(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	shirt := createTestProduct(t, testDB, "Oxford Shirt", 150000)
	shirtSKU := createTestSKU(t, testDB, shirt, "SKU-OXF-1", 150000, 10)
	jacket := createTestProduct(t, testDB, "Denim Jacket", 320000)
	jacketSKU := createTestSKU(t, testDB, jacket, "SKU-DNM-1", 320000, 10)

	order, err := orderService.CreateOrder(checkoutInput(nil,
		CheckoutItemInput{SKUID: shirtSKU.ID, Quantity: 3},
		CheckoutItemInput{SKUID: jacketSKU.ID, Quantity: 1},
	))
	require.NoError(t, err)

	var sum float64
	for _, d := range order.Details {
		sum += d.Subtotal
	}
	assert.Equal(t, sum, order.TotalAmount)
	assert.Equal(t, float64(3*150000+320000), order.TotalAmount)
}

func TestOrderService_CreateOrder_InsufficientStockRejectsWholeOrder(t *testing.T) {
	orderService, testDB, publisher := setupOrderServiceTest(t)

	shirt := createTestProduct(t, testDB, "Oxford Shirt", 150000)
	shirtSKU := createTestSKU(t, testDB, shirt, "SKU-OXF-1", 150000, 10)
	jacket := createTestProduct(t, testDB, "Denim Jacket", 320000)
	jacketSKU := createTestSKU(t, testDB, jacket, "SKU-DNM-1", 320000, 1)

	_, err := orderService.CreateOrder(checkoutInput(nil,
		CheckoutItemInput{SKUID: shirtSKU.ID, Quantity: 2},
		CheckoutItemInput{SKUID: jacketSKU.ID, Quantity: 5},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var checkoutErr *CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, 400, checkoutErr.Status)
	assert.Contains(t, checkoutErr.Message, "Denim Jacket")

	// Nothing changed: no order, no stock movement on either SKU
	var orderCount int64
	testDB.Model(&model.Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)

	var shirtAfter, jacketAfter model.ProductSKU
	require.NoError(t, testDB.First(&shirtAfter, shirtSKU.ID).Error)
	assert.Equal(t, 10, shirtAfter.StockQuantity)
	require.NoError(t, testDB.First(&jacketAfter, jacketSKU.ID).Error)
	assert.Equal(t, 1, jacketAfter.StockQuantity)

	assert.Empty(t, publisher.events)
}

func TestOrderService_CreateOrder_ExactStockDrainsToZero(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 3)

	_, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 3}))
	require.NoError(t, err)

	var updated model.ProductSKU
	require.NoError(t, testDB.First(&updated, sku.ID).Error)
	assert.Zero(t, updated.StockQuantity)

	// The next unit is refused
	_, err = orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 1}))
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestOrderService_CreateOrder_DuplicateSKULinesMerge(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 5)

	order, err := orderService.CreateOrder(checkoutInput(nil,
		CheckoutItemInput{SKUID: sku.ID, Quantity: 2},
		CheckoutItemInput{SKUID: sku.ID, Quantity: 2},
	))
	require.NoError(t, err)
	require.Len(t, order.Details, 1)
	assert.Equal(t, 4, order.Details[0].Quantity)

	var updated model.ProductSKU
	require.NoError(t, testDB.First(&updated, sku.ID).Error)
	assert.Equal(t, 1, updated.StockQuantity)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 5)

	tests := []struct {
		name    string
		input   CheckoutInput
		wantErr error
	}{
		{
			name:    "empty cart",
			input:   checkoutInput(nil),
			wantErr: ErrEmptyCart,
		},
		{
			name:    "zero quantity",
			input:   checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 0}),
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			input:   checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: -1}),
			wantErr: ErrInvalidQuantity,
		},
		{
			name: "missing shipping address",
			input: CheckoutInput{
				Items:         []CheckoutItemInput{{SKUID: sku.ID, Quantity: 1}},
				ShippingName:  "Jordan Tran",
				ShippingPhone: "0901234567",
			},
			wantErr: ErrMissingShipping,
		},
		{
			name:    "unknown sku",
			input:   checkoutInput(nil, CheckoutItemInput{SKUID: 9999, Quantity: 1}),
			wantErr: ErrSKUNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orderService.CreateOrder(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var checkoutErr *CheckoutError
			require.ErrorAs(t, err, &checkoutErr)
			assert.Equal(t, 400, checkoutErr.Status)
		})
	}
}

func TestOrderService_CreateOrder_ClearsCart(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	user := &model.User{Email: "shopper@example.com", PasswordHash: "hash", Name: "Shopper"}
	require.NoError(t, testDB.Create(user).Error)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 5)
	require.NoError(t, testDB.Create(&model.CartItem{UserID: user.ID, ProductSKUID: sku.ID, Quantity: 2}).Error)

	input := checkoutInput(&user.ID, CheckoutItemInput{SKUID: sku.ID, Quantity: 2})
	input.ClearCart = true

	order, err := orderService.CreateOrder(input)
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, user.ID, *order.UserID)

	var cartCount int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount)
	assert.Zero(t, cartCount)
}

func TestOrderService_CreateOrder_SnapshotSurvivesPriceChange(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 5)

	order, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 1}))
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&model.ProductSKU{}).Where("id = ?", sku.ID).Update("price", 250000).Error)
	require.NoError(t, testDB.Model(&model.Product{}).Where("id = ?", product.ID).Update("name", "Renamed Shirt").Error)

	reloaded, err := orderService.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(100000), reloaded.Details[0].UnitPrice)
	assert.Equal(t, "Linen Shirt", reloaded.Details[0].ProductName)
}

func TestOrderService_UpdateOrderStatus_HappyPath(t *testing.T) {
	orderService, testDB, publisher := setupOrderServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 5)

	order, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 1}))
	require.NoError(t, err)

	for _, next := range []model.OrderStatus{
		model.OrderStatusProcessing,
		model.OrderStatusShipping,
		model.OrderStatusCompleted,
	} {
		updated, err := orderService.UpdateOrderStatus(order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	// created + three status changes
	assert.Len(t, publisher.events, 4)
	assert.Equal(t, "order.status_changed", publisher.events[3].event)
}

func TestOrderService_UpdateOrderStatus_IllegalTransitions(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 5)

	order, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 1}))
	require.NoError(t, err)

	// New cannot jump straight to shipping or completed
	_, err = orderService.UpdateOrderStatus(order.ID, model.OrderStatusShipping)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = orderService.UpdateOrderStatus(order.ID, model.OrderStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Completed is terminal
	for _, next := range []model.OrderStatus{
		model.OrderStatusProcessing,
		model.OrderStatusShipping,
		model.OrderStatusCompleted,
	} {
		_, err = orderService.UpdateOrderStatus(order.ID, next)
		require.NoError(t, err)
	}
	_, err = orderService.UpdateOrderStatus(order.ID, model.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = orderService.UpdateOrderStatus(order.ID, model.OrderStatus("bogus"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderService_UpdateOrderStatus_CancelRestocks(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 5)

	order, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 3}))
	require.NoError(t, err)

	var s model.ProductSKU
	require.NoError(t, testDB.First(&s, sku.ID).Error)
	require.Equal(t, 2, s.StockQuantity)

	updated, err := orderService.UpdateOrderStatus(order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, updated.Status)

	require.NoError(t, testDB.First(&s, sku.ID).Error)
	assert.Equal(t, 5, s.StockQuantity)

	var p model.Product
	require.NoError(t, testDB.First(&p, product.ID).Error)
	assert.Zero(t, p.TotalSold)
}

func TestOrderService_UpdateOrderStatus_DoubleCancelRestocksOnce(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 5)

	order, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 3}))
	require.NoError(t, err)

	_, err = orderService.UpdateOrderStatus(order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)

	// Second cancel is a no-op, not a second restock
	again, err := orderService.UpdateOrderStatus(order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, again.Status)

	var s model.ProductSKU
	require.NoError(t, testDB.First(&s, sku.ID).Error)
	assert.Equal(t, 5, s.StockQuantity)
}

func TestOrderService_UpdateOrderStatus_CancelWithDeletedSKU(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 5)

	order, err := orderService.CreateOrder(checkoutInput(nil, CheckoutItemInput{SKUID: sku.ID, Quantity: 2}))
	require.NoError(t, err)

	// The SKU disappears between purchase and cancellation
	require.NoError(t, testDB.Model(&model.OrderDetail{}).
		Where("product_sku_id = ?", sku.ID).
		Update("product_sku_id", nil).Error)
	require.NoError(t, testDB.Delete(&model.ProductSKU{}, sku.ID).Error)

	_, err = orderService.UpdateOrderStatus(order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)

	// Sold counter still rolled back
	var p model.Product
	require.NoError(t, testDB.First(&p, product.ID).Error)
	assert.Zero(t, p.TotalSold)
}

func TestOrderService_GetUserOrder_OwnershipEnforced(t *testing.T) {
	orderService, testDB, _ := setupOrderServiceTest(t)

	owner := &model.User{Email: "owner@example.com", PasswordHash: "hash", Name: "Owner"}
	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other"}
	require.NoError(t, testDB.Create(owner).Error)
	require.NoError(t, testDB.Create(other).Error)

	product := createTestProduct(t, testDB, "Linen Shirt", 100000)
	sku := createTestSKU(t, testDB, product, "SKU-LINEN-1", 100000, 5)

	order, err := orderService.CreateOrder(checkoutInput(&owner.ID, CheckoutItemInput{SKUID: sku.ID, Quantity: 1}))
	require.NoError(t, err)

	got, err := orderService.GetUserOrder(owner.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = orderService.GetUserOrder(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
