package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/internal/app/service"
	"github.com/tnmle/vastra-backend/internal/db"
	"github.com/tnmle/vastra-backend/internal/middleware"
	"gorm.io/gorm"
)

func setIdentityInContext(c *gin.Context, user *model.User) {
	c.Set(middleware.UserIDKey, user.ID)
	c.Set(middleware.UserEmailKey, user.Email)
	c.Set(middleware.UserRoleKey, user.Role)
}

func setupOrderControllerTest(t *testing.T) (*OrderController, *gin.Engine, *gorm.DB, *model.User, *model.ProductSKU) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	orderRepo := repository.NewOrderRepository(testDB)
	auditRepo := repository.NewAuditLogRepository(testDB)
	orderService := service.NewOrderService(orderRepo, testDB, nil)
	auditService := service.NewAuditService(auditRepo)
	orderController := NewOrderController(orderService, auditService)

	user := &model.User{
		Email:        "customer@example.com",
		PasswordHash: "hash",
		Name:         "Test Customer",
		Role:         model.RoleCustomer,
	}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
		Name:      "Linen Shirt",
		Slug:      "linen-shirt",
		BasePrice: 150000,
		IsActive:  true,
	}
	require.NoError(t, testDB.Create(product).Error)

	sku := &model.ProductSKU{
		ProductID:     product.ID,
		SKUCode:       "LINEN-SHIRT-M",
		Price:         150000,
		StockQuantity: 5,
	}
	require.NoError(t, testDB.Create(sku).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return orderController, router, testDB, user, sku
}

func checkoutRequestBody(skuID uint, quantity int) CheckoutRequest {
	return CheckoutRequest{
		Items: []CheckoutItemRequest{
			{SKUID: skuID, Quantity: quantity},
		},
		ShippingName:    "Jordan Tran",
		ShippingPhone:   "0901234567",
		ShippingAddress: "12 Le Loi, District 1",
	}
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOrderController_Checkout_GuestSuccess(t *testing.T) {
	controller, router, testDB, _, sku := setupOrderControllerTest(t)

	router.POST("/orders", controller.Checkout)

	w := postJSON(t, router, "/orders", checkoutRequestBody(sku.ID, 2))

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, true, response["success"])
	orderData := response["data"].(map[string]interface{})
	assert.Equal(t, float64(300000), orderData["total_amount"])
	assert.Equal(t, "new", orderData["status"])
	assert.Nil(t, orderData["user_id"])

	var updatedSKU model.ProductSKU
	require.NoError(t, testDB.First(&updatedSKU, sku.ID).Error)
	assert.Equal(t, 3, updatedSKU.StockQuantity)
}

func TestOrderController_Checkout_AuthenticatedClearsCart(t *testing.T) {
	controller, router, testDB, user, sku := setupOrderControllerTest(t)

	require.NoError(t, testDB.Create(&model.CartItem{
		UserID:       user.ID,
		ProductSKUID: sku.ID,
		Quantity:     2,
	}).Error)

	router.POST("/orders", func(c *gin.Context) {
		setIdentityInContext(c, user)
		controller.Checkout(c)
	})

	body := checkoutRequestBody(sku.ID, 2)
	body.ClearCart = true
	w := postJSON(t, router, "/orders", body)

	assert.Equal(t, http.StatusCreated, w.Code)

	var remaining int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&remaining)
	assert.Equal(t, int64(0), remaining)

	var order model.Order
	require.NoError(t, testDB.First(&order).Error)
	require.NotNil(t, order.UserID)
	assert.Equal(t, user.ID, *order.UserID)
}

func TestOrderController_Checkout_InsufficientStock(t *testing.T) {
	controller, router, testDB, _, sku := setupOrderControllerTest(t)

	router.POST("/orders", controller.Checkout)

	w := postJSON(t, router, "/orders", checkoutRequestBody(sku.ID, 100))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, false, response["success"])
	assert.Equal(t, "ORDER_INSUFFICIENT_STOCK", response["code"])

	// Nothing persisted, stock untouched
	var orderCount int64
	testDB.Model(&model.Order{}).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)

	var updatedSKU model.ProductSKU
	require.NoError(t, testDB.First(&updatedSKU, sku.ID).Error)
	assert.Equal(t, 5, updatedSKU.StockQuantity)
}

func TestOrderController_Checkout_InvalidRequest(t *testing.T) {
	controller, router, _, _, sku := setupOrderControllerTest(t)

	router.POST("/orders", controller.Checkout)

	tests := []struct {
		name    string
		reqBody map[string]interface{}
	}{
		{
			name:    "Missing items",
			reqBody: map[string]interface{}{"shipping_name": "A", "shipping_phone": "1", "shipping_address": "B"},
		},
		{
			name: "Missing shipping address",
			reqBody: map[string]interface{}{
				"items":         []map[string]interface{}{{"sku_id": sku.ID, "quantity": 1}},
				"shipping_name": "A", "shipping_phone": "1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/orders", tt.reqBody)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)
			assert.Equal(t, false, response["success"])
		})
	}
}

func TestOrderController_Checkout_UnknownSKU(t *testing.T) {
	controller, router, _, _, _ := setupOrderControllerTest(t)

	router.POST("/orders", controller.Checkout)

	w := postJSON(t, router, "/orders", checkoutRequestBody(9999, 1))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "SKU_NOT_FOUND", response["code"])
}

func TestOrderController_GetMyOrders(t *testing.T) {
	controller, router, _, user, sku := setupOrderControllerTest(t)

	router.POST("/orders", func(c *gin.Context) {
		setIdentityInContext(c, user)
		controller.Checkout(c)
	})
	router.GET("/orders", func(c *gin.Context) {
		setIdentityInContext(c, user)
		controller.GetMyOrders(c)
	})

	postJSON(t, router, "/orders", checkoutRequestBody(sku.ID, 1))
	postJSON(t, router, "/orders", checkoutRequestBody(sku.ID, 1))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
}

func TestOrderController_GetMyOrders_Unauthorized(t *testing.T) {
	controller, router, _, _, _ := setupOrderControllerTest(t)

	router.GET("/orders", controller.GetMyOrders)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderController_GetMyOrder_OtherUsersOrderHidden(t *testing.T) {
	controller, router, testDB, user, sku := setupOrderControllerTest(t)

	other := &model.User{
		Email:        "other@example.com",
		PasswordHash: "hash",
		Name:         "Other",
		Role:         model.RoleCustomer,
	}
	require.NoError(t, testDB.Create(other).Error)

	router.POST("/orders", func(c *gin.Context) {
		setIdentityInContext(c, other)
		controller.Checkout(c)
	})
	router.GET("/orders/:id", func(c *gin.Context) {
		setIdentityInContext(c, user)
		controller.GetMyOrder(c)
	})

	postJSON(t, router, "/orders", checkoutRequestBody(sku.ID, 1))

	req := httptest.NewRequest(http.MethodGet, "/orders/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func newCheckedOutOrder(t *testing.T, router *gin.Engine, controller *OrderController, sku *model.ProductSKU) {
	router.POST("/orders", controller.Checkout)
	w := postJSON(t, router, "/orders", checkoutRequestBody(sku.ID, 1))
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestOrderController_UpdateStatus_Success(t *testing.T) {
	controller, router, testDB, user, sku := setupOrderControllerTest(t)

	newCheckedOutOrder(t, router, controller, sku)

	router.PUT("/orders/:id/status", func(c *gin.Context) {
		setIdentityInContext(c, user)
		controller.UpdateStatus(c)
	})

	jsonBody, _ := json.Marshal(UpdateOrderStatusRequest{Status: model.OrderStatusProcessing})
	req := httptest.NewRequest(http.MethodPut, "/orders/1/status", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var order model.Order
	require.NoError(t, testDB.First(&order, 1).Error)
	assert.Equal(t, model.OrderStatusProcessing, order.Status)

	// The change is recorded in the audit trail
	var auditCount int64
	testDB.Model(&model.AuditLog{}).Where("action = ?", "status_change").Count(&auditCount)
	assert.Equal(t, int64(1), auditCount)
}

func TestOrderController_UpdateStatus_InvalidTransition(t *testing.T) {
	controller, router, _, user, sku := setupOrderControllerTest(t)

	newCheckedOutOrder(t, router, controller, sku)

	router.PUT("/orders/:id/status", func(c *gin.Context) {
		setIdentityInContext(c, user)
		controller.UpdateStatus(c)
	})

	// New orders cannot jump straight to completed
	jsonBody, _ := json.Marshal(UpdateOrderStatusRequest{Status: model.OrderStatusCompleted})
	req := httptest.NewRequest(http.MethodPut, "/orders/1/status", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "ORDER_INVALID_TRANSITION", response["code"])
}

func TestOrderController_UpdateStatus_UnknownStatus(t *testing.T) {
	controller, router, _, user, sku := setupOrderControllerTest(t)

	newCheckedOutOrder(t, router, controller, sku)

	router.PUT("/orders/:id/status", func(c *gin.Context) {
		setIdentityInContext(c, user)
		controller.UpdateStatus(c)
	})

	jsonBody, _ := json.Marshal(map[string]interface{}{"status": "vanished"})
	req := httptest.NewRequest(http.MethodPut, "/orders/1/status", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_UpdateStatus_NotFound(t *testing.T) {
	controller, router, _, user, _ := setupOrderControllerTest(t)

	router.PUT("/orders/:id/status", func(c *gin.Context) {
		setIdentityInContext(c, user)
		controller.UpdateStatus(c)
	})

	jsonBody, _ := json.Marshal(UpdateOrderStatusRequest{Status: model.OrderStatusProcessing})
	req := httptest.NewRequest(http.MethodPut, "/orders/9999/status", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_ListOrders_FilterByStatus(t *testing.T) {
	controller, router, _, _, sku := setupOrderControllerTest(t)

	newCheckedOutOrder(t, router, controller, sku)

	router.GET("/admin/orders", controller.ListOrders)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders?status=cancelled", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["count"])
}
