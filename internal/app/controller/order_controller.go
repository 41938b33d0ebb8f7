package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/internal/app/service"
	apperrors "github.com/tnmle/vastra-backend/internal/errors"
	"github.com/tnmle/vastra-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
	auditService service.AuditService
}

func NewOrderController(orderService service.OrderService, auditService service.AuditService) *OrderController {
	return &OrderController{
		orderService: orderService,
		auditService: auditService,
	}
}

type CheckoutItemRequest struct {
	SKUID    uint `json:"sku_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

type CheckoutRequest struct {
	Items           []CheckoutItemRequest `json:"items" binding:"required"`
	ShippingName    string                `json:"shipping_name" binding:"required"`
	ShippingPhone   string                `json:"shipping_phone" binding:"required"`
	ShippingAddress string                `json:"shipping_address" binding:"required"`
	PaymentMethod   model.PaymentMethod   `json:"payment_method"`
	Note            string                `json:"note"`
	ClearCart       bool                  `json:"clear_cart"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// checkoutErrorCode maps a checkout sentinel to its error code
func checkoutErrorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return apperrors.OrderEmptyCart
	case errors.Is(err, service.ErrInsufficientStock):
		return apperrors.OrderInsufficientStock
	case errors.Is(err, service.ErrSKUNotFound):
		return apperrors.SKUNotFound
	default:
		return apperrors.ValidationInvalidInput
	}
}

// Checkout creates an order. Works for both authenticated customers and
// guests; an authenticated caller's identity is attached automatically.
// POST /api/v1/orders
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "items and shipping details are required")
		return
	}

	input := service.CheckoutInput{
		ShippingName:    req.ShippingName,
		ShippingPhone:   req.ShippingPhone,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Note:            req.Note,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.CheckoutItemInput{
			SKUID:    item.SKUID,
			Quantity: item.Quantity,
		})
	}
	if userID, ok := middleware.GetUserID(c); ok {
		input.UserID = &userID
		input.ClearCart = req.ClearCart
	}

	order, err := ctrl.orderService.CreateOrder(input)
	if err != nil {
		var checkoutErr *service.CheckoutError
		if errors.As(err, &checkoutErr) {
			apperrors.RespondWithError(c, checkoutErr.Status, checkoutErrorCode(err), checkoutErr.Message)
			return
		}
		log.Error("Checkout failed", err)
		apperrors.HandleError(c, err, "order")
		return
	}

	apperrors.RespondWithData(c, http.StatusCreated, order)
}

// GetMyOrders returns the authenticated customer's order history
// GET /api/v1/orders
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetMyOrder returns one of the customer's own orders
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetMyOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetUserOrder(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "order not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, order)
}

// ListOrders returns the back-office order list
// GET /api/v1/admin/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	filter := orderFilterFromQuery(c)

	orders, err := ctrl.orderService.ListOrders(filter)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one order for the back office
// GET /api/v1/admin/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "order not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, order)
}

// UpdateStatus moves an order along its lifecycle
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "status is required")
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, fmt.Sprintf("unknown status %q", req.Status))
		case errors.Is(err, service.ErrInvalidTransition):
			apperrors.Conflict(c, apperrors.OrderInvalidTransition, fmt.Sprintf("cannot move this order to %q", req.Status))
		default:
			log.Error("Status update failed", err, map[string]interface{}{
				"order_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	ctrl.auditService.Record(actorFromContext(c), "status_change", "order", id, gin.H{"to": req.Status})
	apperrors.RespondWithData(c, http.StatusOK, order)
}

func orderFilterFromQuery(c *gin.Context) repository.OrderFilter {
	filter := repository.OrderFilter{
		Status: c.Query("status"),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}
	return filter
}

// ExportController serves back-office spreadsheet exports
type ExportController struct {
	reportService service.ReportService
}

func NewExportController(reportService service.ReportService) *ExportController {
	return &ExportController{reportService: reportService}
}

// ExportOrders streams the filtered order list as an xlsx download
// GET /api/v1/admin/orders/export
func (ctrl *ExportController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	raw, err := ctrl.reportService.ExportOrders(orderFilterFromQuery(c))
	if err != nil {
		log.Error("Order export failed", err)
		apperrors.InternalError(c, "")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", raw)
}
