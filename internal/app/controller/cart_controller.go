package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tnmle/vastra-backend/internal/app/service"
	apperrors "github.com/tnmle/vastra-backend/internal/errors"
	"github.com/tnmle/vastra-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart returns the authenticated user's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	items, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// AddItem puts a SKU in the cart, merging with an existing line
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var input service.AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_sku_id and a positive quantity are required")
		return
	}

	item, err := ctrl.cartService.AddItem(userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSKUNotFound):
			apperrors.NotFound(c, apperrors.SKUNotFound, "product variant not found")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "quantity must be positive")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}

	apperrors.RespondWithData(c, http.StatusCreated, item)
}

// UpdateItem changes a cart line's quantity
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "quantity is required")
		return
	}

	item, err := ctrl.cartService.UpdateItemQuantity(userID, id, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, item)
}

// RemoveItem deletes one cart line
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveItem(userID, id); err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	apperrors.RespondWithMessage(c, http.StatusOK, "item removed")
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithMessage(c, http.StatusOK, "cart cleared")
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCartItemNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "cart item not found")
	case errors.Is(err, service.ErrCartAccessDenied):
		apperrors.Forbidden(c, "")
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "quantity must be positive")
	default:
		apperrors.InternalError(c, "")
	}
}
