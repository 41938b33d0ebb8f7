package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/internal/app/service"
	"github.com/tnmle/vastra-backend/internal/authz"
	apperrors "github.com/tnmle/vastra-backend/internal/errors"
	"github.com/tnmle/vastra-backend/internal/middleware"
	"github.com/tnmle/vastra-backend/internal/storage"
)

type ProductController struct {
	productService   service.ProductService
	inventoryService service.InventoryService
	auditService     service.AuditService
	storage          storage.ObjectStorage
}

func NewProductController(productService service.ProductService, inventoryService service.InventoryService, auditService service.AuditService, store storage.ObjectStorage) *ProductController {
	return &ProductController{
		productService:   productService,
		inventoryService: inventoryService,
		auditService:     auditService,
		storage:          store,
	}
}

type SyncMatrixRequest struct {
	Cells []service.MatrixCellInput `json:"cells"`
}

type UpdateStockRequest struct {
	Updates []service.StockUpdateInput `json:"updates" binding:"required"`
}

type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{}
	if id, ok := middleware.GetUserID(c); ok {
		actor.ID = &id
	}
	if email, ok := middleware.GetUserEmail(c); ok {
		actor.Email = email
	}
	return actor
}

// ListProducts returns the storefront catalog
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Search:     c.Query("search"),
		ActiveOnly: c.Query("include_inactive") != "true",
	}
	if categoryStr := c.Query("category_id"); categoryStr != "" {
		if id, err := strconv.ParseUint(categoryStr, 10, 32); err == nil {
			categoryID := uint(id)
			filter.CategoryID = &categoryID
		}
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

	// Only staff may see inactive products
	if !filter.ActiveOnly {
		if role, ok := middleware.GetUserRole(c); !ok || !authz.IsStaff(role) {
			filter.ActiveOnly = true
		}
	}

	products, err := ctrl.productService.ListProducts(filter)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list products", err)
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product by numeric ID or slug
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	idStr := c.Param("id")

	var (
		product *model.Product
		err     error
	)
	if id, parseErr := strconv.ParseUint(idStr, 10, 32); parseErr == nil {
		product, err = ctrl.productService.GetProductByID(uint(id))
	} else {
		product, err = ctrl.productService.GetProductBySlug(idStr)
	}
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, product)
}

// ListCategories returns all categories
// GET /api/v1/categories
func (ctrl *ProductController) ListCategories(c *gin.Context) {
	categories, err := ctrl.productService.ListCategories()
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	apperrors.RespondWithData(c, http.StatusOK, categories)
}

// CreateProduct creates a catalog entry
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name and a positive base_price are required")
		return
	}

	product, err := ctrl.productService.CreateProduct(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProduct):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name and a positive base_price are required")
		case errors.Is(err, service.ErrCategoryNotFound):
			apperrors.BadRequest(c, apperrors.ResourceNotFound, "category does not exist")
		default:
			log.Error("Failed to create product", err)
			apperrors.HandleError(c, err, "product")
		}
		return
	}

	ctrl.auditService.Record(actorFromContext(c), "create", "product", product.ID, gin.H{"name": product.Name})
	apperrors.RespondWithData(c, http.StatusCreated, product)
}

// UpdateProduct updates catalog fields
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request body")
		return
	}

	product, err := ctrl.productService.UpdateProduct(id, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
		case errors.Is(err, service.ErrInvalidProduct):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid product data")
		case errors.Is(err, service.ErrCategoryNotFound):
			apperrors.BadRequest(c, apperrors.ResourceNotFound, "category does not exist")
		default:
			apperrors.HandleError(c, err, "product")
		}
		return
	}

	ctrl.auditService.Record(actorFromContext(c), "update", "product", product.ID, input)
	apperrors.RespondWithData(c, http.StatusOK, product)
}

// DeleteProduct removes a product and its SKUs
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	ctrl.auditService.Record(actorFromContext(c), "delete", "product", id, nil)
	apperrors.RespondWithMessage(c, http.StatusOK, "product deleted")
}

// GetStockMatrix returns the color/size grid for a product
// GET /api/v1/admin/products/:id/stock
func (ctrl *ProductController) GetStockMatrix(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	matrix, err := ctrl.inventoryService.GetStockMatrix(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, matrix)
}

// SyncStockMatrix replaces the product's SKU grid with the submitted one
// PUT /api/v1/admin/products/:id/stock
func (ctrl *ProductController) SyncStockMatrix(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SyncMatrixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request body")
		return
	}

	result, err := ctrl.inventoryService.SyncMatrix(id, req.Cells)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	ctrl.auditService.Record(actorFromContext(c), "stock_sync", "product", id, result)
	apperrors.RespondWithData(c, http.StatusOK, result)
}

// UpdateStockLevels applies direct quantity edits
// PATCH /api/v1/admin/products/:id/stock
func (ctrl *ProductController) UpdateStockLevels(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "updates are required")
		return
	}

	if err := ctrl.inventoryService.UpdateStockLevels(id, req.Updates); err != nil {
		switch {
		case errors.Is(err, service.ErrSKUNotFound):
			apperrors.NotFound(c, apperrors.SKUNotFound, "sku not found on this product")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "quantities must be zero or positive")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}

	ctrl.auditService.Record(actorFromContext(c), "stock_update", "product", id, req.Updates)
	apperrors.RespondWithMessage(c, http.StatusOK, "stock updated")
}

// CreateUploadURL issues a presigned thumbnail upload URL
// POST /api/v1/admin/uploads
func (ctrl *ProductController) CreateUploadURL(c *gin.Context) {
	if ctrl.storage == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalServerError, "object storage is not configured")
		return
	}

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "filename and content_type are required")
		return
	}

	resp, err := ctrl.storage.GenerateUploadURL(req.Filename, req.ContentType, "products")
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to create upload URL", err)
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, resp)
}
