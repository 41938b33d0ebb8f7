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

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	return NewProductService(productRepo, categoryRepo, nil), testDB
}

func TestProductService_CreateProduct(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	category := &model.Category{Name: "Shirts", Slug: "shirts"}
	require.NoError(t, testDB.Create(category).Error)

	product, err := productService.CreateProduct(CreateProductInput{
		CategoryID:  &category.ID,
		Name:        "Linen Shirt Ivory",
		Description: "Lightweight summer shirt",
		BasePrice:   150000,
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.Equal(t, "linen-shirt-ivory", product.Slug)
	assert.True(t, product.IsActive)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Shirts", product.Category.Name)

	_, err = productService.CreateProduct(CreateProductInput{Name: "  ", BasePrice: 1000})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	bogus := uint(9999)
	_, err = productService.CreateProduct(CreateProductInput{
		CategoryID: &bogus,
		Name:       "Orphan",
		BasePrice:  1000,
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestProductService_CreateProduct_InactivePersists(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	inactive := false
	product, err := productService.CreateProduct(CreateProductInput{
		Name:      "Draft Coat",
		BasePrice: 900000,
		IsActive:  &inactive,
	})
	require.NoError(t, err)
	assert.False(t, product.IsActive)

	var stored model.Product
	require.NoError(t, testDB.First(&stored, product.ID).Error)
	assert.False(t, stored.IsActive)

	// The draft must not leak into the storefront listing
	products, err := productService.ListProducts(repository.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductService_UpdateProduct(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product, err := productService.CreateProduct(CreateProductInput{
		Name:      "Linen Shirt",
		BasePrice: 150000,
	})
	require.NoError(t, err)

	newName := "Linen Shirt Ivory"
	newPrice := 180000.0
	inactive := false
	updated, err := productService.UpdateProduct(product.ID, UpdateProductInput{
		Name:      &newName,
		BasePrice: &newPrice,
		IsActive:  &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt Ivory", updated.Name)
	assert.Equal(t, "linen-shirt-ivory", updated.Slug)
	assert.Equal(t, 180000.0, updated.BasePrice)
	assert.False(t, updated.IsActive)

	badPrice := -5.0
	_, err = productService.UpdateProduct(product.ID, UpdateProductInput{BasePrice: &badPrice})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = productService.UpdateProduct(9999, UpdateProductInput{})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	product, err := productService.CreateProduct(CreateProductInput{
		Name:      "Linen Shirt",
		BasePrice: 150000,
	})
	require.NoError(t, err)
	createTestSKU(t, testDB, product, "SKU-LINEN-1", 150000, 5)

	require.NoError(t, productService.DeleteProduct(product.ID))

	_, err = productService.GetProductByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	var skuCount int64
	testDB.Model(&model.ProductSKU{}).Where("product_id = ?", product.ID).Count(&skuCount)
	assert.Zero(t, skuCount)

	assert.ErrorIs(t, productService.DeleteProduct(9999), ErrProductNotFound)
}

func TestProductService_ListProducts(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	category := &model.Category{Name: "Shirts", Slug: "shirts"}
	require.NoError(t, testDB.Create(category).Error)

	_, err := productService.CreateProduct(CreateProductInput{CategoryID: &category.ID, Name: "Linen Shirt", BasePrice: 150000})
	require.NoError(t, err)
	_, err = productService.CreateProduct(CreateProductInput{Name: "Denim Jacket", BasePrice: 320000})
	require.NoError(t, err)

	inactive := false
	_, err = productService.CreateProduct(CreateProductInput{Name: "Retired Coat", BasePrice: 500000, IsActive: &inactive})
	require.NoError(t, err)

	all, err := productService.ListProducts(repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := productService.ListProducts(repository.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	byCategory, err := productService.ListProducts(repository.ProductFilter{CategoryID: &category.ID})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Linen Shirt", byCategory[0].Name)

	bySearch, err := productService.ListProducts(repository.ProductFilter{Search: "denim"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Denim Jacket", bySearch[0].Name)
}

func TestProductService_GetProductBySlug(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	created, err := productService.CreateProduct(CreateProductInput{Name: "Linen Shirt", BasePrice: 150000})
	require.NoError(t, err)

	got, err := productService.GetProductBySlug("linen-shirt")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = productService.GetProductBySlug("missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
