package service

import (
	"errors"
	"strings"

	gslug "github.com/gosimple/slug"
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/internal/storage"
	"github.com/tnmle/vastra-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrSKUNotFound      = errors.New("sku not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidProduct   = errors.New("invalid product data")
)

type CreateProductInput struct {
	CategoryID  *uint   `json:"category_id"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price" binding:"required,gt=0"`
	Thumbnail   string  `json:"thumbnail"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateProductInput struct {
	CategoryID  *uint    `json:"category_id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	BasePrice   *float64 `json:"base_price"`
	Thumbnail   *string  `json:"thumbnail"`
	IsActive    *bool    `json:"is_active"`
}

type ProductService interface {
	CreateProduct(input CreateProductInput) (*model.Product, error)
	UpdateProduct(id uint, input UpdateProductInput) (*model.Product, error)
	DeleteProduct(id uint) error
	GetProductByID(id uint) (*model.Product, error)
	GetProductBySlug(slug string) (*model.Product, error)
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
	ListCategories() ([]model.Category, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	storage      storage.ObjectStorage
}

func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, store storage.ObjectStorage) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storage:      store,
	}
}

func (s *productService) CreateProduct(input CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.BasePrice <= 0 {
		return nil, ErrInvalidProduct
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(*input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	product := &model.Product{
		CategoryID:  input.CategoryID,
		Name:        name,
		Slug:        gslug.Make(name),
		Description: input.Description,
		BasePrice:   input.BasePrice,
		Thumbnail:   input.Thumbnail,
		IsActive:    active,
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return s.productRepo.FindByID(product.ID)
}

func (s *productService) UpdateProduct(id uint, input UpdateProductInput) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	oldThumbnail := product.Thumbnail

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(*input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		product.CategoryID = input.CategoryID
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidProduct
		}
		product.Name = name
		product.Slug = gslug.Make(name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.BasePrice != nil {
		if *input.BasePrice <= 0 {
			return nil, ErrInvalidProduct
		}
		product.BasePrice = *input.BasePrice
	}
	if input.Thumbnail != nil {
		product.Thumbnail = *input.Thumbnail
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	if input.Thumbnail != nil && oldThumbnail != "" && oldThumbnail != *input.Thumbnail {
		s.deleteThumbnail(oldThumbnail)
	}

	return s.productRepo.FindByID(id)
}

func (s *productService) DeleteProduct(id uint) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.productRepo.Delete(id); err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	if product.Thumbnail != "" {
		s.deleteThumbnail(product.Thumbnail)
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductBySlug(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindWithFilter(filter)
}

func (s *productService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

// deleteThumbnail removes a replaced or orphaned thumbnail from object
// storage. Failures are logged only; product writes never roll back on
// storage errors.
func (s *productService) deleteThumbnail(url string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.DeleteByURL(url); err != nil {
		logger.Warn("Failed to delete thumbnail from storage", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}
}
