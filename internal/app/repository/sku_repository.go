package repository

import (
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/pkg/logger"
	"gorm.io/gorm"
)

type SKURepository interface {
	Create(sku *model.ProductSKU) error
	Update(sku *model.ProductSKU) error
	Delete(id uint) error
	FindByID(id uint) (*model.ProductSKU, error)
	FindByProductID(productID uint) ([]model.ProductSKU, error)
	FindLowStock(threshold int, limit int) ([]model.ProductSKU, error)
}

type skuRepository struct {
	db *gorm.DB
}

func NewSKURepository(db *gorm.DB) SKURepository {
	return &skuRepository{db: db}
}

func (r *skuRepository) preloadSKU() *gorm.DB {
	return r.db.Preload("ColorValue").Preload("SizeValue")
}

func (r *skuRepository) Create(sku *model.ProductSKU) error {
	if err := r.db.Create(sku).Error; err != nil {
		logger.Error("Failed to create SKU in database", err, map[string]interface{}{
			"product_id": sku.ProductID,
			"sku_code":   sku.SKUCode,
		})
		return err
	}
	return nil
}

func (r *skuRepository) Update(sku *model.ProductSKU) error {
	if err := r.db.Save(sku).Error; err != nil {
		logger.Error("Failed to update SKU in database", err, map[string]interface{}{
			"sku_id": sku.ID,
		})
		return err
	}
	return nil
}

func (r *skuRepository) Delete(id uint) error {
	return r.db.Delete(&model.ProductSKU{}, id).Error
}

func (r *skuRepository) FindByID(id uint) (*model.ProductSKU, error) {
	var sku model.ProductSKU
	if err := r.preloadSKU().First(&sku, id).Error; err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *skuRepository) FindByProductID(productID uint) ([]model.ProductSKU, error) {
	var skus []model.ProductSKU
	if err := r.preloadSKU().
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&skus).Error; err != nil {
		logger.Error("Failed to list SKUs by product in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return skus, nil
}

func (r *skuRepository) FindLowStock(threshold int, limit int) ([]model.ProductSKU, error) {
	if limit <= 0 {
		limit = 10
	}
	var skus []model.ProductSKU
	if err := r.preloadSKU().
		Preload("Product").
		Where("stock_quantity <= ?", threshold).
		Order("stock_quantity ASC").
		Limit(limit).
		Find(&skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}
