package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/pkg/logger"
	"github.com/tnmle/vastra-backend/pkg/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatrixCellInput is one submitted cell of the color×size grid.
// Stock and Price arrive as loosely-typed form values: stock is floored
// and clamped at zero, an absent or non-positive price falls back to the
// product's base price.
type MatrixCellInput struct {
	ColorValueID *uint    `json:"color_value_id"`
	SizeValueID  *uint    `json:"size_value_id"`
	Price        *float64 `json:"price"`
	Stock        *float64 `json:"stock"`
}

// StockUpdateInput is a direct quantity edit for one existing SKU
type StockUpdateInput struct {
	SKUID    uint `json:"sku_id"`
	Quantity int  `json:"quantity"`
}

// MatrixSyncResult summarizes what a sync changed
type MatrixSyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// StockMatrix is the admin grid view for one product
type StockMatrix struct {
	ProductID uint               `json:"product_id"`
	SKUs      []model.ProductSKU `json:"skus"`
	Colors    []model.VariantValue `json:"colors"`
	Sizes     []model.VariantValue `json:"sizes"`
}

type InventoryService interface {
	GetStockMatrix(productID uint) (*StockMatrix, error)
	SyncMatrix(productID uint, cells []MatrixCellInput) (*MatrixSyncResult, error)
	UpdateStockLevels(productID uint, updates []StockUpdateInput) error
}

type inventoryService struct {
	productRepo repository.ProductRepository
	skuRepo     repository.SKURepository
	db          *gorm.DB
}

func NewInventoryService(productRepo repository.ProductRepository, skuRepo repository.SKURepository, db *gorm.DB) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		skuRepo:     skuRepo,
		db:          db,
	}
}

func (s *inventoryService) GetStockMatrix(productID uint) (*StockMatrix, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	skus, err := s.skuRepo.FindByProductID(productID)
	if err != nil {
		return nil, err
	}

	var colors, sizes []model.VariantValue
	if err := s.db.Where("kind = ?", model.VariantColor).Order("sort_order ASC").Find(&colors).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("kind = ?", model.VariantSize).Order("sort_order ASC").Find(&sizes).Error; err != nil {
		return nil, err
	}

	return &StockMatrix{
		ProductID: productID,
		SKUs:      skus,
		Colors:    colors,
		Sizes:     sizes,
	}, nil
}

func matrixKey(colorID, sizeID *uint) string {
	var c, z uint
	if colorID != nil {
		c = *colorID
	}
	if sizeID != nil {
		z = *sizeID
	}
	return fmt.Sprintf("%d-%d", c, z)
}

// SyncMatrix reconciles a submitted color×size grid against the
// product's SKU rows. The submitted grid is the authoritative full
// state: cells absent from the submission delete their SKUs.
func (s *inventoryService) SyncMatrix(productID uint, cells []MatrixCellInput) (*MatrixSyncResult, error) {
	logger.Info("Syncing stock matrix", map[string]interface{}{
		"product_id": productID,
		"cell_count": len(cells),
	})

	result := &MatrixSyncResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		var existing []model.ProductSKU
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", productID).
			Find(&existing).Error; err != nil {
			return err
		}

		existingByKey := make(map[string]*model.ProductSKU, len(existing))
		for i := range existing {
			sku := &existing[i]
			existingByKey[matrixKey(sku.ColorValueID, sku.SizeValueID)] = sku
		}

		variantNames, err := loadVariantNames(tx, cells)
		if err != nil {
			return err
		}

		submitted := make(map[string]bool, len(cells))
		for _, cell := range cells {
			key := matrixKey(cell.ColorValueID, cell.SizeValueID)
			if submitted[key] {
				// Later duplicates of the same cell win
				logger.Warn("Duplicate matrix cell submitted", map[string]interface{}{
					"product_id": productID,
					"key":        key,
				})
			}
			submitted[key] = true

			stock := normalizeStock(cell.Stock)
			price := normalizePrice(cell.Price, product.BasePrice)

			if sku, ok := existingByKey[key]; ok {
				if err := tx.Model(&model.ProductSKU{}).
					Where("id = ?", sku.ID).
					Updates(map[string]interface{}{
						"price":          price,
						"stock_quantity": stock,
					}).Error; err != nil {
					return err
				}
				result.Updated++
				continue
			}

			sku := model.ProductSKU{
				ProductID:     productID,
				SKUCode:       util.GenerateSKUCode(product.Slug, variantNames[derefID(cell.ColorValueID)], variantNames[derefID(cell.SizeValueID)]),
				ColorValueID:  cell.ColorValueID,
				SizeValueID:   cell.SizeValueID,
				Price:         price,
				StockQuantity: stock,
			}
			if err := tx.Create(&sku).Error; err != nil {
				return err
			}
			existingByKey[key] = &sku
			result.Created++
		}

		// Cells missing from the submission are treated as removed from
		// the matrix. Order details survive: their SKU reference is
		// nulled and the snapshot keeps the purchase-time naming.
		for key, sku := range existingByKey {
			if submitted[key] {
				continue
			}
			if err := tx.Model(&model.OrderDetail{}).
				Where("product_sku_id = ?", sku.ID).
				Update("product_sku_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.ProductSKU{}, sku.ID).Error; err != nil {
				return err
			}
			result.Deleted++
		}

		return nil
	})
	if err != nil {
		logger.Error("Stock matrix sync failed", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	logger.Info("Stock matrix synced", map[string]interface{}{
		"product_id": productID,
		"created":    result.Created,
		"updated":    result.Updated,
		"deleted":    result.Deleted,
	})
	return result, nil
}

// UpdateStockLevels applies direct quantity edits to existing SKUs
func (s *inventoryService) UpdateStockLevels(productID uint, updates []StockUpdateInput) error {
	if len(updates) == 0 {
		return ErrInvalidQuantity
	}
	for _, u := range updates {
		if u.SKUID == 0 || u.Quantity < 0 {
			return ErrInvalidQuantity
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			var sku model.ProductSKU
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ? AND product_id = ?", u.SKUID, productID).
				First(&sku).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrSKUNotFound
				}
				return err
			}

			if err := tx.Model(&model.ProductSKU{}).
				Where("id = ?", sku.ID).
				Update("stock_quantity", u.Quantity).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// normalizeStock floors fractional stock and clamps negatives to zero
func normalizeStock(stock *float64) int {
	if stock == nil {
		return 0
	}
	v := int(math.Floor(*stock))
	if v < 0 {
		return 0
	}
	return v
}

// normalizePrice falls back to the base price when absent or non-positive
func normalizePrice(price *float64, basePrice float64) float64 {
	if price == nil || *price <= 0 || math.IsNaN(*price) || math.IsInf(*price, 0) {
		return basePrice
	}
	return *price
}

func derefID(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}

// loadVariantNames resolves color/size value names referenced by the
// submitted cells so generated SKU codes carry readable parts
func loadVariantNames(tx *gorm.DB, cells []MatrixCellInput) (map[uint]string, error) {
	idSet := make(map[uint]bool)
	for _, cell := range cells {
		if cell.ColorValueID != nil {
			idSet[*cell.ColorValueID] = true
		}
		if cell.SizeValueID != nil {
			idSet[*cell.SizeValueID] = true
		}
	}

	names := make(map[uint]string, len(idSet))
	if len(idSet) == 0 {
		return names, nil
	}

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var values []model.VariantValue
	if err := tx.Where("id IN ?", ids).Find(&values).Error; err != nil {
		return nil, err
	}
	for _, v := range values {
		names[v.ID] = v.Value
	}
	return names, nil
}
