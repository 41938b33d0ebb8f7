package db

import (
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Category{},
		&model.VariantValue{},
		&model.Product{},
		&model.ProductSKU{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderDetail{},
		&model.AuditLog{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	if err := seedVariantValues(); err != nil {
		logger.Error("Failed to seed variant values", err)
		return err
	}
	if err := seedCategories(); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedVariantValues creates the default color/size axes used by the
// stock matrix. Admins can extend them later.
func seedVariantValues() error {
	var count int64
	if err := DB.Model(&model.VariantValue{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Variant values already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	values := []model.VariantValue{
		{Kind: model.VariantColor, Value: "Black", SortOrder: 1},
		{Kind: model.VariantColor, Value: "White", SortOrder: 2},
		{Kind: model.VariantColor, Value: "Navy", SortOrder: 3},
		{Kind: model.VariantColor, Value: "Red", SortOrder: 4},
		{Kind: model.VariantColor, Value: "Beige", SortOrder: 5},

		{Kind: model.VariantSize, Value: "S", SortOrder: 1},
		{Kind: model.VariantSize, Value: "M", SortOrder: 2},
		{Kind: model.VariantSize, Value: "L", SortOrder: 3},
		{Kind: model.VariantSize, Value: "XL", SortOrder: 4},
	}

	for _, v := range values {
		if err := DB.Create(&v).Error; err != nil {
			logger.Error("Failed to create variant value", err, map[string]interface{}{
				"kind":  v.Kind,
				"value": v.Value,
			})
			return err
		}
	}

	logger.Info("Variant values seeded successfully", map[string]interface{}{
		"total": len(values),
	})
	return nil
}

func seedCategories() error {
	var count int64
	if err := DB.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	categories := []model.Category{
		{Name: "T-Shirts", Slug: "t-shirts"},
		{Name: "Shirts", Slug: "shirts"},
		{Name: "Trousers", Slug: "trousers"},
		{Name: "Jackets", Slug: "jackets"},
		{Name: "Accessories", Slug: "accessories"},
	}

	for _, c := range categories {
		if err := DB.Create(&c).Error; err != nil {
			logger.Error("Failed to create category", err, map[string]interface{}{
				"category": c.Name,
			})
			return err
		}
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total": len(categories),
	})
	return nil
}
