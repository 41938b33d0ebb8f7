// Seeds the catalog from an xlsx sheet and makes sure a back-office
// admin account exists.
//
// Sheet layout (first sheet, header row skipped):
//
//	Category | Name | Description | BasePrice | Colors | Sizes | StockPerSKU
//
// Colors and Sizes are comma separated; every color/size combination
// becomes one SKU with the given stock.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	gslug "github.com/gosimple/slug"
	"github.com/tnmle/vastra-backend/config"
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/internal/app/service"
	"github.com/tnmle/vastra-backend/internal/db"
	"github.com/tnmle/vastra-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	if err := db.Seed(); err != nil {
		log.Fatal("Failed to seed base data:", err)
	}

	if err := ensureAdmin(); err != nil {
		log.Fatal("Failed to create admin account:", err)
	}

	rows, err := readCatalogRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Products to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported, skipped := 0, 0
	for _, row := range rows {
		created, err := importProduct(row)
		if err != nil {
			log.Printf("Skipping %q: %v", row.Name, err)
			skipped++
			continue
		}
		if created {
			imported++
		} else {
			skipped++
		}
	}
	fmt.Printf("Done. Imported %d products, skipped %d.\n", imported, skipped)
}

type catalogRow struct {
	Category    string
	Name        string
	Description string
	BasePrice   float64
	Colors      []string
	Sizes       []string
	StockPerSKU int
}

func readCatalogRows(filePath string) ([]catalogRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	var rows []catalogRow
	for i, cells := range raw {
		if i == 0 {
			continue // header
		}
		if len(cells) < 4 || strings.TrimSpace(cells[1]) == "" {
			continue
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(cells[3]), 64)
		if err != nil || price <= 0 {
			log.Printf("Row %d: invalid base price %q, skipping", i+1, cells[3])
			continue
		}

		row := catalogRow{
			Category:    strings.TrimSpace(cells[0]),
			Name:        strings.TrimSpace(cells[1]),
			Description: strings.TrimSpace(cells[2]),
			BasePrice:   price,
			StockPerSKU: 10,
		}
		if len(cells) > 4 {
			row.Colors = splitList(cells[4])
		}
		if len(cells) > 5 {
			row.Sizes = splitList(cells[5])
		}
		if len(cells) > 6 {
			if stock, err := strconv.Atoi(strings.TrimSpace(cells[6])); err == nil && stock >= 0 {
				row.StockPerSKU = stock
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// importProduct creates the product and its SKU grid. Existing slugs
// are left untouched so the seeder is safe to rerun.
func importProduct(row catalogRow) (bool, error) {
	gdb := db.GetDB()
	productRepo := repository.NewProductRepository(gdb)
	skuRepo := repository.NewSKURepository(gdb)
	inventoryService := service.NewInventoryService(productRepo, skuRepo, gdb)

	product := &model.Product{
		Name:        row.Name,
		Description: row.Description,
		BasePrice:   row.BasePrice,
		IsActive:    true,
	}

	if row.Category != "" {
		categoryID, err := findOrCreateCategory(gdb, row.Category)
		if err != nil {
			return false, err
		}
		product.CategoryID = &categoryID
	}

	slug := gslug.Make(row.Name)
	if _, err := productRepo.FindBySlug(slug); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	product.Slug = slug

	if err := productRepo.Create(product); err != nil {
		return false, err
	}

	cells, err := buildMatrixCells(gdb, row)
	if err != nil {
		return false, err
	}
	if len(cells) == 0 {
		return true, nil
	}

	if _, err := inventoryService.SyncMatrix(product.ID, cells); err != nil {
		return false, err
	}
	return true, nil
}

func buildMatrixCells(gdb *gorm.DB, row catalogRow) ([]service.MatrixCellInput, error) {
	colorIDs, err := variantIDs(gdb, model.VariantColor, row.Colors)
	if err != nil {
		return nil, err
	}
	sizeIDs, err := variantIDs(gdb, model.VariantSize, row.Sizes)
	if err != nil {
		return nil, err
	}

	stock := float64(row.StockPerSKU)

	var cells []service.MatrixCellInput
	switch {
	case len(colorIDs) == 0 && len(sizeIDs) == 0:
		cells = append(cells, service.MatrixCellInput{Stock: &stock})
	case len(sizeIDs) == 0:
		for i := range colorIDs {
			cells = append(cells, service.MatrixCellInput{ColorValueID: &colorIDs[i], Stock: &stock})
		}
	case len(colorIDs) == 0:
		for i := range sizeIDs {
			cells = append(cells, service.MatrixCellInput{SizeValueID: &sizeIDs[i], Stock: &stock})
		}
	default:
		for i := range colorIDs {
			for j := range sizeIDs {
				cells = append(cells, service.MatrixCellInput{
					ColorValueID: &colorIDs[i],
					SizeValueID:  &sizeIDs[j],
					Stock:        &stock,
				})
			}
		}
	}
	return cells, nil
}

func variantIDs(gdb *gorm.DB, kind model.VariantKind, values []string) ([]uint, error) {
	ids := make([]uint, 0, len(values))
	for _, value := range values {
		var v model.VariantValue
		err := gdb.Where("kind = ? AND value = ?", kind, value).First(&v).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			v = model.VariantValue{Kind: kind, Value: value}
			err = gdb.Create(&v).Error
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, v.ID)
	}
	return ids, nil
}

func findOrCreateCategory(gdb *gorm.DB, name string) (uint, error) {
	var category model.Category
	err := gdb.Where("name = ?", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = model.Category{Name: name, Slug: gslug.Make(name)}
		err = gdb.Create(&category).Error
	}
	if err != nil {
		return 0, err
	}
	return category.ID, nil
}

func ensureAdmin() error {
	gdb := db.GetDB()

	email := strings.ToLower(os.Getenv("ADMIN_EMAIL"))
	if email == "" {
		email = "admin@vastra.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "change-me-now"
	}

	var existing model.User
	err := gdb.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
	}
	if err := gdb.Create(admin).Error; err != nil {
		return err
	}
	fmt.Printf("Created admin account %s\n", email)
	return nil
}
