package repository

import (
	"testing"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

func createTestProduct(t *testing.T, repo *GormProductRepository, slug string, stock int, variants models.VariantList) *models.Product {
	t.Helper()
	product := &models.Product{
		Slug:          slug,
		Name:          slug,
		Price:         models.NewMoneyFromInt(10),
		StockQuantity: stock,
		TrackStock:    true,
		Variants:      variants,
		IsActive:      true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestProductRepositoryGetByIDMissingReturnsNil(t *testing.T) {
	repo := NewProductRepository(setupRepositoryTestDB(t, "product_missing"))
	product, err := repo.GetByID(404)
	if err != nil {
		t.Fatalf("get missing product failed: %v", err)
	}
	if product != nil {
		t.Fatalf("expected nil product, got %+v", product)
	}
}

func TestProductRepositoryListByIDsSkipsDeleted(t *testing.T) {
	db := setupRepositoryTestDB(t, "product_list_ids")
	repo := NewProductRepository(db)
	kept := createTestProduct(t, repo, "kept", 3, nil)
	removed := createTestProduct(t, repo, "removed", 3, nil)
	if err := db.Delete(&models.Product{}, removed.ID).Error; err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	products, err := repo.ListByIDs([]uint{kept.ID, removed.ID})
	if err != nil {
		t.Fatalf("list by ids failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != kept.ID {
		t.Fatalf("unexpected products: %+v", products)
	}

	empty, err := repo.ListByIDs(nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty ids should return empty list: %v %v", empty, err)
	}
}

func TestProductRepositorySaveStockOnlyTouchesStockColumns(t *testing.T) {
	db := setupRepositoryTestDB(t, "product_save_stock")
	repo := NewProductRepository(db)
	product := createTestProduct(t, repo, "tee", 0, models.VariantList{
		{ID: "s", AttributeName: "Size", AttributeValue: "S", Price: models.NewMoneyFromInt(10), Stock: 4},
		{ID: "m", AttributeName: "Size", AttributeValue: "M", Price: models.NewMoneyFromInt(12), Stock: 1},
	})

	err := repo.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetByIDForUpdate(product.ID)
		if err != nil {
			return err
		}
		locked.Variants[0].Stock = 1
		locked.Name = "renamed"
		return repo.WithTx(tx).SaveStock(locked)
	})
	if err != nil {
		t.Fatalf("save stock failed: %v", err)
	}

	reloaded, err := repo.GetByID(product.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Variants[0].Stock != 1 || reloaded.Variants[1].Stock != 1 {
		t.Fatalf("unexpected variant stock: %+v", reloaded.Variants)
	}
	if reloaded.Name != "tee" {
		t.Fatalf("name should not be written by SaveStock, got %s", reloaded.Name)
	}
	if err := repo.SaveStock(&models.Product{}); err == nil {
		t.Fatalf("expected error for product without id")
	}
}
