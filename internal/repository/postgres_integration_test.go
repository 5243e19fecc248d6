//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.Product{},
		&models.Counter{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Counter{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresListAdminJSONAndILikeFilters(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewOrderRepository(db)

	seed := []models.Order{
		{OrderNo: "pg-1", InvoiceNumber: 12000, CustomerEmail: "Alice@Example.com", ShippingAddress: models.ShippingAddress{Country: "us"}},
		{OrderNo: "pg-2", InvoiceNumber: 12001, CustomerEmail: "bob@example.com", ShippingAddress: models.ShippingAddress{Country: "CA"}},
	}
	for i := range seed {
		seed[i].Currency = "USD"
		seed[i].Status = constants.OrderStatusPending
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}

	orders, total, err := repo.ListAdmin(OrderListFilter{Page: 1, PageSize: 10, Country: "US"})
	if err != nil {
		t.Fatalf("list by country failed: %v", err)
	}
	if total != 1 || len(orders) != 1 || orders[0].OrderNo != "pg-1" {
		t.Fatalf("unexpected country filter result: total=%d orders=%+v", total, orders)
	}

	orders, total, err = repo.ListAdmin(OrderListFilter{Page: 1, PageSize: 10, CustomerEmail: "alice"})
	if err != nil {
		t.Fatalf("list by email failed: %v", err)
	}
	if total != 1 || orders[0].OrderNo != "pg-1" {
		t.Fatalf("ILIKE email filter should be case-insensitive: total=%d", total)
	}
}

func TestPostgresCounterNextIsGapFreeUnderConcurrency(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan int64, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				value, err := NewCounterRepository(db).WithTx(tx).Next(constants.CounterInvoice, constants.DefaultInvoiceFloor, nil)
				if err != nil {
					return err
				}
				results <- value
				return nil
			})
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("counter next failed: %v", err)
	}
	seen := map[int64]bool{}
	for value := range results {
		if seen[value] {
			t.Fatalf("duplicate counter value %d", value)
		}
		seen[value] = true
	}
	for i := int64(0); i < workers; i++ {
		if !seen[constants.DefaultInvoiceFloor+i] {
			t.Fatalf("missing counter value %d in %v", constants.DefaultInvoiceFloor+i, seen)
		}
	}
}

func TestPostgresProductSaveStockRoundTripsVariants(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewProductRepository(db)

	product := &models.Product{
		Slug:       "pg-tee",
		Name:       "PG Tee",
		Price:      models.NewMoneyFromInt(20),
		TrackStock: true,
		IsActive:   true,
		Variants: models.VariantList{
			{ID: "m", AttributeName: "Size", AttributeValue: "M", Price: models.NewMoneyFromInt(20), Stock: 5},
		},
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	err := repo.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetByIDForUpdate(product.ID)
		if err != nil {
			return err
		}
		locked.Variants[0].Stock = 2
		return repo.WithTx(tx).SaveStock(locked)
	})
	if err != nil {
		t.Fatalf("save stock failed: %v", err)
	}

	reloaded, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if len(reloaded.Variants) != 1 || reloaded.Variants[0].Stock != 2 {
		t.Fatalf("variant stock not persisted: %+v", reloaded.Variants)
	}
}
