package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.Coupon{},
		&models.UserCoupon{},
		&models.Counter{},
		&models.CartSnapshot{},
		&models.Product{},
		&models.StoreCreditAccount{},
		&models.StoreCreditTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func TestCounterNextStartsAtFloor(t *testing.T) {
	db := setupRepositoryTestDB(t, "counter_floor")
	repo := NewCounterRepository(db)
	orders := NewOrderRepository(db)

	first, err := repo.Next(constants.CounterInvoice, constants.DefaultInvoiceFloor, orders.MaxInvoiceNumber)
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	second, err := repo.Next(constants.CounterInvoice, constants.DefaultInvoiceFloor, orders.MaxInvoiceNumber)
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if first != 12000 || second != 12001 {
		t.Fatalf("expected 12000 then 12001, got %d then %d", first, second)
	}
}

func TestCounterNextSeedsFromExistingOrders(t *testing.T) {
	db := setupRepositoryTestDB(t, "counter_seed")
	if err := db.Create(&models.Order{OrderNo: "legacy", InvoiceNumber: 12500, Status: constants.OrderStatusCompleted, Currency: "USD"}).Error; err != nil {
		t.Fatalf("create legacy order failed: %v", err)
	}
	repo := NewCounterRepository(db)
	orders := NewOrderRepository(db)

	got, err := repo.Next(constants.CounterInvoice, constants.DefaultInvoiceFloor, orders.MaxInvoiceNumber)
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if got != 12501 {
		t.Fatalf("expected 12501, got %d", got)
	}
}

func TestCounterNextRaisesBelowFloorValue(t *testing.T) {
	db := setupRepositoryTestDB(t, "counter_raise")
	if err := db.Create(&models.Counter{Name: "invoice", Value: 17}).Error; err != nil {
		t.Fatalf("create counter failed: %v", err)
	}
	got, err := NewCounterRepository(db).Next("invoice", 12000, nil)
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if got != 12000 {
		t.Fatalf("expected floor 12000, got %d", got)
	}
}

func TestCounterNextRolledBackWithTransaction(t *testing.T) {
	db := setupRepositoryTestDB(t, "counter_rollback")
	repo := NewCounterRepository(db)
	if _, err := repo.Next("invoice", 12000, nil); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	_ = db.Transaction(func(tx *gorm.DB) error {
		if _, err := repo.WithTx(tx).Next("invoice", 12000, nil); err != nil {
			t.Fatalf("next in tx failed: %v", err)
		}
		return fmt.Errorf("abort")
	})
	got, err := repo.Next("invoice", 12000, nil)
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if got != 12001 {
		t.Fatalf("rolled back value should be reused, got %d", got)
	}
}
