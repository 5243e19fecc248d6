package service

import (
	"errors"
	"testing"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

func TestProductServiceCreateAndAvailability(t *testing.T) {
	env := setupOrderServiceTest(t)
	svc := NewProductService(repository.NewProductRepository(env.db))

	product, err := svc.Create(CreateProductInput{
		Slug:          " Tote-Bag ",
		Name:          "Tote Bag",
		Price:         models.NewMoneyFromFloat(19.999),
		StockQuantity: 7,
		Variants: models.VariantList{
			{ID: "red", AttributeName: "Color", AttributeValue: "Red", Price: models.NewMoneyFromInt(20), Stock: 3},
		},
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.Slug != "tote-bag" || !product.TrackStock || !product.IsActive {
		t.Fatalf("unexpected product defaults: %+v", product)
	}
	if product.Price.String() != "20.00" {
		t.Fatalf("price = %s, want 20.00", product.Price)
	}

	availability, err := svc.Availability(product.ID, &models.VariantRef{AttributeValue: "red"})
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}
	if !availability.Limited || availability.Quantity != 3 {
		t.Fatalf("unexpected availability: %+v", availability)
	}
}

func TestProductServiceHidesInactive(t *testing.T) {
	env := setupOrderServiceTest(t)
	svc := NewProductService(repository.NewProductRepository(env.db))
	inactive := false
	product, err := svc.Create(CreateProductInput{Slug: "draft", Name: "Draft", Price: models.NewMoneyFromInt(5), IsActive: &inactive})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := svc.GetPublic(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("inactive product should be hidden, got %v", err)
	}
	if _, err := svc.Create(CreateProductInput{Slug: "", Name: "x"}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("empty slug should be rejected, got %v", err)
	}
	if _, err := svc.Create(CreateProductInput{Slug: "neg", Name: "Neg", StockQuantity: -1}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("negative stock should be rejected, got %v", err)
	}
}
