package catalog

import (
	"testing"

	"github.com/storefront-next/internal/models"
)

func TestDecrementFlatStockFloorsAtZero(t *testing.T) {
	product := &models.Product{StockQuantity: 2, TrackStock: true}
	adj := Decrement(product, nil, 5)
	if adj.Target != TargetProduct || adj.Before != 2 || adj.After != 0 {
		t.Fatalf("unexpected adjustment: %+v", adj)
	}
	if product.StockQuantity != 0 {
		t.Fatalf("expected stock 0, got %d", product.StockQuantity)
	}
}

func TestDecrementUntrackedProductIsNoop(t *testing.T) {
	product := &models.Product{StockQuantity: 7, TrackStock: false}
	adj := Decrement(product, nil, 3)
	if adj.Changed() || product.StockQuantity != 7 {
		t.Fatalf("untracked stock should not change: %+v stock=%d", adj, product.StockQuantity)
	}
}

func TestDecrementResolvedVariant(t *testing.T) {
	product := &models.Product{
		StockQuantity: 100,
		TrackStock:    true,
		Variants: models.VariantList{
			{ID: "v1", Stock: 4},
			{ID: "v2", Stock: 1},
		},
	}
	adj := Decrement(product, &models.VariantRef{ID: "V2"}, 3)
	if adj.Target != TargetVariant || adj.VariantIndex != 1 {
		t.Fatalf("expected variant target, got %+v", adj)
	}
	if product.Variants[1].Stock != 0 {
		t.Fatalf("expected variant stock floored at 0, got %d", product.Variants[1].Stock)
	}
	if product.StockQuantity != 100 {
		t.Fatalf("flat stock must not change when a variant resolves")
	}
}

func TestDecrementUnresolvedVariantFallsBackToFlat(t *testing.T) {
	product := &models.Product{
		StockQuantity: 10,
		TrackStock:    true,
		Variants:      models.VariantList{{ID: "v1", Stock: 4}},
	}
	Decrement(product, &models.VariantRef{ID: "missing"}, 3)
	if product.StockQuantity != 7 || product.Variants[0].Stock != 4 {
		t.Fatalf("unexpected stock: flat=%d variant=%d", product.StockQuantity, product.Variants[0].Stock)
	}
}

func TestRestockIsSymmetric(t *testing.T) {
	product := &models.Product{
		StockQuantity: 3,
		TrackStock:    true,
		Variants:      models.VariantList{{SKU: "S-1", Stock: 0}},
	}
	Restock(product, &models.VariantRef{SKU: "s-1"}, 2)
	Restock(product, nil, 4)
	if product.Variants[0].Stock != 2 {
		t.Fatalf("expected variant stock 2, got %d", product.Variants[0].Stock)
	}
	if product.StockQuantity != 7 {
		t.Fatalf("expected flat stock 7, got %d", product.StockQuantity)
	}
}

func TestAvailabilityCap(t *testing.T) {
	product := &models.Product{StockQuantity: 5, TrackStock: true}
	got, clamped := AvailableFor(product, nil).Cap(8)
	if got != 5 || !clamped {
		t.Fatalf("expected clamp to 5, got %d clamped=%v", got, clamped)
	}
	got, clamped = AvailableFor(&models.Product{TrackStock: false}, nil).Cap(8)
	if got != 8 || clamped {
		t.Fatalf("untracked product should not clamp, got %d clamped=%v", got, clamped)
	}
	got, _ = AvailableFor(product, nil).Cap(-3)
	if got != 0 {
		t.Fatalf("negative quantity should cap to 0, got %d", got)
	}
}

func TestAvailabilityIgnoresFlatStockOnVariantProducts(t *testing.T) {
	product := &models.Product{
		StockQuantity: 999,
		TrackStock:    false,
		Variants:      models.VariantList{{ID: "s", AttributeValue: "S", Stock: 2}},
	}
	for _, ref := range []*models.VariantRef{nil, {ID: "xl"}} {
		got, clamped := AvailableFor(product, ref).Cap(50)
		if got != 0 || !clamped {
			t.Fatalf("ref %+v: expected nothing sellable, got %d clamped=%v", ref, got, clamped)
		}
	}
	if got, _ := AvailableFor(product, &models.VariantRef{ID: "s"}).Cap(50); got != 2 {
		t.Fatalf("resolved variant should cap at 2, got %d", got)
	}
	if !VariantUnresolved(product, &models.VariantRef{ID: "xl"}) || VariantUnresolved(product, &models.VariantRef{AttributeValue: "s"}) {
		t.Fatalf("unexpected VariantUnresolved result")
	}
	if VariantUnresolved(&models.Product{}, nil) {
		t.Fatalf("product without variants never needs a variant")
	}
}
