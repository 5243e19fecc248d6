package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/models"
)

func testPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(100),
		FlatShippingRate:      decimal.NewFromInt(8),
	}
}

func flatProduct(id uint, price int64, stock int) ProductSnapshot {
	return ProductSnapshot{
		ID:            id,
		Name:          "Flat",
		Price:         models.NewMoneyFromInt(price),
		StockQuantity: stock,
		TrackStock:    true,
	}
}

func variantProduct(id uint) ProductSnapshot {
	return ProductSnapshot{
		ID:            id,
		Name:          "Tee",
		Price:         models.NewMoneyFromInt(20),
		StockQuantity: 999,
		TrackStock:    true,
		Variants: models.VariantList{
			{ID: "s", AttributeName: "Size", AttributeValue: "S", Price: models.NewMoneyFromInt(18), Stock: 2},
			{ID: "m", AttributeName: "Size", AttributeValue: "M", Price: models.NewMoneyFromInt(22), Stock: 4},
		},
	}
}

func TestAddItemMergesAndClamps(t *testing.T) {
	c := New(testPricing())
	res := c.AddItem(flatProduct(1, 10, 5), 3, nil)
	if res.Quantity != 3 || res.Clamped {
		t.Fatalf("unexpected first add: %+v", res)
	}
	res = c.AddItem(flatProduct(1, 10, 5), 4, &models.VariantRef{})
	if res.Quantity != 5 || !res.Clamped || res.Requested != 7 {
		t.Fatalf("expected clamp to 5, got %+v", res)
	}
	if c.Len() != 1 {
		t.Fatalf("empty variant should merge with no-variant line, lines=%d", c.Len())
	}
}

func TestAddItemOutOfStockDoesNotAppend(t *testing.T) {
	c := New(testPricing())
	res := c.AddItem(flatProduct(1, 10, 0), 1, nil)
	if res.Quantity != 0 || !res.Clamped {
		t.Fatalf("unexpected result: %+v", res)
	}
	if c.Len() != 0 {
		t.Fatalf("out of stock product should not be added")
	}
}

func TestVariantLinesAreSeparate(t *testing.T) {
	c := New(testPricing())
	p := variantProduct(7)
	c.AddItem(p, 1, &models.VariantRef{ID: "s"})
	c.AddItem(p, 1, &models.VariantRef{AttributeName: "size", AttributeValue: "m"})
	res := c.AddItem(p, 5, &models.VariantRef{ID: "S"})
	if c.Len() != 2 {
		t.Fatalf("expected two lines, got %d", c.Len())
	}
	if res.Quantity != 2 || !res.Clamped {
		t.Fatalf("variant s should cap at 2, got %+v", res)
	}
	// 18*2 + 22*1
	if got := c.Totals.Subtotal.String(); got != "58.00" {
		t.Fatalf("unexpected subtotal %s", got)
	}
}

func TestUpdateQuantityRemovesAtZero(t *testing.T) {
	c := New(testPricing())
	c.AddItem(flatProduct(1, 10, 5), 2, nil)
	if _, ok := c.UpdateQuantity(1, 0, nil); !ok {
		t.Fatalf("expected line removal")
	}
	if c.Len() != 0 || !c.Totals.Total.IsZero() {
		t.Fatalf("cart should be empty with zero totals")
	}
}

func TestUpdateQuantityClampsToStock(t *testing.T) {
	c := New(testPricing())
	c.AddItem(flatProduct(1, 10, 5), 1, nil)
	res, ok := c.UpdateQuantity(1, 9, nil)
	if !ok || res.Quantity != 5 || !res.Clamped {
		t.Fatalf("unexpected update: %+v ok=%v", res, ok)
	}
}

func TestRemoveItemTreatsNilAndEmptyVariantAlike(t *testing.T) {
	c := New(testPricing())
	c.AddItem(flatProduct(3, 10, 5), 1, nil)
	if !c.RemoveItem(3, &models.VariantRef{}) {
		t.Fatalf("empty variant should match no-variant line")
	}
}

func TestTotalsShippingThreshold(t *testing.T) {
	c := New(testPricing())
	c.AddItem(flatProduct(1, 30, 10), 3, nil)
	if c.Totals.Shipping.String() != "8.00" || c.Totals.Total.String() != "98.00" {
		t.Fatalf("expected flat shipping below threshold, got %+v", c.Totals)
	}
	c.AddItem(flatProduct(1, 30, 10), 1, nil)
	if !c.Totals.Shipping.IsZero() || c.Totals.Total.String() != "120.00" {
		t.Fatalf("expected free shipping at threshold, got %+v", c.Totals)
	}
}

func TestTotalsWithTaxRate(t *testing.T) {
	pricing := testPricing()
	pricing.TaxRate = decimal.RequireFromString("0.1")
	c := New(pricing)
	c.AddItem(flatProduct(1, 50, 5), 3, nil)
	if c.Totals.Tax.String() != "15.00" || c.Totals.Total.String() != "165.00" {
		t.Fatalf("unexpected totals %+v", c.Totals)
	}
}

func TestClearZeroesTotals(t *testing.T) {
	c := New(testPricing())
	c.AddItem(flatProduct(1, 50, 5), 1, nil)
	c.Clear()
	if c.Len() != 0 || !c.Totals.Subtotal.IsZero() || !c.Totals.Shipping.IsZero() {
		t.Fatalf("clear should zero totals, got %+v", c.Totals)
	}
}

func TestStockCapHoldsForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []ProductSnapshot{flatProduct(1, 5, 3), flatProduct(2, 7, 0), variantProduct(3)}
	refs := []*models.VariantRef{nil, {ID: "s"}, {SKU: "none"}, {AttributeValue: "M"}}

	for round := 0; round < 200; round++ {
		c := New(testPricing())
		for step := 0; step < 30; step++ {
			p := products[rng.Intn(len(products))]
			ref := refs[rng.Intn(len(refs))]
			qty := rng.Intn(10) - 2
			if rng.Intn(2) == 0 {
				c.AddItem(p, qty, ref)
			} else {
				c.UpdateQuantity(p.ID, qty, ref)
			}
			for _, line := range c.Items {
				avail := line.availability()
				if line.Quantity <= 0 {
					t.Fatalf("round %d step %d: non-positive line quantity %d", round, step, line.Quantity)
				}
				if avail.Limited && line.Quantity > avail.Quantity {
					t.Fatalf("round %d step %d: quantity %d exceeds stock %d", round, step, line.Quantity, avail.Quantity)
				}
			}
		}
	}
}

func TestAddItemVariantProductNeedsResolvedVariant(t *testing.T) {
	c := New(testPricing())
	for _, ref := range []*models.VariantRef{nil, {ID: "xl"}} {
		res := c.AddItem(variantProduct(5), 50, ref)
		if res.Quantity != 0 || !res.Clamped {
			t.Fatalf("ref %+v: unexpected result %+v", ref, res)
		}
	}
	if c.Len() != 0 {
		t.Fatalf("unresolved variant lines should not be added, lines=%d", c.Len())
	}
	res := c.AddItem(variantProduct(5), 50, &models.VariantRef{ID: "s"})
	if res.Quantity != 2 || !res.Clamped {
		t.Fatalf("expected clamp to variant stock 2, got %+v", res)
	}
}
