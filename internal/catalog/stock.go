package catalog

import (
	"github.com/storefront-next/internal/models"
)

// 库存调整目标
const (
	TargetVariant = "variant"
	TargetProduct = "product"
	TargetNone    = "none"
)

// Availability 可售库存
type Availability struct {
	Quantity int  // 可售数量
	Limited  bool // 是否受库存限制
}

// Cap 将请求数量限制在可售库存内
func (a Availability) Cap(quantity int) (int, bool) {
	if quantity < 0 {
		quantity = 0
	}
	if !a.Limited || quantity <= a.Quantity {
		return quantity, false
	}
	limit := a.Quantity
	if limit < 0 {
		limit = 0
	}
	return limit, true
}

// AvailableFor 计算商品（或其变体）的可售库存。
// 商品存在变体时只认变体库存，未命中变体视为不可售。
func AvailableFor(product *models.Product, ref *models.VariantRef) Availability {
	if product == nil {
		return Availability{Limited: true}
	}
	if len(product.Variants) > 0 {
		if variant := ResolveProductVariant(product, ref); variant != nil {
			return Availability{Quantity: variant.Stock, Limited: true}
		}
		return Availability{Quantity: 0, Limited: true}
	}
	if !product.TrackStock {
		return Availability{Limited: false}
	}
	return Availability{Quantity: product.StockQuantity, Limited: true}
}

// Adjustment 一次库存调整的结果
type Adjustment struct {
	Target       string
	VariantIndex int
	Before       int
	After        int
}

// Changed 是否实际修改了库存字段
func (a Adjustment) Changed() bool {
	return a.Target != TargetNone && a.Before != a.After
}

// Decrement 扣减库存（下限为 0），直接修改传入的商品
func Decrement(product *models.Product, ref *models.VariantRef, quantity int) Adjustment {
	if quantity < 0 {
		quantity = 0
	}
	return applyDelta(product, ref, -quantity)
}

// Restock 回补库存，直接修改传入的商品
func Restock(product *models.Product, ref *models.VariantRef, quantity int) Adjustment {
	if quantity < 0 {
		quantity = 0
	}
	return applyDelta(product, ref, quantity)
}

func applyDelta(product *models.Product, ref *models.VariantRef, delta int) Adjustment {
	if product == nil {
		return Adjustment{Target: TargetNone, VariantIndex: -1}
	}
	if len(product.Variants) > 0 {
		if res := ResolveVariant(product.Variants, ref); res.Found() {
			before := product.Variants[res.Index].Stock
			after := clampFloor(before + delta)
			product.Variants[res.Index].Stock = after
			return Adjustment{Target: TargetVariant, VariantIndex: res.Index, Before: before, After: after}
		}
	}
	if !product.TrackStock {
		return Adjustment{Target: TargetNone, VariantIndex: -1}
	}
	before := product.StockQuantity
	after := clampFloor(before + delta)
	product.StockQuantity = after
	return Adjustment{Target: TargetProduct, VariantIndex: -1, Before: before, After: after}
}

func clampFloor(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
