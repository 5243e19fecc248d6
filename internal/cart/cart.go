// Package cart 购物车聚合：行项目、库存封顶与金额汇总
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/models"
)

// ProductSnapshot 加入购物车时的商品快照
type ProductSnapshot struct {
	ID            uint               `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Price         models.Money       `json:"price"`
	OriginalPrice *models.Money      `json:"originalPrice,omitempty"`
	StockQuantity int                `json:"stockQuantity"`
	TrackStock    bool               `json:"trackStock"`
	Variants      models.VariantList `json:"variants"`
}

// SnapshotOf 从商品生成快照
func SnapshotOf(product *models.Product) ProductSnapshot {
	variants := make(models.VariantList, len(product.Variants))
	copy(variants, product.Variants)
	return ProductSnapshot{
		ID:            product.ID,
		Name:          product.Name,
		Slug:          product.Slug,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		StockQuantity: product.StockQuantity,
		TrackStock:    product.TrackStock,
		Variants:      variants,
	}
}

func (s ProductSnapshot) product() *models.Product {
	return &models.Product{
		ID:            s.ID,
		Name:          s.Name,
		Price:         s.Price,
		StockQuantity: s.StockQuantity,
		TrackStock:    s.TrackStock,
		Variants:      s.Variants,
	}
}

// LineItem 购物车行
type LineItem struct {
	Product  ProductSnapshot    `json:"product"`
	Variant  *models.VariantRef `json:"variant,omitempty"`
	Quantity int                `json:"quantity"`
}

// UnitPrice 行单价：命中变体取变体价格，否则取商品价格
func (l LineItem) UnitPrice() models.Money {
	if variant := catalog.ResolveProductVariant(l.Product.product(), l.Variant); variant != nil {
		return variant.Price
	}
	if l.Variant != nil && len(l.Product.Variants) == 0 && !l.Variant.Price.IsZero() {
		return l.Variant.Price
	}
	return l.Product.Price
}

func (l LineItem) availability() catalog.Availability {
	product := l.Product.product()
	if len(product.Variants) == 0 && !catalog.IsEmptyRef(l.Variant) {
		return catalog.Availability{Quantity: l.Variant.Stock, Limited: true}
	}
	return catalog.AvailableFor(product, l.Variant)
}

func (l LineItem) matches(productID uint, variantKey string) bool {
	return l.Product.ID == productID && catalog.IdentityKey(l.Variant) == variantKey
}

// Pricing 运费与税费策略
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingRate      decimal.Decimal
	TaxRate               decimal.Decimal
}

// Totals 购物车金额汇总
type Totals struct {
	Subtotal models.Money `json:"subtotal"`
	Shipping models.Money `json:"shipping"`
	Tax      models.Money `json:"tax"`
	Total    models.Money `json:"total"`
}

// Result 数量变更结果
type Result struct {
	Quantity  int  // 最终数量
	Requested int  // 请求数量
	Clamped   bool // 是否因库存被截断
}

// Cart 购物车聚合
type Cart struct {
	Items   []LineItem
	Totals  Totals
	pricing Pricing
}

// New 创建空购物车
func New(pricing Pricing) *Cart {
	c := &Cart{Items: []LineItem{}, pricing: pricing}
	c.recompute()
	return c
}

// AddItem 加入商品；已存在同一商品+变体的行时累加数量，结果数量受库存封顶
func (c *Cart) AddItem(product ProductSnapshot, quantity int, variant *models.VariantRef) Result {
	if quantity <= 0 {
		quantity = 1
	}
	if catalog.IsEmptyRef(variant) {
		variant = nil
	}
	key := catalog.IdentityKey(variant)
	for i := range c.Items {
		if !c.Items[i].matches(product.ID, key) {
			continue
		}
		c.Items[i].Product = product
		requested := c.Items[i].Quantity + quantity
		capped, clamped := c.Items[i].availability().Cap(requested)
		if capped == 0 {
			c.removeAt(i)
		} else {
			c.Items[i].Quantity = capped
		}
		c.recompute()
		return Result{Quantity: capped, Requested: requested, Clamped: clamped}
	}

	line := LineItem{Product: product, Variant: variant}
	capped, clamped := line.availability().Cap(quantity)
	if capped > 0 {
		line.Quantity = capped
		c.Items = append(c.Items, line)
	}
	c.recompute()
	return Result{Quantity: capped, Requested: quantity, Clamped: clamped}
}

// RemoveItem 删除行；nil 与空变体视为同一个"无变体"
func (c *Cart) RemoveItem(productID uint, variant *models.VariantRef) bool {
	key := catalog.IdentityKey(variant)
	for i := range c.Items {
		if c.Items[i].matches(productID, key) {
			c.removeAt(i)
			c.recompute()
			return true
		}
	}
	return false
}

// UpdateQuantity 设置行数量；数量不大于 0 时删除该行
func (c *Cart) UpdateQuantity(productID uint, quantity int, variant *models.VariantRef) (Result, bool) {
	if quantity <= 0 {
		removed := c.RemoveItem(productID, variant)
		return Result{Quantity: 0, Requested: quantity}, removed
	}
	key := catalog.IdentityKey(variant)
	for i := range c.Items {
		if !c.Items[i].matches(productID, key) {
			continue
		}
		capped, clamped := c.Items[i].availability().Cap(quantity)
		if capped == 0 {
			c.removeAt(i)
		} else {
			c.Items[i].Quantity = capped
		}
		c.recompute()
		return Result{Quantity: capped, Requested: quantity, Clamped: clamped}, true
	}
	return Result{Requested: quantity}, false
}

// RefreshProduct 用最新商品快照替换该商品所有行的快照
func (c *Cart) RefreshProduct(product ProductSnapshot) {
	for i := range c.Items {
		if c.Items[i].Product.ID == product.ID {
			c.Items[i].Product = product
		}
	}
	c.recompute()
}

// Clear 清空购物车
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.recompute()
}

// Len 行数
func (c *Cart) Len() int {
	return len(c.Items)
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func (c *Cart) recompute() {
	c.Totals = ComputeTotals(c.Items, c.pricing)
}

// ComputeTotals 计算小计、运费、税费与合计
func ComputeTotals(items []LineItem, pricing Pricing) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice().Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	shipping := ShippingFor(subtotal, len(items) > 0, pricing)
	tax := decimal.Zero
	if pricing.TaxRate.IsPositive() {
		tax = subtotal.Mul(pricing.TaxRate).Round(2)
	}
	return Totals{
		Subtotal: models.NewMoneyFromDecimal(subtotal),
		Shipping: models.NewMoneyFromDecimal(shipping),
		Tax:      models.NewMoneyFromDecimal(tax),
		Total:    models.NewMoneyFromDecimal(subtotal.Add(shipping).Add(tax)),
	}
}

// ShippingFor 小计达到包邮门槛免运费，否则按固定运费
func ShippingFor(subtotal decimal.Decimal, hasItems bool, pricing Pricing) decimal.Decimal {
	if !hasItems || subtotal.GreaterThanOrEqual(pricing.FreeShippingThreshold) {
		return decimal.Zero
	}
	return pricing.FlatShippingRate
}
