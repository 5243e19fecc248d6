// Package catalog 商品库存的纯计算部分：变体解析与库存增减
package catalog

import (
	"strings"

	"github.com/storefront-next/internal/models"
)

// variantMatcher 变体匹配策略
type variantMatcher struct {
	name    string
	applies func(ref *models.VariantRef) bool
	match   func(candidate models.VariantRef, ref *models.VariantRef) bool
}

// 按优先级排列：id > sku > 规格名+规格值 > 仅规格值
var variantMatchers = []variantMatcher{
	{
		name:    "id",
		applies: func(ref *models.VariantRef) bool { return strings.TrimSpace(ref.ID) != "" },
		match: func(candidate models.VariantRef, ref *models.VariantRef) bool {
			return equalFold(candidate.ID, ref.ID)
		},
	},
	{
		name:    "sku",
		applies: func(ref *models.VariantRef) bool { return strings.TrimSpace(ref.SKU) != "" },
		match: func(candidate models.VariantRef, ref *models.VariantRef) bool {
			return equalFold(candidate.SKU, ref.SKU)
		},
	},
	{
		name: "name_value",
		applies: func(ref *models.VariantRef) bool {
			return strings.TrimSpace(ref.AttributeName) != "" && strings.TrimSpace(ref.AttributeValue) != ""
		},
		match: func(candidate models.VariantRef, ref *models.VariantRef) bool {
			return equalFold(candidate.AttributeName, ref.AttributeName) && equalFold(candidate.AttributeValue, ref.AttributeValue)
		},
	},
	{
		name:    "value",
		applies: func(ref *models.VariantRef) bool { return strings.TrimSpace(ref.AttributeValue) != "" },
		match: func(candidate models.VariantRef, ref *models.VariantRef) bool {
			return equalFold(candidate.AttributeValue, ref.AttributeValue)
		},
	},
}

// Resolution 变体解析结果
type Resolution struct {
	Index    int    // 命中的变体下标，-1 表示未命中
	Strategy string // 命中的匹配策略
}

// Found 是否命中
func (r Resolution) Found() bool {
	return r.Index >= 0
}

// ResolveVariant 在变体列表中查找引用对应的变体，按策略优先级首个命中即返回
func ResolveVariant(variants []models.VariantRef, ref *models.VariantRef) Resolution {
	if ref == nil || len(variants) == 0 {
		return Resolution{Index: -1}
	}
	for _, m := range variantMatchers {
		if !m.applies(ref) {
			continue
		}
		for i := range variants {
			if m.match(variants[i], ref) {
				return Resolution{Index: i, Strategy: m.name}
			}
		}
	}
	return Resolution{Index: -1}
}

// ResolveProductVariant 解析商品上的变体，未命中返回 nil
func ResolveProductVariant(product *models.Product, ref *models.VariantRef) *models.VariantRef {
	if product == nil {
		return nil
	}
	res := ResolveVariant(product.Variants, ref)
	if !res.Found() {
		return nil
	}
	return &product.Variants[res.Index]
}

// VariantUnresolved 商品带变体但引用无法命中任何变体
func VariantUnresolved(product *models.Product, ref *models.VariantRef) bool {
	return product != nil && len(product.Variants) > 0 && ResolveProductVariant(product, ref) == nil
}

// IsEmptyRef 变体引用是否不含任何身份字段（等价于无变体）
func IsEmptyRef(ref *models.VariantRef) bool {
	if ref == nil {
		return true
	}
	return strings.TrimSpace(ref.ID) == "" &&
		strings.TrimSpace(ref.SKU) == "" &&
		strings.TrimSpace(ref.AttributeName) == "" &&
		strings.TrimSpace(ref.AttributeValue) == ""
}

// IdentityKey 变体身份键，用于购物车行去重；无变体返回空串
func IdentityKey(ref *models.VariantRef) string {
	if IsEmptyRef(ref) {
		return ""
	}
	if id := strings.TrimSpace(ref.ID); id != "" {
		return "id:" + strings.ToLower(id)
	}
	if sku := strings.TrimSpace(ref.SKU); sku != "" {
		return "sku:" + strings.ToLower(sku)
	}
	return "attr:" + strings.ToLower(strings.TrimSpace(ref.AttributeName)) + "=" + strings.ToLower(strings.TrimSpace(ref.AttributeValue))
}

func equalFold(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
