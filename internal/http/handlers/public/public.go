package public

import (
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/catalog"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
	publicLowStockLimit  = 5
)

// 商品库存状态
const (
	stockStatusUnlimited  = "unlimited"
	stockStatusInStock    = "in_stock"
	stockStatusLowStock   = "low_stock"
	stockStatusOutOfStock = "out_of_stock"
)

// PublicProductView 公共商品响应结构
type PublicProductView struct {
	models.Product
	StockStatus string `json:"stockStatus"`
	IsSoldOut   bool   `json:"isSoldOut"`
}

// PublicConfig 前台展示用的店铺配置
type PublicConfig struct {
	Currency              string       `json:"currency"`
	FreeShippingThreshold models.Money `json:"freeShippingThreshold"`
	FlatShippingRate      models.Money `json:"flatShippingRate"`
	TaxRate               string       `json:"taxRate"`
	LoyaltyPointsPerUnit  string       `json:"loyaltyPointsPerUnit"`
}

// GetConfig 获取店铺配置
func (h *Handler) GetConfig(c *gin.Context) {
	var cached PublicConfig
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	store := h.Config.Store
	data := PublicConfig{
		Currency:              store.Currency,
		FreeShippingThreshold: models.NewMoneyFromDecimal(store.FreeShippingThresholdDecimal()),
		FlatShippingRate:      models.NewMoneyFromDecimal(store.FlatShippingRateDecimal()),
		TaxRate:               store.TaxRateDecimal().String(),
		LoyaltyPointsPerUnit:  store.LoyaltyRateDecimal().String(),
	}
	if err := cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL); err != nil {
		requestLog(c).Warnw("public_config_cache_set_failed", "error", err)
	}
	response.Success(c, data)
}

// GetProduct 获取商品详情（含库存状态）
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetPublic(productID)
	if err != nil {
		handlershared.RespondMappedError(c, err, handlershared.ProductErrorRules, response.CodeInternal, "product fetch failed")
		return
	}
	response.Success(c, decorateProductStock(product))
}

func decorateProductStock(product *models.Product) PublicProductView {
	item := PublicProductView{Product: *product}
	available := catalog.AvailableFor(product, nil)
	if len(product.Variants) > 0 {
		total := 0
		for _, variant := range product.Variants {
			if variant.Stock > 0 {
				total += variant.Stock
			}
		}
		available = catalog.Availability{Quantity: total, Limited: true}
	}

	switch {
	case !available.Limited:
		item.StockStatus = stockStatusUnlimited
	case available.Quantity <= 0:
		item.StockStatus = stockStatusOutOfStock
		item.IsSoldOut = true
	case available.Quantity <= publicLowStockLimit:
		item.StockStatus = stockStatusLowStock
	default:
		item.StockStatus = stockStatusInStock
	}
	return item
}
