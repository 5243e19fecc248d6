package admin

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

type createProductRequest struct {
	Slug          string             `json:"slug" binding:"required"`
	Name          string             `json:"name" binding:"required"`
	Price         models.Money       `json:"price"`
	OriginalPrice *models.Money      `json:"originalPrice"`
	StockQuantity int                `json:"stockQuantity"`
	TrackStock    *bool              `json:"trackStock"`
	Variants      models.VariantList `json:"variants"`
	IsActive      *bool              `json:"isActive"`
}

// CreateProduct 创建商品；未指定 trackStock/isActive 时由服务层取默认值
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid product payload", nil)
		return
	}
	product, err := h.ProductService.Create(service.CreateProductInput{
		Slug:          req.Slug,
		Name:          req.Name,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		StockQuantity: req.StockQuantity,
		TrackStock:    req.TrackStock,
		Variants:      req.Variants,
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondMappedError(c, err, handlershared.ProductErrorRules, response.CodeInternal, "product create failed")
		return
	}
	response.Success(c, product)
}
