package admin

import (
	"strings"
	"time"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCouponRequest 创建优惠券请求
type CreateCouponRequest struct {
	Code               string       `json:"code" binding:"required"`
	Type               string       `json:"type" binding:"required"`
	Value              models.Money `json:"value"`
	MinimumOrderAmount models.Money `json:"minimumOrderAmount"`
	MaxDiscount        models.Money `json:"maxDiscount"`
	TotalUsageLimit    int          `json:"totalUsageLimit"`
	PerUserUsageLimit  int          `json:"perUserUsageLimit"`
	ValidFrom          string       `json:"validFrom"`
	ValidUntil         string       `json:"validUntil"`
	IsActive           *bool        `json:"isActive"`
}

// IssueCouponRequest 发券请求
type IssueCouponRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid coupon payload", nil)
		return
	}

	validFrom, err := parseTimeNullable(req.ValidFrom)
	if err != nil {
		respondError(c, response.CodeBadRequest, "validFrom must be RFC3339", nil)
		return
	}
	validUntil, err := parseTimeNullable(req.ValidUntil)
	if err != nil {
		respondError(c, response.CodeBadRequest, "validUntil must be RFC3339", nil)
		return
	}

	coupon, err := h.CouponAdminService.Create(service.CreateCouponInput{
		Code:               req.Code,
		Type:               req.Type,
		Value:              req.Value,
		MinimumOrderAmount: req.MinimumOrderAmount,
		MaxDiscount:        req.MaxDiscount,
		TotalUsageLimit:    req.TotalUsageLimit,
		PerUserUsageLimit:  req.PerUserUsageLimit,
		ValidFrom:          validFrom,
		ValidUntil:         validUntil,
		IsActive:           req.IsActive,
	})
	if err != nil {
		respondMappedError(c, err, handlershared.CouponAdminErrorRules, response.CodeInternal, "coupon create failed")
		return
	}
	response.Success(c, coupon)
}

// IssueCoupon 向指定用户发放券实例
func (h *Handler) IssueCoupon(c *gin.Context) {
	couponID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "userId is required", nil)
		return
	}
	userCoupon, err := h.CouponAdminService.IssueToUser(couponID, req.UserID)
	if err != nil {
		respondMappedError(c, err, handlershared.CouponAdminErrorRules, response.CodeInternal, "coupon issue failed")
		return
	}
	response.Success(c, userCoupon)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
