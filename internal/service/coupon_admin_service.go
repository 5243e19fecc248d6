package service

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	repo           repository.CouponRepository
	userCouponRepo repository.UserCouponRepository
	userRepo       repository.UserRepository
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(repo repository.CouponRepository, userCouponRepo repository.UserCouponRepository, userRepo repository.UserRepository) *CouponAdminService {
	return &CouponAdminService{repo: repo, userCouponRepo: userCouponRepo, userRepo: userRepo}
}

// CreateCouponInput 创建优惠券输入
type CreateCouponInput struct {
	Code               string
	Type               string
	Value              models.Money
	MinimumOrderAmount models.Money
	MaxDiscount        models.Money
	TotalUsageLimit    int
	PerUserUsageLimit  int
	ValidFrom          *time.Time
	ValidUntil         *time.Time
	IsActive           *bool
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input CreateCouponInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" || len(code) > 64 {
		return nil, ErrInvalidPayload
	}
	couponType := strings.ToLower(strings.TrimSpace(input.Type))
	if couponType != constants.CouponTypeFixed && couponType != constants.CouponTypePercentage {
		return nil, ErrInvalidPayload
	}
	if input.Value.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPayload
	}
	if couponType == constants.CouponTypePercentage && input.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrInvalidPayload
	}
	if input.MinimumOrderAmount.IsNegative() || input.MaxDiscount.IsNegative() {
		return nil, ErrInvalidPayload
	}
	if input.TotalUsageLimit < 0 || input.PerUserUsageLimit < 0 {
		return nil, ErrInvalidPayload
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return nil, ErrInvalidPayload
	}

	exist, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrInvalidPayload
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	coupon := &models.Coupon{
		Code:               code,
		Type:               couponType,
		Value:              models.NewMoneyFromDecimal(input.Value.Decimal),
		MinimumOrderAmount: models.NewMoneyFromDecimal(input.MinimumOrderAmount.Decimal),
		MaxDiscount:        models.NewMoneyFromDecimal(input.MaxDiscount.Decimal),
		TotalUsageLimit:    input.TotalUsageLimit,
		PerUserUsageLimit:  input.PerUserUsageLimit,
		ValidFrom:          input.ValidFrom,
		ValidUntil:         input.ValidUntil,
		IsActive:           isActive,
	}
	if err := s.repo.Create(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// IssueToUser 给用户发放一张券实例
func (s *CouponAdminService) IssueToUser(couponID, userID uint) (*models.UserCoupon, error) {
	coupon, err := s.repo.GetByID(couponID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidPayload
	}
	userCoupon := &models.UserCoupon{UserID: user.ID, CouponID: coupon.ID}
	if err := s.userCouponRepo.Create(userCoupon); err != nil {
		return nil, err
	}
	userCoupon.Coupon = coupon
	return userCoupon, nil
}
