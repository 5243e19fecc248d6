package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/metrics"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponService 优惠券校验与占用
type CouponService struct {
	couponRepo     repository.CouponRepository
	usageRepo      repository.CouponUsageRepository
	userCouponRepo repository.UserCouponRepository
	orderRepo      repository.OrderRepository
	metrics        *metrics.Metrics
	now            func() time.Time
}

// NewCouponService 创建优惠券服务
func NewCouponService(
	couponRepo repository.CouponRepository,
	usageRepo repository.CouponUsageRepository,
	userCouponRepo repository.UserCouponRepository,
	orderRepo repository.OrderRepository,
	m *metrics.Metrics,
) *CouponService {
	return &CouponService{
		couponRepo:     couponRepo,
		usageRepo:      usageRepo,
		userCouponRepo: userCouponRepo,
		orderRepo:      orderRepo,
		metrics:        m,
		now:            time.Now,
	}
}

// CouponRequest 下单时携带的优惠券信息
type CouponRequest struct {
	Code         string
	UserID       *uint
	UserCouponID *uint
}

// CouponQuote 校验通过的优惠券及折扣
type CouponQuote struct {
	Coupon     *models.Coupon
	UserCoupon *models.UserCoupon
	Discount   models.Money
}

// Snapshot 生成写入订单的优惠券快照
func (q *CouponQuote) Snapshot() *models.CouponSnapshot {
	if q == nil || q.Coupon == nil {
		return nil
	}
	snapshot := &models.CouponSnapshot{
		CouponID: q.Coupon.ID,
		Code:     q.Coupon.Code,
		Type:     q.Coupon.Type,
		Amount:   q.Coupon.Value,
	}
	if q.UserCoupon != nil {
		id := q.UserCoupon.ID
		snapshot.UserCouponID = &id
	}
	return snapshot
}

// Validate 校验优惠券并计算折扣；tx 非空时在事务内读取
func (s *CouponService) Validate(tx *gorm.DB, req CouponRequest, subtotal decimal.Decimal) (*CouponQuote, error) {
	quote := &CouponQuote{}
	code := strings.TrimSpace(req.Code)

	if req.UserCouponID != nil && *req.UserCouponID != 0 {
		userCoupon, err := s.loadUserCoupon(tx, req)
		if err != nil {
			return nil, err
		}
		if code != "" && !strings.EqualFold(code, userCoupon.Coupon.Code) {
			s.metrics.CouponRejected("user_coupon")
			return nil, ErrUserCouponUnavailable
		}
		quote.UserCoupon = userCoupon
		quote.Coupon = userCoupon.Coupon
	} else {
		if code == "" {
			s.metrics.CouponRejected("not_found")
			return nil, ErrCouponNotFound
		}
		coupon, err := s.couponRepo.WithTx(tx).GetByCode(code)
		if err != nil {
			return nil, fmt.Errorf("load coupon: %w", err)
		}
		if coupon == nil {
			s.metrics.CouponRejected("not_found")
			return nil, ErrCouponNotFound
		}
		quote.Coupon = coupon
	}

	if err := s.checkRules(tx, quote.Coupon, req.UserID, subtotal); err != nil {
		return nil, err
	}
	quote.Discount = CalculateDiscount(quote.Coupon, subtotal)
	return quote, nil
}

// Reserve 在订单事务内占用优惠券：原子递增使用次数、写入使用记录、核销用户券
func (s *CouponService) Reserve(tx *gorm.DB, quote *CouponQuote, order *models.Order) error {
	if quote == nil || quote.Coupon == nil || order == nil {
		return nil
	}
	ok, err := s.couponRepo.WithTx(tx).IncrementUsageIfAvailable(quote.Coupon.ID)
	if err != nil {
		return fmt.Errorf("increment coupon usage: %w", err)
	}
	if !ok {
		s.metrics.CouponRejected("usage_limit")
		return ErrCouponUsageLimit
	}

	usage := &models.CouponUsage{
		CouponID:       quote.Coupon.ID,
		UserID:         order.UserID,
		OrderID:        order.ID,
		DiscountAmount: quote.Discount,
		CreatedAt:      s.now(),
	}
	if err := s.usageRepo.WithTx(tx).Create(usage); err != nil {
		return fmt.Errorf("create coupon usage: %w", err)
	}

	if quote.UserCoupon != nil {
		consumed, err := s.userCouponRepo.WithTx(tx).ConsumeIfUnused(quote.UserCoupon.ID, quote.UserCoupon.UserID, order.ID, s.now())
		if err != nil {
			return fmt.Errorf("consume user coupon: %w", err)
		}
		if !consumed {
			s.metrics.CouponRejected("user_coupon")
			return ErrUserCouponUnavailable
		}
	}
	return nil
}

func (s *CouponService) loadUserCoupon(tx *gorm.DB, req CouponRequest) (*models.UserCoupon, error) {
	if req.UserID == nil || *req.UserID == 0 {
		s.metrics.CouponRejected("user_coupon")
		return nil, ErrUserCouponUnavailable
	}
	userCoupon, err := s.userCouponRepo.WithTx(tx).GetByIDAndUser(*req.UserCouponID, *req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user coupon: %w", err)
	}
	if userCoupon == nil || userCoupon.Used || userCoupon.Coupon == nil {
		s.metrics.CouponRejected("user_coupon")
		return nil, ErrUserCouponUnavailable
	}
	return userCoupon, nil
}

func (s *CouponService) checkRules(tx *gorm.DB, coupon *models.Coupon, userID *uint, subtotal decimal.Decimal) error {
	if !coupon.IsActive {
		s.metrics.CouponRejected("inactive")
		return ErrCouponInactive
	}
	now := s.now()
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		s.metrics.CouponRejected("not_started")
		return ErrCouponNotStarted
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		s.metrics.CouponRejected("expired")
		return ErrCouponExpired
	}
	if subtotal.LessThan(coupon.MinimumOrderAmount.Decimal) {
		s.metrics.CouponRejected("min_amount")
		return ErrCouponMinAmount
	}
	if coupon.TotalUsageLimit > 0 && coupon.UsageCount >= coupon.TotalUsageLimit {
		s.metrics.CouponRejected("usage_limit")
		return ErrCouponUsageLimit
	}
	if coupon.PerUserUsageLimit > 0 && userID != nil && *userID != 0 {
		count, err := s.orderRepo.WithTx(tx).CountActiveByUserCoupon(*userID, coupon.Code)
		if err != nil {
			return fmt.Errorf("count coupon orders: %w", err)
		}
		if count >= int64(coupon.PerUserUsageLimit) {
			s.metrics.CouponRejected("per_user_limit")
			return ErrCouponPerUserLimit
		}
	}
	return nil
}

// CalculateDiscount 计算折扣：百分比券四舍五入到分并受封顶限制，任何折扣不超过小计
func CalculateDiscount(coupon *models.Coupon, subtotal decimal.Decimal) models.Money {
	if coupon == nil || !subtotal.IsPositive() || !coupon.Value.Decimal.IsPositive() {
		return models.NewMoneyFromInt(0)
	}

	var discount decimal.Decimal
	switch strings.ToLower(strings.TrimSpace(coupon.Type)) {
	case constants.CouponTypePercentage:
		discount = subtotal.Mul(coupon.Value.Decimal).Div(decimal.NewFromInt(100)).Round(2)
		if coupon.MaxDiscount.Decimal.IsPositive() && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
			discount = coupon.MaxDiscount.Decimal
		}
	case constants.CouponTypeFixed:
		discount = coupon.Value.Decimal
	default:
		return models.NewMoneyFromInt(0)
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return models.NewMoneyFromDecimal(discount).ClampZero()
}
