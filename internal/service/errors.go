package service

import "errors"

// 请求与商品
var (
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrInvalidOrderItem = errors.New("invalid order item")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemInvalid  = errors.New("invalid cart item")
)

// 优惠券
var (
	ErrCouponNotFound        = errors.New("coupon not found")
	ErrCouponInactive        = errors.New("coupon inactive")
	ErrCouponNotStarted      = errors.New("coupon not started")
	ErrCouponExpired         = errors.New("coupon expired")
	ErrCouponMinAmount       = errors.New("coupon minimum amount not reached")
	ErrCouponPerUserLimit    = errors.New("coupon per-user limit reached")
	ErrCouponUsageLimit      = errors.New("coupon usage limit reached")
	ErrUserCouponUnavailable = errors.New("user coupon unavailable")
)

// 店铺余额
var (
	ErrStoreCreditInsufficient = errors.New("store credit insufficient")
	ErrStoreCreditGuest        = errors.New("store credit not available for guest")
	ErrStoreCreditUpdateFailed = errors.New("store credit update failed")
)

// 订单
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderStatusInvalid = errors.New("order status invalid")
	ErrOrderCreateFailed  = errors.New("order create failed")
	ErrOrderUpdateFailed  = errors.New("order update failed")
	ErrOrderFetchFailed   = errors.New("order fetch failed")
	ErrTrackingInvalid    = errors.New("tracking entry invalid")
)

// 认证与邮件
var (
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrUnauthorized              = errors.New("unauthorized")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrInvalidEmail              = errors.New("invalid email")
)
