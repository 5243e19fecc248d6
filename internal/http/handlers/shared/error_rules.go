package shared

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"
)

func invalid(target error, msg string) ErrorRule {
	return ErrorRule{Target: target, Code: response.CodeBadRequest, ErrorCode: response.ErrorCodeInvalidPayload, Message: msg}
}

func notFound(target error, msg string) ErrorRule {
	return ErrorRule{Target: target, Code: response.CodeNotFound, ErrorCode: response.ErrorCodeNotFound, Message: msg}
}

// AuthErrorRules 身份相关
var AuthErrorRules = []ErrorRule{
	{Target: service.ErrUnauthorized, Code: response.CodeUnauthorized, ErrorCode: response.ErrorCodeUnauthorized, Message: "unauthorized"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, ErrorCode: response.ErrorCodeUnauthorized, Message: "invalid username or password"},
}

// CheckoutErrorRules 下单拒绝原因；这些错误发生在订单落库之前
var CheckoutErrorRules = ConcatErrorRules(AuthErrorRules, []ErrorRule{
	invalid(service.ErrInvalidPayload, "invalid checkout payload"),
	invalid(service.ErrInvalidOrderItem, "invalid order item"),
	invalid(service.ErrProductNotFound, "product not available"),
	invalid(service.ErrCouponNotFound, "coupon not found"),
	invalid(service.ErrCouponInactive, "coupon inactive"),
	invalid(service.ErrCouponNotStarted, "coupon not started"),
	invalid(service.ErrCouponExpired, "coupon expired"),
	invalid(service.ErrCouponMinAmount, "order amount below coupon minimum"),
	invalid(service.ErrUserCouponUnavailable, "coupon unavailable"),
	invalid(service.ErrStoreCreditInsufficient, "store credit insufficient"),
	invalid(service.ErrStoreCreditGuest, "store credit requires an account"),
	{Target: service.ErrCouponPerUserLimit, Code: response.CodeBadRequest, ErrorCode: response.ErrorCodeCouponLimitReached, Message: "coupon limit reached"},
	{Target: service.ErrCouponUsageLimit, Code: response.CodeBadRequest, ErrorCode: response.ErrorCodeCouponLimitReached, Message: "coupon limit reached"},
})

// OrderReadErrorRules 订单查询
var OrderReadErrorRules = []ErrorRule{
	notFound(service.ErrOrderNotFound, "order not found"),
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, ErrorCode: response.ErrorCodeInvalidStatus, Message: "invalid order status"},
}

// OrderUpdateErrorRules 管理员更新订单
var OrderUpdateErrorRules = ConcatErrorRules(OrderReadErrorRules, []ErrorRule{
	invalid(service.ErrTrackingInvalid, "tracking carrier and number are required"),
	invalid(service.ErrInvalidPayload, "invalid payload"),
})

// CartErrorRules 购物车
var CartErrorRules = ConcatErrorRules(AuthErrorRules, []ErrorRule{
	invalid(service.ErrCartItemInvalid, "invalid cart item"),
	notFound(service.ErrProductNotFound, "product not found"),
})

// ProductErrorRules 商品
var ProductErrorRules = []ErrorRule{
	notFound(service.ErrProductNotFound, "product not found"),
	invalid(service.ErrInvalidPayload, "invalid product payload"),
}

// CouponAdminErrorRules 优惠券管理
var CouponAdminErrorRules = []ErrorRule{
	notFound(service.ErrCouponNotFound, "coupon not found"),
	invalid(service.ErrInvalidPayload, "invalid coupon payload"),
}

// StoreCreditAdminErrorRules 余额调整
var StoreCreditAdminErrorRules = []ErrorRule{
	invalid(service.ErrInvalidPayload, "invalid store credit adjustment"),
	invalid(service.ErrStoreCreditInsufficient, "store credit balance cannot go negative"),
}
