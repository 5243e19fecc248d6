package response

const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

// 业务错误码（data.error_code）
const (
	ErrorCodeInvalidPayload     = "InvalidPayload"
	ErrorCodeCouponLimitReached = "CouponLimitReached"
	ErrorCodeNotFound           = "NotFound"
	ErrorCodeInvalidStatus      = "InvalidStatus"
	ErrorCodeUnauthorized       = "Unauthorized"
	ErrorCodeForbidden          = "Forbidden"
	ErrorCodeTooManyRequests    = "TooManyRequests"
	ErrorCodeInternal           = "Internal"
)

// DefaultErrorCode 按状态码推导默认业务错误码
func DefaultErrorCode(statusCode int) string {
	switch statusCode {
	case CodeBadRequest:
		return ErrorCodeInvalidPayload
	case CodeUnauthorized:
		return ErrorCodeUnauthorized
	case CodeForbidden:
		return ErrorCodeForbidden
	case CodeNotFound:
		return ErrorCodeNotFound
	case CodeTooManyRequests:
		return ErrorCodeTooManyRequests
	default:
		return ErrorCodeInternal
	}
}
