package shared

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString(response.RequestIDKey); id != "" {
		return logger.S().With("request_id", id)
	}
	if c.Request != nil {
		return logger.Ctx(c.Request.Context())
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	respondAppError(c, response.WrapError(code, msg, err))
}

// RespondErrorWithCode 返回指定业务错误码的错误响应。
func RespondErrorWithCode(c *gin.Context, code int, errorCode, msg string, err error) {
	respondAppError(c, response.WrapError(code, msg, err).WithErrorCode(errorCode))
}

func respondAppError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"error_code", appErr.ErrorCode,
			"message", appErr.Message,
			"error", appErr.Err,
		)
	}
	response.AppErrorResponse(c, appErr)
}

// ErrorRule 定义业务错误到接口错误响应的映射关系。
type ErrorRule struct {
	Target    error
	Code      int
	ErrorCode string
	Message   string
}

// RespondMappedError 按规则输出业务错误；未命中时记录原始错误并返回兜底响应。
func RespondMappedError(c *gin.Context, err error, rules []ErrorRule, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondErrorWithCode(c, rule.Code, rule.ErrorCode, rule.Message, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackMsg, err)
}

// ConcatErrorRules 合并多组映射规则，靠前的优先。
func ConcatErrorRules(groups ...[]ErrorRule) []ErrorRule {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]ErrorRule, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
