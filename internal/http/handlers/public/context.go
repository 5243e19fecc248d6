package public

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, handlershared.UserIDKey)
}

// optionalUserID 游客返回 nil
func optionalUserID(c *gin.Context) *uint {
	return handlershared.OptionalContextUint(c, handlershared.UserIDKey)
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}
