package shared

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入 gin.Context 的键
const (
	AdminIDKey   = "admin_id"
	AdminRoleKey = "admin_role"
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

// GetContextUint 读取鉴权中间件写入的 ID，缺失时输出 401
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	if id := c.GetUint(key); id > 0 {
		return id, true
	}
	RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
	return 0, false
}

// OptionalContextUint 游客请求返回 nil，不输出响应
func OptionalContextUint(c *gin.Context, key string) *uint {
	if id := c.GetUint(key); id > 0 {
		return &id
	}
	return nil
}

// ParseUintParam 解析路径参数中的正整数 ID
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	id, ok := ParseUint(c.Param(name))
	if !ok {
		RespondError(c, response.CodeBadRequest, name+" invalid", nil)
		return 0, false
	}
	return id, true
}
