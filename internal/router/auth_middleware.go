package router

import (
	"strings"

	"github.com/storefront-next/internal/authz"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// bearerToken 解析 "Bearer <token>"，scheme 区分大小写
func bearerToken(c *gin.Context) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	token = strings.TrimSpace(token)
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.AbortWithError(c, response.CodeUnauthorized, msg)
}

// JWTAuthMiddleware 后台管理员鉴权，令牌对应的账号必须仍然存在
func JWTAuthMiddleware(authService *service.AuthService, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil || adminRepo == nil {
			abortUnauthorized(c, "authentication unavailable")
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}
		claims, err := authService.ParseJWT(token)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		admin, err := adminRepo.GetByID(claims.AdminID)
		if err != nil || admin == nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		c.Set(handlershared.AdminIDKey, admin.ID)
		c.Set(handlershared.AdminRoleKey, admin.Role)
		c.Next()
	}
}

// AdminRBACMiddleware 以路由模板作为资源做 casbin 判定
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetUint(handlershared.AdminIDKey)
		if authzService == nil || adminID == 0 {
			if authzService == nil {
				logger.Errorw("admin_rbac_service_unavailable")
			}
			abortUnauthorized(c, "unauthorized")
			return
		}

		resource := c.FullPath()
		if resource == "" {
			resource = c.Request.URL.Path
		}
		fields := []interface{}{
			"admin_id", adminID,
			"method", c.Request.Method,
			"resource", authz.NormalizeObject(resource),
		}

		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		switch {
		case err != nil:
			logger.Errorw("admin_rbac_enforce_failed", append(fields, "error", err)...)
			abortUnauthorized(c, "unauthorized")
		case !allowed:
			logger.Warnw("admin_rbac_permission_denied", fields...)
			response.AbortWithError(c, response.CodeForbidden, "forbidden")
		default:
			c.Next()
		}
	}
}

// UserJWTAuthMiddleware 顾客鉴权；required 为 false 时无 Authorization 头按游客放行
func UserJWTAuthMiddleware(userAuth *service.UserAuthService, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !required && strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			c.Next()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}
		if userAuth == nil {
			abortUnauthorized(c, "authentication unavailable")
			return
		}
		claims, err := userAuth.ParseUserJWT(token)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		user, err := userAuth.ResolveUser(claims)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		c.Set(handlershared.UserIDKey, user.ID)
		c.Set(handlershared.UserEmailKey, user.Email)
		c.Next()
	}
}
