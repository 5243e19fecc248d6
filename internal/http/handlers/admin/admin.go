package admin

import (
	"time"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// adminSummary 登录与 /me 返回的管理员信息
type adminSummary struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	Roles       []string   `json:"roles,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func summarizeAdmin(admin *models.Admin, roles []string) adminSummary {
	return adminSummary{
		ID:          admin.ID,
		Username:    admin.Username,
		Role:        admin.Role,
		Roles:       roles,
		LastLoginAt: admin.LastLoginAt,
	}
}

// AdminLogin 校验账号密码，签发 JWT 并同步 casbin 角色
func (h *Handler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "username and password are required", nil)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		respondMappedError(c, err, handlershared.AuthErrorRules, response.CodeInternal, "login failed")
		return
	}
	if err := h.AuthzService.SyncAdminRole(admin.ID, admin.Role); err != nil {
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}
	requestLog(c).Infow("admin_login_succeeded", "admin_id", admin.ID, "role", admin.Role)

	response.Success(c, gin.H{
		"token":      token,
		"user":       summarizeAdmin(admin, nil),
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// GetAdminProfile 当前管理员及其 casbin 角色
func (h *Handler) GetAdminProfile(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}
	response.Success(c, summarizeAdmin(admin, roles))
}
