package admin

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdjustStoreCreditRequest 管理端余额调整请求
type AdjustStoreCreditRequest struct {
	UserID    uint   `json:"userId" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Operation string `json:"operation"` // add/subtract
	Remark    string `json:"remark"`
}

// AdjustStoreCredit 调整用户店铺余额
func (h *Handler) AdjustStoreCredit(c *gin.Context) {
	var req AdjustStoreCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid store credit adjustment", nil)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		respondError(c, response.CodeBadRequest, "amount must be a positive number", nil)
		return
	}
	switch strings.ToLower(strings.TrimSpace(req.Operation)) {
	case "", "add":
	case "subtract":
		amount = amount.Neg()
	default:
		respondError(c, response.CodeBadRequest, "operation must be add or subtract", nil)
		return
	}

	user, err := h.UserRepo.GetByID(req.UserID)
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "user not found", nil)
		return
	}

	account, txn, err := h.StoreCreditService.AdminAdjust(service.StoreCreditAdjustInput{
		UserID: user.ID,
		Amount: amount,
		Remark: req.Remark,
	})
	if err != nil {
		respondMappedError(c, err, handlershared.StoreCreditAdminErrorRules, response.CodeInternal, "store credit update failed")
		return
	}
	if adminID, ok := c.Get(handlershared.AdminIDKey); ok {
		requestLog(c).Infow("admin_store_credit_adjusted", "admin_id", adminID, "user_id", user.ID, "amount", amount.StringFixed(2))
	}
	response.Success(c, gin.H{
		"account":     account,
		"transaction": txn,
	})
}

// GetUserStoreCredit 查看用户余额与流水
func (h *Handler) GetUserStoreCredit(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "user_id")
	if !ok {
		return
	}
	page, pageSize := handlershared.PaginationFromQuery(c)
	balance, err := h.StoreCreditService.GetBalance(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "store credit fetch failed", err)
		return
	}
	transactions, total, err := h.StoreCreditService.ListTransactions(userID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "store credit fetch failed", err)
		return
	}
	response.SuccessWithPage(c, gin.H{
		"user_id":      userID,
		"balance":      balance,
		"transactions": transactions,
	}, handlershared.BuildPagination(page, pageSize, total))
}
