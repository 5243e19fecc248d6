package public

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint            `json:"productId" binding:"required"`
	Variant   *VariantRequest `json:"variant"`
	Quantity  int             `json:"quantity"`
}

func (r CartItemRequest) toInput() service.CartItemInput {
	return service.CartItemInput{
		ProductID: r.ProductID,
		Variant:   r.Variant.toRef(),
		Quantity:  r.Quantity,
	}
}

func (h *Handler) respondCartError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.CartErrorRules, response.CodeInternal, "cart update failed")
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.Get(c.Request.Context(), uid)
	if err != nil {
		h.respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// AddCartItem 添加购物车项（数量按库存封顶）
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid cart item", nil)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	view, err := h.CartService.AddItem(c.Request.Context(), uid, req.toInput())
	if err != nil {
		h.respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 修改购物车项数量，数量为 0 时移除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid cart item", nil)
		return
	}
	view, err := h.CartService.UpdateItem(c.Request.Context(), uid, req.toInput())
	if err != nil {
		h.respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid cart item", nil)
		return
	}
	view, err := h.CartService.RemoveItem(c.Request.Context(), uid, req.ProductID, req.Variant.toRef())
	if err != nil {
		h.respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(c.Request.Context(), uid); err != nil {
		h.respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
