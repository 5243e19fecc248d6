package public

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// VariantRequest 变体标识（任一字段即可）
type VariantRequest struct {
	ID             string `json:"id"`
	SKU            string `json:"sku"`
	AttributeName  string `json:"attributeName"`
	AttributeValue string `json:"attributeValue"`
}

func (v *VariantRequest) toRef() *models.VariantRef {
	if v == nil {
		return nil
	}
	ref := &models.VariantRef{
		ID:             strings.TrimSpace(v.ID),
		SKU:            strings.TrimSpace(v.SKU),
		AttributeName:  strings.TrimSpace(v.AttributeName),
		AttributeValue: strings.TrimSpace(v.AttributeValue),
	}
	if ref.ID == "" && ref.SKU == "" && ref.AttributeName == "" && ref.AttributeValue == "" {
		return nil
	}
	return ref
}

// OrderItemRequest 订单项请求；unitPrice 仅作参考，以商品目录价格为准
type OrderItemRequest struct {
	ProductID uint            `json:"productId"`
	Variant   *VariantRequest `json:"variant"`
	Quantity  int             `json:"quantity"`
	UnitPrice *models.Money   `json:"unitPrice"`
}

// ShippingAddressRequest 收货地址
type ShippingAddressRequest struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// AppliedCouponRequest 使用的优惠券
type AppliedCouponRequest struct {
	Code         string `json:"code"`
	UserCouponID *uint  `json:"userCouponId"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items"`
	Subtotal        *models.Money          `json:"subtotal"`
	Shipping        *models.Money          `json:"shipping"`
	Total           *models.Money          `json:"total"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
	AppliedCoupon   *AppliedCouponRequest  `json:"appliedCoupon"`
	StoreCreditUsed *models.Money          `json:"storeCreditUsed"`
	CustomerEmail   string                 `json:"customerEmail"`
}

// CreateOrderResponse 创建订单响应
type CreateOrderResponse struct {
	ID              uint         `json:"id"`
	InvoiceNumber   int64        `json:"invoiceNumber"`
	OrderNo         string       `json:"orderNo"`
	Subtotal        models.Money `json:"subtotal"`
	Shipping        models.Money `json:"shipping"`
	Discount        models.Money `json:"discount"`
	StoreCreditUsed models.Money `json:"storeCreditUsed"`
	Total           models.Money `json:"total"`
	Status          string       `json:"status"`
}

func (r CreateOrderRequest) toInput(userID *uint) service.CreateOrderInput {
	items := make([]service.CreateOrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Variant:   item.Variant.toRef(),
			Quantity:  item.Quantity,
		})
	}
	var coupon *service.AppliedCouponInput
	if r.AppliedCoupon != nil {
		coupon = &service.AppliedCouponInput{
			Code:         r.AppliedCoupon.Code,
			UserCouponID: r.AppliedCoupon.UserCouponID,
		}
	}
	addr := r.ShippingAddress
	return service.CreateOrderInput{
		UserID:        userID,
		CustomerEmail: strings.TrimSpace(r.CustomerEmail),
		Items:         items,
		Subtotal:      r.Subtotal,
		Shipping:      r.Shipping,
		Total:         r.Total,
		ShippingAddress: service.ShippingAddressInput{
			Name:       addr.Name,
			Line1:      addr.Line1,
			Line2:      addr.Line2,
			City:       addr.City,
			Region:     addr.Region,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
			Phone:      addr.Phone,
		},
		AppliedCoupon:   coupon,
		StoreCreditUsed: r.StoreCreditUsed,
	}
}

// CreateOrder 创建订单（游客或顾客）
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondErrorWithCode(c, response.CodeBadRequest, response.ErrorCodeInvalidPayload, "invalid checkout payload", nil)
		return
	}

	order, err := h.OrderService.CreateOrder(c.Request.Context(), req.toInput(optionalUserID(c)))
	if err != nil {
		requestLog(c).Infow("order_checkout_rejected", "error", err)
		handlershared.RespondMappedError(c, err, handlershared.CheckoutErrorRules, response.CodeInternal, "checkout failed, please retry")
		return
	}

	response.Success(c, CreateOrderResponse{
		ID:              order.ID,
		InvoiceNumber:   order.InvoiceNumber,
		OrderNo:         order.OrderNo,
		Subtotal:        order.Subtotal,
		Shipping:        order.Shipping,
		Discount:        order.DiscountAmount,
		StoreCreditUsed: order.StoreCreditUsed,
		Total:           order.Total,
		Status:          order.Status,
	})
}

// GetOrder 顾客查看自己的订单
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderForUser(orderID, uid)
	if err != nil {
		handlershared.RespondMappedError(c, err, handlershared.OrderReadErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	response.Success(c, order)
}
