package admin

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminOrderDetail 管理端订单详情返回
type AdminOrderDetail struct {
	models.Order
	UserEmail     string `json:"userEmail,omitempty"`
	LoyaltyPoints int64  `json:"userLoyaltyPoints,omitempty"`
}

// TrackingRequest 物流单号
type TrackingRequest struct {
	Carrier string `json:"carrier"`
	Number  string `json:"number"`
}

func (r *TrackingRequest) toInput() *service.TrackingInput {
	if r == nil {
		return nil
	}
	return &service.TrackingInput{Carrier: r.Carrier, Number: r.Number}
}

// AdminUpdateOrderRequest 管理端更新订单请求
type AdminUpdateOrderRequest struct {
	Status          *string          `json:"status"`
	TrackingNumber  *string          `json:"trackingNumber"`
	TrackingCarrier *string          `json:"trackingCarrier"`
	AddTracking     *TrackingRequest `json:"addTracking"`
	DeleteTracking  *TrackingRequest `json:"deleteTracking"`
}

// AdminUpdateOrderResponse 管理端更新订单响应
type AdminUpdateOrderResponse struct {
	Status               string              `json:"status"`
	TrackingNumber       string              `json:"trackingNumber"`
	TrackingCarrier      string              `json:"trackingCarrier"`
	Tracking             models.TrackingList `json:"tracking"`
	LoyaltyPointsAwarded bool                `json:"loyaltyPointsAwarded"`
	LoyaltyPointsEarned  int64               `json:"loyaltyPointsEarned"`
}

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)

	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "created_from must be RFC3339", nil)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "created_to must be RFC3339", nil)
		return
	}
	var userID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		userID, _ = handlershared.ParseUint(raw)
	}

	orders, total, err := h.OrderService.ListOrdersAdmin(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        userID,
		Status:        strings.TrimSpace(c.Query("status")),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
		CustomerEmail: strings.TrimSpace(c.Query("customer_email")),
		Country:       strings.TrimSpace(c.Query("country")),
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
	})
	if err != nil {
		respondMappedError(c, err, handlershared.OrderReadErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// AdminGetOrder 管理端订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderAdmin(orderID)
	if err != nil {
		respondMappedError(c, err, handlershared.OrderReadErrorRules, response.CodeInternal, "order fetch failed")
		return
	}

	detail := AdminOrderDetail{Order: *order}
	if order.UserID != nil {
		user, err := h.UserRepo.GetByID(*order.UserID)
		if err != nil {
			respondError(c, response.CodeInternal, "order fetch failed", err)
			return
		}
		if user != nil {
			detail.UserEmail = user.Email
			detail.LoyaltyPoints = user.LoyaltyPoints
		}
	}
	response.Success(c, detail)
}

// AdminUpdateOrder 管理端更新订单状态与物流信息
func (h *Handler) AdminUpdateOrder(c *gin.Context) {
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req AdminUpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", nil)
		return
	}

	order, err := h.OrderService.UpdateOrder(c.Request.Context(), orderID, service.UpdateOrderInput{
		Status:          req.Status,
		TrackingNumber:  req.TrackingNumber,
		TrackingCarrier: req.TrackingCarrier,
		AddTracking:     req.AddTracking.toInput(),
		DeleteTracking:  req.DeleteTracking.toInput(),
	})
	if err != nil {
		respondMappedError(c, err, handlershared.OrderUpdateErrorRules, response.CodeInternal, "order update failed")
		return
	}
	if adminID, ok := c.Get(handlershared.AdminIDKey); ok {
		requestLog(c).Infow("admin_order_updated", "admin_id", adminID, "order_id", order.ID, "status", order.Status)
	}

	tracking := order.Tracking
	if tracking == nil {
		tracking = models.TrackingList{}
	}
	response.Success(c, AdminUpdateOrderResponse{
		Status:               order.Status,
		TrackingNumber:       order.TrackingNumber,
		TrackingCarrier:      order.TrackingCarrier,
		Tracking:             tracking,
		LoyaltyPointsAwarded: order.LoyaltyPointsAwarded,
		LoyaltyPointsEarned:  order.LoyaltyPointsEarned,
	})
}
