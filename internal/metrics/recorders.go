package metrics

import (
	"strconv"
	"time"
)

// ObserveRequest 记录一次 HTTP 请求
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RequestStarted 进行中请求 +1
func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.requestsInFlight.Inc()
}

// RequestFinished 进行中请求 -1
func (m *Metrics) RequestFinished() {
	if m == nil {
		return
	}
	m.requestsInFlight.Dec()
}

// OrderCreated 记录订单创建
func (m *Metrics) OrderCreated(currency string, guest bool, total float64) {
	if m == nil {
		return
	}
	customer := "member"
	if guest {
		customer = "guest"
	}
	m.ordersCreated.WithLabelValues(currency, customer).Inc()
	m.orderValue.WithLabelValues(currency).Observe(total)
}

// CouponRejected 记录优惠券拒绝
func (m *Metrics) CouponRejected(reason string) {
	if m == nil {
		return
	}
	m.couponRejections.WithLabelValues(reason).Inc()
}

// StatusTransition 记录状态流转
func (m *Metrics) StatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// LoyaltyAwarded 记录积分发放
func (m *Metrics) LoyaltyAwarded(points int64) {
	if m == nil || points <= 0 {
		return
	}
	m.loyaltyPointsAwarded.Add(float64(points))
}

// InventoryAdjusted 记录库存调整
func (m *Metrics) InventoryAdjusted(direction, outcome string) {
	if m == nil {
		return
	}
	m.inventoryAdjustments.WithLabelValues(direction, outcome).Inc()
}

// PostCommitFailed 记录提交后任务失败
func (m *Metrics) PostCommitFailed(task string) {
	if m == nil {
		return
	}
	m.postCommitFailures.WithLabelValues(task).Inc()
}

// EmailSent 记录通知邮件结果
func (m *Metrics) EmailSent(template string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.emailsSent.WithLabelValues(template, result).Inc()
}

// CartClamped 记录购物车数量被截断
func (m *Metrics) CartClamped() {
	if m == nil {
		return
	}
	m.cartClamps.Inc()
}
