// Package metrics 订单生命周期与 HTTP 的 Prometheus 指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合；nil 接收者上的记录方法均为空操作
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge

	ordersCreated        *prometheus.CounterVec
	orderValue           *prometheus.HistogramVec
	couponRejections     *prometheus.CounterVec
	statusTransitions    *prometheus.CounterVec
	loyaltyPointsAwarded prometheus.Counter
	inventoryAdjustments *prometheus.CounterVec
	postCommitFailures   *prometheus.CounterVec
	emailsSent           *prometheus.CounterVec
	cartClamps           prometheus.Counter
}

// New 创建指标集合，使用独立 registry
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "storefront"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		ordersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "created_total",
				Help:      "Total orders created",
			},
			[]string{"currency", "customer"},
		),
		orderValue: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "value",
				Help:      "Order total at creation",
				Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
			},
			[]string{"currency"},
		),
		couponRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "coupons",
				Name:      "rejections_total",
				Help:      "Coupon applications rejected at checkout",
			},
			[]string{"reason"},
		),
		statusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "status_transitions_total",
				Help:      "Order status transitions",
			},
			[]string{"from", "to"},
		),
		loyaltyPointsAwarded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "loyalty",
				Name:      "points_awarded_total",
				Help:      "Loyalty points awarded on order completion",
			},
		),
		inventoryAdjustments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "inventory",
				Name:      "adjustments_total",
				Help:      "Inventory adjustments by direction and outcome",
			},
			[]string{"direction", "outcome"},
		),
		postCommitFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "post_commit_failures_total",
				Help:      "Post-commit side effects that failed or panicked",
			},
			[]string{"task"},
		),
		emailsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "emails_total",
				Help:      "Order notification emails by template and result",
			},
			[]string{"template", "result"},
		),
		cartClamps: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cart",
				Name:      "quantity_clamps_total",
				Help:      "Cart quantity changes capped by available stock",
			},
		),
	}
}

// Handler 指标暴露 handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
