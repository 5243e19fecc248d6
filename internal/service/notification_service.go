package service

import (
	"context"

	"github.com/storefront-next/internal/queue"
)

// OrderNotifier 订单通知投递
type OrderNotifier interface {
	Notify(ctx context.Context, kind queue.NotificationKind, orderID uint) error
}

// NotificationService 队列启用时异步投递，否则直接发送
type NotificationService struct {
	queueClient *queue.Client
	mailer      *OrderMailer
}

// NewNotificationService 创建通知服务
func NewNotificationService(queueClient *queue.Client, mailer *OrderMailer) *NotificationService {
	return &NotificationService{queueClient: queueClient, mailer: mailer}
}

// Notify 投递订单通知
func (s *NotificationService) Notify(ctx context.Context, kind queue.NotificationKind, orderID uint) error {
	if s == nil || orderID == 0 {
		return nil
	}
	if s.queueClient.Enabled() {
		return s.queueClient.EnqueueOrderNotification(ctx, kind, orderID)
	}
	return s.mailer.Send(ctx, kind, orderID)
}
