package worker

import (
	"context"
	"errors"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/service"

	"github.com/hibiken/asynq"
)

// OrderNotificationSender 发送订单通知邮件
type OrderNotificationSender interface {
	Send(ctx context.Context, kind queue.NotificationKind, orderID uint) error
}

// Consumer 异步任务消费者
type Consumer struct {
	mailer OrderNotificationSender
}

// NewConsumer 创建消费者
func NewConsumer(mailer OrderNotificationSender) *Consumer {
	return &Consumer{mailer: mailer}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(constants.TaskOrderConfirmationEmail, c.handleOrderNotification)
	mux.HandleFunc(constants.TaskOrderCompletedEmail, c.handleOrderNotification)
	mux.HandleFunc(constants.TaskOrderCancelledEmail, c.handleOrderNotification)
}

func (c *Consumer) handleOrderNotification(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_notification_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	kind, ok := queue.KindForTaskType(task.Type())
	if !ok {
		logger.Warnw("worker_order_notification_unknown_type", "task_type", task.Type())
		return asynq.SkipRetry
	}
	payload, err := queue.ParseOrderNotificationPayload(task)
	if err != nil {
		logger.Warnw("worker_order_notification_unmarshal_failed", "task_type", task.Type(), "error", err)
		return asynq.SkipRetry
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_notification_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.mailer == nil {
		logger.Warnw("worker_order_notification_skip_mailer_nil", "order_id", payload.OrderID)
		return nil
	}

	err = c.mailer.Send(ctx, kind, payload.OrderID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrOrderNotFound):
		logger.Debugw("worker_order_notification_skip_order_not_found", "order_id", payload.OrderID, "kind", string(kind))
		return nil
	case errors.Is(err, service.ErrEmailServiceDisabled),
		errors.Is(err, service.ErrEmailServiceNotConfigured),
		errors.Is(err, service.ErrEmailRecipientRejected),
		errors.Is(err, service.ErrInvalidEmail):
		logger.Warnw("worker_order_notification_dropped", "order_id", payload.OrderID, "kind", string(kind), "error", err)
		return nil
	default:
		logger.Warnw("worker_order_notification_send_failed", "order_id", payload.OrderID, "kind", string(kind), "error", err)
		return err
	}
}
