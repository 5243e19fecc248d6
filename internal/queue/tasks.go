package queue

import (
	"encoding/json"
	"fmt"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

// NotificationKind 订单通知类型
type NotificationKind string

const (
	// NotificationConfirmation 下单确认
	NotificationConfirmation NotificationKind = "confirmation"
	// NotificationCompleted 订单完成
	NotificationCompleted NotificationKind = "completed"
	// NotificationCancelled 订单取消
	NotificationCancelled NotificationKind = "cancelled"
)

var notificationTaskTypes = map[NotificationKind]string{
	NotificationConfirmation: constants.TaskOrderConfirmationEmail,
	NotificationCompleted:    constants.TaskOrderCompletedEmail,
	NotificationCancelled:    constants.TaskOrderCancelledEmail,
}

// TaskType 通知类型对应的任务类型
func (k NotificationKind) TaskType() (string, bool) {
	taskType, ok := notificationTaskTypes[k]
	return taskType, ok
}

// KindForTaskType 任务类型对应的通知类型
func KindForTaskType(taskType string) (NotificationKind, bool) {
	for kind, t := range notificationTaskTypes {
		if t == taskType {
			return kind, true
		}
	}
	return "", false
}

// OrderNotificationPayload 订单通知任务载荷
type OrderNotificationPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderNotificationTask 创建订单通知任务
func NewOrderNotificationTask(kind NotificationKind, payload OrderNotificationPayload) (*asynq.Task, error) {
	taskType, ok := kind.TaskType()
	if !ok {
		return nil, fmt.Errorf("unknown notification kind: %s", kind)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body), nil
}

// ParseOrderNotificationPayload 解析订单通知任务载荷
func ParseOrderNotificationPayload(task *asynq.Task) (OrderNotificationPayload, error) {
	var payload OrderNotificationPayload
	if task == nil {
		return payload, fmt.Errorf("nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// NotificationTaskID 通知任务去重ID
func NotificationTaskID(kind NotificationKind, orderID uint) string {
	return fmt.Sprintf("order-%d-%s", orderID, kind)
}
