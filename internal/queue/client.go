package queue

import (
	"context"
	"errors"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 完成、取消通知
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 下单确认
	CriticalQueue = constants.QueueCritical

	defaultMaxRetry    = 5
	defaultConcurrency = 10
	// 任务完成后保留一段时间，期间同一 TaskID 仍视为重复
	notificationRetention = 24 * time.Hour
)

// Client 队列客户端封装；零值与 nil 均为关闭状态，投递为空操作
type Client struct {
	client   *asynq.Client
	maxRetry int
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = defaultMaxRetry
	}
	return &Client{client: asynq.NewClient(redisOpt(cfg)), maxRetry: maxRetry}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderNotification 投递订单通知邮件任务；同一订单同类通知只入队一次
func (c *Client) EnqueueOrderNotification(ctx context.Context, kind NotificationKind, orderID uint) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderNotificationTask(kind, OrderNotificationPayload{OrderID: orderID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, c.notificationOptions(kind, orderID)...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

func (c *Client) notificationOptions(kind NotificationKind, orderID uint) []asynq.Option {
	queueName := DefaultQueue
	if kind == NotificationConfirmation {
		queueName = CriticalQueue
	}
	return []asynq.Option{
		asynq.Queue(queueName),
		asynq.MaxRetry(c.maxRetry),
		asynq.TaskID(NotificationTaskID(kind, orderID)),
		asynq.Retention(notificationRetention),
	}
}

// BuildServerConfig 消费端连接与并发配置；确认邮件队列权重更高
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{DefaultQueue: 1, CriticalQueue: 2},
	}
	if cfg == nil {
		return redisOpt(&config.QueueConfig{}), serverCfg
	}
	if cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
