package service

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/metrics"
)

const defaultSideEffectTimeout = 15 * time.Second

// postCommitTask 事务提交后执行的副作用
type postCommitTask struct {
	name string
	run  func(ctx context.Context) error
}

// postCommitRunner 逐个执行副作用，每个任务独立超时与异常隔离
type postCommitRunner struct {
	metrics *metrics.Metrics
	timeout time.Duration
}

func newPostCommitRunner(m *metrics.Metrics, timeout time.Duration) *postCommitRunner {
	if timeout <= 0 {
		timeout = defaultSideEffectTimeout
	}
	return &postCommitRunner{metrics: m, timeout: timeout}
}

// Run 执行全部任务，返回失败的任务名
func (r *postCommitRunner) Run(ctx context.Context, orderID uint, tasks ...postCommitTask) []string {
	if ctx == nil {
		ctx = context.Background()
	}
	// 请求结束不应中断已提交订单的副作用
	base := context.WithoutCancel(ctx)

	var failed []string
	for _, task := range tasks {
		if task.run == nil {
			continue
		}
		if err := r.runOne(base, task); err != nil {
			failed = append(failed, task.name)
			r.metrics.PostCommitFailed(task.name)
			logger.Ctx(ctx).Errorw("order_post_commit_task_failed",
				"order_id", orderID,
				"task", task.name,
				"error", err,
			)
		}
	}
	return failed
}

func (r *postCommitRunner) runOne(ctx context.Context, task postCommitTask) (err error) {
	taskCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return task.run(taskCtx)
}
