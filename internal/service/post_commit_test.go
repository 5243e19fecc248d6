package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/metrics"
)

func TestPostCommitRunnerIsolatesFailures(t *testing.T) {
	runner := newPostCommitRunner(metrics.New("test"), time.Second)

	var ran []string
	failed := runner.Run(context.Background(), 1,
		postCommitTask{name: "panics", run: func(ctx context.Context) error {
			ran = append(ran, "panics")
			panic("boom")
		}},
		postCommitTask{name: "errors", run: func(ctx context.Context) error {
			ran = append(ran, "errors")
			return errors.New("smtp down")
		}},
		postCommitTask{name: "succeeds", run: func(ctx context.Context) error {
			ran = append(ran, "succeeds")
			return nil
		}},
	)

	if len(ran) != 3 {
		t.Fatalf("all tasks should run, got %v", ran)
	}
	if len(failed) != 2 || failed[0] != "panics" || failed[1] != "errors" {
		t.Fatalf("unexpected failed tasks: %v", failed)
	}
}

func TestPostCommitRunnerSurvivesCancelledRequest(t *testing.T) {
	runner := newPostCommitRunner(nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var taskErr error
	runner.Run(ctx, 1, postCommitTask{name: "check", run: func(ctx context.Context) error {
		taskErr = ctx.Err()
		return nil
	}})
	if taskErr != nil {
		t.Fatalf("task context should not inherit request cancellation, got %v", taskErr)
	}
}

func TestPostCommitRunnerAppliesTimeout(t *testing.T) {
	runner := newPostCommitRunner(nil, 20*time.Millisecond)
	failed := runner.Run(context.Background(), 1, postCommitTask{name: "slow", run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	if len(failed) != 1 || failed[0] != "slow" {
		t.Fatalf("slow task should time out, got %v", failed)
	}
}

func TestPostCommitRunnerTimeoutBoundsEmailSend(t *testing.T) {
	host, port := silentSMTPServer(t)
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Host: host, Port: port, From: "shop@example.com"})
	runner := newPostCommitRunner(nil, 200*time.Millisecond)

	started := time.Now()
	failed := runner.Run(context.Background(), 7, postCommitTask{name: "email", run: func(ctx context.Context) error {
		return svc.SendHTML(ctx, "a@example.com", "s", "<p>b</p>")
	}})
	if len(failed) != 1 || failed[0] != "email" {
		t.Fatalf("stalled send should be reported as failed: %v", failed)
	}
	if elapsed := time.Since(started); elapsed > 3*time.Second {
		t.Fatalf("runner timeout did not bound the send, took %s", elapsed)
	}
}
