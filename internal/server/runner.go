package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// BackgroundTask 는 HTTP 서버와 함께 실행되는 주기 작업이다.
type BackgroundTask struct {
	Name        string
	ErrorLogKey string
	Run         func(ctx context.Context) error
}

// Run 은 서버와 백그라운드 작업을 함께 구동한다.
// SIGINT/SIGTERM 또는 어느 하나의 실패 시 나머지를 모두 종료한다.
func Run(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	shutdownTimeout time.Duration,
	backgroundTasks ...BackgroundTask,
) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(signalCtx, logger, backgroundTasks, func(gctx context.Context) error {
		return Serve(gctx, server, shutdownTimeout)
	})
}

func run(ctx context.Context, logger *slog.Logger, tasks []BackgroundTask, serve func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, task := range tasks {
		t := task
		if t.Run == nil {
			continue
		}

		g.Go(func() error {
			if err := t.Run(gctx); err != nil {
				logKey := t.ErrorLogKey
				if logKey == "" {
					logKey = "background_task_failed"
				}
				logger.Error(logKey, "task", t.Name, "err", err)
				return fmt.Errorf("%s failed: %w", t.Name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := serve(gctx); err != nil {
			return fmt.Errorf("http server serve failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run http server failed: %w", err)
	}
	return nil
}
