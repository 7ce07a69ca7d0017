package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServeListenerShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ServeListener(ctx, srv, listener, time.Second)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestRunStopsTasksWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var stopped atomic.Int32

	task := BackgroundTask{
		Name: "ticker",
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			stopped.Add(1)
			return nil
		},
	}

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, discardLogger(), []BackgroundTask{task, {Name: "noop"}}, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		})
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("run did not return")
	}
	if stopped.Load() != 1 {
		t.Fatalf("expected task to observe cancellation")
	}
}

func TestRunPropagatesTaskFailure(t *testing.T) {
	boom := errors.New("boom")
	task := BackgroundTask{
		Name: "failing",
		Run:  func(context.Context) error { return boom },
	}

	err := run(context.Background(), discardLogger(), []BackgroundTask{task}, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected task error, got %v", err)
	}
}
