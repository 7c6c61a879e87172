package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeService struct {
	name     string
	startErr error
	blocking bool
	stopped  atomic.Int32
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.blocking {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.stopped.Add(1)
	return nil
}

func TestRunnerStopsAllWhenOneFails(t *testing.T) {
	boom := errors.New("listen failed")
	failing := &fakeService{name: "http", startErr: boom}
	blocking := &fakeService{name: "worker", blocking: true}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, zap.NewNop().Sugar())
	if !errors.Is(err, boom) {
		t.Fatalf("want start error got %v", err)
	}
	if failing.stopped.Load() != 1 || blocking.stopped.Load() != 1 {
		t.Fatalf("want every service stopped once got http=%d worker=%d", failing.stopped.Load(), blocking.stopped.Load())
	}
}

func TestRunnerCancelIsCleanShutdown(t *testing.T) {
	svc := &fakeService{name: "http", blocking: true}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRunner(svc).Run(ctx, time.Second, nil)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("want nil on cancel got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not return after cancel")
	}
	if svc.stopped.Load() != 1 {
		t.Fatalf("want service stopped got %d", svc.stopped.Load())
	}
}

func TestRunnerRejectsEmpty(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("want error for empty runner")
	}
	if err := NewRunner(&fakeService{name: "http"}, nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("want error for nil service")
	}
}

func TestRunnerCleanExitStopsOthers(t *testing.T) {
	oneShot := &fakeService{name: "migrate"}
	blocking := &fakeService{name: "http", blocking: true}

	if err := NewRunner(oneShot, blocking).Run(context.Background(), time.Second, nil); err != nil {
		t.Fatalf("want nil after clean exit got %v", err)
	}
	if blocking.stopped.Load() != 1 {
		t.Fatalf("want blocking service stopped got %d", blocking.stopped.Load())
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	if opts.Mode != ModeAll {
		t.Fatalf("want mode %q got %q", ModeAll, opts.Mode)
	}
	if opts.ShutdownTimeout != 10*time.Second {
		t.Fatalf("want 10s shutdown timeout got %v", opts.ShutdownTimeout)
	}
	if opts.Logger == nil {
		t.Fatalf("want default logger")
	}
}

func TestBuildRunnerRequiresConfig(t *testing.T) {
	if _, _, err := BuildRunner(nil, ModeAPI); err == nil {
		t.Fatalf("want error for nil config")
	}
	if err := Run(Options{}); err == nil {
		t.Fatalf("want error for nil config")
	}
}
