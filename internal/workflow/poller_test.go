package workflow

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skybooklabs/skybook-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "workflow-test",
		Level:       zerolog.ErrorLevel,
		Output:      io.Discard,
	})
}

type stubSource struct {
	mu        sync.Mutex
	responses []fetchResult
	calls     int
	gate      chan struct{}
}

func (s *stubSource) Snapshot(ctx context.Context, orderID uuid.UUID) (*Snapshot, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.responses) == 0 {
		return nil, errors.New("no response configured")
	}
	res := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return res.snap, res.err
}

func newTestPoller(t *testing.T, source SnapshotSource, interval time.Duration) *Poller {
	t.Helper()
	p, err := NewPoller(PollerParams{Source: source, Interval: interval, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}
	return p
}

func receiveView(t *testing.T, views <-chan View) View {
	t.Helper()
	select {
	case v, ok := <-views:
		if !ok {
			t.Fatal("views channel closed unexpectedly")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a view")
	}
	return View{}
}

func TestNewPollerValidation(t *testing.T) {
	if _, err := NewPoller(PollerParams{Logger: testLogger()}); err == nil {
		t.Error("expected error without a source")
	}
	if _, err := NewPoller(PollerParams{Source: &stubSource{}}); err == nil {
		t.Error("expected error without a logger")
	}
}

func TestPollerFirstFetchIsImmediate(t *testing.T) {
	snap := happyPathSnapshot()
	source := &stubSource{responses: []fetchResult{{snap: snap}}}
	p := newTestPoller(t, source, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view := receiveView(t, p.Watch(ctx, uuid.New()))
	if view.Snapshot != snap {
		t.Error("expected the fetched snapshot before the first tick")
	}
	if view.Err != "" {
		t.Errorf("expected no error, got %q", view.Err)
	}
}

func TestPollerRetainsLastGoodSnapshot(t *testing.T) {
	snap := happyPathSnapshot()
	source := &stubSource{responses: []fetchResult{
		{snap: snap},
		{err: errors.New("workflow fetch failed (502)")},
	}}
	p := newTestPoller(t, source, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	views := p.Watch(ctx, uuid.New())

	first := receiveView(t, views)
	if first.Snapshot != snap || first.Err != "" {
		t.Fatalf("unexpected first view: %+v", first)
	}

	for {
		view := receiveView(t, views)
		if view.Err == "" {
			continue
		}
		if view.Snapshot != snap {
			t.Error("a failed poll must not discard the last good snapshot")
		}
		if view.Err != "workflow fetch failed (502)" {
			t.Errorf("unexpected error message %q", view.Err)
		}
		return
	}
}

func TestPollerErrorClearsOnRecovery(t *testing.T) {
	snap := happyPathSnapshot()
	source := &stubSource{responses: []fetchResult{
		{err: errors.New("connection refused")},
		{snap: snap},
	}}
	p := newTestPoller(t, source, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	views := p.Watch(ctx, uuid.New())

	first := receiveView(t, views)
	if first.Err == "" || first.Snapshot != nil {
		t.Fatalf("unexpected first view: %+v", first)
	}

	for {
		view := receiveView(t, views)
		if view.Snapshot == nil {
			continue
		}
		if view.Err != "" {
			t.Errorf("error should clear after a successful poll, got %q", view.Err)
		}
		return
	}
}

func TestPollerCancellationDropsLateResult(t *testing.T) {
	gate := make(chan struct{})
	source := &stubSource{
		responses: []fetchResult{{snap: happyPathSnapshot()}},
		gate:      gate,
	}
	p := newTestPoller(t, source, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	views := p.Watch(ctx, uuid.New())

	cancel()
	close(gate)

	select {
	case view, ok := <-views:
		if ok {
			t.Fatalf("no view may be published after cancellation, got %+v", view)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("views channel should close after cancellation")
	}
}

func TestViewSteps(t *testing.T) {
	view := View{Snapshot: happyPathSnapshot()}
	steps := view.Steps()
	if len(steps) != StepCount {
		t.Fatalf("expected %d steps, got %d", StepCount, len(steps))
	}
	if (View{}).Steps() != nil {
		t.Error("an empty view should derive no steps")
	}
}
