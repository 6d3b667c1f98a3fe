package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skybooklabs/skybook-backend/pkg/logger"
)

// SnapshotSource yields the current workflow snapshot for an order. The
// server-side Service and the HTTP Client both satisfy it.
type SnapshotSource interface {
	Snapshot(ctx context.Context, orderID uuid.UUID) (*Snapshot, error)
}

// View is the poller's published state: the last good snapshot plus the last
// fetch error, if any. A failed fetch never discards the snapshot already
// held; Err is cleared on the next success.
type View struct {
	Snapshot *Snapshot
	Err      string
}

// Steps derives the workflow steps from the view's snapshot.
func (v View) Steps() []Step {
	return DeriveSteps(v.Snapshot)
}

// PollerParams carries the dependencies for NewPoller.
type PollerParams struct {
	Source   SnapshotSource
	Interval time.Duration
	Logger   *logger.Logger
}

// Poller drives the polling lifecycle for workflow snapshots. One Watch call
// tracks one order; switching orders means cancelling the old watch and
// starting a new one.
type Poller struct {
	source   SnapshotSource
	interval time.Duration
	logg     *logger.Logger
}

// NewPoller builds a snapshot poller.
func NewPoller(params PollerParams) (*Poller, error) {
	if params.Source == nil {
		return nil, fmt.Errorf("snapshot source required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	return &Poller{
		source:   params.Source,
		interval: interval,
		logg:     params.Logger,
	}, nil
}

type fetchResult struct {
	snap *Snapshot
	err  error
}

// Watch polls the source for the given order until ctx is cancelled and
// publishes a View after every settled fetch. The first fetch fires
// immediately; later ones on every interval tick without waiting for the
// previous fetch, so slow fetches can overlap and results apply in
// completion order. Once ctx is cancelled no further View is published and
// late results are dropped; the returned channel is closed.
//
// The channel holds the latest view only: when the consumer lags, an
// unconsumed view is replaced rather than queued.
func (p *Poller) Watch(ctx context.Context, orderID uuid.UUID) <-chan View {
	out := make(chan View, 1)
	results := make(chan fetchResult)
	ctx = p.logg.WithOrderID(ctx, orderID.String())

	launch := func() {
		go func() {
			snap, err := p.source.Snapshot(ctx, orderID)
			select {
			case results <- fetchResult{snap: snap, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	go func() {
		launch()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				launch()
			}
		}
	}()

	go func() {
		defer close(out)
		var view View
		for {
			select {
			case <-ctx.Done():
				return
			case res := <-results:
				// Late results must not be observed once the watch is
				// cancelled, even when they were already in flight.
				if ctx.Err() != nil {
					return
				}
				if res.err != nil {
					view.Err = res.err.Error()
					p.logg.Warn(p.logg.WithField(ctx, "cause", res.err.Error()), "workflow poll failed")
				} else {
					view.Snapshot = res.snap
					view.Err = ""
				}
				publishLatest(out, view)
			}
		}
	}()

	return out
}

func publishLatest(out chan View, view View) {
	for {
		select {
		case out <- view:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
