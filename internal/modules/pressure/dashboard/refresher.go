package dashboard

import (
	"context"
	"log/slog"
	"time"
)

type Refreshable interface {
	Refresh(ctx context.Context) error
}

// Refresher drives Refresh from a ticker and from on-demand triggers. Triggers
// that arrive while a refresh is pending collapse into one.
type Refresher struct {
	target   Refreshable
	interval time.Duration
	trigger  chan struct{}
	logger   *slog.Logger
}

// NewRefresher refreshes every interval; 0 disables the ticker.
func NewRefresher(target Refreshable, interval time.Duration, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		target:   target,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		logger:   logger.With("component", "refresher"),
	}
}

// Trigger asks for a refresh without waiting for it.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes once immediately, then on every tick or trigger until ctx
// is done.
func (r *Refresher) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if r.interval > 0 {
		t := time.NewTicker(r.interval)
		defer t.Stop()
		tick = t.C
	}

	r.refresh(ctx, "startup")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			r.refresh(ctx, "interval")
		case <-r.trigger:
			r.refresh(ctx, "trigger")
		}
	}
}

func (r *Refresher) refresh(ctx context.Context, reason string) {
	if err := r.target.Refresh(ctx); err != nil {
		r.logger.Debug("refresh did not complete", "reason", reason, "error", err)
		return
	}
	r.logger.Debug("refresh complete", "reason", reason)
}
