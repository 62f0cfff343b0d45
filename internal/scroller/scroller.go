package scroller

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"gmapscrape/internal/browser"
)

// Panel is a scrollable list whose items load lazily.
type Panel interface {
	// Scroll moves the list to its bottom.
	Scroll(ctx context.Context) error
	// Count returns how many items are currently loaded.
	Count(ctx context.Context) (int, error)
	// AtEnd reports whether the list shows its end-of-results marker.
	AtEnd(ctx context.Context) (bool, error)
}

// Config bounds the scroll loop.
type Config struct {
	Pause      time.Duration // wait after each scroll
	MaxStale   int           // consecutive scrolls without new items before stopping
	MaxScrolls int           // hard cap on scrolls
}

// DefaultConfig mirrors the built-in config defaults.
var DefaultConfig = Config{
	Pause:      4 * time.Second,
	MaxStale:   3,
	MaxScrolls: 50,
}

// StopReason says why the loop ended.
type StopReason string

const (
	StopStale    StopReason = "no_new_items"
	StopLimit    StopReason = "max_scrolls"
	StopEnd      StopReason = "end_of_list"
	StopCanceled StopReason = "canceled"
)

// Stats summarizes a finished run.
type Stats struct {
	Scrolls int
	Items   int
	Stale   int
	Reason  StopReason
	Elapsed time.Duration
}

// Scroller drives a Panel until it stops producing items.
type Scroller struct {
	cfg   Config
	log   *zap.Logger
	sleep func(context.Context, time.Duration) error

	// OnProgress, when set, is called with the item count after every scroll.
	OnProgress func(items int)
}

// New returns a Scroller. Zero config values fall back to DefaultConfig.
func New(cfg Config, log *zap.Logger) *Scroller {
	if cfg.MaxStale <= 0 {
		cfg.MaxStale = DefaultConfig.MaxStale
	}
	if cfg.MaxScrolls <= 0 {
		cfg.MaxScrolls = DefaultConfig.MaxScrolls
	}
	if cfg.Pause < 0 {
		cfg.Pause = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scroller{cfg: cfg, log: log, sleep: browser.Sleep}
}

// Run scrolls p until MaxStale consecutive scrolls add nothing, MaxScrolls is
// reached, the end marker appears or ctx is done. Errors from the panel are
// logged and count as a scroll without new items. The only error returned is
// the context's.
func (s *Scroller) Run(ctx context.Context, p Panel) (Stats, error) {
	start := time.Now()
	var st Stats
	finish := func(reason StopReason, err error) (Stats, error) {
		st.Reason = reason
		st.Elapsed = time.Since(start)
		s.log.Info("scrolling finished",
			zap.Int("scrolls", st.Scrolls),
			zap.Int("items", st.Items),
			zap.String("reason", string(reason)),
			zap.Duration("elapsed", st.Elapsed),
		)
		return st, err
	}

	st.Items = s.count(ctx, p, 0)

	for st.Stale < s.cfg.MaxStale {
		if err := ctx.Err(); err != nil {
			return finish(StopCanceled, err)
		}

		before := st.Items
		if err := p.Scroll(ctx); err != nil {
			if isContextErr(ctx, err) {
				return finish(StopCanceled, ctx.Err())
			}
			s.log.Warn("scroll failed", zap.Error(err))
		}
		if err := s.sleep(ctx, s.cfg.Pause); err != nil {
			return finish(StopCanceled, err)
		}

		st.Scrolls++
		st.Items = s.count(ctx, p, before)
		if st.Items > before {
			st.Stale = 0
			s.log.Debug("new items loaded",
				zap.Int("scroll", st.Scrolls),
				zap.Int("new", st.Items-before),
				zap.Int("total", st.Items),
			)
		} else {
			st.Stale++
			s.log.Debug("no new items",
				zap.Int("attempt", st.Stale),
				zap.Int("max_stale", s.cfg.MaxStale),
			)
		}
		if s.OnProgress != nil {
			s.OnProgress(st.Items)
		}

		if end, err := p.AtEnd(ctx); err != nil {
			s.log.Debug("end marker check failed", zap.Error(err))
		} else if end {
			return finish(StopEnd, nil)
		}

		if st.Scrolls >= s.cfg.MaxScrolls {
			return finish(StopLimit, nil)
		}
	}
	return finish(StopStale, nil)
}

// count returns the panel's item count, or last when counting fails.
func (s *Scroller) count(ctx context.Context, p Panel, last int) int {
	n, err := p.Count(ctx)
	if err != nil {
		s.log.Warn("counting items failed", zap.Error(err))
		return last
	}
	return n
}

func isContextErr(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
