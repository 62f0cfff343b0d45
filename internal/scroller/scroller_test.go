package scroller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePanel reports counts[i] after the i-th scroll.
type fakePanel struct {
	counts    []int
	scrolls   int
	endAfter  int // AtEnd is true once scrolls reaches this, 0 disables
	scrollErr error
	countErr  error
	onScroll  func()
}

func (f *fakePanel) Scroll(context.Context) error {
	f.scrolls++
	if f.onScroll != nil {
		f.onScroll()
	}
	return f.scrollErr
}

func (f *fakePanel) Count(context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	i := f.scrolls
	if i >= len(f.counts) {
		i = len(f.counts) - 1
	}
	return f.counts[i], nil
}

func (f *fakePanel) AtEnd(context.Context) (bool, error) {
	return f.endAfter > 0 && f.scrolls >= f.endAfter, nil
}

func newTestScroller(cfg Config) (*Scroller, *[]time.Duration) {
	var slept []time.Duration
	s := New(cfg, zap.NewNop())
	s.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return s, &slept
}

func TestRunStopsAfterStaleScrolls(t *testing.T) {
	s, slept := newTestScroller(Config{Pause: 4 * time.Second, MaxStale: 3, MaxScrolls: 50})
	p := &fakePanel{counts: []int{20, 40, 60, 60, 60, 60}}

	st, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StopStale, st.Reason)
	require.Equal(t, 5, st.Scrolls)
	require.Equal(t, 60, st.Items)
	require.Len(t, *slept, 5)
	require.Equal(t, 4*time.Second, (*slept)[0])
}

func TestRunStaleCounterResets(t *testing.T) {
	s, _ := newTestScroller(Config{MaxStale: 2, MaxScrolls: 50})
	p := &fakePanel{counts: []int{10, 10, 20, 20, 30, 30, 30}}

	st, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StopStale, st.Reason)
	require.Equal(t, 6, st.Scrolls)
	require.Equal(t, 30, st.Items)
}

func TestRunMaxScrolls(t *testing.T) {
	s, _ := newTestScroller(Config{MaxStale: 3, MaxScrolls: 4})
	p := &fakePanel{counts: []int{1, 2, 3, 4, 5, 6, 7, 8}}

	st, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StopLimit, st.Reason)
	require.Equal(t, 4, st.Scrolls)
	require.Equal(t, 5, st.Items)
}

func TestRunEndOfList(t *testing.T) {
	s, _ := newTestScroller(Config{MaxStale: 3, MaxScrolls: 50})
	p := &fakePanel{counts: []int{20, 40, 47}, endAfter: 2}

	st, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StopEnd, st.Reason)
	require.Equal(t, 2, st.Scrolls)
	require.Equal(t, 47, st.Items)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, _ := newTestScroller(Config{MaxStale: 3, MaxScrolls: 50})
	p := &fakePanel{counts: []int{1, 2, 3, 4, 5}}
	p.onScroll = func() {
		if p.scrolls == 2 {
			cancel()
		}
	}

	st, err := s.Run(ctx, p)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StopCanceled, st.Reason)
	require.Equal(t, 1, st.Scrolls)
}

func TestRunSwallowsPanelErrors(t *testing.T) {
	s, _ := newTestScroller(Config{MaxStale: 2, MaxScrolls: 50})
	p := &fakePanel{counts: []int{5}, scrollErr: errors.New("detached"), countErr: errors.New("eval failed")}

	st, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StopStale, st.Reason)
	require.Equal(t, 2, st.Scrolls)
	require.Zero(t, st.Items)
}

func TestRunReportsProgress(t *testing.T) {
	s, _ := newTestScroller(Config{MaxStale: 1, MaxScrolls: 50})
	var seen []int
	s.OnProgress = func(n int) { seen = append(seen, n) }

	_, err := s.Run(context.Background(), &fakePanel{counts: []int{3, 6, 6}})
	require.NoError(t, err)
	require.Equal(t, []int{6, 6}, seen)
}

func TestNewDefaults(t *testing.T) {
	s := New(Config{Pause: -time.Second}, nil)
	require.Equal(t, DefaultConfig.MaxStale, s.cfg.MaxStale)
	require.Equal(t, DefaultConfig.MaxScrolls, s.cfg.MaxScrolls)
	require.Zero(t, s.cfg.Pause)
}
