package testsession

import (
	"sync"
	"time"
)

// Clock is the time source for countdowns.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock uses the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// FakeClock is a manually driven Clock. Tick blocks until the session's
// countdown loop receives the tick.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

// NewFakeClock returns a clock frozen at now.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *FakeClock) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{period: d, c: make(chan time.Time), stopped: make(chan struct{})}
	f.tickers = append(f.tickers, t)
	return t
}

// Advance moves the clock forward without firing tickers.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Tick advances every live ticker by one period and delivers a tick to each.
// It reports whether any ticker received a tick.
func (f *FakeClock) Tick() bool {
	f.mu.Lock()
	tickers := append([]*fakeTicker(nil), f.tickers...)
	f.mu.Unlock()

	delivered := false
	for _, t := range tickers {
		f.Advance(t.period)
		select {
		case t.c <- f.Now():
			delivered = true
		case <-t.stopped:
		}
	}
	return delivered
}

type fakeTicker struct {
	period  time.Duration
	c       chan time.Time
	once    sync.Once
	stopped chan struct{}
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}
