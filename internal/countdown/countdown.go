// Package countdown renders the time left until a debate closes and drives a
// cancellable once-per-second refresh of that text.
package countdown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joss/debate/internal/logging"
)

// ClosedText is shown once the end instant has passed.
const ClosedText = "Debate is closed."

// DefaultInterval is the refresh period.
const DefaultInterval = time.Second

// Remaining returns endsAt - now, never negative.
func Remaining(endsAt, now time.Time) time.Duration {
	d := endsAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Format renders d as "{h}h {m}m {s}s", rounding partial seconds up.
// A non-positive d renders as ClosedText.
func Format(d time.Duration) string {
	if d <= 0 {
		return ClosedText
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%dh %dm %ds", secs/3600, secs%3600/60, secs%60)
}

// Tick is one refresh.
type Tick struct {
	Remaining time.Duration
	Text      string
	Closed    bool
}

// At computes the tick for instant now. Like Debate.ClosedAt, the debate is
// still open at exactly endsAt.
func At(endsAt, now time.Time) Tick {
	d := Remaining(endsAt, now)
	if !now.After(endsAt) && d == 0 {
		return Tick{Text: "0h 0m 0s"}
	}
	return Tick{Remaining: d, Text: Format(d), Closed: d <= 0}
}

// Ticker calls a function with a fresh Tick every interval until the debate
// closes, its context is cancelled, or Stop is called. The first tick is
// delivered immediately; the closing tick is the last one.
type Ticker struct {
	endsAt   time.Time
	now      func() time.Time
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Option configures a Ticker.
type Option func(*Ticker)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Ticker) {
		t.now = now
	}
}

// WithInterval overrides the refresh period.
func WithInterval(d time.Duration) Option {
	return func(t *Ticker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// Start launches a ticker for endsAt. fn runs on the ticker goroutine.
func Start(ctx context.Context, endsAt time.Time, fn func(Tick), opts ...Option) *Ticker {
	t := &Ticker{
		endsAt:   endsAt,
		now:      time.Now,
		interval: DefaultInterval,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	ctx, t.cancel = context.WithCancel(ctx)
	go t.run(ctx, fn)
	return t
}

func (t *Ticker) run(ctx context.Context, fn func(Tick)) {
	defer close(t.done)
	defer logging.Recover("countdown")

	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		tick := At(t.endsAt, t.now())
		if ctx.Err() != nil {
			return
		}
		fn(tick)
		if tick.Closed {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-tk.C:
		}
	}
}

// Cancel asks the ticker to stop and returns at once. A tick already in
// flight may still be delivered. Use it where the tick function can block
// on the caller, such as a bubbletea Update feeding program.Send.
func (t *Ticker) Cancel() {
	t.once.Do(t.cancel)
}

// Stop cancels the ticker and waits for its goroutine to exit. No tick is
// delivered after Stop returns. Safe to call more than once, but not from
// inside the tick function or from anything the tick function waits on.
func (t *Ticker) Stop() {
	t.Cancel()
	<-t.done
}

// Done is closed when the ticker goroutine has exited.
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}
