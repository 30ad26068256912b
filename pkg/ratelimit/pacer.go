package ratelimit

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/ratelimit"
)

// Limiter blocks callers so that requests are spaced out
type Limiter interface {
	// Wait blocks until the next request may start
	Wait()
	// Done records that the current request has finished
	Done()
}

// Clock is the time source of a Pacer
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Pacer inserts a fixed delay between the end of one request and the start
// of the next. The first call to Wait never blocks. Request starts are also
// kept at least delay apart, so callers that never call Done are still paced.
type Pacer struct {
	rl    ratelimit.Limiter
	clock Clock
	delay time.Duration

	mu       sync.Mutex
	lastDone time.Time
}

// NewPacer creates a pacer with the given delay. A zero delay disables
// pacing.
func NewPacer(delay time.Duration) *Pacer {
	return newPacer(delay, clock.New())
}

func newPacer(delay time.Duration, clk Clock) *Pacer {
	if delay <= 0 {
		return &Pacer{rl: ratelimit.NewUnlimited(), clock: clk}
	}

	// Slack would let idle time accumulate into bursts
	return &Pacer{
		rl:    ratelimit.New(1, ratelimit.Per(delay), ratelimit.WithoutSlack, ratelimit.WithClock(clk)),
		clock: clk,
		delay: delay,
	}
}

// Wait blocks until delay has passed since the previous request finished
// and since it started
func (p *Pacer) Wait() {
	p.rl.Take()
	if p.delay <= 0 {
		return
	}

	p.mu.Lock()
	last := p.lastDone
	p.mu.Unlock()
	if last.IsZero() {
		return
	}

	if remaining := p.delay - p.clock.Now().Sub(last); remaining > 0 {
		p.clock.Sleep(remaining)
	}
}

// Done marks the end of the current request
func (p *Pacer) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastDone = p.clock.Now()
}

// Delay returns the configured spacing
func (p *Pacer) Delay() time.Duration {
	return p.delay
}
