package rgbw

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nlowe/rgbw/log"
)

type loopOp struct {
	fn   func(*Driver) error
	done chan error
}

// Loop owns a Driver on a single goroutine. Run ticks the Driver on a fixed interval; other goroutines reach the
// Driver through Do, which runs their function between ticks.
type Loop struct {
	d        *Driver
	interval time.Duration

	ops chan loopOp

	mu    sync.Mutex
	hooks []func(*Driver)

	log *slog.Logger
}

// NewLoop constructs a Loop for d that calls Driver.Tick every interval once Run is called. The interval should be
// shorter than the step period of the fades you run.
func NewLoop(d *Driver, interval time.Duration) *Loop {
	return &Loop{
		d:        d,
		interval: interval,
		ops:      make(chan loopOp),

		log: log.ForComponent("loop"),
	}
}

// AfterTick registers a callback run on the loop goroutine after every tick. Callbacks may use the Driver freely but
// must not call Do.
func (l *Loop) AfterTick(fn func(*Driver)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hooks = append(l.hooks, fn)
}

// Do runs fn on the loop goroutine and returns its error. It blocks until fn has run or ctx is done. Do only makes
// progress while Run is running.
func (l *Loop) Do(ctx context.Context, fn func(*Driver) error) error {
	op := loopOp{fn: fn, done: make(chan error, 1)}

	select {
	case l.ops <- op:
	case <-ctx.Done():
		return context.Cause(ctx)
	}

	select {
	case err := <-op.done:
		return err
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Run ticks the Driver and serves Do until ctx is done, returning the cause.
func (l *Loop) Run(ctx context.Context) error {
	t := time.NewTicker(l.interval)
	defer t.Stop()

	l.log.With(slog.Duration("interval", l.interval)).Debug("Starting driver loop")
	for {
		select {
		case <-ctx.Done():
			l.log.Debug("Driver loop stopped")
			return context.Cause(ctx)
		case op := <-l.ops:
			op.done <- op.fn(l.d)
		case <-t.C:
			l.d.Tick()

			l.mu.Lock()
			hooks := l.hooks
			l.mu.Unlock()

			for _, h := range hooks {
				h(l.d)
			}
		}
	}
}
