package clock

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// idleWait bounds how long the loop sleeps with nothing scheduled.
const idleWait = time.Hour

// Loop is a single-goroutine scheduler. AfterFunc, Cancel and Post may be
// called from any goroutine; callbacks run only on the goroutine executing Run.
type Loop struct {
	mu       sync.Mutex
	sched    schedule
	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// NewLoop creates a loop. Call Run to start dispatching.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn to run on the loop goroutine after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Handle {
	l.mu.Lock()
	h := l.sched.add(time.Now().Add(d), fn)
	l.mu.Unlock()
	l.signal()
	return h
}

// Cancel removes a pending callback.
func (l *Loop) Cancel(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sched.cancel(h)
}

// Post runs fn on the loop goroutine as soon as possible.
// Foreign goroutines use it to hand work to the animation thread.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}
	l.AfterFunc(0, fn)
	return nil
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Pending returns the number of scheduled callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sched.len()
}

// Run dispatches callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.done) })

	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fn, wait := l.next()
		if fn != nil {
			l.dispatch(fn)
			continue
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-timer.C:
		}
	}
}

func (l *Loop) next() (func(), time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if e := l.sched.popDue(now); e != nil {
		return e.fn, 0
	}
	when, ok := l.sched.nextDue()
	if !ok {
		return nil, idleWait
	}
	return nil, when.Sub(now)
}

// dispatch runs fn, logging instead of propagating a panic so one failing
// tick never takes down the loop.
func (l *Loop) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("clock callback panicked", "panic", r)
		}
	}()
	fn()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
