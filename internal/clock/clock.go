// Package clock provides the re-arming timer primitive that drives every
// animation in cliv.
//
// Components never block: a tick does its work and asks the Clock to call it
// again after a delay. Loop is the production implementation, a single
// goroutine that dispatches every callback in due order. Manual is the
// deterministic implementation used by tests.
package clock

import (
	"errors"
	"time"
)

// ErrLoopStopped is returned by Post once the loop has exited.
var ErrLoopStopped = errors.New("clock loop stopped")

// Handle identifies a scheduled callback. The zero Handle is never issued.
type Handle uint64

// Clock schedules callbacks after a delay.
type Clock interface {
	// Now returns the current time as seen by this clock.
	Now() time.Time
	// AfterFunc schedules fn to run once after d.
	AfterFunc(d time.Duration, fn func()) Handle
	// Cancel removes a pending callback. Returns false if it already ran
	// or was never scheduled.
	Cancel(h Handle) bool
}
