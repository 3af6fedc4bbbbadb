// Package anim holds the state records advanced by the toast stepper.
//
// An Animation is a plain value: it knows when it started and how to map a
// point in time onto an interpolated value. Nothing here schedules anything;
// the owner polls the record once per tick.
package anim

import (
	"math"
	"time"

	"github.com/jmylchreest/cliv/internal/easing"
)

// Animation interpolates From to To in Steps discrete steps of Interval each.
type Animation struct {
	Start    time.Time
	Interval time.Duration
	Steps    int
	From     float64
	To       float64
	Easing   easing.Func
}

// New creates an animation starting at start.
func New(start time.Time, steps int, interval time.Duration, from, to float64, ease easing.Func) Animation {
	if ease == nil {
		ease = easing.EaseLinear
	}
	return Animation{
		Start:    start,
		Interval: interval,
		Steps:    steps,
		From:     from,
		To:       to,
		Easing:   ease,
	}
}

// Duration returns the total running time.
func (a Animation) Duration() time.Duration {
	if a.Steps <= 0 || a.Interval <= 0 {
		return 0
	}
	return a.Interval * time.Duration(a.Steps)
}

// Step returns the number of completed steps at now, in [0, Steps].
func (a Animation) Step(now time.Time) int {
	if a.Steps <= 0 || a.Interval <= 0 {
		return a.Steps
	}
	elapsed := now.Sub(a.Start)
	if elapsed <= 0 {
		return 0
	}
	return min(int(elapsed/a.Interval), a.Steps)
}

// Fraction returns linear progress in [0, 1] quantized to whole steps.
// An animation with no steps is complete immediately.
func (a Animation) Fraction(now time.Time) float64 {
	if a.Steps <= 0 || a.Interval <= 0 {
		return 1
	}
	return float64(a.Step(now)) / float64(a.Steps)
}

// Value returns the eased value at now.
func (a Animation) Value(now time.Time) float64 {
	ease := a.Easing
	if ease == nil {
		ease = easing.EaseLinear
	}
	return easing.Lerp(a.From, a.To, ease(a.Fraction(now)))
}

// Done reports whether every step has run.
func (a Animation) Done(now time.Time) bool {
	return a.Fraction(now) >= 1
}

// Progress returns min(elapsed/total, 1), or 1 for a non-positive total.
func Progress(start time.Time, total time.Duration, now time.Time) float64 {
	if total <= 0 {
		return 1
	}
	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= total {
		return 1
	}
	return float64(elapsed) / float64(total)
}

// Approach moves cur toward target by ratio of the remaining distance.
// Once within threshold it snaps to target and reports true.
func Approach(cur, target, ratio, threshold float64) (float64, bool) {
	if math.Abs(target-cur) <= threshold {
		return target, true
	}
	next := cur + (target-cur)*ratio
	if math.Abs(target-next) <= threshold {
		return target, true
	}
	return next, false
}
