// Package easing provides the interpolation curves used by toast animations.
//
// Every function takes a progress value t in [0, 1] and returns the eased
// value in [0, 1]. Inputs outside that range are clamped.
package easing

import "math"

// Func maps linear progress to eased progress.
type Func func(t float64) float64

// EaseLinear returns t unchanged.
func EaseLinear(t float64) float64 {
	return clamp(t)
}

// EaseOutCubic starts fast and decelerates into the target.
// f(t) = 1 - (1-t)^3
func EaseOutCubic(t float64) float64 {
	t = clamp(t)
	return 1 - math.Pow(1-t, 3)
}

// EaseInCubic starts slow and accelerates away.
// f(t) = t^3
func EaseInCubic(t float64) float64 {
	t = clamp(t)
	return t * t * t
}

// EaseInOutCubic accelerates through the first half and decelerates through the second.
func EaseInOutCubic(t float64) float64 {
	t = clamp(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Lerp interpolates between a and b; t=0 returns a, t=1 returns b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ByName returns the easing function registered under name, or EaseLinear.
func ByName(name string) Func {
	switch name {
	case "out-cubic":
		return EaseOutCubic
	case "in-cubic":
		return EaseInCubic
	case "in-out-cubic":
		return EaseInOutCubic
	default:
		return EaseLinear
	}
}

func clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
