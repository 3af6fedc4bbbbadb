// Package toast implements the stacked toast notifications shown in a screen
// corner.
//
// A Stack owns every live toast. Toasts slide in from the screen edge, count
// down their duration on a progress bar, slide out and are removed, after
// which the remaining toasts glide into their new slots. All animation is
// driven by a single re-arming stack tick that polls per-toast animation
// records; Show and Close are safe to call from any goroutine.
package toast
