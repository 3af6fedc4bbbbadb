// Package platform defines the window-system vocabulary shared by the
// animation components and their host backends.
package platform

import "fmt"

// WindowID is an opaque native window handle.
type WindowID uint32

// Rect is a screen rectangle in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Window is a visible top-level window and the process that owns it.
type Window struct {
	ID      WindowID `json:"id"`
	Title   string   `json:"title"`
	Process string   `json:"process"`
	PID     int      `json:"pid"`
	Bounds  Rect     `json:"bounds"`
}
