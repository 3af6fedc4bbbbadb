package toast

import (
	"github.com/jmylchreest/cliv/internal/config"
	"github.com/jmylchreest/cliv/internal/platform"
)

// Layout computes toast slot positions for an anchor corner.
// Slot 0 sits against the anchor; higher slots stack away from it.
type Layout struct {
	Position config.Position
	Screen   platform.Rect
	Width    int
	Height   int
	Gap      int
	MarginX  int
	MarginY  int
}

// NewLayout builds a layout from toast settings.
func NewLayout(cfg config.ToastConfig, screen platform.Rect) Layout {
	return Layout{
		Position: config.Position(cfg.Position),
		Screen:   screen,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Gap:      cfg.Gap,
		MarginX:  cfg.MarginX,
		MarginY:  cfg.MarginY,
	}
}

// Slot returns the top-left corner of the toast at index.
func (l Layout) Slot(index int) (x, y int) {
	offset := l.Offset(index)

	if l.leftAligned() {
		x = l.Screen.X + l.MarginX
	} else {
		x = l.Screen.X + l.Screen.Width - l.Width - l.MarginX
	}

	if l.topAligned() {
		y = l.Screen.Y + l.MarginY + offset
	} else {
		y = l.Screen.Y + l.Screen.Height - l.Height - l.MarginY - offset
	}

	return x, y
}

// Offset returns the distance of slot index from slot 0.
func (l Layout) Offset(index int) int {
	return index * (l.Height + l.Gap)
}

// EdgeDirection is +1 when toasts sit on the right edge and -1 on the left.
// Entry and exit slides move along it.
func (l Layout) EdgeDirection() int {
	if l.leftAligned() {
		return -1
	}
	return 1
}

// EntryX returns the off-screen x a toast slides in from.
func (l Layout) EntryX(x int) int {
	return x + l.EdgeDirection()*l.Width
}

func (l Layout) leftAligned() bool {
	return l.Position == config.PositionTopLeft || l.Position == config.PositionBottomLeft
}

func (l Layout) topAligned() bool {
	return l.Position == config.PositionTopLeft || l.Position == config.PositionTopRight
}
