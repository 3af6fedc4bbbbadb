package x11

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/jmylchreest/cliv/internal/overlay"
	"github.com/jmylchreest/cliv/internal/platform"
	"github.com/jmylchreest/cliv/internal/theme"
)

// OverlaySurface is a translucent window laid over a target window. Pointer
// input passes through it when the server has the SHAPE extension.
// It implements overlay.Surface.
type OverlaySurface struct {
	win        *window
	background uint32
	logger     *slog.Logger

	mu        sync.Mutex
	drawings  []overlay.Drawing
	mapped    bool
	destroyed bool
}

// NewOverlaySurface creates an unmapped overlay window with the given
// background color.
func NewOverlaySurface(conn *Connection, background string, logger *slog.Logger) (*OverlaySurface, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bg, err := theme.ParseColor(background)
	if err != nil {
		return nil, err
	}

	pixel := theme.Pixel(bg)
	w, err := conn.newWindow(conn.Root, platform.Rect{Width: 1, Height: 1}, pixel, xproto.EventMaskExposure)
	if err != nil {
		return nil, err
	}
	if err := w.initGC(pixel, pixel); err != nil {
		_ = w.destroy()
		return nil, err
	}

	s := &OverlaySurface{win: w, background: pixel, logger: logger}
	s.passInput(conn)

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			s.redraw()
		}
	}).Connect(conn.XUtil, w.id)

	return s, nil
}

// passInput gives the window an empty input region.
func (s *OverlaySurface) passInput(conn *Connection) {
	c := conn.XUtil.Conn()
	if err := shape.Init(c); err != nil {
		s.logger.Debug("SHAPE extension unavailable, overlay will intercept input", "error", err)
		return
	}
	shape.Rectangles(c, shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted, s.win.id, 0, 0, nil)
}

// MoveResize places the overlay over r and maps it on first use.
func (s *OverlaySurface) MoveResize(r platform.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	if err := s.win.moveResize(r); err != nil {
		return fmt.Errorf("failed to move overlay: %w", err)
	}
	if !s.mapped {
		s.win.show()
		s.mapped = true
	}
	return nil
}

func (s *OverlaySurface) SetAlpha(alpha float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	return s.win.setOpacity(alpha)
}

// Render replaces the painted drawings.
func (s *OverlaySurface) Render(drawings []overlay.Drawing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.drawings = append(s.drawings[:0], drawings...)
	s.win.clear()
	return s.paintLocked()
}

func (s *OverlaySurface) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	return s.win.destroy()
}

func (s *OverlaySurface) redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	if err := s.paintLocked(); err != nil {
		s.logger.Debug("failed to repaint overlay", "error", err)
	}
}

func (s *OverlaySurface) paintLocked() error {
	conn := s.win.conn.XUtil.Conn()
	d := xproto.Drawable(s.win.id)

	for _, dr := range s.drawings {
		fg, err := colorPixel(dr.Color)
		if err != nil {
			return fmt.Errorf("drawing %d: %w", dr.ID, err)
		}
		xproto.ChangeGC(conn, s.win.gc, xproto.GcLineWidth, []uint32{uint32(max(dr.Thickness, 1))})

		switch dr.Shape {
		case overlay.ShapeRectangle:
			rect := xproto.Rectangle{
				X:      int16(dr.X1),
				Y:      int16(dr.Y1),
				Width:  uint16(max(dr.X2-dr.X1, 0)),
				Height: uint16(max(dr.Y2-dr.Y1, 0)),
			}
			if dr.Fill != "" {
				fill, err := colorPixel(dr.Fill)
				if err != nil {
					return fmt.Errorf("drawing %d: %w", dr.ID, err)
				}
				xproto.ChangeGC(conn, s.win.gc, xproto.GcForeground, []uint32{fill})
				xproto.PolyFillRectangle(conn, d, s.win.gc, []xproto.Rectangle{rect})
			}
			xproto.ChangeGC(conn, s.win.gc, xproto.GcForeground, []uint32{fg})
			xproto.PolyRectangle(conn, d, s.win.gc, []xproto.Rectangle{rect})

		case overlay.ShapeLine:
			xproto.ChangeGC(conn, s.win.gc, xproto.GcForeground, []uint32{fg})
			xproto.PolySegment(conn, d, s.win.gc, []xproto.Segment{{
				X1: int16(dr.X1), Y1: int16(dr.Y1), X2: int16(dr.X2), Y2: int16(dr.Y2),
			}})

		case overlay.ShapeCircle:
			arc := xproto.Arc{
				X:      int16(dr.X1 - dr.Radius),
				Y:      int16(dr.Y1 - dr.Radius),
				Width:  uint16(2 * dr.Radius),
				Height: uint16(2 * dr.Radius),
				Angle1: 0,
				Angle2: 360 * 64,
			}
			if dr.Fill != "" {
				fill, err := colorPixel(dr.Fill)
				if err != nil {
					return fmt.Errorf("drawing %d: %w", dr.ID, err)
				}
				xproto.ChangeGC(conn, s.win.gc, xproto.GcForeground, []uint32{fill})
				xproto.PolyFillArc(conn, d, s.win.gc, []xproto.Arc{arc})
			}
			xproto.ChangeGC(conn, s.win.gc, xproto.GcForeground, []uint32{fg})
			xproto.PolyArc(conn, d, s.win.gc, []xproto.Arc{arc})

		case overlay.ShapeText:
			s.win.text(dr.X1, dr.Y1, dr.Text, fg, s.background)
		}
	}
	return nil
}

func colorPixel(name string) (uint32, error) {
	c, err := theme.ParseColor(name)
	if err != nil {
		return 0, err
	}
	return theme.Pixel(c), nil
}
