package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/jmylchreest/cliv/internal/platform"
)

// Core fonts tried in order for text.
var fontNames = []string{"-misc-fixed-bold-r-normal--13-*-*-*-*-*-iso10646-1", "fixed", "9x15", "8x13", "6x13"}

const opacityAtom = "_NET_WM_WINDOW_OPACITY"

// window is an unmanaged X window with a graphics context for drawing.
type window struct {
	conn *Connection
	id   xproto.Window
	gc   xproto.Gcontext
	font xproto.Font
}

// newWindow creates an unmapped window. Top-level windows bypass the window
// manager through override-redirect.
func (c *Connection) newWindow(parent xproto.Window, r platform.Rect, background uint32, events uint32) (*window, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	width, height := clampSize(r.Width), clampSize(r.Height)
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		parent,
		int16(r.X), int16(r.Y),
		width, height,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		// Values follow the mask bits from low to high
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{background, 1, events},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	return &window{conn: c, id: wid}, nil
}

// initGC opens a core font and creates the drawing context.
func (w *window) initGC(fg, bg uint32) error {
	conn := w.conn.XUtil.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return fmt.Errorf("failed to allocate font id: %w", err)
	}
	opened := false
	for _, name := range fontNames {
		if err := xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check(); err == nil {
			opened = true
			break
		}
	}
	if !opened {
		return fmt.Errorf("failed to open any of the fonts %v", fontNames)
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		return fmt.Errorf("failed to allocate graphics context id: %w", err)
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(w.id),
		xproto.GcForeground|xproto.GcBackground|xproto.GcLineWidth|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{fg, bg, 1, uint32(font), 0},
	).Check()
	if err != nil {
		xproto.CloseFont(conn, font)
		return fmt.Errorf("failed to create graphics context: %w", err)
	}

	w.font = font
	w.gc = gc
	return nil
}

func (w *window) show() {
	conn := w.conn.XUtil.Conn()
	xproto.MapWindow(conn, w.id)
	xproto.ConfigureWindow(conn, w.id, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

func (w *window) hide() {
	xproto.UnmapWindow(w.conn.XUtil.Conn(), w.id)
}

// move is unchecked; it runs for every sprite on every particle tick.
func (w *window) move(x, y int) {
	xproto.ConfigureWindow(
		w.conn.XUtil.Conn(),
		w.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))},
	)
}

func (w *window) moveResize(r platform.Rect) error {
	return xproto.ConfigureWindowChecked(
		w.conn.XUtil.Conn(),
		w.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(int32(r.X)),
			uint32(int32(r.Y)),
			uint32(clampSize(r.Width)),
			uint32(clampSize(r.Height)),
			xproto.StackModeAbove,
		},
	).Check()
}

// setOpacity sets the compositor opacity hint. Without a compositor the
// window stays opaque.
func (w *window) setOpacity(alpha float64) error {
	alpha = min(max(alpha, 0), 1)
	return xprop.ChangeProp32(w.conn.XUtil, w.id, opacityAtom, "CARDINAL", uint(alpha*0xffffffff))
}

func (w *window) setBackground(pixel uint32) {
	conn := w.conn.XUtil.Conn()
	xproto.ChangeWindowAttributes(conn, w.id, xproto.CwBackPixel, []uint32{pixel})
	xproto.ClearArea(conn, false, w.id, 0, 0, 0, 0)
}

func (w *window) clear() {
	xproto.ClearArea(w.conn.XUtil.Conn(), false, w.id, 0, 0, 0, 0)
}

func (w *window) fillRect(x, y, width, height int, pixel uint32) {
	if width <= 0 || height <= 0 {
		return
	}
	conn := w.conn.XUtil.Conn()
	xproto.ChangeGC(conn, w.gc, xproto.GcForeground, []uint32{pixel})
	xproto.PolyFillRectangle(conn, xproto.Drawable(w.id), w.gc, []xproto.Rectangle{{
		X: int16(x), Y: int16(y), Width: uint16(width), Height: uint16(height),
	}})
}

// text draws s with its baseline at y. Core fonts take at most 255 bytes.
func (w *window) text(x, y int, s string, fg, bg uint32) {
	if s == "" {
		return
	}
	if len(s) > 255 {
		s = s[:255]
	}
	conn := w.conn.XUtil.Conn()
	xproto.ChangeGC(conn, w.gc, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg})
	xproto.ImageText8(conn, byte(len(s)), xproto.Drawable(w.id), w.gc, int16(x), int16(y), s)
}

// exists reports whether the X server still knows the window.
func (w *window) exists() bool {
	_, err := xproto.GetWindowAttributes(w.conn.XUtil.Conn(), w.id).Reply()
	return err == nil
}

func (w *window) destroy() error {
	xu := w.conn.XUtil
	conn := xu.Conn()

	xevent.Detach(xu, w.id)
	mousebind.Detach(xu, w.id)

	if w.gc != 0 {
		xproto.FreeGC(conn, w.gc)
		w.gc = 0
	}
	if w.font != 0 {
		xproto.CloseFont(conn, w.font)
		w.font = 0
	}
	if err := xproto.DestroyWindowChecked(conn, w.id).Check(); err != nil {
		return fmt.Errorf("failed to destroy window %d: %w", w.id, err)
	}
	return nil
}

func clampSize(v int) uint16 {
	return uint16(min(max(v, 1), 0xffff))
}
