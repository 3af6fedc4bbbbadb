package x11

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/jmylchreest/cliv/internal/platform"
	"github.com/jmylchreest/cliv/internal/theme"
)

const (
	menuBorder     = 2
	menuTitleY     = 22
	menuTitleX     = 14
	menuHintMargin = 10
)

// Dragger receives pointer drags on the menu window in root coordinates.
// shell.Shell implements it.
type Dragger interface {
	BeginDrag(rootX, rootY int)
	DragTo(rootX, rootY int)
	EndDrag()
}

// MenuWindow is the borderless host window of the menu. It implements
// shell.Window.
type MenuWindow struct {
	win    *window
	title  string
	hint   string
	width  int
	height int
	logger *slog.Logger

	mu        sync.Mutex
	x, y      int
	palette   theme.Palette
	destroyed bool
}

// NewMenuWindow creates the menu window centred on the screen and maps it.
func NewMenuWindow(conn *Connection, title, hotkey string, width, height int, opacity float64, p theme.Palette, logger *slog.Logger) (*MenuWindow, error) {
	if logger == nil {
		logger = slog.Default()
	}

	screen := conn.Screen()
	r := platform.Rect{
		X:      (screen.Width - width) / 2,
		Y:      (screen.Height - height) / 2,
		Width:  width,
		Height: height,
	}
	w, err := conn.newWindow(
		conn.Root,
		r,
		theme.Pixel(p.Accent),
		xproto.EventMaskExposure|xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create menu window: %w", err)
	}
	if err := w.initGC(theme.Pixel(p.Text), theme.Pixel(p.Background)); err != nil {
		_ = w.destroy()
		return nil, err
	}

	m := &MenuWindow{
		win:     w,
		title:   title,
		hint:    fmt.Sprintf("%s: show/hide", strings.ToUpper(hotkey)),
		width:   width,
		height:  height,
		logger:  logger,
		x:       r.X,
		y:       r.Y,
		palette: p,
	}

	if err := w.setOpacity(opacity); err != nil {
		logger.Debug("failed to set menu opacity", "error", err)
	}

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			m.draw()
		}
	}).Connect(conn.XUtil, w.id)

	w.show()
	logger.Debug("menu window created", "bounds", r.String())
	return m, nil
}

// BindDrag lets button 1 drag the window through d.
func (m *MenuWindow) BindDrag(conn *Connection, d Dragger) {
	mousebind.Drag(conn.XUtil, m.win.id, m.win.id, "1", false,
		func(_ *xgbutil.XUtil, rootX, rootY, _, _ int) (bool, xproto.Cursor) {
			d.BeginDrag(rootX, rootY)
			return true, 0
		},
		func(_ *xgbutil.XUtil, rootX, rootY, _, _ int) {
			d.DragTo(rootX, rootY)
		},
		func(_ *xgbutil.XUtil, _, _, _, _ int) {
			d.EndDrag()
		},
	)
}

// BindClose calls fn on a right click.
func (m *MenuWindow) BindClose(conn *Connection, fn func()) error {
	err := mousebind.ButtonPressFun(func(_ *xgbutil.XUtil, _ xevent.ButtonPressEvent) {
		fn()
	}).Connect(conn.XUtil, m.win.id, "3", false, false)
	if err != nil {
		return fmt.Errorf("failed to bind close button: %w", err)
	}
	return nil
}

// SetPalette recolors the window.
func (m *MenuWindow) SetPalette(p theme.Palette) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.palette = p
	m.win.setBackground(theme.Pixel(p.Accent))
	m.drawLocked()
}

func (m *MenuWindow) Show() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil
	}
	m.win.show()
	return nil
}

func (m *MenuWindow) Hide() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil
	}
	m.win.hide()
	return nil
}

func (m *MenuWindow) Move(x, y int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil
	}
	m.win.move(x, y)
	m.x, m.y = x, y
	return nil
}

// Position returns the last position the window was moved to.
func (m *MenuWindow) Position() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.x, m.y
}

func (m *MenuWindow) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil
	}
	m.destroyed = true
	return m.win.destroy()
}

func (m *MenuWindow) draw() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.drawLocked()
}

// drawLocked paints the background inside a thin accent border, then the
// title and the hotkey hint. Sprites are child windows and draw themselves.
func (m *MenuWindow) drawLocked() {
	bg := theme.Pixel(m.palette.Background)
	m.win.fillRect(menuBorder, menuBorder, m.width-2*menuBorder, m.height-2*menuBorder, bg)
	m.win.text(menuTitleX, menuTitleY, m.title, theme.Pixel(m.palette.Accent), bg)
	m.win.text(menuTitleX, m.height-menuHintMargin, m.hint, theme.Pixel(theme.Dim(m.palette.Text, 0.4)), bg)
}
