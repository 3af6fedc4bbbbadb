// Package x11 implements cliv's host surfaces on an X11 display: the menu
// window, toast and overlay windows, particle sprites, window enumeration and
// the global hotkey.
package x11

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/jmylchreest/cliv/internal/platform"
)

// Connection manages the X11 connection and core X resources.
type Connection struct {
	XUtil  *xgbutil.XUtil
	Root   xproto.Window
	logger *slog.Logger

	closeOnce sync.Once
}

// NewConnection connects to the display named by $DISPLAY.
func NewConnection(logger *slog.Logger) (*Connection, error) {
	if logger == nil {
		logger = slog.Default()
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	// Required before any key or button binding
	keybind.Initialize(xu)
	mousebind.Initialize(xu)

	logger.Debug("connected to X11", "root", xu.RootWin())
	return &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		logger: logger,
	}, nil
}

// Screen returns the root window's bounds.
func (c *Connection) Screen() platform.Rect {
	s := c.XUtil.Screen()
	return platform.Rect{
		Width:  int(s.WidthInPixels),
		Height: int(s.HeightInPixels),
	}
}

// EventLoop runs the X11 event loop until Quit is called. It blocks.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit stops EventLoop.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close disconnects from the X server.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.XUtil.Conn().Close()
	})
}

// Flush sends any buffered requests.
func (c *Connection) Flush() {
	c.XUtil.Sync()
}
