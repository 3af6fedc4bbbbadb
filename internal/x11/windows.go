package x11

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/jmylchreest/cliv/internal/platform"
)

// procRoot is where process names are read from.
var procRoot = "/proc"

// WindowSource enumerates visible top-level windows through EWMH.
// It implements overlay.WindowSource.
type WindowSource struct {
	conn *Connection
}

// NewWindowSource creates a window source on conn.
func NewWindowSource(conn *Connection) *WindowSource {
	return &WindowSource{conn: conn}
}

// VisibleWindows lists managed windows that are mapped and not hidden,
// with the name of the process that owns each.
func (s *WindowSource) VisibleWindows() ([]platform.Window, error) {
	xu := s.conn.XUtil
	clients, err := ewmh.ClientListGet(xu)
	if err != nil {
		return nil, fmt.Errorf("failed to read client list: %w", err)
	}

	windows := make([]platform.Window, 0, len(clients))
	for _, wid := range clients {
		if !s.isNormal(wid) || s.isHidden(wid) {
			continue
		}

		rect, err := s.WindowRect(platform.WindowID(wid))
		if err != nil || rect.Empty() {
			continue
		}

		w := platform.Window{
			ID:     platform.WindowID(wid),
			Title:  s.title(wid),
			Bounds: rect,
		}
		if pid, err := ewmh.WmPidGet(xu, wid); err == nil {
			w.PID = int(pid)
			w.Process = processName(w.PID)
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// WindowRect returns the window's client area in root coordinates.
func (s *WindowSource) WindowRect(id platform.WindowID) (platform.Rect, error) {
	conn := s.conn.XUtil.Conn()
	wid := xproto.Window(id)

	geom, err := xproto.GetGeometry(conn, xproto.Drawable(wid)).Reply()
	if err != nil {
		return platform.Rect{}, fmt.Errorf("failed to get geometry of window %d: %w", id, err)
	}

	// Geometry is parent-relative; reparenting window managers wrap clients in frames
	origin, err := xproto.TranslateCoordinates(conn, wid, s.conn.Root, 0, 0).Reply()
	if err != nil {
		return platform.Rect{}, fmt.Errorf("failed to translate coordinates of window %d: %w", id, err)
	}

	return platform.Rect{
		X:      int(origin.DstX),
		Y:      int(origin.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// IsWindow reports whether id still names a live, viewable window.
func (s *WindowSource) IsWindow(id platform.WindowID) bool {
	attrs, err := xproto.GetWindowAttributes(s.conn.XUtil.Conn(), xproto.Window(id)).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

func (s *WindowSource) isNormal(wid xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(s.conn.XUtil, wid)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		}
	}
	return len(types) == 0
}

func (s *WindowSource) isHidden(wid xproto.Window) bool {
	states, err := ewmh.WmStateGet(s.conn.XUtil, wid)
	if err != nil {
		return false
	}
	for _, st := range states {
		if st == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

func (s *WindowSource) title(wid xproto.Window) string {
	if name, err := ewmh.WmNameGet(s.conn.XUtil, wid); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(s.conn.XUtil, wid); err == nil {
		return name
	}
	return ""
}

// processName returns the command name of pid, or "" if it cannot be read.
func processName(pid int) string {
	if pid <= 0 {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(procRoot, strconv.Itoa(pid), "comm"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
