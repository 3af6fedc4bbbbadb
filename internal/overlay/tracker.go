package overlay

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/cliv/internal/clock"
	"github.com/jmylchreest/cliv/internal/config"
	"github.com/jmylchreest/cliv/internal/platform"
)

// DefaultInterval is the tracking cadence, roughly one display frame.
const DefaultInterval = 16 * time.Millisecond

// State is the tracker's lifecycle state.
type State int

const (
	StateStopped State = iota
	StateSearching
	StateTracking
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateSearching:
		return "searching"
	case StateTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// WindowSource enumerates and inspects top-level windows.
type WindowSource interface {
	// VisibleWindows lists visible top-level windows in window manager order.
	VisibleWindows() ([]platform.Window, error)
	WindowRect(id platform.WindowID) (platform.Rect, error)
	IsWindow(id platform.WindowID) bool
}

// Surface is the overlay window.
type Surface interface {
	MoveResize(r platform.Rect) error
	SetAlpha(alpha float64) error
	Render(drawings []Drawing) error
	Destroy() error
}

// Options configures a Tracker.
type Options struct {
	ProcessName string
	Alpha       float64
	Interval    time.Duration
}

// Tracker keeps an overlay surface aligned with a process window.
type Tracker struct {
	opts    Options
	source  WindowSource
	surface Surface
	clk     clock.Clock
	logger  *slog.Logger

	mu        sync.Mutex
	state     State
	window    platform.WindowID
	hasWindow bool
	lastRect  platform.Rect
	alpha     float64
	handle    clock.Handle
	destroyed bool

	drawings []Drawing
	nextID   DrawingID
}

// New creates a stopped tracker. An alpha outside [0, 1] is rejected.
func New(opts Options, source WindowSource, surface Surface, clk clock.Clock, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := config.CheckUnit("overlay.alpha", opts.Alpha); err != nil {
		return nil, err
	}
	if opts.ProcessName == "" {
		return nil, &config.ValueError{Field: "overlay.process", Value: `""`, Reason: "must name a process"}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	if err := surface.SetAlpha(opts.Alpha); err != nil {
		return nil, fmt.Errorf("failed to set overlay alpha: %w", err)
	}

	return &Tracker{
		opts:    opts,
		source:  source,
		surface: surface,
		clk:     clk,
		logger:  logger.With("process", opts.ProcessName),
		alpha:   opts.Alpha,
	}, nil
}

// Start moves to searching and looks the target up once. It returns true if
// the target was found. Start does not schedule ticking; use Run for that.
func (t *Tracker) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startLocked()
}

// Run starts the tracker and schedules the tracking tick whatever the
// outcome of the first lookup. It returns the Start result.
func (t *Tracker) Run() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	found := t.startLocked()
	if t.handle == 0 {
		t.handle = t.clk.AfterFunc(t.opts.Interval, t.onTick)
	}
	return found
}

func (t *Tracker) startLocked() bool {
	if t.destroyed {
		return false
	}
	t.state = StateSearching
	t.hasWindow = false
	t.followLocked()

	if t.state != StateTracking {
		t.logger.Info("process window not found")
		return false
	}
	t.logger.Info("tracking process window", "window", t.window)
	return true
}

// Stop halts tracking and destroys the overlay surface. Safe to call twice.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = StateStopped
	t.hasWindow = false
	if t.handle != 0 {
		t.clk.Cancel(t.handle)
		t.handle = 0
	}
	if t.destroyed {
		return
	}
	t.destroyed = true
	if err := t.surface.Destroy(); err != nil {
		t.logger.Debug("failed to destroy overlay surface", "error", err)
	}
	t.logger.Debug("overlay stopped")
}

// Tick re-validates the target and aligns the overlay with it.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateStopped {
		return
	}
	t.followLocked()
}

func (t *Tracker) onTick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handle = 0
	if t.state == StateStopped {
		return
	}
	t.followLocked()
	t.handle = t.clk.AfterFunc(t.opts.Interval, t.onTick)
}

func (t *Tracker) followLocked() {
	if t.hasWindow && !t.source.IsWindow(t.window) {
		t.logger.Debug("tracked window is gone", "window", t.window)
		t.dropLocked()
	}

	if !t.hasWindow {
		id, ok := t.lookupLocked()
		if !ok {
			t.state = StateSearching
			return
		}
		t.window = id
		t.hasWindow = true
		t.lastRect = platform.Rect{}
	}

	rect, err := t.source.WindowRect(t.window)
	if err != nil {
		t.logger.Debug("failed to get window rect", "window", t.window, "error", err)
		t.dropLocked()
		return
	}

	if rect != t.lastRect {
		if err := t.surface.MoveResize(rect); err != nil {
			t.logger.Debug("failed to move overlay", "window", t.window, "error", err)
			t.dropLocked()
			return
		}
		t.lastRect = rect
	}
	t.state = StateTracking
}

// lookupLocked returns the first visible window whose process name matches,
// ignoring case.
func (t *Tracker) lookupLocked() (platform.WindowID, bool) {
	windows, err := t.source.VisibleWindows()
	if err != nil {
		t.logger.Debug("failed to enumerate windows", "error", err)
		return 0, false
	}
	for _, w := range windows {
		if strings.EqualFold(w.Process, t.opts.ProcessName) {
			return w.ID, true
		}
	}
	return 0, false
}

func (t *Tracker) dropLocked() {
	t.hasWindow = false
	t.window = 0
	t.lastRect = platform.Rect{}
	t.state = StateSearching
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Window returns the tracked window, if any.
func (t *Tracker) Window() (platform.WindowID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.window, t.hasWindow
}

// Alpha returns the overlay opacity.
func (t *Tracker) Alpha() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alpha
}

// SetAlpha changes the overlay opacity. Values outside [0, 1] are rejected.
func (t *Tracker) SetAlpha(alpha float64) error {
	if err := config.CheckUnit("overlay.alpha", alpha); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.alpha = alpha
	if t.destroyed {
		return nil
	}
	if err := t.surface.SetAlpha(alpha); err != nil {
		return fmt.Errorf("failed to set overlay alpha: %w", err)
	}
	return nil
}

// DrawRectangle outlines (or fills, with style.Fill) a rectangle.
func (t *Tracker) DrawRectangle(x, y, width, height int, style Style) DrawingID {
	style = style.withDefaults(DefaultShapeColor)
	return t.add(Drawing{
		Shape:     ShapeRectangle,
		X1:        x,
		Y1:        y,
		X2:        x + width,
		Y2:        y + height,
		Color:     style.Color,
		Fill:      style.Fill,
		Thickness: style.Thickness,
	})
}

// DrawLine draws a line from x1,y1 to x2,y2.
func (t *Tracker) DrawLine(x1, y1, x2, y2 int, style Style) DrawingID {
	style = style.withDefaults(DefaultShapeColor)
	return t.add(Drawing{
		Shape:     ShapeLine,
		X1:        x1,
		Y1:        y1,
		X2:        x2,
		Y2:        y2,
		Color:     style.Color,
		Thickness: style.Thickness,
	})
}

// DrawCircle draws a circle centred on x,y.
func (t *Tracker) DrawCircle(x, y, radius int, style Style) DrawingID {
	style = style.withDefaults(DefaultShapeColor)
	return t.add(Drawing{
		Shape:     ShapeCircle,
		X1:        x,
		Y1:        y,
		Radius:    radius,
		Color:     style.Color,
		Fill:      style.Fill,
		Thickness: style.Thickness,
	})
}

// DrawText draws text centred on x,y.
func (t *Tracker) DrawText(x, y int, text string, style Style) DrawingID {
	style = style.withDefaults(DefaultTextColor)
	return t.add(Drawing{
		Shape:     ShapeText,
		X1:        x,
		Y1:        y,
		Text:      text,
		Color:     style.Color,
		Thickness: style.Thickness,
	})
}

// DrawCrosshair draws a horizontal and a vertical line through x,y.
// A non-positive size uses DefaultCrosshairSize.
func (t *Tracker) DrawCrosshair(x, y, size int, style Style) (DrawingID, DrawingID) {
	if size <= 0 {
		size = DefaultCrosshairSize
	}
	style = style.withDefaults(DefaultCrosshairColor)
	h := t.DrawLine(x-size, y, x+size, y, style)
	v := t.DrawLine(x, y-size, x, y+size, style)
	return h, v
}

// ClearDrawings removes every drawing.
func (t *Tracker) ClearDrawings() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drawings = nil
	t.renderLocked()
}

// DeleteDrawing removes one drawing. Unknown IDs are ignored.
func (t *Tracker) DeleteDrawing(id DrawingID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.drawings, func(d Drawing) bool { return d.ID == id })
	if i < 0 {
		return false
	}
	t.drawings = slices.Delete(t.drawings, i, i+1)
	t.renderLocked()
	return true
}

// Drawings returns the drawings in paint order.
func (t *Tracker) Drawings() []Drawing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.drawings)
}

func (t *Tracker) add(d Drawing) DrawingID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	d.ID = t.nextID
	t.drawings = append(t.drawings, d)
	t.renderLocked()
	return d.ID
}

func (t *Tracker) renderLocked() {
	if t.destroyed {
		return
	}
	if err := t.surface.Render(slices.Clone(t.drawings)); err != nil {
		t.logger.Debug("failed to render overlay drawings", "error", err)
	}
}
