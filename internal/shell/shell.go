// Package shell owns the menu's host window: visibility, dragging and shutdown.
package shell

import (
	"log/slog"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/cliv/internal/particle"
	"github.com/jmylchreest/cliv/internal/theme"
	"github.com/jmylchreest/cliv/internal/toast"
)

// Window is the host menu window.
type Window interface {
	Show() error
	Hide() error
	Move(x, y int) error
	Position() (x, y int)
	Destroy() error
}

// Context is what collaborators get instead of the whole shell.
type Context struct {
	Theme      colorful.Color
	Background colorful.Color
	Notify     toast.NotifyFunc
}

type drag struct {
	active             bool
	pointerX, pointerY int
	windowX, windowY   int
}

// Shell ties the host window to the particle field and the toast stack.
// The window is expected to be mapped when the shell is created.
type Shell struct {
	window Window
	field  *particle.Field
	stack  *toast.Stack
	logger *slog.Logger

	mu      sync.Mutex
	visible bool
	drag    drag
	onClose []func()
	closed  bool
	done    chan struct{}
}

// New creates a shell. field and stack may be nil.
func New(window Window, field *particle.Field, stack *toast.Stack, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		window:  window,
		field:   field,
		stack:   stack,
		logger:  logger,
		visible: true,
		done:    make(chan struct{}),
	}
}

// Toggle hides a visible menu and pauses the particles, or shows a hidden one
// and resumes them. It returns the new visibility.
func (s *Shell) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	if s.visible {
		if err := s.window.Hide(); err != nil {
			s.logger.Warn("failed to hide menu", "error", err)
			return s.visible
		}
		if s.field != nil {
			s.field.Pause()
		}
		s.visible = false
	} else {
		if err := s.window.Show(); err != nil {
			s.logger.Warn("failed to show menu", "error", err)
			return s.visible
		}
		if s.field != nil {
			s.field.Resume()
		}
		s.visible = true
	}

	s.logger.Debug("menu toggled", "visible", s.visible)
	return s.visible
}

// Visible reports whether the menu is shown.
func (s *Shell) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// BeginDrag records the pointer and window position at the start of a drag.
// Coordinates are root-window relative.
func (s *Shell) BeginDrag(rootX, rootY int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	wx, wy := s.window.Position()
	s.drag = drag{active: true, pointerX: rootX, pointerY: rootY, windowX: wx, windowY: wy}
}

// DragTo moves the window by the pointer's offset from the drag origin.
func (s *Shell) DragTo(rootX, rootY int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.drag.active || s.closed {
		return
	}
	x := s.drag.windowX + rootX - s.drag.pointerX
	y := s.drag.windowY + rootY - s.drag.pointerY
	if err := s.window.Move(x, y); err != nil {
		s.logger.Debug("failed to move menu", "error", err)
	}
}

// EndDrag finishes a drag.
func (s *Shell) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.active = false
}

// OnClose registers a hook run by Close before anything is torn down.
func (s *Shell) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = append(s.onClose, fn)
}

// Close runs the hooks, stops the toast stack and particle field and destroys
// the window. Only the first call does anything.
func (s *Shell) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	hooks := s.onClose
	s.onClose = nil
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	if s.stack != nil {
		s.stack.Stop()
	}
	if s.field != nil {
		s.field.Stop()
	}

	err := s.window.Destroy()
	if err != nil {
		s.logger.Warn("failed to destroy menu window", "error", err)
	}

	close(s.done)
	s.logger.Info("menu closed")
	return err
}

// Done is closed once Close has finished.
func (s *Shell) Done() <-chan struct{} {
	return s.done
}

// Context returns the capability set handed to collaborators.
func (s *Shell) Context(p theme.Palette) Context {
	notify := func(string, string, toast.Kind) {}
	if s.stack != nil {
		notify = s.stack.Notifier(0)
	}
	return Context{
		Theme:      p.Accent,
		Background: p.Background,
		Notify:     notify,
	}
}
