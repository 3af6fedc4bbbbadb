package toast

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/cliv/internal/anim"
	"github.com/jmylchreest/cliv/internal/clock"
	"github.com/jmylchreest/cliv/internal/config"
	"github.com/jmylchreest/cliv/internal/easing"
	"github.com/jmylchreest/cliv/internal/platform"
)

// toast is the stack's record for a live toast.
type toast struct {
	id        ID
	title     string
	message   string
	kind      Kind
	createdAt time.Time
	duration  time.Duration
	surface   Surface

	state       State
	closeReason CloseReason

	x, y     float64
	targetX  float64
	targetY  float64
	alpha    float64
	progress float64

	// Last values pushed to the surface.
	drawnX, drawnY int
	drawnAlpha     float64

	entryX, entryAlpha anim.Animation
	exitX, exitAlpha   anim.Animation

	restacking bool
	restackAt  time.Time
}

// countdown tracks a toast's remaining lifetime. Close flips cancelled so no
// countdown step runs for the toast again.
type countdown struct {
	start     time.Time
	duration  time.Duration
	cancelled bool
}

type closeEvent struct {
	id     ID
	reason CloseReason
}

// Stack owns the ordered sequence of live toasts.
// Index in the sequence is the toast's slot; insertion order is display order.
type Stack struct {
	cfg     config.ToastConfig
	layout  Layout
	factory SurfaceFactory
	clk     clock.Clock
	logger  *slog.Logger

	// mu guards every field below, including iteration during restack.
	mu         sync.Mutex
	toasts     []*toast
	countdowns map[ID]*countdown
	handle     clock.Handle
	stopped    bool
	onClose    []CloseFunc
	sounder    Sounder
}

// NewStack creates an empty stack anchored on screen.
func NewStack(cfg config.ToastConfig, screen platform.Rect, factory SurfaceFactory, clk clock.Clock, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Stack{
		cfg:        cfg,
		layout:     NewLayout(cfg, screen),
		factory:    factory,
		clk:        clk,
		logger:     logger,
		countdowns: make(map[ID]*countdown),
	}, nil
}

// SetSounder sets the sound player used when a toast is shown.
func (s *Stack) SetSounder(sounder Sounder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sounder = sounder
}

// OnClose registers a callback invoked after a toast is removed.
// Callbacks run outside the stack lock.
func (s *Stack) OnClose(cb CloseFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = append(s.onClose, cb)
}

// Layout returns the stack's slot layout.
func (s *Stack) Layout() Layout {
	return s.layout
}

// Show creates a toast in the next free slot and starts its entry animation
// and countdown together. A non-positive duration uses the configured default.
func (s *Stack) Show(title, message string, duration time.Duration, kind Kind) (ID, error) {
	if duration <= 0 {
		duration = s.cfg.DefaultDuration.Duration()
	}
	kind = ParseKind(string(kind))

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return "", ErrStackStopped
	}

	index := len(s.toasts)
	x, y := s.layout.Slot(index)
	startX := s.layout.EntryX(x)
	id := ID(ulid.Make().String())

	surface, err := s.factory.NewToastSurface(SurfaceSpec{
		ID:        id,
		Title:     title,
		Message:   message,
		Kind:      kind,
		X:         startX,
		Y:         y,
		Width:     s.layout.Width,
		Height:    s.layout.Height,
		Alpha:     0,
		OnDismiss: func() { s.closeWithReason(id, ReasonDismissed) },
	})
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("dropping toast, surface creation failed",
			"title", title,
			"kind", kind,
			"error", err,
		)
		return "", fmt.Errorf("failed to create toast surface: %w", err)
	}

	now := s.clk.Now()
	step := s.cfg.StepInterval.Duration()
	t := &toast{
		id:         id,
		title:      title,
		message:    message,
		kind:       kind,
		createdAt:  now,
		duration:   duration,
		surface:    surface,
		state:      StateEntering,
		x:          float64(startX),
		y:          float64(y),
		targetX:    float64(x),
		targetY:    float64(y),
		drawnX:     startX,
		drawnY:     y,
		entryX:     anim.New(now, s.cfg.EntrySteps, step, float64(startX), float64(x), easing.EaseOutCubic),
		entryAlpha: anim.New(now, s.cfg.EntrySteps, step, 0, s.cfg.Opacity, easing.EaseLinear),
	}
	s.toasts = append(s.toasts, t)
	s.countdowns[id] = &countdown{start: now, duration: duration}
	s.armLocked()
	sounder := s.sounder
	s.mu.Unlock()

	s.logger.Debug("showed toast",
		"id", id,
		"kind", kind,
		"slot", index,
		"duration", duration,
	)

	if sounder != nil {
		if err := sounder.PlayForKind(string(kind)); err != nil {
			s.logger.Debug("failed to play toast sound", "kind", kind, "error", err)
		}
	}

	return id, nil
}

// Notifier returns a NotifyFunc that shows toasts with the given duration.
// Failures are logged and otherwise ignored.
func (s *Stack) Notifier(duration time.Duration) NotifyFunc {
	return func(title, message string, kind Kind) {
		if _, err := s.Show(title, message, duration, kind); err != nil {
			s.logger.Debug("notification dropped", "title", title, "error", err)
		}
	}
}

// Close starts the exit animation of a toast. It returns false if the toast
// is unknown, already exiting or already closed. A toast whose surface was
// destroyed externally is removed at once and Close returns false.
func (s *Stack) Close(id ID) bool {
	return s.closeWithReason(id, ReasonRequested)
}

func (s *Stack) closeWithReason(id ID, reason CloseReason) bool {
	s.mu.Lock()
	t, index := s.findLocked(id)
	if t == nil || t.state == StateExiting || t.state == StateClosed {
		s.mu.Unlock()
		return false
	}

	now := s.clk.Now()
	if !t.surface.Exists() {
		s.removeLocked(index, now)
		s.mu.Unlock()
		s.notifyClosed([]closeEvent{{id: id, reason: ReasonVanished}})
		return false
	}

	s.beginExitLocked(t, now, reason)
	s.armLocked()
	s.mu.Unlock()

	s.logger.Debug("closing toast", "id", id, "reason", reason)
	return true
}

// CloseAll destroys every toast immediately without animation.
func (s *Stack) CloseAll() {
	s.mu.Lock()
	events := s.closeAllLocked()
	s.mu.Unlock()
	s.notifyClosed(events)
}

// Stop closes every toast and refuses further Show calls.
func (s *Stack) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	events := s.closeAllLocked()
	s.mu.Unlock()

	s.notifyClosed(events)
	s.logger.Debug("toast stack stopped")
}

// Len returns the number of live toasts, including those exiting.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toasts)
}

// Snapshot returns a copy of every live toast in slot order.
func (s *Stack) Snapshot() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Info, 0, len(s.toasts))
	for i, t := range s.toasts {
		out = append(out, Info{
			ID:        t.id,
			Index:     i,
			Title:     t.title,
			Message:   t.message,
			Kind:      t.kind,
			State:     t.state,
			CreatedAt: t.createdAt,
			Duration:  t.duration,
			X:         t.x,
			Y:         t.y,
			TargetX:   t.targetX,
			TargetY:   t.targetY,
			Alpha:     t.alpha,
			Progress:  t.progress,
		})
	}
	return out
}

// onTick is the single stepper for every toast animation.
func (s *Stack) onTick() {
	s.mu.Lock()
	s.handle = 0
	if s.stopped {
		s.mu.Unlock()
		return
	}

	events := s.stepLocked(s.clk.Now())
	if len(s.toasts) > 0 {
		s.armLocked()
	}
	s.mu.Unlock()

	s.notifyClosed(events)
}

func (s *Stack) stepLocked(now time.Time) []closeEvent {
	var events []closeEvent
	removed := false
	live := s.toasts[:0]

	for _, t := range s.toasts {
		if !t.surface.Exists() {
			t.state = StateClosed
			delete(s.countdowns, t.id)
			events = append(events, closeEvent{id: t.id, reason: ReasonVanished})
			removed = true
			s.logger.Debug("toast surface vanished", "id", t.id)
			continue
		}

		if cd := s.countdowns[t.id]; cd != nil && !cd.cancelled {
			t.progress = anim.Progress(cd.start, cd.duration, now)
			if err := t.surface.SetProgress(t.progress); err != nil {
				s.logger.Debug("failed to update toast progress", "id", t.id, "error", err)
			}
			if t.progress >= 1 {
				s.beginExitLocked(t, now, ReasonExpired)
			}
		}

		switch t.state {
		case StateEntering:
			t.x = t.entryX.Value(now)
			t.alpha = t.entryAlpha.Value(now)
			if t.entryX.Done(now) && t.entryAlpha.Done(now) {
				t.state = StateVisible
			}
		case StateExiting:
			t.x = t.exitX.Value(now)
			t.alpha = t.exitAlpha.Value(now)
			if t.exitX.Done(now) && t.exitAlpha.Done(now) {
				s.destroyLocked(t)
				events = append(events, closeEvent{id: t.id, reason: t.closeReason})
				removed = true
				continue
			}
		}

		if t.restacking && !now.Before(t.restackAt) {
			y, done := anim.Approach(t.y, t.targetY, s.cfg.RestackRatio, s.cfg.SnapThreshold)
			t.y = y
			t.restacking = !done
		}

		s.drawLocked(t)
		live = append(live, t)
	}

	clear(s.toasts[len(live):])
	s.toasts = live

	if removed {
		s.restackLocked(now)
	}
	return events
}

// beginExitLocked cancels the countdown and starts the exit slide.
func (s *Stack) beginExitLocked(t *toast, now time.Time, reason CloseReason) {
	if cd := s.countdowns[t.id]; cd != nil {
		cd.cancelled = true
	}
	t.state = StateExiting
	t.closeReason = reason

	step := s.cfg.StepInterval.Duration()
	distance := float64(s.layout.EdgeDirection() * s.cfg.ExitDistance)
	t.exitX = anim.New(now, s.cfg.ExitSteps, step, t.x, t.x+distance, easing.EaseInCubic)
	t.exitAlpha = anim.New(now, s.cfg.ExitSteps, step, t.alpha, 0, easing.EaseLinear)
}

// restackLocked retargets every toast at the slot matching its index.
// Movement starts after the restack delay.
func (s *Stack) restackLocked(now time.Time) {
	for i, t := range s.toasts {
		_, y := s.layout.Slot(i)
		if float64(y) == t.targetY {
			continue
		}
		t.targetY = float64(y)
		t.restacking = true
		t.restackAt = now.Add(s.cfg.RestackDelay.Duration())
	}
}

// removeLocked drops the toast at index immediately and restacks.
func (s *Stack) removeLocked(index int, now time.Time) {
	t := s.toasts[index]
	s.destroyLocked(t)
	s.toasts = append(s.toasts[:index], s.toasts[index+1:]...)
	s.restackLocked(now)
}

func (s *Stack) destroyLocked(t *toast) {
	t.state = StateClosed
	delete(s.countdowns, t.id)
	if t.surface.Exists() {
		if err := t.surface.Destroy(); err != nil {
			s.logger.Debug("failed to destroy toast surface", "id", t.id, "error", err)
		}
	}
}

func (s *Stack) closeAllLocked() []closeEvent {
	events := make([]closeEvent, 0, len(s.toasts))
	for _, t := range s.toasts {
		s.destroyLocked(t)
		events = append(events, closeEvent{id: t.id, reason: ReasonRequested})
	}
	s.toasts = nil
	if s.handle != 0 {
		s.clk.Cancel(s.handle)
		s.handle = 0
	}
	return events
}

// drawLocked pushes position and alpha to the surface when they change.
func (s *Stack) drawLocked(t *toast) {
	x, y := int(math.Round(t.x)), int(math.Round(t.y))
	if x != t.drawnX || y != t.drawnY {
		if err := t.surface.Move(x, y); err != nil {
			s.logger.Debug("failed to move toast", "id", t.id, "error", err)
		} else {
			t.drawnX, t.drawnY = x, y
		}
	}
	if t.alpha != t.drawnAlpha {
		if err := t.surface.SetAlpha(t.alpha); err != nil {
			s.logger.Debug("failed to set toast alpha", "id", t.id, "error", err)
		} else {
			t.drawnAlpha = t.alpha
		}
	}
}

func (s *Stack) findLocked(id ID) (*toast, int) {
	for i, t := range s.toasts {
		if t.id == id {
			return t, i
		}
	}
	return nil, -1
}

// armLocked schedules the next stack tick unless one is pending.
func (s *Stack) armLocked() {
	if s.handle != 0 || s.stopped {
		return
	}
	s.handle = s.clk.AfterFunc(s.cfg.FrameInterval.Duration(), s.onTick)
}

func (s *Stack) notifyClosed(events []closeEvent) {
	if len(events) == 0 {
		return
	}

	s.mu.Lock()
	callbacks := make([]CloseFunc, len(s.onClose))
	copy(callbacks, s.onClose)
	s.mu.Unlock()

	for _, e := range events {
		s.logger.Debug("toast closed", "id", e.id, "reason", e.reason)
		for _, cb := range callbacks {
			cb(e.id, e.reason)
		}
	}
}
