// Package particle implements the drifting background particle field drawn
// behind the menu window.
package particle

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jmylchreest/cliv/internal/clock"
	"github.com/jmylchreest/cliv/internal/platform"
)

// DefaultInterval is the field redraw cadence.
const DefaultInterval = 30 * time.Millisecond

const (
	minOpacity = 0.3
	maxOpacity = 1.0
)

// SpriteID identifies a sprite created by a SpriteRenderer.
type SpriteID uint32

// Sprite describes a sprite to create.
type Sprite struct {
	X, Y    float64
	Size    int
	Color   string
	Opacity float64
}

// SpriteRenderer draws particles on the host window.
type SpriteRenderer interface {
	NewSprite(s Sprite) (SpriteID, error)
	MoveSprite(id SpriteID, x, y float64) error
	RemoveSprite(id SpriteID) error
}

// Options configures a Field.
type Options struct {
	Count    int
	Bounds   platform.Rect // Only Width and Height are used
	SpeedMin float64
	SpeedMax float64
	Color    string
	Size     int
	Interval time.Duration
	Rand     *rand.Rand // Optional; seeded randomly when nil
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Count < 0 {
		return fmt.Errorf("particle count must not be negative, got %d", o.Count)
	}
	if o.Bounds.Width <= 0 || o.Bounds.Height <= 0 {
		return fmt.Errorf("particle bounds must be positive, got %s", o.Bounds)
	}
	if o.SpeedMin < 0 || o.SpeedMax < 0 {
		return fmt.Errorf("particle speeds must not be negative, got %v..%v", o.SpeedMin, o.SpeedMax)
	}
	if o.SpeedMin > o.SpeedMax {
		return fmt.Errorf("particle speed_min %v exceeds speed_max %v", o.SpeedMin, o.SpeedMax)
	}
	return nil
}

// Particle is a single drifting sprite.
type Particle struct {
	ID      SpriteID
	X       float64
	Y       float64
	Speed   float64
	Opacity float64
}

type state int

const (
	stateIdle state = iota
	stateRunning
	statePaused
	stateStopped
)

// Field owns a fixed set of particles drifting upward and wrapping at the top.
type Field struct {
	opts     Options
	renderer SpriteRenderer
	clk      clock.Clock
	logger   *slog.Logger
	rng      *rand.Rand

	mu        sync.Mutex
	particles []Particle
	state     state
	handle    clock.Handle
}

// NewField creates the particles and their sprites.
func NewField(opts Options, renderer SpriteRenderer, clk clock.Clock, logger *slog.Logger) (*Field, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Size <= 0 {
		opts.Size = 2
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	f := &Field{
		opts:      opts,
		renderer:  renderer,
		clk:       clk,
		logger:    logger,
		rng:       rng,
		particles: make([]Particle, 0, opts.Count),
	}

	w, h := float64(opts.Bounds.Width), float64(opts.Bounds.Height)
	for range opts.Count {
		p := Particle{
			X:       f.rng.Float64() * w,
			Y:       f.rng.Float64() * h,
			Speed:   opts.SpeedMin + f.rng.Float64()*(opts.SpeedMax-opts.SpeedMin),
			Opacity: minOpacity + f.rng.Float64()*(maxOpacity-minOpacity),
		}
		id, err := renderer.NewSprite(Sprite{
			X:       p.X,
			Y:       p.Y,
			Size:    opts.Size,
			Color:   opts.Color,
			Opacity: p.Opacity,
		})
		if err != nil {
			f.releaseSprites()
			return nil, fmt.Errorf("failed to create particle sprite: %w", err)
		}
		p.ID = id
		f.particles = append(f.particles, p)
	}

	logger.Debug("particle field created",
		"count", opts.Count,
		"bounds", opts.Bounds.String(),
	)

	return f, nil
}

// Start begins ticking. Calling Start on a running field does nothing.
func (f *Field) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != stateIdle && f.state != statePaused {
		return
	}
	f.state = stateRunning
	f.armLocked()
}

// Pause stops ticking while the host window is hidden.
func (f *Field) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != stateRunning {
		return
	}
	f.state = statePaused
	f.disarmLocked()
}

// Resume restarts ticking after Pause.
func (f *Field) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != statePaused {
		return
	}
	f.state = stateRunning
	f.armLocked()
}

// Stop halts the field for good and removes its sprites.
func (f *Field) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == stateStopped {
		return
	}
	f.state = stateStopped
	f.disarmLocked()
	f.releaseSprites()
}

// Running reports whether the field is ticking.
func (f *Field) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == stateRunning
}

// Particles returns a copy of the current particles.
func (f *Field) Particles() []Particle {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Tick advances every particle by one step. It does nothing unless the
// field is running.
func (f *Field) Tick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != stateRunning {
		return
	}
	f.stepLocked()
}

func (f *Field) stepLocked() {
	w, h := float64(f.opts.Bounds.Width), float64(f.opts.Bounds.Height)

	var errs []error
	for i := range f.particles {
		p := &f.particles[i]
		p.Y -= p.Speed
		if p.Y < 0 {
			p.Y = h
			p.X = f.rng.Float64() * w
		}
		if err := f.renderer.MoveSprite(p.ID, p.X, p.Y); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		f.logger.Warn("particle redraw failed",
			"failures", len(errs),
			"error", errors.Join(errs...),
		)
	}
}

func (f *Field) armLocked() {
	f.handle = f.clk.AfterFunc(f.opts.Interval, f.onTick)
}

func (f *Field) disarmLocked() {
	if f.handle != 0 {
		f.clk.Cancel(f.handle)
		f.handle = 0
	}
}

func (f *Field) onTick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handle = 0
	if f.state != stateRunning {
		return
	}
	f.stepLocked()
	f.armLocked()
}

func (f *Field) releaseSprites() {
	for _, p := range f.particles {
		if err := f.renderer.RemoveSprite(p.ID); err != nil {
			f.logger.Debug("failed to remove particle sprite", "id", p.ID, "error", err)
		}
	}
	f.particles = nil
}
