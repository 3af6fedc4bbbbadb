// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
)

// Config is the configuration for cliv.
// Loaded from ~/.config/cliv/cliv.toml
type Config struct {
	Menu      MenuConfig     `toml:"menu"`
	Particles ParticleConfig `toml:"particles"`
	Toasts    ToastConfig    `toml:"toasts"`
	Overlay   OverlayConfig  `toml:"overlay"`
	Audio     AudioConfig    `toml:"audio"`
	Theme     ThemeConfig    `toml:"theme"`
	DBus      DBusConfig     `toml:"dbus"`
}

// MenuConfig contains settings for the host menu window.
type MenuConfig struct {
	Title         string  `toml:"title"`
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	Opacity       float64 `toml:"opacity"`        // 0.0-1.0
	Hotkey        string  `toml:"hotkey"`         // X11 key name, e.g. "Insert" or "Mod4-m"
	StartupNotice bool    `toml:"startup_notice"` // Toast with the hotkey hint on start
}

// ParticleConfig contains settings for the background particle field.
type ParticleConfig struct {
	Count    int      `toml:"count"`
	SpeedMin float64  `toml:"speed_min"` // Pixels per tick
	SpeedMax float64  `toml:"speed_max"`
	Color    string   `toml:"color"`
	Size     int      `toml:"size"` // Sprite edge in pixels
	Interval Duration `toml:"interval"`
}

// ToastConfig contains toast notification settings.
type ToastConfig struct {
	Position        string   `toml:"position"`         // "bottom-right", "top-left", etc.
	Width           int      `toml:"width"`            // Toast width in pixels
	Height          int      `toml:"height"`           // Toast height in pixels
	Gap             int      `toml:"gap"`              // Gap between stacked toasts
	MarginX         int      `toml:"margin_x"`         // Pixels from the screen edge
	MarginY         int      `toml:"margin_y"`         // Pixels from the screen edge
	DefaultDuration Duration `toml:"default_duration"` // Used when Show gets a zero duration
	Opacity         float64  `toml:"opacity"`          // Alpha once the entry animation completes
	EntrySteps      int      `toml:"entry_steps"`
	ExitSteps       int      `toml:"exit_steps"`
	StepInterval    Duration `toml:"step_interval"`  // Time per entry/exit step
	FrameInterval   Duration `toml:"frame_interval"` // Stack tick cadence
	ExitDistance    int      `toml:"exit_distance"`  // Pixels travelled by the exit slide
	RestackDelay    Duration `toml:"restack_delay"`
	RestackRatio    float64  `toml:"restack_ratio"`  // Fraction of remaining distance per tick
	SnapThreshold   float64  `toml:"snap_threshold"` // Pixels
}

// OverlayConfig contains settings for the process-following overlay.
type OverlayConfig struct {
	Process    string   `toml:"process"`    // Target process name, e.g. "firefox"
	Background string   `toml:"background"` // Overlay background color
	Alpha      float64  `toml:"alpha"`      // 0.0-1.0
	Interval   Duration `toml:"interval"`
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled  bool        `toml:"enabled"`
	Volume   int         `toml:"volume"` // 0-100
	Music    string      `toml:"music"`  // Music file for the player
	Loop     bool        `toml:"loop"`
	Autoplay bool        `toml:"autoplay"`
	Sounds   SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-kind sound file paths.
type SoundConfig struct {
	Info    string `toml:"info"`
	Success string `toml:"success"`
	Warning string `toml:"warning"`
	Error   string `toml:"error"`
}

// ThemeConfig contains color settings.
type ThemeConfig struct {
	Name       string `toml:"name"`       // Bundled or user palette; overrides the colors below
	Color      string `toml:"color"`      // Accent color
	Background string `toml:"background"` // Window background
	Surface    string `toml:"surface"`    // Toast body
	Text       string `toml:"text"`
	Info       string `toml:"info"`
	Success    string `toml:"success"`
	Warning    string `toml:"warning"`
	Error      string `toml:"error"`
}

// DBusConfig controls the org.freedesktop.Notifications integration.
type DBusConfig struct {
	Enabled bool   `toml:"enabled"`
	Mode    string `toml:"mode"` // "server" owns the bus name, "monitor" mirrors another daemon
}

// D-Bus integration modes.
const (
	DBusModeServer  = "server"
	DBusModeMonitor = "monitor"
)

// Position represents a toast stack anchor corner.
type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTopRight    Position = "top-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottomRight Position = "bottom-right"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionBottomLeft,
		PositionBottomRight,
	}
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Menu: MenuConfig{
			Title:         "CLIV",
			Width:         450,
			Height:        720,
			Opacity:       1.0,
			Hotkey:        "Insert",
			StartupNotice: true,
		},
		Particles: ParticleConfig{
			Count:    40,
			SpeedMin: 0.2,
			SpeedMax: 0.8,
			Color:    "#ffffff",
			Size:     2,
			Interval: Duration(30 * time.Millisecond),
		},
		Toasts: DefaultToastConfig(),
		Overlay: OverlayConfig{
			Background: "#000000",
			Alpha:      0.3,
			Interval:   Duration(16 * time.Millisecond),
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  50,
			Loop:    true,
		},
		Theme: ThemeConfig{
			Color:      "#8e44ad",
			Background: "#05050a",
			Surface:    "#1a1a1a",
			Text:       "#ffffff",
			Info:       "#3498db",
			Success:    "#2ecc71",
			Warning:    "#f39c12",
			Error:      "#e74c3c",
		},
		DBus: DBusConfig{
			Enabled: true,
			Mode:    DBusModeServer,
		},
	}
}

// DefaultToastConfig returns the default toast settings.
func DefaultToastConfig() ToastConfig {
	return ToastConfig{
		Position:        string(PositionBottomRight),
		Width:           320,
		Height:          90,
		Gap:             10,
		MarginX:         20,
		MarginY:         60,
		DefaultDuration: Duration(3 * time.Second),
		Opacity:         0.95,
		EntrySteps:      15,
		ExitSteps:       15,
		StepInterval:    Duration(15 * time.Millisecond),
		FrameInterval:   Duration(16 * time.Millisecond),
		ExitDistance:    350,
		RestackDelay:    Duration(50 * time.Millisecond),
		RestackRatio:    0.3,
		SnapThreshold:   2,
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "cliv", "cliv.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns the default config if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path atomically.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := CheckUnit("menu.opacity", c.Menu.Opacity); err != nil {
		return err
	}
	if err := checkRange("menu.width", c.Menu.Width, 100, 4000); err != nil {
		return err
	}
	if err := checkRange("menu.height", c.Menu.Height, 100, 4000); err != nil {
		return err
	}

	if c.Particles.Count < 0 {
		return &ValueError{Field: "particles.count", Value: c.Particles.Count, Reason: "must not be negative"}
	}
	if c.Particles.SpeedMin < 0 || c.Particles.SpeedMin > c.Particles.SpeedMax {
		return &ValueError{
			Field:  "particles.speed_min",
			Value:  c.Particles.SpeedMin,
			Reason: fmt.Sprintf("must be between 0 and speed_max (%v)", c.Particles.SpeedMax),
		}
	}
	if c.Particles.Interval <= 0 {
		return &ValueError{Field: "particles.interval", Value: c.Particles.Interval.Duration(), Reason: "must be positive"}
	}

	if err := c.Toasts.Validate(); err != nil {
		return err
	}

	if err := CheckUnit("overlay.alpha", c.Overlay.Alpha); err != nil {
		return err
	}
	if c.Overlay.Interval <= 0 {
		return &ValueError{Field: "overlay.interval", Value: c.Overlay.Interval.Duration(), Reason: "must be positive"}
	}

	if err := checkRange("audio.volume", c.Audio.Volume, 0, 100); err != nil {
		return err
	}

	if c.DBus.Mode != DBusModeServer && c.DBus.Mode != DBusModeMonitor {
		return &ValueError{Field: "dbus.mode", Value: c.DBus.Mode, Reason: "must be \"server\" or \"monitor\""}
	}

	colors := map[string]string{
		"particles.color":    c.Particles.Color,
		"overlay.background": c.Overlay.Background,
		"theme.color":        c.Theme.Color,
		"theme.background":   c.Theme.Background,
		"theme.surface":      c.Theme.Surface,
		"theme.text":         c.Theme.Text,
		"theme.info":         c.Theme.Info,
		"theme.success":      c.Theme.Success,
		"theme.warning":      c.Theme.Warning,
		"theme.error":        c.Theme.Error,
	}
	for field, value := range colors {
		if _, err := colorful.Hex(value); err != nil {
			return &ValueError{Field: field, Value: value, Reason: "must be a #rrggbb color"}
		}
	}

	return nil
}

// Validate checks the toast settings.
func (t ToastConfig) Validate() error {
	validPos := false
	for _, p := range ValidPositions() {
		if t.Position == string(p) {
			validPos = true
			break
		}
	}
	if !validPos {
		return &ValueError{Field: "toasts.position", Value: t.Position, Reason: fmt.Sprintf("must be one of %v", ValidPositions())}
	}

	if err := checkRange("toasts.width", t.Width, 100, 1000); err != nil {
		return err
	}
	if err := checkRange("toasts.height", t.Height, 20, 600); err != nil {
		return err
	}
	if t.Gap < 0 {
		return &ValueError{Field: "toasts.gap", Value: t.Gap, Reason: "must not be negative"}
	}
	if err := CheckUnit("toasts.opacity", t.Opacity); err != nil {
		return err
	}
	if t.EntrySteps < 0 || t.ExitSteps < 0 {
		return &ValueError{Field: "toasts.entry_steps", Value: fmt.Sprintf("%d/%d", t.EntrySteps, t.ExitSteps), Reason: "steps must not be negative"}
	}
	if t.DefaultDuration <= 0 {
		return &ValueError{Field: "toasts.default_duration", Value: t.DefaultDuration.Duration(), Reason: "must be positive"}
	}
	if t.FrameInterval <= 0 {
		return &ValueError{Field: "toasts.frame_interval", Value: t.FrameInterval.Duration(), Reason: "must be positive"}
	}
	if t.RestackRatio <= 0 || t.RestackRatio > 1 {
		return &ValueError{Field: "toasts.restack_ratio", Value: t.RestackRatio, Reason: "must be in (0, 1]"}
	}
	return nil
}

// SoundForKind returns the sound file path for the given toast kind.
// Expands ~ to the home directory.
func (c *Config) SoundForKind(kind string) string {
	var path string
	switch kind {
	case "success":
		path = c.Audio.Sounds.Success
	case "warning":
		path = c.Audio.Sounds.Warning
	case "error":
		path = c.Audio.Sounds.Error
	default:
		path = c.Audio.Sounds.Info
	}
	return ExpandPath(path)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
