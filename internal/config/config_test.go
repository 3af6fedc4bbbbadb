package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 450, cfg.Menu.Width)
	assert.Equal(t, 720, cfg.Menu.Height)
	assert.Equal(t, "Insert", cfg.Menu.Hotkey)
	assert.Equal(t, 40, cfg.Particles.Count)
	assert.Equal(t, 30*time.Millisecond, cfg.Particles.Interval.Duration())
	assert.Equal(t, "bottom-right", cfg.Toasts.Position)
	assert.Equal(t, 320, cfg.Toasts.Width)
	assert.Equal(t, 90, cfg.Toasts.Height)
	assert.Equal(t, 10, cfg.Toasts.Gap)
	assert.InDelta(t, 0.95, cfg.Toasts.Opacity, 1e-9)
	assert.Equal(t, 16*time.Millisecond, cfg.Toasts.FrameInterval.Duration())
	assert.Equal(t, 50*time.Millisecond, cfg.Toasts.RestackDelay.Duration())
	assert.Equal(t, 50, cfg.Audio.Volume)
	assert.True(t, cfg.DBus.Enabled)
	assert.Equal(t, DBusModeServer, cfg.DBus.Mode)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/cliv.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cliv.toml")

	content := `
[menu]
title = "Overlay Menu"
hotkey = "Mod4-m"

[particles]
count = 80
interval = "40ms"

[toasts]
position = "top-left"
default_duration = 5000

[overlay]
process = "firefox"
alpha = 0.5

[audio]
volume = 75
music = "~/music/theme.mp3"

[audio.sounds]
error = "/usr/share/sounds/error.wav"

[theme]
color = "#ff0000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Overlay Menu", cfg.Menu.Title)
	assert.Equal(t, "Mod4-m", cfg.Menu.Hotkey)
	assert.Equal(t, 80, cfg.Particles.Count)
	assert.Equal(t, 40*time.Millisecond, cfg.Particles.Interval.Duration())
	assert.Equal(t, "top-left", cfg.Toasts.Position)
	assert.Equal(t, 5*time.Second, cfg.Toasts.DefaultDuration.Duration())
	assert.Equal(t, "firefox", cfg.Overlay.Process)
	assert.InDelta(t, 0.5, cfg.Overlay.Alpha, 1e-9)
	assert.Equal(t, 75, cfg.Audio.Volume)
	assert.Equal(t, "/usr/share/sounds/error.wav", cfg.SoundForKind("error"))
	assert.Equal(t, "#ff0000", cfg.Theme.Color)

	// Untouched fields keep their defaults
	assert.Equal(t, 320, cfg.Toasts.Width)
	assert.Equal(t, "#2ecc71", cfg.Theme.Success)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cliv.toml")

	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cliv.toml")

	require.NoError(t, os.WriteFile(path, []byte("[overlay]\nalpha = 1.5\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)

	var verr *ValueError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "overlay.alpha", verr.Field)
	assert.Equal(t, 1.5, verr.Value)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"menu opacity above one", func(c *Config) { c.Menu.Opacity = 1.2 }, "menu.opacity"},
		{"menu too narrow", func(c *Config) { c.Menu.Width = 10 }, "menu.width"},
		{"negative particle count", func(c *Config) { c.Particles.Count = -1 }, "particles.count"},
		{"speed min above max", func(c *Config) { c.Particles.SpeedMin = 2 }, "particles.speed_min"},
		{"zero particle interval", func(c *Config) { c.Particles.Interval = 0 }, "particles.interval"},
		{"bad position", func(c *Config) { c.Toasts.Position = "middle" }, "toasts.position"},
		{"toast opacity negative", func(c *Config) { c.Toasts.Opacity = -0.1 }, "toasts.opacity"},
		{"restack ratio zero", func(c *Config) { c.Toasts.RestackRatio = 0 }, "toasts.restack_ratio"},
		{"overlay alpha", func(c *Config) { c.Overlay.Alpha = 1.5 }, "overlay.alpha"},
		{"volume", func(c *Config) { c.Audio.Volume = 101 }, "audio.volume"},
		{"theme color", func(c *Config) { c.Theme.Color = "purple" }, "theme.color"},
		{"dbus mode", func(c *Config) { c.DBus.Mode = "proxy" }, "dbus.mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verr *ValueError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCheckUnit(t *testing.T) {
	assert.NoError(t, CheckUnit("alpha", 0))
	assert.NoError(t, CheckUnit("alpha", 0.5))
	assert.NoError(t, CheckUnit("alpha", 1))

	err := CheckUnit("alpha", 1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha")
	assert.Contains(t, err.Error(), "1.5")
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "cliv.toml")

	cfg := DefaultConfig()
	cfg.Overlay.Process = "code"
	cfg.Toasts.RestackDelay = Duration(80 * time.Millisecond)

	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "code", loaded.Overlay.Process)
	assert.Equal(t, 80*time.Millisecond, loaded.Toasts.RestackDelay.Duration())
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"16", 16 * time.Millisecond, false},
		{"16ms", 16 * time.Millisecond, false},
		{"3s", 3 * time.Second, false},
		{"1m", time.Minute, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Duration())
		})
	}
}

func TestSoundForKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audio.Sounds = SoundConfig{
		Info:    "/s/info.wav",
		Success: "/s/success.wav",
		Warning: "/s/warning.wav",
		Error:   "/s/error.wav",
	}

	assert.Equal(t, "/s/info.wav", cfg.SoundForKind("info"))
	assert.Equal(t, "/s/success.wav", cfg.SoundForKind("success"))
	assert.Equal(t, "/s/warning.wav", cfg.SoundForKind("warning"))
	assert.Equal(t, "/s/error.wav", cfg.SoundForKind("error"))
	assert.Equal(t, "/s/info.wav", cfg.SoundForKind("bogus"))
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/cliv/cliv.toml", ConfigPath())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "a.wav"), ExpandPath("~/a.wav"))
	assert.Equal(t, "/abs/a.wav", ExpandPath("/abs/a.wav"))
}
