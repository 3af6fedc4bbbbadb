package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/jmylchreest/cliv/internal/config"
)

// Manager plays the configured sound for each toast kind.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
	config  *config.Config

	// Kind to sound path mapping
	sounds map[string]string
}

// NewManager creates a new audio manager.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	player := NewPlayer(logger)

	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		config:  cfg,
		sounds:  make(map[string]string),
	}

	m.loadSoundConfig()

	return m
}

// loadSoundConfig resolves the per-kind sounds from the configuration.
func (m *Manager) loadSoundConfig() {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Config uses 0-100, the player 0.0-1.0
	m.player.SetVolume(float64(m.config.Audio.Volume) / 100.0)

	m.sounds = make(map[string]string)
	for _, kind := range []string{"info", "success", "warning", "error"} {
		path := m.config.SoundForKind(kind)
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "kind", kind, "path", path)
			continue
		}

		m.sounds[kind] = path
		m.logger.Debug("loaded sound", "kind", kind, "path", path)
	}
}

// Sounds returns a copy of the resolved kind to path mapping.
func (m *Manager) Sounds() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sounds := make(map[string]string, len(m.sounds))
	maps.Copy(sounds, m.sounds)
	return sounds
}

// Start preloads the sounds and starts the file watcher.
func (m *Manager) Start(ctx context.Context) error {
	sounds := m.Sounds()
	m.preload(sounds)

	if err := m.watcher.Start(ctx); err != nil {
		return err
	}

	m.logger.Info("audio manager started", "sounds", len(sounds))
	return nil
}

func (m *Manager) preload(sounds map[string]string) {
	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}
}

// Stop shuts down the audio manager and releases the audio device.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.ClearCache()
	closeSpeaker()
	m.logger.Debug("audio manager stopped")
}

// PlayForKind plays the sound configured for the given toast kind.
// A kind with no configured sound is silent.
func (m *Manager) PlayForKind(kind string) error {
	m.mu.RLock()
	enabled := m.config.Audio.Enabled
	path, ok := m.sounds[kind]
	m.mu.RUnlock()

	if !enabled {
		return nil
	}
	if !ok {
		m.logger.Debug("no sound configured for kind", "kind", kind)
		return nil
	}

	return m.player.Play(path)
}

// PlayFile plays a specific sound file.
func (m *Manager) PlayFile(path string) error {
	m.mu.RLock()
	enabled := m.config.Audio.Enabled
	m.mu.RUnlock()

	if !enabled {
		return nil
	}
	return m.player.Play(path)
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (m *Manager) SetVolume(volume float64) {
	m.player.SetVolume(volume)
}

// GetVolume returns the current volume.
func (m *Manager) GetVolume() float64 {
	return m.player.GetVolume()
}

// Reload re-reads the sound configuration and refreshes the cache.
func (m *Manager) Reload() {
	for _, path := range m.Sounds() {
		m.watcher.Unwatch(path)
	}
	m.player.ClearCache()
	m.loadSoundConfig()
	m.preload(m.Sounds())

	m.logger.Debug("audio manager reloaded")
}

// UpdateConfig swaps the configuration and reloads sounds.
// This is called when the config file is hot-reloaded.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.logger.Debug("audio manager config updated")
	m.Reload()
}
