package theme

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmylchreest/cliv/internal/config"
)

// Loader resolves palettes by name with hot-reload support.
type Loader struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	themesDir string
	palette   Palette
	path      string // Empty for bundled palettes
	watcher   *Watcher
}

// NewLoader creates a new palette loader holding the default palette.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	themesDir, err := ThemesDir()
	if err != nil {
		logger.Warn("failed to get themes directory", "error", err)
		themesDir = ""
	}

	return &Loader{
		logger:    logger,
		themesDir: themesDir,
		palette:   DefaultPalette(),
	}
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cliv", "themes"), nil
}

// SetThemesDir overrides the user themes directory.
func (l *Loader) SetThemesDir(dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.themesDir = dir
}

// Resolve returns the palette named by cfg.Name, or the palette built from
// the config colors when no name is set.
func (l *Loader) Resolve(cfg config.ThemeConfig) (Palette, error) {
	if cfg.Name == "" {
		p, err := FromConfig(cfg)
		if err != nil {
			return Palette{}, err
		}
		l.mu.Lock()
		l.palette = p
		l.path = ""
		l.mu.Unlock()
		return p, nil
	}
	return l.Load(cfg.Name)
}

// Load loads a palette by name.
// Resolution order:
//  1. User themes directory (~/.config/cliv/themes/<name>.toml)
//  2. Bundled palettes
func (l *Loader) Load(name string) (Palette, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if name == "" {
		name = DefaultPaletteName
	}

	if l.themesDir != "" {
		path := filepath.Join(l.themesDir, name+".toml")
		if data, err := os.ReadFile(path); err == nil {
			p, err := ParsePalette(name, data)
			if err != nil {
				l.logger.Warn("failed to load user palette, trying bundled", "theme", name, "error", err)
			} else {
				l.palette = p
				l.path = path
				l.logger.Info("loaded user palette", "name", name, "path", path)
				return p, nil
			}
		}
	}

	if data, found := GetEmbeddedPalette(name); found {
		p, err := ParsePalette(name, data)
		if err != nil {
			return Palette{}, err
		}
		l.palette = p
		l.path = ""
		l.logger.Debug("loaded bundled palette", "name", name)
		return p, nil
	}

	return Palette{}, fmt.Errorf("palette %q not found", name)
}

// Current returns the most recently loaded palette.
func (l *Loader) Current() Palette {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.palette
}

// ListPalettes returns bundled and user palette names without duplicates.
func (l *Loader) ListPalettes() []string {
	seen := make(map[string]bool)
	var names []string

	for _, name := range ListEmbeddedPalettes() {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	l.mu.RLock()
	dir := l.themesDir
	l.mu.RUnlock()
	if dir == "" {
		return names
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		l.logger.Debug("failed to read themes directory", "error", err)
		return names
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".toml" {
			continue
		}
		name = name[:len(name)-len(".toml")]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// StartHotReload watches the current user palette file and calls onChange
// with the reparsed palette. Bundled palettes are not watched.
func (l *Loader) StartHotReload(ctx context.Context, onChange func(Palette)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.path == "" {
		l.logger.Debug("not starting hot-reload for bundled palette")
		return
	}

	if l.watcher != nil {
		l.watcher.Stop()
	}

	name := l.palette.Name
	l.watcher = NewWatcher(l.path, l.logger)
	l.watcher.SetChangeCallback(func(data []byte) {
		p, err := ParsePalette(name, data)
		if err != nil {
			l.logger.Warn("failed to reload palette", "name", name, "error", err)
			return
		}
		l.mu.Lock()
		l.palette = p
		l.mu.Unlock()
		l.logger.Info("hot-reloaded palette", "name", name)
		if onChange != nil {
			onChange(p)
		}
	})

	if err := l.watcher.Start(ctx); err != nil {
		l.logger.Warn("failed to start palette watcher", "error", err)
	}
}

// StopHotReload stops watching the palette file.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}
