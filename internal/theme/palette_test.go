package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cliv/internal/config"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		hex     string
		wantErr bool
	}{
		{"#3498db", "#3498db", false},
		{"red", "#ff0000", false},
		{"Lime", "#00ff00", false},
		{" white ", "#ffffff", false},
		{"#zzzzzz", "", true},
		{"chartreuse-ish", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseColor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hex, c.Hex())
		})
	}
}

func TestFromConfig(t *testing.T) {
	p, err := FromConfig(config.DefaultConfig().Theme)
	require.NoError(t, err)

	assert.Equal(t, "#8e44ad", p.Accent.Hex())
	assert.Equal(t, "#3498db", p.KindColor("info").Hex())
	assert.Equal(t, "#2ecc71", p.KindColor("success").Hex())
	assert.Equal(t, "#f39c12", p.KindColor("warning").Hex())
	assert.Equal(t, "#e74c3c", p.KindColor("error").Hex())
	assert.Equal(t, "#3498db", p.KindColor("unknown").Hex())

	cfg := config.DefaultConfig().Theme
	cfg.Warning = "not-a-color"
	_, err = FromConfig(cfg)
	assert.ErrorContains(t, err, "warning")
}

func TestPixel(t *testing.T) {
	c, err := ParseColor("#3498db")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x3498db), Pixel(c))
}

func TestDim(t *testing.T) {
	c, err := ParseColor("#ffffff")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), Pixel(Dim(c, 1)))
	assert.Equal(t, uint32(0xffffff), Pixel(Dim(c, 0)))
}

func TestParsePalette_PartialFallsBack(t *testing.T) {
	p, err := ParsePalette("mine", []byte(`accent = "#123456"`))
	require.NoError(t, err)
	assert.Equal(t, "#123456", p.Accent.Hex())
	assert.Equal(t, DefaultPalette().Info, p.Info)

	_, err = ParsePalette("broken", []byte(`accent = `))
	assert.Error(t, err)
}

func TestLoader_Resolution(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ocean.toml"), []byte(`accent = "#000001"`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.toml"), []byte(`accent = "#000002"`), 0644))

	l := NewLoader(nil)
	l.SetThemesDir(dir)

	// User file overrides the bundled palette of the same name.
	p, err := l.Load("ocean")
	require.NoError(t, err)
	assert.Equal(t, "#000001", p.Accent.Hex())

	p, err = l.Load("crimson")
	require.NoError(t, err)
	assert.Equal(t, "#c0392b", p.Accent.Hex())
	assert.Equal(t, p, l.Current())

	_, err = l.Load("missing")
	assert.Error(t, err)

	names := l.ListPalettes()
	assert.Contains(t, names, "mine")
	assert.Contains(t, names, "default")
	assert.Len(t, names, 4)
}

func TestLoader_Resolve(t *testing.T) {
	l := NewLoader(nil)
	l.SetThemesDir(t.TempDir())

	cfg := config.DefaultConfig().Theme
	cfg.Color = "#abcdef"
	p, err := l.Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", p.Accent.Hex())

	cfg.Name = "ocean"
	p, err = l.Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ocean", p.Name)
	assert.Equal(t, "#1abc9c", p.Accent.Hex())
}

func TestLoader_HotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.toml")
	require.NoError(t, os.WriteFile(path, []byte(`accent = "#000001"`), 0644))

	l := NewLoader(nil)
	l.SetThemesDir(dir)
	_, err := l.Load("mine")
	require.NoError(t, err)

	changed := make(chan Palette, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l.StartHotReload(ctx, func(p Palette) { changed <- p })
	defer l.StopHotReload()

	require.NoError(t, os.WriteFile(path, []byte(`accent = "#000003"`), 0644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case p := <-changed:
		assert.Equal(t, "#000003", p.Accent.Hex())
		assert.Equal(t, p, l.Current())
	case <-time.After(5 * time.Second):
		t.Fatal("palette change not detected")
	}
}
