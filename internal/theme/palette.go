package theme

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/cliv/internal/config"
)

// Palette is a resolved set of colors.
type Palette struct {
	Name       string
	Accent     colorful.Color
	Background colorful.Color
	Surface    colorful.Color
	Text       colorful.Color
	Info       colorful.Color
	Success    colorful.Color
	Warning    colorful.Color
	Error      colorful.Color
}

// paletteFile is the on-disk palette format.
type paletteFile struct {
	Accent     string `toml:"accent"`
	Background string `toml:"background"`
	Surface    string `toml:"surface"`
	Text       string `toml:"text"`
	Info       string `toml:"info"`
	Success    string `toml:"success"`
	Warning    string `toml:"warning"`
	Error      string `toml:"error"`
}

// namedColors are the color names accepted besides #rrggbb.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"lime":    "#00ff00",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"gray":    "#808080",
	"grey":    "#808080",
}

// ParseColor parses a #rrggbb, #rgb or named color.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if hex, ok := namedColors[strings.ToLower(s)]; ok {
		s = hex
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// FromConfig builds a palette from the colors in the [theme] section.
func FromConfig(cfg config.ThemeConfig) (Palette, error) {
	return fromFile("config", paletteFile{
		Accent:     cfg.Color,
		Background: cfg.Background,
		Surface:    cfg.Surface,
		Text:       cfg.Text,
		Info:       cfg.Info,
		Success:    cfg.Success,
		Warning:    cfg.Warning,
		Error:      cfg.Error,
	})
}

// ParsePalette parses a TOML palette. Missing colors fall back to the
// default palette.
func ParsePalette(name string, data []byte) (Palette, error) {
	f := defaultPaletteFile()
	if err := toml.Unmarshal(data, &f); err != nil {
		return Palette{}, fmt.Errorf("failed to parse palette %s: %w", name, err)
	}
	return fromFile(name, f)
}

func fromFile(name string, f paletteFile) (Palette, error) {
	p := Palette{Name: name}
	fields := []struct {
		field string
		value string
		dst   *colorful.Color
	}{
		{"accent", f.Accent, &p.Accent},
		{"background", f.Background, &p.Background},
		{"surface", f.Surface, &p.Surface},
		{"text", f.Text, &p.Text},
		{"info", f.Info, &p.Info},
		{"success", f.Success, &p.Success},
		{"warning", f.Warning, &p.Warning},
		{"error", f.Error, &p.Error},
	}
	for _, fl := range fields {
		c, err := ParseColor(fl.value)
		if err != nil {
			return Palette{}, fmt.Errorf("palette %s: %s: %w", name, fl.field, err)
		}
		*fl.dst = c
	}
	return p, nil
}

// KindColor returns the accent color for a toast kind. Unknown kinds use Info.
func (p Palette) KindColor(kind string) colorful.Color {
	switch kind {
	case "success":
		return p.Success
	case "warning":
		return p.Warning
	case "error":
		return p.Error
	default:
		return p.Info
	}
}

// Pixel converts a color to a 24-bit TrueColor pixel value.
func Pixel(c colorful.Color) uint32 {
	r, g, b := c.Clamped().RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Dim blends c toward black by amount in [0, 1].
func Dim(c colorful.Color, amount float64) colorful.Color {
	return c.BlendRgb(colorful.Color{}, amount).Clamped()
}

// DefaultPalette returns the built-in palette.
func DefaultPalette() Palette {
	p, err := fromFile(DefaultPaletteName, defaultPaletteFile())
	if err != nil {
		panic(err) // bundled colors are constant
	}
	return p
}

func defaultPaletteFile() paletteFile {
	t := config.DefaultConfig().Theme
	return paletteFile{
		Accent:     t.Color,
		Background: t.Background,
		Surface:    t.Surface,
		Text:       t.Text,
		Info:       t.Info,
		Success:    t.Success,
		Warning:    t.Warning,
		Error:      t.Error,
	}
}
