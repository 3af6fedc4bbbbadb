package theme

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
)

// EmbeddedPalettes contains all bundled palette files.
//
//go:embed themes/*.toml
var EmbeddedPalettes embed.FS

// DefaultPaletteName is the name of the built-in default palette.
const DefaultPaletteName = "default"

// BundledPalettes lists all embedded palette names.
var BundledPalettes = []string{"default", "ocean", "crimson"}

// GetEmbeddedPalette retrieves a bundled palette by name.
func GetEmbeddedPalette(name string) ([]byte, bool) {
	data, err := EmbeddedPalettes.ReadFile("themes/" + name + ".toml")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ListEmbeddedPalettes returns names of all embedded palettes.
func ListEmbeddedPalettes() []string {
	var names []string

	entries, err := fs.ReadDir(EmbeddedPalettes, "themes")
	if err != nil {
		return BundledPalettes
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ext := filepath.Ext(name); ext == ".toml" {
			names = append(names, strings.TrimSuffix(name, ext))
		}
	}

	return names
}

// IsEmbeddedPalette checks if a palette name is bundled.
func IsEmbeddedPalette(name string) bool {
	_, found := GetEmbeddedPalette(name)
	return found
}
