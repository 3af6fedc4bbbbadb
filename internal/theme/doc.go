// Package theme provides the color palettes used by cliv windows.
// Palettes are bundled as TOML files or read from the user's themes
// directory, which takes precedence, and hot-reloaded when edited.
package theme
