// Package output provides output formatters for window lists.
package output

import (
	"io"

	"github.com/jmylchreest/cliv/internal/platform"
)

// Formatter formats windows for output.
type Formatter interface {
	// Format writes formatted windows to the writer.
	Format(w io.Writer, windows []platform.Window) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatPlain FormatType = "plain"
	FormatIDs   FormatType = "ids"
	FormatYAML  FormatType = "yaml"
)

// FormatTypes returns all format types.
func FormatTypes() []FormatType {
	return []FormatType{FormatPlain, FormatDmenu, FormatJSON, FormatYAML, FormatIDs}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter()
	case FormatYAML:
		return NewYAMLFormatter()
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template    string // Custom template for dmenu/plain format
	ShowIndex   bool   // Show 1-based index prefix
	ShowGeom    bool   // Show window geometry
	TitleMaxLen int    // Maximum title length (0 = unlimited)
	Separator   string // Field separator for dmenu format
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:   true,
		ShowGeom:    true,
		TitleMaxLen: 60,
		Separator:   " | ",
	}
}
