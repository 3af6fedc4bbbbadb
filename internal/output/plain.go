package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/cliv/internal/platform"
)

// PlainFormatter formats windows as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	return &PlainFormatter{
		opts:     opts,
		template: parseTemplate("plain", opts.Template),
	}
}

// Format writes windows as plain text.
func (f *PlainFormatter) Format(w io.Writer, windows []platform.Window) error {
	for i, win := range windows {
		if err := f.formatWindow(w, i+1, &win); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatWindow(w io.Writer, index int, win *platform.Window) error {
	if f.template != nil {
		return f.template.Execute(w, templateData{Index: index, Window: win})
	}

	var sb strings.Builder
	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("[%d] ", index))
	}
	sb.WriteString(fmt.Sprintf("<%s> %s\n", processLabel(win), sanitizeTitle(win.Title, f.opts.TitleMaxLen)))

	details := fmt.Sprintf("    window 0x%08x pid %d", uint32(win.ID), win.PID)
	if f.opts.ShowGeom {
		details += " " + win.Bounds.String()
	}
	sb.WriteString(details + "\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FormatField outputs a specific field from a window.
func FormatField(win *platform.Window, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return fmt.Sprintf("0x%08x", uint32(win.ID))
	case "process", "proc":
		return win.Process
	case "pid":
		return fmt.Sprintf("%d", win.PID)
	case "geometry", "geom", "bounds":
		return win.Bounds.String()
	default:
		return win.Title
	}
}
