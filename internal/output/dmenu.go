package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/cliv/internal/platform"
)

// DmenuFormatter formats windows for dmenu/rofi/fuzzel.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	return &DmenuFormatter{
		opts:     opts,
		template: parseTemplate("dmenu", opts.Template),
	}
}

// Format writes windows in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, windows []platform.Window) error {
	for i, win := range windows {
		line := f.formatLine(i+1, &win)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single window line.
func (f *DmenuFormatter) formatLine(index int, win *platform.Window) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, templateData{Index: index, Window: win}); err == nil {
			return buf.String()
		}
	}

	// Default format: index | process | title | geometry
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}
	parts = append(parts, processLabel(win), sanitizeTitle(win.Title, f.opts.TitleMaxLen))
	if f.opts.ShowGeom {
		parts = append(parts, win.Bounds.String())
	}
	return strings.Join(parts, sep)
}

// templateData provides data for custom templates.
type templateData struct {
	Index  int
	Window *platform.Window
}

func parseTemplate(name, text string) *template.Template {
	if text == "" {
		return nil
	}
	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(text)
	if err != nil {
		return nil
	}
	return tmpl
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			return truncate(s, maxLen)
		},
		"hex": func(id platform.WindowID) string {
			return fmt.Sprintf("0x%08x", uint32(id))
		},
	}
}

func processLabel(win *platform.Window) string {
	if win.Process == "" {
		return "?"
	}
	return win.Process
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// sanitizeTitle cleans up a window title for single-line display.
func sanitizeTitle(title string, maxLen int) string {
	title = strings.ReplaceAll(title, "\n", " ")
	title = strings.ReplaceAll(title, "\r", "")
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return "(untitled)"
	}
	return truncate(title, maxLen)
}
