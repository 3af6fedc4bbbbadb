package x11

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/jmylchreest/cliv/internal/platform"
	"github.com/jmylchreest/cliv/internal/theme"
	"github.com/jmylchreest/cliv/internal/toast"
)

// Toast geometry in pixels.
const (
	toastBorder     = 2
	toastHeader     = 30
	toastProgress   = 3
	toastPadding    = 10
	toastLineHeight = 16
	toastCharWidth  = 7
	toastCloseGlyph = "x"
)

// ToastFactory creates toast windows. It implements toast.SurfaceFactory.
type ToastFactory struct {
	conn   *Connection
	logger *slog.Logger

	mu      sync.RWMutex
	palette theme.Palette
}

// NewToastFactory creates a factory drawing with palette p.
func NewToastFactory(conn *Connection, p theme.Palette, logger *slog.Logger) *ToastFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToastFactory{conn: conn, palette: p, logger: logger}
}

// SetPalette changes the colors of toasts created from now on.
func (f *ToastFactory) SetPalette(p theme.Palette) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.palette = p
}

// NewToastSurface creates and maps a toast window.
func (f *ToastFactory) NewToastSurface(spec toast.SurfaceSpec) (toast.Surface, error) {
	f.mu.RLock()
	p := f.palette
	f.mu.RUnlock()

	accent := theme.Pixel(p.KindColor(string(spec.Kind)))
	w, err := f.conn.newWindow(
		f.conn.Root,
		platform.Rect{X: spec.X, Y: spec.Y, Width: spec.Width, Height: spec.Height},
		accent,
		xproto.EventMaskExposure|xproto.EventMaskButtonPress,
	)
	if err != nil {
		return nil, err
	}
	body := theme.Pixel(p.Surface)
	if err := w.initGC(theme.Pixel(p.Text), body); err != nil {
		_ = w.destroy()
		return nil, err
	}

	s := &toastSurface{
		win:    w,
		spec:   spec,
		width:  spec.Width,
		height: spec.Height,
		accent: accent,
		body:   body,
		text:   theme.Pixel(p.Text),
		lines:  wrapText(spec.Message, (spec.Width-2*toastBorder-2*toastPadding)/toastCharWidth),
		logger: f.logger,
	}

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			s.draw()
		}
	}).Connect(f.conn.XUtil, w.id)

	if spec.OnDismiss != nil {
		xevent.ButtonPressFun(func(_ *xgbutil.XUtil, _ xevent.ButtonPressEvent) {
			spec.OnDismiss()
		}).Connect(f.conn.XUtil, w.id)
	}

	if err := w.setOpacity(spec.Alpha); err != nil {
		f.logger.Debug("failed to set toast opacity", "id", spec.ID, "error", err)
	}
	w.show()
	return s, nil
}

type toastSurface struct {
	win    *window
	spec   toast.SurfaceSpec
	logger *slog.Logger

	width, height      int
	accent, body, text uint32
	lines              []string

	mu        sync.Mutex
	progress  float64
	destroyed bool
}

func (s *toastSurface) Move(x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.win.move(x, y)
	return nil
}

func (s *toastSurface) SetAlpha(alpha float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	return s.win.setOpacity(alpha)
}

func (s *toastSurface) SetProgress(progress float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.progress = min(max(progress, 0), 1)
	s.drawProgressLocked()
	return nil
}

func (s *toastSurface) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.destroyed && s.win.exists()
}

func (s *toastSurface) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	return s.win.destroy()
}

func (s *toastSurface) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}

	inner := s.width - 2*toastBorder
	s.win.fillRect(toastBorder, toastBorder, inner, s.height-2*toastBorder, s.body)

	title := strings.ToUpper(s.spec.Title)
	baseline := toastBorder + toastHeader/2 + 5
	s.win.text(toastBorder+toastPadding, baseline, title, s.accent, s.body)
	s.win.text(s.width-toastBorder-toastPadding-toastCharWidth, baseline, toastCloseGlyph, s.text, s.body)

	y := toastBorder + toastHeader + toastLineHeight - 4
	bottom := s.height - toastBorder - toastProgress
	for _, line := range s.lines {
		if y > bottom {
			break
		}
		s.win.text(toastBorder+toastPadding, y, line, s.text, s.body)
		y += toastLineHeight
	}

	s.drawProgressLocked()
}

// drawProgressLocked paints the countdown bar, which empties as progress
// goes from 0 to 1.
func (s *toastSurface) drawProgressLocked() {
	inner := s.width - 2*toastBorder
	y := s.height - toastBorder - toastProgress
	filled := int(float64(inner) * (1 - s.progress))
	s.win.fillRect(toastBorder, y, inner, toastProgress, s.body)
	s.win.fillRect(toastBorder, y, filled, toastProgress, s.accent)
}

// wrapText breaks s into lines of at most width characters on word
// boundaries. Words longer than width are split.
func wrapText(s string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var line string
		for _, word := range words {
			for len(word) > width {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, word[:width])
				word = word[width:]
			}
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
