package x11

import (
	"fmt"
	"sync"

	"github.com/jmylchreest/cliv/internal/particle"
	"github.com/jmylchreest/cliv/internal/platform"
	"github.com/jmylchreest/cliv/internal/theme"
)

// SpriteRenderer draws particles as tiny child windows of the menu window.
// It implements particle.SpriteRenderer.
type SpriteRenderer struct {
	conn   *Connection
	parent *MenuWindow

	mu      sync.Mutex
	next    particle.SpriteID
	sprites map[particle.SpriteID]*window
}

// NewSpriteRenderer creates a renderer drawing inside menu.
func NewSpriteRenderer(conn *Connection, menu *MenuWindow) *SpriteRenderer {
	return &SpriteRenderer{
		conn:    conn,
		parent:  menu,
		sprites: make(map[particle.SpriteID]*window),
	}
}

// NewSprite creates a square sprite. Opacity dims the color toward black,
// since child windows cannot be translucent.
func (r *SpriteRenderer) NewSprite(s particle.Sprite) (particle.SpriteID, error) {
	c, err := theme.ParseColor(s.Color)
	if err != nil {
		return 0, err
	}
	pixel := theme.Pixel(theme.Dim(c, 1-s.Opacity))

	w, err := r.conn.newWindow(
		r.parent.win.id,
		platform.Rect{X: int(s.X), Y: int(s.Y), Width: s.Size, Height: s.Size},
		pixel,
		0,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create sprite: %w", err)
	}
	w.show()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.sprites[r.next] = w
	return r.next, nil
}

// MoveSprite moves a sprite. Unknown sprites are ignored.
func (r *SpriteRenderer) MoveSprite(id particle.SpriteID, x, y float64) error {
	r.mu.Lock()
	w, ok := r.sprites[id]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	w.move(int(x), int(y))
	return nil
}

// RemoveSprite destroys a sprite. Unknown sprites are ignored.
func (r *SpriteRenderer) RemoveSprite(id particle.SpriteID) error {
	r.mu.Lock()
	w, ok := r.sprites[id]
	delete(r.sprites, id)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return w.destroy()
}
