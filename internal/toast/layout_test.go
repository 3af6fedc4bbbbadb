package toast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/cliv/internal/config"
	"github.com/jmylchreest/cliv/internal/platform"
)

func TestLayout_Slot(t *testing.T) {
	screen := platform.Rect{Width: 1920, Height: 1080}

	tests := []struct {
		position config.Position
		index    int
		x, y     int
	}{
		{config.PositionBottomRight, 0, 1580, 930},
		{config.PositionBottomRight, 1, 1580, 830},
		{config.PositionBottomRight, 2, 1580, 730},
		{config.PositionBottomLeft, 0, 20, 930},
		{config.PositionBottomLeft, 1, 20, 830},
		{config.PositionTopRight, 0, 1580, 60},
		{config.PositionTopRight, 1, 1580, 160},
		{config.PositionTopLeft, 2, 20, 260},
	}

	for _, tt := range tests {
		t.Run(string(tt.position), func(t *testing.T) {
			cfg := config.DefaultToastConfig()
			cfg.Position = string(tt.position)
			l := NewLayout(cfg, screen)

			x, y := l.Slot(tt.index)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)
		})
	}
}

func TestLayout_ScreenOrigin(t *testing.T) {
	// Second monitor to the right of the first.
	l := NewLayout(config.DefaultToastConfig(), platform.Rect{X: 1920, Y: 0, Width: 2560, Height: 1440})
	x, y := l.Slot(0)
	assert.Equal(t, 1920+2560-320-20, x)
	assert.Equal(t, 1440-90-60, y)
}

func TestLayout_Offset(t *testing.T) {
	l := NewLayout(config.DefaultToastConfig(), platform.Rect{Width: 1920, Height: 1080})
	for i := range 5 {
		assert.Equal(t, i*100, l.Offset(i))
	}
}

func TestLayout_EntryX(t *testing.T) {
	cfg := config.DefaultToastConfig()
	right := NewLayout(cfg, platform.Rect{Width: 1920, Height: 1080})
	assert.Equal(t, 1, right.EdgeDirection())
	assert.Equal(t, 1900, right.EntryX(1580))

	cfg.Position = string(config.PositionTopLeft)
	left := NewLayout(cfg, platform.Rect{Width: 1920, Height: 1080})
	assert.Equal(t, -1, left.EdgeDirection())
	assert.Equal(t, -300, left.EntryX(20))
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindSuccess, ParseKind("success"))
	assert.Equal(t, KindWarning, ParseKind("warning"))
	assert.Equal(t, KindError, ParseKind("error"))
	assert.Equal(t, KindInfo, ParseKind("info"))
	assert.Equal(t, KindInfo, ParseKind("critical"))
	assert.Equal(t, KindInfo, ParseKind(""))
}
