package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 300, Height: 200}
	assert.Equal(t, "300x200+10+20", r.String())
	assert.False(t, r.Empty())
	assert.True(t, Rect{Width: 0, Height: 10}.Empty())
}
