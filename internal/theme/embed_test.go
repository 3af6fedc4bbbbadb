package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEmbeddedPalettes(t *testing.T) {
	names := ListEmbeddedPalettes()
	for _, name := range BundledPalettes {
		assert.Contains(t, names, name)
	}
}

func TestIsEmbeddedPalette(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"default", true},
		{"ocean", true},
		{"crimson", true},
		{"nonexistent", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsEmbeddedPalette(tt.name))
		})
	}
}

func TestBundledPalettes_Parse(t *testing.T) {
	for _, name := range BundledPalettes {
		t.Run(name, func(t *testing.T) {
			data, found := GetEmbeddedPalette(name)
			require.True(t, found)

			p, err := ParsePalette(name, data)
			require.NoError(t, err)
			assert.Equal(t, name, p.Name)
			assert.NotEqual(t, p.Background, p.Text)
		})
	}
}

func TestDefaultPalette_MatchesBundledFile(t *testing.T) {
	data, found := GetEmbeddedPalette(DefaultPaletteName)
	require.True(t, found)
	bundled, err := ParsePalette(DefaultPaletteName, data)
	require.NoError(t, err)

	assert.Equal(t, DefaultPalette(), bundled)
}
