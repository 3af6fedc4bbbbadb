package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/cliv/internal/platform"
)

func testWindows() []platform.Window {
	return []platform.Window{
		{
			ID:      0x1200001,
			Title:   "Mozilla Firefox",
			Process: "firefox",
			PID:     100,
			Bounds:  platform.Rect{Width: 1280, Height: 720},
		},
		{
			ID:     0x1400002,
			Title:  "splash\nscreen",
			PID:    0,
			Bounds: platform.Rect{X: 10, Y: 20, Width: 300, Height: 200},
		},
	}
}

func TestDmenuFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	formatter := NewDmenuFormatter(DefaultFormatterOptions())
	require.NoError(t, formatter.Format(&buf, testWindows()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, "1 | firefox | Mozilla Firefox | 1280x720+0+0", lines[0])
	assert.Equal(t, "2 | ? | splash screen | 300x200+10+20", lines[1])
}

func TestDmenuFormatter_NoIndexNoGeom(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.ShowIndex = false
	opts.ShowGeom = false
	opts.Separator = "\t"
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testWindows()[:1]))

	assert.Equal(t, "firefox\tMozilla Firefox\n", buf.String())
}

func TestDmenuFormatter_CustomTemplate(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index}}:{{hex .Window.ID}}:{{truncate .Window.Title 7}}"
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testWindows()[:1]))

	assert.Equal(t, "1:0x01200001:Mozi...\n", buf.String())
}

func TestDmenuFormatter_BadTemplateFallsBack(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index"
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testWindows()[:1]))

	assert.Contains(t, buf.String(), "Mozilla Firefox")
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, testWindows()))

	var decoded []platform.Window
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "firefox", decoded[0].Process)
	assert.Equal(t, 300, decoded[1].Bounds.Width)
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, testWindows()))

	assert.Contains(t, buf.String(), "process: firefox")

	var decoded []platform.Window
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, platform.WindowID(0x1400002), decoded[1].ID)
	assert.Equal(t, 20, decoded[1].Bounds.Y)
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testWindows()))
	assert.Equal(t, "0x01200001\n0x01400002\n", buf.String())
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(DefaultFormatterOptions()).Format(&buf, testWindows()[:1]))

	output := buf.String()
	assert.Contains(t, output, "[1] <firefox> Mozilla Firefox")
	assert.Contains(t, output, "window 0x01200001 pid 100 1280x720+0+0")
}

func TestFormatField(t *testing.T) {
	win := testWindows()[0]

	tests := []struct {
		field string
		want  string
	}{
		{"id", "0x01200001"},
		{"process", "firefox"},
		{"PID", "100"},
		{"geometry", "1280x720+0+0"},
		{"title", "Mozilla Firefox"},
		{"unknown", "Mozilla Firefox"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatField(&win, tt.field))
		})
	}
}

func TestNewFormatter(t *testing.T) {
	opts := DefaultFormatterOptions()

	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, opts))
	assert.IsType(t, &DmenuFormatter{}, NewFormatter(FormatDmenu, opts))
	assert.IsType(t, &IDsFormatter{}, NewFormatter(FormatIDs, opts))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML, opts))
	assert.IsType(t, &PlainFormatter{}, NewFormatter(FormatPlain, opts))
	assert.IsType(t, &PlainFormatter{}, NewFormatter("bogus", opts))
}

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "a b c", sanitizeTitle("a\n b\r  c", 0))
	assert.Equal(t, "(untitled)", sanitizeTitle("  ", 10))
	assert.Equal(t, "abc...", sanitizeTitle("abcdefghij", 6))
	assert.Equal(t, "ab", sanitizeTitle("abcdefghij", 2))
}
