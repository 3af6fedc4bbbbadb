package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cliv/internal/platform"
)

var testWindows = []platform.Window{
	{ID: 0x1200001, Title: "Mozilla Firefox", Process: "firefox", PID: 100, Bounds: platform.Rect{Width: 1280, Height: 720}},
	{ID: 0x1400002, Title: "~/src - zsh", Process: "alacritty", PID: 200, Bounds: platform.Rect{X: 10, Y: 10, Width: 800, Height: 600}},
	{ID: 0x1600003, Title: "splash", PID: 0, Bounds: platform.Rect{Width: 300, Height: 200}},
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func loaded(t *testing.T) Model {
	t.Helper()
	m := New(func() ([]platform.Window, error) { return testWindows, nil })
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, m.loadWindows())
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_LoadsWindows(t *testing.T) {
	m := loaded(t)
	assert.Len(t, m.list.Items(), 3)
	assert.Contains(t, m.View(), "Choose a window to follow")
}

func TestModel_LoadError(t *testing.T) {
	m := New(func() ([]platform.Window, error) { return nil, errors.New("no display") })
	m, cmd := update(t, m, m.loadWindows())
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.statusMsg, "no display")
}

func TestModel_SelectQuits(t *testing.T) {
	m := loaded(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(cmd))

	w, ok := m.Chosen()
	require.True(t, ok)
	assert.Equal(t, "firefox", w.Process)
}

func TestModel_SelectWithoutProcess(t *testing.T) {
	m := New(nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, windowsMsg{windows: testWindows[2:]})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, isQuit(cmd))

	_, ok := m.Chosen()
	assert.False(t, ok)
}

func TestModel_Search(t *testing.T) {
	m := loaded(t)

	m, _ = update(t, m, keyRunes("/"))
	assert.Equal(t, ModeSearch, m.mode)

	m, _ = update(t, m, keyRunes("z"))
	m, _ = update(t, m, keyRunes("S"))
	m, _ = update(t, m, keyRunes("h"))

	assert.Equal(t, "zSh", m.searchQuery)
	require.Len(t, m.list.Items(), 1)
	assert.Contains(t, m.View(), "(1 matches)")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(cmd))
	w, ok := m.Chosen()
	require.True(t, ok)
	assert.Equal(t, "alacritty", w.Process)
}

func TestModel_SearchEscRestoresList(t *testing.T) {
	m := loaded(t)

	m, _ = update(t, m, keyRunes("/"))
	m, _ = update(t, m, keyRunes("fire"))
	assert.Len(t, m.list.Items(), 1)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
	assert.Len(t, m.list.Items(), 3)
}

func TestModel_Detail(t *testing.T) {
	m := loaded(t)

	m, _ = update(t, m, keyRunes("i"))
	assert.Equal(t, ModeDetail, m.mode)
	require.NotNil(t, m.selected)
	assert.Contains(t, m.View(), "Window Detail")

	detail := m.renderDetail(*m.selected)
	assert.Contains(t, detail, "firefox")
	assert.Contains(t, detail, "0x01200001")
	assert.Contains(t, detail, "1280x720+0+0")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
	assert.Nil(t, m.selected)
}

func TestModel_HelpAndQuit(t *testing.T) {
	m := loaded(t)

	m, _ = update(t, m, keyRunes("?"))
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = update(t, m, keyRunes("?"))
	assert.Equal(t, ModeList, m.mode)

	_, cmd := update(t, m, keyRunes("q"))
	assert.True(t, isQuit(cmd))
}

func TestBuildKeybindBar_FitsWidth(t *testing.T) {
	m := New(nil)

	full := m.buildKeybindBar(0, ModeList)
	assert.Contains(t, full, "refresh")

	narrow := m.buildKeybindBar(20, ModeList)
	assert.Contains(t, narrow, "quit")
	assert.NotContains(t, narrow, "refresh")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "abc", truncate("abc", 0))
}
