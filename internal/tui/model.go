// Package tui provides the BubbleTea window picker used to choose the window
// an overlay follows.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/cliv/internal/platform"
)

// ErrNoSelection is returned by Run when the user quits without choosing.
var ErrNoSelection = errors.New("no window selected")

// Lister returns the windows the picker offers.
type Lister func() ([]platform.Window, error)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeHelp
)

// Model is the picker model.
type Model struct {
	lister Lister

	// Current mode
	mode Mode

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model

	// State
	windows     []platform.Window
	selected    *platform.Window
	chosen      *platform.Window
	searchQuery string
	width       int
	height      int
	ready       bool

	// Key bindings
	keys KeyMap

	// Status message
	statusMsg string
	statusErr bool
}

// windowItem wraps a window for the list component.
type windowItem struct {
	window platform.Window
}

func (i windowItem) Title() string {
	if i.window.Title == "" {
		return "(untitled)"
	}
	return i.window.Title
}

func (i windowItem) Description() string {
	process := i.window.Process
	if process == "" {
		process = "unknown process"
	}
	return fmt.Sprintf("[%s] pid %d - %s", process, i.window.PID, i.window.Bounds)
}

func (i windowItem) FilterValue() string {
	return i.window.Process + " " + i.window.Title
}

// windowDelegate dims windows whose owning process is unknown; the overlay
// cannot follow them by name.
type windowDelegate struct {
	list.DefaultDelegate
}

func newWindowDelegate() windowDelegate {
	return windowDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

// Render renders a list item.
func (d windowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	wi, ok := item.(windowItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	anonymous := wi.window.Process == ""
	itemWidth := m.Width() - d.DefaultDelegate.Styles.NormalTitle.GetHorizontalPadding()

	var titleStyle, descStyle lipgloss.Style
	if isSelected {
		titleStyle = d.DefaultDelegate.Styles.SelectedTitle
		descStyle = d.DefaultDelegate.Styles.SelectedDesc
	} else {
		titleStyle = d.DefaultDelegate.Styles.NormalTitle
		descStyle = d.DefaultDelegate.Styles.NormalDesc
	}
	if anonymous {
		titleStyle = titleStyle.Foreground(lipgloss.Color("8"))
		descStyle = descStyle.Foreground(lipgloss.Color("8"))
	}

	title := truncate(wi.Title(), itemWidth)
	desc := truncate(wi.Description(), itemWidth)

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

func truncate(s string, width int) string {
	if width <= 1 || len(s) <= width {
		return s
	}
	return s[:width-1] + "…"
}

// New creates a picker listing the windows returned by lister.
func New(lister Lister) Model {
	l := list.New(nil, newWindowDelegate(), 0, 0)
	l.Title = "Choose a window to follow"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "process or title..."
	searchInput.CharLimit = 100

	return Model{
		lister:      lister,
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		help:        help.New(),
		keys:        DefaultKeyMap(),
	}
}

// Chosen returns the window the user picked, if any.
func (m Model) Chosen() (platform.Window, bool) {
	if m.chosen == nil {
		return platform.Window{}, false
	}
	return *m.chosen, true
}

// Init loads the window list.
func (m Model) Init() tea.Cmd {
	return m.loadWindows
}

type windowsMsg struct {
	windows []platform.Window
	err     error
}

func (m Model) loadWindows() tea.Msg {
	if m.lister == nil {
		return windowsMsg{}
	}
	windows, err := m.lister()
	return windowsMsg{windows: windows, err: err}
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.YPosition = 2
		return m, nil

	case windowsMsg:
		if msg.err != nil {
			return m, status("Failed to list windows: "+msg.err.Error(), true)
		}
		m.windows = msg.windows
		m.list.SetItems(m.buildListItems())
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	switch m.mode {
	case ModeList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	case ModeDetail:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	case ModeSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Letters belong to the search box while it has focus
	if m.mode != ModeSearch {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			if m.mode == ModeHelp {
				m.mode = ModeList
			} else {
				m.mode = ModeHelp
			}
			return m, nil
		}
	} else if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}

	return m, nil
}

// choose records the highlighted window and quits.
func (m Model) choose() (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(windowItem)
	if !ok {
		return m, nil
	}
	if item.window.Process == "" {
		return m, status("Owning process of this window is unknown", true)
	}
	w := item.window
	m.chosen = &w
	return m, tea.Quit
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		return m.choose()

	case key.Matches(msg, m.keys.Info):
		if item, ok := m.list.SelectedItem().(windowItem); ok {
			w := item.window
			m.selected = &w
			m.mode = ModeDetail
			m.viewport.SetContent(m.renderDetail(w))
			m.viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadWindows
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Info):
		m.mode = ModeList
		m.selected = nil
		return m, nil

	case key.Matches(msg, m.keys.Select):
		m.mode = ModeList
		m.selected = nil
		return m.choose()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		m.searchInput.Blur()
		m.mode = ModeList
		return m.choose()

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering on every keystroke
	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())

	return m, cmd
}

// buildListItems creates list items from the windows matching the search.
func (m Model) buildListItems() []list.Item {
	query := strings.ToLower(strings.TrimSpace(m.searchQuery))

	items := make([]list.Item, 0, len(m.windows))
	for _, w := range m.windows {
		if query != "" &&
			!strings.Contains(strings.ToLower(w.Process), query) &&
			!strings.Contains(strings.ToLower(w.Title), query) {
			continue
		}
		items = append(items, windowItem{window: w})
	}
	return items
}

// renderDetail renders the detail view for a window.
func (m Model) renderDetail(w platform.Window) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(windowItem{window: w}.Title()) + "\n\n")
	b.WriteString(labelStyle.Render("Process: ") + w.Process + "\n")
	b.WriteString(labelStyle.Render("PID: ") + fmt.Sprintf("%d", w.PID) + "\n")
	b.WriteString(labelStyle.Render("Window: ") + fmt.Sprintf("0x%08x", uint32(w.ID)) + "\n")
	b.WriteString(labelStyle.Render("Geometry: ") + w.Bounds.String() + "\n")
	return b.String()
}

// View renders the picker.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.list.View()

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else {
		s += "\n" + m.buildKeybindBar(m.width, ModeList)
	}

	return s
}

func (m Model) viewDetail() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	header := headerStyle.Render("Window Detail")

	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, ModeDetail)
}

func (m Model) viewSearch() string {
	countStr := fmt.Sprintf("(%d matches)", len(m.list.Items()))

	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, ModeSearch)
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	m.help.ShowAll = true
	return titleStyle.Render("Keyboard Shortcuts") + "\n\n" +
		m.help.View(m.keys) + "\n\n" +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int, mode Mode) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind
	switch mode {
	case ModeList:
		binds = []keybind{
			{"q", "quit", 1},
			{"enter", "follow", 2},
			{"?", "help", 3},
			{"/", "search", 4},
			{"i", "details", 5},
			{"r", "refresh", 6},
		}
	case ModeDetail:
		binds = []keybind{
			{"q", "quit", 1},
			{"esc", "back", 2},
			{"enter", "follow", 3},
		}
	case ModeSearch:
		binds = []keybind{
			{"enter", "follow", 1},
			{"esc", "close", 2},
			{"↑/↓", "navigate", 3},
		}
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		testLen := lipgloss.Width(b.key + " " + b.desc)
		if result != "" {
			testLen += lipgloss.Width(result) + len(separator)
		}

		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return style.Render(result)
}

// RunOptions configures the picker.
type RunOptions struct {
	Lister Lister
	// Input and Output default to the terminal
	Input  io.Reader
	Output io.Writer
}

// Run shows the picker and returns the chosen window.
func Run(opts RunOptions) (platform.Window, error) {
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	p := tea.NewProgram(New(opts.Lister), programOpts...)
	final, err := p.Run()
	if err != nil {
		return platform.Window{}, fmt.Errorf("failed to run window picker: %w", err)
	}

	if m, ok := final.(Model); ok {
		if w, ok := m.Chosen(); ok {
			return w, nil
		}
	}
	return platform.Window{}, ErrNoSelection
}
