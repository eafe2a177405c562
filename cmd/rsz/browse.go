package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/rsz"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	hashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	listHeight   = 12
	headerHeight = 4
)

type browseState int

const (
	stateList browseState = iota
	stateJump
)

// browseModel lists the descriptors of one block and shows the decoded
// object under the cursor. When the graph fails to decode the descriptors
// are still listed and the error is shown in place of every object.
type browseModel struct {
	load      func() (*input, *rsz.Registry, rsz.Options, error)
	path      string
	infos     []rsz.DescriptorInfo
	graph     *rsz.Graph
	err       error
	decodeErr error
	selected  int
	offset    int
	jump      textinput.Model
	view      viewport.Model
	ready     bool
	state     browseState
	notice    string
}

type browseLoadedMsg struct {
	err       error
	infos     []rsz.DescriptorInfo
	graph     *rsz.Graph
	decodeErr error
}

func newBrowseModel(path string, load func() (*input, *rsz.Registry, rsz.Options, error)) *browseModel {
	ti := textinput.New()
	ti.Prompt = "object #"
	ti.Placeholder = "index"
	ti.CharLimit = 10
	ti.Width = 12
	return &browseModel{
		load:  load,
		path:  path,
		jump:  ti,
		view:  viewport.New(80, 20),
		state: stateList,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.loadBlock
}

func (m *browseModel) loadBlock() tea.Msg {
	in, reg, opts, err := m.load()
	if err != nil {
		return browseLoadedMsg{err: err}
	}
	blk, err := in.block()
	if err != nil {
		return browseLoadedMsg{err: err}
	}
	msg := browseLoadedMsg{infos: blk.Describe(reg)}
	msg.graph, msg.decodeErr = rsz.NewBuilder(reg, opts).DecodeBlock(blk)
	return msg
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-listHeight-headerHeight, 3)
		m.ready = true
		m.refresh()
		return m, nil

	case browseLoadedMsg:
		m.err = msg.err
		m.infos = msg.infos
		m.graph = msg.graph
		m.decodeErr = msg.decodeErr
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.state == stateJump {
			return m.updateJump(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "home":
			m.move(-len(m.infos))
		case "end":
			m.move(len(m.infos))
		case "g", ":":
			m.state = stateJump
			m.notice = ""
			m.jump.Reset()
			return m, m.jump.Focus()
		default:
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *browseModel) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = stateList
		m.jump.Blur()
		return m, nil
	case "enter":
		m.state = stateList
		m.jump.Blur()
		if !m.jumpTo(strings.TrimSpace(m.jump.Value())) {
			m.notice = fmt.Sprintf("no object %q", m.jump.Value())
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

// jumpTo selects the descriptor with the given object index.
func (m *browseModel) jumpTo(s string) bool {
	idx, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return false
	}
	for i, info := range m.infos {
		if info.Index == uint32(idx) {
			m.selected = i
			m.scrollList()
			m.refresh()
			return true
		}
	}
	return false
}

func (m *browseModel) move(delta int) {
	if len(m.infos) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.infos)-1)
	m.scrollList()
	m.refresh()
}

func (m *browseModel) scrollList() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+listHeight {
		m.offset = m.selected - listHeight + 1
	}
}

// refresh renders the selected object into the viewport.
func (m *browseModel) refresh() {
	m.view.SetContent(m.detail())
	m.view.GotoTop()
}

func (m *browseModel) detail() string {
	if len(m.infos) == 0 {
		return ""
	}
	info := m.infos[m.selected]

	var b strings.Builder
	fmt.Fprintf(&b, "hash 0x%08X  revision 0x%08X  %s\n\n", info.Descriptor.Hash, info.Descriptor.Revision, info.Status)
	if m.decodeErr != nil {
		b.WriteString(errorStyle.Render("decode failed: " + m.decodeErr.Error()))
		return b.String()
	}
	obj := m.graph.Object(info.Index)
	if obj == nil {
		return b.String()
	}
	if obj.IsExtern() {
		b.WriteString("extern " + obj.Extern)
		return b.String()
	}
	fmt.Fprintf(&b, "@0x%X  %d bytes  version %s\n\n", obj.Offset, obj.Size, obj.Version)
	if err := rsz.Dump(&b, obj.Value); err != nil {
		b.WriteString(errorStyle.Render(err.Error()))
	}
	return b.String()
}

func (m *browseModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.infos == nil {
		return "Loading block..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("RSZ Browser"))
	b.WriteString(" ")
	b.WriteString(m.path)
	b.WriteString("\n\n")

	end := min(m.offset+listHeight, len(m.infos))
	for i := m.offset; i < end; i++ {
		line := m.formatInfo(m.infos[i])
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	for i := end - m.offset; i < listHeight; i++ {
		b.WriteString("\n")
	}

	if m.ready {
		b.WriteString(m.view.View())
		b.WriteString("\n")
	}

	switch {
	case m.state == stateJump:
		b.WriteString(m.jump.View())
	case m.notice != "":
		b.WriteString(errorStyle.Render(m.notice))
	default:
		b.WriteString(helpStyle.Render("↑/↓ select • pgup/pgdn scroll • g jump • q quit"))
	}
	return b.String()
}

func (m *browseModel) formatInfo(info rsz.DescriptorInfo) string {
	name := info.Symbol
	switch {
	case info.Extern != "":
		name = info.Extern
	case name == "":
		name = hashStyle.Render(fmt.Sprintf("0x%08X", info.Descriptor.Hash))
	default:
		name = symbolStyle.Render(name)
	}
	root := " "
	if info.Root {
		root = "*"
	}
	return fmt.Sprintf("%4d %s %s", info.Index, root, name)
}

func runBrowse(m *browseModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
