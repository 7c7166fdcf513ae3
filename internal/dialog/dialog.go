// Package dialog implements a modal message box for bubbletea programs.
package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	TypeError   = "error"
	TypeInfo    = "info"
	TypeWarning = "warning"
)

// Options describes one message box.
type Options struct {
	Type    string
	Title   string
	Message string
	Buttons []string
}

// ClosedMsg is emitted when the user acknowledges the box.
// Button is the index of the chosen button, -1 for Esc.
type ClosedMsg struct {
	Button int
}

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	buttonStyle = lipgloss.NewStyle().Padding(0, 1)
	activeStyle = buttonStyle.Copy().Reverse(true)
	typeColors  = map[string]lipgloss.Color{
		TypeError:   lipgloss.Color("9"),
		TypeWarning: lipgloss.Color("11"),
		TypeInfo:    lipgloss.Color("12"),
	}
)

// Model is a modal message box. While open it consumes every key press.
type Model struct {
	opts     Options
	open     bool
	selected int
}

func New() *Model {
	return &Model{}
}

// ShowMessageBox opens the box. A box that is already open is replaced.
func (m *Model) ShowMessageBox(opts Options) {
	if len(opts.Buttons) == 0 {
		opts.Buttons = []string{"OK"}
	}
	m.opts = opts
	m.open = true
	m.selected = 0
}

func (m *Model) Open() bool { return m.open }

// Options returns the options of the box currently or last shown.
func (m *Model) Options() Options { return m.opts }

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if !m.open {
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "left", "shift+tab":
		if m.selected > 0 {
			m.selected--
		}
	case "right", "tab":
		if m.selected < len(m.opts.Buttons)-1 {
			m.selected++
		}
	case "enter", " ", "space":
		return m.close(m.selected)
	case "esc":
		return m.close(-1)
	}
	return nil
}

func (m *Model) close(button int) tea.Cmd {
	m.open = false
	return func() tea.Msg { return ClosedMsg{Button: button} }
}

func (m *Model) View() string {
	if !m.open {
		return ""
	}
	color, ok := typeColors[m.opts.Type]
	if !ok {
		color = typeColors[TypeInfo]
	}

	var b strings.Builder
	if m.opts.Title != "" {
		b.WriteString(titleStyle.Foreground(color).Render(m.opts.Title))
		b.WriteString("\n\n")
	}
	b.WriteString(m.opts.Message)
	b.WriteString("\n\n")

	buttons := make([]string, len(m.opts.Buttons))
	for i, label := range m.opts.Buttons {
		style := buttonStyle
		if i == m.selected {
			style = activeStyle
		}
		buttons[i] = style.Render(label)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))

	return boxStyle.BorderForeground(color).Render(b.String())
}
