// Package serverform is the form that adds an organization server: the user
// types a URL, the server is validated and, when valid, stored.
package serverform

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Uri2001/orgs/internal/hostmsg"
)

// CreateOrgURL is where new organizations are created.
const CreateOrgURL = "https://zulip.com/new/"

// Element ids.
const (
	ElemURL       = "url"
	ElemConnect   = "connect"
	ElemCreateOrg = "open-create-org-link"
	ElemNetwork   = "open-network-settings"
)

const placeholder = "your-organization.zulipchat.com or zulip.your-organization.com"

// Props configures a Form.
type Props struct {
	// Root receives the form on Setup. Required.
	Root *Container
	// OnChange is called once a new server has been validated and stored.
	OnChange func()

	Validator  DomainValidator
	Registry   ServerRegistry
	Dialog     Dialog
	Links      LinkOpener
	Host       HostMessenger
	Translator Translator

	// Timeout bounds one validation. Zero means DefaultTimeout, negative disables it.
	Timeout time.Duration
	Logger  *slog.Logger

	// Dismissible reports whether Esc leaves the form for a previous view.
	Dismissible bool
}

type elementKind int

const (
	kindInput elementKind = iota
	kindButton
	kindLink
)

type element struct {
	id    string
	kind  elementKind
	label string
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	buttonStyle  = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.NormalBorder())
	focusedStyle = buttonStyle.Copy().BorderForeground(lipgloss.Color("10")).Bold(true)
	linkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Form renders the add-server form and routes key presses to its controls.
type Form struct {
	props      Props
	controller *Controller
	t          func(string) string
	logger     *slog.Logger
	template   func() []element

	elements []element
	focus    int
	input    textinput.Model
	ready    bool
}

func New(props Props) *Form {
	f := &Form{
		props:      props,
		controller: NewController(props),
		t:          translator(props.Translator),
		logger:     loggerOrDefault(props.Logger),
	}
	f.template = f.defaultTemplate
	return f
}

func (f *Form) defaultTemplate() []element {
	return []element{
		{id: ElemURL, kind: kindInput, label: f.t("Organization URL")},
		{id: ElemConnect, kind: kindButton, label: f.t("Connect")},
		{id: ElemCreateOrg, kind: kindButton, label: f.t("Create a new organization")},
		{id: ElemNetwork, kind: kindLink, label: f.t("Network and Proxy Settings")},
	}
}

// Setup renders the form into its container and wires the controls. It must
// be called once before the form is shown; an error means the form was
// assembled incorrectly.
func (f *Form) Setup() error {
	if f.props.Root == nil {
		return ErrNoMount
	}
	for name, ok := range map[string]bool{
		"validator": f.props.Validator != nil,
		"registry":  f.props.Registry != nil,
		"dialog":    f.props.Dialog != nil,
		"links":     f.props.Links != nil,
		"host":      f.props.Host != nil,
	} {
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingCollaborator, name)
		}
	}

	f.elements = f.template()
	f.props.Root.Mount(f)

	for _, id := range []string{ElemURL, ElemConnect, ElemCreateOrg, ElemNetwork} {
		if _, err := f.query(id); err != nil {
			return err
		}
	}

	f.input = textinput.New()
	f.input.Placeholder = placeholder
	f.input.CharLimit = 256
	f.input.Width = len(placeholder)
	f.input.Focus()
	f.focus, _ = f.query(ElemURL)
	f.ready = true
	return nil
}

func (f *Form) query(id string) (int, error) {
	for i, el := range f.elements {
		if el.id == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrMissingElement, id)
}

// State returns the submission state.
func (f *Form) State() State { return f.controller.State() }

// Value returns the current contents of the URL field.
func (f *Form) Value() string { return f.input.Value() }

// SetValue replaces the contents of the URL field.
func (f *Form) SetValue(s string) { f.input.SetValue(s) }

// Focused returns the id of the focused control.
func (f *Form) Focused() string {
	if !f.ready {
		return ""
	}
	return f.elements[f.focus].id
}

// Focus moves focus to the control with the given id.
func (f *Form) Focus(id string) error {
	i, err := f.query(id)
	if err != nil {
		return err
	}
	f.setFocus(i)
	return nil
}

// ConnectLabel is the label of the primary control for the current state.
func (f *Form) ConnectLabel() string {
	if f.controller.State() == StateValidating {
		return f.t("Connecting…")
	}
	return f.t("Connect")
}

// Click activates the control with the given id.
func (f *Form) Click(id string) tea.Cmd {
	if !f.ready {
		return nil
	}
	switch id {
	case ElemConnect:
		return f.submit()
	case ElemCreateOrg:
		return f.openCreateOrg()
	case ElemNetwork:
		f.props.Host.Send(hostmsg.ForwardMessage, hostmsg.OpenNetworkSettings)
	}
	return nil
}

func (f *Form) submit() tea.Cmd {
	return f.controller.Submit(f.input.Value())
}

func (f *Form) openCreateOrg() tea.Cmd {
	links, logger := f.props.Links, f.logger
	return func() tea.Msg {
		u, err := url.Parse(CreateOrgURL)
		if err != nil {
			logger.Error("invalid create organization link", "error", err)
			return nil
		}
		if err := links.OpenBrowser(u); err != nil {
			logger.Warn("opening browser failed", "url", CreateOrgURL, "error", err)
		}
		return nil
	}
}

func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !f.ready {
		return f, nil
	}
	switch msg := msg.(type) {
	case checkedMsg, persistedMsg:
		return f, f.controller.Update(msg)
	case tea.KeyMsg:
		return f, f.handleKey(msg)
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f *Form) handleKey(msg tea.KeyMsg) tea.Cmd {
	focused := f.Focused()
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return nil
	case "enter":
		if focused == ElemURL {
			return f.submit()
		}
		return f.Click(focused)
	case " ", "space":
		if focused != ElemURL {
			return f.Click(focused)
		}
	}
	if focused != ElemURL {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f *Form) setFocus(i int) {
	n := len(f.elements)
	f.focus = ((i % n) + n) % n
	if f.elements[f.focus].id == ElemURL {
		f.input.Focus()
	} else {
		f.input.Blur()
	}
}

func (f *Form) View() string {
	if !f.ready {
		return ""
	}
	var b strings.Builder
	for i, el := range f.elements {
		focused := i == f.focus
		switch el.kind {
		case kindInput:
			b.WriteString(titleStyle.Render(el.label) + "\n")
			b.WriteString(f.input.View() + "\n")
		case kindButton:
			label := el.label
			if el.id == ElemConnect {
				label = f.ConnectLabel()
			}
			style := buttonStyle
			if focused {
				style = focusedStyle
			}
			b.WriteString(style.Render(label) + "\n")
			if el.id == ElemConnect {
				b.WriteString(dividerStyle.Render("──── "+f.t("OR")+" ────") + "\n")
			}
		case kindLink:
			label := el.label + " ↗"
			if focused {
				label = "> " + label
			}
			b.WriteString(linkStyle.Render(label) + "\n")
		}
	}
	hint := f.t("Tab: next  Enter: activate")
	if f.props.Dismissible {
		hint += "  " + f.t("Esc: back")
	}
	b.WriteString("\n" + hintStyle.Render(hint))
	return b.String()
}
