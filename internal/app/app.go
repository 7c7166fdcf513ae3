// Package app is the terminal shell that hosts the add-server form and the
// list of known servers.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Uri2001/orgs/internal/dialog"
	"github.com/Uri2001/orgs/internal/hostmsg"
	"github.com/Uri2001/orgs/internal/serverform"
	"github.com/Uri2001/orgs/internal/store"
)

type mode int

const (
	modeForm mode = iota
	modeList
	modeConfirmDelete
)

var (
	baseStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("7"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

const networkSettingsHint = "Network and proxy settings are read from HTTPS_PROXY, HTTP_PROXY and NO_PROXY"

// Deps are the services the shell and its form use.
type Deps struct {
	Store      *store.Store
	Validator  serverform.DomainValidator
	Links      serverform.LinkOpener
	Host       serverform.HostMessenger
	Translator serverform.Translator
	Timeout    time.Duration
	Logger     *slog.Logger
}

// App is the root bubbletea model.
type App struct {
	ctx    context.Context
	deps   Deps
	logger *slog.Logger

	root    *serverform.Container
	dialog  *dialog.Model
	form    *serverform.Form
	list    *serverList
	mode    mode
	confirm string
	status  string
	err     error
	width   int
	height  int
}

// New builds the shell. It opens on the form when no server is known yet.
func New(ctx context.Context, deps Deps) (*App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	translate := func(key string) string { return key }
	if deps.Translator != nil {
		translate = deps.Translator.Translate
	}
	a := &App{
		ctx:    ctx,
		deps:   deps,
		logger: logger,
		root:   serverform.NewContainer(),
		dialog: dialog.New(),
		list:   newServerList(translate),
	}
	if err := a.reload(); err != nil {
		return nil, err
	}
	if len(a.list.servers) == 0 {
		if err := a.showForm(); err != nil {
			return nil, err
		}
	} else {
		a.showList()
	}
	return a, nil
}

// Err is the error that ended the program, if any.
func (a *App) Err() error { return a.err }

func (a *App) reload() error {
	servers, err := a.deps.Store.ListServers(a.ctx)
	if err != nil {
		return err
	}
	a.list.setServers(servers)
	return nil
}

func (a *App) showForm() error {
	a.form = serverform.New(serverform.Props{
		Root:        a.root,
		OnChange:    a.serverAdded,
		Validator:   a.deps.Validator,
		Registry:    a.deps.Store,
		Dialog:      a.dialog,
		Links:       a.deps.Links,
		Host:        a.deps.Host,
		Translator:  a.deps.Translator,
		Timeout:     a.deps.Timeout,
		Logger:      a.logger,
		Dismissible: len(a.list.servers) > 0,
	})
	if err := a.form.Setup(); err != nil {
		return fmt.Errorf("setup form: %w", err)
	}
	a.mode = modeForm
	return nil
}

func (a *App) showList() {
	a.root.Mount(a.list)
	a.mode = modeList
}

func (a *App) serverAdded() {
	if err := a.reload(); err != nil {
		a.status = "reload error: " + err.Error()
	} else {
		a.status = "saved"
	}
	a.showList()
}

func (a *App) Init() tea.Cmd {
	return a.root.Content().Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.applyLayout(msg.Width, msg.Height)
		return a, nil
	case serverform.PersistFailedMsg:
		a.err = fmt.Errorf("store server %s: %w", msg.Descriptor.URL, msg.Err)
		return a, tea.Quit
	case hostmsg.Message:
		a.handleHostMessage(msg)
		return a, nil
	case dialog.ClosedMsg:
		return a, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.dialog.Open() {
			return a, a.dialog.Update(msg)
		}
		switch a.mode {
		case modeList:
			if cmd, handled := a.handleListKey(msg); handled {
				return a, cmd
			}
		case modeForm:
			// A form with a submission in flight stays mounted until its result arrives.
			if msg.String() == "esc" && len(a.list.servers) > 0 && a.form.State() == serverform.StateIdle {
				a.status = ""
				a.showList()
				return a, nil
			}
		case modeConfirmDelete:
			return a, a.handleConfirmKey(msg)
		}
	}
	return a, a.root.Update(msg)
}

func (a *App) handleHostMessage(msg hostmsg.Message) {
	if msg.Channel == hostmsg.ForwardMessage && len(msg.Args) > 0 && msg.Args[0] == hostmsg.OpenNetworkSettings {
		a.logger.Info("network settings requested")
		a.status = networkSettingsHint
		return
	}
	a.logger.Warn("unhandled host message", "channel", msg.Channel, "args", msg.Args)
}

func (a *App) handleListKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	searching := a.list.search.Focused()
	switch msg.String() {
	case "q":
		if !searching {
			return tea.Quit, true
		}
	case "/":
		if !searching {
			a.list.search.Focus()
			return nil, true
		}
	case "esc":
		a.list.search.SetValue("")
		a.list.search.Blur()
		a.list.applyFilter(true)
		return nil, true
	case "up":
		a.list.moveCursor(-1)
		return nil, true
	case "down":
		a.list.moveCursor(1)
		return nil, true
	case "pgup":
		a.list.movePage(-1)
		return nil, true
	case "pgdown", "pgdn":
		a.list.movePage(1)
		return nil, true
	case "enter":
		if sel, ok := a.list.currentSelection(); ok {
			return a.openServer(sel), true
		}
		return nil, true
	case "a", "ctrl+a", "alt+n":
		if searching && msg.String() == "a" {
			break
		}
		a.status = ""
		if err := a.showForm(); err != nil {
			a.status = err.Error()
			return nil, true
		}
		return a.form.Init(), true
	case "d", "ctrl+d", "alt+d":
		if searching && msg.String() == "d" {
			break
		}
		if sel, ok := a.list.currentSelection(); ok {
			a.mode = modeConfirmDelete
			a.confirm = fmt.Sprintf("Delete %s? y/N", sel.URL)
			a.status = ""
		}
		return nil, true
	}
	return nil, false
}

func (a *App) openServer(srv store.Server) tea.Cmd {
	if err := a.deps.Store.MarkUsed(a.ctx, srv.ID); err != nil {
		a.status = "mark used: " + err.Error()
		return nil
	}
	if err := a.reload(); err != nil {
		a.status = "reload error: " + err.Error()
		return nil
	}
	a.status = "opening " + srv.Alias
	links, logger := a.deps.Links, a.logger
	return func() tea.Msg {
		u, err := url.Parse(srv.URL)
		if err == nil {
			err = links.OpenBrowser(u)
		}
		if err != nil {
			logger.Warn("opening server failed", "url", srv.URL, "error", err)
		}
		return nil
	}
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		if sel, ok := a.list.currentSelection(); ok {
			if err := a.deps.Store.RemoveServer(a.ctx, sel.ID); err != nil {
				a.status = "delete error: " + err.Error()
			} else if err := a.reload(); err != nil {
				a.status = "reload error: " + err.Error()
			} else {
				a.status = "deleted"
			}
		}
		a.mode = modeList
		if len(a.list.servers) == 0 {
			if err := a.showForm(); err != nil {
				a.status = err.Error()
				return nil
			}
			return a.form.Init()
		}
	case "n", "N", "esc", "enter":
		a.mode = modeList
		a.status = ""
	}
	return nil
}

func (a *App) View() string {
	if a.dialog.Open() {
		if a.width > 0 && a.height > 0 {
			return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.dialog.View())
		}
		return a.dialog.View()
	}

	body := a.root.View()
	if a.mode == modeConfirmDelete {
		body = headerStyle.Render("Confirm") + "\n\n" + statusStyle.Render(a.confirm)
	}
	if a.status != "" {
		body += "\n" + statusStyle.Render(a.status)
	}
	return baseStyle.Render(body)
}
