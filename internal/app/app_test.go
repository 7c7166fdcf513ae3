package app

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uri2001/orgs/internal/domainutil"
	"github.com/Uri2001/orgs/internal/hostmsg"
	"github.com/Uri2001/orgs/internal/serverform"
	"github.com/Uri2001/orgs/internal/store"
)

type validatorFunc func(ctx context.Context, candidate string) (domainutil.Descriptor, error)

func (f validatorFunc) CheckDomain(ctx context.Context, candidate string) (domainutil.Descriptor, error) {
	return f(ctx, candidate)
}

type recordingLinks struct {
	opened []string
}

func (l *recordingLinks) OpenBrowser(u *url.URL) error {
	l.opened = append(l.opened, u.String())
	return nil
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "servers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestApp(t *testing.T, s *store.Store, v validatorFunc) (*App, *recordingLinks) {
	t.Helper()
	links := &recordingLinks{}
	a, err := New(context.Background(), Deps{
		Store:     s,
		Validator: v,
		Links:     links,
		Host:      hostmsg.NewBus(nil),
	})
	require.NoError(t, err)
	return a, links
}

// drain runs commands and feeds their messages back into the app until one
// yields nothing. The last message is returned.
func drain(a *App, cmd tea.Cmd) tea.Msg {
	var last tea.Msg
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return last
		}
		last = msg
		if _, ok := msg.(tea.QuitMsg); ok {
			return last
		}
		_, cmd = a.Update(msg)
	}
	return last
}

func typeText(a *App, s string) {
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

var example = domainutil.Descriptor{URL: "https://zulip.example.com", Alias: "Example", ZulipVersion: "9.0"}

func TestNew_EmptyStoreStartsOnForm(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t, openStore(t), nil)

	assert.Equal(t, modeForm, a.mode)
	assert.Contains(t, a.View(), "Organization URL")
}

func TestNew_KnownServersStartOnList(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	require.NoError(t, s.AddDomain(context.Background(), example))

	a, _ := newTestApp(t, s, nil)
	assert.Equal(t, modeList, a.mode)
	assert.Contains(t, a.View(), "Known servers")
}

func TestAddServerFlow(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	a, _ := newTestApp(t, s, func(_ context.Context, candidate string) (domainutil.Descriptor, error) {
		if candidate != "zulip.example.com" {
			return domainutil.Descriptor{}, errors.New("unexpected candidate " + candidate)
		}
		return example, nil
	})

	typeText(a, " zulip.example.com ")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(a, cmd)

	assert.Equal(t, modeList, a.mode)
	assert.Equal(t, "saved", a.status)
	require.Len(t, a.list.servers, 1)
	assert.Equal(t, example.URL, a.list.servers[0].URL)

	ok, err := s.HasServer(context.Background(), example.URL)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddServerFlow_ValidationErrorOpensDialog(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t, openStore(t), func(context.Context, string) (domainutil.Descriptor, error) {
		return domainutil.Descriptor{}, &domainutil.DomainError{Name: "DomainError", Message: "not found"}
	})

	typeText(a, "nope.example.com")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(a, cmd)

	require.True(t, a.dialog.Open())
	assert.Contains(t, a.View(), "DomainError: not found")
	assert.Equal(t, modeForm, a.mode)

	// Keys go to the dialog while it is open.
	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(a, cmd)
	assert.False(t, a.dialog.Open())
	assert.Equal(t, serverform.StateIdle, a.form.State())
}

func TestPersistFailureEndsProgram(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t, openStore(t), nil)

	boom := errors.New("disk full")
	_, cmd := a.Update(serverform.PersistFailedMsg{Descriptor: example, Err: boom})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.ErrorIs(t, a.Err(), boom)
}

func TestNetworkSettingsMessage(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t, openStore(t), nil)

	a.Update(hostmsg.Message{Channel: hostmsg.ForwardMessage, Args: []any{hostmsg.OpenNetworkSettings}})
	assert.Equal(t, networkSettingsHint, a.status)
}

func TestListOpenAndDelete(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	require.NoError(t, s.AddDomain(context.Background(), example))
	a, links := newTestApp(t, s, nil)

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(a, cmd)
	assert.Equal(t, []string{example.URL}, links.opened)
	assert.Equal(t, 1, a.list.servers[0].UseCount)

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.Equal(t, modeConfirmDelete, a.mode)
	assert.Contains(t, a.View(), "Delete https://zulip.example.com? y/N")

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.Empty(t, a.list.servers)
	assert.Equal(t, modeForm, a.mode, "the form comes back when no server is left")
}

func TestEscFromFormReturnsToList(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	require.NoError(t, s.AddDomain(context.Background(), example))
	a, _ := newTestApp(t, s, nil)

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	require.Equal(t, modeForm, a.mode)

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeList, a.mode)
}

func TestFilterServers(t *testing.T) {
	t.Parallel()
	servers := []store.Server{
		{Descriptor: domainutil.Descriptor{URL: "https://chat.zulip.org", Alias: "Zulip Community"}},
		{Descriptor: domainutil.Descriptor{URL: "https://rust-lang.zulipchat.com", Alias: "Rust"}},
		{Descriptor: domainutil.Descriptor{URL: "https://leanprover.zulipchat.com", Alias: "Lean"}},
	}

	assert.Len(t, FilterServers(servers, ""), 3)

	got := FilterServers(servers, "rust")
	require.NotEmpty(t, got)
	assert.Equal(t, "Rust", got[0].Alias)

	assert.Empty(t, FilterServers(servers, "qqqq"))
}

func TestEscIgnoredWhileStoring(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	other := domainutil.Descriptor{URL: "https://other.example.com", Alias: "Other"}
	require.NoError(t, s.AddDomain(context.Background(), other))
	a, _ := newTestApp(t, s, func(context.Context, string) (domainutil.Descriptor, error) {
		return example, nil
	})

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	require.Equal(t, modeForm, a.mode)
	typeText(a, "zulip.example.com")

	_, check := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, check)
	_, persist := a.Update(check())
	require.NotNil(t, persist)

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeForm, a.mode, "the form stays until the server is stored")

	drain(a, persist)
	assert.Equal(t, modeList, a.mode)
	assert.Equal(t, "saved", a.status)
	assert.Len(t, a.list.servers, 2)
}

func TestEscDuringValidationKeepsSingleRequest(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	require.NoError(t, s.AddDomain(context.Background(), example))

	release := make(chan struct{})
	a, _ := newTestApp(t, s, func(ctx context.Context, _ string) (domainutil.Descriptor, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return domainutil.Descriptor{}, errors.New("released")
	})
	t.Cleanup(func() { close(release) })

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	typeText(a, "slow.example.com")
	_, first := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, first)
	require.Equal(t, serverform.StateValidating, a.form.State())

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, modeForm, a.mode)
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	require.Equal(t, modeForm, a.mode)

	_, second := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second)
}
