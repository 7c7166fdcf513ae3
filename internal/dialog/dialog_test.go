package dialog

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowMessageBox_DefaultsToOK(t *testing.T) {
	t.Parallel()

	m := New()
	assert.False(t, m.Open())
	assert.Empty(t, m.View())

	m.ShowMessageBox(Options{Type: TypeError, Message: "DomainError: not found"})
	require.True(t, m.Open())
	assert.Equal(t, []string{"OK"}, m.Options().Buttons)
	assert.Contains(t, m.View(), "DomainError: not found")
}

func TestUpdate_EnterAcknowledges(t *testing.T) {
	t.Parallel()

	m := New()
	m.ShowMessageBox(Options{Message: "pick", Buttons: []string{"Cancel", "Retry"}})

	assert.Nil(t, m.Update(tea.KeyMsg{Type: tea.KeyRight}))
	cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.Open())
	assert.Equal(t, ClosedMsg{Button: 1}, cmd())
}

func TestUpdate_EscCloses(t *testing.T) {
	t.Parallel()

	m := New()
	m.ShowMessageBox(Options{Message: "x"})

	cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, ClosedMsg{Button: -1}, cmd())
}

func TestUpdate_IgnoredWhenClosed(t *testing.T) {
	t.Parallel()

	assert.Nil(t, New().Update(tea.KeyMsg{Type: tea.KeyEnter}))
}
