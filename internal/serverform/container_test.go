package serverform

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type stubView struct {
	text     string
	onUpdate func()
}

func (s *stubView) Init() tea.Cmd { return nil }

func (s *stubView) Update(tea.Msg) (tea.Model, tea.Cmd) {
	if s.onUpdate != nil {
		s.onUpdate()
	}
	return s, nil
}

func (s *stubView) View() string { return s.text }

func TestContainer_MountReplaces(t *testing.T) {
	t.Parallel()

	c := NewContainer()
	assert.Empty(t, c.View())
	assert.Nil(t, c.Update(nil))

	c.Mount(&stubView{text: "first"})
	c.Mount(&stubView{text: "second"})
	assert.Equal(t, "second", c.View())
}

func TestContainer_ChildMayMountReplacement(t *testing.T) {
	t.Parallel()

	c := NewContainer()
	next := &stubView{text: "next"}
	c.Mount(&stubView{text: "first", onUpdate: func() { c.Mount(next) }})

	c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Same(t, next, c.Content())
}
