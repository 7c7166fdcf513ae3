package serverform

import tea "github.com/charmbracelet/bubbletea"

// Container is a mount point for one child model. Mounting replaces whatever
// was shown before.
type Container struct {
	content tea.Model
	mounts  int
}

func NewContainer() *Container {
	return &Container{}
}

// Mount clears the container and shows m.
func (c *Container) Mount(m tea.Model) {
	c.content = m
	c.mounts++
}

func (c *Container) Content() tea.Model { return c.content }

func (c *Container) Update(msg tea.Msg) tea.Cmd {
	if c.content == nil {
		return nil
	}
	// The child may mount a replacement while handling msg.
	mounts := c.mounts
	next, cmd := c.content.Update(msg)
	if c.mounts == mounts {
		c.content = next
	}
	return cmd
}

func (c *Container) View() string {
	if c.content == nil {
		return ""
	}
	return c.content.View()
}
