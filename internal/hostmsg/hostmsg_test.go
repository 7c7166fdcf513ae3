package hostmsg

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func TestBus_Send(t *testing.T) {
	t.Parallel()

	// Unbuffered, like tea.Program: Send must not wait for the reader.
	target := make(chanSender)
	bus := NewBus(nil)
	bus.Attach(target)

	bus.Send(ForwardMessage, OpenNetworkSettings)

	select {
	case msg := <-target:
		got, ok := msg.(Message)
		require.True(t, ok)
		assert.Equal(t, ForwardMessage, got.Channel)
		assert.Equal(t, []any{OpenNetworkSettings}, got.Args)
	case <-time.After(time.Second):
		t.Fatal("message was not delivered")
	}
}

func TestBus_SendWithoutTarget(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		NewBus(nil).Send(ForwardMessage, OpenNetworkSettings)
	})
}
