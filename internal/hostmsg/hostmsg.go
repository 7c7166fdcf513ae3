// Package hostmsg forwards fire-and-forget requests from embedded views to the
// application shell that hosts them.
package hostmsg

import (
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Channel names understood by the shell.
const (
	ForwardMessage = "forward-message"

	OpenNetworkSettings = "open-network-settings"
)

// Message is delivered to the running program for every Send.
type Message struct {
	Channel string
	Args    []any
}

// Sender is the part of *tea.Program the bus needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Bus delivers messages to the program it is attached to. Messages sent
// before Attach are dropped.
type Bus struct {
	mu     sync.Mutex
	target Sender
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Attach sets the program that receives messages.
func (b *Bus) Attach(target Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = target
}

// Send posts a message and returns immediately. tea.Program.Send blocks until
// the event loop reads the message, so delivery happens on its own goroutine.
func (b *Bus) Send(channel string, args ...any) {
	b.mu.Lock()
	target := b.target
	b.mu.Unlock()

	if target == nil {
		b.logger.Warn("host message dropped, no program attached", "channel", channel)
		return
	}
	b.logger.Debug("host message", "channel", channel, "args", args)
	go target.Send(Message{Channel: channel, Args: args})
}
