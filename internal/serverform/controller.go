package serverform

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Uri2001/orgs/internal/dialog"
	"github.com/Uri2001/orgs/internal/domainutil"
)

// DefaultTimeout bounds a single validation when none is configured.
const DefaultTimeout = 30 * time.Second

type checkedMsg struct {
	token string
	desc  domainutil.Descriptor
	err   error
}

type persistedMsg struct {
	token string
	desc  domainutil.Descriptor
	err   error
}

// PersistFailedMsg is emitted when a validated server could not be stored.
// The form does not recover from it; the program hosting the form must.
type PersistFailedMsg struct {
	Descriptor domainutil.Descriptor
	Err        error
}

// Controller runs submissions: one validation at a time, failures shown in a
// dialog, successes stored and reported through onChange.
//
// All methods must be called from the bubbletea event loop. Submit sets the
// state before returning the command that performs the validation, so a
// second Submit issued before the first result arrives is ignored.
type Controller struct {
	validator DomainValidator
	registry  ServerRegistry
	dialog    Dialog
	translate func(string) string
	onChange  func()
	timeout   time.Duration
	logger    *slog.Logger

	state     State
	lastError string
	token     string
}

// NewController builds the controller from the collaborators in p.
func NewController(p Props) *Controller {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Controller{
		validator: p.Validator,
		registry:  p.Registry,
		dialog:    p.Dialog,
		translate: translator(p.Translator),
		onChange:  p.OnChange,
		timeout:   timeout,
		logger:    loggerOrDefault(p.Logger),
	}
}

func (c *Controller) State() State { return c.state }

// LastError is the message of the most recent failure, empty after a new submission.
func (c *Controller) LastError() string { return c.lastError }

// Submit starts validating raw. It returns nil while a submission is in progress.
func (c *Controller) Submit(raw string) tea.Cmd {
	if c.state != StateIdle {
		c.logger.Debug("submit ignored", "state", c.state.String(), "request", c.token)
		return nil
	}

	candidate := Normalize(raw)
	c.state = StateValidating
	c.lastError = ""
	c.token = uuid.NewString()
	c.logger.Info("validating server", "candidate", candidate, "request", c.token)

	token, validator, timeout := c.token, c.validator, c.timeout
	return func() tea.Msg {
		desc, err := checkDomain(validator, candidate, timeout)
		return checkedMsg{token: token, desc: desc, err: err}
	}
}

// Update applies the results of commands returned by Submit. Results of
// abandoned requests are dropped.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case checkedMsg:
		if !c.current(msg.token) {
			return nil
		}
		if msg.err != nil {
			c.fail(msg.err)
			return nil
		}
		return c.persist(msg.token, msg.desc)

	case persistedMsg:
		if !c.current(msg.token) {
			return nil
		}
		if msg.err != nil {
			c.logger.Error("storing server failed", "url", msg.desc.URL, "error", msg.err, "request", msg.token)
			failed := PersistFailedMsg{Descriptor: msg.desc, Err: msg.err}
			return func() tea.Msg { return failed }
		}
		c.state = StateSucceeded
		c.logger.Info("server added", "url", msg.desc.URL, "request", msg.token)
		if c.onChange != nil {
			c.onChange()
		}
	}
	return nil
}

func (c *Controller) current(token string) bool {
	if c.state == StateValidating && token == c.token {
		return true
	}
	c.logger.Debug("stale result dropped", "request", token, "current", c.token, "state", c.state.String())
	return false
}

func (c *Controller) fail(err error) {
	msg := ErrorMessage(err)
	if msg == unknownError {
		msg = c.translate(unknownError)
	}
	c.state = StateFailed
	c.lastError = msg
	c.logger.Warn("server validation failed", "error", err, "request", c.token)

	c.dialog.ShowMessageBox(dialog.Options{
		Type:    dialog.TypeError,
		Title:   c.translate("Error"),
		Message: msg,
		Buttons: []string{c.translate("OK")},
	})
	c.state = StateIdle
}

func (c *Controller) persist(token string, d domainutil.Descriptor) tea.Cmd {
	registry := c.registry
	return func() tea.Msg {
		err := registry.AddDomain(context.Background(), d)
		return persistedMsg{token: token, desc: d, err: err}
	}
}

// checkDomain calls the validator and gives up after timeout even if the
// validator ignores its context. A panic inside the validator becomes an error.
func checkDomain(v DomainValidator, candidate string, timeout time.Duration) (domainutil.Descriptor, error) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()

	type result struct {
		desc domainutil.Descriptor
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: rejection(r)}
			}
		}()
		desc, err := v.CheckDomain(ctx, candidate)
		ch <- result{desc: desc, err: err}
	}()

	timedOut := &TimeoutError{Candidate: candidate, After: timeout}
	select {
	case <-ctx.Done():
		return domainutil.Descriptor{}, timedOut
	case r := <-ch:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domainutil.Descriptor{}, timedOut
		}
		return r.desc, r.err
	}
}

func rejection(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &Rejection{Value: v}
}

func translator(t Translator) func(string) string {
	if t == nil {
		return func(key string) string { return key }
	}
	return t.Translate
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
