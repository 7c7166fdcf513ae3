package serverform

import (
	"context"
	"net/url"

	"github.com/Uri2001/orgs/internal/dialog"
	"github.com/Uri2001/orgs/internal/domainutil"
)

// DomainValidator resolves user input into a server descriptor.
type DomainValidator interface {
	CheckDomain(ctx context.Context, candidate string) (domainutil.Descriptor, error)
}

// ServerRegistry persists validated servers.
type ServerRegistry interface {
	AddDomain(ctx context.Context, d domainutil.Descriptor) error
}

// Dialog shows a modal acknowledgement box.
type Dialog interface {
	ShowMessageBox(opts dialog.Options)
}

// LinkOpener opens URLs outside the application.
type LinkOpener interface {
	OpenBrowser(u *url.URL) error
}

// HostMessenger forwards requests to the application hosting the form.
type HostMessenger interface {
	Send(channel string, args ...any)
}

// Translator returns display strings for keys.
type Translator interface {
	Translate(key string) string
}
