// Package linkutil opens links in the user's browser.
package linkutil

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/pkg/browser"
)

// ErrUntrustedScheme is returned for links that are not http, https or mailto.
var ErrUntrustedScheme = errors.New("linkutil: refusing to open untrusted scheme")

// Opener opens URLs in the default browser.
type Opener struct {
	open func(string) error
}

// New returns an Opener backed by the system browser.
func New() *Opener {
	return &Opener{open: browser.OpenURL}
}

// OpenBrowser opens u externally. Only absolute http, https and mailto URLs are accepted.
func (o *Opener) OpenBrowser(u *url.URL) error {
	if u == nil || !u.IsAbs() {
		return fmt.Errorf("%w: %v", ErrUntrustedScheme, u)
	}
	switch u.Scheme {
	case "http", "https", "mailto":
	default:
		return fmt.Errorf("%w: %s", ErrUntrustedScheme, u.Scheme)
	}
	return o.open(u.String())
}
