package domainutil

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// FormatURL turns user input into an absolute server URL.
//
// Input without a scheme is assumed to be https. Only http and https are
// accepted. The host is lowercased and converted to its ASCII (punycode) form,
// query and fragment are dropped and trailing slashes removed from the path.
func FormatURL(raw string) (*url.URL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, domainError("Please enter a valid URL.", ErrEmptyURL)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, domainError(fmt.Sprintf("%q is not a valid URL", raw), err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domainError(fmt.Sprintf("unsupported scheme %q", u.Scheme), nil)
	}

	host := u.Hostname()
	if host == "" {
		return nil, domainError(fmt.Sprintf("%q is not a valid URL", raw), nil)
	}
	if ip := net.ParseIP(host); ip == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return nil, domainError(fmt.Sprintf("invalid hostname %q", host), err)
		}
		host = strings.ToLower(ascii)
	}

	switch port := u.Port(); {
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		u.Host = "[" + host + "]"
	default:
		u.Host = host
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u, nil
}
