package domainutil

import (
	"log/slog"
	"net/http"

	"github.com/miekg/dns"
)

// Option configures a [Checker].
type Option func(*Checker)

// WithHTTPClient replaces the client used to fetch server settings.
// Passing nil is a no-op.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithDNSClient replaces the client used for the host pre-check.
// Passing nil is a no-op.
func WithDNSClient(client *dns.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.dnsClient = client
		}
	}
}

// WithResolver enables the DNS pre-check against addr ("host" or "host:port").
// An empty addr disables it.
func WithResolver(addr string) Option {
	return func(c *Checker) {
		c.resolver = addr
	}
}

// WithKnownServers enables duplicate detection.
func WithKnownServers(known KnownServers) Option {
	return func(c *Checker) {
		c.known = known
	}
}

// WithUserAgent sets the User-Agent header sent to servers.
func WithUserAgent(ua string) Option {
	return func(c *Checker) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger. Passing nil is a no-op.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}
