// Package domainutil validates organization URLs entered by the user and turns
// them into [Descriptor] values that can be stored as known servers.
package domainutil

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/miekg/dns"
)

const (
	serverSettingsPath = "/api/v1/server_settings"
	maxSettingsBody    = 1 << 20
	defaultUserAgent   = "orgs/1.0"
	defaultHTTPTimeout = 30 * time.Second
	defaultDNSTimeout  = 5 * time.Second
)

// KnownServers reports whether a server URL is already registered.
type KnownServers interface {
	HasServer(ctx context.Context, url string) (bool, error)
}

// Checker resolves candidate URLs into server descriptors.
type Checker struct {
	httpClient *http.Client
	dnsClient  *dns.Client
	resolver   string
	known      KnownServers
	userAgent  string
	logger     *slog.Logger
}

// New returns a Checker. Without [WithResolver] no DNS pre-check is done.
func New(opts ...Option) *Checker {
	c := &Checker{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		dnsClient:  &dns.Client{Timeout: defaultDNSTimeout},
		userAgent:  defaultUserAgent,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckDomain validates candidate and returns the descriptor of the server behind it.
//
// Failures the user can act on are returned as *DomainError. Errors from the
// known-server lookup are returned wrapped as they are.
func (c *Checker) CheckDomain(ctx context.Context, candidate string) (Descriptor, error) {
	u, err := FormatURL(candidate)
	if err != nil {
		return Descriptor{}, err
	}
	serverURL := u.String()

	if err := c.checkDuplicate(ctx, serverURL); err != nil {
		return Descriptor{}, err
	}
	if err := c.resolveHost(ctx, u.Hostname()); err != nil {
		return Descriptor{}, err
	}

	body, err := c.fetchServerSettings(ctx, serverURL)
	if err != nil {
		return Descriptor{}, err
	}

	d := descriptorFromSettings(body, u)
	if d.URL != serverURL {
		if err := c.checkDuplicate(ctx, d.URL); err != nil {
			return Descriptor{}, err
		}
	}
	c.logger.Info("server validated", "url", d.URL, "alias", d.Alias, "zulip_version", d.ZulipVersion)
	return d, nil
}

func (c *Checker) checkDuplicate(ctx context.Context, serverURL string) error {
	if c.known == nil {
		return nil
	}
	dup, err := c.known.HasServer(ctx, serverURL)
	if err != nil {
		return fmt.Errorf("check known servers: %w", err)
	}
	if dup {
		return domainError("This server has been added.", ErrDuplicate)
	}
	return nil
}

func (c *Checker) fetchServerSettings(ctx context.Context, serverURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+serverSettingsPath, nil)
	if err != nil {
		return nil, domainError(fmt.Sprintf("%s is not a valid URL", serverURL), err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(serverURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSettingsBody))
	if err != nil {
		return nil, &DomainError{Name: "ConnectionError", Message: fmt.Sprintf("reading %s: %v", serverURL, err), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domainError(fmt.Sprintf("%s is not a Zulip server (HTTP %d)", serverURL, resp.StatusCode), ErrNotZulip)
	}
	if !isServerSettings(body) {
		return nil, domainError(serverURL+" is not a Zulip server", ErrNotZulip)
	}
	return body, nil
}

// transportError names a failed request after its cause.
func transportError(serverURL string, err error) error {
	var (
		verifyErr   *tls.CertificateVerificationError
		hostErr     x509.HostnameError
		authorityEr x509.UnknownAuthorityError
	)
	if errors.As(err, &verifyErr) || errors.As(err, &hostErr) || errors.As(err, &authorityEr) {
		return &DomainError{
			Name:    "CertificateError",
			Message: fmt.Sprintf("the certificate of %s could not be verified", serverURL),
			Err:     err,
		}
	}
	return &DomainError{
		Name:    "ConnectionError",
		Message: fmt.Sprintf("could not connect to %s", serverURL),
		Err:     err,
	}
}
