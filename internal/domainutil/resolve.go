package domainutil

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
)

const resolvConf = "/etc/resolv.conf"

// SystemResolver returns the first nameserver listed in /etc/resolv.conf as host:port.
func SystemResolver() (string, error) {
	cfg, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil {
		return "", err
	}
	if len(cfg.Servers) == 0 {
		return "", ErrNoResolver
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port), nil
}

// queryDNS sends one query for name to server and honours ctx cancellation.
func queryDNS(ctx context.Context, client *dns.Client, name, server string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	type dnsResult struct {
		msg *dns.Msg
		err error
	}
	ch := make(chan dnsResult, 1)
	go func() {
		resp, _, err := client.ExchangeContext(ctx, msg, server)
		ch <- dnsResult{msg: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.msg, r.err
	}
}

// resolveHost checks that host has at least one address record.
// IP literals, localhost and a disabled resolver skip the lookup.
func (c *Checker) resolveHost(ctx context.Context, host string) error {
	if c.resolver == "" || net.ParseIP(host) != nil || strings.EqualFold(host, "localhost") {
		return nil
	}

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		resp, err := queryDNS(ctx, c.dnsClient, host, c.resolver, qtype)
		if err != nil {
			return &DomainError{Name: "DNSError", Message: fmt.Sprintf("lookup %s: %v", host, err), Err: err}
		}
		if resp.Rcode == dns.RcodeNameError {
			break
		}
		if resp.Rcode != dns.RcodeSuccess {
			return &DomainError{
				Name:    "DNSError",
				Message: fmt.Sprintf("lookup %s: %s", host, dns.RcodeToString[resp.Rcode]),
			}
		}
		if hasAddress(resp) {
			return nil
		}
	}
	c.logger.Debug("host did not resolve", "host", host, "resolver", c.resolver)
	return domainError(host+" could not be resolved", ErrUnresolvable)
}

func hasAddress(msg *dns.Msg) bool {
	for _, rr := range msg.Answer {
		switch rr.(type) {
		case *dns.A, *dns.AAAA:
			return true
		}
	}
	return false
}
