package safefetch

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
)

// blockedPrefixes covers address ranges not already rejected by the netip
// classification methods: CGNAT, IETF protocol assignments, benchmarking,
// class E, limited broadcast, the v4 "this network" block, and the v6
// documentation range.
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("255.255.255.255/32"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// Resolver abstracts DNS resolution so the guard can be tested without
// network access. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Blocked reports whether addr falls in a private, loopback, link-local,
// multicast, CGNAT, unique-local, reserved, or broadcast range. IPv4-mapped
// IPv6 addresses are unmapped before classification.
func Blocked(addr netip.Addr) bool {
	addr = addr.Unmap()

	if !addr.IsValid() || addr.IsUnspecified() {
		return true
	}
	if addr.IsLoopback() || addr.IsPrivate() {
		return true
	}
	if addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return true
	}

	for _, prefix := range blockedPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}

// ValidateURL checks a URL against the fetch policy: http/https scheme only,
// no embedded credentials, no literal IP host, and every DNS-resolved
// address outside the blocked ranges. A single unsafe address among the
// resolved set rejects the URL.
func ValidateURL(ctx context.Context, resolver Resolver, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed", ErrUnsafeURL, u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("%w: embedded credentials", ErrUnsafeURL)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrUnsafeURL)
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return fmt.Errorf("%w: literal IP host %s", ErrUnsafeURL, host)
	}

	if resolver == nil {
		resolver = net.DefaultResolver
	}

	addrs, err := resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrFetch, host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%w: %s resolved to no addresses", ErrFetch, host)
	}

	for _, addr := range addrs {
		if Blocked(addr) {
			return fmt.Errorf("%w: %s resolves to restricted address %s", ErrUnsafeURL, host, addr)
		}
	}

	return nil
}
