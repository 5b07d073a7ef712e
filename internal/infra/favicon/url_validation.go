package favicon

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// BaseURL reduces any item URL to the "https://<host>" key under which its
// favicon is memoized. The port, if any, is kept as part of the host.
func BaseURL(itemURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(itemURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Host == "" || u.Hostname() == "" {
		return "", fmt.Errorf("%w: no host in %q", ErrInvalidURL, itemURL)
	}
	return "https://" + strings.ToLower(u.Host), nil
}

// validateHost rejects non-http(s) URLs and, when denyPrivateIPs is set, hosts
// that resolve to internal addresses.
func validateHost(ctx context.Context, target *url.URL, denyPrivateIPs bool) error {
	if target.Scheme != "http" && target.Scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' not allowed", ErrInvalidURL, target.Scheme)
	}
	hostname := target.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}
	if !denyPrivateIPs {
		return nil
	}

	if ip := net.ParseIP(hostname); ip != nil {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: %s", ErrPrivateIP, ip)
		}
		return nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		return fmt.Errorf("DNS lookup failed for %s: %w", hostname, err)
	}
	for _, addr := range addrs {
		if isPrivateIP(addr.IP) {
			return fmt.Errorf("%w: hostname '%s' resolves to %s", ErrPrivateIP, hostname, addr.IP)
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
