package scraper

import (
	"fmt"
	"net"
	"net/url"
)

var privateBlocks = mustParseCIDRs(
	"127.0.0.0/8",    // localhost
	"10.0.0.0/8",     // private
	"172.16.0.0/12",  // private
	"192.168.0.0/16", // private
	"169.254.0.0/16", // link-local
	"::1/128",        // localhost IPv6
	"fe80::/10",      // link-local IPv6
	"fc00::/7",       // unique local IPv6
)

func mustParseCIDRs(blocks ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(blocks))
	for _, block := range blocks {
		_, cidr, err := net.ParseCIDR(block)
		if err != nil {
			panic(err)
		}
		nets = append(nets, cidr)
	}
	return nets
}

// validateURL checks that target is an absolute http(s) URL.
// With blockPrivate set, loopback and private addresses are refused as well.
func validateURL(target string, blockPrivate bool) error {
	parsedURL, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %q (only http and https are allowed)", parsedURL.Scheme)
	}
	host := parsedURL.Hostname()
	if host == "" {
		return fmt.Errorf("missing host")
	}
	if !blockPrivate {
		return nil
	}

	if host == "localhost" {
		return fmt.Errorf("access to localhost is not allowed")
	}
	if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
		return fmt.Errorf("access to private IP %s is not allowed", ip)
	}
	return nil
}

// isPrivateIP checks if an IP address is in a private range
func isPrivateIP(ip net.IP) bool {
	for _, cidr := range privateBlocks {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
