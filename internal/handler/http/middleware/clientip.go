package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
)

// UnknownClient is the identity used when no address can be determined.
const UnknownClient = "unknown"

// Proxy headers consulted by the resolvers, in priority order.
const (
	headerForwardedFor       = "X-Forwarded-For"
	headerRealIP             = "X-Real-IP"
	headerVercelForwardedFor = "X-Vercel-Forwarded-For"
)

// IdentityResolver derives the rate limiting identity of a request.
type IdentityResolver interface {
	Resolve(r *http.Request) string
}

// IdentityResolverFunc adapts a function to IdentityResolver.
type IdentityResolverFunc func(r *http.Request) string

// Resolve calls f(r).
func (f IdentityResolverFunc) Resolve(r *http.Request) string { return f(r) }

// HeaderResolver reads the client address from proxy headers:
//
//  1. first comma-separated entry of X-Forwarded-For, trimmed
//  2. X-Real-IP
//  3. X-Vercel-Forwarded-For
//  4. "unknown"
//
// The headers are client-controlled unless a proxy overwrites them, so the
// result is a best-effort grouping key, not an authenticated address.
type HeaderResolver struct{}

// Resolve implements IdentityResolver.
func (HeaderResolver) Resolve(r *http.Request) string {
	if ip := headerIdentity(r); ip != "" {
		return ip
	}
	return UnknownClient
}

// ClientIP resolves the identity of r with HeaderResolver.
func ClientIP(r *http.Request) string {
	return HeaderResolver{}.Resolve(r)
}

func headerIdentity(r *http.Request) string {
	if xff := r.Header.Get(headerForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get(headerRealIP)); xri != "" {
		return xri
	}
	if v := r.Header.Get(headerVercelForwardedFor); v != "" {
		first, _, _ := strings.Cut(v, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return ""
}

// TrustedProxyConfig lists the reverse proxies whose forwarding headers are
// believed.
type TrustedProxyConfig struct {
	// Enabled indicates whether proxy headers are honoured at all.
	Enabled bool

	// AllowedCIDRs is the set of trusted proxy ranges. Single addresses are
	// stored as /32 or /128 prefixes.
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr ("IP:port" or "IP") is inside one of
// the trusted ranges.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	ip, err := extractIPFromAddr(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// LoadTrustedProxyConfig loads trusted proxy configuration from environment variables.
//
// Environment Variables:
//   - RATE_LIMIT_TRUST_PROXY: "true" enables proxy trust checking (default: false)
//   - RATE_LIMIT_TRUSTED_PROXIES: comma-separated IPs or CIDR ranges
//
// Enabling trust without any valid proxy is a startup error.
func LoadTrustedProxyConfig() (*TrustedProxyConfig, error) {
	cfg := &TrustedProxyConfig{
		Enabled:      config.GetEnvBool("RATE_LIMIT_TRUST_PROXY", false),
		AllowedCIDRs: []netip.Prefix{},
	}
	if !cfg.Enabled {
		return cfg, nil
	}

	proxies := config.GetEnvStringList("RATE_LIMIT_TRUSTED_PROXIES", nil)
	if len(proxies) == 0 {
		return nil, fmt.Errorf("RATE_LIMIT_TRUST_PROXY is enabled but RATE_LIMIT_TRUSTED_PROXIES is empty")
	}

	for _, p := range proxies {
		prefix, err := parseProxy(p)
		if err != nil {
			return nil, err
		}
		cfg.AllowedCIDRs = append(cfg.AllowedCIDRs, prefix)
	}
	return cfg, nil
}

func parseProxy(s string) (netip.Prefix, error) {
	if prefix, err := netip.ParsePrefix(s); err == nil {
		return prefix, nil
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid IP or CIDR format %q: must be an IP address or CIDR (e.g. 192.168.1.1 or 10.0.0.0/8)", s)
	}
	return netip.PrefixFrom(ip, ip.BitLen()), nil
}

// TrustedProxyResolver reads proxy headers only when the connection comes from
// a trusted proxy, and otherwise uses the peer address. Header values must
// parse as IP addresses.
type TrustedProxyResolver struct {
	config TrustedProxyConfig
}

// NewTrustedProxyResolver creates a TrustedProxyResolver.
func NewTrustedProxyResolver(cfg TrustedProxyConfig) *TrustedProxyResolver {
	return &TrustedProxyResolver{config: cfg}
}

// Resolve implements IdentityResolver.
func (tr *TrustedProxyResolver) Resolve(r *http.Request) string {
	if tr.config.Enabled && tr.config.IsTrusted(r.RemoteAddr) {
		if ip := parseFirstIP(r.Header.Get(headerForwardedFor)); ip != "" {
			return ip
		}
		if ip := parseFirstIP(r.Header.Get(headerRealIP)); ip != "" {
			return ip
		}
		if ip := parseFirstIP(r.Header.Get(headerVercelForwardedFor)); ip != "" {
			return ip
		}
	} else if xff := r.Header.Get(headerForwardedFor); xff != "" {
		slog.Debug("ignoring X-Forwarded-For from untrusted peer",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("x_forwarded_for", xff))
	}

	ip, err := extractIPFromAddr(r.RemoteAddr)
	if err != nil {
		return UnknownClient
	}
	return ip
}

// NewIdentityResolver returns a TrustedProxyResolver when proxy trust is
// configured and the HeaderResolver otherwise.
func NewIdentityResolver(cfg *TrustedProxyConfig) IdentityResolver {
	if cfg != nil && cfg.Enabled {
		return NewTrustedProxyResolver(*cfg)
	}
	return HeaderResolver{}
}

// extractIPFromAddr extracts the IP address from a "host:port" or "IP" string.
//
// Examples:
//   - "192.168.1.1:8080" → "192.168.1.1"
//   - "[2001:db8::1]:8080" → "2001:db8::1"
//   - "127.0.0.1" → "127.0.0.1"
func extractIPFromAddr(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		if ip := net.ParseIP(addr); ip != nil {
			return ip.String(), nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}

// parseFirstIP returns the first entry of a comma-separated list if it is a
// valid IP address, and "" otherwise.
func parseFirstIP(s string) string {
	first, _, _ := strings.Cut(s, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
