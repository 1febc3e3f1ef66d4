// Package broker mediates the fetch tool a model may invoke during profile
// generation. Every invocation is validated, budgeted, sanitized, and logged;
// the broker is the only path from the model to the network.
package broker

import (
	"context"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/voicelens/voicelens/internal/fetch"
	"github.com/voicelens/voicelens/internal/observability"
	"github.com/voicelens/voicelens/internal/sanitize"
)

// DefaultMaxInvocations caps tool calls per generation.
const DefaultMaxInvocations = 5

// DefaultMaxTotalBytes caps cumulative fetched bytes per generation.
const DefaultMaxTotalBytes = 2 * 1024 * 1024

// Config bounds one generation's worth of tool invocations.
type Config struct {
	MaxInvocations int
	MaxTotalBytes  int
	SanitizeMaxLen int
	FetchOptions   *fetch.Options
	// AllowPrivateHosts disables the private/loopback host check. Tests
	// fetch from 127.0.0.1; production never sets this.
	AllowPrivateHosts bool
}

// DefaultConfig returns the standard budgets.
func DefaultConfig() Config {
	return Config{
		MaxInvocations: DefaultMaxInvocations,
		MaxTotalBytes:  DefaultMaxTotalBytes,
		SanitizeMaxLen: sanitize.DefaultMaxLen,
	}
}

// Broker enforces per-generation budgets over the fetch tool. One Broker
// instance serves exactly one generation call; budgets are not shared across
// generations.
type Broker struct {
	cfg    Config
	events *observability.Logger

	mu          sync.Mutex
	invocations int
	totalBytes  int
}

// New creates a broker for a single generation call. events may be nil.
func New(cfg Config, events *observability.Logger) *Broker {
	if cfg.MaxInvocations <= 0 {
		cfg.MaxInvocations = DefaultMaxInvocations
	}
	if cfg.MaxTotalBytes <= 0 {
		cfg.MaxTotalBytes = DefaultMaxTotalBytes
	}
	if cfg.SanitizeMaxLen <= 0 {
		cfg.SanitizeMaxLen = sanitize.DefaultMaxLen
	}
	return &Broker{cfg: cfg, events: events}
}

// FetchPageText validates, budgets, fetches and sanitizes one page for the
// model. A failure here fails only this invocation; the caller renders it
// back to the model as a failed tool result and generation proceeds.
func (b *Broker) FetchPageText(ctx context.Context, rawURL string) (string, error) {
	host, err := b.validateURL(rawURL)
	if err != nil {
		b.events.ToolInvocation(host, 0, "invalid_url")
		return "", err
	}

	if err := b.reserveInvocation(); err != nil {
		b.events.ToolInvocation(host, 0, "budget_exceeded")
		return "", err
	}

	result, err := fetch.PageText(ctx, rawURL, b.cfg.FetchOptions)
	if err != nil {
		b.events.ToolInvocation(host, 0, "fetch_failed")
		return "", err
	}

	if err := b.addBytes(result.Bytes); err != nil {
		b.events.ToolInvocation(host, result.Bytes, "budget_exceeded")
		return "", err
	}

	b.events.ToolInvocation(host, result.Bytes, "ok")
	return sanitize.Text(result.Text, b.cfg.SanitizeMaxLen), nil
}

// validateURL checks shape, scheme, and that the host is not an internal
// address the model could use to probe the local network. Returns the host
// for logging even when validation fails.
func (b *Broker) validateURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", &InvalidArgError{URL: rawURL, Reason: "malformed URL"}
	}
	host := parsed.Hostname()

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return host, &InvalidArgError{URL: rawURL, Reason: "scheme must be http or https"}
	}

	if !b.cfg.AllowPrivateHosts && isPrivateHost(host) {
		return host, &InvalidArgError{URL: rawURL, Reason: "host resolves to a private or loopback address"}
	}

	return host, nil
}

func (b *Broker) reserveInvocation() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.invocations >= b.cfg.MaxInvocations {
		return &BudgetExceededError{Kind: "invocations", Limit: b.cfg.MaxInvocations, Used: b.invocations}
	}
	b.invocations++
	return nil
}

func (b *Broker) addBytes(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.totalBytes+n > b.cfg.MaxTotalBytes {
		return &BudgetExceededError{Kind: "bytes", Limit: b.cfg.MaxTotalBytes, Used: b.totalBytes + n}
	}
	b.totalBytes += n
	return nil
}

// isPrivateHost reports whether host is a literal loopback, private,
// link-local or unspecified address, or a well-known local name.
func isPrivateHost(host string) bool {
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") || strings.HasSuffix(lower, ".local") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}
