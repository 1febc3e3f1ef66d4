// Package fetch retrieves page text for voice profiling. It issues capped,
// time-bounded HTTP GETs and reduces HTML to visible text.
package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout bounds a single fetch end to end.
const DefaultTimeout = 10 * time.Second

// DefaultMaxBodyBytes caps how much of a response body is read. Bodies over
// the cap are truncated, not rejected; partial content is still useful.
const DefaultMaxBodyBytes = 512 * 1024

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; VoiceLens/1.0)"

// Result holds the outcome of fetching one URL.
type Result struct {
	URL        string
	Text       string
	StatusCode int
	Bytes      int
	Truncated  bool
}

// Options configures fetch behavior.
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int
	UserAgent    string
	Client       *http.Client
}

// DefaultOptions returns the standard caps.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		UserAgent:    DefaultUserAgent,
	}
}

// PageText fetches a URL and returns its visible text content. Markup,
// script and style bodies are discarded and whitespace is normalized.
// Timeouts surface as *TimeoutError, other failures as *Error; both are
// recoverable at the caller, which treats them as "no content from this URL".
func PageText(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{URL: urlStr, Timeout: opts.Timeout, Cause: err}
		}
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{URL: urlStr, Message: "unexpected HTTP status", StatusCode: resp.StatusCode}
	}

	// Read one byte past the cap to detect truncation.
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(opts.MaxBodyBytes)+1))
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{URL: urlStr, Timeout: opts.Timeout, Cause: err}
		}
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}
	truncated := len(body) > opts.MaxBodyBytes
	if truncated {
		body = body[:opts.MaxBodyBytes]
	}

	text, err := ExtractText(string(body))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}

	return &Result{
		URL:        urlStr,
		Text:       text,
		StatusCode: resp.StatusCode,
		Bytes:      len(body),
		Truncated:  truncated,
	}, nil
}

// ExtractText parses HTML and returns its visible text. Script, style,
// nav/footer chrome and comments are removed before extraction; plain text
// input passes through with whitespace normalization only.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, nav, footer, header, iframe, svg").Remove()

	main := doc.Find("main, article").First()
	if main.Length() == 0 {
		main = doc.Find("body")
	}

	return cleanWhitespace(main.Text()), nil
}

// cleanWhitespace collapses runs of whitespace and drops blank lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
