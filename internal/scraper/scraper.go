package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultUserAgent = "CapeTownTrafficEventsBot/1.5"
	DefaultTimeout   = 20 * time.Second

	DefaultMaxBodyBytes = 10 << 20
)

var (
	// ErrStatus is returned for non-2xx responses
	ErrStatus = errors.New("unexpected status code")

	// ErrBodyTooLarge is returned when a page exceeds the body size limit
	ErrBodyTooLarge = errors.New("response body too large")
)

// ClientConfig holds the HTTP options shared by all site fetches
type ClientConfig struct {
	Timeout   time.Duration
	UserAgent string

	// MaxBodyBytes caps the page size; a larger page fails the fetch
	MaxBodyBytes int64
}

// DefaultClientConfig returns the stock timeout and user agent
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Fetcher downloads web pages
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewFetcher creates a Fetcher from cfg, filling unset fields with defaults
func NewFetcher(cfg ClientConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
	}
}

// Fetch GETs url once and returns the response body. Transport errors and
// non-2xx statuses are returned as errors; nothing is retried.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	// one byte past the limit tells a page of exactly maxBody apart from a cut one
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.maxBody)
	}
	return body, nil
}

// hiddenElements never contribute visible text
const hiddenElements = "script, style, noscript, template, svg, iframe"

// VisibleText returns the human-visible text of an HTML document, with text
// nodes joined by single spaces and Unicode compatibility forms folded (so a
// non-breaking space or a full-width digit reads like its plain counterpart).
func VisibleText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find(hiddenElements).Remove()

	parts := make([]string, 0, 64)
	collectText(doc.Selection, &parts)

	text := norm.NFKC.String(strings.Join(parts, " "))
	return strings.Join(strings.Fields(text), " "), nil
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			if t := strings.TrimSpace(s.Text()); t != "" {
				*parts = append(*parts, t)
			}
			return
		}
		collectText(s, parts)
	})
}
