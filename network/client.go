package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/source"
)

// maxDocumentSize bounds pages and playlists read into memory.
const maxDocumentSize = 16 << 20

// ErrTooLarge is returned by Fetch for bodies over maxDocumentSize.
var ErrTooLarge = errors.New("document too large")

// Header holds request headers. A "Host" entry overrides the request host.
type Header map[string]string

// Browser returns the headers of a desktop browser navigation with the given user agent.
func Browser(userAgent string) Header {
	return Header{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Accept-Encoding": AcceptEncoding,
	}
}

// With returns a copy of h extended with key=value.
func (h Header) With(key, value string) Header {
	out := make(Header, len(h)+1)
	for k, v := range h {
		out[k] = v
	}
	out[key] = value
	return out
}

// Client issues upstream requests. Fetch is bounded by the configured timeout, Open is not, since
// streamed bodies outlive any fixed deadline; it is bounded by the caller's context instead.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// New wraps rt. A zero timeout disables the per-request deadline of Fetch.
func New(rt http.RoundTripper, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Transport: rt},
		timeout: timeout,
	}
}

// Timeout returns the per-request deadline applied by Fetch.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) newRequest(ctx context.Context, rawURL string, h Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range h {
		if http.CanonicalHeaderKey(k) == "Host" {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}
	return req, nil
}

// Fetch GETs rawURL and reads the decoded body. Non-2xx responses are returned, not treated as errors.
func (c *Client) Fetch(ctx context.Context, rawURL string, h Header) (*source.Page, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, rawURL, h)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := decodedBody(resp)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, maxDocumentSize)
	}

	return &source.Page{
		URL:    rawURL,
		Status: resp.StatusCode,
		Body:   string(data),
	}, nil
}

// Open GETs rawURL and returns the live response. The caller must close its body.
func (c *Client) Open(ctx context.Context, rawURL string, h Header) (*http.Response, error) {
	req, err := c.newRequest(ctx, rawURL, h)
	if err != nil {
		return nil, err
	}
	return c.http.Do(req)
}

// Set bundles the three upstream clients of the side-car.
type Set struct {
	// Scrape walks the embed chain.
	Scrape *Client
	// Manifest fetches playlists.
	Manifest *Client
	// Segment streams media bytes.
	Segment *Client
}

// NewSet builds the clients. fingerprint selects the Chrome TLS transport for scraping.
func NewSet(timeout time.Duration, fingerprint bool) *Set {
	var scrape http.RoundTripper = NewTransport()
	if fingerprint {
		scrape = NewFingerprintTransport()
	}

	return &Set{
		Scrape:   New(scrape, timeout),
		Manifest: New(NewTransport(), timeout),
		Segment:  New(NewSegmentTransport(), 0),
	}
}

// ManifestHeader is sent with playlist fetches.
func ManifestHeader() Header {
	return Header{"User-Agent": constant.UserAgentLinux}
}

// SegmentHeader is sent with segment passthrough requests.
func SegmentHeader() Header {
	return Header{"User-Agent": constant.UserAgentWindows}
}
