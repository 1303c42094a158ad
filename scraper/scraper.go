// Package scraper walks the three-hop embed chain from a public embed URL to the page that
// carries the obfuscated stream URL.
package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"
	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/errs"
	"github.com/streamio/streamio/log"
	"github.com/streamio/streamio/network"
	"github.com/streamio/streamio/source"
)

var prorcpPattern = regexp.MustCompile(`src\s*:\s*['"](\/prorcp\/[A-Za-z0-9+/=\-]+)['"]`)

// Options locate the upstream hosts. Bases are scheme+authority without a trailing slash.
type Options struct {
	EmbedBase  string
	EmbedHost  string
	PlayerBase string
	PlayerHost string
}

// DefaultOptions targets the production hosts.
func DefaultOptions() Options {
	return ForHosts(constant.EmbedHost, constant.PlayerHost)
}

// ForHosts targets the given embed and player hosts over https.
func ForHosts(embedHost, playerHost string) Options {
	return Options{
		EmbedBase:  "https://" + embedHost,
		EmbedHost:  embedHost,
		PlayerBase: "https://" + playerHost,
		PlayerHost: playerHost,
	}
}

// Extraction is what the walk recovered.
type Extraction struct {
	EmbedURL  string
	PlayerURL string
	ProrcpURL string
	// Pair is absent when the hidden element is missing, incomplete or a UI error placeholder.
	Pair mo.Option[source.MarkerPair]
	// Body is the raw third page, input to the fallback pattern.
	Body string
}

// Scraper performs the walk. It holds no per-request state and is safe for concurrent use.
type Scraper struct {
	client *network.Client
	opts   Options
}

// New creates a scraper issuing requests through client.
func New(client *network.Client, opts Options) *Scraper {
	return &Scraper{client: client, opts: opts}
}

// EmbedURL is the hop-1 URL for req.
func (s *Scraper) EmbedURL(req source.Request) string {
	return s.opts.EmbedBase + req.EmbedPath()
}

// Extract runs the three hops strictly in sequence. Transport failures and structural misses on
// hops 1 and 2 are fatal; a missing hidden element on hop 3 is not.
func (s *Scraper) Extract(ctx context.Context, req source.Request) (*Extraction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ua := network.Browser(constant.UserAgentLinux)
	ex := &Extraction{EmbedURL: s.EmbedURL(req)}

	first, err := s.hop(ctx, 1, ex.EmbedURL, ua.With("Host", s.opts.EmbedHost))
	if err != nil {
		return nil, err
	}

	src, err := playerIframe(first.Body)
	if err != nil {
		return nil, err
	}
	ex.PlayerURL = "https:" + src

	second, err := s.hop(ctx, 2, ex.PlayerURL, ua.With("Host", s.opts.PlayerHost).With("Referer", ex.EmbedURL))
	if err != nil {
		return nil, err
	}

	path, err := prorcpPath(second.Body)
	if err != nil {
		return nil, err
	}
	ex.ProrcpURL = s.opts.PlayerBase + path

	third, err := s.hop(ctx, 3, ex.ProrcpURL, ua.With("Host", s.opts.PlayerHost).With("Referer", ex.ProrcpURL))
	if err != nil {
		return nil, err
	}
	ex.Body = third.Body

	pair, found := HiddenPair(third.Body)
	switch {
	case !found:
		log.Debugf("hidden element not found on %s", ex.ProrcpURL)
		ex.Pair = mo.None[source.MarkerPair]()
	case !pair.Valid():
		log.Debugf("hidden element on %s is empty or a placeholder", ex.ProrcpURL)
		ex.Pair = mo.None[source.MarkerPair]()
	default:
		ex.Pair = mo.Some(pair)
	}

	return ex, nil
}

func (s *Scraper) hop(ctx context.Context, n int, rawURL string, h network.Header) (*source.Page, error) {
	page, err := s.client.Fetch(ctx, rawURL, h)
	if err != nil {
		return nil, errs.Wrap(errs.ErrTransport, fmt.Sprintf("hop %d: %v", n, err), err)
	}

	entry := log.WithFields(log.Fields{"hop": n, "url": rawURL, "status": page.Status, "bytes": len(page.Body)})
	if page.Status < 200 || page.Status > 299 {
		entry.Warn("upstream answered non-2xx")
	} else {
		entry.Debug("hop fetched")
	}
	return page, nil
}

func playerIframe(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", errs.Wrap(errs.ErrStructure, "iframe src not found", err)
	}

	src, ok := doc.Find("#player_iframe").First().Attr("src")
	if !ok || src == "" {
		return "", errs.New(errs.ErrStructure, "iframe src not found")
	}
	return src, nil
}

func prorcpPath(body string) (string, error) {
	m := prorcpPattern.FindStringSubmatch(body)
	if m == nil {
		return "", errs.New(errs.ErrStructure, "iframe path not found")
	}
	return m[1], nil
}

// HiddenPair reads the first hidden div of the final page. found is false when there is none.
func HiddenPair(body string) (pair source.MarkerPair, found bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return source.MarkerPair{}, false
	}

	el := doc.Find(`div[style*="none"]`).First()
	if el.Length() == 0 {
		return source.MarkerPair{}, false
	}

	id, _ := el.Attr("id")
	return source.NewMarkerPair(id, el.Text()), true
}
