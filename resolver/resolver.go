// Package resolver turns a title request into a local playlist: scrape, decode or fall back,
// fetch the manifest, rewrite it.
package resolver

import (
	"context"

	"github.com/spf13/viper"
	"github.com/streamio/streamio/decoder"
	"github.com/streamio/streamio/errs"
	"github.com/streamio/streamio/key"
	"github.com/streamio/streamio/log"
	"github.com/streamio/streamio/network"
	"github.com/streamio/streamio/playlist"
	"github.com/streamio/streamio/scraper"
	"github.com/streamio/streamio/source"
	"github.com/streamio/streamio/util"
)

// Method names how the stream URL was recovered.
type Method string

const (
	MethodDecoder  Method = "decoder"
	MethodFallback Method = "fallback"
)

// Result is the outcome of one resolve.
type Result struct {
	StreamURL string `json:"stream_url"`
	Method    Method `json:"method"`
	Playlist  string `json:"playlist"`
}

// Resolver is safe for concurrent use; each call owns its transient values.
type Resolver struct {
	scraper  *scraper.Scraper
	registry *decoder.Registry
	manifest *network.Client
}

// New assembles a resolver from its parts.
func New(s *scraper.Scraper, registry *decoder.Registry, manifest *network.Client) *Resolver {
	return &Resolver{scraper: s, registry: registry, manifest: manifest}
}

// FromConfig builds a resolver over set using the configured upstream hosts.
func FromConfig(set *network.Set) *Resolver {
	opts := scraper.ForHosts(viper.GetString(key.UpstreamEmbedHost), viper.GetString(key.UpstreamPlayerHost))
	return New(
		scraper.New(set.Scrape, opts),
		decoder.New(viper.GetString(key.UpstreamStreamHost)),
		set.Manifest,
	)
}

// StreamURL walks the embed chain and recovers the manifest URL. A valid marker pair takes
// precedence over the fallback pattern.
func (r *Resolver) StreamURL(ctx context.Context, req source.Request) (string, Method, error) {
	ex, err := r.scraper.Extract(ctx, req)
	if err != nil {
		return "", "", err
	}

	if pair, ok := ex.Pair.Get(); ok {
		link, err := r.registry.Decode(pair.Marker, pair.Ciphertext)
		if err != nil {
			log.WithFields(log.Fields{"request": req.String(), "marker": pair.Marker, "ciphertext": util.Abbreviate(pair.Ciphertext, 48)}).Warnf("decode: %v", err)
			return "", "", errs.Wrap(errs.ErrDecode, "decoder failed", err)
		}
		return link, MethodDecoder, nil
	}

	link, ok := scraper.FallbackURL(ex.Body).Get()
	if !ok {
		log.WithFields(log.Fields{"request": req.String()}).Warn("no marker pair and no direct manifest url")
		return "", "", errs.New(errs.ErrDecode, "no stream url found")
	}
	return r.registry.SubstituteHost(link), MethodFallback, nil
}

// Resolve returns the playlist for req with child URIs pointing at webBase.
func (r *Resolver) Resolve(ctx context.Context, req source.Request, webBase string) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	link, method, err := r.StreamURL(ctx, req)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"request": req.String(), "method": method}).Info("stream url resolved")

	text, err := playlist.Fetch(ctx, r.manifest, link, webBase)
	if err != nil {
		return nil, err
	}

	return &Result{StreamURL: link, Method: method, Playlist: text}, nil
}
