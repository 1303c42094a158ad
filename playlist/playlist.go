// Package playlist rewrites HLS playlists so that every child URI routes back through the local proxy.
package playlist

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/errs"
	"github.com/streamio/streamio/log"
	"github.com/streamio/streamio/network"
)

// Suffixes some players use to infer the media type of a proxied URI.
const (
	SuffixPlaylist = "&.m3u8"
	SuffixSegment  = "&.ts"
)

// Rewrite maps each URI line of text to a local proxy URL. Blank and tag lines are kept byte for byte.
// Lines are split and joined on "\n", so a trailing newline survives.
func Rewrite(text, baseURL, webBase string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", errs.Wrapf(errs.ErrRewrite, err, "invalid base url %q", baseURL)
	}
	if !base.IsAbs() {
		return "", errs.New(errs.ErrRewrite, fmt.Sprintf("base url %q is not absolute", baseURL))
	}

	webBase = strings.TrimSuffix(webBase, "/")
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		ref, err := url.Parse(trimmed)
		if err != nil {
			return "", errs.Wrapf(errs.ErrRewrite, err, "invalid uri %q", trimmed)
		}

		lines[i] = ProxyURL(base.ResolveReference(ref).String(), webBase)
	}

	return strings.Join(lines, "\n"), nil
}

// ProxyURL is the local URL serving absolute: nested playlists go to the stream route, anything
// else to the segment passthrough.
func ProxyURL(absolute, webBase string) string {
	encoded := url.QueryEscape(absolute)
	if strings.Contains(absolute, ".m3u8") {
		return webBase + constant.RouteStream + "?url=" + encoded + SuffixPlaylist
	}
	return webBase + constant.RouteProxyStream + "?url=" + encoded + SuffixSegment
}

// Fetch downloads the playlist at streamURL and rewrites it against webBase.
func Fetch(ctx context.Context, client *network.Client, streamURL, webBase string) (string, error) {
	page, err := client.Fetch(ctx, streamURL, network.ManifestHeader())
	if err != nil {
		return "", errs.Wrapf(errs.ErrTransport, err, "fetch playlist: %v", err)
	}
	if page.Status < 200 || page.Status > 299 {
		return "", errs.New(errs.ErrTransport, fmt.Sprintf("fetch playlist: upstream status %d", page.Status))
	}

	log.WithFields(log.Fields{"url": streamURL, "bytes": len(page.Body)}).Debug("playlist fetched")
	return Rewrite(page.Body, streamURL, webBase)
}
