package scraper

import (
	"regexp"

	"github.com/samber/mo"
)

var fallbackPattern = regexp.MustCompile(`https://(?:tmstr1|tmstr2)\.\{v\d+\}/(?:pl|cdnstr)/[A-Za-z0-9._\-]+/(?:master\.m3u8|list\.m3u8)`)

// FallbackURL returns the first direct manifest URL embedded in body, placeholders intact.
func FallbackURL(body string) mo.Option[string] {
	if m := fallbackPattern.FindString(body); m != "" {
		return mo.Some(m)
	}
	return mo.None[string]()
}
