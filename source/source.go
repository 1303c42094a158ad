// Package source defines the transient values that flow through one resolve.
package source

import (
	"fmt"
	"strings"

	"github.com/samber/mo"
	"github.com/streamio/streamio/errs"
)

// Kind distinguishes movies from TV episodes.
type Kind string

const (
	Movie Kind = "movie"
	TV    Kind = "tv"
)

// ParseKind accepts "movie", "tv" and the catalog spelling "series".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return Movie, nil
	case "tv", "series":
		return TV, nil
	default:
		return "", errs.New(errs.ErrInput, fmt.Sprintf("unsupported type %q", s))
	}
}

// Request is a user-level ask for one title. IDs are passed upstream verbatim.
type Request struct {
	ID      string
	Kind    Kind
	Season  mo.Option[uint32]
	Episode mo.Option[uint32]
}

// Validate enforces that TV requests name both season and episode.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errs.New(errs.ErrInput, "id required")
	}

	switch r.Kind {
	case Movie:
		return nil
	case TV:
		if r.Season.IsAbsent() {
			return errs.New(errs.ErrInput, "season required")
		}
		if r.Episode.IsAbsent() {
			return errs.New(errs.ErrInput, "episode required")
		}
		return nil
	default:
		return errs.New(errs.ErrInput, fmt.Sprintf("unsupported type %q", r.Kind))
	}
}

// EmbedPath is the path of the public embed page for this request, e.g. /embed/tv/tt0944947/1-2.
// Call Validate first.
func (r Request) EmbedPath() string {
	if r.Kind == Movie {
		return fmt.Sprintf("/embed/movie/%s", r.ID)
	}
	return fmt.Sprintf("/embed/tv/%s/%d-%d", r.ID, r.Season.OrEmpty(), r.Episode.OrEmpty())
}

func (r Request) String() string {
	if r.Kind == Movie {
		return fmt.Sprintf("movie %s", r.ID)
	}
	return fmt.Sprintf("tv %s S%02dE%02d", r.ID, r.Season.OrEmpty(), r.Episode.OrEmpty())
}
