package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/errs"
	"github.com/streamio/streamio/network"
	"github.com/streamio/streamio/source"
)

// upstream fakes the three embed hops on one TLS server.
type upstream struct {
	srv *httptest.Server

	mu      sync.Mutex
	headers map[string]http.Header
	hosts   map[string]string

	embed  string
	rcp    string
	prorcp string
}

func newUpstream() *upstream {
	u := &upstream{headers: map[string]http.Header{}, hosts: map[string]string{}}
	u.srv = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.headers[r.URL.Path] = r.Header.Clone()
		u.hosts[r.URL.Path] = r.Host
		u.mu.Unlock()

		switch {
		case strings.HasPrefix(r.URL.Path, "/embed/"):
			_, _ = fmt.Fprint(w, u.embed)
		case strings.HasPrefix(r.URL.Path, "/rcp/"):
			_, _ = fmt.Fprint(w, u.rcp)
		case strings.HasPrefix(r.URL.Path, "/prorcp/"):
			_, _ = fmt.Fprint(w, u.prorcp)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	authority := strings.TrimPrefix(u.srv.URL, "https:")
	u.embed = `<html><body><iframe id="player_iframe" src="` + authority + `/rcp/abc"></iframe></body></html>`
	u.rcp = `<script>loadIframe({ src: '/prorcp/QUJD=' });</script>`
	u.prorcp = `<html><body><div id="xyz" style="display:none;"> payload </div></body></html>`
	return u
}

func (u *upstream) scraper() *Scraper {
	return New(network.New(u.srv.Client().Transport, 2*time.Second), Options{
		EmbedBase:  u.srv.URL,
		EmbedHost:  constant.EmbedHost,
		PlayerBase: u.srv.URL,
		PlayerHost: constant.PlayerHost,
	})
}

func movie(id string) source.Request {
	return source.Request{ID: id, Kind: source.Movie}
}

func TestExtract(t *testing.T) {
	Convey("Given a fake embed chain", t, func() {
		u := newUpstream()
		defer u.srv.Close()

		Convey("When every hop answers as expected", func() {
			ex, err := u.scraper().Extract(context.Background(), movie("tt1375666"))

			Convey("Then the hidden pair is recovered", func() {
				So(err, ShouldBeNil)
				So(ex.Pair, ShouldResemble, mo.Some(source.MarkerPair{Marker: "xyz", Ciphertext: "payload"}))
				So(ex.EmbedURL, ShouldEqual, u.srv.URL+"/embed/movie/tt1375666")
				So(ex.ProrcpURL, ShouldEqual, u.srv.URL+"/prorcp/QUJD=")
				So(ex.Body, ShouldContainSubstring, "payload")
			})

			Convey("Then each hop carries the expected host and referer", func() {
				So(u.hosts["/embed/movie/tt1375666"], ShouldEqual, constant.EmbedHost)
				So(u.hosts["/rcp/abc"], ShouldEqual, constant.PlayerHost)
				So(u.headers["/rcp/abc"].Get("Referer"), ShouldEqual, ex.EmbedURL)
				So(u.headers["/prorcp/QUJD="].Get("Referer"), ShouldEqual, ex.ProrcpURL)
				So(u.headers["/embed/movie/tt1375666"].Get("User-Agent"), ShouldEqual, constant.UserAgentLinux)
			})
		})

		Convey("When a TV request is made", func() {
			req := source.Request{ID: "tt0944947", Kind: source.TV, Season: mo.Some[uint32](1), Episode: mo.Some[uint32](2)}
			ex, err := u.scraper().Extract(context.Background(), req)

			Convey("Then the episode path is requested", func() {
				So(err, ShouldBeNil)
				So(ex.EmbedURL, ShouldEndWith, "/embed/tv/tt0944947/1-2")
			})
		})

		Convey("When the TV request lacks a season", func() {
			req := source.Request{ID: "tt0944947", Kind: source.TV, Episode: mo.Some[uint32](2)}
			_, err := u.scraper().Extract(context.Background(), req)

			Convey("Then no request is issued", func() {
				So(errors.Is(err, errs.ErrInput), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "season required")
				So(u.hosts, ShouldBeEmpty)
			})
		})

		Convey("When the embed page has no player iframe", func() {
			u.embed = `<html><body>nothing here</body></html>`
			_, err := u.scraper().Extract(context.Background(), movie("tt1"))

			Convey("Then a structure error is returned", func() {
				So(errors.Is(err, errs.ErrStructure), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "iframe src not found")
			})
		})

		Convey("When the player page has no prorcp path", func() {
			u.rcp = `<script>var nothing = 1;</script>`
			_, err := u.scraper().Extract(context.Background(), movie("tt1"))

			Convey("Then a structure error is returned", func() {
				So(errors.Is(err, errs.ErrStructure), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "iframe path not found")
			})
		})

		Convey("When the final page shows a UI error", func() {
			u.prorcp = `<div id="xyz" style="display: none">Wrong Video</div>`
			ex, err := u.scraper().Extract(context.Background(), movie("tt1"))

			Convey("Then the pair is absent", func() {
				So(err, ShouldBeNil)
				So(ex.Pair.IsAbsent(), ShouldBeTrue)
			})
		})

		Convey("When the final page has no hidden element", func() {
			u.prorcp = `<div id="xyz">visible</div>`
			ex, err := u.scraper().Extract(context.Background(), movie("tt1"))

			Convey("Then the pair is absent", func() {
				So(err, ShouldBeNil)
				So(ex.Pair.IsAbsent(), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unreachable upstream", t, func() {
		srv := httptest.NewTLSServer(http.NotFoundHandler())
		s := New(network.New(srv.Client().Transport, time.Second), Options{EmbedBase: srv.URL, PlayerBase: srv.URL})
		srv.Close()

		_, err := s.Extract(context.Background(), movie("tt1"))

		Convey("Then a transport error is returned", func() {
			So(errors.Is(err, errs.ErrTransport), ShouldBeTrue)
		})
	})
}

func TestHiddenPair(t *testing.T) {
	Convey("HiddenPair", t, func() {
		Convey("Should take the first hidden div", func() {
			pair, found := HiddenPair(`<div style="display:none" id="a">one</div><div style="display:none" id="b">two</div>`)
			So(found, ShouldBeTrue)
			So(pair, ShouldResemble, source.MarkerPair{Marker: "a", Ciphertext: "one"})
		})

		Convey("Should trim and concatenate nested text", func() {
			pair, found := HiddenPair("<div style=\"display:none\" id=\"a\">\n  ab<span>cd</span>  \n</div>")
			So(found, ShouldBeTrue)
			So(pair.Ciphertext, ShouldEqual, "abcd")
		})

		Convey("Should blank a report placeholder", func() {
			pair, found := HiddenPair(`<div style="display:none" id="a">Sent report</div>`)
			So(found, ShouldBeTrue)
			So(pair.Valid(), ShouldBeFalse)
		})

		Convey("Should report a missing element", func() {
			_, found := HiddenPair(`<p>nothing</p>`)
			So(found, ShouldBeFalse)
		})
	})
}

func TestFallbackURL(t *testing.T) {
	Convey("FallbackURL", t, func() {
		Convey("Should find the first direct manifest", func() {
			body := `file: "https://tmstr2.{v3}/pl/abc.DEF_1-2/master.m3u8" or "https://tmstr1.{v1}/cdnstr/x/list.m3u8"`
			So(FallbackURL(body), ShouldResemble, mo.Some("https://tmstr2.{v3}/pl/abc.DEF_1-2/master.m3u8"))
		})

		Convey("Should keep dots, dashes and underscores in the path segment", func() {
			body := `<script>var u = "https://tmstr1.{v3}/pl/abc_def-1.23/master.m3u8";</script>`
			So(FallbackURL(body), ShouldResemble, mo.Some("https://tmstr1.{v3}/pl/abc_def-1.23/master.m3u8"))
		})

		Convey("Should accept cdnstr list playlists", func() {
			So(FallbackURL(`"https://tmstr1.{v12}/cdnstr/x/list.m3u8"`), ShouldResemble, mo.Some("https://tmstr1.{v12}/cdnstr/x/list.m3u8"))
		})

		Convey("Should ignore other hosts", func() {
			So(FallbackURL(`https://tmstr3.{v1}/pl/abc/master.m3u8`).IsAbsent(), ShouldBeTrue)
			So(FallbackURL(`https://tmstr1.example.com/pl/abc/master.m3u8`).IsAbsent(), ShouldBeTrue)
		})
	})
}
