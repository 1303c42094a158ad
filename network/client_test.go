package network

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamio/streamio/constant"
)

const page = `<html><body><iframe id="player_iframe" src="//example.test/rcp/abc"></iframe></body></html>`

func compressed(encoding string) []byte {
	var buf bytes.Buffer
	switch encoding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		lo.Must(w.Write([]byte(page)))
		lo.Must0(w.Close())
	case "br":
		w := brotli.NewWriter(&buf)
		lo.Must(w.Write([]byte(page)))
		lo.Must0(w.Close())
	case "zstd":
		enc := lo.Must(zstd.NewWriter(nil))
		buf.Write(enc.EncodeAll([]byte(page), nil))
		lo.Must0(enc.Close())
	default:
		buf.WriteString(page)
	}
	return buf.Bytes()
}

var sizes = map[string]int{
	"/limit": maxDocumentSize,
	"/huge":  maxDocumentSize + 1,
}

func TestFetch(t *testing.T) {
	Convey("Fetch", t, func() {
		var seen *http.Request
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r
			enc := r.URL.Query().Get("enc")
			if enc != "" {
				w.Header().Set("Content-Encoding", enc)
			}
			if r.URL.Path == "/missing" {
				w.WriteHeader(http.StatusNotFound)
			}
			if r.URL.Path == "/slow" {
				time.Sleep(300 * time.Millisecond)
			}
			if n, ok := sizes[r.URL.Path]; ok {
				_, _ = w.Write(bytes.Repeat([]byte("#"), n))
				return
			}
			_, _ = w.Write(compressed(enc))
		}))
		defer srv.Close()

		client := New(NewTransport(), time.Second)
		ctx := context.Background()

		Convey("Should decode every advertised encoding", func() {
			for _, enc := range []string{"", "gzip", "br", "zstd"} {
				p, err := client.Fetch(ctx, srv.URL+"/?enc="+enc, Browser(constant.UserAgentLinux))
				So(err, ShouldBeNil)
				So(p.Body, ShouldEqual, page)
				So(p.Status, ShouldEqual, http.StatusOK)
			}
		})

		Convey("Should send browser headers and override the host", func() {
			h := Browser(constant.UserAgentLinux).With("Host", "vidsrc-embed.ru").With("Referer", "https://a.test/")
			_, err := client.Fetch(ctx, srv.URL+"/", h)
			So(err, ShouldBeNil)
			So(seen.Host, ShouldEqual, "vidsrc-embed.ru")
			So(seen.Header.Get("User-Agent"), ShouldEqual, constant.UserAgentLinux)
			So(seen.Header.Get("Referer"), ShouldEqual, "https://a.test/")
			So(seen.Header.Get("Accept-Encoding"), ShouldEqual, AcceptEncoding)
		})

		Convey("Should return non-2xx pages", func() {
			p, err := client.Fetch(ctx, srv.URL+"/missing", ManifestHeader())
			So(err, ShouldBeNil)
			So(p.Status, ShouldEqual, http.StatusNotFound)
		})

		Convey("Should abort after the timeout", func() {
			fast := New(NewTransport(), 50*time.Millisecond)
			_, err := fast.Fetch(ctx, srv.URL+"/slow", ManifestHeader())
			So(err, ShouldNotBeNil)
		})

		Convey("Should refuse bodies over the size limit instead of truncating", func() {
			p, err := client.Fetch(ctx, srv.URL+"/limit", ManifestHeader())
			So(err, ShouldBeNil)
			So(len(p.Body), ShouldEqual, maxDocumentSize)

			_, err = client.Fetch(ctx, srv.URL+"/huge", ManifestHeader())
			So(errors.Is(err, ErrTooLarge), ShouldBeTrue)
		})

		Convey("Should reject unknown encodings", func() {
			_, err := client.Fetch(ctx, srv.URL+"/?enc=compress", ManifestHeader())
			So(err, ShouldNotBeNil)
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Open", t, func() {
		var seen http.Header
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Clone()
			w.Header().Set("Content-Type", "video/mp2t")
			_, _ = w.Write([]byte("segment-bytes"))
		}))
		defer srv.Close()

		set := NewSet(time.Second, false)
		resp, err := set.Segment.Open(context.Background(), srv.URL, SegmentHeader())
		So(err, ShouldBeNil)
		defer resp.Body.Close()
		So(seen.Get("User-Agent"), ShouldEqual, constant.UserAgentWindows)
		So(seen.Get("Accept-Encoding"), ShouldBeEmpty)
		So(resp.Header.Get("Content-Type"), ShouldEqual, "video/mp2t")
		So(resp.ContentLength, ShouldEqual, len("segment-bytes"))
	})
}

func TestHeader(t *testing.T) {
	Convey("Header.With", t, func() {
		base := Header{"A": "1"}
		ext := base.With("B", "2")
		So(ext, ShouldResemble, Header{"A": "1", "B": "2"})
		So(base, ShouldResemble, Header{"A": "1"})
	})
}

func TestNewSet(t *testing.T) {
	Convey("NewSet", t, func() {
		Convey("Should pick the fingerprint transport on demand", func() {
			set := NewSet(15*time.Second, true)
			_, ok := set.Scrape.http.Transport.(*fingerprintTransport)
			So(ok, ShouldBeTrue)
			So(set.Scrape.Timeout(), ShouldEqual, 15*time.Second)
			So(set.Segment.Timeout(), ShouldEqual, 0)
		})

		Convey("Should fall back to the tuned transport", func() {
			set := NewSet(15*time.Second, false)
			_, ok := set.Scrape.http.Transport.(*http.Transport)
			So(ok, ShouldBeTrue)
		})
	})
}
