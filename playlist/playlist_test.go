package playlist

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/errs"
	"github.com/streamio/streamio/network"
)

const web = "http://127.0.0.1:4000"

func TestRewrite(t *testing.T) {
	Convey("Rewrite", t, func() {
		Convey("Should route segments and nested playlists through the proxy", func() {
			in := "#EXTM3U\n#EXTINF:5,\nseg1.ts\nsub/playlist.m3u8\n"
			out, err := Rewrite(in, "https://host.example/a/b/", web)

			So(err, ShouldBeNil)
			So(out, ShouldEqual, "#EXTM3U\n#EXTINF:5,\n"+
				"http://127.0.0.1:4000/api/proxy-stream?url=https%3A%2F%2Fhost.example%2Fa%2Fb%2Fseg1.ts&.ts\n"+
				"http://127.0.0.1:4000/api/stream?url=https%3A%2F%2Fhost.example%2Fa%2Fb%2Fsub%2Fplaylist.m3u8&.m3u8\n")
		})

		Convey("Should keep absolute and root-relative URIs absolute", func() {
			out, err := Rewrite("/x/seg.ts\nhttps://other.example/y.m3u8", "https://host.example/a/b/index.m3u8", web)

			So(err, ShouldBeNil)
			lines := strings.Split(out, "\n")
			So(lines[0], ShouldEqual, web+"/api/proxy-stream?url="+url.QueryEscape("https://host.example/x/seg.ts")+"&.ts")
			So(lines[1], ShouldEqual, web+"/api/stream?url="+url.QueryEscape("https://other.example/y.m3u8")+"&.m3u8")
		})

		Convey("Should keep tag lines with trailing whitespace verbatim", func() {
			in := "#EXT-X-KEY:METHOD=NONE  \r\n\n   \n#EXT-X-ENDLIST"
			out, err := Rewrite(in, "https://host.example/", web)

			So(err, ShouldBeNil)
			So(out, ShouldEqual, in)
		})

		Convey("Should trim surrounding whitespace of URI lines", func() {
			out, err := Rewrite("  seg.ts \r", "https://host.example/", web)

			So(err, ShouldBeNil)
			So(out, ShouldEqual, web+"/api/proxy-stream?url="+url.QueryEscape("https://host.example/seg.ts")+"&.ts")
		})

		Convey("Should fail on a relative base", func() {
			_, err := Rewrite("seg.ts", "not/absolute", web)
			So(errors.Is(err, errs.ErrRewrite), ShouldBeTrue)
		})

		Convey("Should fail on an unparsable base", func() {
			_, err := Rewrite("seg.ts", "https://host example/%zz", web)
			So(errors.Is(err, errs.ErrRewrite), ShouldBeTrue)
		})

		Convey("Should fail on an unparsable URI", func() {
			_, err := Rewrite("seg%zz.ts", "https://host.example/", web)
			So(errors.Is(err, errs.ErrRewrite), ShouldBeTrue)
		})
	})
}

func TestRewriteProperties(t *testing.T) {
	Convey("Given random playlists", t, func() {
		rng := rand.New(rand.NewSource(42))
		base := "https://cdn.example/pl/abc/"

		for i := 0; i < 200; i++ {
			n := 1 + rng.Intn(12)
			in := make([]string, 0, n)
			for j := 0; j < n; j++ {
				switch rng.Intn(4) {
				case 0:
					in = append(in, fmt.Sprintf("#EXTINF:%d.%03d,", rng.Intn(10), rng.Intn(1000)))
				case 1:
					in = append(in, strings.Repeat(" ", rng.Intn(3)))
				case 2:
					in = append(in, fmt.Sprintf("seg-%d.ts", rng.Intn(1000)))
				default:
					in = append(in, fmt.Sprintf("v%d/index.m3u8", rng.Intn(5)))
				}
			}

			out, err := Rewrite(strings.Join(in, "\n"), base, web)
			So(err, ShouldBeNil)

			got := strings.Split(out, "\n")
			So(len(got), ShouldEqual, len(in))

			for j, line := range in {
				trimmed := strings.TrimSpace(line)
				if trimmed == "" || strings.HasPrefix(trimmed, "#") {
					So(got[j], ShouldEqual, line)
					continue
				}

				So(got[j], ShouldStartWith, web)
				So(got[j], ShouldContainSubstring, "url="+url.QueryEscape(base+trimmed))
			}
		}
	})
}

func TestFetch(t *testing.T) {
	Convey("Fetch", t, func() {
		var ua string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.Header.Get("User-Agent")
			if r.URL.Path == "/gone.m3u8" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			_, _ = fmt.Fprint(w, "#EXTM3U\nseg.ts\n")
		}))
		defer srv.Close()

		client := network.New(http.DefaultTransport, 2*time.Second)

		Convey("Should rewrite against the fetched URL", func() {
			out, err := Fetch(context.Background(), client, srv.URL+"/p/index.m3u8", web)

			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, url.QueryEscape(srv.URL+"/p/seg.ts"))
			So(ua, ShouldEqual, constant.UserAgentLinux)
		})

		Convey("Should treat non-2xx as a transport failure", func() {
			_, err := Fetch(context.Background(), client, srv.URL+"/gone.m3u8", web)
			So(errors.Is(err, errs.ErrTransport), ShouldBeTrue)
		})
	})
}
