package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/errs"
	"github.com/streamio/streamio/log"
	"github.com/streamio/streamio/network"
	"github.com/streamio/streamio/playlist"
)

const (
	msgMissingURL  = "Missing url parameter"
	msgFetchFailed = "Failed to fetch stream link"
)

// relayedHeaders are copied from the segment response when present.
var relayedHeaders = []string{"Content-Range", "Accept-Ranges"}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, msgMissingURL)
		return
	}

	text, err := playlist.Fetch(r.Context(), s.clients.Manifest, target, webBase(r))
	if err != nil {
		log.WithFields(log.Fields{"url": target}).Warnf("playlist: %s", errs.Detail(err))
		writeError(w, errs.Status(err), msgFetchFailed)
		return
	}

	w.Header().Set("Content-Type", constant.MimeMpegURL)
	if _, err := io.WriteString(w, text); err != nil {
		log.Debugf("write playlist: %v", err)
	}
}

// handleProxyStream relays segment bytes without buffering. A client disconnect cancels the
// request context, which aborts the upstream read.
func (s *Server) handleProxyStream(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, msgMissingURL)
		return
	}

	h := network.SegmentHeader()
	if rng := r.Header.Get("Range"); rng != "" {
		h = h.With("Range", rng)
	}

	resp, err := s.clients.Segment.Open(r.Context(), target, h)
	if err != nil {
		log.WithFields(log.Fields{"url": target}).Warnf("segment: %v", err)
		writeError(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}
	defer resp.Body.Close()

	out := w.Header()
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		out.Set("Content-Type", ct)
	} else {
		out.Set("Content-Type", constant.MimeOctetStream)
	}
	if resp.ContentLength >= 0 {
		out.Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	for _, k := range relayedHeaders {
		if v := resp.Header.Get(k); v != "" {
			out.Set(k, v)
		}
	}

	w.WriteHeader(resp.StatusCode)
	if r.Method == http.MethodHead {
		return
	}

	if n, err := io.Copy(w, resp.Body); err != nil {
		log.WithFields(log.Fields{"url": target, "bytes": n}).Debugf("segment relay stopped: %v", err)
	}
}
