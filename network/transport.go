// Package network provides the pre-configured HTTP clients the side-car uses upstream.
package network

import (
	"net/http"
	"time"
)

// NewTransport initializes a tuned http.Transport with pool parameters sized for many concurrent proxied streams.
func NewTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

// NewSegmentTransport is NewTransport without transparent decompression, so media bytes and their
// Content-Length pass through untouched.
func NewSegmentTransport() *http.Transport {
	t := NewTransport()
	t.DisableCompression = true
	return t
}
