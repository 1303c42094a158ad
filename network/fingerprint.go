package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 30 * time.Second

// fingerprintTransport presents Chrome's TLS Client Hello. It prefers HTTP/2 and falls back to an
// HTTP/1.1-only handshake when h2 fails, which embed hosts behind bot protection tend to require.
type fingerprintTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

// NewFingerprintTransport returns a RoundTripper dialing TLS with the uTLS HelloChrome_120 fingerprint.
func NewFingerprintTransport() http.RoundTripper {
	return &fingerprintTransport{
		h2: &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialChrome(ctx, network, addr, nil)
			},
		},
		h1: &http.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialChrome(ctx, network, addr, []string{"http/1.1"})
			},
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30 * time.Second,
		},
	}
}

func (t *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.h1.RoundTrip(req)
	}

	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	// Only bodiless requests can be replayed on the fallback transport.
	if req.Body != nil && req.Body != http.NoBody {
		return nil, err
	}
	if req.Context().Err() != nil {
		return nil, req.Context().Err()
	}

	return t.h1.RoundTrip(req.Clone(req.Context()))
}

// CloseIdleConnections releases pooled connections of both transports.
func (t *fingerprintTransport) CloseIdleConnections() {
	t.h2.CloseIdleConnections()
	t.h1.CloseIdleConnections()
}

// dialChrome opens a TLS connection with Chrome's Client Hello. A non-nil alpn replaces the
// protocols the preset advertises; setting Config.NextProtos alone does not, since the preset wins.
func dialChrome(ctx context.Context, network, addr string, alpn []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	cfg := &utls.Config{ServerName: host, MinVersion: tls.VersionTLS12}

	var tlsConn *utls.UConn
	if alpn == nil {
		tlsConn = utls.UClient(conn, cfg, utls.HelloChrome_120)
	} else {
		spec, err := utls.UTLSIdToSpec(utls.HelloChrome_120)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("chrome hello spec: %w", err)
		}
		for _, ext := range spec.Extensions {
			if a, ok := ext.(*utls.ALPNExtension); ok {
				a.AlpnProtocols = alpn
			}
		}

		tlsConn = utls.UClient(conn, cfg, utls.HelloCustom)
		if err := tlsConn.ApplyPreset(&spec); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply chrome hello: %w", err)
		}
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}

	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
