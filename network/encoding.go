package network

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// AcceptEncoding is what a desktop Chrome advertises.
const AcceptEncoding = "gzip, deflate, br, zstd"

// decodedBody unwraps the Content-Encoding of resp. Bodies the transport already decompressed pass through.
func decodedBody(resp *http.Response) (io.ReadCloser, error) {
	if resp.Uncompressed {
		return io.NopCloser(resp.Body), nil
	}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		return r, nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "deflate":
		r, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate body: %w", err)
		}
		return r, nil
	case "zstd":
		r, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd body: %w", err)
		}
		return r.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}
}
