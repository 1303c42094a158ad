// Package server is the loopback HTTP front of the side-car: resolve, playlist proxy, segment
// passthrough, health and a live log feed.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/log"
	"github.com/streamio/streamio/network"
	"github.com/streamio/streamio/resolver"
)

// shutdownGrace bounds how long in-flight requests may run after a shutdown signal.
const shutdownGrace = 5 * time.Second

// Server routes requests to the resolver and the upstream clients.
type Server struct {
	resolver *resolver.Resolver
	clients  *network.Set
	upgrader websocket.Upgrader

	closing   chan struct{}
	closeOnce sync.Once
}

// New creates a server. Both arguments are shared across requests.
func New(res *resolver.Resolver, clients *network.Set) *Server {
	return &Server{
		resolver: res,
		clients:  clients,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		closing: make(chan struct{}),
	}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(constant.RouteExtract, s.handleExtract)
	mux.HandleFunc(constant.RouteStream, s.handleStream)
	mux.HandleFunc(constant.RouteProxyStream, s.handleProxyStream)
	mux.HandleFunc(constant.RouteHealth, s.handleHealth)
	mux.HandleFunc(constant.RouteLogs, s.handleLogs)
	return withCORS(withRequestLog(mux))
}

// Serve accepts connections on l until ctx is cancelled, then drains in-flight requests.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.close)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	log.Infof("listening on http://%s", l.Addr())
	return s.Serve(ctx, l)
}

func (s *Server) close() {
	s.closeOnce.Do(func() { close(s.closing) })
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Range")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{"method": r.Method, "path": r.URL.Path, "remote": r.RemoteAddr}).Debug("request")
		next.ServeHTTP(w, r)
	})
}
