// Package bridge exposes the compiler's subscription surface to editor
// clients over WebSocket. After each successful (re)compilation the
// resolved-types delta is pushed as one JSON message to every connected
// client, which uses it to refresh input-widget hints and error badges.
package bridge

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vectorlab/vectograph/internal/compiler"
	"github.com/vectorlab/vectograph/internal/ctxlog"
)

// Server serves the delta stream for one compiler.
type Server struct {
	compiler *compiler.Compiler
	upgrader websocket.Upgrader
}

// New creates a bridge server over the given compiler.
func New(c *compiler.Compiler) *Server {
	return &Server{
		compiler: c,
		upgrader: websocket.Upgrader{
			// The bridge binds to loopback for a local editor process.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler serving the bridge endpoints. Client
// connections are torn down when ctx is cancelled.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/deltas", func(w http.ResponseWriter, r *http.Request) {
		s.handleDeltas(ctx, w, r)
	})
	return mux
}

// ListenAndServe serves /deltas on the given address until the context is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	logger := ctxlog.FromContext(ctx)

	srv := &http.Server{Addr: addr, Handler: s.Handler(ctx)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Editor bridge listening.", "addr", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleDeltas(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(ctx)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Bridge upgrade failed.", "error", err)
		return
	}
	defer conn.Close()
	logger.Debug("Editor client connected.", "remote", conn.RemoteAddr().String())

	deltas, unsubscribe := s.compiler.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case delta, ok := <-deltas:
			if !ok {
				return
			}
			if err := conn.WriteJSON(delta); err != nil {
				logger.Debug("Editor client dropped.", "error", err)
				return
			}
		}
	}
}
