// Package server assembles and runs the preset HTTP service: storage,
// catalog loader, change hub, and API router behind one lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/lumenfield/lumenfield/internal/api/httpapi"
	"github.com/lumenfield/lumenfield/internal/preset/catalog"
	"github.com/lumenfield/lumenfield/internal/preset/notify"
	"github.com/lumenfield/lumenfield/internal/preset/service"
	"github.com/lumenfield/lumenfield/internal/preset/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Options configures a preset server instance.
type Options struct {
	// Port to listen on; 0 picks an ephemeral port.
	Port int
	// DBPath is the SQLite database file backing user presets.
	DBPath string
	// CatalogURL points at the factory catalog document. Empty disables
	// the factory tier.
	CatalogURL string
}

// Server hosts the preset HTTP API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
}

// New opens storage and builds a configured server listening on the
// requested port.
func New(opts Options) (*Server, error) {
	store, err := sqlite.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open preset storage: %w", err)
	}

	svc := service.New(store, catalog.NewLoader(opts.CatalogURL, nil), notify.NewHub())

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", opts.Port))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on port %d: %w", opts.Port, err)
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           httpapi.NewRouter(svc),
			ReadHeaderTimeout: 10 * time.Second,
		},
		store: store,
	}, nil
}

// Run creates and serves a preset server until the context ends.
func Run(ctx context.Context, opts Options) error {
	srv, err := New(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("close preset server: %v", err)
		}
	}()
	return srv.Serve(ctx)
}

// Addr reports the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve blocks until the server stops or the context ends, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log.Printf("preset server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

// Close releases the server's resources. The listener is owned by the
// http server once Serve starts; storage is closed here.
func (s *Server) Close() error {
	return s.store.Close()
}
