package server

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func tempOptions(t *testing.T, port int) Options {
	t.Helper()
	return Options{
		Port:   port,
		DBPath: filepath.Join(t.TempDir(), "presets.db"),
	}
}

// TestServeStopsOnContext verifies the server answers requests and stops
// on cancel.
func TestServeStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := New(tempOptions(t, 0))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer srv.Close()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ctx)
	}()

	addr := srv.Addr().String()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split address %q: %v", addr, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get("http://" + net.JoinHostPort(host, port) + "/healthz")
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop in time")
	}
}

// TestNewPortInUse verifies New returns an error when the port is occupied.
func TestNewPortInUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	_, portStr, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		t.Fatalf("split address %q: %v", listener.Addr().String(), err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port %q: %v", portStr, err)
	}

	if _, err := New(tempOptions(t, port)); err == nil {
		t.Fatal("expected error for occupied port")
	}
}

// TestNewRequiresDBPath verifies storage misconfiguration fails fast.
func TestNewRequiresDBPath(t *testing.T) {
	if _, err := New(Options{Port: 0}); err == nil {
		t.Fatal("expected error for missing db path")
	}
}
