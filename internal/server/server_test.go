package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sundayezeilo/linkadmin/internal/config"
	"github.com/sundayezeilo/linkadmin/internal/links"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRedirectToHTTPS(t *testing.T) {
	tests := []struct {
		name      string
		httpsPort int
		host      string
		target    string
		want      string
	}{
		{
			name:      "non-default port kept",
			httpsPort: 3443,
			host:      "localhost:3000",
			target:    "/docs?ref=mail",
			want:      "https://localhost:3443/docs?ref=mail",
		},
		{
			name:      "default port omitted",
			httpsPort: 443,
			host:      "go.example.com",
			target:    "/admin",
			want:      "https://go.example.com/admin",
		},
		{
			name:      "port stripped from host header",
			httpsPort: 443,
			host:      "go.example.com:80",
			target:    "/",
			want:      "https://go.example.com/",
		},
		{
			name:      "ipv6 host",
			httpsPort: 3443,
			host:      "[::1]:3000",
			target:    "/x",
			want:      "https://[::1]:3443/x",
		},
		{
			name:      "ipv6 host default port",
			httpsPort: 443,
			host:      "[::1]:80",
			target:    "/x",
			want:      "https://[::1]/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.Host = tt.host
			rr := httptest.NewRecorder()

			RedirectToHTTPS(tt.httpsPort, 3000).ServeHTTP(rr, req)

			if rr.Code != http.StatusMovedPermanently {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusMovedPermanently)
			}
			if got := rr.Header().Get("Location"); got != tt.want {
				t.Errorf("Location = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedirectToHTTPS_MissingHost(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin/create", nil)
	req.Host = ""
	rr := httptest.NewRecorder()

	RedirectToHTTPS(3443, 3000).ServeHTTP(rr, req)

	if got, want := rr.Header().Get("Location"), "https://localhost:3443/admin/create"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestServer_StartStopsOnCancel(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
		TLS: config.TLSConfig{
			HTTPSPort: 0,
			KeyPath:   filepath.Join(t.TempDir(), "missing-key.pem"),
			CertPath:  filepath.Join(t.TempDir(), "missing.pem"),
		},
		App: config.AppConfig{Environment: "test", LogLevel: "error"},
	}

	catalog, err := links.NewCatalog(links.NewFileStore(filepath.Join(t.TempDir(), "data.json")), nil)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	handler := links.NewHandler(links.HandlerConfig{Service: catalog, Logger: discardLogger})
	srv := New(cfg, discardLogger, handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}

func TestServer_ListenerFailureStopsStart(t *testing.T) {
	taken, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer taken.Close()
	port := taken.Addr().(*net.TCPAddr).Port

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            port,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
		TLS: config.TLSConfig{
			KeyPath:  filepath.Join(t.TempDir(), "missing-key.pem"),
			CertPath: filepath.Join(t.TempDir(), "missing.pem"),
		},
	}

	catalog, err := links.NewCatalog(links.NewFileStore(filepath.Join(t.TempDir(), "data.json")), nil)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	handler := links.NewHandler(links.HandlerConfig{Service: catalog, Logger: discardLogger})

	done := make(chan error, 1)
	go func() { done <- New(cfg, discardLogger, handler, nil).Start(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Start() = nil, want an error for a port in use")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after listener failure")
	}
}
