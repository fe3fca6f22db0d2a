package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sundayezeilo/linkadmin/internal/config"
	"github.com/sundayezeilo/linkadmin/internal/httpx"
	"github.com/sundayezeilo/linkadmin/internal/links"
)

// Server runs the application listeners: plain HTTP, or HTTPS plus an HTTP
// listener that redirects to it, and optionally the metrics listener.
type Server struct {
	config  *config.Config
	logger  *slog.Logger
	handler *links.Handler
	metrics *http.Server
	servers []*http.Server
}

// New creates a new Server instance. metrics may be nil.
func New(cfg *config.Config, logger *slog.Logger, handler *links.Handler, metrics *http.Server) *Server {
	return &Server{
		config:  cfg,
		logger:  logger,
		handler: handler,
		metrics: metrics,
	}
}

// Start starts every listener and blocks until ctx is canceled, a shutdown
// signal arrives, or a listener fails.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := AppHandler(s.logger, s.handler)
	plainAddr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))

	g, gctx := errgroup.WithContext(ctx)

	cert, err := tls.LoadX509KeyPair(s.config.TLS.CertPath, s.config.TLS.KeyPath)
	if err != nil {
		s.logger.Warn("could not load TLS certificate, serving HTTP only",
			"cert_path", s.config.TLS.CertPath,
			"key_path", s.config.TLS.KeyPath,
			"error", err.Error(),
		)
		plain := s.newHTTPServer(plainAddr, app)
		s.serve(g, "http", plain, plain.ListenAndServe)
	} else {
		secure := s.newHTTPServer(
			net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.TLS.HTTPSPort)), app)
		secure.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		s.serve(g, "https", secure, func() error { return secure.ListenAndServeTLS("", "") })

		redirect := s.newHTTPServer(plainAddr,
			applyMiddleware(s.logger, RedirectToHTTPS(s.config.TLS.HTTPSPort, s.config.Server.Port)))
		s.serve(g, "http-redirect", redirect, redirect.ListenAndServe)

		s.logger.Info("https enabled",
			"url", "https://"+hostWithPort(s.config.TLS.Host, s.config.TLS.HTTPSPort),
		)
	}

	if s.metrics != nil {
		s.serve(g, "metrics", s.metrics, s.metrics.ListenAndServe)
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			s.logger.Info("received shutdown signal")
		}
		return s.Shutdown()
	})

	return g.Wait()
}

// serve runs listen in the group. A listener closed by Shutdown is not an error.
func (s *Server) serve(g *errgroup.Group, name string, srv *http.Server, listen func() error) {
	s.servers = append(s.servers, srv)

	g.Go(func() error {
		s.logger.Info("starting listener",
			"listener", name,
			"addr", srv.Addr,
			"env", s.config.App.Environment,
		)
		if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s listener: %w", name, err)
		}
		return nil
	})
}

func (s *Server) newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}
}

// AppHandler returns the dispatcher wrapped in the request middleware.
func AppHandler(logger *slog.Logger, handler *links.Handler) http.Handler {
	return applyMiddleware(logger, handler.Routes())
}

// applyMiddleware wraps the handler with middleware in the correct order.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	return httpx.Chain(
		httpx.Recovery(logger), // Outermost: catch panics
		httpx.RequestID,        // Add request ID
		httpx.Logger(logger),   // Log requests
	)(handler)
}

// Shutdown gracefully shuts down every listener, forcing them closed once
// the shutdown timeout has passed.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, srv := range s.servers {
		if err := srv.Shutdown(ctx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				s.logger.Warn("shutdown timeout exceeded, forcing close", "addr", srv.Addr)
				errs = append(errs, srv.Close())
				continue
			}
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// RedirectToHTTPS answers every request with a 301 to the same host and URI
// on the HTTPS port. The port is left out of the location when it is 443.
func RedirectToHTTPS(httpsPort, httpPort int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if host == "" {
			host = net.JoinHostPort("localhost", strconv.Itoa(httpPort))
		}
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}

		target := "https://" + hostWithPort(host, httpsPort) + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
}

// hostWithPort joins host and port, omitting the default HTTPS port.
func hostWithPort(host string, port int) string {
	if port == 443 {
		if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
