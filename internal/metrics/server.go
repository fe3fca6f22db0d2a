package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sundayezeilo/linkadmin/internal/config"
	"github.com/sundayezeilo/linkadmin/internal/httpx"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Second
	healthTimeout     = 2 * time.Second
)

// HealthCheck reports whether the application can serve requests.
type HealthCheck func(ctx context.Context) error

// NewServer builds the HTTP server that exposes /metrics for Prometheus
// scraping and /healthz for probes. It listens on its own port so neither
// path can shadow a slug.
func NewServer(cfg config.MetricsConfig, gatherer prometheus.Gatherer, check HealthCheck, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           Handler(gatherer, check, logger),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
}

// Handler returns the routes served by the metrics listener.
func Handler(gatherer prometheus.Gatherer, check HealthCheck, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", healthHandler(check, logger))

	return httpx.Recovery(logger)(mux)
}

func healthHandler(check HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if check != nil {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "error", err.Error())
				httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
				})
				return
			}
		}

		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
