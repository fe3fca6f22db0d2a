// Package metrics exposes Prometheus collectors for the link catalog and the
// listener that serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "linkadmin"

// Collectors records catalog activity. It satisfies links.Recorder.
type Collectors struct {
	redirects *prometheus.CounterVec
	commands  *prometheus.CounterVec
	saves     *prometheus.CounterVec
	links     prometheus.Gauge
}

// NewRegistry returns a registry with the Go runtime and process collectors
// plus the catalog collectors.
func NewRegistry() (*prometheus.Registry, *Collectors) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, New(reg)
}

// New creates the catalog collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirects_total",
			Help:      "Slug redirects by result.",
		}, []string{"result"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_commands_total",
			Help:      "Admin create, update and delete commands by result.",
		}, []string{"command", "result"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_saves_total",
			Help:      "Writes of the links document by result.",
		}, []string{"result"}),
		links: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "links",
			Help:      "Number of slugs in the catalog.",
		}),
	}

	reg.MustRegister(c.redirects, c.commands, c.saves, c.links)
	return c
}

// Redirect counts a redirect attempt by result.
func (c *Collectors) Redirect(result string) {
	c.redirects.WithLabelValues(result).Inc()
}

// Command counts an admin command by command and result.
func (c *Collectors) Command(command, result string) {
	c.commands.WithLabelValues(command, result).Inc()
}

// Save counts a document write by result.
func (c *Collectors) Save(result string) {
	c.saves.WithLabelValues(result).Inc()
}

// Links sets the number of stored links.
func (c *Collectors) Links(n int) {
	c.links.Set(float64(n))
}
