package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Second
	defaultPort       = 9090
)

var (
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkpro_registrations_total",
		Help: "Number of successfully registered users.",
	})

	Logins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkpro_logins_total",
		Help: "Number of successful logins.",
	})

	ClicksRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkpro_clicks_recorded_total",
		Help: "Number of link visits persisted to the click log.",
	})

	RefreshTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkpro_refresh_ticks_total",
		Help: "Number of dashboard refresh cycles executed by schedulers.",
	})
)

// NewServer builds a basic HTTP server that exposes /metrics for Prometheus scraping.
func NewServer(port int) *http.Server {
	if port == 0 {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
}
