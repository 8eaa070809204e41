package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TweetsPosted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subxbot_tweets_posted_total",
		Help: "Total tweets posted",
	}, []string{"user", "source"})
	RepliesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subxbot_replies_sent_total",
		Help: "Total replies sent",
	}, []string{"user", "kind"})
	ScanErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subxbot_scan_errors_total",
		Help: "Total errors during engagement scans",
	}, []string{"user", "class"})
	RateDenied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subxbot_rate_denied_total",
		Help: "Reply attempts denied by the rate governor",
	}, []string{"user", "reason"})
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "subxbot_scan_duration_seconds",
		Help:    "Engagement scan duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	ActiveBots = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "subxbot_active_bots",
		Help: "Number of running tenant loops",
	})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subxbot_api_retries_total",
		Help: "Total X API retry attempts",
	}, []string{"endpoint"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subxbot_command_runs_total",
		Help: "Total CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subxbot_command_errors_total",
		Help: "Total CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(TweetsPosted, RepliesSent, ScanErrors, RateDenied, ScanDuration, ActiveBots, APIRetries, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveScanDuration records a scan duration from its start time.
func ObserveScanDuration(start time.Time) {
	ScanDuration.Observe(time.Since(start).Seconds())
}

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
