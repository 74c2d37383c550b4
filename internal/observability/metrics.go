package observability

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devpulse",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by route template, method and status code.",
	}, []string{"route", "method", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "devpulse",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	githubCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devpulse",
		Subsystem: "github",
		Name:      "calls_total",
		Help:      "Upstream GitHub API calls by endpoint and status code.",
	}, []string{"endpoint", "status"})
	syncRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devpulse",
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "GitHub sync runs by trigger and outcome.",
	}, []string{"trigger", "outcome"})
	syncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "devpulse",
		Subsystem: "sync",
		Name:      "duration_seconds",
		Help:      "Wall time of a single user sync.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
	syncLastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "devpulse",
		Subsystem: "sync",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful sync.",
	})
	insightsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "devpulse",
		Subsystem: "insights",
		Name:      "reports_generated_total",
		Help:      "Insight reports generated.",
	})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, githubCalls, syncRuns, syncDuration, syncLastSuccess, insightsGenerated)
}

// RecordGitHubCall counts one upstream call. It matches the github.Observer signature.
func RecordGitHubCall(endpoint string, status int) {
	githubCalls.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// RecordSync observes one user sync.
func RecordSync(trigger string, started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	syncRuns.WithLabelValues(trigger, outcome).Inc()
	syncDuration.Observe(time.Since(started).Seconds())
	if err == nil {
		syncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordInsightsGenerated counts one generated report.
func RecordInsightsGenerated() {
	insightsGenerated.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// Instrument records request counts and latency labelled by the matched mux route template.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
