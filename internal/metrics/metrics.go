package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pharmadash",
		Name:      "api_requests_total",
		Help:      "Requests issued to the inventory API, by resource and status.",
	}, []string{"resource", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pharmadash",
		Name:      "api_request_duration_seconds",
		Help:      "Round-trip latency of inventory API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resource", "method"})

	transportErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pharmadash",
		Name:      "api_transport_errors_total",
		Help:      "Requests that failed before receiving an HTTP response.",
	}, []string{"resource", "method"})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

type instrumentedTransport struct {
	next http.RoundTripper
}

// InstrumentTransport wraps an http.RoundTripper with request counters and
// latency histograms labelled by API resource.
func InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &instrumentedTransport{next: next}
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resource := resourceLabel(req.URL.Path)
	start := time.Now()

	resp, err := t.next.RoundTrip(req)

	requestDuration.WithLabelValues(resource, req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		transportErrors.WithLabelValues(resource, req.Method).Inc()
		return nil, err
	}

	requestsTotal.WithLabelValues(resource, req.Method, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

// resourceLabel extracts the first path segment after the /api prefix so
// label cardinality stays bounded (no IDs in labels).
func resourceLabel(path string) string {
	path = strings.TrimPrefix(path, "/api")
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}
