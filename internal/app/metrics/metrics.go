package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nekoneko",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nekoneko",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nekoneko",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	bookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nekoneko",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Total number of bookings created.",
		},
		[]string{"package_type"},
	)

	activeUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nekoneko",
			Name:      "active_users",
			Help:      "Number of registered users.",
		},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nekoneko",
			Name:      "errors_total",
			Help:      "Total number of recorded errors.",
		},
		[]string{"error_type"},
	)

	paymentCharges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nekoneko",
			Subsystem: "payments",
			Name:      "charges_total",
			Help:      "Total number of payment gateway charges.",
		},
		[]string{"status"},
	)

	alertDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nekoneko",
			Subsystem: "alerts",
			Name:      "deliveries_total",
			Help:      "Total number of alert channel deliveries.",
		},
		[]string{"channel", "success"},
	)

	weatherReports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nekoneko",
			Subsystem: "weather",
			Name:      "reports_total",
			Help:      "Total number of space weather reports generated.",
		},
	)

	systemResource = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "nekoneko",
			Subsystem: "system",
			Name:      "resource_usage",
			Help:      "Latest sampled system resource usage (percent, or rate for network errors).",
		},
		[]string{"resource"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		bookingsTotal,
		activeUsers,
		errorsTotal,
		paymentCharges,
		alertDeliveries,
		weatherReports,
		systemResource,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordBooking counts a created booking by package type.
func RecordBooking(packageType string) {
	if packageType == "" {
		packageType = "unknown"
	}
	bookingsTotal.WithLabelValues(packageType).Inc()
}

// RecordError counts a recorded error by type.
func RecordError(errorType string) {
	if errorType == "" {
		errorType = "unknown"
	}
	errorsTotal.WithLabelValues(errorType).Inc()
}

// SetActiveUsers publishes the current registered user count.
func SetActiveUsers(n int) { activeUsers.Set(float64(n)) }

// RecordPaymentCharge counts a gateway charge attempt by outcome.
func RecordPaymentCharge(status string) {
	paymentCharges.WithLabelValues(status).Inc()
}

// RecordAlertDelivery counts one channel delivery of a broadcast alert.
func RecordAlertDelivery(channel string, success bool) {
	result := "false"
	if success {
		result = "true"
	}
	alertDeliveries.WithLabelValues(channel, result).Inc()
}

// RecordWeatherReport counts a generated space weather report.
func RecordWeatherReport() { weatherReports.Inc() }

// SetResourceUsage publishes the latest sample for a monitored resource.
func SetResourceUsage(resource string, value float64) {
	systemResource.WithLabelValues(resource).Set(value)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "users", "bookings", "payments", "routes", "agents":
		if len(parts) == 1 {
			return "/" + parts[0]
		}
		if len(parts) == 2 {
			return "/" + parts[0] + "/:id"
		}
		return "/" + parts[0] + "/:id/" + parts[2]
	default:
		return "/" + parts[0]
	}
}
