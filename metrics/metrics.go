package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techlympics_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "techlympics_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "techlympics_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	RateLimiterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techlympics_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
		[]string{"ip"},
	)

	// LoginThrottled counts login attempts refused while a cooldown is active
	LoginThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techlympics_login_throttled_total",
			Help: "Total number of login attempts refused during a cooldown",
		},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "techlympics_db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// CertificatesGenerated counts rendered certificate PDFs by target type
	CertificatesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techlympics_certificates_generated_total",
			Help: "Total number of certificate PDFs generated",
		},
		[]string{"target_type"},
	)

	// SerialNumbersIssued counts issued certificate serial numbers by type code
	SerialNumbersIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techlympics_serial_numbers_issued_total",
			Help: "Total number of certificate serial numbers issued",
		},
		[]string{"type_code"},
	)

	// EmailsSent counts outgoing emails by delivery status
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techlympics_emails_sent_total",
			Help: "Total number of emails handed to the SMTP server",
		},
		[]string{"status"},
	)

	// CheckIns counts attendance check-ins by result
	CheckIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techlympics_attendance_checkins_total",
			Help: "Total number of attendance check-in attempts",
		},
		[]string{"result"},
	)

	// ActiveWebsocketClients tracks the scoreboard websocket connections
	ActiveWebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "techlympics_websocket_clients",
			Help: "Number of connected scoreboard websocket clients",
		},
	)

	MemoryStats = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "techlympics_memory_stats_bytes",
			Help: "Memory statistics in bytes",
		},
		[]string{"type"},
	)

	GoroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "techlympics_goroutine_count",
			Help: "Number of goroutines",
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techlympics_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techlympics_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// SystemCPUUsage tracks CPU usage percentage
	SystemCPUUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "techlympics_system_cpu_usage_percent",
			Help: "CPU usage percentage by core",
		},
		[]string{"core"},
	)

	SystemDiskUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "techlympics_system_disk_usage_bytes",
			Help: "Disk usage statistics in bytes",
		},
		[]string{"device", "mountpoint", "type"}, // type can be "used", "free", "total"
	)

	SystemLoadAverage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "techlympics_system_load_average",
			Help: "System load average",
		},
		[]string{"period"}, // "1min", "5min", "15min"
	)
)

// RecordDBOperation records the duration of a database operation
func RecordDBOperation(operation string, table string, startTime time.Time) {
	duration := time.Since(startTime).Seconds()
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration)
}
