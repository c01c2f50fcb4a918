package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "medbill"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)

	BookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "bookings_created_total", Help: "Number of appointment bookings accepted."},
	)
	BookingStatusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "booking_status_updates_total", Help: "Booking status changes applied by admins, by new status."},
		[]string{"status"},
	)
	ResumeApplications = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "resume_applications_total", Help: "Number of job applications stored."},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "uploads_total", Help: "File uploads by kind (resume|media) and result (accepted|rejected|failed)."},
		[]string{"kind", "result"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by method, route and status code."},
		[]string{"method", "route", "code"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by method and route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		RateLimitAllowed,
		RateLimitRejected,
		BookingsCreated,
		BookingStatusUpdates,
		ResumeApplications,
		Uploads,
		HTTPRequests,
		HTTPDuration,
	)
}
