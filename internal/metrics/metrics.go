// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is private to the service so tests can gather from it.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gotrip_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gotrip_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	bookingsCreated = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gotrip_bookings_created_total",
		Help: "Bookings created by service type.",
	}, []string{"service_type"})

	bookingTransitions = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gotrip_booking_transitions_total",
		Help: "Booking status transitions.",
	}, []string{"from", "to"})

	notifications = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gotrip_notifications_total",
		Help: "Notification outcomes: sent, failed, dropped.",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func BookingCreated(serviceType string) {
	bookingsCreated.WithLabelValues(serviceType).Inc()
}

func BookingTransition(from, to string) {
	bookingTransitions.WithLabelValues(from, to).Inc()
}

func Notification(result string) {
	notifications.WithLabelValues(result).Inc()
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
