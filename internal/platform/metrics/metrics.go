// Package metrics registers the service's Prometheus collectors and exposes
// the scrape endpoint.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BookingsTotal counts booking attempts by outcome.
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carebridge",
		Name:      "bookings_total",
		Help:      "Booking attempts by outcome.",
	}, []string{"outcome"})

	// NotificationsTotal counts notification events by delivery status.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carebridge",
		Name:      "notifications_total",
		Help:      "Notification events by delivery status.",
	}, []string{"status"})

	// HTTPRequestsTotal counts handled requests by method and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carebridge",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status.",
	}, []string{"method", "status"})
)

// Handler returns the /metrics scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// Middleware counts every handled request.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			HTTPRequestsTotal.WithLabelValues(
				c.Request().Method,
				statusClass(c.Response().Status),
			).Inc()
			return err
		}
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
