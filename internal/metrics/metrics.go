package metrics

import (
	"strconv"
	"time"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)
	ModerationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "moderation_transitions_total", Help: "Moderation decisions by target status"},
		[]string{"entity", "to"},
	)
	OrdersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "orders_created_total", Help: "Orders placed"},
	)
)

func MustRegister() {
	prometheus.MustRegister(RequestsTotal, ReqDuration, InFlight, ModerationTransitions, OrdersCreated)
}

// Middleware records request count, latency and in-flight requests. Routes
// are labelled by their pattern, not the concrete path.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		InFlight.Inc()
		defer InFlight.Dec()

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = apperr.Status(err)
			}
		}

		route := c.Route().Path
		if route == "" || route == "/" {
			route = "unmatched"
		}
		method := c.Method()
		RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		ReqDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		return err
	}
}
