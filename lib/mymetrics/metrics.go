package mymetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestsDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ordersPlacedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Total number of orders placed",
		},
	)

	orderValueCents = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_total_cents",
			Help:    "Order totals in cents",
			Buckets: []float64{1000, 2000, 3000, 5000, 7500, 10000, 20000},
		},
	)

	onboardingStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_steps_completed_total",
			Help: "Total number of completed onboarding steps",
		},
		[]string{"step"},
	)

	emailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total number of emails by template and outcome",
		},
		[]string{"template", "status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestsDuration, ordersPlacedTotal, orderValueCents, onboardingStepsTotal, emailsTotal)
}

func OrderPlaced(totalCents int64) {
	ordersPlacedTotal.Inc()
	orderValueCents.Observe(float64(totalCents))
}

func OnboardingStepCompleted(step string) {
	onboardingStepsTotal.WithLabelValues(step).Inc()
}

func EmailSent(template string, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	emailsTotal.WithLabelValues(template, status).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware is meant for router.Use so that the route template is known.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		route := routeTemplate(r)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		httpRequestsDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
