package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "proxedu"

var (
	RegistrationsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_issued_total",
		Help:      "Registration codes handed out.",
	})
	RegistrationsVerified = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_verified_total",
		Help:      "Registrations confirmed through Telegram.",
	})
	RegistrationChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registration_checks_total",
		Help:      "Check calls by outcome.",
	}, []string{"outcome"})
	RegistrationsCleaned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_cleaned_total",
		Help:      "Expired pending registrations removed.",
	})
	Enrollments = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_total",
		Help:      "Paid course enrollments.",
	})
	TopUps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_topups_total",
		Help:      "Balance top-ups by payment method.",
	}, []string{"method"})
	NotificationClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_clients",
		Help:      "Connected admin notification sockets.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func ObserveRequest(method, route string, status int, took time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(took.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
