package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketing_http_requests_total",
		Help: "Requisições HTTP por rota e status",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketing_http_request_duration_seconds",
		Help:    "Duração das requisições HTTP por rota",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Metrics registra contagem e duração das requisições usando o padrão da rota como rótulo
func Metrics(method, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := newLoggingResponseWriter(w)

			next.ServeHTTP(lrw, r)

			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			httpRequests.WithLabelValues(method, route, strconv.Itoa(lrw.statusCode)).Inc()
		})
	}
}
