// Package metrics exports Prometheus counters for registration outcomes and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

type Metrics struct {
	registry        *prometheus.Registry
	handler         fasthttp.RequestHandler
	registrations   *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eventhub_registration_attempts_total",
		Help: "Registration attempts by action and outcome.",
	}, []string{"action", "outcome"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eventhub_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventhub_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	registry.MustRegister(registrations, requests, duration)

	return &Metrics{
		registry:        registry,
		handler:         fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		registrations:   registrations,
		requestsTotal:   requests,
		requestDuration: duration,
	}
}

// ObserveRegistration counts one register or unregister attempt.
func (m *Metrics) ObserveRegistration(action, outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(action, outcome).Inc()
}

// Handler serves the /metrics exposition.
func (m *Metrics) Handler() fasthttp.RequestHandler {
	if m == nil {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Error(fasthttp.StatusMessage(fasthttp.StatusServiceUnavailable), fasthttp.StatusServiceUnavailable)
		}
	}
	return m.handler
}

// Middleware records request count and latency labelled by the matched route.
// The router must be built with SaveMatchedRoutePath enabled.
func (m *Metrics) Middleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if m == nil {
		return next
	}
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		route, _ := ctx.UserValue(router.MatchedRoutePathParam).(string)
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(ctx.Response.StatusCode())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
