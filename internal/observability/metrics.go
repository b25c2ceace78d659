// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

// Package observability holds the Prometheus metrics recorded by the client
// and the textfile export used when the process exits.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
)

// Outcome labels for API requests.
const (
	OutcomeOK             = "ok"
	OutcomeServerError    = "server_error"
	OutcomeTransportError = "transport_error"
)

// Metrics contains the custom Prometheus metrics for phoneauth.
type Metrics struct {
	APIRequestsTotal    *prometheus.CounterVec
	APIRequestDuration  *prometheus.HistogramVec
	FlowTransitions     *prometheus.CounterVec
	NotificationsTotal  *prometheus.CounterVec
	SessionWriteFailure prometheus.Counter
}

// NewMetrics creates and registers the phoneauth metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phoneauth_api_requests_total",
				Help: "Total number of backend API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		APIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "phoneauth_api_request_duration_seconds",
				Help:    "Backend API request latency by endpoint",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		FlowTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phoneauth_flow_transitions_total",
				Help: "Total number of auth flow state transitions",
			},
			[]string{"from", "to"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phoneauth_notifications_total",
				Help: "Total number of user notifications by kind",
			},
			[]string{"kind"},
		),
		SessionWriteFailure: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "phoneauth_session_save_failures_total",
				Help: "Total number of failed session saves after a successful verification",
			},
		),
	}

	reg.MustRegister(m.APIRequestsTotal)
	reg.MustRegister(m.APIRequestDuration)
	reg.MustRegister(m.FlowTransitions)
	reg.MustRegister(m.NotificationsTotal)
	reg.MustRegister(m.SessionWriteFailure)

	return m
}

// NewRegistry returns a registry with the Go runtime collector and the
// phoneauth metrics registered.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	return registry, NewMetrics(registry)
}

// WriteTextfile writes every metric gathered from g to path in the
// node_exporter textfile format.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return oops.Code("METRICS_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
