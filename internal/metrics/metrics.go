// Package metrics holds the Prometheus collectors of the credit service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CreditsSpent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certifyrpg_credits_spent_total",
		Help: "Credits debited, by transaction kind",
	}, []string{"kind"})

	CreditsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certifyrpg_credits_granted_total",
		Help: "Credits added to accounts, by transaction kind",
	}, []string{"kind"})

	InsufficientCredits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certifyrpg_insufficient_credits_total",
		Help: "Spend attempts rejected for lack of credits, by transaction kind",
	}, []string{"kind"})

	DebitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certifyrpg_debit_failures_total",
		Help: "Artifacts delivered whose debit could not be recorded",
	}, []string{"kind"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certifyrpg_webhook_events_total",
		Help: "Payment webhook events, by event type and outcome",
	}, []string{"type", "outcome"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certifyrpg_llm_requests_total",
		Help: "LLM completion requests, by generation kind and status",
	}, []string{"kind", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "certifyrpg_http_request_duration_seconds",
		Help:    "HTTP request latency, by route template, method and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	LLMDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "certifyrpg_llm_request_duration_seconds",
		Help:    "LLM completion latency",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})
)
