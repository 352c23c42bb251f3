package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hudgate_trades_total",
		Help: "The total number of trade webhooks processed",
	}, []string{"status", "side"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hudgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	ResolutionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hudgate_resolution_failures_total",
		Help: "Total market resolution failures",
	}, []string{"reason"})
)
