package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "Total number of catalog products created",
	})

	UnitsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "units_received_total",
		Help: "Total number of inventory units created by intake",
	})

	UnitsShippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "units_shipped_total",
		Help: "Total number of inventory units shipped",
	})

	UnitsDefectiveTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "units_defective_total",
		Help: "Total number of units marked defective",
	})

	ConfigurationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurations_total",
		Help: "Total number of completed configuration workflow steps",
	}, []string{"kind"})

	ShipmentsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipments_processed_total",
		Help: "Total number of shipments processed successfully",
	})

	ShipmentsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipments_failed_total",
		Help: "Total number of failed shipment requests",
	}, []string{"reason"})

	AllocationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shipment_allocation_latency_seconds",
		Help:    "Latency of shipment allocation transactions",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
