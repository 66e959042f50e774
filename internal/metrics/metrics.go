// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedsync_api_requests_total",
		Help: "Requests sent to the catalog API",
	}, []string{"method", "route", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feedsync_api_request_duration_seconds",
		Help:    "Catalog API round trip latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ProductsUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedsync_products_uploaded_total",
		Help: "Products accepted by the catalog API",
	})

	ProductsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedsync_products_failed_total",
		Help: "Products rejected by the catalog API or lost in transport",
	}, []string{"reason"})

	MerchantOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedsync_merchant_ops_total",
		Help: "Merchant update/delete operations",
	}, []string{"op", "outcome"})

	CatalogEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feedsync_catalog_entries",
		Help: "Entries in the last built catalog",
	})
)

// WriteTextfile zrzuca wszystkie metryki do pliku w formacie node-exportera (textfile collector).
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
