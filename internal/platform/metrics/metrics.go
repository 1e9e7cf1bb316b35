package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the review service. Each instance
// carries its own registry so test binaries can build as many as they need.
type Metrics struct {
	Registry *prometheus.Registry

	SellersRegistered     prometheus.Counter
	SellersVerified       prometheus.Counter
	VerificationsRejected prometheus.Counter
	SellersSuspended      prometheus.Counter
	SellersReinstated     prometheus.Counter

	ListingsSubmitted prometheus.Counter
	ListingsApproved  prometheus.Counter
	ListingsRejected  prometheus.Counter
	ListingsSkipped   prometheus.Counter

	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		SellersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "restyle_sellers_registered_total",
			Help: "Total number of seller accounts registered",
		}),
		SellersVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "restyle_sellers_verified_total",
			Help: "Total number of seller accounts verified by an admin",
		}),
		VerificationsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "restyle_verifications_rejected_total",
			Help: "Total number of seller verification requests rejected",
		}),
		SellersSuspended: factory.NewCounter(prometheus.CounterOpts{
			Name: "restyle_sellers_suspended_total",
			Help: "Total number of seller accounts suspended",
		}),
		SellersReinstated: factory.NewCounter(prometheus.CounterOpts{
			Name: "restyle_sellers_reinstated_total",
			Help: "Total number of suspended seller accounts reinstated",
		}),
		ListingsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "restyle_listings_submitted_total",
			Help: "Total number of listings submitted for moderation",
		}),
		ListingsApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "restyle_listings_approved_total",
			Help: "Total number of listings approved by an admin",
		}),
		ListingsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "restyle_listings_rejected_total",
			Help: "Total number of listings rejected by an admin",
		}),
		ListingsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "restyle_listings_skipped_total",
			Help: "Total number of skip operations in the moderation queue",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "restyle_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
