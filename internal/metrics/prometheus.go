package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HTTPRateLimitRejectionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_rate_limit_rejections_total",
		Help: "Requests rejected by the rate limiter",
	},
	[]string{"scope"},
)

var RedemptionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redemptions_total",
		Help: "Feedback redemptions by outcome",
	},
	[]string{"outcome"},
)

var QRCodesGeneratedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "qr_codes_generated_total",
		Help: "Redemption codes persisted, by mode",
	},
	[]string{"mode"},
)

var RewardDispatchTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reward_dispatch_total",
		Help: "Reward dispatch attempts by outcome",
	},
	[]string{"outcome"},
)

var PaymentCallbacksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_callbacks_total",
		Help: "Gateway callbacks by kind and outcome",
	},
	[]string{"kind", "outcome"},
)

var ExternalAPIDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "external_api_duration_seconds",
		Help:    "Duration of external API calls in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"provider", "service"},
)

var registerOnce sync.Once

// Register adds every collector to the default registry once
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			HTTPRateLimitRejectionsTotal,
			RedemptionsTotal,
			QRCodesGeneratedTotal,
			RewardDispatchTotal,
			PaymentCallbacksTotal,
			ExternalAPIDuration,
		)
	})
}
