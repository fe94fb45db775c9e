package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Clicks recorded through /go/{code}, split by bot classification
	ClicksRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_clicks_recorded_total",
		Help: "Total number of clicks recorded through short links",
	}, []string{"bot"})

	// Inbound postbacks by outcome (created, duplicate, rejected, unauthorized, rate_limited)
	PostbacksReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_postbacks_received_total",
		Help: "Total number of inbound postback calls by outcome",
	}, []string{"outcome"})

	// Latency of the postback ingestion handler
	PostbackLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "affiliate_postback_latency_seconds",
		Help:    "Latency of postback ingestion",
		Buckets: prometheus.DefBuckets,
	})

	ConversionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "affiliate_conversions_created_total",
		Help: "Total number of conversions created by the attribution resolver",
	})

	PayoutsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "affiliate_payouts_created_total",
		Help: "Total number of payout batches created",
	})
)

func Init() {
	prometheus.MustRegister(
		ClicksRecorded,
		PostbacksReceived,
		PostbackLatency,
		ConversionsCreated,
		PayoutsCreated,
	)
}
