package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-wide counters, exposed by the gateway at /metrics.
var (
	InboundMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutor",
		Name:      "inbound_messages_total",
		Help:      "Inbound chat messages seen, by platform.",
	}, []string{"platform"})

	RepliesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutor",
		Name:      "replies_posted_total",
		Help:      "Replies posted, by platform.",
	}, []string{"platform"})

	RepliesUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutor",
		Name:      "replies_updated_total",
		Help:      "Replies updated in place after an inbound edit, by platform.",
	}, []string{"platform"})

	RepliesDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutor",
		Name:      "replies_deleted_total",
		Help:      "Replies deleted after an inbound edit or delete, by platform.",
	}, []string{"platform"})

	SessionRestarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutor",
		Name:      "session_restarts_total",
		Help:      "Platform session reconnects, by platform.",
	}, []string{"platform"})
)
