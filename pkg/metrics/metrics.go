package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodfoods_messages_handled_total",
			Help: "Total number of user messages handled, by resolved intent",
		},
		[]string{"intent"},
	)

	MessagesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goodfoods_messages_failed_total",
			Help: "Total number of user messages that ended in the generic error reply",
		},
	)

	ModelFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodfoods_model_fallbacks_total",
			Help: "Total number of model calls replaced by the heuristic classifier",
		},
		[]string{"reason"},
	)

	NormalizerFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodfoods_normalizer_fallbacks_total",
			Help: "Total number of model responses converted to a clarify intent",
		},
		[]string{"reason"},
	)

	ReservationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goodfoods_reservations_created_total",
			Help: "Total number of confirmed reservations created",
		},
	)

	ReservationsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodfoods_reservations_rejected_total",
			Help: "Total number of reservation attempts rejected",
		},
		[]string{"reason"},
	)

	ReservationsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goodfoods_reservations_cancelled_total",
			Help: "Total number of reservations cancelled",
		},
	)

	HandleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goodfoods_message_duration_seconds",
			Help:    "Duration of a full message handling cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
