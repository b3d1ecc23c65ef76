package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escrow_bookings_created_total",
		Help: "Total number of bookings confirmed.",
	})

	BookingsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escrow_bookings_cancelled_total",
		Help: "Total number of customer cancellations.",
	})

	RefundClaimsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escrow_refund_claims_total",
		Help: "Total number of refund claims settled.",
	})

	FlightsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escrow_flights_cancelled_total",
		Help: "Total number of airline flight cancellations.",
	})

	DisbursedCentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_disbursed_cents_total",
		Help: "Cents moved out of custody, by kind (refund, penalty, fare).",
	},
		[]string{"kind"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_operation_errors_total",
		Help: "Total number of rejected or failed escrow operations.",
	},
		[]string{"operation"},
	)

	EventsRelayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escrow_events_relayed_total",
		Help: "Total number of outbox events published to Kafka.",
	})
)
