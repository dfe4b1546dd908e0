package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "booking_created_total",
			Help:      "Count of booking requests accepted in WAITING status.",
		},
	)

	bookingDecision = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "booking_decision_total",
			Help:      "Count of owner decisions over bookings.",
		},
		[]string{"decision"},
	)

	bookingRejectedRequest = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "booking_rejected_requests_total",
			Help:      "Count of booking requests refused by a business rule.",
		},
		[]string{"reason"},
	)

	commentCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "comment_created_total",
			Help:      "Count of comments accepted.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingDecision, bookingRejectedRequest, commentCreated)
	})
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingDecision(decision string) {
	bookingDecision.WithLabelValues(decision).Inc()
}

func IncBookingRejectedRequest(reason string) {
	bookingRejectedRequest.WithLabelValues(reason).Inc()
}

func IncCommentCreated() {
	commentCreated.Inc()
}
