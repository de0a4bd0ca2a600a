package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Metrics holds the application counters exposed on /metrics.
type Metrics struct {
	ConnectionRequests *prometheus.CounterVec
	MessagesSent       prometheus.Counter
	EnrollmentsCreated prometheus.Counter
	ClaimsIssued       prometheus.Counter
	Notifications      *prometheus.CounterVec

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		ConnectionRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zilconnect_connection_requests_total",
				Help: "Connection state machine operations by outcome",
			},
			[]string{"op"}, // send, accept, reject, block, remove
		),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zilconnect_messages_sent_total",
			Help: "Messages written through the gated send path",
		}),
		EnrollmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zilconnect_enrollments_created_total",
			Help: "Partner product enrollments created",
		}),
		ClaimsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zilconnect_offer_claims_issued_total",
			Help: "Offer claim codes issued",
		}),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zilconnect_notifications_total",
				Help: "Notifications created by type",
			},
			[]string{"type"},
		),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.ConnectionRequests,
		m.MessagesSent,
		m.EnrollmentsCreated,
		m.ClaimsIssued,
		m.Notifications,
	)
	return m
}

// Handler serves the registry for the /metrics route.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
