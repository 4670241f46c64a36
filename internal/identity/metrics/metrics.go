package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the identity area.
type Metrics struct {
	UsersCreated  prometheus.Counter
	UsersDeleted  prometheus.Counter
	LoginsLinked  prometheus.Counter
	ClaimsGranted prometheus.Counter
}

// New creates and registers all identity metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "identity_users_created_total",
			Help: "Total number of user records created",
		}),
		UsersDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "identity_users_deleted_total",
			Help: "Total number of user records deleted",
		}),
		LoginsLinked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "identity_logins_linked_total",
			Help: "Total number of external logins linked to users",
		}),
		ClaimsGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "identity_claims_granted_total",
			Help: "Total number of claims granted to users",
		}),
	}
}
