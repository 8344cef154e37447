package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	storeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trainswift",
			Name:      "store_operations_total",
			Help:      "Store operations by store and operation.",
		},
		[]string{"store", "op"},
	)

	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trainswift",
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(storeOps, loginAttempts)
	})
}

// IncStoreOp increments the counter for a store operation.
func IncStoreOp(store, op string) {
	storeOps.WithLabelValues(store, op).Inc()
}

// IncLogin increments the login counter for a result label.
func IncLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}
