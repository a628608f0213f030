package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	containerMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_container_mutations_total",
			Help: "Total number of cart and wishlist mutations",
		},
		[]string{"operation"},
	)

	containerPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_container_persist_failures_total",
			Help: "Total number of cart or wishlist writes that failed to reach the store",
		},
	)

	hydrationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_container_hydration_failures_total",
			Help: "Total number of stored collections discarded during hydration",
		},
		[]string{"key"},
	)
)
