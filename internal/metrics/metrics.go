package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeusers_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokeusers_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	pokemonLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeusers_pokemon_lookups_total",
		Help: "Outbound pokemon data lookups by kind and outcome",
	}, []string{"kind", "outcome"})

	pokemonLookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokeusers_pokemon_lookup_duration_seconds",
		Help:    "Duration of outbound pokemon data requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	pokemonCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeusers_pokemon_cache_total",
		Help: "Pokemon lookup cache reads by kind and result",
	}, []string{"kind", "result"})

	teamMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeusers_team_mutations_total",
		Help: "Favorite and team mutations by operation and result",
	}, []string{"operation", "result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLookup records the outcome and latency of an outbound lookup.
func ObserveLookup(kind, outcome string, duration time.Duration) {
	pokemonLookups.WithLabelValues(kind, outcome).Inc()
	pokemonLookupDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveCache counts a cache hit or miss.
func ObserveCache(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	pokemonCache.WithLabelValues(kind, result).Inc()
}

// ObserveTeamMutation counts a favorite/team operation by result.
func ObserveTeamMutation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	teamMutations.WithLabelValues(operation, result).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
