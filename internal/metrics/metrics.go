package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aggregator_refresh_duration_seconds",
			Help:    "Duration of each cache refresh run in seconds.",
			Buckets: []float64{1, 5, 15, 30, 60, 120},
		},
	)
	SourceJobsFetched = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aggregator_source_jobs_fetched",
			Help: "Jobs contributed by each source in the latest aggregation run.",
		},
		[]string{"source"},
	)
	ReadRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_read_requests_total",
			Help: "Total read requests served, labeled by cache status.",
		},
		[]string{"cache_status"},
	)
	RefreshFailuresCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregator_refresh_failures_total",
			Help: "Total refresh runs that failed at the infrastructure level.",
		},
	)
)

func StartMetricsServer(port int) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(RefreshDuration)
	prometheus.MustRegister(SourceJobsFetched)
	prometheus.MustRegister(ReadRequestsCounter)
	prometheus.MustRegister(RefreshFailuresCounter)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), mux))
	}()
}
