package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BarsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_total", Help: "Count of OHLC observations ingested"},
		[]string{"provider"},
	)
	BarsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bars_rejected_total", Help: "Observations rejected at the ingestion boundary"},
	)
	EntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "entries_total", Help: "Entry signals emitted"},
		[]string{"side"},
	)
	NotifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "notify_failures_total", Help: "Alert deliveries that failed"},
	)
)

func init() {
	prometheus.MustRegister(BarsTotal, BarsRejected, EntriesTotal, NotifyFailures)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
