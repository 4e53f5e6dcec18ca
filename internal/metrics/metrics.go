package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CandlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candles_total", Help: "Closed candles processed"},
		[]string{"symbol"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signal transitions detected"},
		[]string{"symbol", "strategy", "side"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"symbol", "side"},
	)
	OrderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "order_errors_total", Help: "Orders rejected by the exchange"},
		[]string{"symbol"},
	)
	OCORollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "oco_rolls_total", Help: "Bracket order pairs rolled"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(CandlesTotal, SignalsTotal, OrdersTotal, OrderErrorsTotal, OCORollsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
