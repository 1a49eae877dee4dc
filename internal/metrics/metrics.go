// Package metrics – Prometheus metrics for observability.
//
// Exposed series:
//   - trader_decisions_total{outcome}   – decision cycles by outcome (placed|no_trade|error)
//   - trader_orders_total{side}         – market orders accepted by the exchange
//   - trader_scheduled_jobs             – currently scheduled recurring jobs (gauge)
//
// Registered in init() and served by the HTTP handler started in main at
// /metrics (Prometheus text exposition format).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomePlaced  = "placed"
	OutcomeNoTrade = "no_trade"
	OutcomeError   = "error"
)

var (
	decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_decisions_total",
			Help: "Decision cycles by outcome",
		},
		[]string{"outcome"},
	)

	orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_orders_total",
			Help: "Market orders accepted by the exchange",
		},
		[]string{"side"},
	)

	scheduledJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trader_scheduled_jobs",
			Help: "Currently scheduled recurring trade jobs",
		},
	)
)

func init() {
	prometheus.MustRegister(decisions, orders, scheduledJobs)
}

func IncDecision(outcome string) { decisions.WithLabelValues(outcome).Inc() }
func IncOrder(side string)       { orders.WithLabelValues(side).Inc() }
func JobScheduled()              { scheduledJobs.Inc() }
func JobCancelled()              { scheduledJobs.Dec() }
func Handler() http.Handler      { return promhttp.Handler() }
