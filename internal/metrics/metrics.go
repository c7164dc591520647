package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	QueueJoins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_joins_total",
			Help: "Queue joins by result (waiting, matched, requeued)",
		},
		[]string{"result"},
	)
	SessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Game sessions created by matchmaking",
		},
	)
	RoundsAdvanced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rounds_advanced_total",
			Help: "Round transitions performed by the synchronizer",
		},
	)
	FinishOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finish_round_outcomes_total",
			Help: "finish_round results by outcome",
		},
		[]string{"outcome"},
	)
	GamesEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "games_ended_total",
			Help: "Sessions closed, by reason (completed, forfeit)",
		},
		[]string{"reason"},
	)
	PushFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_failures_total",
			Help: "Messages that could not be delivered to a connection",
		},
		[]string{"type"},
	)
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Websocket connections held by this instance",
		},
	)
)

func init() {
	prometheus.MustRegister(QueueJoins)
	prometheus.MustRegister(SessionsCreated)
	prometheus.MustRegister(RoundsAdvanced)
	prometheus.MustRegister(FinishOutcomes)
	prometheus.MustRegister(GamesEnded)
	prometheus.MustRegister(PushFailures)
	prometheus.MustRegister(ActiveConnections)
}
