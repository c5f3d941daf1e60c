package simulator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lox/flip7/internal/statistics"
)

const namespace = "flip7"

// Metrics counts simulated games for Prometheus. A nil *Metrics records
// nothing.
type Metrics struct {
	Games        prometheus.Counter
	Rounds       prometheus.Counter
	Wins         *prometheus.CounterVec
	Busts        *prometheus.CounterVec
	Flip7s       *prometheus.CounterVec
	GameRounds   prometheus.Histogram
	GameDuration prometheus.Histogram
}

// NewMetrics creates the simulation metrics and registers them with reg
// when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Games: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_total",
			Help:      "Number of simulated games played to completion",
		}),
		Rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Number of rounds played across all games",
		}),
		Wins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wins_total",
			Help:      "Games won, by strategy",
		}, []string{"strategy"}),
		Busts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "busts_total",
			Help:      "Rounds ended by a bust, by strategy",
		}, []string{"strategy"}),
		Flip7s: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flip7_total",
			Help:      "Hands banked with the Flip 7 bonus, by strategy",
		}, []string{"strategy"}),
		GameRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "game_rounds",
			Help:      "Rounds needed to finish a game",
			Buckets:   prometheus.LinearBuckets(2, 2, 15),
		}),
		GameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "game_duration_seconds",
			Help:      "Wall time spent simulating a game",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Games,
			m.Rounds,
			m.Wins,
			m.Busts,
			m.Flip7s,
			m.GameRounds,
			m.GameDuration,
		)
	}
	return m
}

func (m *Metrics) observe(res statistics.GameResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Games.Inc()
	m.Rounds.Add(float64(res.Rounds))
	m.GameRounds.Observe(float64(res.Rounds))
	m.GameDuration.Observe(elapsed.Seconds())

	for _, p := range res.Players {
		if p.Won {
			m.Wins.WithLabelValues(p.Strategy).Inc()
		}
		m.Busts.WithLabelValues(p.Strategy).Add(float64(p.Busts))
		m.Flip7s.WithLabelValues(p.Strategy).Add(float64(p.Flip7s))
	}
}
