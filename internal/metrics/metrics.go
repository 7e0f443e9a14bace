// Package metrics exports match activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phasestarra7/GroundZero/internal/callbacks"
	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/internal/vote"
)

// Recorder counts lifecycle callbacks on its own registry. The gauges read
// the session when scraped.
type Recorder struct {
	callbacks.DefaultCallbacks

	registry *prometheus.Registry

	phase          prometheus.Gauge
	votes          *prometheus.CounterVec
	kills          prometheus.Counter
	deaths         *prometheus.CounterVec
	idlePenalties  prometheus.Counter
	matchesStarted prometheus.Counter
	matchesEnded   prometheus.Counter
}

func NewRecorder(sess *session.Session) *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	r := &Recorder{
		registry: registry,
		phase: factory.NewGauge(prometheus.GaugeOpts{
			Name: "groundzero_phase",
			Help: "Current match phase, 0 is idle and 7 is ended.",
		}),
		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "groundzero_votes_total",
			Help: "Ballots accepted, by vote kind.",
		}, []string{"kind"}),
		kills: factory.NewCounter(prometheus.CounterOpts{
			Name: "groundzero_kills_total",
			Help: "Credited kills.",
		}),
		deaths: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "groundzero_deaths_total",
			Help: "Participant deaths, by whether a kill was credited.",
		}, []string{"credited"}),
		idlePenalties: factory.NewCounter(prometheus.CounterOpts{
			Name: "groundzero_idle_penalties_total",
			Help: "Camping penalty steps applied.",
		}),
		matchesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "groundzero_matches_started_total",
			Help: "Matches that entered the running phase.",
		}),
		matchesEnded: factory.NewCounter(prometheus.CounterOpts{
			Name: "groundzero_matches_ended_total",
			Help: "Matches that reached the results phase.",
		}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "groundzero_remaining_ticks",
		Help: "Ticks left on the match clock.",
	}, func() float64 { return float64(sess.RemainingTicks()) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "groundzero_participants",
		Help: "Players in the participant set.",
	}, func() float64 { return float64(sess.ParticipantCount()) })

	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) OnPhaseChange(from, to session.Phase) {
	r.phase.Set(float64(to))
}

func (r *Recorder) OnVoteCast(kind vote.Kind, voter session.PlayerID, key string) {
	r.votes.WithLabelValues(kind.String()).Inc()
}

func (r *Recorder) OnMatchStart(participants []session.PlayerID) {
	r.matchesStarted.Inc()
}

func (r *Recorder) OnKill(attacker, victim session.PlayerID, gain, loss float64) {
	r.kills.Inc()
	r.deaths.WithLabelValues("true").Inc()
}

func (r *Recorder) OnDeath(victim session.PlayerID, loss float64) {
	r.deaths.WithLabelValues("false").Inc()
}

func (r *Recorder) OnIdlePenalty(id session.PlayerID, step int, burn float64) {
	r.idlePenalties.Inc()
}

func (r *Recorder) OnMatchEnd(standings []session.Standing) {
	r.matchesEnded.Inc()
}
