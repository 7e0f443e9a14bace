package combat

import (
	"github.com/phasestarra7/GroundZero/internal/callbacks"
	"github.com/phasestarra7/GroundZero/internal/host"
	"github.com/phasestarra7/GroundZero/internal/notify"
	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/pkg/config"
)

type Rules struct {
	KillSteal             float64
	DeathPenalty          float64
	NonPlayerDeathPenalty float64
	StealBase             config.StealBase
}

type Outcome struct {
	Victim   session.PlayerID
	Attacker session.PlayerID
	Credited bool
	Gain     float64
	Loss     float64
	Hit      Hit
	HadHit   bool
}

// Namer resolves display names for announcements.
type Namer interface {
	Name(id session.PlayerID) string
}

// Resolver applies the score consequences of a participant's death.
type Resolver struct {
	sess     *session.Session
	tracker  *Tracker
	clock    Clock
	rules    Rules
	names    Namer
	announce *notify.Announcer
	hooks    callbacks.Callbacks
}

func NewResolver(sess *session.Session, tracker *Tracker, clock Clock, rules Rules, names Namer, announce *notify.Announcer, hooks callbacks.Callbacks) *Resolver {
	if hooks == nil {
		hooks = &callbacks.DefaultCallbacks{}
	}
	return &Resolver{
		sess:     sess,
		tracker:  tracker,
		clock:    clock,
		rules:    rules,
		names:    names,
		announce: announce,
		hooks:    hooks,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (r *Resolver) penaltyScale() float64 {
	if g, ok := r.sess.GameMode(); ok {
		return g.PenaltyScale()
	}
	return 1
}

// HandleDeath settles the death of victim. The kill is credited only when
// the victim's last hit came from another participant inside the combat
// window; anything else is an uncredited death.
func (r *Resolver) HandleDeath(victim session.PlayerID) (Outcome, bool) {
	if r.sess.Phase() != session.PhaseRunning {
		return Outcome{}, false
	}
	victimScore, ok := r.sess.Score(victim)
	if !ok {
		return Outcome{}, false
	}

	out := Outcome{Victim: victim}
	hit, had := r.tracker.Take(victim)
	out.Hit, out.HadHit = hit, had

	if had && hit.HasAttacker() && hit.Attacker != victim && r.tracker.InWindow(hit, r.clock.Now()) {
		if attackerScore, ok := r.sess.Score(hit.Attacker); ok {
			out.Attacker = hit.Attacker
			out.Credited = true
			r.credit(&out, victimScore, attackerScore)
			return out, true
		}
	}

	out.Loss = victimScore * clamp01(r.rules.NonPlayerDeathPenalty*r.penaltyScale())
	r.sess.SetScore(victim, victimScore-out.Loss)

	r.broadcast(host.CueError, "%s died (penalty -%.2f)", r.names.Name(victim), out.Loss)
	r.hooks.OnDeath(victim, out.Loss)
	return out, true
}

func (r *Resolver) credit(out *Outcome, victimScore, attackerScore float64) {
	base := victimScore
	if r.rules.StealBase == config.StealFromAttacker {
		base = attackerScore
	}

	out.Loss = victimScore * clamp01(r.rules.DeathPenalty*r.penaltyScale())
	out.Gain = base * clamp01(r.rules.KillSteal)

	r.sess.SetScore(out.Victim, victimScore-out.Loss)
	r.sess.SetScore(out.Attacker, attackerScore+out.Gain)

	r.broadcast(host.CueLevelUp, "%s killed %s (+%.2f / -%.2f)",
		r.names.Name(out.Attacker), r.names.Name(out.Victim), out.Gain, out.Loss)
	r.hooks.OnKill(out.Attacker, out.Victim, out.Gain, out.Loss)
}

func (r *Resolver) broadcast(cue host.Cue, format string, args ...any) {
	if r.announce == nil {
		return
	}
	r.announce.Broadcast(r.audience(), cue, format, args...)
}

func (r *Resolver) audience() []session.PlayerID {
	return append(r.sess.Participants(), r.sess.Spectators()...)
}
