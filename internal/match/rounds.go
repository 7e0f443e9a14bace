package match

import (
	"strings"

	"github.com/phasestarra7/GroundZero/internal/host"
	"github.com/phasestarra7/GroundZero/internal/option"
	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/internal/vote"
)

// round describes one voting phase. apply stores the resolved option on the
// session and next enters the following phase.
type round[O option.Choice] struct {
	phase   session.Phase
	votes   *vote.Round[O]
	options []O
	apply   func(O)
	next    func()
}

func menuItems[O option.Choice](r *vote.Round[O]) []host.MenuItem {
	counts := r.Tally()
	items := make([]host.MenuItem, 0, len(counts))
	for _, c := range counts {
		items = append(items, host.MenuItem{
			Key:   c.Option.Key(),
			Label: c.Option.Label(),
			Slot:  c.Option.Slot(),
			Votes: c.Votes,
		})
	}
	return items
}

func titled(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func runRound[O option.Choice](m *Manager, r round[O]) {
	kind := r.votes.Kind()
	m.setPhase(r.phase)
	r.votes.Open(r.options)

	items := menuItems(r.votes)
	for _, id := range m.sess.Participants() {
		m.menu.Open(id, kind, items)
	}
	m.announce.Broadcast(m.audience(), host.CueBell, "Vote for %s! (%d seconds)", kind, m.cfg.Voting.WindowSeconds)

	window := m.cfg.Ticks(m.cfg.Voting.WindowSeconds)
	for n := m.cfg.Voting.ReminderSeconds; n >= 1; n-- {
		at := window - m.cfg.Ticks(n)
		if at < 1 {
			continue
		}
		m.sched.After(at, func() {
			m.announce.Broadcast(m.audience(), host.CueClick, "Ending vote for %s in %d", kind, n)
		})
	}
	m.sched.After(window, func() { closeRound(m, r) })
}

func closeRound[O option.Choice](m *Manager, r round[O]) {
	kind := r.votes.Kind()
	ties := r.votes.Close()

	keys := make([]string, len(ties))
	for i, o := range ties {
		keys[i] = o.Key()
	}
	m.menu.Retain(kind, keys)
	m.announce.Broadcast(m.audience(), host.CueNone, "Finalizing %s vote...", kind)

	m.sched.After(m.cfg.Ticks(m.cfg.Voting.ResolveDelaySeconds), func() {
		chosen, ok := r.votes.Resolve(m.rng)
		if !ok {
			m.logger.Error("vote had no options", "kind", kind)
			m.ForceResetToIdle(Console)
			return
		}
		r.apply(chosen)
		m.menu.Highlight(kind, chosen.Key())
		m.announce.Broadcast(m.audience(), host.CueLevelUp, "%s selected : %s", titled(kind.String()), chosen.Label())
		m.logger.Info("vote resolved", "kind", kind, "choice", chosen.Key(), "ties", len(ties))
		m.hooks.OnVoteResolved(kind, chosen.Key(), len(ties))

		m.sched.After(m.cfg.Ticks(m.cfg.Voting.AdvanceDelaySeconds), func() {
			m.menu.CloseAll()
			r.next()
		})
	})
}

func castVote[O option.Choice](m *Manager, phase session.Phase, r *vote.Round[O], voter session.PlayerID, opt O) bool {
	if m.sess.Phase() != phase {
		m.announce.Error(voter, "Voting for %s is not open.", r.Kind())
		return false
	}
	if !m.sess.IsParticipant(voter) {
		m.announce.Error(voter, "Only participants can vote.")
		return false
	}
	if !r.Cast(voter, opt) {
		return false
	}
	m.menu.Update(r.Kind(), menuItems(r))
	m.announce.Broadcast([]session.PlayerID{voter}, host.CueClick, "You voted for %s", opt.Label())
	m.hooks.OnVoteCast(r.Kind(), voter, opt.Key())
	return true
}
