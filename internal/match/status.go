package match

import (
	"fmt"

	"github.com/phasestarra7/GroundZero/internal/session"
)

func formatClock(ticks, tickRate int) string {
	if tickRate < 1 {
		tickRate = 1
	}
	if ticks < 0 {
		ticks = 0
	}
	secs := ticks / tickRate
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Status renders the status board: phase, clock and one line per scored
// player.
func (m *Manager) Status() []string {
	phase := m.sess.Phase()
	lines := []string{"Phase : " + phase.String()}

	if phase == session.PhaseRunning {
		lines = append(lines, "Time left : "+formatClock(m.sess.RemainingTicks(), m.cfg.Server.TickRate))
	}
	if size, ok := m.sess.MapSize(); ok {
		lines = append(lines, "Map size : "+size.Label())
	}
	if income, ok := m.sess.Income(); ok {
		lines = append(lines, "Income : "+income.Label())
	}
	if mode, ok := m.sess.GameMode(); ok {
		lines = append(lines, "Game mode : "+mode.Label())
	}

	for i, s := range m.sess.Standings() {
		lines = append(lines, m.announce.Sprintf("#%d %s  score %.2f  plasma %.2f  income +%.2f/s",
			i+1, m.nameOf(s.ID), s.Score, s.Plasma, s.Income))
	}
	if spectators := m.sess.Spectators(); len(spectators) > 0 {
		lines = append(lines, "Spectators : "+m.names(spectators))
	}
	return lines
}
