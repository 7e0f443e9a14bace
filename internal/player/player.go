package player

import (
	"sort"
	"sync"
	"time"

	"github.com/phasestarra7/GroundZero/internal/session"
)

type Player struct {
	ID       session.PlayerID
	Name     string
	Online   bool
	JoinedAt time.Time
	seq      int
	mu       sync.RWMutex
}

func New(id session.PlayerID, name string) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Online:   true,
		JoinedAt: time.Now(),
	}
}

func (p *Player) GetName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Name
}

func (p *Player) IsOnline() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Online
}

func (p *Player) setOnline(online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Online = online
}

// Manager tracks connected players. Disconnected players stay known until
// Prune so their names can still be shown in match announcements.
type Manager struct {
	players map[session.PlayerID]*Player
	seq     int
	mu      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		players: make(map[session.PlayerID]*Player),
	}
}

// Join marks id online, registering it under name if it is new. A returning
// player keeps its original join order but takes the new name.
func (m *Manager) Join(id session.PlayerID, name string) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.players[id]; ok {
		p.mu.Lock()
		p.Name = name
		p.Online = true
		p.mu.Unlock()
		return p
	}

	m.seq++
	p := New(id, name)
	p.seq = m.seq
	m.players[id] = p
	return p
}

// Leave marks id offline and reports whether it was online.
func (m *Manager) Leave(id session.PlayerID) bool {
	m.mu.RLock()
	p, ok := m.players[id]
	m.mu.RUnlock()
	if !ok || !p.IsOnline() {
		return false
	}
	p.setOnline(false)
	return true
}

func (m *Manager) Get(id session.PlayerID) (*Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	return p, ok
}

// Lookup finds a known player by name.
func (m *Manager) Lookup(name string) (*Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.players {
		if p.GetName() == name {
			return p, true
		}
	}
	return nil, false
}

// Name returns the display name of id, or a short form of the id for
// players that were never seen.
func (m *Manager) Name(id session.PlayerID) string {
	if p, ok := m.Get(id); ok {
		return p.GetName()
	}
	s := id.String()
	return s[:8]
}

func (m *Manager) IsOnline(id session.PlayerID) bool {
	p, ok := m.Get(id)
	return ok && p.IsOnline()
}

// Online returns the ids of connected players in join order.
func (m *Manager) Online() []session.PlayerID {
	m.mu.RLock()
	players := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		if p.IsOnline() {
			players = append(players, p)
		}
	}
	m.mu.RUnlock()

	sort.Slice(players, func(i, j int) bool { return players[i].seq < players[j].seq })
	ids := make([]session.PlayerID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

func (m *Manager) Count() int {
	return len(m.Online())
}

// Prune forgets every disconnected player.
func (m *Manager) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.players {
		if !p.IsOnline() {
			delete(m.players, id)
		}
	}
}
