package combat

import (
	"strings"

	"github.com/google/uuid"

	"github.com/phasestarra7/GroundZero/internal/session"
)

type Kind int

const (
	KindMelee Kind = iota
	KindProjectile
	KindArea
	KindPoison
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindMelee:
		return "melee"
	case KindProjectile:
		return "projectile"
	case KindArea:
		return "area"
	case KindPoison:
		return "poison"
	default:
		return "other"
	}
}

// ParseKind maps adapter damage causes onto a Kind. Unknown causes are KindOther.
func ParseKind(name string) Kind {
	switch strings.ToLower(name) {
	case "melee", "vanilla", "entity_attack":
		return KindMelee
	case "projectile", "arrow":
		return KindProjectile
	case "area", "tnt", "explosion", "missile":
		return KindArea
	case "poison":
		return KindPoison
	default:
		return KindOther
	}
}

// Hit is the most recent damage a victim received.
type Hit struct {
	Victim   session.PlayerID
	Attacker session.PlayerID
	Kind     Kind
	Weapon   string
	Amount   float64
	At       int
}

// HasAttacker reports whether the hit came from a player.
func (h Hit) HasAttacker() bool {
	return h.Attacker != uuid.Nil
}

// Clock yields the monotonic tick count hits are stamped with.
type Clock interface {
	Now() int
}

// CombatListener is told about every player involved in a recorded hit.
type CombatListener interface {
	OnCombat(ids ...session.PlayerID)
}

// Tracker keeps the last hit per victim.
type Tracker struct {
	sess     *session.Session
	clock    Clock
	listener CombatListener
	window   int
	hits     map[session.PlayerID]Hit
}

func NewTracker(sess *session.Session, clock Clock, window int, listener CombatListener) *Tracker {
	if window < 1 {
		window = 1
	}
	return &Tracker{
		sess:     sess,
		clock:    clock,
		listener: listener,
		window:   window,
		hits:     make(map[session.PlayerID]Hit),
	}
}

// RecordHit stores a hit on victim, replacing any earlier one. attacker is
// uuid.Nil for environmental damage. Hits outside a running match, or on
// players who are not participants, are ignored.
func (t *Tracker) RecordHit(victim, attacker session.PlayerID, kind Kind, weapon string, amount float64) bool {
	if victim == uuid.Nil || t.sess.Phase() != session.PhaseRunning || !t.sess.IsParticipant(victim) {
		return false
	}

	t.hits[victim] = Hit{
		Victim:   victim,
		Attacker: attacker,
		Kind:     kind,
		Weapon:   weapon,
		Amount:   amount,
		At:       t.clock.Now(),
	}

	if t.listener != nil {
		t.listener.OnCombat(attacker, victim)
	}
	return true
}

// Take returns and forgets the last hit on victim.
func (t *Tracker) Take(victim session.PlayerID) (Hit, bool) {
	h, ok := t.hits[victim]
	delete(t.hits, victim)
	return h, ok
}

// InWindow reports whether h still counts for kill credit at tick now.
func (t *Tracker) InWindow(h Hit, now int) bool {
	dt := now - h.At
	return dt >= 0 && dt < t.window
}

func (t *Tracker) Reset() {
	t.hits = make(map[session.PlayerID]Hit)
}
