package vote

import (
	"math/rand"
	"sync"

	"github.com/phasestarra7/GroundZero/internal/session"
)

// Kind identifies one of the sequential pre-match vote rounds.
type Kind int

const (
	KindMapSize Kind = iota
	KindIncome
	KindGameMode
)

func (k Kind) String() string {
	switch k {
	case KindMapSize:
		return "map size"
	case KindIncome:
		return "income"
	case KindGameMode:
		return "game mode"
	default:
		return "unknown"
	}
}

func ParseKind(name string) (Kind, bool) {
	switch name {
	case "map", "mapsize", "size":
		return KindMapSize, true
	case "income":
		return KindIncome, true
	case "mode", "gamemode":
		return KindGameMode, true
	default:
		return 0, false
	}
}

type Count[O comparable] struct {
	Option O
	Votes  int
}

// Round is plurality vote bookkeeping over a finite option set. Each voter
// holds at most one ballot; voting again moves the ballot.
type Round[O comparable] struct {
	kind      Kind
	options   []O
	tally     map[O]int
	ballots   map[session.PlayerID]O
	accepting bool
	mu        sync.RWMutex
}

func NewRound[O comparable](kind Kind) *Round[O] {
	return &Round[O]{
		kind:    kind,
		tally:   make(map[O]int),
		ballots: make(map[session.PlayerID]O),
	}
}

func (r *Round[O]) Kind() Kind {
	return r.kind
}

// Open starts a new round over options with every tally at zero.
func (r *Round[O]) Open(options []O) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.options = append([]O(nil), options...)
	r.tally = make(map[O]int, len(options))
	for _, opt := range options {
		r.tally[opt] = 0
	}
	r.ballots = make(map[session.PlayerID]O)
	r.accepting = len(options) > 0
}

func (r *Round[O]) Accepting() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.accepting
}

// Cast records voter's ballot for opt. It reports false, changing nothing,
// when the round is closed or opt is not one of the round's options.
func (r *Round[O]) Cast(voter session.PlayerID, opt O) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.accepting {
		return false
	}
	if _, ok := r.tally[opt]; !ok {
		return false
	}

	if prev, ok := r.ballots[voter]; ok {
		if prev == opt {
			return true
		}
		if r.tally[prev] > 0 {
			r.tally[prev]--
		}
	}
	r.ballots[voter] = opt
	r.tally[opt]++
	return true
}

func (r *Round[O]) Ballot(voter session.PlayerID) (O, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	opt, ok := r.ballots[voter]
	return opt, ok
}

func (r *Round[O]) Votes(opt O) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tally[opt]
}

// Tally returns the vote count of every option in the order they were opened.
func (r *Round[O]) Tally() []Count[O] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make([]Count[O], 0, len(r.options))
	for _, opt := range r.options {
		counts = append(counts, Count[O]{Option: opt, Votes: r.tally[opt]})
	}
	return counts
}

// Close stops accepting ballots and returns the options sharing the highest
// tally, in option order. With no ballots every option ties at zero.
func (r *Round[O]) Close() []O {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepting = false
	return r.leaders()
}

func (r *Round[O]) leaders() []O {
	best := 0
	for _, opt := range r.options {
		if r.tally[opt] > best {
			best = r.tally[opt]
		}
	}

	var ties []O
	for _, opt := range r.options {
		if r.tally[opt] == best {
			ties = append(ties, opt)
		}
	}
	return ties
}

// Resolve closes the round and picks uniformly at random among the leaders.
// It reports false only for a round opened without options.
func (r *Round[O]) Resolve(rng *rand.Rand) (O, bool) {
	ties := r.Close()
	if len(ties) == 0 {
		var zero O
		return zero, false
	}
	return ties[rng.Intn(len(ties))], true
}
