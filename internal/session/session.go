package session

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/phasestarra7/GroundZero/internal/option"
)

type PlayerID = uuid.UUID

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountdownBeforeVote
	PhaseVotingMapSize
	PhaseVotingIncome
	PhaseVotingGameMode
	PhaseCountdownBeforeStart
	PhaseRunning
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCountdownBeforeVote:
		return "countdown_before_vote"
	case PhaseVotingMapSize:
		return "voting_map_size"
	case PhaseVotingIncome:
		return "voting_income"
	case PhaseVotingGameMode:
		return "voting_game_mode"
	case PhaseCountdownBeforeStart:
		return "countdown_before_start"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Forming reports whether the match is being set up: past Idle but not yet Running.
func (p Phase) Forming() bool {
	return p >= PhaseCountdownBeforeVote && p <= PhaseCountdownBeforeStart
}

// Live reports whether the match is running or showing its final results.
func (p Phase) Live() bool {
	return p == PhaseRunning || p == PhaseEnded
}

// Arena is the environment context captured when a match starts. Restore is
// opaque to the core and only interpreted by the environment adapter.
type Arena struct {
	World   string
	CenterX float64
	CenterZ float64
	Restore any
}

// Base holds the economy values every participant starts a match with.
type Base struct {
	Plasma float64
	Income float64
	Score  float64
}

type Standing struct {
	ID     PlayerID
	Score  float64
	Plasma float64
	Income float64
}

// Session is the state of the single match hosted by the process. All
// mutation happens on the scheduler goroutine; the lock only makes the read
// accessors safe for observers such as the metrics endpoint.
type Session struct {
	phase        Phase
	participants map[PlayerID]int
	spectators   map[PlayerID]int
	seq          int

	plasma map[PlayerID]float64
	income map[PlayerID]float64
	score  map[PlayerID]float64

	mapSize     option.MapSize
	hasMapSize  bool
	incomeOpt   option.Income
	hasIncome   bool
	gameMode    option.GameMode
	hasGameMode bool

	remainingTicks int
	arena          *Arena

	mu sync.RWMutex
}

func New() *Session {
	s := &Session{}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.phase = PhaseIdle
	s.participants = make(map[PlayerID]int)
	s.spectators = make(map[PlayerID]int)
	s.plasma = make(map[PlayerID]float64)
	s.income = make(map[PlayerID]float64)
	s.score = make(map[PlayerID]float64)
	s.hasMapSize, s.hasIncome, s.hasGameMode = false, false, false
	s.remainingTicks = 0
	s.arena = nil
}

func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Session) SetPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}

// RegisterJoin buckets a newly connected player as spectator unless it is
// already a participant of the current match.
func (s *Session) RegisterJoin(id PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[id]; ok {
		return
	}
	if _, ok := s.spectators[id]; ok {
		return
	}
	s.seq++
	s.spectators[id] = s.seq
}

// Remove drops id from both buckets. Economy entries are kept so a departed
// participant can still be credited or penalized.
func (s *Session) Remove(id PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants, id)
	delete(s.spectators, id)
}

func (s *Session) MoveToParticipant(id PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.spectators[id]
	if !ok {
		s.seq++
		order = s.seq
	}
	delete(s.spectators, id)
	s.participants[id] = order
}

func (s *Session) MoveToSpectator(id PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.participants[id]
	if !ok {
		s.seq++
		order = s.seq
	}
	delete(s.participants, id)
	s.spectators[id] = order
}

// SnapshotParticipants moves every spectator into the participant set and
// repopulates the economy maps from base, dropping entries of earlier matches.
func (s *Session) SnapshotParticipants(base Base) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, order := range s.spectators {
		s.participants[id] = order
	}
	s.spectators = make(map[PlayerID]int)

	s.plasma = make(map[PlayerID]float64, len(s.participants))
	s.income = make(map[PlayerID]float64, len(s.participants))
	s.score = make(map[PlayerID]float64, len(s.participants))
	for id := range s.participants {
		s.plasma[id] = base.Plasma
		s.income[id] = base.Income
		s.score[id] = base.Score
	}
}

// ResetToSpectators returns the session to fresh defaults with online as the
// spectator set.
func (s *Session) ResetToSpectators(online []PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	for _, id := range online {
		if _, ok := s.spectators[id]; ok {
			continue
		}
		s.seq++
		s.spectators[id] = s.seq
	}
}

func ordered(set map[PlayerID]int) []PlayerID {
	ids := make([]PlayerID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return set[ids[i]] < set[ids[j]] })
	return ids
}

// Participants returns the participant set in join order.
func (s *Session) Participants() []PlayerID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ordered(s.participants)
}

func (s *Session) Spectators() []PlayerID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ordered(s.spectators)
}

func (s *Session) ParticipantCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}

func (s *Session) IsParticipant(id PlayerID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.participants[id]
	return ok
}

func (s *Session) IsSpectator(id PlayerID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.spectators[id]
	return ok
}

func (s *Session) Plasma(id PlayerID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plasma[id]
}

func (s *Session) AddPlasma(id PlayerID, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plasma[id]; !ok {
		return
	}
	s.plasma[id] += amount
}

func (s *Session) IncomeRate(id PlayerID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.income[id]
}

// ApplyIncomeRate sets the per-second income of every participant.
func (s *Session) ApplyIncomeRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.participants {
		s.income[id] = rate
	}
}

// Score returns the score of id and whether the player has an economy entry
// in the current match.
func (s *Session) Score(id PlayerID) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.score[id]
	return v, ok
}

// SetScore stores a score for a player with an economy entry, flooring at zero.
func (s *Session) SetScore(id PlayerID, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.score[id]; !ok {
		return
	}
	if value < 0 {
		value = 0
	}
	s.score[id] = value
}

func (s *Session) MapSize() (option.MapSize, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapSize, s.hasMapSize
}

func (s *Session) SetMapSize(m option.MapSize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapSize, s.hasMapSize = m, true
}

func (s *Session) Income() (option.Income, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.incomeOpt, s.hasIncome
}

func (s *Session) SetIncome(i option.Income) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomeOpt, s.hasIncome = i, true
}

func (s *Session) GameMode() (option.GameMode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameMode, s.hasGameMode
}

func (s *Session) SetGameMode(g option.GameMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameMode, s.hasGameMode = g, true
}

func (s *Session) RemainingTicks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remainingTicks
}

func (s *Session) SetRemainingTicks(ticks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticks < 0 {
		ticks = 0
	}
	s.remainingTicks = ticks
}

// DecrementRemaining counts one tick down, never below zero, and returns
// the ticks left.
func (s *Session) DecrementRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remainingTicks > 0 {
		s.remainingTicks--
	}
	return s.remainingTicks
}

func (s *Session) Arena() (Arena, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.arena == nil {
		return Arena{}, false
	}
	return *s.arena, true
}

func (s *Session) SetArena(a Arena) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arena = &a
}

func (s *Session) ClearArena() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arena = nil
}

// Standings lists every player with an economy entry, highest score first.
func (s *Session) Standings() []Standing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	standings := make([]Standing, 0, len(s.score))
	for id, score := range s.score {
		standings = append(standings, Standing{
			ID:     id,
			Score:  score,
			Plasma: s.plasma[id],
			Income: s.income[id],
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].ID.String() < standings[j].ID.String()
	})
	return standings
}
