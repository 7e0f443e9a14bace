// Package host declares the collaborators the match core drives but does not
// implement: world manipulation, vote menus and message delivery.
package host

import (
	"errors"

	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/internal/vote"
)

//go:generate go tool mockgen -destination=./mocks/environment_mock.go -package=mocks . Environment

var (
	ErrNoParticipants = errors.New("no participants")
	ErrMixedWorlds    = errors.New("players are in different worlds")
	ErrUnknownPlayer  = errors.New("player location unknown")
)

// Environment manipulates the host world.
type Environment interface {
	// Capture finds a single context shared by players, or fails when they
	// are not in a consistent environment.
	Capture(players []session.PlayerID) (session.Arena, error)
	// Prepare applies arena bounds of the given side length.
	Prepare(arena session.Arena, size int)
	// Place moves a participant into the arena.
	Place(id session.PlayerID, arena session.Arena, size int)
	// Restore undoes everything Prepare changed.
	Restore(arena session.Arena)
}

type MenuItem struct {
	Key   string
	Label string
	Slot  int
	Votes int
}

// Menu renders the vote selection UI.
type Menu interface {
	Open(id session.PlayerID, kind vote.Kind, items []MenuItem)
	Update(kind vote.Kind, items []MenuItem)
	Retain(kind vote.Kind, keys []string)
	Highlight(kind vote.Kind, key string)
	CloseAll()
}

type Cue int

const (
	CueNone Cue = iota
	CueClick
	CueBell
	CueLevelUp
	CueError
)

func (c Cue) String() string {
	switch c {
	case CueClick:
		return "click"
	case CueBell:
		return "bell"
	case CueLevelUp:
		return "levelup"
	case CueError:
		return "error"
	default:
		return "none"
	}
}

// Notifier delivers text to players.
type Notifier interface {
	Broadcast(to []session.PlayerID, message string, cue Cue)
	Message(to session.PlayerID, message string, isError bool)
}
