// Package console is a text-mode host for the match core. It keeps player
// locations in memory and prints world changes, menus and messages to a
// writer, which makes a full match playable from a terminal.
package console

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/phasestarra7/GroundZero/internal/host"
	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/internal/vote"
)

type Location struct {
	World string
	X, Z  float64
}

// Namer resolves player ids for output.
type Namer interface {
	Name(id session.PlayerID) string
}

// World implements host.Environment, host.Menu and host.Notifier.
type World struct {
	mu        sync.Mutex
	out       io.Writer
	names     Namer
	rng       *rand.Rand
	locations map[session.PlayerID]Location
	menus     map[session.PlayerID]vote.Kind
	border    int
}

var (
	_ host.Environment = (*World)(nil)
	_ host.Menu        = (*World)(nil)
	_ host.Notifier    = (*World)(nil)
)

func NewWorld(out io.Writer, names Namer, rng *rand.Rand) *World {
	return &World{
		out:       out,
		names:     names,
		rng:       rng,
		locations: make(map[session.PlayerID]Location),
		menus:     make(map[session.PlayerID]vote.Kind),
	}
}

func (w *World) printf(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

func (w *World) SetLocation(id session.PlayerID, loc Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.locations[id] = loc
}

func (w *World) Location(id session.PlayerID) (Location, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, ok := w.locations[id]
	return loc, ok
}

func (w *World) Forget(id session.PlayerID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.locations, id)
	delete(w.menus, id)
}

// BorderSize is the side length of the active arena border, 0 when none.
func (w *World) BorderSize() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.border
}

// Capture requires every player to stand in the same world. The arena is
// centred on their mean position and remembers where everyone stood.
func (w *World) Capture(players []session.PlayerID) (session.Arena, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(players) == 0 {
		return session.Arena{}, host.ErrNoParticipants
	}

	saved := make(map[session.PlayerID]Location, len(players))
	var world string
	var sumX, sumZ float64
	for i, id := range players {
		loc, ok := w.locations[id]
		if !ok {
			return session.Arena{}, fmt.Errorf("%w: %s", host.ErrUnknownPlayer, w.names.Name(id))
		}
		if i == 0 {
			world = loc.World
		} else if loc.World != world {
			return session.Arena{}, host.ErrMixedWorlds
		}
		saved[id] = loc
		sumX += loc.X
		sumZ += loc.Z
	}

	n := float64(len(players))
	return session.Arena{
		World:   world,
		CenterX: sumX / n,
		CenterZ: sumZ / n,
		Restore: saved,
	}, nil
}

func (w *World) Prepare(arena session.Arena, size int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.border = size
	w.printf("[world] %s border %d×%d centred at (%.1f, %.1f)", arena.World, size, size, arena.CenterX, arena.CenterZ)
}

// Place drops id at a random point inside 95% of the border.
func (w *World) Place(id session.PlayerID, arena session.Arena, size int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	half := float64(size) / 2 * 0.95
	loc := Location{
		World: arena.World,
		X:     arena.CenterX + (w.rng.Float64()*2-1)*half,
		Z:     arena.CenterZ + (w.rng.Float64()*2-1)*half,
	}
	w.locations[id] = loc
	w.printf("[world] %s placed at (%.1f, %.1f)", w.names.Name(id), loc.X, loc.Z)
}

func (w *World) Restore(arena session.Arena) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.border = 0
	if saved, ok := arena.Restore.(map[session.PlayerID]Location); ok {
		for id, loc := range saved {
			if _, known := w.locations[id]; known {
				w.locations[id] = loc
			}
		}
	}
	w.printf("[world] %s restored", arena.World)
}

func formatItems(items []host.MenuItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s=%s(%d)", it.Key, it.Label, it.Votes)
	}
	return strings.Join(parts, " ")
}

func (w *World) Open(id session.PlayerID, kind vote.Kind, items []host.MenuItem) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.menus[id] = kind
	w.printf("[menu %s] %s: %s", w.names.Name(id), kind, formatItems(items))
}

func (w *World) Update(kind vote.Kind, items []host.MenuItem) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.printf("[menu] %s: %s", kind, formatItems(items))
}

func (w *World) Retain(kind vote.Kind, keys []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.printf("[menu] %s finalists: %s", kind, strings.Join(keys, ", "))
}

func (w *World) Highlight(kind vote.Kind, key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.printf("[menu] %s winner: %s", kind, key)
}

func (w *World) CloseAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.menus) == 0 {
		return
	}
	w.menus = make(map[session.PlayerID]vote.Kind)
	w.printf("[menu] closed")
}

func (w *World) Broadcast(to []session.PlayerID, message string, cue host.Cue) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cue == host.CueNone {
		w.printf("%s", message)
		return
	}
	w.printf("%s [%s]", message, cue)
}

func (w *World) Message(to session.PlayerID, message string, isError bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	target := "console"
	if to != uuid.Nil {
		target = w.names.Name(to)
	}
	if isError {
		w.printf("[to %s] error: %s", target, message)
		return
	}
	w.printf("[to %s] %s", target, message)
}
