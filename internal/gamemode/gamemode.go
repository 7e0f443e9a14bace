// Package gamemode hosts the scripted extension point of a match: a
// GameMode receives every lifecycle callback the orchestrator emits.
package gamemode

import (
	"github.com/phasestarra7/GroundZero/internal/callbacks"
)

type GameMode interface {
	callbacks.Callbacks
	Name() string
}

// BaseGameMode ignores every callback.
type BaseGameMode struct {
	callbacks.DefaultCallbacks
	name string
}

func NewBaseGameMode(name string) *BaseGameMode {
	if name == "" {
		name = "standard"
	}
	return &BaseGameMode{name: name}
}

func (b *BaseGameMode) Name() string {
	return b.name
}
