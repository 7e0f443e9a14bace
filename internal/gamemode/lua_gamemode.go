package gamemode

import (
	"fmt"
	"log/slog"

	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/internal/vote"
	"github.com/phasestarra7/GroundZero/pkg/lua"
)

// Namer resolves player ids to the names scripts see.
type Namer interface {
	Name(id session.PlayerID) string
}

// LuaGameMode forwards callbacks to optional global functions of a script:
// on_phase, on_vote, on_vote_resolved, on_match_start, on_kill, on_death,
// on_idle_warning, on_idle_penalty and on_match_end. A failing hook is
// logged and never interrupts the match.
type LuaGameMode struct {
	vm     *lua.VM
	name   string
	names  Namer
	logger *slog.Logger
}

// NewLuaGameMode loads the script at path.
func NewLuaGameMode(path string, api *lua.GameAPI, names Namer, logger *slog.Logger) (*LuaGameMode, error) {
	return load(func(vm *lua.VM) error { return vm.LoadFile(path) }, api, names, logger)
}

// NewLuaGameModeFromString loads script source directly.
func NewLuaGameModeFromString(code string, api *lua.GameAPI, names Namer, logger *slog.Logger) (*LuaGameMode, error) {
	return load(func(vm *lua.VM) error { return vm.LoadString(code) }, api, names, logger)
}

func load(loader func(*lua.VM) error, api *lua.GameAPI, names Namer, logger *slog.Logger) (*LuaGameMode, error) {
	if logger == nil {
		logger = slog.Default()
	}
	vm := lua.NewVM()
	if api != nil {
		api.RegisterFunctions(vm)
	}

	if err := loader(vm); err != nil {
		return nil, fmt.Errorf("failed to load gamemode script: %w", err)
	}

	name, err := vm.GetGlobalString("name")
	if err != nil {
		name = "lua_gamemode"
	}

	gm := &LuaGameMode{
		vm:     vm,
		name:   name,
		names:  names,
		logger: logger,
	}

	if vm.HasFunction("on_init") {
		if err := vm.CallFunction("on_init"); err != nil {
			return nil, fmt.Errorf("failed to call on_init: %w", err)
		}
	}
	return gm, nil
}

func (gm *LuaGameMode) Name() string {
	return gm.name
}

func (gm *LuaGameMode) call(hook string, args ...any) {
	if !gm.vm.HasFunction(hook) {
		return
	}
	if err := gm.vm.CallFunction(hook, args...); err != nil {
		gm.logger.Error("lua hook error", "gamemode", gm.name, "hook", hook, "error", err)
	}
}

func (gm *LuaGameMode) nameOf(id session.PlayerID) string {
	if gm.names == nil {
		return id.String()
	}
	return gm.names.Name(id)
}

func (gm *LuaGameMode) OnPhaseChange(from, to session.Phase) {
	gm.call("on_phase", from.String(), to.String())
}

func (gm *LuaGameMode) OnVoteCast(kind vote.Kind, voter session.PlayerID, key string) {
	gm.call("on_vote", kind.String(), gm.nameOf(voter), key)
}

func (gm *LuaGameMode) OnVoteResolved(kind vote.Kind, key string, ties int) {
	gm.call("on_vote_resolved", kind.String(), key, ties)
}

func (gm *LuaGameMode) OnMatchStart(participants []session.PlayerID) {
	names := make([]string, len(participants))
	for i, id := range participants {
		names[i] = gm.nameOf(id)
	}
	gm.call("on_match_start", names)
}

func (gm *LuaGameMode) OnKill(attacker, victim session.PlayerID, gain, loss float64) {
	gm.call("on_kill", gm.nameOf(attacker), gm.nameOf(victim), gain, loss)
}

func (gm *LuaGameMode) OnDeath(victim session.PlayerID, loss float64) {
	gm.call("on_death", gm.nameOf(victim), loss)
}

func (gm *LuaGameMode) OnIdleWarning(id session.PlayerID) {
	gm.call("on_idle_warning", gm.nameOf(id))
}

func (gm *LuaGameMode) OnIdlePenalty(id session.PlayerID, step int, burn float64) {
	gm.call("on_idle_penalty", gm.nameOf(id), step, burn)
}

func (gm *LuaGameMode) OnMatchEnd(standings []session.Standing) {
	rows := make([]lua.Table, len(standings))
	for i, s := range standings {
		rows[i] = lua.Table{
			"rank":   i + 1,
			"name":   gm.nameOf(s.ID),
			"score":  s.Score,
			"plasma": s.Plasma,
		}
	}
	gm.call("on_match_end", rows)
}
