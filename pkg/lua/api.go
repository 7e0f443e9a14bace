package lua

import (
	"github.com/Shopify/go-lua"

	"github.com/phasestarra7/GroundZero/internal/host"
	"github.com/phasestarra7/GroundZero/internal/notify"
	"github.com/phasestarra7/GroundZero/internal/player"
	"github.com/phasestarra7/GroundZero/internal/session"
)

// GameAPI exposes read access to the running match and message delivery to
// gamemode scripts.
type GameAPI struct {
	sess     *session.Session
	roster   *player.Manager
	announce *notify.Announcer
	tickRate int
}

func NewGameAPI(sess *session.Session, roster *player.Manager, announce *notify.Announcer, tickRate int) *GameAPI {
	if tickRate < 1 {
		tickRate = 1
	}
	return &GameAPI{
		sess:     sess,
		roster:   roster,
		announce: announce,
		tickRate: tickRate,
	}
}

func (api *GameAPI) RegisterFunctions(vm *VM) {
	state := vm.State()

	state.Register("broadcast", api.broadcast)
	state.Register("tell", api.tell)
	state.Register("phase", api.phase)
	state.Register("remaining_ticks", api.remainingTicks)
	state.Register("remaining_seconds", api.remainingSeconds)
	state.Register("score_of", api.scoreOf)
	state.Register("plasma_of", api.plasmaOf)
	state.Register("participants", api.participants)
	state.Register("spectators", api.spectators)
	state.Register("player_count", api.playerCount)
}

func (api *GameAPI) broadcast(state *lua.State) int {
	message, _ := state.ToString(1)
	if api.announce != nil && message != "" {
		api.announce.Broadcast(api.roster.Online(), host.CueNone, "%s", message)
	}
	return 0
}

func (api *GameAPI) tell(state *lua.State) int {
	name, _ := state.ToString(1)
	message, _ := state.ToString(2)

	p, ok := api.roster.Lookup(name)
	if !ok || !p.IsOnline() || api.announce == nil {
		state.PushBoolean(false)
		return 1
	}
	api.announce.Tell(p.ID, "%s", message)
	state.PushBoolean(true)
	return 1
}

func (api *GameAPI) phase(state *lua.State) int {
	state.PushString(api.sess.Phase().String())
	return 1
}

func (api *GameAPI) remainingTicks(state *lua.State) int {
	state.PushInteger(api.sess.RemainingTicks())
	return 1
}

func (api *GameAPI) remainingSeconds(state *lua.State) int {
	state.PushInteger(api.sess.RemainingTicks() / api.tickRate)
	return 1
}

func (api *GameAPI) lookup(state *lua.State) (session.PlayerID, bool) {
	name, _ := state.ToString(1)
	p, ok := api.roster.Lookup(name)
	if !ok {
		return session.PlayerID{}, false
	}
	return p.ID, true
}

func (api *GameAPI) scoreOf(state *lua.State) int {
	id, ok := api.lookup(state)
	if !ok {
		state.PushNil()
		return 1
	}
	score, ok := api.sess.Score(id)
	if !ok {
		state.PushNil()
		return 1
	}
	state.PushNumber(score)
	return 1
}

func (api *GameAPI) plasmaOf(state *lua.State) int {
	id, ok := api.lookup(state)
	if !ok || !api.sess.IsParticipant(id) {
		state.PushNil()
		return 1
	}
	state.PushNumber(api.sess.Plasma(id))
	return 1
}

func (api *GameAPI) playerRow(id session.PlayerID) Table {
	row := Table{
		"name":   api.roster.Name(id),
		"online": api.roster.IsOnline(id),
	}
	if score, ok := api.sess.Score(id); ok {
		row["score"] = score
		row["plasma"] = api.sess.Plasma(id)
		row["income"] = api.sess.IncomeRate(id)
	}
	return row
}

func (api *GameAPI) pushPlayers(state *lua.State, ids []session.PlayerID) {
	rows := make([]Table, len(ids))
	for i, id := range ids {
		rows[i] = api.playerRow(id)
	}
	if err := Push(state, rows); err != nil {
		state.PushNil()
	}
}

func (api *GameAPI) participants(state *lua.State) int {
	api.pushPlayers(state, api.sess.Participants())
	return 1
}

func (api *GameAPI) spectators(state *lua.State) int {
	api.pushPlayers(state, api.sess.Spectators())
	return 1
}

func (api *GameAPI) playerCount(state *lua.State) int {
	state.PushInteger(api.roster.Count())
	return 1
}
