// Package option defines the closed sets of choices players vote on before a
// match: arena size, income multiplier and game mode.
package option

import (
	"fmt"
	"strings"
)

// Choice is implemented by every option type. Key is the stable token used
// by adapters, Label the display text and Slot the menu position.
type Choice interface {
	comparable
	Key() string
	Label() string
	Slot() int
}

type MapSize int

const (
	MapSize50 MapSize = iota
	MapSize100
	MapSize200
	MapSize400
)

var mapSizes = [...]struct {
	size int
	slot int
}{
	MapSize50:  {50, 10},
	MapSize100: {100, 12},
	MapSize200: {200, 14},
	MapSize400: {400, 16},
}

func MapSizes() []MapSize {
	return []MapSize{MapSize50, MapSize100, MapSize200, MapSize400}
}

func (m MapSize) valid() bool { return m >= 0 && int(m) < len(mapSizes) }

// Size is the side length of the square arena in blocks.
func (m MapSize) Size() int {
	if !m.valid() {
		return 0
	}
	return mapSizes[m].size
}

func (m MapSize) Key() string   { return fmt.Sprintf("%d", m.Size()) }
func (m MapSize) Label() string { return fmt.Sprintf("%d×%d", m.Size(), m.Size()) }
func (m MapSize) String() string {
	if !m.valid() {
		return "unknown"
	}
	return m.Label()
}

func (m MapSize) Slot() int {
	if !m.valid() {
		return -1
	}
	return mapSizes[m].slot
}

func ParseMapSize(key string) (MapSize, error) {
	for _, m := range MapSizes() {
		if m.Key() == normalize(key) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown map size: %q", key)
}

type Income int

const (
	IncomeHalf Income = iota
	IncomeNormal
	IncomeDouble
	IncomeQuadruple
)

var incomes = [...]struct {
	key        string
	multiplier float64
	slot       int
}{
	IncomeHalf:      {"0.5", 0.5, 10},
	IncomeNormal:    {"1", 1.0, 12},
	IncomeDouble:    {"2", 2.0, 14},
	IncomeQuadruple: {"4", 4.0, 16},
}

func Incomes() []Income {
	return []Income{IncomeHalf, IncomeNormal, IncomeDouble, IncomeQuadruple}
}

func (i Income) valid() bool { return i >= 0 && int(i) < len(incomes) }

func (i Income) Multiplier() float64 {
	if !i.valid() {
		return 0
	}
	return incomes[i].multiplier
}

func (i Income) Key() string {
	if !i.valid() {
		return ""
	}
	return incomes[i].key
}

func (i Income) Label() string { return fmt.Sprintf("×%.1f", i.Multiplier()) }

func (i Income) String() string {
	if !i.valid() {
		return "unknown"
	}
	return i.Label()
}

func (i Income) Slot() int {
	if !i.valid() {
		return -1
	}
	return incomes[i].slot
}

func ParseIncome(key string) (Income, error) {
	k := strings.TrimPrefix(normalize(key), "x")
	k = strings.TrimSuffix(strings.TrimSuffix(k, ".0"), ".00")
	for _, i := range Incomes() {
		if i.Key() == k {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown income multiplier: %q", key)
}

type GameMode int

const (
	GameModeStandard GameMode = iota
	GameModeHardcore
)

var gameModes = [...]struct {
	key   string
	label string
	slot  int
	scale float64
}{
	GameModeStandard: {"standard", "Standard", 12, 1.0},
	GameModeHardcore: {"hardcore", "Hardcore", 14, 2.0},
}

func GameModes() []GameMode {
	return []GameMode{GameModeStandard, GameModeHardcore}
}

func (g GameMode) valid() bool { return g >= 0 && int(g) < len(gameModes) }

func (g GameMode) Key() string {
	if !g.valid() {
		return ""
	}
	return gameModes[g].key
}

func (g GameMode) Label() string {
	if !g.valid() {
		return "Unknown"
	}
	return gameModes[g].label
}

func (g GameMode) String() string { return g.Label() }

func (g GameMode) Slot() int {
	if !g.valid() {
		return -1
	}
	return gameModes[g].slot
}

// PenaltyScale multiplies death penalty percentages in this mode.
func (g GameMode) PenaltyScale() float64 {
	if !g.valid() {
		return 1
	}
	return gameModes[g].scale
}

func ParseGameMode(key string) (GameMode, error) {
	for _, g := range GameModes() {
		if g.Key() == normalize(key) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown game mode: %q", key)
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
