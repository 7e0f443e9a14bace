package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Match     MatchConfig     `toml:"match"`
	Countdown CountdownConfig `toml:"countdown"`
	Voting    VotingConfig    `toml:"voting"`
	Combat    CombatConfig    `toml:"combat"`
	Idle      IdleConfig      `toml:"idle"`
}

type ServerConfig struct {
	Name     string `toml:"name"`
	TickRate int    `toml:"tick_rate"`
	Language string `toml:"language"`

	// logging configuration
	LogToFile bool `toml:"log_to_file"`

	// empty disables the endpoint
	MetricsAddr string `toml:"metrics_addr"`

	GamemodeScript string `toml:"gamemode_script"`
}

type MatchConfig struct {
	DurationSeconds     int     `toml:"duration_seconds"`
	BasePlasma          float64 `toml:"base_plasma"`
	BaseIncomePerSecond float64 `toml:"base_income_per_second"`
	BaseScore           float64 `toml:"base_score"`
	ResetDelaySeconds   int     `toml:"reset_delay_seconds"`
}

type CountdownConfig struct {
	PreVoteSeconds  int `toml:"pre_vote_seconds"`
	PreStartSeconds int `toml:"pre_start_seconds"`
}

type VotingConfig struct {
	WindowSeconds       int `toml:"window_seconds"`
	ReminderSeconds     int `toml:"reminder_seconds"`
	ResolveDelaySeconds int `toml:"resolve_delay_seconds"`
	AdvanceDelaySeconds int `toml:"advance_delay_seconds"`
}

type CombatConfig struct {
	WindowSeconds                int     `toml:"window_seconds"`
	KillStealPercent             float64 `toml:"kill_steal_percent"`
	DeathPenaltyPercent          float64 `toml:"death_penalty_percent"`
	NonPlayerDeathPenaltyPercent float64 `toml:"non_player_death_penalty_percent"`
	StealBase                    string  `toml:"steal_base"`
}

type IdleConfig struct {
	WarnSeconds            int     `toml:"warn_seconds"`
	FirstPenaltySeconds    int     `toml:"first_penalty_seconds"`
	PenaltyIntervalSeconds int     `toml:"penalty_interval_seconds"`
	PenaltyPercent         float64 `toml:"penalty_percent"`
	MaxStacks              int     `toml:"max_stacks"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "GroundZero",
			TickRate: 20,
			Language: "en",
		},
		Match: MatchConfig{
			DurationSeconds:     20 * 60,
			BasePlasma:          0,
			BaseIncomePerSecond: 10,
			BaseScore:           100,
			ResetDelaySeconds:   5,
		},
		Countdown: CountdownConfig{
			PreVoteSeconds:  5,
			PreStartSeconds: 5,
		},
		Voting: VotingConfig{
			WindowSeconds:       10,
			ReminderSeconds:     3,
			ResolveDelaySeconds: 2,
			AdvanceDelaySeconds: 3,
		},
		Combat: CombatConfig{
			WindowSeconds:                10,
			KillStealPercent:             0.10,
			DeathPenaltyPercent:          0.10,
			NonPlayerDeathPenaltyPercent: 0.10,
			StealBase:                    StealFromVictim.String(),
		},
		Idle: IdleConfig{
			WarnSeconds:            90,
			FirstPenaltySeconds:    120,
			PenaltyIntervalSeconds: 60,
			PenaltyPercent:         0.05,
			MaxStacks:              3,
		},
	}
}

// LoadConfig decodes path on top of Default, so keys missing from the file
// keep their default value.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Server.Name == "" {
		config.Server.Name = "GroundZero"
	}

	if config.Server.TickRate == 0 {
		config.Server.TickRate = 20
	}

	if config.Server.Language == "" {
		config.Server.Language = "en"
	}

	if config.Combat.StealBase == "" {
		config.Combat.StealBase = StealFromVictim.String()
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Server.TickRate <= 0 || c.Server.TickRate > 1000 {
		return fmt.Errorf("tick_rate must be between 1 and 1000, got %d", c.Server.TickRate)
	}

	if c.Match.DurationSeconds <= 0 {
		return fmt.Errorf("match duration must be positive")
	}

	if c.Match.BaseScore < 0 || c.Match.BasePlasma < 0 || c.Match.BaseIncomePerSecond < 0 {
		return fmt.Errorf("match base values cannot be negative")
	}

	if c.Countdown.PreVoteSeconds < 0 || c.Countdown.PreStartSeconds < 0 {
		return fmt.Errorf("countdown seconds cannot be negative")
	}

	if c.Voting.WindowSeconds <= 0 {
		return fmt.Errorf("vote window must be positive")
	}

	if c.Voting.ReminderSeconds < 0 || c.Voting.ReminderSeconds >= c.Voting.WindowSeconds {
		return fmt.Errorf("reminder_seconds must be between 0 and window_seconds-1")
	}

	if c.Voting.ResolveDelaySeconds < 0 || c.Voting.AdvanceDelaySeconds < 0 {
		return fmt.Errorf("vote delays cannot be negative")
	}

	if c.Combat.WindowSeconds <= 0 {
		return fmt.Errorf("combat window must be positive")
	}

	for name, p := range map[string]float64{
		"kill_steal_percent":               c.Combat.KillStealPercent,
		"death_penalty_percent":            c.Combat.DeathPenaltyPercent,
		"non_player_death_penalty_percent": c.Combat.NonPlayerDeathPenaltyPercent,
		"idle.penalty_percent":             c.Idle.PenaltyPercent,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, p)
		}
	}

	if _, err := ParseStealBase(c.Combat.StealBase); err != nil {
		return err
	}

	if c.Idle.WarnSeconds < 0 {
		return fmt.Errorf("idle warn_seconds cannot be negative")
	}

	if c.Idle.FirstPenaltySeconds < c.Idle.WarnSeconds {
		return fmt.Errorf("idle first_penalty_seconds must not be earlier than warn_seconds")
	}

	if c.Idle.PenaltyIntervalSeconds <= 0 {
		return fmt.Errorf("idle penalty_interval_seconds must be positive")
	}

	if c.Idle.MaxStacks < 1 {
		return fmt.Errorf("idle max_stacks must be at least 1")
	}

	return nil
}

// Ticks converts a duration in seconds to scheduler ticks.
func (c *Config) Ticks(seconds int) int {
	return seconds * c.Server.TickRate
}

func (c *Config) MatchDurationTicks() int {
	return c.Ticks(c.Match.DurationSeconds)
}

func (c *Config) CombatWindowTicks() int {
	return c.Ticks(c.Combat.WindowSeconds)
}

type StealBase int

const (
	StealFromVictim StealBase = iota
	StealFromAttacker
)

func (s StealBase) String() string {
	switch s {
	case StealFromVictim:
		return "victim"
	case StealFromAttacker:
		return "attacker"
	default:
		return "unknown"
	}
}

func ParseStealBase(name string) (StealBase, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "victim":
		return StealFromVictim, nil
	case "attacker":
		return StealFromAttacker, nil
	default:
		return 0, fmt.Errorf("invalid steal_base: %q", name)
	}
}
