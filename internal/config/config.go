package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Match    MatchConfig    `toml:"match"`
	Data     DataConfig     `toml:"data"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Name      string        `toml:"name"`
	TickRate  time.Duration `toml:"tick_rate"`
	InboxSize int           `toml:"inbox_size"`
	MaxEvents int           `toml:"max_events_per_tick"` // membership events applied per tick
	Locale    string        `toml:"locale"`              // BCP 47 tag for operator text
	StartTime int64         `toml:"-"`                   // set at boot, not from config
}

// MatchConfig holds the tunables of the territory engine.
type MatchConfig struct {
	CaptureRequirement     float64       `toml:"capture_requirement"` // raw pressure needed to control a zone
	SpawnCooldown          time.Duration `toml:"spawn_cooldown"`
	MatchDuration          time.Duration `toml:"match_duration"`
	ZoneEvaluationInterval time.Duration `toml:"zone_evaluation_interval"`
	PlayerSweepInterval    time.Duration `toml:"player_sweep_interval"`
	TeardownDelay          time.Duration `toml:"teardown_delay"`   // how long a team stays dying
	TeardownStagger        time.Duration `toml:"teardown_stagger"` // max random delay per structure, 0 = immediate
	LeaderboardInterval    time.Duration `toml:"leaderboard_interval"`
	RestartDelay           time.Duration `toml:"restart_delay"` // pause between a concluded match and the next
	Generator              string        `toml:"generator"`
	Seed                   int64         `toml:"seed"`      // 0 = time based
	TeamPool               int           `toml:"team_pool"` // number of playable teams
}

type DataConfig struct {
	Blocks     string `toml:"blocks"`
	BaseSchema string `toml:"base_schematic"`
	LayoutsDir string `toml:"layouts_dir"`
	ScriptsDir string `toml:"scripts_dir"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables persistence
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Match.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "hexed",
			TickRate:  100 * time.Millisecond,
			InboxSize: 256,
			MaxEvents: 64,
			Locale:    "en",
		},
		Match: DefaultMatch(),
		Data: DataConfig{
			Blocks:     "data/yaml/blocks.yaml",
			BaseSchema: "data/yaml/base.yaml",
			LayoutsDir: "data/yaml/layouts",
			ScriptsDir: "scripts",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func DefaultMatch() MatchConfig {
	return MatchConfig{
		CaptureRequirement:     210,
		SpawnCooldown:          6 * time.Second,
		MatchDuration:          90 * time.Minute,
		ZoneEvaluationInterval: 2 * time.Second,
		PlayerSweepInterval:    time.Second,
		TeardownDelay:          8 * time.Second,
		TeardownStagger:        2 * time.Second,
		LeaderboardInterval:    5 * time.Minute,
		RestartDelay:           10 * time.Second,
		Generator:              "anuke",
		TeamPool:               16,
	}
}

// Validate rejects settings the engine cannot run with.
func (m MatchConfig) Validate() error {
	var errs []error
	if m.CaptureRequirement <= 0 {
		errs = append(errs, fmt.Errorf("capture_requirement must be positive, got %v", m.CaptureRequirement))
	}
	for name, d := range map[string]time.Duration{
		"match_duration":           m.MatchDuration,
		"zone_evaluation_interval": m.ZoneEvaluationInterval,
		"player_sweep_interval":    m.PlayerSweepInterval,
		"teardown_delay":           m.TeardownDelay,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if m.SpawnCooldown < 0 {
		errs = append(errs, fmt.Errorf("spawn_cooldown must not be negative, got %s", m.SpawnCooldown))
	}
	if m.RestartDelay < 0 {
		errs = append(errs, fmt.Errorf("restart_delay must not be negative, got %s", m.RestartDelay))
	}
	if m.TeardownStagger < 0 || m.TeardownStagger > m.TeardownDelay {
		errs = append(errs, fmt.Errorf("teardown_stagger must be within [0, teardown_delay], got %s", m.TeardownStagger))
	}
	if m.TeamPool < 1 || m.TeamPool > 255 {
		errs = append(errs, fmt.Errorf("team_pool must be within [1, 255], got %d", m.TeamPool))
	}
	return errors.Join(errs...)
}
