// Package config provides configuration loading and access for the game.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all game configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Maze       MazeConfig       `yaml:"maze"`
	Entity     EntityConfig     `yaml:"entity"`
	Score      ScoreConfig      `yaml:"score"`
	Power      PowerConfig      `yaml:"power"`
	Learning   LearningConfig   `yaml:"learning"`
	Reward     RewardConfig     `yaml:"reward"`
	Heuristics HeuristicsConfig `yaml:"heuristics"`
	Ghosts     []GhostConfig    `yaml:"ghosts"`
	Evolution  EvolutionConfig  `yaml:"evolution"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	CellSize  int `yaml:"cell_size"` // pixels per maze cell
	HUDHeight int `yaml:"hud_height"`
	TargetFPS int `yaml:"target_fps"`
}

// SpawnPoint is an explicit grid coordinate override.
type SpawnPoint struct {
	Col int `yaml:"col"`
	Row int `yaml:"row"`
}

// MazeConfig holds the maze layout and optional spawn overrides.
// Layout rows use: '#' wall, '.' pellet, 'o' power pellet, ' ' open,
// '-' den door, 'g' den interior (ghost spawn), 'S' learner spawn.
type MazeConfig struct {
	Layout []string `yaml:"layout"`

	// GhostSpawns overrides the den-cell spawn points when non-empty.
	GhostSpawns []SpawnPoint `yaml:"ghost_spawns"`
}

// EntityConfig holds movement and contact parameters.
// Speeds are in cells per tick; positions are in cell units.
type EntityConfig struct {
	LearnerSpeed     float64 `yaml:"learner_speed"`
	GhostSpeed       float64 `yaml:"ghost_speed"`
	VulnerableFactor float64 `yaml:"vulnerable_factor"` // ghost speed multiplier while vulnerable
	ContactRadius    float64 `yaml:"contact_radius"`    // sum of nominal radii, in cells
	BlockedTickLimit int     `yaml:"blocked_tick_limit"`
}

// ScoreConfig holds per-event score values.
type ScoreConfig struct {
	Pellet      int `yaml:"pellet"`
	PowerPellet int `yaml:"power_pellet"`
	GhostBounty int `yaml:"ghost_bounty"`
}

// PowerConfig holds power-mode parameters.
type PowerConfig struct {
	DurationTicks int `yaml:"duration_ticks"`
}

// LearningConfig holds the tabular learning schedule.
type LearningConfig struct {
	Epsilon      float64 `yaml:"epsilon"`
	EpsilonMin   float64 `yaml:"epsilon_min"`
	EpsilonDecay float64 `yaml:"epsilon_decay"` // multiplicative decay per episode
	Alpha        float64 `yaml:"alpha"`
	Gamma        float64 `yaml:"gamma"`
	ValueClamp   float64 `yaml:"value_clamp"` // absolute bound on stored estimates
}

// RewardConfig holds the reward shaping terms.
type RewardConfig struct {
	ScoreScale     float64 `yaml:"score_scale"`
	SurvivalBonus  float64 `yaml:"survival_bonus"`
	StepCost       float64 `yaml:"step_cost"`
	CapturePenalty float64 `yaml:"capture_penalty"`
	ClearBonus     float64 `yaml:"clear_bonus"`
}

// HeuristicsConfig holds the non-learned direction-scoring weights.
// These are the genes the evolutionary search operates on.
type HeuristicsConfig struct {
	PelletPull float64 `yaml:"pellet_pull"`
	PowerPull  float64 `yaml:"power_pull"`
	GhostAvoid float64 `yaml:"ghost_avoid"`
	HuntPull   float64 `yaml:"hunt_pull"`
	Explore    float64 `yaml:"explore"`
}

// GhostConfig defines one adversary personality.
type GhostConfig struct {
	Name       string  `yaml:"name"`
	Directness float64 `yaml:"directness"` // 0 = wanderer, 1 = direct pursuer
	Lookahead  int     `yaml:"lookahead"`  // cells of straight-line lookahead
	Randomness float64 `yaml:"randomness"` // probability of a random legal turn
}

// EvolutionConfig holds the population-search parameters.
type EvolutionConfig struct {
	Population     int     `yaml:"population"`
	EliteMutants   int     `yaml:"elite_mutants"`
	TournamentBase int     `yaml:"tournament_base"`
	TournamentGrow int     `yaml:"tournament_grow"` // generations per +1 tournament size
	CrossoverBlend float64 `yaml:"crossover_blend"` // probability of blend vs discrete crossover
	MutationRate   float64 `yaml:"mutation_rate"`
	MutationSigma  float64 `yaml:"mutation_sigma"`
	MutationDecay  float64 `yaml:"mutation_decay"` // multiplicative sigma decay per generation
	InjectInitial  float64 `yaml:"inject_initial"` // random individuals in generation 0
	InjectDecay    float64 `yaml:"inject_decay"`   // e-folding generations for injection count
	MaxTicks       int     `yaml:"max_ticks"`      // per-episode tick cap during evaluation
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	LogEvery int `yaml:"log_every"` // episodes between progress log lines
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh config built from the embedded defaults only.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// check rejects parameter values the simulation cannot run with.
// Maze structure is validated separately by maze.Parse.
func (c *Config) check() error {
	if len(c.Maze.Layout) == 0 {
		return fmt.Errorf("config: maze layout is empty")
	}
	if c.Entity.LearnerSpeed <= 0 || c.Entity.LearnerSpeed > 1 {
		return fmt.Errorf("config: learner_speed %v outside (0, 1]", c.Entity.LearnerSpeed)
	}
	if c.Entity.GhostSpeed <= 0 || c.Entity.GhostSpeed > 1 {
		return fmt.Errorf("config: ghost_speed %v outside (0, 1]", c.Entity.GhostSpeed)
	}
	if c.Learning.Gamma < 0 || c.Learning.Gamma >= 1 {
		return fmt.Errorf("config: gamma %v outside [0, 1)", c.Learning.Gamma)
	}
	if c.Learning.Alpha <= 0 || c.Learning.Alpha > 1 {
		return fmt.Errorf("config: alpha %v outside (0, 1]", c.Learning.Alpha)
	}
	if c.Learning.Epsilon < 0 || c.Learning.Epsilon > 1 {
		return fmt.Errorf("config: epsilon %v outside [0, 1]", c.Learning.Epsilon)
	}
	if len(c.Ghosts) == 0 {
		return fmt.Errorf("config: no ghost personalities defined")
	}
	if c.Evolution.Population < 2 {
		return fmt.Errorf("config: evolution population %d below 2", c.Evolution.Population)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
