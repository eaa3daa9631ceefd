// Package config loads simulator settings from an optional YAML file,
// then environment variables, and validates the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/mimic/pkg/simulation"
	"github.com/dd0wney/mimic/pkg/topology"
	"github.com/dd0wney/mimic/pkg/validation"
)

// DefaultTargets are the target systems offered by the terminal UI.
var DefaultTargets = []string{
	"GOV-SECLAB-MAINFRAME",
	"NSA-DATANODE-07",
	"DARPA-RESEARCH-NET",
	"FED-INTELLIGENCE-GRID",
}

// Config is the full simulator configuration.
type Config struct {
	Nodes    int      `yaml:"nodes"    env:"MIMIC_NODES"    validate:"min=1,max=500"`
	Seed     uint64   `yaml:"seed"     env:"MIMIC_SEED"`
	Target   string   `yaml:"target"   env:"MIMIC_TARGET"   validate:"required"`
	Targets  []string `yaml:"targets"  env:"MIMIC_TARGETS"  envSeparator:"," validate:"min=1,dive,required"`
	Speed    float64  `yaml:"speed"    env:"MIMIC_SPEED"    validate:"gt=0,lte=100"`
	Headless bool     `yaml:"headless" env:"MIMIC_HEADLESS"`

	Canvas     Canvas     `yaml:"canvas"`
	Log        Log        `yaml:"log"`
	Simulation Simulation `yaml:"simulation"`
	Pacing     Pacing     `yaml:"pacing"`
}

// Canvas is the layout area nodes are positioned in.
type Canvas struct {
	Width  int `yaml:"width"  env:"MIMIC_CANVAS_WIDTH"  validate:"min=40"`
	Height int `yaml:"height" env:"MIMIC_CANVAS_HEIGHT" validate:"min=40"`
}

// Log configures the structured logger.
type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL"      validate:"oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	File  string `yaml:"file"  env:"MIMIC_LOG_FILE"`
}

// Simulation tunes the probabilistic model.
type Simulation struct {
	InfectionChance float64 `yaml:"infection_chance" env:"MIMIC_INFECTION_CHANCE" validate:"gte=0,lte=1"`
	DetectionChance float64 `yaml:"detection_chance" env:"MIMIC_DETECTION_CHANCE" validate:"gte=0,lte=1"`
	DiscoveryChance float64 `yaml:"discovery_chance" env:"MIMIC_DISCOVERY_CHANCE" validate:"gte=0,lte=1"`
	MaxTargets      int     `yaml:"max_targets"      env:"MIMIC_MAX_TARGETS"      validate:"gte=0,lte=50"`
	TargetSlack     int     `yaml:"target_slack"     env:"MIMIC_TARGET_SLACK"     validate:"gte=1,lte=50"`
	MaxAttempts     int     `yaml:"max_attempts"     env:"MIMIC_MAX_ATTEMPTS"     validate:"min=1,max=1000"`
}

// Pacing sets the base delays of each procedure. Speed divides them.
type Pacing struct {
	ScanTick         time.Duration `yaml:"scan_tick"         env:"MIMIC_SCAN_TICK"`
	InfiltrationTick time.Duration `yaml:"infiltration_tick" env:"MIMIC_INFILTRATION_TICK"`
	AnalysisMin      time.Duration `yaml:"analysis_min"      env:"MIMIC_ANALYSIS_MIN"`
	AnalysisMax      time.Duration `yaml:"analysis_max"      env:"MIMIC_ANALYSIS_MAX"`
	ExfiltrationMin  time.Duration `yaml:"exfiltration_min"  env:"MIMIC_EXFILTRATION_MIN"`
	ExfiltrationMax  time.Duration `yaml:"exfiltration_max"  env:"MIMIC_EXFILTRATION_MAX"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := simulation.DefaultParams()
	return &Config{
		Nodes:   topology.DefaultNodeCount,
		Target:  simulation.DefaultTarget,
		Targets: slices.Clone(DefaultTargets),
		Speed:   1,
		Canvas: Canvas{
			Width:  topology.DefaultBounds.Width,
			Height: topology.DefaultBounds.Height,
		},
		Log: Log{Level: "info"},
		Simulation: Simulation{
			InfectionChance: p.InfectionChance,
			DetectionChance: p.DetectionChance,
			DiscoveryChance: p.DiscoveryChance,
			MaxTargets:      p.MaxTargets,
			TargetSlack:     p.TargetSlack,
			MaxAttempts:     p.MaxAttempts,
		},
		Pacing: Pacing{
			ScanTick:         p.Timing.ScanTick,
			InfiltrationTick: p.Timing.InfiltrationTick,
			AnalysisMin:      p.Timing.AnalysisMin,
			AnalysisMax:      p.Timing.AnalysisMax,
			ExfiltrationMin:  p.Timing.ExfiltrationMin,
			ExfiltrationMax:  p.Timing.ExfiltrationMax,
		},
	}
}

// Load builds a configuration from defaults, the YAML file at path (if
// path is non-empty) and the environment, in that order, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := cfg.decodeYAML(f); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data over the defaults without consulting the
// environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decodeYAML(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, cfg.Validate()
}

func (c *Config) decodeYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Normalize makes sure the selected target is one of the offered targets.
func (c *Config) Normalize() {
	if c.Target != "" && !slices.Contains(c.Targets, c.Target) {
		c.Targets = append([]string{c.Target}, c.Targets...)
	}
}

// Validate checks struct tags first, then cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	err := validation.NewConfigValidator("config").
		OneOf("target", c.Target, c.Targets).
		When(c.Log.File != "", func(cv *validation.ConfigValidator) {
			cv.Custom("log.file", func() error {
				if info, err := os.Stat(c.Log.File); err == nil && info.IsDir() {
					return fmt.Errorf("%s is a directory", c.Log.File)
				}
				return nil
			})
		}).
		Custom("simulation", c.Params().Validate).
		Validate()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Bounds returns the canvas as topology bounds.
func (c *Config) Bounds() topology.Bounds {
	return topology.Bounds{Width: c.Canvas.Width, Height: c.Canvas.Height}
}

// Params returns simulation parameters for the configured model and speed.
func (c *Config) Params() simulation.Params {
	p := simulation.DefaultParams()
	p.Target = c.Target
	p.InfectionChance = c.Simulation.InfectionChance
	p.DetectionChance = c.Simulation.DetectionChance
	p.DiscoveryChance = c.Simulation.DiscoveryChance
	p.MaxTargets = c.Simulation.MaxTargets
	p.TargetSlack = c.Simulation.TargetSlack
	p.MaxAttempts = c.Simulation.MaxAttempts
	p.Timing.ScanTick = c.Pacing.ScanTick
	p.Timing.InfiltrationTick = c.Pacing.InfiltrationTick
	p.Timing.AnalysisMin = c.Pacing.AnalysisMin
	p.Timing.AnalysisMax = c.Pacing.AnalysisMax
	p.Timing.ExfiltrationMin = c.Pacing.ExfiltrationMin
	p.Timing.ExfiltrationMax = c.Pacing.ExfiltrationMax
	p.Timing = p.Timing.Scaled(c.Speed)
	return p
}
