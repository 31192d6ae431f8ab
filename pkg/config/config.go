// Package config loads and validates scoring configuration. Invalid pieces
// of configuration degrade to defaults instead of aborting: a bad weight
// entry reverts that category to its default weight, and a wholly invalid
// override string means no override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/isl-gate/trustcore/pkg/clause"
	"github.com/isl-gate/trustcore/pkg/history"
	"github.com/isl-gate/trustcore/pkg/score"
)

// DefaultShipThreshold is the minimum trust score for a SHIP verdict.
const DefaultShipThreshold = 80

// Config is the resolved scoring configuration.
type Config struct {
	Score         score.Config
	ShipThreshold int
	HistoryPath   string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Score: score.Config{
			Weights:        score.DefaultWeights(),
			UnknownPenalty: 0,
		},
		ShipThreshold: DefaultShipThreshold,
		HistoryPath:   history.DefaultPath,
	}
}

// fileConfig is the on-disk YAML shape.
type fileConfig struct {
	Weights        map[string]int `yaml:"weights"`
	UnknownPenalty *float64       `yaml:"unknown_penalty"`
	PartialCredit  *float64       `yaml:"partial_credit"`
	ShipThreshold  *int           `yaml:"ship_threshold"`
	HistoryPath    string         `yaml:"history_path"`
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	for name, weight := range fc.Weights {
		cat, ok := categoryByName(name)
		if !ok || weight < 0 {
			// Unknown categories and negative weights keep the default.
			continue
		}
		cfg.Score.Weights[cat] = weight
	}
	if fc.UnknownPenalty != nil {
		cfg.Score.UnknownPenalty = clamp01(*fc.UnknownPenalty)
	}
	if fc.PartialCredit != nil {
		// An explicit 0 is a legitimate setting (partial earns nothing)
		// and must not fall back to the default.
		credit := clamp01(*fc.PartialCredit)
		cfg.Score.PartialCredit = &credit
	}
	if fc.ShipThreshold != nil {
		cfg.ShipThreshold = clampScore(*fc.ShipThreshold)
	}
	if fc.HistoryPath != "" {
		cfg.HistoryPath = fc.HistoryPath
	}
	return cfg, nil
}

// ParseWeightOverrides parses the comma-separated category=integer override
// grammar, e.g. "preconditions=30,postconditions=25". Unrecognized category
// names and non-numeric or negative values are ignored entry by entry; a
// wholly invalid string yields an empty map, meaning no override.
func ParseWeightOverrides(s string) map[clause.Category]int {
	overrides := make(map[clause.Category]int)
	for _, pair := range strings.Split(s, ",") {
		name, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		cat, ok := categoryByName(name)
		if !ok {
			continue
		}
		weight, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || weight < 0 {
			continue
		}
		overrides[cat] = weight
	}
	return overrides
}

// ApplyWeightOverrides merges parsed overrides into the config.
func (c *Config) ApplyWeightOverrides(s string) {
	for cat, weight := range ParseWeightOverrides(s) {
		c.Score.Weights[cat] = weight
	}
}

func categoryByName(name string) (clause.Category, bool) {
	candidate := clause.Category(strings.ToLower(strings.TrimSpace(name)))
	if candidate.Valid() {
		return candidate, true
	}
	return "", false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
