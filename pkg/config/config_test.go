package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isl-gate/trustcore/pkg/clause"
	"github.com/isl-gate/trustcore/pkg/history"
	"github.com/isl-gate/trustcore/pkg/score"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultShipThreshold, cfg.ShipThreshold)
	assert.Equal(t, history.DefaultPath, cfg.HistoryPath)

	total := 0
	for _, w := range cfg.Score.Weights {
		total += w
	}
	assert.Equal(t, 100, total)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().ShipThreshold, cfg.ShipThreshold)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isl-gate.yaml")
	doc := `
weights:
  preconditions: 40
  chaos: 5
  bogus: 99
  temporal: -3
unknown_penalty: 0.25
ship_threshold: 90
history_path: /tmp/history.json
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Score.Weights[clause.CategoryPreconditions])
	assert.Equal(t, 5, cfg.Score.Weights[clause.CategoryChaos])
	// Unknown category ignored; negative weight keeps the default.
	assert.Equal(t, 10, cfg.Score.Weights[clause.CategoryTemporal])
	assert.Equal(t, 0.25, cfg.Score.UnknownPenalty)
	assert.Equal(t, 90, cfg.ShipThreshold)
	assert.Equal(t, "/tmp/history.json", cfg.HistoryPath)
}

func TestLoad_ExplicitZeroPartialCredit(t *testing.T) {
	// partial_credit: 0 is a deliberate "partial earns nothing" setting;
	// it must reach the calculator instead of reverting to the default.
	path := filepath.Join(t.TempDir(), "isl-gate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("partial_credit: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Score.PartialCredit)
	assert.Equal(t, 0.0, *cfg.Score.PartialCredit)

	result, err := score.Compute([]clause.Result{
		{Category: clause.CategoryPreconditions, Status: clause.StatusPartial},
	}, cfg.Score)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
}

func TestLoad_UnsetPartialCreditUsesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Score.PartialCredit)

	result, err := score.Compute([]clause.Result{
		{Category: clause.CategoryPreconditions, Status: clause.StatusPartial},
	}, cfg.Score)
	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)
}

func TestLoad_OutOfRangeValuesClamped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isl-gate.yaml")
	doc := "unknown_penalty: 3.5\nship_threshold: 250\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Score.UnknownPenalty)
	assert.Equal(t, 100, cfg.ShipThreshold)
}

func TestLoad_MalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isl-gate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t-"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestParseWeightOverrides(t *testing.T) {
	overrides := ParseWeightOverrides("preconditions=30,postconditions=25")
	assert.Equal(t, map[clause.Category]int{
		clause.CategoryPreconditions:  30,
		clause.CategoryPostconditions: 25,
	}, overrides)
}

func TestParseWeightOverrides_BadEntriesDropped(t *testing.T) {
	// Unrecognized names and non-numeric or negative values are ignored
	// entry by entry.
	overrides := ParseWeightOverrides("bogus=10,preconditions=abc,chaos=-5,temporal=15, invariants = 20 ")
	assert.Equal(t, map[clause.Category]int{
		clause.CategoryTemporal:   15,
		clause.CategoryInvariants: 20,
	}, overrides)
}

func TestParseWeightOverrides_WhollyInvalidMeansNoOverride(t *testing.T) {
	assert.Empty(t, ParseWeightOverrides("complete garbage"))
	assert.Empty(t, ParseWeightOverrides(""))
}

func TestApplyWeightOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyWeightOverrides("coverage=50")
	assert.Equal(t, 50, cfg.Score.Weights[clause.CategoryCoverage])
	// Untouched categories keep defaults.
	assert.Equal(t, 25, cfg.Score.Weights[clause.CategoryPreconditions])
}
