package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/needle-hull/internal/physics"
)

func TestBuildNormalizesState(t *testing.T) {
	st := physics.Recompute(physics.NewPipelineState())
	p := Build(st)

	assert.Equal(t, "hover", p.Mode)
	assert.Equal(t, "calibrated", p.ModelMode)
	assert.Equal(t, "NOMINAL", p.OverallStatus)
	assert.Equal(t, st.TileCount, p.TileCount)
	assert.Equal(t, 15.0, p.ModulationFreqGHz, "frequency is reported in GHz")
	assert.InEpsilon(t, p.PowerAvgMW*1e6, p.PowerAvgW, 1e-12)
	assert.Equal(t, physics.BurstWindowQ, p.BurstQ)
}

func TestBuildSeparatesMassAndVisualBoost(t *testing.T) {
	st := physics.Recompute(physics.NewPipelineState())
	p := Build(st)

	assert.Equal(t, st.VdbBoost, p.VdbMassBoost)
	assert.Equal(t, physics.VisualBoostSeed, p.VdbVisualBoost)
	assert.NotEqual(t, p.VdbMassBoost, p.VdbVisualBoost,
		"the wire payload keeps the calibrated knob out of the visual field")
}

func TestBuildStandbyVisualPlaceholder(t *testing.T) {
	s := physics.NewPipelineState()
	s.Mode = physics.ModeStandby
	p := Build(physics.Recompute(s))

	assert.Equal(t, physics.VisualBoostIdle, p.VdbVisualBoost)
	assert.Zero(t, p.PowerAvgMW)
	assert.Zero(t, p.ExoticMassKg)
}

func TestWireKeys(t *testing.T) {
	st := physics.Recompute(physics.NewPipelineState())
	data, err := json.Marshal(Build(st))
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))

	// External consumers look these up verbatim; renaming one is a breaking
	// change, so the contract is pinned here.
	for _, key := range []string{
		"mode", "modelMode", "overallStatus",
		"sectorCount", "concurrentSectors", "dutyLocal", "dutyEffective",
		"gapNm", "tileAreaCm2", "tileCount", "hullAxesM", "hullAreaM2",
		"temperatureK", "modulationFreqGHz", "strobeRateHz",
		"uStaticJ", "uGeoJ", "uQJ",
		"gammaGeo", "qMech", "qSpoil", "cavityQ", "burstQ",
		"vdbMassBoost", "vdbVisualBoost",
		"powerAvgMW", "powerAvgW", "exoticMassKg", "exoticMassPerTileKg",
		"zeta", "tsRatio", "fordRomanCompliance",
		"calibrationClamped", "auditCorrected",
	} {
		assert.Contains(t, m, key)
	}

	// Optional collaborator outputs are omitted when absent.
	assert.NotContains(t, m, "metricEnergyDensity")
	assert.NotContains(t, m, "dynamicCasimirGain")
	assert.NotContains(t, m, "warpFieldStrength")
}

func TestCollaboratorOutputsPresentWhenSet(t *testing.T) {
	st := physics.Recompute(physics.NewPipelineState())
	st.Collab = map[string]float64{
		CollabMetric:     -1.2e-7,
		CollabWarpModule: 0.83,
	}
	p := Build(st)

	require.NotNil(t, p.MetricEnergyDensity)
	assert.Equal(t, -1.2e-7, *p.MetricEnergyDensity)
	require.NotNil(t, p.WarpFieldStrength)
	assert.Equal(t, 0.83, *p.WarpFieldStrength)
	assert.Nil(t, p.DynamicCasimirGain, "the unconfigured collaborator stays absent")
}
