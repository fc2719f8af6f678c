package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTileEnergyWorkedExample(t *testing.T) {
	// gap = 1000 nm, tile = 100 cm²: U = -(π²·ħc)/(720·a³)·A ≈ -4.33e-12 J.
	u := StaticTileEnergy(1000, 100)
	require.Less(t, u, 0.0, "plates attract, energy must be negative")
	assert.InEpsilon(t, -4.3336e-12, u, 1e-3)
}

func TestStaticTileEnergyGapScaling(t *testing.T) {
	// Inverse-cube in the gap: halving the gap multiplies |U| by 8.
	u1 := StaticTileEnergy(2, 25)
	u2 := StaticTileEnergy(1, 25)
	assert.InEpsilon(t, 8.0, u2/u1, 1e-12)
}

func TestStaticTileEnergyClampsSilently(t *testing.T) {
	// Out-of-range inputs are pulled to the bounds, never rejected.
	assert.Equal(t, StaticTileEnergy(GapMinNm, 25), StaticTileEnergy(0.0001, 25))
	assert.Equal(t, StaticTileEnergy(GapMaxNm, 25), StaticTileEnergy(1e9, 25))
	assert.Equal(t, StaticTileEnergy(1, TileAreaMaxCm2), StaticTileEnergy(1, 1e9))
	assert.False(t, math.IsInf(StaticTileEnergy(0, 25), 0), "zero gap must clamp, not blow up")
}

func TestCasimirStageCascade(t *testing.T) {
	s := NewPipelineState()
	casimirStage(&s)

	g3 := s.GammaGeo * s.GammaGeo * s.GammaGeo
	assert.InEpsilon(t, s.UStaticJ*g3, s.UGeoJ, 1e-12, "geometric factor enters cubed")
	assert.InEpsilon(t, s.UGeoJ*s.QMech, s.UQJ, 1e-12)
}

func TestCasimirStageStandbyDarkensQMech(t *testing.T) {
	s := NewPipelineState()
	s.Mode = ModeStandby
	s.QMech = 500
	casimirStage(&s)
	assert.Zero(t, s.QMech)
	assert.Zero(t, s.UQJ)
}

func TestCasimirStageRestoresSeedAfterIdle(t *testing.T) {
	// A previous idle pass left QMech at zero; any live mode restores the
	// unit seed instead of staying dark forever.
	s := NewPipelineState()
	s.Mode = ModeHover
	s.QMech = 0
	casimirStage(&s)
	assert.Equal(t, QMechSeed, s.QMech)
}

func TestCasimirStageClampsGamma(t *testing.T) {
	s := NewPipelineState()
	s.GammaGeo = 5000
	casimirStage(&s)
	assert.Equal(t, GammaGeoMax, s.GammaGeo)

	s = NewPipelineState()
	s.GammaGeo = 0.01
	casimirStage(&s)
	assert.Equal(t, GammaGeoMin, s.GammaGeo)
}
