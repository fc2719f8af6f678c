package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHullSurfaceAreaSphere(t *testing.T) {
	// The Thomsen approximation is exact for a sphere.
	r := 3.7
	assert.InEpsilon(t, 4*math.Pi*r*r, HullSurfaceArea(r, r, r), 1e-12)
}

func TestLatticeStageCensus(t *testing.T) {
	s := NewPipelineState()
	latticeStage(&s)

	require.Greater(t, s.HullAreaM2, 0.0)
	assert.Equal(t, int(s.HullAreaM2/(s.TileAreaCm2*1e-4)), s.TileCount)
	assert.Greater(t, s.TileCount, 10000, "the stock hull carries tens of thousands of tiles")
}

func TestLatticeStageTileCountFloor(t *testing.T) {
	s := NewPipelineState()
	s.HullAxesM = [3]float64{0.01, 0.01, 0.01}
	s.TileAreaCm2 = TileAreaMaxCm2
	latticeStage(&s)
	assert.Equal(t, 1, s.TileCount)
}

func TestGapToleranceAuditDeterministic(t *testing.T) {
	st := Recompute(NewPipelineState())

	a := GapToleranceAudit(st, 42, 0.05)
	b := GapToleranceAudit(st, 42, 0.05)
	assert.Equal(t, a, b, "same seed, same report")
}

func TestGapToleranceAuditBounds(t *testing.T) {
	st := Recompute(NewPipelineState())
	rep := GapToleranceAudit(st, 7, 0.05)

	assert.Equal(t, int64(7), rep.Seed)
	assert.Greater(t, rep.TilesSampled, 0)
	assert.LessOrEqual(t, rep.MeanAbsDevNm, 0.05, "deviation cannot exceed the tolerance")
	assert.GreaterOrEqual(t, math.Abs(rep.WorstTileJ), math.Abs(rep.NominalTileJ))
	assert.GreaterOrEqual(t, rep.MaxEnergySwing, 0.0)
	// The cubic gap law makes a 5% gap tolerance worth well over 5% energy.
	assert.Greater(t, rep.MaxEnergySwing, 0.05)
	assert.InEpsilon(t, rep.NominalTileJ*float64(st.TileCount), rep.NominalLatticeJ, 1e-12)
}
