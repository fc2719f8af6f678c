package physics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeHoverScenario(t *testing.T) {
	st := Recompute(NewPipelineState())

	assert.Equal(t, 400, st.SectorCount)
	assert.Equal(t, 1, st.ConcurrentSectors)
	assert.InEpsilon(t, 2.5e-5, st.DutyEffective, 1e-12)
	assert.InEpsilon(t, 0.5, st.Zeta, 1e-12)
	assert.True(t, st.FordRomanCompliance)
	assert.Equal(t, StatusNominal, st.OverallStatus)
	assert.False(t, st.CalibrationClamped)
	assert.False(t, st.AuditCorrected)
}

func TestPowerCalibrationHitsTargetInRange(t *testing.T) {
	st := Recompute(NewPipelineState())

	target := PolicyFor(ModeHover).PowerTargetMW
	require.InEpsilon(t, target*1e6, st.PowerAvgMW*1e6, 1e-9)
	assert.Greater(t, st.QMech, QMechMin)
	assert.Less(t, st.QMech, QMechMax)
	assert.False(t, st.CalibrationClamped)
}

func TestPowerCalibrationForcedClamp(t *testing.T) {
	// A millimetre gap kills the static energy by 1e9; the scale factor then
	// wants a knob far past its ceiling. The knob pins at the clamp and the
	// realized power misses the target rather than lying about it.
	s := NewPipelineState()
	s.GapNm = 1000
	st := Recompute(s)

	assert.Equal(t, QMechMax, st.QMech)
	assert.True(t, st.CalibrationClamped)
	assert.Less(t, st.PowerAvgMW, PolicyFor(ModeHover).PowerTargetMW)
	// The audit re-derives from the clamped knob, so nothing drifts.
	assert.False(t, st.AuditCorrected)
}

func TestMassCalibrationHitsTarget(t *testing.T) {
	st := Recompute(NewPipelineState())
	require.InEpsilon(t, PolicyFor(ModeHover).MassTargetKg, st.ExoticMassKg, 1e-9)
	assert.Greater(t, st.VdbBoost, 0.0)
	assert.Less(t, st.VdbBoost, VdbBoostMax)
	assert.InEpsilon(t, st.ExoticMassKg/float64(st.TileCount), st.ExoticMassPerTileKg, 1e-12)
}

func TestMassPowerIndependence(t *testing.T) {
	base := Recompute(NewPipelineState())

	// Doubling the mass target moves only the mass side.
	s := NewPipelineState()
	s.MassTargetKg = 2810
	st := Recompute(s)
	assert.InEpsilon(t, base.PowerAvgMW, st.PowerAvgMW, 1e-12)
	assert.InEpsilon(t, 2810, st.ExoticMassKg, 1e-9)

	// Moving a power-side knob leaves the mass side alone.
	s = NewPipelineState()
	s.CavityQ = 1e10
	st = Recompute(s)
	assert.InEpsilon(t, base.ExoticMassKg, st.ExoticMassKg, 1e-9)
	assert.InEpsilon(t, base.PowerAvgMW, st.PowerAvgMW, 1e-9)
}

func TestMassNeverSeesQMech(t *testing.T) {
	// The mass chain runs on the burst-window Q and the raw geometric/duty
	// terms; forcing QMech through its whole range must not move the mass.
	base := Recompute(NewPipelineState())

	s := NewPipelineState()
	s.QMech = 1e-6
	st := Recompute(s)
	assert.InEpsilon(t, base.ExoticMassKg, st.ExoticMassKg, 1e-9)
	assert.InEpsilon(t, base.VdbBoost, st.VdbBoost, 1e-9)
}

func TestStandbyIdleInvariant(t *testing.T) {
	s := NewPipelineState()
	s.Mode = ModeStandby
	st := Recompute(s)

	assert.Zero(t, st.DutyEffective)
	assert.Zero(t, st.QMech)
	assert.Zero(t, st.UQJ)
	assert.Zero(t, st.PowerAvgMW)
	assert.Zero(t, st.ExoticMassKg)
	assert.Zero(t, st.Zeta)
	assert.Equal(t, VisualBoostIdle, st.VdbVisual)
	assert.True(t, st.FordRomanCompliance)
	assert.Equal(t, StatusNominal, st.OverallStatus)
}

func TestStandbyIgnoresUserMassTarget(t *testing.T) {
	// Zero duty drives the mass to zero through the duty term itself, not
	// through a special case keyed on the target.
	s := NewPipelineState()
	s.Mode = ModeStandby
	s.MassTargetKg = 5000
	st := Recompute(s)
	assert.Zero(t, st.ExoticMassKg)
	assert.Zero(t, st.PowerAvgMW)
}

func TestClampClosure(t *testing.T) {
	s := NewPipelineState()
	s.GapNm = -50
	s.TileAreaCm2 = 1e12
	s.GammaGeo = 1e9
	s.QMech = 1e30
	s.CavityQ = -1
	s.VdbBoost = 1e30
	st := Recompute(s)

	assert.GreaterOrEqual(t, st.GapNm, GapMinNm)
	assert.LessOrEqual(t, st.TileAreaCm2, TileAreaMaxCm2)
	assert.GreaterOrEqual(t, st.GammaGeo, GammaGeoMin)
	assert.LessOrEqual(t, st.GammaGeo, GammaGeoMax)
	assert.LessOrEqual(t, st.QMech, QMechMax)
	assert.GreaterOrEqual(t, st.CavityQ, CavityQMin)
	assert.LessOrEqual(t, st.VdbBoost, VdbBoostMax)
	assert.GreaterOrEqual(t, st.DutyEffective, 0.0)
	assert.LessOrEqual(t, st.DutyEffective, 1.0)
	assert.NotEqual(t, "", string(st.OverallStatus), "absurd input still classifies")
}

func TestStandbyRoundTripRecovers(t *testing.T) {
	s := NewPipelineState()
	s.Mode = ModeStandby
	st := Recompute(s)
	require.Zero(t, st.QMech)

	st.Mode = ModeHover
	st = Recompute(st)
	assert.InEpsilon(t, PolicyFor(ModeHover).PowerTargetMW, st.PowerAvgMW, 1e-9)
	assert.InEpsilon(t, PolicyFor(ModeHover).MassTargetKg, st.ExoticMassKg, 1e-9)
	assert.Equal(t, VisualBoostSeed, st.VdbVisual)
}

func TestRawModelSkipsCalibration(t *testing.T) {
	s := NewPipelineState()
	s.ModelMode = ModelRaw
	st := Recompute(s)

	assert.Equal(t, QMechSeed, st.QMech)
	assert.Equal(t, VdbBoostSeed, st.VdbBoost)
	assert.Less(t, st.PowerAvgMW, PolicyFor(ModeHover).PowerTargetMW)
	assert.Less(t, st.ExoticMassKg, PolicyFor(ModeHover).MassTargetKg)
}

func TestVisualBoostStaysFixedAcrossModes(t *testing.T) {
	for _, m := range []Mode{ModeHover, ModeCruise, ModeWarp, ModeEmergency} {
		s := NewPipelineState()
		s.Mode = m
		st := Recompute(s)
		assert.Equal(t, VisualBoostSeed, st.VdbVisual, "mode %s", m)
		assert.NotEqual(t, st.VdbBoost, st.VdbVisual,
			"mode %s: visual consumers must never see the mass knob", m)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	once := Recompute(NewPipelineState())
	twice := Recompute(once)

	assert.Equal(t, once.TileCount, twice.TileCount)
	assert.Equal(t, once.ConcurrentSectors, twice.ConcurrentSectors)
	assert.Equal(t, once.OverallStatus, twice.OverallStatus)
	assert.InEpsilon(t, once.QMech, twice.QMech, 1e-9)
	assert.InEpsilon(t, once.VdbBoost, twice.VdbBoost, 1e-9)
	assert.InEpsilon(t, once.PowerAvgMW, twice.PowerAvgMW, 1e-9)
	assert.InEpsilon(t, once.ExoticMassKg, twice.ExoticMassKg, 1e-9)
	assert.False(t, twice.AuditCorrected)
}

func TestRecomputeDoesNotMutateInput(t *testing.T) {
	in := NewPipelineState()
	before := in
	_ = Recompute(in)
	assert.Equal(t, before, in)
}

func TestZetaScalesWithSectorCount(t *testing.T) {
	// ζ = 0.5 · (d_eff / 2.5e-5); halving the sector count doubles it.
	s := NewPipelineState()
	s.SectorCount = 200
	st := Recompute(s)
	assert.InEpsilon(t, 1.0, st.Zeta, 1e-12)
	assert.False(t, st.FordRomanCompliance)
	assert.Equal(t, StatusCritical, st.OverallStatus)
}

func TestZetaWarningBand(t *testing.T) {
	s := NewPipelineState()
	s.SectorCount = 205
	st := Recompute(s)
	assert.GreaterOrEqual(t, st.Zeta, 0.95)
	assert.Less(t, st.Zeta, 1.0)
	assert.True(t, st.FordRomanCompliance)
	assert.Equal(t, StatusWarning, st.OverallStatus)
}

func TestEmergencyModeIsCriticalAtStockSectors(t *testing.T) {
	// Two concurrent sectors on a 400-sector lattice lands exactly on
	// ζ = 1.0: within the emergency ceiling, but still classified CRITICAL.
	s := NewPipelineState()
	s.Mode = ModeEmergency
	st := Recompute(s)

	assert.Equal(t, 2, st.ConcurrentSectors)
	assert.InEpsilon(t, 1.0, st.Zeta, 1e-12)
	assert.True(t, st.FordRomanCompliance)
	assert.Equal(t, StatusCritical, st.OverallStatus)
}

func TestSectorCountFloor(t *testing.T) {
	s := NewPipelineState()
	s.SectorCount = 0
	st := Recompute(s)
	assert.Equal(t, 1, st.SectorCount)
	assert.Equal(t, StatusCritical, st.OverallStatus, "full-duty operation is never safe")
}

func TestUnknownModeFallsBackToHover(t *testing.T) {
	assert.False(t, KnownMode(Mode("ludicrous")))
	assert.Equal(t, PolicyFor(ModeHover), PolicyFor(Mode("ludicrous")))

	s := NewPipelineState()
	s.Mode = Mode("ludicrous")
	st := Recompute(s)
	assert.InEpsilon(t, PolicyFor(ModeHover).PowerTargetMW, st.PowerAvgMW, 1e-9)
}

func TestTimescaleSeparation(t *testing.T) {
	st := Recompute(NewPipelineState())
	// 6.2 m hull at 15 GHz: hundreds of modulation periods per crossing.
	assert.InEpsilon(t, (2*6.2/CLight)*15e9, st.TSRatio, 1e-12)
	assert.Greater(t, st.TSRatio, 100.0)
}

// stubCollaborator is a canned external module for engine tests.
type stubCollaborator struct {
	name string
	val  float64
	err  error
}

func (c stubCollaborator) Name() string { return c.name }
func (c stubCollaborator) Evaluate(_ context.Context, _ PipelineState) (float64, error) {
	return c.val, c.err
}

func TestEngineCollaborators(t *testing.T) {
	eng := NewEngine(
		stubCollaborator{name: "metric", val: 42.5},
		stubCollaborator{name: "warp-module", err: errors.New("connection refused")},
	)
	st := eng.Recompute(context.Background())

	val, ok := st.Collab["metric"]
	require.True(t, ok)
	assert.Equal(t, 42.5, val)

	_, ok = st.Collab["warp-module"]
	assert.False(t, ok, "a failed collaborator leaves its output absent")
}

func TestEngineSwitchMode(t *testing.T) {
	eng := NewEngine()
	st := eng.SwitchMode(context.Background(), ModeWarp)
	assert.Equal(t, ModeWarp, st.Mode)
	assert.InEpsilon(t, PolicyFor(ModeWarp).PowerTargetMW, st.PowerAvgMW, 1e-9)
	assert.Equal(t, st, eng.State())
}

func TestUpdateParametersSparseMerge(t *testing.T) {
	eng := NewEngine()
	before := eng.Recompute(context.Background())

	gap := 2.0
	st := eng.UpdateParameters(context.Background(), Partial{GapNm: &gap})

	assert.Equal(t, 2.0, st.GapNm)
	assert.Equal(t, before.TileAreaCm2, st.TileAreaCm2, "nil fields stay untouched")
	assert.Equal(t, before.HullAxesM, st.HullAxesM)
	// Weaker static energy per tile, same calibrated outputs.
	assert.InEpsilon(t, before.PowerAvgMW, st.PowerAvgMW, 1e-9)
	assert.InEpsilon(t, before.ExoticMassKg, st.ExoticMassKg, 1e-9)
	assert.Greater(t, st.VdbBoost, before.VdbBoost)
}
