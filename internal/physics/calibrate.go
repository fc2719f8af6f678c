package physics

import "math"

// powerStage computes the dissipated power chain and, in calibrated model
// mode, analytically rescales the mechanical-Q knob so the realized power
// hits the mode target. When the scale would push the knob past its clamp,
// the realized power misses the target; that miss is surfaced through
// CalibrationClamped rather than hidden.
func powerStage(s *PipelineState) {
	s.CavityQ = clamp(s.CavityQ, CavityQMin, CavityQMax)

	omega := 2 * math.Pi * s.ModFreqHz
	n := float64(s.TileCount)

	pTotal := math.Abs(s.UQJ) * omega / s.CavityQ * n * s.DutyEffective
	targetW := PolicyFor(s.Mode).PowerTargetMW * 1e6

	if targetW == 0 {
		// Idle power target: the mechanical stage is held dark.
		s.QMech = 0
		s.UQJ = 0
		s.PowerAvgMW = 0
		return
	}

	if s.ModelMode == ModelCalibrated && targetW > 0 && pTotal > 0 {
		scaled := s.QMech * (targetW / pTotal)
		clamped := clamp(scaled, QMechMin, QMechMax)
		if clamped != scaled {
			s.CalibrationClamped = true
		}
		s.QMech = clamped
		s.UQJ = s.UGeoJ * s.QMech
		pTotal = math.Abs(s.UQJ) * omega / s.CavityQ * n * s.DutyEffective
	}

	s.PowerAvgMW = pTotal / 1e6
}

// massStage computes the generated exotic mass and, in calibrated model
// mode, rescales the Van-den-Broeck amplification knob toward the resolved
// mass target. The per-tile energy deliberately uses the burst-window Q and
// the uncalibrated geometric/duty terms; the mass path never sees QMech.
func massStage(s *PipelineState) {
	g3 := s.GammaGeo * s.GammaGeo * s.GammaGeo
	n := float64(s.TileCount)

	s.VdbBoost = clamp(s.VdbBoost, 0, VdbBoostMax)

	eTile := math.Abs(s.UStaticJ) * g3 * BurstWindowQ * s.VdbBoost * s.DutyEffective
	mTotal := eTile / (CLight * CLight) * n

	target := s.ResolvedMassTarget()
	if target <= 0 {
		s.VdbBoost = 0
		s.ExoticMassKg = 0
		s.ExoticMassPerTileKg = 0
		s.VdbVisual = visualBoost(s.Mode)
		return
	}

	if s.ModelMode == ModelCalibrated && mTotal > 0 {
		scaled := s.VdbBoost * (target / mTotal)
		clamped := clamp(scaled, 0, VdbBoostMax)
		if clamped != scaled {
			s.CalibrationClamped = true
		}
		s.VdbBoost = clamped
		eTile = math.Abs(s.UStaticJ) * g3 * BurstWindowQ * s.VdbBoost * s.DutyEffective
		mTotal = eTile / (CLight * CLight) * n
	}

	s.ExoticMassKg = mTotal
	if s.TileCount > 0 {
		s.ExoticMassPerTileKg = mTotal / n
	}
	s.VdbVisual = visualBoost(s.Mode)
}

// visualBoost is the fixed amplification seed exposed to visual consumers.
// It is mode-invariant except in standby, where it collapses to a near-zero
// placeholder, so downstream renderers never see the mass calibration value.
func visualBoost(m Mode) float64 {
	if m == ModeStandby {
		return VisualBoostIdle
	}
	return VisualBoostSeed
}
