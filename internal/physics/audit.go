package physics

import (
	"log/slog"
	"math"
)

// auditStage evaluates the Ford-Roman safety margin, re-derives power and
// mass from the final clamped knobs, and classifies the overall status.
// A derived value that drifted from its recomputed expectation is
// overwritten, and the overwrite is surfaced via AuditCorrected and a
// warning log instead of passing silently.
func auditStage(s *PipelineState) {
	s.Zeta = ZetaBaseline * (s.DutyEffective / ReferenceDuty)

	policy := PolicyFor(s.Mode)
	s.FordRomanCompliance = s.Zeta < policy.ZetaCeiling

	// Timescale separation: light-crossing time of the hull against one
	// modulation period.
	s.TSRatio = (2 * s.MajorAxis() / CLight) * s.ModFreqHz

	// Self-consistency pass over the final clamped state.
	omega := 2 * math.Pi * s.ModFreqHz
	n := float64(s.TileCount)
	g3 := s.GammaGeo * s.GammaGeo * s.GammaGeo

	expectedPMW := math.Abs(s.UQJ) * omega / s.CavityQ * n * s.DutyEffective / 1e6
	if drifted(s.PowerAvgMW, expectedPMW) {
		slog.Warn("audit corrected average power",
			"stored_mw", s.PowerAvgMW, "expected_mw", expectedPMW)
		s.PowerAvgMW = expectedPMW
		s.AuditCorrected = true
	}

	expectedM := math.Abs(s.UStaticJ) * g3 * BurstWindowQ * s.VdbBoost *
		s.DutyEffective / (CLight * CLight) * n
	if drifted(s.ExoticMassKg, expectedM) {
		slog.Warn("audit corrected exotic mass",
			"stored_kg", s.ExoticMassKg, "expected_kg", expectedM)
		s.ExoticMassKg = expectedM
		if s.TileCount > 0 {
			s.ExoticMassPerTileKg = expectedM / n
		}
		s.AuditCorrected = true
	}

	s.OverallStatus = classify(s, policy)
}

// classify is a pure function of the margin and power headroom.
func classify(s *PipelineState, policy ModePolicy) Status {
	switch {
	case !s.FordRomanCompliance || s.Zeta >= 1.0:
		return StatusCritical
	case s.Zeta >= 0.95:
		return StatusWarning
	case s.Mode != ModeEmergency && policy.PowerTargetMW > 0 &&
		s.PowerAvgMW > 1.2*policy.PowerTargetMW:
		return StatusWarning
	default:
		return StatusNominal
	}
}

// drifted reports a relative mismatch beyond the audit tolerance.
func drifted(stored, expected float64) bool {
	scale := math.Max(math.Abs(stored), math.Abs(expected))
	if scale == 0 {
		return false
	}
	return math.Abs(stored-expected)/scale > auditTolerance
}
