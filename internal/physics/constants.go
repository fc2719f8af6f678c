// Package physics computes the self-consistent energy budget of the needle
// hull: Casimir tile energy, sector duty scheduling, power and exotic-mass
// calibration, and the quantum-inequality safety audit.
// See design doc Section 5.
package physics

import "golang.org/x/exp/constraints"

// Physical constants (SI).
const (
	// HBarC is ħc (197.326 MeV·fm) in J·m.
	HBarC = 3.1615e-26
	// CLight is the speed of light in m/s.
	CLight = 2.99792458e8
)

// Device constants. BurstWindowQ is the burst-window quality factor used by
// the mass path; it is deliberately a separate constant from the cavity Q
// that drives the power path.
const (
	// DefaultSectorCount is the fixed angular partition of the hull lattice.
	DefaultSectorCount = 400
	// BurstDutyLocal is the local burst duty: 10 µs burst per 1000 µs cycle.
	BurstDutyLocal = 0.01
	// BurstWindowQ scales the per-burst stored energy in the mass path.
	BurstWindowQ = 1e6
	// ReferenceDuty is the ship-averaged duty the ζ baseline was fitted at
	// (1% local × 1/400 sectors).
	ReferenceDuty = 2.5e-5
	// ZetaBaseline is the Ford-Roman margin at the reference duty.
	ZetaBaseline = 0.5
)

// Hard numeric clamps. Out-of-range inputs are silently pulled to these
// bounds; nothing in this package rejects a value.
const (
	GapMinNm = 0.1
	GapMaxNm = 1000.0

	TileAreaMinCm2 = 0.01
	TileAreaMaxCm2 = 10000.0

	GammaGeoMin = 1.0
	GammaGeoMax = 1000.0

	QMechMin = 1e-6
	QMechMax = 1e6

	VdbBoostMax = 1e16

	CavityQMin = 1.0
	CavityQMax = 1e12
)

// Amplification seeds. VisualBoostSeed is what the renderer sees; it is
// mode-invariant so the mass calibration never leaks into the visual path.
// In standby it collapses to VisualBoostIdle, a near-zero placeholder.
const (
	GammaGeoSeed    = 26.0
	QMechSeed       = 1.0
	CavityQSeed     = 1e9
	VdbBoostSeed    = 1e11
	VisualBoostSeed = 1e11
	VisualBoostIdle = 1e-6
	QSpoilSeed      = 0.3
)

// auditTolerance is the relative drift beyond which the safety auditor
// overwrites a stored derived value with its recomputed expectation.
const auditTolerance = 1e-6

// clamp pulls v into [lo, hi].
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
