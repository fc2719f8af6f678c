package physics

// Mode is an operating mode of the hull.
type Mode string

const (
	ModeStandby   Mode = "standby"
	ModeHover     Mode = "hover"
	ModeCruise    Mode = "cruise"
	ModeWarp      Mode = "warp"
	ModeEmergency Mode = "emergency"
)

// ModelMode selects whether the power/mass calibration stages rescale their
// knobs toward the mode targets ("calibrated") or leave the raw chain
// untouched ("raw").
type ModelMode string

const (
	ModelCalibrated ModelMode = "calibrated"
	ModelRaw        ModelMode = "raw"
)

// ModePolicy gives the per-mode sector concurrency and calibration targets.
type ModePolicy struct {
	ConcurrentSectors int     // sectors simultaneously live
	PowerTargetMW     float64 // dissipated power target, MW (0 = idle)
	MassTargetKg      float64 // generated exotic mass target, kg (0 = idle)
	ZetaCeiling       float64 // Ford-Roman compliance ceiling
}

var modePolicies = map[Mode]ModePolicy{
	ModeStandby:   {ConcurrentSectors: 0, PowerTargetMW: 0, MassTargetKg: 0, ZetaCeiling: 1.0},
	ModeHover:     {ConcurrentSectors: 1, PowerTargetMW: 83.3, MassTargetKg: 1405, ZetaCeiling: 1.0},
	ModeCruise:    {ConcurrentSectors: 1, PowerTargetMW: 100, MassTargetKg: 1400, ZetaCeiling: 1.0},
	ModeWarp:      {ConcurrentSectors: 1, PowerTargetMW: 150, MassTargetKg: 2800, ZetaCeiling: 1.0},
	ModeEmergency: {ConcurrentSectors: 2, PowerTargetMW: 200, MassTargetKg: 2000, ZetaCeiling: 1.2},
}

// PolicyFor returns the policy for a mode. Unknown modes fall back to hover
// rather than failing; the core never rejects input.
func PolicyFor(m Mode) ModePolicy {
	if p, ok := modePolicies[m]; ok {
		return p
	}
	return modePolicies[ModeHover]
}

// KnownMode reports whether m is one of the defined operating modes.
func KnownMode(m Mode) bool {
	_, ok := modePolicies[m]
	return ok
}

// Modes returns the defined operating modes in a fixed order.
func Modes() []Mode {
	return []Mode{ModeStandby, ModeHover, ModeCruise, ModeWarp, ModeEmergency}
}
