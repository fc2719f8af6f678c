package physics

// Viability sweep over the tile-area × hull-scale design plane. Each cell
// runs the full pure pipeline and applies the design-point checks, so the
// grid always agrees with what a live recompute at that point would report.

// SweepRequest bounds the design plane and its resolution.
type SweepRequest struct {
	AreaMinCm2 float64 `json:"area_min_cm2"`
	AreaMaxCm2 float64 `json:"area_max_cm2"`
	ScaleMin   float64 `json:"scale_min"` // hull semi-axis multiplier
	ScaleMax   float64 `json:"scale_max"`
	Resolution int     `json:"resolution"`
}

// DefaultSweepRequest covers the useful envelope around the stock hull.
func DefaultSweepRequest() SweepRequest {
	return SweepRequest{
		AreaMinCm2: 1,
		AreaMaxCm2: 2500,
		ScaleMin:   0.25,
		ScaleMax:   4,
		Resolution: 40,
	}
}

// DesignChecks are the individual pass/fail gates for one design point.
type DesignChecks struct {
	MassOK      bool `json:"mass_ok"`      // within ±50% of the mode target
	PowerOK     bool `json:"power_ok"`     // at most 2× the mode target
	QuantumSafe bool `json:"quantum_safe"` // ζ below the mode ceiling
	TimescaleOK bool `json:"timescale_ok"` // light-crossing vs modulation period
	GeometryOK  bool `json:"geometry_ok"`  // geometric enhancement present
}

// Viable reports whether every gate passed.
func (c DesignChecks) Viable() bool {
	return c.MassOK && c.PowerOK && c.QuantumSafe && c.TimescaleOK && c.GeometryOK
}

// SweepResult is the classified grid plus its axes. Grid[i][j] corresponds
// to Scales[i] and Areas[j].
type SweepResult struct {
	Areas  []float64 `json:"areas_cm2"`
	Scales []float64 `json:"scales"`
	Grid   [][]bool  `json:"grid"`
}

// CheckDesignPoint classifies one finished state.
func CheckDesignPoint(s PipelineState) DesignChecks {
	policy := PolicyFor(s.Mode)
	target := s.ResolvedMassTarget()

	return DesignChecks{
		MassOK:      target > 0 && s.ExoticMassKg >= 0.5*target && s.ExoticMassKg <= 2.0*target,
		PowerOK:     policy.PowerTargetMW > 0 && s.PowerAvgMW <= 2.0*policy.PowerTargetMW,
		QuantumSafe: s.Zeta < policy.ZetaCeiling,
		TimescaleOK: s.TSRatio > 0.1,
		GeometryOK:  s.GammaGeo >= 15,
	}
}

// ViabilityGrid sweeps tile area and hull scale around the base state.
// The base state is taken by value; the sweep never touches live state.
func ViabilityGrid(base PipelineState, req SweepRequest) SweepResult {
	if req.Resolution < 2 {
		req.Resolution = 2
	}

	res := SweepResult{
		Areas:  make([]float64, req.Resolution),
		Scales: make([]float64, req.Resolution),
		Grid:   make([][]bool, req.Resolution),
	}

	stepA := (req.AreaMaxCm2 - req.AreaMinCm2) / float64(req.Resolution-1)
	stepS := (req.ScaleMax - req.ScaleMin) / float64(req.Resolution-1)
	for k := 0; k < req.Resolution; k++ {
		res.Areas[k] = req.AreaMinCm2 + float64(k)*stepA
		res.Scales[k] = req.ScaleMin + float64(k)*stepS
	}

	for i, scale := range res.Scales {
		res.Grid[i] = make([]bool, req.Resolution)
		for j, area := range res.Areas {
			point := base
			point.TileAreaCm2 = area
			for k := range point.HullAxesM {
				point.HullAxesM[k] = base.HullAxesM[k] * scale
			}
			res.Grid[i][j] = CheckDesignPoint(Recompute(point)).Viable()
		}
	}
	return res
}
