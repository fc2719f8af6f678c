package physics

// Status classifies the overall condition of a computed configuration. It is
// always derived from the safety margin and power headroom, never stored
// independently of them.
type Status string

const (
	StatusNominal  Status = "NOMINAL"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
)

// PipelineState is one fully computed hull configuration. Recompute takes a
// state by value and returns a new one; nothing in this package mutates a
// caller's copy. Callers sharing one state across goroutines serialize
// access themselves.
type PipelineState struct {
	// Inputs.
	TileAreaCm2  float64    `json:"tile_area_cm2"`
	HullAxesM    [3]float64 `json:"hull_axes_m"` // ellipsoid semi-axes a ≥ b ≥ c
	GapNm        float64    `json:"gap_nm"`
	TemperatureK float64    `json:"temperature_k"`
	ModFreqHz    float64    `json:"mod_freq_hz"`
	Mode         Mode       `json:"mode"`
	ModelMode    ModelMode  `json:"model_mode"`
	MassTargetKg float64    `json:"mass_target_kg"` // 0 = use the mode's target
	SectorCount  int        `json:"sector_count"`
	StrobeHz     float64    `json:"strobe_hz"`

	// Amplification seeds. QMech and VdbBoost are rewritten in place by the
	// calibration stages.
	GammaGeo float64 `json:"gamma_geo"`
	QMech    float64 `json:"q_mech"`
	CavityQ  float64 `json:"cavity_q"`
	VdbBoost float64 `json:"vdb_boost"` // mass-only amplification knob
	QSpoil   float64 `json:"q_spoil"`

	// Derived.
	ConcurrentSectors   int     `json:"concurrent_sectors"`
	DutyLocal           float64 `json:"duty_local"`
	DutyEffective       float64 `json:"duty_effective"`
	HullAreaM2          float64 `json:"hull_area_m2"`
	TileCount           int     `json:"tile_count"`
	UStaticJ            float64 `json:"u_static_j"`
	UGeoJ               float64 `json:"u_geo_j"`
	UQJ                 float64 `json:"u_q_j"`
	PowerAvgMW          float64 `json:"power_avg_mw"`
	ExoticMassKg        float64 `json:"exotic_mass_kg"`
	ExoticMassPerTileKg float64 `json:"exotic_mass_per_tile_kg"`
	VdbVisual           float64 `json:"vdb_visual"` // fixed seed for renderers
	Zeta                float64 `json:"zeta"`
	TSRatio             float64 `json:"ts_ratio"`
	FordRomanCompliance bool    `json:"ford_roman_compliance"`
	CalibrationClamped  bool    `json:"calibration_clamped"`
	AuditCorrected      bool    `json:"audit_corrected"`
	OverallStatus       Status  `json:"overall_status"`

	// Optional collaborator outputs, keyed by collaborator name. A failed or
	// unconfigured collaborator simply has no entry.
	Collab map[string]float64 `json:"collab,omitempty"`
}

// NewPipelineState returns the documented defaults: 25 cm² tiles on a
// 6.2 × 2.4 × 1.8 m hull, 400 sectors, hover mode, calibrated model.
func NewPipelineState() PipelineState {
	return PipelineState{
		TileAreaCm2:  25,
		HullAxesM:    [3]float64{6.2, 2.4, 1.8},
		GapNm:        1.0,
		TemperatureK: 20,
		ModFreqHz:    15e9,
		Mode:         ModeHover,
		ModelMode:    ModelCalibrated,
		SectorCount:  DefaultSectorCount,
		StrobeHz:     60,

		GammaGeo: GammaGeoSeed,
		QMech:    QMechSeed,
		CavityQ:  CavityQSeed,
		VdbBoost: VdbBoostSeed,
		QSpoil:   QSpoilSeed,
	}
}

// MajorAxis returns the longest hull semi-axis.
func (s PipelineState) MajorAxis() float64 {
	m := s.HullAxesM[0]
	for _, a := range s.HullAxesM[1:] {
		if a > m {
			m = a
		}
	}
	return m
}

// ResolvedMassTarget is the user target when set, else the mode target.
func (s PipelineState) ResolvedMassTarget() float64 {
	if s.MassTargetKg > 0 {
		return s.MassTargetKg
	}
	return PolicyFor(s.Mode).MassTargetKg
}
