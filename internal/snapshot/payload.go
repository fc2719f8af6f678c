// Package snapshot flattens a finished pipeline state into the payload
// external consumers read by name. The JSON keys here are a wire contract:
// the renderer, REST clients, and the audit panels all look these up
// verbatim, so renaming one is a breaking change.
package snapshot

import (
	"github.com/talgya/needle-hull/internal/physics"
)

// Payload is the normalized flat key set. Mass-only and visual
// amplification values are separate fields on purpose: visual consumers
// must never see the mass calibration number.
type Payload struct {
	Mode              string     `json:"mode"`
	ModelMode         string     `json:"modelMode"`
	OverallStatus     string     `json:"overallStatus"`
	SectorCount       int        `json:"sectorCount"`
	ConcurrentSectors int        `json:"concurrentSectors"`
	DutyLocal         float64    `json:"dutyLocal"`
	DutyEffective     float64    `json:"dutyEffective"`
	GapNm             float64    `json:"gapNm"`
	TileAreaCm2       float64    `json:"tileAreaCm2"`
	TileCount         int        `json:"tileCount"`
	HullAxesM         [3]float64 `json:"hullAxesM"`
	HullAreaM2        float64    `json:"hullAreaM2"`
	TemperatureK      float64    `json:"temperatureK"`
	ModulationFreqGHz float64    `json:"modulationFreqGHz"`
	StrobeRateHz      float64    `json:"strobeRateHz"`

	UStaticJ float64 `json:"uStaticJ"`
	UGeoJ    float64 `json:"uGeoJ"`
	UQJ      float64 `json:"uQJ"`

	GammaGeo float64 `json:"gammaGeo"`
	QMech    float64 `json:"qMech"`
	QSpoil   float64 `json:"qSpoil"`
	CavityQ  float64 `json:"cavityQ"`
	BurstQ   float64 `json:"burstQ"`

	// Calibrated mass knob and fixed visual seed, reported separately.
	VdbMassBoost   float64 `json:"vdbMassBoost"`
	VdbVisualBoost float64 `json:"vdbVisualBoost"`

	PowerAvgMW          float64 `json:"powerAvgMW"`
	PowerAvgW           float64 `json:"powerAvgW"`
	ExoticMassKg        float64 `json:"exoticMassKg"`
	ExoticMassPerTileKg float64 `json:"exoticMassPerTileKg"`

	Zeta                float64 `json:"zeta"`
	TSRatio             float64 `json:"tsRatio"`
	FordRomanCompliance bool    `json:"fordRomanCompliance"`
	CalibrationClamped  bool    `json:"calibrationClamped"`
	AuditCorrected      bool    `json:"auditCorrected"`

	// Optional collaborator outputs; absent when the collaborator is
	// unconfigured or failed.
	MetricEnergyDensity *float64 `json:"metricEnergyDensity,omitempty"`
	DynamicCasimirGain  *float64 `json:"dynamicCasimirGain,omitempty"`
	WarpFieldStrength   *float64 `json:"warpFieldStrength,omitempty"`
}

// Collaborator names looked up in the state's collaborator map.
const (
	CollabMetric         = "metric"
	CollabDynamicCasimir = "dynamic-casimir"
	CollabWarpModule     = "warp-module"
)

// Build normalizes a finished state into the wire payload.
func Build(s physics.PipelineState) Payload {
	p := Payload{
		Mode:              string(s.Mode),
		ModelMode:         string(s.ModelMode),
		OverallStatus:     string(s.OverallStatus),
		SectorCount:       s.SectorCount,
		ConcurrentSectors: s.ConcurrentSectors,
		DutyLocal:         s.DutyLocal,
		DutyEffective:     s.DutyEffective,
		GapNm:             s.GapNm,
		TileAreaCm2:       s.TileAreaCm2,
		TileCount:         s.TileCount,
		HullAxesM:         s.HullAxesM,
		HullAreaM2:        s.HullAreaM2,
		TemperatureK:      s.TemperatureK,
		ModulationFreqGHz: s.ModFreqHz / 1e9,
		StrobeRateHz:      s.StrobeHz,

		UStaticJ: s.UStaticJ,
		UGeoJ:    s.UGeoJ,
		UQJ:      s.UQJ,

		GammaGeo: s.GammaGeo,
		QMech:    s.QMech,
		QSpoil:   s.QSpoil,
		CavityQ:  s.CavityQ,
		BurstQ:   physics.BurstWindowQ,

		VdbMassBoost:   s.VdbBoost,
		VdbVisualBoost: s.VdbVisual,

		PowerAvgMW:          s.PowerAvgMW,
		PowerAvgW:           s.PowerAvgMW * 1e6,
		ExoticMassKg:        s.ExoticMassKg,
		ExoticMassPerTileKg: s.ExoticMassPerTileKg,

		Zeta:                s.Zeta,
		TSRatio:             s.TSRatio,
		FordRomanCompliance: s.FordRomanCompliance,
		CalibrationClamped:  s.CalibrationClamped,
		AuditCorrected:      s.AuditCorrected,
	}

	if v, ok := s.Collab[CollabMetric]; ok {
		val := v
		p.MetricEnergyDensity = &val
	}
	if v, ok := s.Collab[CollabDynamicCasimir]; ok {
		val := v
		p.DynamicCasimirGain = &val
	}
	if v, ok := s.Collab[CollabWarpModule]; ok {
		val := v
		p.WarpFieldStrength = &val
	}
	return p
}
