package physics

import (
	"context"
	"log/slog"
)

// Collaborator is an independent external module evaluated after a
// recompute. Failures are caught and degraded to a missing optional value;
// they never abort the pipeline.
type Collaborator interface {
	Name() string
	Evaluate(ctx context.Context, s PipelineState) (float64, error)
}

// Engine owns one PipelineState and the optional collaborator set. There is
// deliberately no process-wide instance: every simulation or test builds its
// own Engine. The Engine does no locking; concurrent callers serialize
// access themselves.
type Engine struct {
	state         PipelineState
	collaborators []Collaborator
}

// NewEngine returns an engine seeded with the documented defaults.
func NewEngine(collaborators ...Collaborator) *Engine {
	return &Engine{
		state:         NewPipelineState(),
		collaborators: collaborators,
	}
}

// State returns a copy of the current state.
func (e *Engine) State() PipelineState { return e.state }

// SetState replaces the current state wholesale (e.g. restored history).
func (e *Engine) SetState(s PipelineState) { e.state = s }

// Recompute is the pure pipeline: mode policy → lattice census → Casimir
// cascade → duty scheduling → power calibration → mass calibration → safety
// audit. It takes the state by value and returns the finished configuration;
// for unchanged inputs it is idempotent modulo the audit correction step.
func Recompute(s PipelineState) PipelineState {
	// Derived flags are re-earned on every pass.
	s.CalibrationClamped = false
	s.AuditCorrected = false
	s.Collab = nil

	latticeStage(&s)
	casimirStage(&s)
	dutyStage(&s)
	powerStage(&s)
	massStage(&s)
	auditStage(&s)
	return s
}

// Recompute runs the pure pipeline on the owned state, then consults each
// collaborator. A collaborator error leaves its output absent and is logged,
// nothing more.
func (e *Engine) Recompute(ctx context.Context) PipelineState {
	s := Recompute(e.state)

	for _, c := range e.collaborators {
		if c == nil {
			continue
		}
		val, err := c.Evaluate(ctx, s)
		if err != nil {
			slog.Warn("collaborator failed", "name", c.Name(), "error", err)
			continue
		}
		if s.Collab == nil {
			s.Collab = make(map[string]float64, len(e.collaborators))
		}
		s.Collab[c.Name()] = val
	}

	e.state = s
	return s
}

// SwitchMode sets the operating mode and recomputes.
func (e *Engine) SwitchMode(ctx context.Context, m Mode) PipelineState {
	e.state.Mode = m
	return e.Recompute(ctx)
}

// Partial is a sparse parameter update: nil fields are left untouched.
type Partial struct {
	TileAreaCm2  *float64    `json:"tile_area_cm2,omitempty"`
	HullAxesM    *[3]float64 `json:"hull_axes_m,omitempty"`
	GapNm        *float64    `json:"gap_nm,omitempty"`
	TemperatureK *float64    `json:"temperature_k,omitempty"`
	ModFreqHz    *float64    `json:"mod_freq_hz,omitempty"`
	Mode         *Mode       `json:"mode,omitempty"`
	ModelMode    *ModelMode  `json:"model_mode,omitempty"`
	MassTargetKg *float64    `json:"mass_target_kg,omitempty"`
	SectorCount  *int        `json:"sector_count,omitempty"`
	StrobeHz     *float64    `json:"strobe_hz,omitempty"`
	GammaGeo     *float64    `json:"gamma_geo,omitempty"`
	QMech        *float64    `json:"q_mech,omitempty"`
	CavityQ      *float64    `json:"cavity_q,omitempty"`
	VdbBoost     *float64    `json:"vdb_boost,omitempty"`
	QSpoil       *float64    `json:"q_spoil,omitempty"`
}

// UpdateParameters merges the partial into the owned state and recomputes.
func (e *Engine) UpdateParameters(ctx context.Context, p Partial) PipelineState {
	merge(&e.state, p)
	return e.Recompute(ctx)
}

func merge(s *PipelineState, p Partial) {
	if p.TileAreaCm2 != nil {
		s.TileAreaCm2 = *p.TileAreaCm2
	}
	if p.HullAxesM != nil {
		s.HullAxesM = *p.HullAxesM
	}
	if p.GapNm != nil {
		s.GapNm = *p.GapNm
	}
	if p.TemperatureK != nil {
		s.TemperatureK = *p.TemperatureK
	}
	if p.ModFreqHz != nil {
		s.ModFreqHz = *p.ModFreqHz
	}
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.ModelMode != nil {
		s.ModelMode = *p.ModelMode
	}
	if p.MassTargetKg != nil {
		s.MassTargetKg = *p.MassTargetKg
	}
	if p.SectorCount != nil {
		s.SectorCount = *p.SectorCount
	}
	if p.StrobeHz != nil {
		s.StrobeHz = *p.StrobeHz
	}
	if p.GammaGeo != nil {
		s.GammaGeo = *p.GammaGeo
	}
	if p.QMech != nil {
		s.QMech = *p.QMech
	}
	if p.CavityQ != nil {
		s.CavityQ = *p.CavityQ
	}
	if p.VdbBoost != nil {
		s.VdbBoost = *p.VdbBoost
	}
	if p.QSpoil != nil {
		s.QSpoil = *p.QSpoil
	}
}
