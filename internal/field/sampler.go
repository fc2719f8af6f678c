// Package field derives the continuous displacement/curvature field over the
// ellipsoidal hull shell. This is the single shared implementation of the
// five-step chain (sector sign → wall window → bell weight → amplitude →
// soft clamp); telemetry, the safety panels, and the renderer adapter all go
// through it so two call sites can never silently diverge.
// See design doc Section 5.7.
package field

import (
	"math"

	"github.com/talgya/needle-hull/internal/physics"
)

// Shell profile constants, in axis-normalized radius units unless noted.
const (
	// DefaultWallWidthM is the physical bubble-wall width in metres; it is
	// converted to normalized units via the harmonic-mean hull radius.
	DefaultWallWidthM = 0.35
	// DefaultMaxPushM bounds the displacement magnitude in metres.
	DefaultMaxPushM = 0.15
	// DefaultSoftness shapes the tanh soft clamp knee.
	DefaultSoftness = 2.0

	// Raised-cosine wall window: fully open inside the pass band, fully
	// closed beyond the stop band, smooth in between.
	wallPassBand = 0.15
	wallStopBand = 0.45

	// polaritySoftness smooths the bow/stern sign flip across the
	// normalized long-axis coordinate, keeping the field continuous.
	polaritySoftness = 0.2
)

// Params is everything the chain needs from a finished pipeline state.
type Params struct {
	Axes         [3]float64
	SectorCount  int
	Concurrent   int
	ActiveSector int
	GammaGeo     float64
	QSpoil       float64
	WallWidthM   float64
	MaxPushM     float64
	Softness     float64
}

// FromState extracts sampling parameters from a finished state. Note the
// amplitude path uses the spoiling factor, never the mass-calibration knob.
func FromState(s physics.PipelineState) Params {
	count := s.SectorCount
	if count < 1 {
		count = 1
	}
	return Params{
		Axes:         s.HullAxesM,
		SectorCount:  count,
		Concurrent:   clampInt(s.ConcurrentSectors, 1, count),
		ActiveSector: 0,
		GammaGeo:     s.GammaGeo,
		QSpoil:       s.QSpoil,
		WallWidthM:   DefaultWallWidthM,
		MaxPushM:     DefaultMaxPushM,
		Softness:     DefaultSoftness,
	}
}

// Request describes one sampling pass.
type Request struct {
	ThetaSteps     int     `json:"theta_steps"` // azimuth around the long axis
	PhiSteps       int     `json:"phi_steps"`   // polar, bow to stern
	SectorOverride *int    `json:"sector_override,omitempty"`
	ShellOffset    float64 `json:"shell_offset"` // radial offset in normalized units
}

// Sample is one ellipsoid-surface point. Ephemeral: produced in batches and
// never persisted.
type Sample struct {
	Pos          [3]float64 `json:"pos"`
	Rho          float64    `json:"rho"`
	Bell         float64    `json:"bell"`
	Normal       [3]float64 `json:"normal"`
	SectorSign   float64    `json:"sector_sign"`
	Displacement float64    `json:"displacement"`
	AreaElement  float64    `json:"area_element"`
}

// EffectiveRadius is the harmonic-mean hull radius 3/(1/a+1/b+1/c) used to
// convert the physical wall width into normalized radius units.
func (p Params) EffectiveRadius() float64 {
	return 3 / (1/p.Axes[0] + 1/p.Axes[1] + 1/p.Axes[2])
}

// SectorSign maps azimuth θ to a continuous ±1 via the signed angular
// distance to the active sector arc, passed through tanh. No hard edges.
func (p Params) SectorSign(theta float64) float64 {
	width := 2 * math.Pi / float64(p.SectorCount)
	span := width * float64(p.Concurrent)
	center := float64(p.ActiveSector)*width + span/2

	// Positive inside the arc, negative outside, continuous across the wrap.
	d := span/2 - math.Abs(wrapAngle(theta-center))
	return math.Tanh(d / (width / 4))
}

// wallWindow is 1 inside the pass band, 0 beyond the stop band, with a
// raised-cosine ramp between. No hard cutoff at the shell.
func wallWindow(absSd float64) float64 {
	switch {
	case absSd <= wallPassBand:
		return 1
	case absSd >= wallStopBand:
		return 0
	default:
		t := (absSd - wallPassBand) / (wallStopBand - wallPassBand)
		return 0.5 * (1 + math.Cos(math.Pi*t))
	}
}

// Displace runs the full chain for one (θ, φ) surface point at the given
// shell offset. This is the exact function the batch sampler iterates and
// the renderer adapter calls per vertex.
func (p Params) Displace(theta, phi, shellOffset float64) Sample {
	a, b, c := p.Axes[0], p.Axes[1], p.Axes[2]
	scale := 1 + shellOffset

	sinP, cosP := math.Sincos(phi)
	sinT, cosT := math.Sincos(theta)

	// Surface point, long axis along x, scaled out to the sampled shell.
	pos := [3]float64{
		a * cosP * scale,
		b * sinP * cosT * scale,
		c * sinP * sinT * scale,
	}

	// Axis-normalized radius: exactly 1 on the surface, 1+offset on the
	// sampled shell.
	nx, ny, nz := pos[0]/a, pos[1]/b, pos[2]/c
	rho := math.Sqrt(nx*nx + ny*ny + nz*nz)
	sd := rho - 1

	// Bell weight with wall width in normalized radius units.
	w := p.WallWidthM / p.EffectiveRadius()
	bell := math.Exp(-(sd / w) * (sd / w))

	window := wallWindow(math.Abs(sd))
	sign := p.SectorSign(theta)
	polarity := math.Tanh(cosP / polaritySoftness)

	g3 := p.GammaGeo * p.GammaGeo * p.GammaGeo
	amplitude := g3 * p.QSpoil * window * bell * sign * polarity

	// Soft clamp: bounded output no matter how large the raw amplitude is.
	disp := p.MaxPushM * math.Tanh(amplitude/(p.Softness*p.MaxPushM))

	// Unit outward normal of the ellipsoid: ∇((x/a)²+(y/b)²+(z/c)²).
	gx, gy, gz := pos[0]/(a*a), pos[1]/(b*b), pos[2]/(c*c)
	gm := math.Sqrt(gx*gx + gy*gy + gz*gz)
	normal := [3]float64{gx / gm, gy / gm, gz / gm}

	return Sample{
		Pos:          pos,
		Rho:          rho,
		Bell:         bell,
		Normal:       normal,
		SectorSign:   sign,
		Displacement: disp,
		AreaElement:  areaElement(a, b, c, theta, phi),
	}
}

// areaElement is |r_θ × r_φ| for the parameterization used in Displace,
// from the first fundamental form. Callers multiply by their own Δθ·Δφ.
func areaElement(a, b, c, theta, phi float64) float64 {
	sinP, cosP := math.Sincos(phi)
	sinT, cosT := math.Sincos(theta)
	return sinP * math.Sqrt(
		b*b*c*c*cosP*cosP+
			a*a*c*c*sinP*sinP*cosT*cosT+
			a*a*b*b*sinP*sinP*sinT*sinT)
}

// SampleGrid evaluates the chain over a (θ, φ) grid. Pure: identical state
// and request yield identical sample slices, safe for concurrent callers.
func SampleGrid(s physics.PipelineState, req Request) []Sample {
	p := FromState(s)
	if req.SectorOverride != nil {
		p.ActiveSector = clampInt(*req.SectorOverride, 0, p.SectorCount-1)
	}

	thetaSteps := req.ThetaSteps
	if thetaSteps < 1 {
		thetaSteps = 64
	}
	phiSteps := req.PhiSteps
	if phiSteps < 1 {
		phiSteps = 32
	}

	samples := make([]Sample, 0, thetaSteps*phiSteps)
	for i := 0; i < phiSteps; i++ {
		// Midpoint rule in φ avoids the degenerate poles.
		phi := (float64(i) + 0.5) * math.Pi / float64(phiSteps)
		for j := 0; j < thetaSteps; j++ {
			theta := float64(j) * 2 * math.Pi / float64(thetaSteps)
			samples = append(samples, p.Displace(theta, phi, req.ShellOffset))
		}
	}
	return samples
}

// wrapAngle maps an angle difference into (−π, π].
func wrapAngle(d float64) float64 {
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
