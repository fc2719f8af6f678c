package field

import "math"

// Renderer-side entry point. Mesh warping used to re-implement the sampling
// chain per vertex; it now recovers the shell coordinates of each vertex and
// calls the same Displace as telemetry, so the two can never disagree on
// parameters.

// DisplaceVertex warps one mesh vertex near the shell: it recovers
// (θ, φ, shell offset) from the vertex position and pushes the vertex along
// the outward normal by the chain's displacement.
func (p Params) DisplaceVertex(v [3]float64) [3]float64 {
	a, b, c := p.Axes[0], p.Axes[1], p.Axes[2]

	nx, ny, nz := v[0]/a, v[1]/b, v[2]/c
	rho := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if rho == 0 {
		return v
	}

	phi := math.Acos(clampF(nx/rho, -1, 1))
	theta := math.Atan2(nz, ny)
	if theta < 0 {
		theta += 2 * math.Pi
	}

	s := p.Displace(theta, phi, rho-1)
	return [3]float64{
		v[0] + s.Normal[0]*s.Displacement,
		v[1] + s.Normal[1]*s.Displacement,
		v[2] + s.Normal[2]*s.Displacement,
	}
}

// WarpMesh displaces a vertex buffer in place and returns it.
func (p Params) WarpMesh(vertices [][3]float64) [][3]float64 {
	for i, v := range vertices {
		vertices[i] = p.DisplaceVertex(v)
	}
	return vertices
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
