// Package atmosphere evaluates a single-scattering Rayleigh + Mie sky over
// an idealized spherical planet.
package atmosphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Model holds the planetary constants. Distances are in metres. The viewer
// stands on the surface at the origin, so the planet centre sits one surface
// radius below it.
type Model struct {
	SurfaceRadius    float64
	AtmosphereRadius float64
	SunIntensity     float64

	Rayleigh mgl64.Vec3
	MieUpper mgl64.Vec3
	MieLower mgl64.Vec3

	RayleighScaleHeight float64
	MieScaleHeight      float64

	ViewSamples  int
	LightSamples int

	Center mgl64.Vec3
}

// Earth returns the default planet.
func Earth() Model {
	const surface = 6360e3
	mie := mgl64.Vec3{2e-5, 2e-5, 2e-5}
	return Model{
		SurfaceRadius:       surface,
		AtmosphereRadius:    6380e3,
		SunIntensity:        8.2,
		Rayleigh:            mgl64.Vec3{58e-7, 135e-7, 331e-7},
		MieUpper:            mie,
		MieLower:            mie.Mul(1.1),
		RayleighScaleHeight: 8e3,
		MieScaleHeight:      1.2e3,
		ViewSamples:         16,
		LightSamples:        4,
		Center:              mgl64.Vec3{0, -surface, 0},
	}
}

// Density returns the relative Rayleigh and Mie particle densities at p.
func (m Model) Density(p mgl64.Vec3) (rayleigh, mie float64) {
	h := math.Max(0, p.Sub(m.Center).Len()-m.SurfaceRadius)
	return math.Exp(-h / m.RayleighScaleHeight), math.Exp(-h / m.MieScaleHeight)
}

// Intersect returns the distance along dir from origin to the sphere of the
// given radius around the planet centre, preferring the near hit when it
// lies ahead. It returns -1 when the ray misses the sphere or the sphere
// lies entirely behind the origin.
func (m Model) Intersect(origin, dir mgl64.Vec3, radius float64) float64 {
	v := origin.Sub(m.Center)
	b := v.Dot(dir)
	d := b*b - v.Dot(v) + radius*radius
	if d < 0 {
		return -1
	}
	d = math.Sqrt(d)
	if r1 := -b - d; r1 >= 0 {
		return r1
	}
	if r2 := -b + d; r2 >= 0 {
		return r2
	}
	return -1
}

// Scatter integrates in-scattered sunlight along length metres of the ray.
// light must be unit length and point toward the sun.
func (m Model) Scatter(origin, dir, light mgl64.Vec3, length float64) mgl64.Vec3 {
	var (
		depthR, depthM float64
		sumR, sumM     mgl64.Vec3
	)
	viewStep := length / float64(m.ViewSamples)
	for i := 0; i < m.ViewSamples; i++ {
		point := origin.Add(dir.Mul(viewStep * float64(i)))
		r, mie := m.Density(point)
		r, mie = r*viewStep, mie*viewStep
		depthR += r
		depthM += mie

		lightR, lightM := m.lightDepth(point, light)
		totalR, totalM := depthR+lightR, depthM+lightM
		att := mgl64.Vec3{
			math.Exp(-m.Rayleigh[0]*totalR - m.MieUpper[0]*totalM),
			math.Exp(-m.Rayleigh[1]*totalR - m.MieUpper[1]*totalM),
			math.Exp(-m.Rayleigh[2]*totalR - m.MieUpper[2]*totalM),
		}
		sumR = sumR.Add(att.Mul(r))
		sumM = sumM.Add(att.Mul(mie))
	}

	mu := dir.Dot(light)
	miePhase := 0.0196 / math.Pow(1.58-1.52*mu, 1.5)
	var out mgl64.Vec3
	for c := 0; c < 3; c++ {
		v := m.SunIntensity * (1 + mu*mu) * (sumR[c]*m.Rayleigh[c]*0.0597 + sumM[c]*m.MieLower[c]*miePhase)
		out[c] = math.Sqrt(math.Max(0, v))
	}
	return out
}

// lightDepth is the optical depth from point to the top of the atmosphere
// toward the sun.
func (m Model) lightDepth(point, light mgl64.Vec3) (float64, float64) {
	l := m.Intersect(point, light, m.AtmosphereRadius)
	if l <= 0 {
		return 0, 0
	}
	step := l / float64(m.LightSamples)
	var r, mie float64
	for j := 0; j < m.LightSamples; j++ {
		dr, dm := m.Density(point.Add(light.Mul(step * float64(j))))
		r += dr
		mie += dm
	}
	return r * step, mie * step
}

// Sky returns the sky colour seen from origin along dir. Rays that never
// reach the atmosphere shell are black.
func (m Model) Sky(origin, dir, light mgl32.Vec3) mgl32.Vec3 {
	o, d, l := widen(origin), widen(dir), widen(light)
	length := m.Intersect(o, d, m.AtmosphereRadius)
	if length < 0 {
		return mgl32.Vec3{}
	}
	c := m.Scatter(o, d, l, length)
	return mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}
}

func widen(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
