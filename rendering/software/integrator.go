// Package software runs the cloud integrator on the CPU. It mirrors the
// fragment shader of the OpenGL renderer and is what the headless tools and
// the tests render with.
package software

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"cloudsky/atmosphere"
	"cloudsky/core"
	"cloudsky/noise"
	"cloudsky/rendering"
)

const (
	// Anisotropy is the Henyey-Greenstein g of the cloud medium.
	Anisotropy = 0.2
	// MinTransmittance ends a march once almost no light gets through.
	MinTransmittance = 0.01
)

// Volumes are the three noise fields sampled by the density function.
type Volumes struct {
	Main    noise.Sampler3D
	Weather noise.Sampler2D
	Detail  noise.Sampler3D
}

// RayBox intersects a ray with an axis-aligned box using the slab method.
// invDir is the component-wise reciprocal of the direction. entry is clamped
// to zero for origins inside the box; length is zero when the ray misses.
func RayBox(origin, invDir, lo, hi mgl32.Vec3) (entry, length float32) {
	near := float32(math.Inf(-1))
	far := float32(math.Inf(1))
	for a := 0; a < 3; a++ {
		// Parallel to this slab: inside it for the whole ray or never.
		if math.IsInf(float64(invDir[a]), 0) {
			if origin[a] < lo[a] || origin[a] > hi[a] {
				return 0, 0
			}
			continue
		}
		t0 := (lo[a] - origin[a]) * invDir[a]
		t1 := (hi[a] - origin[a]) * invDir[a]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		near = max(near, t0)
		far = min(far, t1)
	}
	entry = max(0, near)
	length = max(0, far-entry)
	return entry, length
}

// HenyeyGreenstein is the phase function used for the silver lining toward
// the sun. cos is the cosine between the view ray and the light direction.
func HenyeyGreenstein(g, cos float32) float32 {
	g2 := g * g
	return (1 - g2) / float32(math.Pow(float64(1+g2-2*g*cos), 1.5))
}

// Integrator evaluates one frame's worth of cloud and sky shading.
type Integrator struct {
	Params  core.RenderParameters
	Volumes Volumes
	Sky     atmosphere.Model
	Time    float32

	// Trace, when set, observes the transmittance after every march step.
	Trace func(step int, transmittance float32)

	lo, hi   mgl32.Vec3
	light    mgl32.Vec3
	invLight mgl32.Vec3
}

// NewIntegrator prepares the integrator for one frame.
func NewIntegrator(f rendering.FrameState, v Volumes, sky atmosphere.Model) *Integrator {
	it := &Integrator{Params: f.Params, Volumes: v, Sky: sky, Time: f.Time()}
	it.lo, it.hi = f.Params.Cloud.Bounds()
	it.light = f.Params.LightDirection()
	it.invLight = f.Params.InverseLightDirection()
	return it
}

// Density is the cloud extinction at world position p. It is never
// negative.
func (it *Integrator) Density(p mgl32.Vec3) float32 {
	c := it.Params.Cloud
	n := it.Params.Noise
	w := it.Params.Wind

	edge := float32(1)
	if c.EdgeFadeDistance > 0 {
		dx := min(c.EdgeFadeDistance, p[0]-it.lo[0], it.hi[0]-p[0])
		dz := min(c.EdgeFadeDistance, p[2]-it.lo[2], it.hi[2]-p[2])
		edge = mgl32.Clamp(min(dx, dz)/c.EdgeFadeDistance, 0, 1)
	}

	var height float32
	if span := 2 * c.HalfExtents[1]; span > 0 {
		h := (p[1] - it.lo[1]) / span
		height = max(0, 1-h*h*h*h)
	}

	weatherAt := mgl32.Vec2{p[0], p[2]}.Mul(1 / nonZero(n.WeatherScale)).
		Add(n.WeatherOffset).
		Add(mgl32.Vec2{w.Vector[0], w.Vector[2]}.Mul(w.WeatherWeight * it.Time))
	weather := max(it.Volumes.Weather.Sample2(weatherAt)-c.DensityThreshold, 0)

	mainAt := p.Mul(1 / nonZero(n.MainScale)).Add(n.MainOffset).Add(w.Vector.Mul(w.MainWeight * it.Time))
	shape := it.Volumes.Main.Sample3(mainAt)

	density := max(0, shape*height*weather*edge-c.DensityThreshold)
	if density <= 0 {
		return 0
	}
	detailAt := p.Mul(1 / nonZero(n.DetailScale)).Add(n.DetailOffset).Add(w.Vector.Mul(w.DetailWeight * it.Time))
	density -= it.Volumes.Detail.Sample3(detailAt) * n.DetailWeight
	return max(0, density*c.DensityMult)
}

// InScatter estimates how much sunlight reaches p through the cloud. The
// result blends between unshadowed (1) and fully self-shadowed by the
// shadowing weight.
func (it *Integrator) InScatter(p mgl32.Vec3) float32 {
	m := it.Params.March
	_, dist := RayBox(p, it.invLight, it.lo, it.hi)
	dist = min(m.ShadowingMaxDistance, dist)

	var total float32
	if n := min(m.InScatterSamples, core.MaxSamples); n > 0 && dist > 0 {
		step := dist / float32(n)
		for i := 0; i < n; i++ {
			total += it.Density(p) * step
			p = p.Add(it.light.Mul(step))
		}
	}
	absorbed := float32(math.Exp(float64(-total * it.Params.Cloud.Absorption)))
	return (1 - m.ShadowingWeight) + absorbed*m.ShadowingWeight
}

// March integrates the cloud along a ray and returns the in-scattered
// light and the transmittance left at the end.
func (it *Integrator) March(origin, dir mgl32.Vec3) (light, transmittance float32) {
	transmittance = 1
	samples := min(it.Params.March.VolumeSamples, core.MaxSamples)
	inv := mgl32.Vec3{1 / dir[0], 1 / dir[1], 1 / dir[2]}
	entry, length := RayBox(origin, inv, it.lo, it.hi)
	if length <= 0 || samples <= 0 {
		return 0, transmittance
	}

	step := length / float32(samples)
	phase := HenyeyGreenstein(Anisotropy, dir.Dot(it.light))
	for i := 0; i < samples; i++ {
		pos := origin.Add(dir.Mul(entry + step*float32(i)))
		density := it.Density(pos)
		transmittance *= float32(math.Exp(float64(-density * step)))
		if it.Trace != nil {
			it.Trace(i, transmittance)
		}
		if transmittance < MinTransmittance {
			break
		}
		light += density * step * it.InScatter(pos) * transmittance * phase
	}
	return light, transmittance
}

// Shade returns the final colour seen along a ray: the sky attenuated by
// the cloud plus the light the cloud scatters toward the viewer.
func (it *Integrator) Shade(origin, dir mgl32.Vec3) mgl32.Vec3 {
	sky := it.Params.Sky.BackgroundColor
	if it.Params.Sky.Enabled {
		sky = it.Sky.Sky(origin, dir, it.light)
	}
	cloud, t := it.March(origin, dir)
	return sky.Mul(t).Add(mgl32.Vec3{cloud, cloud, cloud})
}

func nonZero(s float32) float32 {
	if s == 0 {
		return 1
	}
	return s
}
