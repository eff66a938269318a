package rendering

import (
	"github.com/go-gl/mathgl/mgl32"

	"cloudsky/core"
	"cloudsky/noise"
)

// Texture units the three noise volumes are bound to while drawing.
const (
	UnitMain    = 0
	UnitWeather = 1
	UnitDetail  = 2
)

// SamplerUniform names the sampler uniform of a noise layer.
func SamplerUniform(layer noise.Layer) string {
	switch layer {
	case noise.LayerWeather:
		return "noise_weather_texture"
	case noise.LayerDetail:
		return "noise_detail_texture"
	}
	return "noise_main_texture"
}

// TextureUnit returns the unit a layer's volume is bound to.
func TextureUnit(layer noise.Layer) int32 {
	switch layer {
	case noise.LayerWeather:
		return UnitWeather
	case noise.LayerDetail:
		return UnitDetail
	}
	return UnitMain
}

// UniformSetter is the subset of a compiled program the frame protocol
// needs. Unknown names must be tolerated.
type UniformSetter interface {
	Set1i(name string, v int32)
	Set1f(name string, v float32)
	Set2f(name string, x, y float32)
	SetVec2(name string, v mgl32.Vec2)
	SetVec3(name string, v mgl32.Vec3)
	SetMat4(name string, m mgl32.Mat4)
}

// PushSamplers binds each noise sampler uniform to its texture unit.
func PushSamplers(u UniformSetter) {
	for _, l := range noise.Layers {
		u.Set1i(SamplerUniform(l), TextureUnit(l))
	}
}

// PushFrame uploads every per-frame uniform of the cloud program.
func PushFrame(u UniformSetter, f FrameState) {
	p := f.Params

	u.Set1i("frame", int32(f.Frame))
	u.Set2f("resolution", float32(f.Width), float32(f.Height))
	u.SetVec3("camera_location", f.CameraLocation)
	u.SetMat4("view_matrix", f.View)

	sky := int32(0)
	if p.Sky.Enabled {
		sky = 1
	}
	u.Set1i("render_sky", sky)
	u.SetVec3("background_color", p.Sky.BackgroundColor)
	u.SetVec3("light_direction", p.LightDirection())
	u.SetVec3("inverse_light_direction", p.InverseLightDirection())

	u.SetVec3("cloud_location", p.Cloud.Location)
	u.SetVec3("cloud_volume", p.Cloud.HalfExtents)
	u.Set1f("cloud_absorption", p.Cloud.Absorption)
	u.Set1f("cloud_density_threshold", p.Cloud.DensityThreshold)
	u.Set1f("cloud_density_multiplier", p.Cloud.DensityMult)
	u.Set1f("cloud_volume_edge_fade_distance", p.Cloud.EdgeFadeDistance)

	u.Set1i("render_volume_samples", sampleCount(p.March.VolumeSamples))
	u.Set1i("render_in_scatter_samples", sampleCount(p.March.InScatterSamples))
	u.Set1f("render_shadowing_max_distance", p.March.ShadowingMaxDistance)
	u.Set1f("render_shadowing_weight", p.March.ShadowingWeight)

	u.Set1f("noise_main_scale", p.Noise.MainScale)
	u.SetVec3("noise_main_offset", p.Noise.MainOffset)
	u.Set1f("noise_weather_scale", p.Noise.WeatherScale)
	u.SetVec2("noise_weather_offset", p.Noise.WeatherOffset)
	u.Set1f("noise_detail_scale", p.Noise.DetailScale)
	u.SetVec3("noise_detail_offset", p.Noise.DetailOffset)
	u.Set1f("noise_detail_weight", p.Noise.DetailWeight)

	u.SetVec3("wind_vector", p.Wind.Vector)
	u.Set1f("wind_main_weight", p.Wind.MainWeight)
	u.Set1f("wind_weather_weight", p.Wind.WeatherWeight)
	u.Set1f("wind_detail_weight", p.Wind.DetailWeight)
}

// sampleCount narrows a sample count to the uniform type within
// [0, core.MaxSamples].
func sampleCount(n int) int32 {
	return int32(min(max(n, 0), core.MaxSamples))
}
