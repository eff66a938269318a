package core

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownParameter is returned by RenderParameters.Set for names that do
// not address an editable value.
var ErrUnknownParameter = errors.New("unknown render parameter")

// SkyParams controls the background behind the clouds.
type SkyParams struct {
	Enabled         bool       `json:"render_sky"`
	BackgroundColor mgl32.Vec3 `json:"background_color"`
	// lightDirection points from the scene toward the sun and is kept unit
	// length; dayTime is the slider value it was derived from.
	lightDirection mgl32.Vec3
	dayTime        float32
}

// CloudParams describes the cloud bounding box and its medium.
type CloudParams struct {
	Location         mgl32.Vec3 `json:"cloud_location"`
	HalfExtents      mgl32.Vec3 `json:"cloud_volume"`
	Absorption       float32    `json:"cloud_absorption"`
	DensityThreshold float32    `json:"cloud_density_threshold"`
	DensityMult      float32    `json:"cloud_density_multiplier"`
	EdgeFadeDistance float32    `json:"cloud_volume_edge_fade_distance"`
}

// Bounds returns the lower and upper corners of the box.
func (c CloudParams) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	return c.Location.Sub(c.HalfExtents), c.Location.Add(c.HalfExtents)
}

// MaxSamples caps both march sample counts. Edits above it are clamped.
const MaxSamples = 1024

// MarchParams sets the sample budget of the integrator.
type MarchParams struct {
	VolumeSamples        int     `json:"render_volume_samples"`
	InScatterSamples     int     `json:"render_in_scatter_samples"`
	ShadowingMaxDistance float32 `json:"render_shadowing_max_distance"`
	ShadowingWeight      float32 `json:"render_shadowing_weight"`
}

// NoiseParams maps world space onto the three noise volumes.
type NoiseParams struct {
	MainScale     float32    `json:"noise_main_scale"`
	MainOffset    mgl32.Vec3 `json:"noise_main_offset"`
	WeatherScale  float32    `json:"noise_weather_scale"`
	WeatherOffset mgl32.Vec2 `json:"noise_weather_offset"`
	DetailScale   float32    `json:"noise_detail_scale"`
	DetailOffset  mgl32.Vec3 `json:"noise_detail_offset"`
	DetailWeight  float32    `json:"noise_detail_weight"`
}

// WindParams advects each noise layer over time.
type WindParams struct {
	Vector        mgl32.Vec3 `json:"wind_vector"`
	MainWeight    float32    `json:"wind_main_weight"`
	WeatherWeight float32    `json:"wind_weather_weight"`
	DetailWeight  float32    `json:"wind_detail_weight"`
}

// RenderParameters is the full set of values fed to the integrator each
// frame. It is owned by the frame driver and copied into every FrameState.
type RenderParameters struct {
	Sky   SkyParams
	Cloud CloudParams
	March MarchParams
	Noise NoiseParams
	Wind  WindParams
}

// DefaultRenderParameters returns the startup state: cumulus clouds under a
// mid-morning sun.
func DefaultRenderParameters() RenderParameters {
	p := RenderParameters{
		Sky: SkyParams{
			Enabled:         true,
			BackgroundColor: mgl32.Vec3{0.45, 0.6, 0.8},
		},
	}
	p.SetDayTime(10)
	if preset, err := PresetByName(DefaultPreset); err == nil {
		preset.Apply(&p)
	}
	return p
}

// LightDirection returns the unit vector toward the sun.
func (p *RenderParameters) LightDirection() mgl32.Vec3 {
	return p.Sky.lightDirection
}

// DayTime returns the hour the light direction corresponds to.
func (p *RenderParameters) DayTime() float32 {
	return p.Sky.dayTime
}

// SetLightDirection normalizes v and stores it. A zero vector is ignored so
// the direction can never lose unit length.
func (p *RenderParameters) SetLightDirection(v mgl32.Vec3) {
	n, ok := normalize(v)
	if !ok {
		return
	}
	p.Sky.lightDirection = n
	p.Sky.dayTime = DayTimeFromDirection(n)
}

// SetDayTime moves the sun along its daily arc.
func (p *RenderParameters) SetDayTime(hours float32) {
	p.Sky.dayTime = WrapHours(hours)
	p.Sky.lightDirection = SunDirection(p.Sky.dayTime)
}

// InverseLightDirection is the component-wise reciprocal used by the slab
// test toward the light.
func (p *RenderParameters) InverseLightDirection() mgl32.Vec3 {
	l := p.Sky.lightDirection
	return mgl32.Vec3{1 / l[0], 1 / l[1], 1 / l[2]}
}

// Set edits one value by its uniform name. Vector values take one float per
// component.
func (p *RenderParameters) Set(name string, values []float32) error {
	switch name {
	case "render_sky":
		return setBool(&p.Sky.Enabled, name, values)
	case "background_color":
		return setVec3(&p.Sky.BackgroundColor, name, values)
	case "light_direction":
		var v mgl32.Vec3
		if err := setVec3(&v, name, values); err != nil {
			return err
		}
		p.SetLightDirection(v)
		return nil
	case "day_time":
		var h float32
		if err := setFloat(&h, name, values); err != nil {
			return err
		}
		p.SetDayTime(h)
		return nil

	case "cloud_location":
		return setVec3(&p.Cloud.Location, name, values)
	case "cloud_volume":
		return setVec3(&p.Cloud.HalfExtents, name, values)
	case "cloud_absorption":
		return setFloat(&p.Cloud.Absorption, name, values)
	case "cloud_density_threshold":
		return setFloat(&p.Cloud.DensityThreshold, name, values)
	case "cloud_density_multiplier":
		return setFloat(&p.Cloud.DensityMult, name, values)
	case "cloud_volume_edge_fade_distance":
		return setFloat(&p.Cloud.EdgeFadeDistance, name, values)

	case "render_volume_samples":
		return setInt(&p.March.VolumeSamples, name, values)
	case "render_in_scatter_samples":
		return setInt(&p.March.InScatterSamples, name, values)
	case "render_shadowing_max_distance":
		return setFloat(&p.March.ShadowingMaxDistance, name, values)
	case "render_shadowing_weight":
		return setFloat(&p.March.ShadowingWeight, name, values)

	case "noise_main_scale":
		return setFloat(&p.Noise.MainScale, name, values)
	case "noise_main_offset":
		return setVec3(&p.Noise.MainOffset, name, values)
	case "noise_weather_scale":
		return setFloat(&p.Noise.WeatherScale, name, values)
	case "noise_weather_offset":
		return setVec2(&p.Noise.WeatherOffset, name, values)
	case "noise_detail_scale":
		return setFloat(&p.Noise.DetailScale, name, values)
	case "noise_detail_offset":
		return setVec3(&p.Noise.DetailOffset, name, values)
	case "noise_detail_weight":
		return setFloat(&p.Noise.DetailWeight, name, values)

	case "wind_vector":
		return setVec3(&p.Wind.Vector, name, values)
	case "wind_main_weight":
		return setFloat(&p.Wind.MainWeight, name, values)
	case "wind_weather_weight":
		return setFloat(&p.Wind.WeatherWeight, name, values)
	case "wind_detail_weight":
		return setFloat(&p.Wind.DetailWeight, name, values)
	}
	return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

func arity(name string, values []float32, n int) error {
	if len(values) != n {
		return fmt.Errorf("%s: want %d values, got %d", name, n, len(values))
	}
	return nil
}

func setFloat(dst *float32, name string, values []float32) error {
	if err := arity(name, values, 1); err != nil {
		return err
	}
	*dst = values[0]
	return nil
}

func setInt(dst *int, name string, values []float32) error {
	if err := arity(name, values, 1); err != nil {
		return err
	}
	v := values[0]
	if v != v || v < 0 {
		return fmt.Errorf("%s: sample count must be a non-negative number", name)
	}
	*dst = int(mgl32.Clamp(v, 0, MaxSamples))
	return nil
}

func setBool(dst *bool, name string, values []float32) error {
	if err := arity(name, values, 1); err != nil {
		return err
	}
	*dst = values[0] != 0
	return nil
}

func setVec2(dst *mgl32.Vec2, name string, values []float32) error {
	if err := arity(name, values, 2); err != nil {
		return err
	}
	*dst = mgl32.Vec2{values[0], values[1]}
	return nil
}

func setVec3(dst *mgl32.Vec3, name string, values []float32) error {
	if err := arity(name, values, 3); err != nil {
		return err
	}
	*dst = mgl32.Vec3{values[0], values[1], values[2]}
	return nil
}
