package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"cloudsky/noise"
)

// DefaultPreset is loaded at startup.
const DefaultPreset = "cumulus"

// ErrUnknownPreset is returned by PresetByName.
var ErrUnknownPreset = errors.New("unknown cloud preset")

// Preset is a named cloud archetype. Loading one replaces every cloud,
// march, noise and wind parameter and the bake settings of all three
// layers; sky settings are left alone.
type Preset struct {
	Name  string
	Cloud CloudParams
	March MarchParams
	Noise NoiseParams
	Wind  WindParams
	Bake  [3]noise.BakeSettings
}

// Apply copies the preset's render parameters into p.
func (pr Preset) Apply(p *RenderParameters) {
	p.Cloud = pr.Cloud
	p.March = pr.March
	p.Noise = pr.Noise
	p.Wind = pr.Wind
}

// BakeSettings returns the settings the preset bakes the given layer with.
func (pr Preset) BakeSettings(layer noise.Layer) noise.BakeSettings {
	return pr.Bake[layer]
}

// Presets returns the preset table in display order. The slice is a fresh
// copy on every call.
func Presets() []Preset {
	return []Preset{
		{
			Name: "cumulus",
			Cloud: CloudParams{
				Location:         mgl32.Vec3{0, 220, 0},
				HalfExtents:      mgl32.Vec3{900, 60, 900},
				Absorption:       0.6,
				DensityThreshold: 0.02,
				DensityMult:      3.5,
				EdgeFadeDistance: 120,
			},
			March: MarchParams{VolumeSamples: 64, InScatterSamples: 8, ShadowingMaxDistance: 60, ShadowingWeight: 0.85},
			Noise: NoiseParams{
				MainScale:     320,
				WeatherScale:  1400,
				WeatherOffset: mgl32.Vec2{0.13, 0.41},
				DetailScale:   70,
				DetailWeight:  0.15,
			},
			Wind: WindParams{Vector: mgl32.Vec3{1, 0, 0.4}, MainWeight: 0.8, WeatherWeight: 0.25, DetailWeight: 2},
			Bake: [3]noise.BakeSettings{
				{Resolution: 128, Persistence: 0.5, SubdivisionsA: 3, SubdivisionsB: 7, SubdivisionsC: 13},
				{Resolution: 256, Persistence: 0.45, SubdivisionsA: 4, SubdivisionsB: 9, SubdivisionsC: 18},
				{Resolution: 64, Persistence: 0.6, SubdivisionsA: 6, SubdivisionsB: 12, SubdivisionsC: 24},
			},
		},
		{
			Name: "stratus",
			Cloud: CloudParams{
				Location:         mgl32.Vec3{0, 160, 0},
				HalfExtents:      mgl32.Vec3{1500, 20, 1500},
				Absorption:       0.4,
				DensityThreshold: 0.005,
				DensityMult:      2,
				EdgeFadeDistance: 300,
			},
			March: MarchParams{VolumeSamples: 48, InScatterSamples: 6, ShadowingMaxDistance: 30, ShadowingWeight: 0.6},
			Noise: NoiseParams{
				MainScale:     900,
				WeatherScale:  3000,
				WeatherOffset: mgl32.Vec2{0.5, 0.5},
				DetailScale:   120,
				DetailWeight:  0.05,
			},
			Wind: WindParams{Vector: mgl32.Vec3{0.6, 0, 0.2}, MainWeight: 0.4, WeatherWeight: 0.1, DetailWeight: 1},
			Bake: [3]noise.BakeSettings{
				{Resolution: 128, Persistence: 0.7, SubdivisionsA: 2, SubdivisionsB: 5, SubdivisionsC: 10},
				{Resolution: 256, Persistence: 0.7, SubdivisionsA: 2, SubdivisionsB: 4, SubdivisionsC: 8},
				{Resolution: 64, Persistence: 0.5, SubdivisionsA: 5, SubdivisionsB: 10, SubdivisionsC: 20},
			},
		},
		{
			Name: "cirrus",
			Cloud: CloudParams{
				Location:         mgl32.Vec3{0, 600, 0},
				HalfExtents:      mgl32.Vec3{2000, 15, 2000},
				Absorption:       0.2,
				DensityThreshold: 0.04,
				DensityMult:      1.2,
				EdgeFadeDistance: 400,
			},
			March: MarchParams{VolumeSamples: 32, InScatterSamples: 4, ShadowingMaxDistance: 20, ShadowingWeight: 0.3},
			Noise: NoiseParams{
				MainScale:     600,
				WeatherScale:  2500,
				WeatherOffset: mgl32.Vec2{0.7, 0.2},
				DetailScale:   40,
				DetailWeight:  0.3,
			},
			Wind: WindParams{Vector: mgl32.Vec3{2, 0, 0.1}, MainWeight: 1.5, WeatherWeight: 0.5, DetailWeight: 3},
			Bake: [3]noise.BakeSettings{
				{Resolution: 128, Persistence: 0.4, SubdivisionsA: 4, SubdivisionsB: 10, SubdivisionsC: 20},
				{Resolution: 256, Persistence: 0.35, SubdivisionsA: 6, SubdivisionsB: 14, SubdivisionsC: 28},
				{Resolution: 64, Persistence: 0.6, SubdivisionsA: 8, SubdivisionsB: 16, SubdivisionsC: 32},
			},
		},
		{
			Name: "overcast",
			Cloud: CloudParams{
				Location:         mgl32.Vec3{0, 200, 0},
				HalfExtents:      mgl32.Vec3{2500, 80, 2500},
				Absorption:       0.9,
				DensityThreshold: 0,
				DensityMult:      5,
				EdgeFadeDistance: 500,
			},
			March: MarchParams{VolumeSamples: 80, InScatterSamples: 10, ShadowingMaxDistance: 90, ShadowingWeight: 0.95},
			Noise: NoiseParams{
				MainScale:     500,
				WeatherScale:  5000,
				DetailScale:   90,
				DetailWeight:  0.1,
			},
			Wind: WindParams{Vector: mgl32.Vec3{0.3, 0, 0.3}, MainWeight: 0.5, WeatherWeight: 0.05, DetailWeight: 1},
			Bake: [3]noise.BakeSettings{
				{Resolution: 128, Persistence: 0.6, SubdivisionsA: 2, SubdivisionsB: 6, SubdivisionsC: 12},
				{Resolution: 128, Persistence: 0.8, SubdivisionsA: 1, SubdivisionsB: 2, SubdivisionsC: 4},
				{Resolution: 64, Persistence: 0.5, SubdivisionsA: 6, SubdivisionsB: 12, SubdivisionsC: 24},
			},
		},
	}
}

// PresetByName looks a preset up case-insensitively.
func PresetByName(name string) (Preset, error) {
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// PresetNames lists the table in order.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}
