// Package config loads the YAML settings file shared by every entry point.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"cloudsky/core"
	"cloudsky/driver"
	"cloudsky/noise"
)

type Settings struct {
	Window  WindowSettings  `yaml:"window"`
	Render  RenderSettings  `yaml:"render"`
	Camera  CameraSettings  `yaml:"camera"`
	Noise   NoiseSettings   `yaml:"noise"`
	Control ControlSettings `yaml:"control"`
	Export  ExportSettings  `yaml:"export"`
	Shaders ShaderSettings  `yaml:"shaders"`
	Log     LogSettings     `yaml:"log"`
}

type WindowSettings struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

type RenderSettings struct {
	TargetFPS       int     `yaml:"target_fps"`
	DragSensitivity float32 `yaml:"drag_sensitivity"`
	// Backend selects where noise is baked: gpu, cpu or auto.
	Backend string  `yaml:"backend"`
	Preset  string  `yaml:"preset"`
	DayTime float32 `yaml:"day_time"`
	Sky     bool    `yaml:"sky"`
	// Stats shows the frame rate panel in the GL viewer.
	Stats bool `yaml:"stats"`
}

type CameraSettings struct {
	Location [3]float32 `yaml:"location"`
	Yaw      float32    `yaml:"yaw"`
	Pitch    float32    `yaml:"pitch"`
}

// NoiseSettings control the random source and optionally override the
// preset's bake settings per layer.
type NoiseSettings struct {
	Seed           int64               `yaml:"seed"`
	ReseedEachBake bool                `yaml:"reseed_each_bake"`
	Main           *noise.BakeSettings `yaml:"main,omitempty"`
	Weather        *noise.BakeSettings `yaml:"weather,omitempty"`
	Detail         *noise.BakeSettings `yaml:"detail,omitempty"`
}

type ControlSettings struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type ExportSettings struct {
	// Kind is video, png or none.
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

type ShaderSettings struct {
	// Dir overrides the embedded GLSL sources when set.
	Dir string `yaml:"dir"`
}

type LogSettings struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Window:  WindowSettings{Width: 1280, Height: 720, Title: "cloudsky"},
		Render:  RenderSettings{TargetFPS: 60, DragSensitivity: 0.2, Backend: "auto", Preset: core.DefaultPreset, DayTime: 10, Sky: true, Stats: true},
		Camera:  CameraSettings{Pitch: 20},
		Control: ControlSettings{Enabled: true, Addr: "127.0.0.1:8090"},
		Export:  ExportSettings{Kind: "png", Path: "frames"},
		Log:     LogSettings{Level: "info", Pretty: true},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str("path", path).Msg("no settings file found, using defaults")
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Default(), fmt.Errorf("error parsing %s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s Settings) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Override returns the configured bake settings of a layer, if any.
func (n NoiseSettings) Override(layer noise.Layer) *noise.BakeSettings {
	switch layer {
	case noise.LayerMain:
		return n.Main
	case noise.LayerWeather:
		return n.Weather
	case noise.LayerDetail:
		return n.Detail
	}
	return nil
}

// DriverOptions resolves the preset and every override into the driver's
// starting state.
func (s Settings) DriverOptions() (driver.Options, error) {
	preset, err := core.PresetByName(s.Render.Preset)
	if err != nil {
		return driver.Options{}, err
	}
	params := core.DefaultRenderParameters()
	preset.Apply(&params)
	params.Sky.Enabled = s.Render.Sky
	params.SetDayTime(s.Render.DayTime)

	bake := preset.Bake
	for _, l := range noise.Layers {
		if o := s.Noise.Override(l); o != nil {
			bake[l] = *o
		}
	}

	return driver.Options{
		TargetFPS:       s.Render.TargetFPS,
		DragSensitivity: s.Render.DragSensitivity,
		Camera: core.Camera{
			Location: mgl32.Vec3(s.Camera.Location),
			Yaw:      core.WrapDegrees(s.Camera.Yaw),
			Pitch:    core.WrapDegrees(s.Camera.Pitch),
		},
		Params: params,
		Bake:   bake,
		Preset: preset.Name,
	}, nil
}

// Setup configures the global zerolog logger.
func (l LogSettings) Setup() error {
	level := zerolog.InfoLevel
	if l.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(l.Level))
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if l.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}
