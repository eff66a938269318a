package driver

import (
	"cloudsky/noise"
)

// Event is something the UI asks the driver to do between frames.
type Event interface {
	event()
}

// ParamEdit sets one render parameter by its uniform name.
type ParamEdit struct {
	Name   string
	Values []float32
}

// BakeRequest rebakes one layer. A nil Settings rebakes with the current
// settings of that layer.
type BakeRequest struct {
	Layer    noise.Layer
	Settings *noise.BakeSettings
}

// ApplySettings changes the frame pacing.
type ApplySettings struct {
	TargetFPS int
}

// LoadPreset replaces the cloud parameters with a named preset and rebakes
// every layer.
type LoadPreset struct {
	Name string
}

// ToggleExport starts or stops frame export.
type ToggleExport struct{}

func (ParamEdit) event()     {}
func (BakeRequest) event()   {}
func (ApplySettings) event() {}
func (LoadPreset) event()    {}
func (ToggleExport) event()  {}

// Status is what the driver reports back to the UI once per second.
type Status struct {
	Frame     uint64                        `json:"frame"`
	FPS       float64                       `json:"fps"`
	TargetFPS int                           `json:"target_fps"`
	Exporting bool                          `json:"exporting"`
	Preset    string                        `json:"preset,omitempty"`
	DayTime   float32                       `json:"day_time"`
	Bake      map[string]noise.BakeSettings `json:"bake"`
	Warnings  map[string][]string           `json:"warnings,omitempty"`
	LastError string                        `json:"last_error,omitempty"`
}
