package control

import (
	"errors"
	"fmt"

	"cloudsky/driver"
	"cloudsky/noise"
)

// ErrUnknownMessage is returned for a message type the server does not
// handle.
var ErrUnknownMessage = errors.New("unknown message type")

// Message is what control clients send. Type selects which of the other
// fields are read:
//
//	set     name, values
//	bake    layer, settings (optional)
//	apply   fps
//	preset  preset
//	export
//	focus   focused
type Message struct {
	Type     string              `json:"type"`
	Name     string              `json:"name,omitempty"`
	Values   []float32           `json:"values,omitempty"`
	Layer    string              `json:"layer,omitempty"`
	Settings *noise.BakeSettings `json:"settings,omitempty"`
	FPS      int                 `json:"fps,omitempty"`
	Preset   string              `json:"preset,omitempty"`
	Focused  bool                `json:"focused,omitempty"`
}

// Reply is what the server pushes to clients.
type Reply struct {
	Type   string         `json:"type"`
	Status *driver.Status `json:"status,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Decode converts a message into a driver event. focus messages carry no
// event and return nil.
func Decode(m Message) (driver.Event, error) {
	switch m.Type {
	case "set":
		if m.Name == "" {
			return nil, errors.New("set: missing parameter name")
		}
		return driver.ParamEdit{Name: m.Name, Values: m.Values}, nil
	case "bake":
		layer, err := noise.ParseLayer(m.Layer)
		if err != nil {
			return nil, fmt.Errorf("bake: %w", err)
		}
		return driver.BakeRequest{Layer: layer, Settings: m.Settings}, nil
	case "apply":
		return driver.ApplySettings{TargetFPS: m.FPS}, nil
	case "preset":
		return driver.LoadPreset{Name: m.Preset}, nil
	case "export":
		return driver.ToggleExport{}, nil
	case "focus":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
}
