// Package driver runs the per-frame loop: input, UI edits, rebakes, uniform
// updates, drawing, export and frame pacing.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"cloudsky/core"
	"cloudsky/noise"
	"cloudsky/rendering"
)

// Options configure a Driver.
type Options struct {
	TargetFPS       int
	DragSensitivity float32
	Camera          core.Camera
	Params          core.RenderParameters
	Bake            [3]noise.BakeSettings
	Preset          string
}

// Driver owns the live camera, render parameters and bake settings and
// mutates them only from the goroutine calling Tick.
type Driver struct {
	pipeline Pipeline
	input    Input
	ui       UI
	exporter Exporter
	clock    Clock
	watchers []func(Status)

	camera      core.Camera
	params      core.RenderParameters
	bake        [3]noise.BakeSettings
	pending     [3]bool
	sensitivity float32
	targetFPS   int
	interval    time.Duration
	preset      string

	frame     uint64
	exporting bool
	lastErr   string

	fpsStart  time.Time
	fpsFrames int
	fps       float64
}

// New creates a driver. A nil ui is replaced with NopUI.
func New(p Pipeline, in Input, ui UI, opts Options) *Driver {
	if ui == nil {
		ui = NopUI{}
	}
	d := &Driver{
		pipeline:    p,
		input:       in,
		ui:          ui,
		clock:       systemClock{},
		camera:      opts.Camera,
		params:      opts.Params,
		bake:        opts.Bake,
		sensitivity: opts.DragSensitivity,
		preset:      opts.Preset,
	}
	d.setTargetFPS(opts.TargetFPS)
	return d
}

// SetExporter installs the frame exporter used by ToggleExport.
func (d *Driver) SetExporter(e Exporter) { d.exporter = e }

// OnStatus registers fn to receive every status reported to the UI.
func (d *Driver) OnStatus(fn func(Status)) { d.watchers = append(d.watchers, fn) }

// SetClock replaces the wall clock.
func (d *Driver) SetClock(c Clock) { d.clock = c }

func (d *Driver) Params() core.RenderParameters { return d.params }
func (d *Driver) Camera() core.Camera           { return d.camera }
func (d *Driver) Frame() uint64                 { return d.frame }
func (d *Driver) Exporting() bool               { return d.exporting }
func (d *Driver) Interval() time.Duration       { return d.interval }

// BakeSettings returns the settings the layer was last baked with.
func (d *Driver) BakeSettings(layer noise.Layer) noise.BakeSettings { return d.bake[layer] }

// Init bakes all three layers. Failed layers are reported together; the
// loop can still run with them blank.
func (d *Driver) Init() error {
	var errs []error
	for _, l := range noise.Layers {
		if err := d.pipeline.Bake(l, d.bake[l]); err != nil {
			errs = append(errs, err)
		}
	}
	d.fpsStart = d.clock.Now()
	return errors.Join(errs...)
}

// Run ticks until the exit key is pressed or ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	defer d.stopExport()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("render loop cancelled")
			return nil
		default:
		}
		more, err := d.Tick()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Tick runs one frame. It returns false once the user asked to exit.
func (d *Driver) Tick() (bool, error) {
	start := d.clock.Now()

	d.input.Poll()
	if d.input.KeyDown(KeyExit) {
		return false, nil
	}
	if d.input.KeyDown(KeyExport) {
		d.apply(ToggleExport{})
	}
	dx, dy := d.input.DragDelta()
	if !d.ui.Focused() {
		d.camera.Drag(dx, dy, d.sensitivity)
	}

	for _, ev := range d.ui.Events() {
		d.apply(ev)
	}
	d.runPendingBakes()

	w, h := d.pipeline.Size()
	frame := rendering.NewFrameState(d.frame, w, h, d.camera, d.params)
	if err := d.pipeline.Render(frame); err != nil {
		return false, fmt.Errorf("render frame %d: %w", d.frame, err)
	}
	if d.exporting {
		d.exportFrame()
	}
	if err := d.pipeline.Present(); err != nil {
		return false, fmt.Errorf("present frame %d: %w", d.frame, err)
	}
	d.frame++
	d.countFrame()

	if delay := PaceDelay(d.interval, d.clock.Now().Sub(start)); delay > 0 {
		d.clock.Sleep(delay)
	}
	return true, nil
}

// PaceDelay is how long to sleep so a frame that took elapsed lasts
// interval. It is never negative.
func PaceDelay(interval, elapsed time.Duration) time.Duration {
	if d := interval - elapsed; d > 0 {
		return d
	}
	return 0
}

func (d *Driver) apply(ev Event) {
	switch e := ev.(type) {
	case ParamEdit:
		if err := d.params.Set(e.Name, e.Values); err != nil {
			d.fail(err, "parameter edit rejected")
		}
	case BakeRequest:
		if e.Layer < 0 || int(e.Layer) >= len(noise.Layers) {
			d.fail(fmt.Errorf("bake request for %s", e.Layer), "unknown layer")
			return
		}
		if e.Settings != nil {
			d.bake[e.Layer] = *e.Settings
		}
		d.pending[e.Layer] = true
	case ApplySettings:
		if e.TargetFPS <= 0 {
			d.fail(fmt.Errorf("target fps %d", e.TargetFPS), "invalid frame rate")
			return
		}
		d.setTargetFPS(e.TargetFPS)
		log.Info().Int("fps", d.targetFPS).Msg("frame rate applied")
	case LoadPreset:
		preset, err := core.PresetByName(e.Name)
		if err != nil {
			d.fail(err, "preset not loaded")
			return
		}
		preset.Apply(&d.params)
		d.bake = preset.Bake
		d.preset = preset.Name
		for i := range d.pending {
			d.pending[i] = true
		}
		log.Info().Str("preset", preset.Name).Msg("preset loaded")
	case ToggleExport:
		if d.exporting {
			d.stopExport()
		} else {
			d.startExport()
		}
	}
}

// runPendingBakes bakes in layer order. The control goroutine blocks until
// each bake completes.
func (d *Driver) runPendingBakes() {
	for _, l := range noise.Layers {
		if !d.pending[l] {
			continue
		}
		d.pending[l] = false
		if err := d.pipeline.Bake(l, d.bake[l]); err != nil {
			d.fail(err, "bake failed, keeping previous volume")
		}
	}
}

func (d *Driver) startExport() {
	if d.exporter == nil {
		d.fail(errors.New("no exporter configured"), "export not started")
		return
	}
	w, h := d.pipeline.Size()
	if err := d.exporter.Start(w, h, float64(d.targetFPS)); err != nil {
		d.fail(err, "export not started")
		return
	}
	d.exporting = true
	log.Info().Int("width", w).Int("height", h).Int("fps", d.targetFPS).Msg("export started")
}

func (d *Driver) stopExport() {
	if !d.exporting {
		return
	}
	d.exporting = false
	if err := d.exporter.Stop(); err != nil {
		d.fail(err, "export did not finish cleanly")
		return
	}
	log.Info().Msg("export stopped")
}

func (d *Driver) exportFrame() {
	img, err := d.pipeline.Capture()
	if err == nil {
		err = d.exporter.WriteFrame(img)
	}
	if err != nil {
		d.fail(err, "export aborted")
		d.stopExport()
	}
}

func (d *Driver) setTargetFPS(fps int) {
	if fps <= 0 {
		fps = 60
	}
	d.targetFPS = fps
	d.interval = time.Second / time.Duration(fps)
}

func (d *Driver) fail(err error, msg string) {
	d.lastErr = err.Error()
	log.Warn().Err(err).Msg(msg)
}

func (d *Driver) countFrame() {
	d.fpsFrames++
	now := d.clock.Now()
	elapsed := now.Sub(d.fpsStart)
	if elapsed < time.Second {
		return
	}
	d.fps = float64(d.fpsFrames) / elapsed.Seconds()
	d.fpsFrames = 0
	d.fpsStart = now
	log.Debug().Float64("fps", d.fps).Uint64("frame", d.frame).Msg("frame rate")
	st := d.Status()
	d.ui.Report(st)
	for _, fn := range d.watchers {
		fn(st)
	}
}

// Status snapshots what the UI displays.
func (d *Driver) Status() Status {
	s := Status{
		Frame:     d.frame,
		FPS:       d.fps,
		TargetFPS: d.targetFPS,
		Exporting: d.exporting,
		Preset:    d.preset,
		DayTime:   d.params.DayTime(),
		Bake:      make(map[string]noise.BakeSettings, len(noise.Layers)),
		LastError: d.lastErr,
	}
	for _, l := range noise.Layers {
		s.Bake[l.String()] = d.bake[l]
		if w := d.bake[l].Warnings(); len(w) > 0 {
			if s.Warnings == nil {
				s.Warnings = map[string][]string{}
			}
			s.Warnings[l.String()] = w
		}
	}
	return s
}
