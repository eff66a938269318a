package driver

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsky/core"
	"cloudsky/noise"
	"cloudsky/rendering"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

type fakeInput struct {
	exit     bool
	export   bool
	dx, dy   float32
	polls    int
	consumed int
}

func (in *fakeInput) Poll() { in.polls++ }
func (in *fakeInput) KeyDown(k Key) bool {
	switch k {
	case KeyExit:
		return in.exit
	case KeyExport:
		pressed := in.export
		in.export = false
		return pressed
	}
	return false
}
func (in *fakeInput) DragDelta() (float32, float32) {
	dx, dy := in.dx, in.dy
	in.dx, in.dy = 0, 0
	in.consumed++
	return dx, dy
}

type fakeUI struct {
	queue   []Event
	focused bool
	reports []Status
}

func (u *fakeUI) Events() []Event {
	ev := u.queue
	u.queue = nil
	return ev
}
func (u *fakeUI) Focused() bool   { return u.focused }
func (u *fakeUI) Report(s Status) { u.reports = append(u.reports, s) }

type bakeCall struct {
	layer    noise.Layer
	settings noise.BakeSettings
}

type fakePipeline struct {
	clock     *fakeClock
	frameCost time.Duration
	bakeErr   error
	bakes     []bakeCall
	frames    []rendering.FrameState
	presents  int
}

func (p *fakePipeline) Bake(l noise.Layer, s noise.BakeSettings) error {
	p.bakes = append(p.bakes, bakeCall{l, s})
	return p.bakeErr
}

func (p *fakePipeline) Render(f rendering.FrameState) error {
	p.frames = append(p.frames, f)
	p.clock.now = p.clock.now.Add(p.frameCost)
	return nil
}

func (p *fakePipeline) Capture() (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 2)), nil
}

func (p *fakePipeline) Present() error   { p.presents++; return nil }
func (p *fakePipeline) Size() (int, int) { return 4, 2 }

type fakeExporter struct {
	started       bool
	w, h          int
	fps           float64
	frames, stops int
	startErr      error
}

func (e *fakeExporter) Start(w, h int, fps float64) error {
	if e.startErr != nil {
		return e.startErr
	}
	e.started, e.w, e.h, e.fps = true, w, h, fps
	return nil
}
func (e *fakeExporter) WriteFrame(*image.RGBA) error { e.frames++; return nil }
func (e *fakeExporter) Stop() error                  { e.stops++; return nil }

type harness struct {
	d     *Driver
	clock *fakeClock
	in    *fakeInput
	ui    *fakeUI
	pipe  *fakePipeline
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &fakeClock{now: time.Unix(0, 0)}
	h := &harness{
		clock: clock,
		in:    &fakeInput{},
		ui:    &fakeUI{},
		pipe:  &fakePipeline{clock: clock, frameCost: 5 * time.Millisecond},
	}
	preset, err := core.PresetByName("cumulus")
	require.NoError(t, err)
	h.d = New(h.pipe, h.in, h.ui, Options{
		TargetFPS:       50,
		DragSensitivity: 0.5,
		Camera:          core.Camera{Yaw: 350},
		Params:          core.DefaultRenderParameters(),
		Bake:            preset.Bake,
	})
	h.d.SetClock(clock)
	return h
}

func TestInitBakesEveryLayer(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.d.Init())
	require.Len(t, h.pipe.bakes, 3)
	for i, l := range noise.Layers {
		assert.Equal(t, l, h.pipe.bakes[i].layer)
		assert.Equal(t, h.d.BakeSettings(l), h.pipe.bakes[i].settings)
	}

	h.pipe.bakeErr = errors.New("no compute shaders")
	err := h.d.Init()
	assert.ErrorIs(t, err, h.pipe.bakeErr)
}

func TestDragRotatesCameraUnlessFocused(t *testing.T) {
	h := newHarness(t)

	h.in.dx = -40 // yaw += 20
	_, err := h.d.Tick()
	require.NoError(t, err)
	assert.InDelta(t, 10, h.d.Camera().Yaw, 1e-4)

	h.ui.focused = true
	h.in.dx, h.in.dy = 100, 100
	_, err = h.d.Tick()
	require.NoError(t, err)
	assert.InDelta(t, 10, h.d.Camera().Yaw, 1e-4)
	// The delta was consumed while focused, not replayed later.
	h.ui.focused = false
	_, err = h.d.Tick()
	require.NoError(t, err)
	assert.InDelta(t, 10, h.d.Camera().Yaw, 1e-4)

	// The rendered frame carries the camera of its tick.
	last := h.pipe.frames[len(h.pipe.frames)-1]
	assert.Equal(t, h.d.Camera().View(), last.View)
	assert.Equal(t, uint64(2), last.Frame)
}

func TestEventsApplyBeforeRender(t *testing.T) {
	h := newHarness(t)
	h.ui.queue = []Event{
		ParamEdit{Name: "cloud_absorption", Values: []float32{0.33}},
		ParamEdit{Name: "no_such_thing", Values: []float32{1}},
	}
	_, err := h.d.Tick()
	require.NoError(t, err)

	require.Len(t, h.pipe.frames, 1)
	assert.Equal(t, float32(0.33), h.pipe.frames[0].Params.Cloud.Absorption)
	assert.Contains(t, h.d.Status().LastError, "no_such_thing")
}

func TestBakeRequests(t *testing.T) {
	h := newHarness(t)
	s := noise.BakeSettings{Resolution: 32, Persistence: 0.4, SubdivisionsA: 2, SubdivisionsB: 3, SubdivisionsC: 4}
	h.ui.queue = []Event{
		BakeRequest{Layer: noise.LayerDetail, Settings: &s},
		BakeRequest{Layer: noise.LayerMain},
	}
	_, err := h.d.Tick()
	require.NoError(t, err)

	require.Len(t, h.pipe.bakes, 2)
	assert.Equal(t, noise.LayerMain, h.pipe.bakes[0].layer)
	assert.Equal(t, bakeCall{noise.LayerDetail, s}, h.pipe.bakes[1])
	assert.Equal(t, s, h.d.BakeSettings(noise.LayerDetail))

	// A failing bake is reported and the loop keeps going.
	h.pipe.bakeErr = errors.New("compile failed")
	h.ui.queue = []Event{BakeRequest{Layer: noise.LayerWeather}}
	more, err := h.d.Tick()
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, "compile failed", h.d.Status().LastError)
	assert.Len(t, h.pipe.frames, 2)
}

func TestLoadPreset(t *testing.T) {
	h := newHarness(t)
	h.ui.queue = []Event{LoadPreset{Name: "stratus"}}
	_, err := h.d.Tick()
	require.NoError(t, err)

	stratus, err := core.PresetByName("stratus")
	require.NoError(t, err)
	assert.Equal(t, stratus.Cloud, h.d.Params().Cloud)
	require.Len(t, h.pipe.bakes, 3)
	for i, l := range noise.Layers {
		assert.Equal(t, stratus.BakeSettings(l), h.pipe.bakes[i].settings)
	}
	assert.Equal(t, "stratus", h.d.Status().Preset)

	h.ui.queue = []Event{LoadPreset{Name: "fog"}}
	_, err = h.d.Tick()
	require.NoError(t, err)
	assert.Len(t, h.pipe.bakes, 3)
}

func TestFramePacing(t *testing.T) {
	h := newHarness(t)

	_, err := h.d.Tick()
	require.NoError(t, err)
	require.Len(t, h.clock.sleeps, 1)
	assert.Equal(t, 15*time.Millisecond, h.clock.sleeps[0])

	// A slow frame never sleeps.
	h.pipe.frameCost = 30 * time.Millisecond
	_, err = h.d.Tick()
	require.NoError(t, err)
	assert.Len(t, h.clock.sleeps, 1)

	h.pipe.frameCost = 0
	h.ui.queue = []Event{ApplySettings{TargetFPS: 10}}
	_, err = h.d.Tick()
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, h.d.Interval())
	assert.Equal(t, 100*time.Millisecond, h.clock.sleeps[1])

	h.ui.queue = []Event{ApplySettings{TargetFPS: 0}}
	_, err = h.d.Tick()
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, h.d.Interval())
}

func TestPaceDelay(t *testing.T) {
	assert.Equal(t, 4*time.Millisecond, PaceDelay(20*time.Millisecond, 16*time.Millisecond))
	assert.Zero(t, PaceDelay(20*time.Millisecond, 20*time.Millisecond))
	assert.Zero(t, PaceDelay(20*time.Millisecond, time.Second))
}

func TestExportToggle(t *testing.T) {
	h := newHarness(t)

	h.ui.queue = []Event{ToggleExport{}}
	_, err := h.d.Tick()
	require.NoError(t, err)
	assert.False(t, h.d.Exporting())
	assert.NotEmpty(t, h.d.Status().LastError)

	exp := &fakeExporter{}
	h.d.SetExporter(exp)
	h.ui.queue = []Event{ToggleExport{}}
	for i := 0; i < 3; i++ {
		_, err = h.d.Tick()
		require.NoError(t, err)
	}
	assert.True(t, h.d.Exporting())
	assert.Equal(t, 4, exp.w)
	assert.Equal(t, 2, exp.h)
	assert.Equal(t, float64(50), exp.fps)
	assert.Equal(t, 3, exp.frames)

	h.ui.queue = []Event{ToggleExport{}}
	_, err = h.d.Tick()
	require.NoError(t, err)
	assert.False(t, h.d.Exporting())
	assert.Equal(t, 1, exp.stops)
	assert.Equal(t, 3, exp.frames)
}

func TestExportKey(t *testing.T) {
	h := newHarness(t)
	exp := &fakeExporter{}
	h.d.SetExporter(exp)

	h.in.export = true
	_, err := h.d.Tick()
	require.NoError(t, err)
	assert.True(t, h.d.Exporting())
	assert.Equal(t, 1, exp.frames)

	_, err = h.d.Tick()
	require.NoError(t, err)
	assert.True(t, h.d.Exporting())

	h.in.export = true
	_, err = h.d.Tick()
	require.NoError(t, err)
	assert.False(t, h.d.Exporting())
	assert.Equal(t, 1, exp.stops)
}

func TestExitAndCancel(t *testing.T) {
	h := newHarness(t)
	h.in.exit = true
	more, err := h.d.Tick()
	require.NoError(t, err)
	assert.False(t, more)
	assert.Empty(t, h.pipe.frames)
	assert.NoError(t, h.d.Run(context.Background()))

	h = newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, h.d.Run(ctx))
	assert.Empty(t, h.pipe.frames)
}

func TestStatusReportedOncePerSecond(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.d.Init())
	// Each tick lasts exactly one 20ms interval.
	for i := 0; i < 120; i++ {
		_, err := h.d.Tick()
		require.NoError(t, err)
	}
	require.Len(t, h.ui.reports, 2)
	assert.InDelta(t, 50, h.ui.reports[0].FPS, 1)
	assert.Contains(t, h.ui.reports[0].Bake, "weather")
	params := h.d.Params()
	assert.InDelta(t, params.DayTime(), h.ui.reports[1].DayTime, 1e-6)
}

func TestStatusObservers(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.d.Init())
	var seen []Status
	h.d.OnStatus(func(s Status) { seen = append(seen, s) })
	for i := 0; i < 60; i++ {
		_, err := h.d.Tick()
		require.NoError(t, err)
	}
	require.Len(t, seen, 1)
	assert.Equal(t, h.ui.reports[0], seen[0])
}

func TestNopUI(t *testing.T) {
	var ui UI = NopUI{}
	assert.Empty(t, ui.Events())
	assert.False(t, ui.Focused())
	ui.Report(Status{})
}
