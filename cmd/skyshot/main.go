// Command skyshot renders without a window. By default it writes one still
// image and a slice of each noise layer; with -frames it runs the frame
// loop headless and exports the sequence.
package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"cloudsky/config"
	"cloudsky/driver"
	"cloudsky/export"
	"cloudsky/rendering/software"
)

func main() {
	var (
		configPath = flag.String("config", "cloudsky.yaml", "Settings file")
		width      = flag.Int("width", 320, "Image width")
		height     = flag.Int("height", 180, "Image height")
		out        = flag.String("out", "cloudsky.png", "Still image path")
		slices     = flag.String("slices", "", "Directory for noise layer slices")
		depth      = flag.Int("depth", 0, "Depth of the 3-D layer slices")
		preset     = flag.String("preset", "", "Cloud preset")
		seed       = flag.Int64("seed", 1, "Random seed, 0 uses the clock")
		yaw        = flag.Float64("yaw", 0, "Camera yaw in degrees")
		pitch      = flag.Float64("pitch", 20, "Camera pitch in degrees")
		dayTime    = flag.Float64("time", -1, "Hour of the day, negative keeps the settings")
		frames     = flag.Int("frames", 0, "Render and export this many frames instead of a still")
		spin       = flag.Float64("spin", 0, "Yaw change per exported frame in degrees")
	)
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}
	if err := settings.Log.Setup(); err != nil {
		log.Fatal().Err(err).Msg("invalid log settings")
	}
	if *preset != "" {
		settings.Render.Preset = *preset
	}
	if *dayTime >= 0 {
		settings.Render.DayTime = float32(*dayTime)
	}
	settings.Camera.Yaw = float32(*yaw)
	settings.Camera.Pitch = float32(*pitch)
	settings.Noise.Seed = *seed

	opts, err := settings.DriverOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid render settings")
	}

	pipeline := software.NewPipeline(*width, *height, settings.Noise.Seed, settings.Noise.ReseedEachBake, nil)
	defer pipeline.Close()

	if *frames > 0 {
		if err := runSequence(pipeline, settings, opts, *frames, float32(*spin)); err != nil {
			log.Fatal().Err(err).Msg("sequence failed")
		}
		return
	}

	img, err := renderStill(pipeline, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("render failed")
	}
	if err := writePNG(*out, img); err != nil {
		log.Fatal().Err(err).Msg("failed to write image")
	}
	fmt.Printf("Wrote %s (%dx%d, preset %s)\n", *out, *width, *height, opts.Preset)

	if *slices != "" {
		paths, err := writeSlices(pipeline, *slices, *depth)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to write slices")
		}
		for _, p := range paths {
			fmt.Printf("Wrote %s\n", p)
		}
	}
}

func runSequence(p *software.Pipeline, settings config.Settings, opts driver.Options, frames int, spin float32) error {
	exporter, err := export.New(settings.Export.Kind, settings.Export.Path)
	if err != nil {
		return err
	}
	if exporter == nil {
		return fmt.Errorf("export kind %q writes nothing", settings.Export.Kind)
	}

	in := &scriptedInput{frames: frames, exportN: true}
	if opts.DragSensitivity != 0 {
		in.spin = -spin / opts.DragSensitivity
	}
	d := driver.New(p, in, nil, opts)
	d.SetExporter(exporter)
	if err := d.Init(); err != nil {
		return err
	}
	if err := d.Run(context.Background()); err != nil {
		return err
	}
	log.Info().Int("frames", frames).Str("path", filepath.Clean(settings.Export.Path)).Msg("sequence exported")
	return nil
}
