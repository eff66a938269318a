// Command skypreview renders the clouds with the CPU integrator and shows
// them in a raylib window. It needs no compute shader support and accepts
// the same settings file and control connection as the GL viewer.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog/log"

	"cloudsky/config"
	"cloudsky/control"
	"cloudsky/driver"
	"cloudsky/export"
	"cloudsky/rendering/software"
)

func main() {
	var (
		configPath = flag.String("config", "cloudsky.yaml", "Settings file")
		scale      = flag.Int("scale", 4, "Window pixels per rendered pixel")
		fps        = flag.Int("fps", 0, "Target frame rate (overrides settings)")
		preset     = flag.String("preset", "", "Cloud preset to start with")
	)
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}
	if err := settings.Log.Setup(); err != nil {
		log.Fatal().Err(err).Msg("invalid log settings")
	}
	if *fps > 0 {
		settings.Render.TargetFPS = *fps
	}
	if *preset != "" {
		settings.Render.Preset = *preset
	}
	if *scale < 1 {
		*scale = 1
	}
	opts, err := settings.DriverOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid render settings")
	}

	w, h := settings.Window.Width, settings.Window.Height
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(w), int32(h), settings.Window.Title+" (preview)")
	defer rl.CloseWindow()

	rw, rh := w / *scale, h / *scale
	presenter := newWindowPresenter(rw, rh, float32(*scale), settings.Render.Stats)
	defer presenter.Close()

	pipeline := software.NewPipeline(rw, rh, settings.Noise.Seed, settings.Noise.ReseedEachBake, presenter)
	defer pipeline.Close()
	log.Info().Int("width", rw).Int("height", rh).Msg("software preview ready")

	var ui driver.UI = driver.NopUI{}
	if settings.Control.Enabled {
		server := control.NewServer()
		if err := server.Start(settings.Control.Addr); err != nil {
			log.Error().Err(err).Msg("control server not started")
		} else {
			ui = server
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := server.Shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("control server shutdown")
				}
			}()
		}
	}

	d := driver.New(pipeline, windowInput{}, ui, opts)
	if exporter, err := export.New(settings.Export.Kind, settings.Export.Path); err != nil {
		log.Warn().Err(err).Msg("export disabled")
	} else if exporter != nil {
		d.SetExporter(exporter)
	}
	if err := d.Init(); err != nil {
		log.Warn().Err(err).Msg("initial bake incomplete")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := d.Run(ctx); err != nil {
		log.Error().Err(err).Msg("render loop failed")
	}
}
