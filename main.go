// Command cloudsky opens an OpenGL window and renders volumetric clouds
// under a simulated sky. Parameters are edited live over a websocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"cloudsky/config"
	"cloudsky/control"
	"cloudsky/driver"
	"cloudsky/export"
	"cloudsky/rendering/opengl"
	"cloudsky/rendering/opengl/shaders"
)

func main() {
	var (
		configPath = flag.String("config", "cloudsky.yaml", "Settings file")
		width      = flag.Int("width", 0, "Window width (overrides settings)")
		height     = flag.Int("height", 0, "Window height (overrides settings)")
		fps        = flag.Int("fps", 0, "Target frame rate (overrides settings)")
		backend    = flag.String("backend", "", "Noise backend: gpu, cpu or auto")
		preset     = flag.String("preset", "", "Cloud preset to start with")
		seed       = flag.Int64("seed", 0, "Random seed, 0 uses the clock")
		shaderDir  = flag.String("shaders", "", "Load GLSL sources from this directory")
		addr       = flag.String("addr", "", "Control server address, \"off\" disables it")
	)
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}
	if *width > 0 {
		settings.Window.Width = *width
	}
	if *height > 0 {
		settings.Window.Height = *height
	}
	if *fps > 0 {
		settings.Render.TargetFPS = *fps
	}
	if *backend != "" {
		settings.Render.Backend = *backend
	}
	if *preset != "" {
		settings.Render.Preset = *preset
	}
	if *seed != 0 {
		settings.Noise.Seed = *seed
	}
	if *shaderDir != "" {
		settings.Shaders.Dir = *shaderDir
	}
	switch *addr {
	case "":
	case "off":
		settings.Control.Enabled = false
	default:
		settings.Control.Addr = *addr
	}

	if err := settings.Log.Setup(); err != nil {
		log.Fatal().Err(err).Msg("invalid log settings")
	}
	opts, err := settings.DriverOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid render settings")
	}

	renderer, err := opengl.NewRenderer(opengl.Options{
		Width:          settings.Window.Width,
		Height:         settings.Window.Height,
		Title:          settings.Window.Title,
		Fullscreen:     settings.Window.Fullscreen,
		VSync:          settings.Window.VSync,
		Backend:        settings.Render.Backend,
		Seed:           settings.Noise.Seed,
		ReseedEachBake: settings.Noise.ReseedEachBake,
		Shaders:        shaders.NewProvider(settings.Shaders.Dir),
		Stats:          settings.Render.Stats,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create renderer")
	}
	defer renderer.Close()

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

	d := driver.New(renderer, opengl.NewInput(renderer.Window()), ui, opts)
	d.OnStatus(renderer.ShowStatus)

	exporter, err := export.New(settings.Export.Kind, settings.Export.Path)
	if err != nil {
		log.Warn().Err(err).Msg("export disabled")
	} else if exporter != nil {
		d.SetExporter(exporter)
	}

	if err := d.Init(); err != nil {
		log.Warn().Err(err).Msg("initial bake incomplete")
	}

	fmt.Println("Controls:")
	fmt.Println("  Mouse: Click and drag to look around")
	fmt.Println("  F12: Start/stop frame export")
	fmt.Println("  ESC: Exit")
	if settings.Control.Enabled {
		fmt.Printf("  Parameters: ws://%s/ws\n", settings.Control.Addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := d.Run(ctx); err != nil {
		log.Error().Err(err).Msg("render loop failed")
	}
}
