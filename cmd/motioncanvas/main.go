package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/jennahenricsson-umain/motion-MBD/internal/app"
	"github.com/jennahenricsson-umain/motion-MBD/internal/capture"
	"github.com/jennahenricsson-umain/motion-MBD/internal/config"
	"github.com/jennahenricsson-umain/motion-MBD/internal/detector"
	"github.com/jennahenricsson-umain/motion-MBD/internal/feed"
	"github.com/jennahenricsson-umain/motion-MBD/internal/game"
	"github.com/jennahenricsson-umain/motion-MBD/internal/logging"
	"github.com/jennahenricsson-umain/motion-MBD/internal/render"
	"github.com/jennahenricsson-umain/motion-MBD/internal/server"
	"github.com/jennahenricsson-umain/motion-MBD/internal/sim"
	"github.com/jennahenricsson-umain/motion-MBD/internal/store"
)

var (
	configFlag = flag.String("config", "", "Path to the YAML config (default "+config.DefaultPath+" when present)")
	staticFlag = flag.String("static", "", "Directory served at / by the control API")
	mockFlag   = flag.Bool("mock", false, "Run without camera hardware using a synthetic face")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "motioncanvas: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *mockFlag {
		cfg.Detector.Kind = detector.KindMock
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	log := logger.WithField("component", "main")

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	tuning := cfg.Tuning
	if preset, err := st.ActivePreset(); err == nil {
		tuning = preset.Tuning
		log.WithField("preset", preset.Name).Info("using active preset")
	} else if !errors.Is(err, store.ErrNotFound) {
		log.WithError(err).Warn("failed to load active preset")
	}

	renderOpts, err := cfg.RenderOptions()
	if err != nil {
		return err
	}
	tuning = tuning.WithPalette(len(renderOpts.Palette))

	camera := newCamera(cfg.Camera, *mockFlag)
	mailbox := feed.NewMailbox()
	pipeline := app.New(app.Config{
		Camera: camera,
		NewDetector: func() (detector.Detector, error) {
			return detector.New(cfg.Detector, logger)
		},
		Mailbox:         mailbox,
		Interval:        cfg.Pipeline.Interval(),
		Mirror:          cfg.Detector.MirrorHorizontally,
		ChangeThreshold: cfg.Pipeline.ChangeThreshold,
		MaxSkip:         cfg.Pipeline.MaxSkip,
		Log:             logger,
	})
	pipeline.Start()
	defer pipeline.Stop()

	g, err := game.New(game.Config{
		State:    sim.NewState(tuning, nil),
		Renderer: render.NewRenderer(renderOpts),
		Receiver: feed.NewReceiver(mailbox, cfg.Pipeline.Interval()),
		Pipeline: pipeline,
		ShowFPS:  cfg.Window.ShowFPS,
		Log:      logger,
	})
	if err != nil {
		return err
	}

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			StaticDir: staticDir(),
			Store:     st,
			Status:    pipeline,
			Preview:   pipeline,
			Scene:     g,
			Tuning:    g,
			SceneHz:   cfg.Server.SceneHz,
			Log:       logger,
		})
		go func() {
			if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
				log.WithError(err).Error("control API stopped")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.WithError(err).Warn("control API shutdown")
			}
		}()
	}

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)
	ebiten.SetTPS(cfg.Window.TPS)
	ebiten.SetScreenClearedEveryFrame(false)

	log.WithFields(logrus.Fields{
		"detector": cfg.Detector.Kind,
		"camera":   cfg.Camera.DeviceID,
	}).Info("starting")

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("game loop: %w", err)
	}
	log.Info("shutting down")
	return nil
}

func newCamera(opts capture.Options, mock bool) capture.Camera {
	if !mock {
		return capture.NewCamera(opts)
	}
	return capture.NewMockCamera([]*gocv.Mat{capture.Blank(opts.Width, opts.Height)}, true)
}

// staticDir returns the -static flag or the first existing web directory.
func staticDir() string {
	if *staticFlag != "" {
		return *staticFlag
	}
	candidates := []string{"web", "../web"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".motioncanvas", "web"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
