// Package config loads the installation settings from a YAML file, an
// optional .env file and MOTION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jennahenricsson-umain/motion-MBD/internal/app"
	"github.com/jennahenricsson-umain/motion-MBD/internal/capture"
	"github.com/jennahenricsson-umain/motion-MBD/internal/detector"
	"github.com/jennahenricsson-umain/motion-MBD/internal/feed"
	"github.com/jennahenricsson-umain/motion-MBD/internal/logging"
	"github.com/jennahenricsson-umain/motion-MBD/internal/render"
	"github.com/jennahenricsson-umain/motion-MBD/internal/sim"
)

// DefaultPath is read when no config path is given and the file exists.
const DefaultPath = "configs/motioncanvas.yaml"

// DefaultEnvFile is the dotenv file consulted for overrides.
const DefaultEnvFile = ".env"

// Config is the complete application configuration.
type Config struct {
	Window   WindowConfig    `yaml:"window"`
	Camera   capture.Options `yaml:"camera"`
	Detector detector.Config `yaml:"detector"`
	Pipeline PipelineConfig  `yaml:"pipeline"`
	Server   ServerConfig    `yaml:"server"`
	Store    StoreConfig     `yaml:"store"`
	Log      logging.Options `yaml:"log"`
	Tuning   sim.Config      `yaml:"tuning"`
	Render   RenderConfig    `yaml:"render"`
}

// WindowConfig controls the render window.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width" validate:"gt=0"`
	Height     int    `yaml:"height" validate:"gt=0"`
	Fullscreen bool   `yaml:"fullscreen"`
	TPS        int    `yaml:"tps" validate:"gte=10,lte=240"`
	ShowFPS    bool   `yaml:"show_fps"`
}

// PipelineConfig controls the detection pipeline.
type PipelineConfig struct {
	IntervalMS      int     `yaml:"interval_ms" validate:"gt=0"`
	ChangeThreshold float64 `yaml:"change_threshold" validate:"gte=0,lte=100"`
	MaxSkip         int     `yaml:"max_skip" validate:"gte=0"`
}

// Interval returns the detection interval.
func (p PipelineConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// ServerConfig controls the HTTP control API.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"required_if=Enabled true"`
	SceneHz int    `yaml:"scene_hz" validate:"gte=1,lte=60"`
}

// StoreConfig locates the preset database.
type StoreConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// RenderConfig is the serializable form of render.Options.
type RenderConfig struct {
	BackgroundAlpha  int      `yaml:"background_alpha" validate:"gte=0,lte=255"`
	Palette          []string `yaml:"palette" validate:"min=1,dive,hexcolor"`
	ParticleColor    string   `yaml:"particle_color" validate:"hexcolor"`
	NearColor        string   `yaml:"near_color" validate:"hexcolor"`
	FarColor         string   `yaml:"far_color" validate:"hexcolor"`
	DepthNear        float64  `yaml:"depth_near"`
	DepthFar         float64  `yaml:"depth_far"`
	OutlineWidth     float64  `yaml:"outline_width" validate:"gt=0"`
	ShowLandmarkDots bool     `yaml:"show_landmark_dots"`
	Title            string   `yaml:"title"`
	Subtitle         string   `yaml:"subtitle"`
}

// Default returns a complete configuration; the application runs without
// any file.
func Default() Config {
	ro := render.DefaultOptions()
	palette := make([]string, len(ro.Palette))
	for i, c := range ro.Palette {
		palette[i] = hex(c)
	}

	return Config{
		Window: WindowConfig{
			Title:  "Motion Canvas",
			Width:  1280,
			Height: 720,
			TPS:    60,
		},
		Camera:   capture.DefaultOptions(),
		Detector: detector.DefaultConfig(),
		Pipeline: PipelineConfig{
			IntervalMS:      int(feed.DefaultInterval / time.Millisecond),
			ChangeThreshold: app.DefaultChangeThreshold,
			MaxSkip:         app.DefaultMaxSkip,
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8090",
			SceneHz: 15,
		},
		Store: StoreConfig{
			Path: "motioncanvas.db",
		},
		Log:    logging.DefaultOptions(),
		Tuning: sim.DefaultConfig().WithPalette(len(palette)),
		Render: RenderConfig{
			BackgroundAlpha:  int(ro.BackgroundAlpha),
			Palette:          palette,
			ParticleColor:    hex(ro.ParticleColor),
			NearColor:        hex(ro.NearColor),
			FarColor:         hex(ro.FarColor),
			DepthNear:        ro.DepthNear,
			DepthFar:         ro.DepthFar,
			OutlineWidth:     ro.OutlineWidth,
			ShowLandmarkDots: ro.ShowLandmarkDots,
			Title:            ro.Title,
			Subtitle:         ro.Subtitle,
		},
	}
}

// Load reads path (or DefaultPath when path is empty and the file exists),
// applies .env and environment overrides and validates the result.
func Load(path string) (*Config, error) {
	return load(path, DefaultEnvFile, os.LookupEnv)
}

func load(path, envFile string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = values
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	cfg.Tuning = cfg.Tuning.WithPalette(len(cfg.Render.Palette))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

var validate = validator.New()

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Detector.Kind == detector.KindRemote && c.Detector.RemoteURL == "" {
		return errors.New("invalid config: detector.remote_url is required for the remote detector")
	}
	return nil
}

// ValidateTuning checks a simulation tuning on its own.
func ValidateTuning(t sim.Config) error {
	return validate.Struct(t)
}

// RenderOptions converts the render section.
func (c *Config) RenderOptions() (render.Options, error) {
	r := c.Render
	opts := render.DefaultOptions()

	opts.BackgroundAlpha = uint8(r.BackgroundAlpha)
	opts.DepthNear = r.DepthNear
	opts.DepthFar = r.DepthFar
	opts.OutlineWidth = r.OutlineWidth
	opts.ShowLandmarkDots = r.ShowLandmarkDots
	opts.Title = r.Title
	opts.Subtitle = r.Subtitle

	opts.Palette = make([]color.NRGBA, len(r.Palette))
	for i, s := range r.Palette {
		c, ok := render.ParseHex(s)
		if !ok {
			return render.Options{}, fmt.Errorf("invalid palette color %q", s)
		}
		opts.Palette[i] = c
	}

	for _, field := range []struct {
		name string
		src  string
		dst  *color.NRGBA
	}{
		{"particle_color", r.ParticleColor, &opts.ParticleColor},
		{"near_color", r.NearColor, &opts.NearColor},
		{"far_color", r.FarColor, &opts.FarColor},
	} {
		c, ok := render.ParseHex(field.src)
		if !ok {
			return render.Options{}, fmt.Errorf("invalid %s %q", field.name, field.src)
		}
		*field.dst = c
	}

	return opts, nil
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
