package config

import (
	"fmt"
	"strconv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MOTION_"

type envSetter func(c *Config, value string) error

func stringVar(get func(c *Config) *string) envSetter {
	return func(c *Config, v string) error {
		*get(c) = v
		return nil
	}
}

func intVar(get func(c *Config) *int) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*get(c) = n
		return nil
	}
}

func floatVar(get func(c *Config) *float64) envSetter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*get(c) = f
		return nil
	}
}

func boolVar(get func(c *Config) *bool) envSetter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*get(c) = b
		return nil
	}
}

// envVars lists the supported overrides without the MOTION_ prefix.
var envVars = map[string]envSetter{
	"FULLSCREEN":    boolVar(func(c *Config) *bool { return &c.Window.Fullscreen }),
	"WINDOW_WIDTH":  intVar(func(c *Config) *int { return &c.Window.Width }),
	"WINDOW_HEIGHT": intVar(func(c *Config) *int { return &c.Window.Height }),
	"SHOW_FPS":      boolVar(func(c *Config) *bool { return &c.Window.ShowFPS }),

	"CAMERA_DEVICE": intVar(func(c *Config) *int { return &c.Camera.DeviceID }),

	"DETECTOR_KIND":       stringVar(func(c *Config) *string { return &c.Detector.Kind }),
	"DETECTOR_MAX_FACES":  intVar(func(c *Config) *int { return &c.Detector.MaxFaces }),
	"DETECTOR_REMOTE_URL": stringVar(func(c *Config) *string { return &c.Detector.RemoteURL }),
	"DETECTOR_SCRIPT":     stringVar(func(c *Config) *string { return &c.Detector.ScriptPath }),
	"DETECTOR_PYTHON":     stringVar(func(c *Config) *string { return &c.Detector.PythonPath }),
	"MIRROR":              boolVar(func(c *Config) *bool { return &c.Detector.MirrorHorizontally }),

	"INTERVAL_MS":      intVar(func(c *Config) *int { return &c.Pipeline.IntervalMS }),
	"CHANGE_THRESHOLD": floatVar(func(c *Config) *float64 { return &c.Pipeline.ChangeThreshold }),

	"SERVER_ENABLED": boolVar(func(c *Config) *bool { return &c.Server.Enabled }),
	"SERVER_ADDR":    stringVar(func(c *Config) *string { return &c.Server.Addr }),

	"STORE_PATH": stringVar(func(c *Config) *string { return &c.Store.Path }),

	"LOG_LEVEL": stringVar(func(c *Config) *string { return &c.Log.Level }),
	"LOG_FILE":  stringVar(func(c *Config) *string { return &c.Log.File }),

	"SPAWN_INTERVAL_MS": intVar(func(c *Config) *int { return &c.Tuning.SpawnIntervalMS }),
	"GRAVITY":           floatVar(func(c *Config) *float64 { return &c.Tuning.Gravity }),
	"SHOW_DOTS":         boolVar(func(c *Config) *bool { return &c.Render.ShowLandmarkDots }),
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for name, set := range envVars {
		key := EnvPrefix + name
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		if err := set(c, v); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", key, v, err)
		}
	}
	return nil
}
