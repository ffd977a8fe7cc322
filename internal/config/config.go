// Package config loads MillPath's settings from millpath.yaml, MILLPATH_*
// environment variables and an optional .env file, and builds the logger.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/piwi3910/MillPath/internal/model"
)

// EnvPrefix prefixes every environment override, e.g. MILLPATH_MACHINE_SAFE_Z.
const EnvPrefix = "MILLPATH"

// Options select where Load looks.
type Options struct {
	ConfigFile  string   // explicit file; must exist when set
	SearchPaths []string // directories searched for millpath.yaml; defaults when empty
	EnvFile     string   // dotenv file loaded before reading the environment; ".env" when empty
}

// DefaultSearchPaths are the directories searched for millpath.yaml.
var DefaultSearchPaths = []string{".", "./configs", "$HOME/.millpath"}

// Load reads the configuration. Missing files are not an error; every key
// falls back to model.DefaultAppConfig.
func Load(opts Options) (*model.AppConfig, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v, model.DefaultAppConfig())

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("millpath")
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = DefaultSearchPaths
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || opts.ConfigFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg model.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Machine.Validate(); err != nil {
		return nil, fmt.Errorf("invalid machine settings: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, d model.AppConfig) {
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("serial.port", d.Serial.Port)
	v.SetDefault("serial.baud", d.Serial.Baud)

	m := d.Machine
	v.SetDefault("machine.surface_speed", m.SurfaceSpeed)
	v.SetDefault("machine.chip_thickness", m.ChipThickness)
	v.SetDefault("machine.max_step_down", m.MaxStepDown)
	v.SetDefault("machine.min_final_step", m.MinFinalStep)
	v.SetDefault("machine.finishing_pass", m.FinishingPass)
	v.SetDefault("machine.clearance_factor", m.ClearanceFactor)
	v.SetDefault("machine.margin_y", m.MarginY)
	v.SetDefault("machine.base_offset", m.BaseOffset)
	v.SetDefault("machine.riser_diameter", m.RiserDiameter)
	v.SetDefault("machine.safe_z", m.SafeZ)
	v.SetDefault("machine.gcode_profile", m.GCodeProfile)
}

// NewLogger builds a zap logger: JSON production encoding when format is
// "json", development console encoding otherwise.
func NewLogger(cfg model.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case "":
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	return zapCfg.Build()
}
