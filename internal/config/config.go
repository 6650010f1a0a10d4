// Package config loads the pipeline configuration and resolves the
// fixed set of file-system locations every stage works against. Paths
// are resolved once at process start and passed explicitly; no stage
// reads global path state.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete pipeline configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// PipelineConfig fixes the study period and model discipline.
type PipelineConfig struct {
	// GDP splice: the modern series is authoritative from CutoverYear
	// on; calibration happens at OverlapYear.
	CutoverYear int `yaml:"cutover_year" envconfig:"CUTOVER_YEAR" default:"1947" validate:"gte=1860,lte=2024"`
	OverlapYear int `yaml:"overlap_year" envconfig:"OVERLAP_YEAR" default:"1947" validate:"gte=1860,lte=2024"`

	// Expanding-window predictor.
	StartYear      int `yaml:"start_year" envconfig:"START_YEAR" default:"1863" validate:"gte=1860"`
	MaxEndYear     int `yaml:"max_end_year" envconfig:"MAX_END_YEAR" default:"2024" validate:"lte=2024"`
	MinWindow      int `yaml:"min_window" envconfig:"MIN_WINDOW" default:"10" validate:"gte=2"`
	HACLags        int `yaml:"hac_lags" envconfig:"HAC_LAGS" default:"3" validate:"gte=0"`
	MaxConcurrency int `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" default:"4" validate:"gte=1"`
}

// PathsConfig names the four directory roots.
type PathsConfig struct {
	SourceDir  string `yaml:"source_dir" envconfig:"SOURCE_DIR" default:"data/source" validate:"required"`
	ScratchDir string `yaml:"scratch_dir" envconfig:"SCRATCH_DIR" default:"data/scratch" validate:"required"`
	CleanDir   string `yaml:"clean_dir" envconfig:"CLEAN_DIR" default:"data/clean" validate:"required"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output" validate:"required"`
}

// Load reads configuration from the environment (prefix FBP) and, when
// present, layers the YAML file over the defaults beneath the
// environment values.
func Load(configFile string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("FBP", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the struct tags plus the cross-field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Pipeline.StartYear >= c.Pipeline.MaxEndYear {
		return fmt.Errorf("start_year %d must precede max_end_year %d",
			c.Pipeline.StartYear, c.Pipeline.MaxEndYear)
	}
	return nil
}
