package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"golfpulse/internal/gapping"
)

var validate = validator.New()

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Roster  RosterConfig  `yaml:"roster" envconfig:"ROSTER"`
	Gapping GappingConfig `yaml:"gapping" envconfig:"GAPPING"`
	Run     RunConfig     `yaml:"run" envconfig:"RUN"`
	Export  ExportConfig  `yaml:"export" envconfig:"EXPORT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"required"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
}

// RosterConfig locates the alias table.
type RosterConfig struct {
	Path string `yaml:"path" envconfig:"PATH" validate:"required"`
}

// GappingConfig overrides the frozen gapping rule set.
type GappingConfig struct {
	LowerPercentile float64 `yaml:"lower_percentile" envconfig:"LOWER_PERCENTILE" validate:"gte=0,lte=100"`
	UpperPercentile float64 `yaml:"upper_percentile" envconfig:"UPPER_PERCENTILE" validate:"gte=0,lte=100"`
	MinGoodShots    int     `yaml:"min_good_shots" envconfig:"MIN_GOOD_SHOTS" validate:"gte=1"`
}

// Engine returns the equivalent gapping engine configuration.
func (g GappingConfig) Engine() gapping.Config {
	return gapping.Config{
		LowerPercentile: g.LowerPercentile,
		UpperPercentile: g.UpperPercentile,
		MinGoodShots:    g.MinGoodShots,
	}
}

// RunConfig tunes assembly runs.
type RunConfig struct {
	Concurrency int `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"gte=1,lte=64"`
}

// ExportConfig locates upload input and report output.
type ExportConfig struct {
	UploadsDir string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR" validate:"required"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	ShotsCSV   bool   `yaml:"shots_csv" envconfig:"SHOTS_CSV"`
}

// Load loads configuration from built-in defaults, the first config
// file found in the usual locations, and GOLF_* environment variables,
// in ascending order of precedence.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit config file. An empty path skips
// the file layer.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("GOLF", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// normalize fills gaps a partial file or hand-built Config can leave.
// The log format is always JSON.
func (c *Config) normalize() {
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	c.Logging.Format = DefaultLogFormat
	if c.Logging.Output == "" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
	if c.Roster.Path == "" {
		c.Roster.Path = DefaultRosterFile
	}
	if (c.Gapping == GappingConfig{}) {
		c.Gapping = Default().Gapping
	}
	if c.Run.Concurrency == 0 {
		c.Run.Concurrency = DefaultRunConcurrency
	}
	if c.Export.UploadsDir == "" {
		c.Export.UploadsDir = DefaultUploadsDir
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = DefaultOutputDir
	}
}

// Validate checks field bounds and the gapping band ordering.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Gapping.Engine().Validate()
}

// findConfigFile returns the first config file present in the usual
// locations, or "" when none exists.
func findConfigFile() string {
	locations := []string{
		"golfpulse.yaml",
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "both",
			FilePath: DefaultLogFile,
		},
		Roster: RosterConfig{
			Path: DefaultRosterFile,
		},
		Gapping: GappingConfig{
			LowerPercentile: gapping.DefaultLowerPercentile,
			UpperPercentile: gapping.DefaultUpperPercentile,
			MinGoodShots:    gapping.DefaultMinGoodShots,
		},
		Run: RunConfig{
			Concurrency: DefaultRunConcurrency,
		},
		Export: ExportConfig{
			UploadsDir: DefaultUploadsDir,
			OutputDir:  DefaultOutputDir,
		},
	}
}
