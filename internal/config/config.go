package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"clamser/pkg/contracts/domain"
)

// Config is the complete runtime configuration for a batch run: where files
// live, how to log, and the analysis settings handed to the pipeline.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/clamser.log"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	InputDir       string `yaml:"input_dir" envconfig:"INPUT_DIR" default:"data/uploads"`
	ReportsDir     string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
	BodyWeightFile string `yaml:"body_weight_file" envconfig:"BODY_WEIGHT_FILE"`
	LeanMassFile   string `yaml:"lean_mass_file" envconfig:"LEAN_MASS_FILE"`
}

// AnalysisConfig holds the user-facing analysis settings. It is validated
// at the boundary and converted into the immutable domain.AnalysisSettings
// the pipeline consumes.
type AnalysisConfig struct {
	Parameter        string              `yaml:"parameter" envconfig:"PARAMETER"`
	TimeWindow       string              `yaml:"time_window" envconfig:"TIME_WINDOW" default:"Entire Dataset" validate:"oneof='Entire Dataset' 'Last 24 Hours' 'Last 48 Hours' 'Last 72 Hours' 'Custom'"`
	CustomStartHour  int                 `yaml:"custom_start_hour" envconfig:"CUSTOM_START_HOUR" validate:"min=0,max=23"`
	CustomEndHour    int                 `yaml:"custom_end_hour" envconfig:"CUSTOM_END_HOUR" validate:"min=0,max=23"`
	LightStart       int                 `yaml:"light_start" envconfig:"LIGHT_START" default:"7" validate:"min=0,max=23"`
	LightEnd         int                 `yaml:"light_end" envconfig:"LIGHT_END" default:"19" validate:"min=0,max=23"`
	OutlierThreshold float64             `yaml:"outlier_threshold" envconfig:"OUTLIER_THRESHOLD" validate:"min=0"`
	Normalization    string              `yaml:"normalization" envconfig:"NORMALIZATION" default:"Absolute Values" validate:"oneof='Absolute Values' 'Body Weight Normalized' 'Lean Mass Normalized'"`
	Groups           map[string][]string `yaml:"groups" ignored:"true"`
}

// Load builds the configuration from defaults and environment variables
// (prefix CLAMS), overlaid by the YAML file at path when it exists.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CLAMS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and the mutual exclusivity of group
// membership. The transform core tolerates overlapping groups; the boundary
// does not.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	assigned := make(map[string]string)
	for group, animals := range c.Analysis.Groups {
		for _, animal := range animals {
			id := strings.TrimSpace(animal)
			if other, ok := assigned[id]; ok && other != group {
				return fmt.Errorf("animal %q assigned to both group %q and group %q", id, other, group)
			}
			assigned[id] = group
		}
	}
	return nil
}

// Settings converts the validated analysis section into the immutable
// settings object passed into each pipeline invocation.
func (c *AnalysisConfig) Settings() domain.AnalysisSettings {
	groups := make(domain.GroupAssignments, len(c.Groups))
	for name, animals := range c.Groups {
		groups[name] = append([]string(nil), animals...)
	}
	return domain.AnalysisSettings{
		SelectedParameter: c.Parameter,
		TimeWindow:        domain.TimeWindow(c.TimeWindow),
		CustomStartHour:   c.CustomStartHour,
		CustomEndHour:     c.CustomEndHour,
		LightStart:        c.LightStart,
		LightEnd:          c.LightEnd,
		OutlierThreshold:  c.OutlierThreshold,
		Normalization:     domain.NormalizationMode(c.Normalization),
		Groups:            groups,
	}
}
