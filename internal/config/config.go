// Package config loads process configuration for the firecast command from an optional YAML
// file followed by FIRECAST_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	firecast "github.com/bfp-analytics/go-firecast"
	"github.com/bfp-analytics/go-firecast/areamodels"
	"github.com/bfp-analytics/go-firecast/forecast"
	"github.com/bfp-analytics/go-firecast/models"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Forecast *ForecastConfig `yaml:"forecast"`
	Database *DatabaseConfig `yaml:"database"`
	Log      *LogConfig      `yaml:"log"`
	Output   *OutputConfig   `yaml:"output"`
}

// ForecastConfig overrides the variant preset. Zero values keep the preset's setting.
type ForecastConfig struct {
	Variant          string  `yaml:"variant"`
	Workers          int     `yaml:"workers"`
	Precision        *int    `yaml:"precision"`
	Transform        string  `yaml:"transform"`
	Policy           string  `yaml:"policy"`
	Criterion        string  `yaml:"criterion"`
	MinMonths        int     `yaml:"min_months"`
	MinNonZero       *int    `yaml:"min_nonzero"`
	ValidationMonths *int    `yaml:"validation_months"`
	Alpha            float64 `yaml:"alpha"`
	UseAreaModels    bool    `yaml:"use_area_models"`
	AreaModelsFile   string  `yaml:"area_models_file"`
}

type DatabaseConfig struct {
	DSN       string `yaml:"dsn"`
	Table     string `yaml:"table"`
	StartYear int    `yaml:"start_year"`
	EndYear   int    `yaml:"end_year"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type OutputConfig struct {
	MetricsFile string `yaml:"metrics_file"`
	PlotDir     string `yaml:"plot_dir"`
}

func defaults() *Config {
	return &Config{
		Forecast: &ForecastConfig{},
		Database: &DatabaseConfig{},
		Log: &LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Output: &OutputConfig{},
	}
}

// Load reads the YAML file at path, when path is not empty, on top of the defaults and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config, %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("unable to parse config %s, %s, %w", path, err.Error(), ErrInvalidConfig)
		}
	}
	if cfg.Forecast == nil {
		cfg.Forecast = &ForecastConfig{}
	}
	if cfg.Database == nil {
		cfg.Database = &DatabaseConfig{}
	}
	if cfg.Log == nil {
		cfg.Log = defaults().Log
	}
	if cfg.Output == nil {
		cfg.Output = &OutputConfig{}
	}

	loadForecastEnv(cfg.Forecast)
	loadDatabaseEnv(cfg.Database)
	loadLogEnv(cfg.Log)
	loadOutputEnv(cfg.Output)
	return cfg, nil
}

func loadForecastEnv(c *ForecastConfig) {
	c.Variant = getEnv("FIRECAST_VARIANT", c.Variant)
	c.Workers = getEnvAsInt("FIRECAST_WORKERS", c.Workers)
	c.Precision = getEnvAsIntPtr("FIRECAST_PRECISION", c.Precision)
	c.Transform = getEnv("FIRECAST_TRANSFORM", c.Transform)
	c.Policy = getEnv("FIRECAST_POLICY", c.Policy)
	c.Criterion = getEnv("FIRECAST_CRITERION", c.Criterion)
	c.MinMonths = getEnvAsInt("FIRECAST_MIN_MONTHS", c.MinMonths)
	c.MinNonZero = getEnvAsIntPtr("FIRECAST_MIN_NONZERO", c.MinNonZero)
	c.ValidationMonths = getEnvAsIntPtr("FIRECAST_VALIDATION_MONTHS", c.ValidationMonths)
	c.Alpha = getEnvAsFloat64("FIRECAST_ALPHA", c.Alpha)
	c.UseAreaModels = getEnvAsBool("FIRECAST_USE_AREA_MODELS", c.UseAreaModels)
	c.AreaModelsFile = getEnv("FIRECAST_AREA_MODELS_FILE", c.AreaModelsFile)
}

func loadDatabaseEnv(c *DatabaseConfig) {
	c.DSN = getEnv("FIRECAST_DSN", c.DSN)
	c.Table = getEnv("FIRECAST_TABLE", c.Table)
	c.StartYear = getEnvAsInt("FIRECAST_START_YEAR", c.StartYear)
	c.EndYear = getEnvAsInt("FIRECAST_END_YEAR", c.EndYear)
}

func loadLogEnv(c *LogConfig) {
	c.Level = getEnv("FIRECAST_LOG_LEVEL", c.Level)
	c.Format = getEnv("FIRECAST_LOG_FORMAT", c.Format)
	c.Output = getEnv("FIRECAST_LOG_OUTPUT", c.Output)
}

func loadOutputEnv(c *OutputConfig) {
	c.MetricsFile = getEnv("FIRECAST_METRICS_FILE", c.MetricsFile)
	c.PlotDir = getEnv("FIRECAST_PLOT_DIR", c.PlotDir)
}

// Options builds pipeline options from the variant preset and the configured overrides.
func (c *ForecastConfig) Options() (*firecast.Options, error) {
	variant, err := firecast.ParseVariant(c.Variant)
	if err != nil {
		return nil, err
	}
	opt, err := firecast.NewVariantOptions(variant)
	if err != nil {
		return nil, err
	}

	if c.Workers != 0 {
		opt.Workers = c.Workers
	}
	if c.Precision != nil {
		opt.Precision = *c.Precision
	}
	if c.Transform != "" {
		t, err := forecast.ParseTransform(c.Transform)
		if err != nil {
			return nil, err
		}
		opt.Forecast.Transform = t
	}
	if c.Policy != "" {
		p, err := forecast.ParsePolicy(c.Policy)
		if err != nil {
			return nil, err
		}
		opt.Forecast.Policy = p
	}
	if c.Criterion != "" {
		crit, err := models.ParseCriterion(c.Criterion)
		if err != nil {
			return nil, err
		}
		opt.Forecast.Criterion = crit
	}
	if c.MinMonths != 0 {
		opt.Forecast.MinMonths = c.MinMonths
	}
	if c.MinNonZero != nil {
		opt.Forecast.MinNonZero = *c.MinNonZero
	}
	if c.ValidationMonths != nil {
		opt.Forecast.ValidationMonths = *c.ValidationMonths
	}
	if c.Alpha != 0 {
		opt.Forecast.Alpha = c.Alpha
	}

	opt.UseAreaModels = c.UseAreaModels || c.AreaModelsFile != ""
	if c.AreaModelsFile != "" {
		f, err := os.Open(c.AreaModelsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to open area models, %w", err)
		}
		defer f.Close()
		tbl, err := areamodels.Load(f)
		if err != nil {
			return nil, err
		}
		opt.AreaModels = tbl
	}
	return opt.Validate()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsIntPtr(key string, defaultValue *int) *int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return &intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
