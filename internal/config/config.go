// Package config loads application configuration and bootstraps logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/urbanmetrics/transitgap/internal/crs"
	"github.com/urbanmetrics/transitgap/internal/ingest"
)

// Config holds the full application configuration.
type Config struct {
	Zones      ZonesConfig      `yaml:"zones" mapstructure:"zones"`
	Stops      StopsConfig      `yaml:"stops" mapstructure:"stops"`
	CRS        CRSConfig        `yaml:"crs" mapstructure:"crs"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Engine     EngineConfig     `yaml:"engine" mapstructure:"engine"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ZonesConfig points at the census zone inputs.
type ZonesConfig struct {
	Shapefile   string  `yaml:"shapefile" mapstructure:"shapefile"`
	IDField     string  `yaml:"id_field" mapstructure:"id_field"`
	CensusXLSX  string  `yaml:"census_xlsx" mapstructure:"census_xlsx"`
	CensusSheet int     `yaml:"census_sheet" mapstructure:"census_sheet"`
	MinAreaKm2  float64 `yaml:"min_area_km2" mapstructure:"min_area_km2"`
}

// StopsConfig lists the transport stop layers to union.
type StopsConfig struct {
	Layers []ingest.StopLayer `yaml:"layers" mapstructure:"layers"`
}

// CRSConfig holds the source and target reference frames as PROJ.4
// strings. The target must be planar.
type CRSConfig struct {
	Source string `yaml:"source" mapstructure:"source"`
	Target string `yaml:"target" mapstructure:"target"`
}

// ThresholdsConfig defines the high-potential predicate.
type ThresholdsConfig struct {
	DensityPerKm2 float64 `yaml:"density_per_km2" mapstructure:"density_per_km2"`
	DistanceM     float64 `yaml:"distance_m" mapstructure:"distance_m"`
}

// EngineConfig tunes the distance engine.
type EngineConfig struct {
	Concurrency      int `yaml:"concurrency" mapstructure:"concurrency"`
	BruteForceCutoff int `yaml:"brute_force_cutoff" mapstructure:"brute_force_cutoff"`
}

// StoreConfig configures the SQLite analysis store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig configures report outputs.
type OutputConfig struct {
	Dir  string `yaml:"dir" mapstructure:"dir"`
	TopN int    `yaml:"top_n" mapstructure:"top_n"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRANSITGAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("zones.id_field", "CVEGEO")
	v.SetDefault("zones.census_sheet", 0)
	v.SetDefault("zones.min_area_km2", 0.01)
	v.SetDefault("crs.source", crs.DefaultSource)
	v.SetDefault("crs.target", crs.DefaultTarget)
	v.SetDefault("thresholds.density_per_km2", 8000)
	v.SetDefault("thresholds.distance_m", 800)
	v.SetDefault("engine.concurrency", 0)
	v.SetDefault("engine.brute_force_cutoff", 64)
	v.SetDefault("store.path", "transitgap.db")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.top_n", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
