package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Trips  TripsConfig  `yaml:"trips" mapstructure:"trips"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the reference datasets and the trip batch directory.
// Relative file names are resolved against Dir.
type DataConfig struct {
	Dir              string `yaml:"dir" mapstructure:"dir"`
	BlocksFile       string `yaml:"blocks_file" mapstructure:"blocks_file"`
	DemographicsFile string `yaml:"demographics_file" mapstructure:"demographics_file"`
	TripsDir         string `yaml:"trips_dir" mapstructure:"trips_dir"`
}

// Resolve returns name joined to Dir unless name is already absolute.
func (d DataConfig) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

// TripsConfig configures trip batch parsing.
type TripsConfig struct {
	HeaderSuffix    string `yaml:"header_suffix" mapstructure:"header_suffix"`
	Encoding        string `yaml:"encoding" mapstructure:"encoding"`
	TimestampLayout string `yaml:"timestamp_layout" mapstructure:"timestamp_layout"`
}

// OutputConfig configures where pickup count tables are written.
type OutputConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Manifest bool   `yaml:"manifest" mapstructure:"manifest"`
}

// StoreConfig configures the optional database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	// A .env file is optional; anything it sets is picked up by AutomaticEnv below.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TAXIBLOCKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", ".")
	v.SetDefault("data.blocks_file", "nyc_cbg_geoms.geojson")
	v.SetDefault("data.demographics_file", "nyc_acs_demographics.csv")
	v.SetDefault("data.trips_dir", "data")
	v.SetDefault("trips.header_suffix", "00")
	v.SetDefault("trips.encoding", "utf-8")
	v.SetDefault("trips.timestamp_layout", "2006-01-02 15:04:05")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.manifest", true)
	v.SetDefault("store.driver", "none")
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

// Validate checks the settings that would otherwise fail late in a run.
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case "", "none", "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "unsupported store.driver "+c.Store.Driver)
	}

	if c.Trips.HeaderSuffix == "" {
		problems = append(problems, "trips.header_suffix must not be empty")
	}
	if c.Trips.TimestampLayout == "" {
		problems = append(problems, "trips.timestamp_layout must not be empty")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
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
