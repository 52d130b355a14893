package appconf

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML form of Config.
type FileConfig struct {
	Port      int    `yaml:"port" validate:"gte=0,lte=65535"`
	Env       string `yaml:"env" validate:"omitempty,oneof=development test production"`
	Verbose   bool   `yaml:"verbose"`
	RateLimit *int   `yaml:"rate-limit" validate:"omitempty,gte=0"`

	Data FileDataConfig `yaml:"data"`

	RefreshInterval time.Duration `yaml:"refresh-interval" validate:"gte=0"`
	CacheSize       *int          `yaml:"cache-size" validate:"omitempty,gte=0"`
	CacheTTL        time.Duration `yaml:"cache-ttl" validate:"gte=0"`
	Timezone        string        `yaml:"timezone" validate:"omitempty,timezone"`
	StaleAfter      time.Duration `yaml:"stale-after" validate:"gte=0"`

	FilterScope      []string `yaml:"filter-scope" validate:"omitempty,dive,oneof=hourly_ridership weekly_ridership time_block_ridership station_stats borough_stats line_stats metrics station_map"`
	ExcludedStations []string `yaml:"excluded-stations" validate:"omitempty,dive,required"`
}

// FileDataConfig is the YAML form of DataConfig.
type FileDataConfig struct {
	CSVPath     string        `yaml:"csv"`
	RemoteURL   string        `yaml:"url" validate:"omitempty,url"`
	RowLimit    int           `yaml:"row-limit" validate:"gte=0"`
	AppToken    string        `yaml:"app-token"`
	SQLitePath  string        `yaml:"sqlite"`
	SQLiteTable string        `yaml:"sqlite-table"`
	HTTPTimeout time.Duration `yaml:"http-timeout" validate:"gte=0"`
}

// LoadFromFile reads and validates a YAML configuration file.
func LoadFromFile(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ToAppConfig layers the file values over Default().
func (f *FileConfig) ToAppConfig() Config {
	cfg := Default()
	if f.Port != 0 {
		cfg.Port = f.Port
	}
	if f.Env != "" {
		cfg.Env = EnvFlagToEnvironment(f.Env)
	}
	cfg.Verbose = f.Verbose
	if f.RateLimit != nil {
		cfg.RateLimit = *f.RateLimit
	}

	if f.Data.CSVPath != "" {
		cfg.Data.CSVPath = f.Data.CSVPath
	}
	if f.Data.RemoteURL != "" {
		cfg.Data.RemoteURL = f.Data.RemoteURL
	}
	if f.Data.RowLimit > 0 {
		cfg.Data.RowLimit = f.Data.RowLimit
	}
	cfg.Data.AppToken = f.Data.AppToken
	cfg.Data.SQLitePath = f.Data.SQLitePath
	if f.Data.SQLiteTable != "" {
		cfg.Data.SQLiteTable = f.Data.SQLiteTable
	}
	if f.Data.HTTPTimeout > 0 {
		cfg.Data.HTTPTimeout = f.Data.HTTPTimeout
	}

	cfg.RefreshInterval = f.RefreshInterval
	if f.CacheSize != nil {
		cfg.CacheSize = *f.CacheSize
	}
	if f.CacheTTL > 0 {
		cfg.CacheTTL = f.CacheTTL
	}
	if f.Timezone != "" {
		cfg.Timezone = f.Timezone
	}
	if f.StaleAfter > 0 {
		cfg.StaleAfter = f.StaleAfter
	}
	if f.FilterScope != nil {
		cfg.FilterScope = f.FilterScope
	}
	if f.ExcludedStations != nil {
		cfg.ExcludedStations = f.ExcludedStations
	}
	return cfg
}
