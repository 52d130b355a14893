// Package appconf defines the runtime configuration of the ridership services
// and loads it from YAML files, environment variables and flags.
package appconf

import (
	"strconv"
	"strings"
	"time"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps a flag or config value to an Environment.
// Unknown values map to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// DataConfig describes where ridership rows are loaded from. Sources are
// tried in order: CSV file, remote endpoint, SQLite table.
type DataConfig struct {
	CSVPath     string
	RemoteURL   string
	RowLimit    int
	AppToken    string
	SQLitePath  string
	SQLiteTable string
	HTTPTimeout time.Duration
}

// Config is the resolved application configuration.
type Config struct {
	Port      int
	Env       Environment
	Verbose   bool
	// RateLimit is requests per second per client. Zero disables limiting.
	RateLimit int

	Data DataConfig

	RefreshInterval time.Duration
	CacheSize       int
	CacheTTL        time.Duration
	Timezone        string

	// StaleAfter is how old the newest record may get before the health
	// check reports the dataset as stale. Zero disables the check.
	StaleAfter time.Duration

	// FilterScope names the outputs that are restricted to the requested
	// date window. Outputs not listed are computed over the full dataset.
	FilterScope      []string
	ExcludedStations []string
}

const (
	DefaultPort        = 4000
	DefaultRateLimit   = 100
	DefaultRowLimit    = 500000
	DefaultSQLiteTable = "ridership"
	DefaultCacheSize   = 64
	DefaultCacheTTL    = 10 * time.Minute
	DefaultHTTPTimeout = 60 * time.Second
	DefaultStaleAfter  = 14 * 24 * time.Hour
	DefaultRemoteURL   = "https://data.ny.gov/resource/wujg-7c2s.json"
)

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Port:      DefaultPort,
		Env:       Development,
		RateLimit: DefaultRateLimit,
		Data: DataConfig{
			RemoteURL:   DefaultRemoteURL,
			RowLimit:    DefaultRowLimit,
			SQLiteTable: DefaultSQLiteTable,
			HTTPTimeout: DefaultHTTPTimeout,
		},
		CacheSize:   DefaultCacheSize,
		CacheTTL:    DefaultCacheTTL,
		Timezone:    "UTC",
		StaleAfter:  DefaultStaleAfter,
		FilterScope: []string{"hourly_ridership"},
	}
}

// ParseList splits a comma separated flag or environment value, trimming
// whitespace around each element.
func ParseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// ApplyEnv overrides cfg from environment variables. getenv is usually
// os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := getenv("RIDERSHIP_CSV"); v != "" {
		cfg.Data.CSVPath = v
	}
	if v := getenv("RIDERSHIP_URL"); v != "" {
		cfg.Data.RemoteURL = v
	}
	if v := getenv("RIDERSHIP_SQLITE"); v != "" {
		cfg.Data.SQLitePath = v
	}
	if v := getenv("SODA_APP_TOKEN"); v != "" {
		cfg.Data.AppToken = v
	}
	if v := getenv("RIDERSHIP_ENV"); v != "" {
		cfg.Env = EnvFlagToEnvironment(v)
	}
	if v := getenv("RIDERSHIP_FILTER_SCOPE"); v != "" {
		cfg.FilterScope = ParseList(v)
	}
	if v := getenv("RIDERSHIP_EXCLUDED_STATIONS"); v != "" {
		cfg.ExcludedStations = ParseList(v)
	}
}

// Location resolves the configured timezone, defaulting to UTC.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "UTC" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}
