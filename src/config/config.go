// Package config provides configuration management for regcheck.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"regcheck/src/contracts"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	// BuildkiteAPIToken is the API token for authenticating with Buildkite.
	BuildkiteAPIToken string `mapstructure:"buildkite_api_token"`
	// GitHubToken authenticates GitHub Actions API calls.
	GitHubToken string `mapstructure:"github_token"`

	Checks  contracts.CheckConfiguration `mapstructure:"checks"`
	Store   StoreConfig                  `mapstructure:"store"`
	Broker  BrokerConfig                 `mapstructure:"broker"`
	Log     LogConfig                    `mapstructure:"log"`
	History HistoryConfig                `mapstructure:"history"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"` // sqlite file
	DSN    string `mapstructure:"dsn"`  // postgres connection string
}

type BrokerConfig struct {
	// Brokers is a comma-separated list of Redpanda seed addresses. Empty
	// selects the in-memory broker.
	Brokers string `mapstructure:"brokers"`
}

// Addresses splits Brokers into individual seed addresses.
func (b BrokerConfig) Addresses() []string {
	var out []string
	for _, a := range strings.Split(b.Brokers, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HistoryConfig struct {
	// Depth is how many earlier builds are fetched from a CI provider, and how
	// many stored builds are read per query while looking for the baseline.
	Depth int `mapstructure:"depth"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("buildkite_api_token", "")
	v.SetDefault("github_token", "")
	v.SetDefault("checks.pmd", true)
	v.SetDefault("checks.findbugs", true)
	v.SetDefault("checks.checkstyle", true)
	v.SetDefault("checks.coverage", true)
	v.SetDefault("checks.coverage_threshold", contracts.DefaultCoverageThreshold)
	v.SetDefault("checks.coverage_tolerance", 0.0)
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.path", "regcheck.db")
	v.SetDefault("store.dsn", "")
	v.SetDefault("broker.brokers", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("history.depth", 50)
}

// NewViper returns a viper instance wired to the config file, REGCHECK_*
// environment variables and the plain provider variables. cfgFile may be
// empty, in which case .regcheck.yaml is searched in the working and home
// directories. A missing config file is not an error.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := newEnvViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".regcheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

func newEnvViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("REGCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("buildkite_api_token", "REGCHECK_BUILDKITE_API_TOKEN", "BUILDKITE_API_TOKEN")
	_ = v.BindEnv("github_token", "REGCHECK_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("broker.brokers", "REGCHECK_BROKER_BROKERS", "REDPANDA_BROKERS")
	_ = v.BindEnv("store.dsn", "REGCHECK_STORE_DSN", "POSTGRES_DSN")
	return v
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q (want memory, sqlite or postgres)", c.Store.Driver)
	}

	if c.Checks.CoverageThreshold <= 0 || c.Checks.CoverageThreshold > 100 {
		return fmt.Errorf("checks.coverage_threshold must be above 0 and at most 100, got %v", c.Checks.CoverageThreshold)
	}
	if c.Checks.CoverageTolerance < 0 {
		return fmt.Errorf("checks.coverage_tolerance must not be negative, got %v", c.Checks.CoverageTolerance)
	}
	if c.History.Depth <= 0 {
		return fmt.Errorf("history.depth must be positive, got %d", c.History.Depth)
	}
	return nil
}

// CheckConfig returns the check selection for one evaluation.
func (c *Config) CheckConfig() contracts.CheckConfiguration {
	return c.Checks
}

// LoadFromEnv loads configuration from defaults and environment variables
// only, and requires at least one CI provider token.
func LoadFromEnv() (*Config, error) {
	cfg, err := Load(newEnvViper())
	if err != nil {
		return nil, err
	}
	if cfg.BuildkiteAPIToken == "" && cfg.GitHubToken == "" {
		return nil, fmt.Errorf("BUILDKITE_API_TOKEN or GITHUB_TOKEN environment variable is required")
	}
	return cfg, nil
}

// ProviderToken returns the API token for a registered CI provider name.
func (c *Config) ProviderToken(name string) string {
	switch name {
	case "buildkite":
		return c.BuildkiteAPIToken
	case "github":
		return c.GitHubToken
	}
	return ""
}
