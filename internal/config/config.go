package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/pincode-shipping/internal/calculator"
	"github.com/eugenenazirov/pincode-shipping/internal/logging"
	"github.com/eugenenazirov/pincode-shipping/internal/shipping"
)

const (
	defaultPort           = "20003"
	defaultLogLevel       = "info"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	LogLevel             string
	Package              shipping.PackageProfile
	Carriers             shipping.RateTable
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	RedisAddr            string
	RedisKeyPrefix       string
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string         `yaml:"port"`
	LogLevel             string         `yaml:"log_level"`
	Package              *yamlPackage   `yaml:"package"`
	Carriers             []yamlCarrier  `yaml:"carriers"`
	ShutdownGracePeriod  string         `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string         `yaml:"read_header_timeout"`
	WriteTimeout         string         `yaml:"write_timeout"`
	IdleTimeout          string         `yaml:"idle_timeout"`
	EnableRequestLogging *bool          `yaml:"enable_request_logging"`
	RateLimit            *yamlRateLimit `yaml:"rate_limit"`
	Redis                yamlRedis      `yaml:"redis"`
}

// yamlPackage overrides individual package profile values; zero keeps the default.
type yamlPackage struct {
	Length            float64 `yaml:"length"`
	Breadth           float64 `yaml:"breadth"`
	Height            float64 `yaml:"height"`
	ActualWeight      float64 `yaml:"actual_weight"`
	VolumetricDivisor float64 `yaml:"volumetric_divisor"`
}

type yamlCarrier struct {
	Name  string             `yaml:"name"`
	Rates map[string]float64 `yaml:"rates"`
}

// yamlRateLimit represents the rate limit section in YAML. Omitted fields
// keep the value resolved so far; an explicit 0 disables limiting.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

type yamlRedis struct {
	Addr      string `yaml:"addr"`
	KeyPrefix string `yaml:"key_prefix"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
	RedisAddr      *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment first so the YAML file can override it.
	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		LogLevel:             defaultLogLevel,
		Package:              shipping.DefaultPackageProfile(),
		Carriers:             shipping.DefaultRateTable(),
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.Package != nil {
		applyYAMLPackage(&cfg.Package, yamlCfg.Package)
	}

	if len(yamlCfg.Carriers) > 0 {
		table, err := parseCarriers(yamlCfg.Carriers)
		if err != nil {
			return err
		}
		cfg.Carriers = table
	}

	durations := []struct {
		raw    string
		target *time.Duration
		name   string
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod, "shutdown_grace_period"},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout, "read_header_timeout"},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout, "write_timeout"},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout, "idle_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, d.raw, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit != nil {
		if yamlCfg.RateLimit.RPS != nil {
			cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
		}
		if yamlCfg.RateLimit.Burst != nil {
			cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
		}
	}

	if yamlCfg.Redis.Addr != "" {
		cfg.RedisAddr = yamlCfg.Redis.Addr
	}
	if yamlCfg.Redis.KeyPrefix != "" {
		cfg.RedisKeyPrefix = yamlCfg.Redis.KeyPrefix
	}

	return nil
}

func applyYAMLPackage(p *shipping.PackageProfile, y *yamlPackage) {
	if y.Length != 0 {
		p.Length = y.Length
	}
	if y.Breadth != 0 {
		p.Breadth = y.Breadth
	}
	if y.Height != 0 {
		p.Height = y.Height
	}
	if y.ActualWeight != 0 {
		p.ActualWeight = y.ActualWeight
	}
	if y.VolumetricDivisor != 0 {
		p.VolumetricDivisor = y.VolumetricDivisor
	}
}

// parseCarriers converts the YAML carrier list, keeping its order.
func parseCarriers(carriers []yamlCarrier) (shipping.RateTable, error) {
	table := make(shipping.RateTable, 0, len(carriers))
	for _, c := range carriers {
		name := strings.TrimSpace(c.Name)
		rates := make(map[shipping.Level]float64, len(c.Rates))
		for rawLevel, rate := range c.Rates {
			level, err := shipping.ParseLevel(strings.ToLower(strings.TrimSpace(rawLevel)))
			if err != nil {
				return nil, fmt.Errorf("carrier %q: %w", name, err)
			}
			rates[level] = rate
		}
		table = append(table, shipping.CarrierRates{Name: name, Rates: rates})
	}
	return table, nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		cfg.RedisAddr = addr
	}

	if prefix := strings.TrimSpace(os.Getenv("REDIS_KEY_PREFIX")); prefix != "" {
		cfg.RedisKeyPrefix = prefix
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.RedisAddr != nil && *overrides.RedisAddr != "" {
		cfg.RedisAddr = *overrides.RedisAddr
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if err := calculator.ValidateProfile(cfg.Package); err != nil {
		return fmt.Errorf("package profile: %w", err)
	}
	if err := calculator.ValidateRateTable(cfg.Carriers); err != nil {
		return fmt.Errorf("carriers: %w", err)
	}
	return nil
}
