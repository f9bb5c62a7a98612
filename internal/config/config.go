package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Engine    EngineConfig    `yaml:"engine"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	// Driver selects the backend: "sqlite" (local file, default) or
	// "postgres" (hosted deployments).
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// EngineConfig holds the exercise-engine tuning constants. The defaults are
// empirical values carried over from field testing; change them in config,
// not in code.
type EngineConfig struct {
	TurnThreshold       float64 `yaml:"turn_threshold"`
	TiltThreshold       float64 `yaml:"tilt_threshold"`
	DeviationThreshold  float64 `yaml:"deviation_threshold"`
	MinConfidence       float64 `yaml:"min_confidence"`
	HoldMs              int     `yaml:"hold_ms"`
	GraceMs             int     `yaml:"grace_ms"`
	SampleIntervalMs    int     `yaml:"sample_interval_ms"`
	WatchdogIntervalMs  int     `yaml:"watchdog_interval_ms"`
	ClockTickMs         int     `yaml:"clock_tick_ms"`
	MaxReps             int     `yaml:"max_reps"`
	MeditationTargetMs  int     `yaml:"meditation_target_ms"`
	StabilizationMs     int     `yaml:"stabilization_ms"`
	CalibrationSettleMs int     `yaml:"calibration_settle_ms"`
	CalibrationWindowMs int     `yaml:"calibration_window_ms"`
	PoseFreshnessMs     int     `yaml:"pose_freshness_ms"`
}

// DefaultEngine returns the stock engine tuning.
func DefaultEngine() EngineConfig {
	return EngineConfig{
		TurnThreshold:       0.15,
		TiltThreshold:       0.005,
		DeviationThreshold:  0.05,
		MinConfidence:       0.5,
		HoldMs:              3000,
		GraceMs:             2000,
		SampleIntervalMs:    100,
		WatchdogIntervalMs:  200,
		ClockTickMs:         1000,
		MaxReps:             7,
		MeditationTargetMs:  180000,
		StabilizationMs:     2000,
		CalibrationSettleMs: 1000,
		CalibrationWindowMs: 3000,
		PoseFreshnessMs:     1000,
	}
}

func (e EngineConfig) Hold() time.Duration              { return msDur(e.HoldMs) }
func (e EngineConfig) Grace() time.Duration             { return msDur(e.GraceMs) }
func (e EngineConfig) SampleInterval() time.Duration    { return msDur(e.SampleIntervalMs) }
func (e EngineConfig) WatchdogInterval() time.Duration  { return msDur(e.WatchdogIntervalMs) }
func (e EngineConfig) ClockTick() time.Duration         { return msDur(e.ClockTickMs) }
func (e EngineConfig) MeditationTarget() time.Duration  { return msDur(e.MeditationTargetMs) }
func (e EngineConfig) Stabilization() time.Duration     { return msDur(e.StabilizationMs) }
func (e EngineConfig) CalibrationSettle() time.Duration { return msDur(e.CalibrationSettleMs) }
func (e EngineConfig) CalibrationWindow() time.Duration { return msDur(e.CalibrationWindowMs) }
func (e EngineConfig) PoseFreshness() time.Duration     { return msDur(e.PoseFreshnessMs) }

func msDur(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// DSN returns the database/sql driver name and connection string.
func (d DatabaseConfig) DSN() (string, string) {
	if d.Driver == "postgres" {
		return "pgx", d.postgresURL()
	}
	return "sqlite", d.Path
}

// MigrateURL returns the golang-migrate database URL.
func (d DatabaseConfig) MigrateURL() string {
	if d.Driver == "postgres" {
		return d.postgresURL()
	}
	return "sqlite://" + d.Path
}

func (d DatabaseConfig) postgresURL() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Default returns a configuration with sqlite storage and stock engine
// tuning. Only server.port and auth.api_key have no usable default.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "127.0.0.1"},
		Database: DatabaseConfig{Driver: "sqlite", Path: "posturely.db"},
		Engine:   DefaultEngine(),
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix POSTURELY_ and underscore-separated
// paths:
//
//	POSTURELY_SERVER_HOST, POSTURELY_SERVER_PORT,
//	POSTURELY_DB_DRIVER, POSTURELY_DB_PATH,
//	POSTURELY_DB_HOST, POSTURELY_DB_PORT, POSTURELY_DB_NAME,
//	POSTURELY_DB_USER, POSTURELY_DB_PASSWORD, POSTURELY_DB_SSLMODE,
//	POSTURELY_AUTH_API_KEY
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POSTURELY_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("POSTURELY_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("POSTURELY_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("POSTURELY_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("POSTURELY_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("POSTURELY_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("POSTURELY_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("POSTURELY_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("POSTURELY_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("POSTURELY_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("POSTURELY_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for postgres")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required for postgres")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required for postgres")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	return c.Engine.validate()
}

func (e EngineConfig) validate() error {
	if e.TurnThreshold <= 0 || e.TiltThreshold <= 0 || e.DeviationThreshold <= 0 {
		return fmt.Errorf("engine thresholds must be positive")
	}
	if e.SampleIntervalMs <= 0 || e.WatchdogIntervalMs <= 0 || e.ClockTickMs <= 0 {
		return fmt.Errorf("engine intervals must be positive")
	}
	if e.HoldMs <= 0 || e.GraceMs <= 0 || e.MeditationTargetMs <= 0 {
		return fmt.Errorf("engine hold, grace and meditation target must be positive")
	}
	if e.MaxReps <= 0 {
		return fmt.Errorf("engine max_reps must be positive")
	}
	return nil
}
