package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete opsdeck configuration
type Config struct {
	Services     ServicesConfig     `mapstructure:"services"`
	Polling      PollingConfig      `mapstructure:"polling"`
	Gate         GateConfig         `mapstructure:"gate"`
	RateShopping RateShoppingConfig `mapstructure:"rate_shopping"`
	TUI          TUIConfig          `mapstructure:"tui"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Paths        PathsConfig        `mapstructure:"paths"`
}

// ServicesConfig holds the base URLs and credentials for the backend services
// the console talks to.
type ServicesConfig struct {
	// IMSBaseURL is the inventory management service endpoint
	IMSBaseURL string `mapstructure:"ims_base_url"`
	// OMSBaseURL is the order management service endpoint
	OMSBaseURL string `mapstructure:"oms_base_url"`
	// WMSBaseURL is the warehouse management service endpoint
	WMSBaseURL string `mapstructure:"wms_base_url"`
	// SMSBaseURL is the shipment management service endpoint
	SMSBaseURL string `mapstructure:"sms_base_url"`
	// Token is the bearer token sent with every request. Usually supplied
	// via the OPSDECK_SERVICES_TOKEN environment variable rather than the
	// config file.
	Token string `mapstructure:"token"`
	// TimeoutSeconds is the per-request HTTP timeout (default: 10)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// PollingConfig controls the refresh cadence of the console's pollers
type PollingConfig struct {
	// WaveIntervalMs is the wave list refresh interval (default: 3000)
	WaveIntervalMs int `mapstructure:"wave_interval_ms"`
	// WorkflowIntervalMs is the workflow status refresh interval while a
	// wave or order is open (default: 2000)
	WorkflowIntervalMs int `mapstructure:"workflow_interval_ms"`
	// RateShoppingIntervalMs is the refresh interval while carrier quotes
	// are being fetched (default: 1000)
	RateShoppingIntervalMs int `mapstructure:"rate_shopping_interval_ms"`
	// PauseWhenHidden stops fetching while the terminal is unfocused
	// (default: true)
	PauseWhenHidden bool `mapstructure:"pause_when_hidden"`
}

// GateConfig controls how operator actions are enabled from workflow state
type GateConfig struct {
	// OptimisticStepless enables pick signals when the workflow reports an
	// active status but no current step yet (default: true)
	OptimisticStepless bool `mapstructure:"optimistic_stepless"`
	// PackStepPattern is the glob matched against unrecognized step names
	// to decide whether packs may be signalled (default: "*PACK*")
	PackStepPattern string `mapstructure:"pack_step_pattern"`
}

// RateShoppingConfig controls the carrier quote flow
type RateShoppingConfig struct {
	// RequireAllCarriers treats the quote round as failed unless every
	// carrier returned a rate (default: true). When false, a round with at
	// least one quote completes and the missing carriers show as failed.
	RequireAllCarriers bool `mapstructure:"require_all_carriers"`
	// TimeoutSeconds bounds a quote round before it is marked failed
	// (default: 60, 0 = no timeout)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// MaxTableRows limits how many waves or orders are rendered per screen
	MaxTableRows int `mapstructure:"max_table_rows"`
	// ShowBlockingReasons renders the workflow's blocking reason under the
	// status card when present (default: true)
	ShowBlockingReasons bool `mapstructure:"show_blocking_reasons"`
	// ConfirmCancellations requires typing the entity id before a cancel
	// signal is sent (default: true)
	ConfirmCancellations bool `mapstructure:"confirm_cancellations"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether file logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// PathsConfig controls where opsdeck stores data
type PathsConfig struct {
	// LogDir is the directory log files are written to.
	// If empty, defaults to the config directory.
	// Supports ~ for home directory expansion.
	LogDir string `mapstructure:"log_dir"`
}

// ResolveLogDir returns the resolved log directory path.
// If LogDir is empty, it falls back to the config directory.
// If LogDir starts with ~, it expands to the user's home directory.
func (p *PathsConfig) ResolveLogDir() string {
	if p.LogDir == "" {
		return ConfigDir()
	}

	path := p.LogDir
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Services: ServicesConfig{
			IMSBaseURL:     "http://localhost:8081",
			OMSBaseURL:     "http://localhost:8082",
			WMSBaseURL:     "http://localhost:8083",
			SMSBaseURL:     "http://localhost:8084",
			Token:          "",
			TimeoutSeconds: 10,
		},
		Polling: PollingConfig{
			WaveIntervalMs:         3000,
			WorkflowIntervalMs:     2000,
			RateShoppingIntervalMs: 1000,
			PauseWhenHidden:        true,
		},
		Gate: GateConfig{
			OptimisticStepless: true,
			PackStepPattern:    "*PACK*",
		},
		RateShopping: RateShoppingConfig{
			RequireAllCarriers: true,
			TimeoutSeconds:     60,
		},
		TUI: TUIConfig{
			MaxTableRows:         200,
			ShowBlockingReasons:  true,
			ConfirmCancellations: true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Paths: PathsConfig{
			LogDir: "", // Empty means use the config directory
		},
	}
}

// Timeout returns the HTTP request timeout as a time.Duration
func (s *ServicesConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// WaveInterval returns the wave list polling interval as a time.Duration
func (p *PollingConfig) WaveInterval() time.Duration {
	return time.Duration(p.WaveIntervalMs) * time.Millisecond
}

// WorkflowInterval returns the workflow polling interval as a time.Duration
func (p *PollingConfig) WorkflowInterval() time.Duration {
	return time.Duration(p.WorkflowIntervalMs) * time.Millisecond
}

// RateShoppingInterval returns the rate shopping polling interval as a time.Duration
func (p *PollingConfig) RateShoppingInterval() time.Duration {
	return time.Duration(p.RateShoppingIntervalMs) * time.Millisecond
}

// Timeout returns the quote round timeout as a time.Duration (0 means disabled)
func (r *RateShoppingConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Service defaults
	viper.SetDefault("services.ims_base_url", defaults.Services.IMSBaseURL)
	viper.SetDefault("services.oms_base_url", defaults.Services.OMSBaseURL)
	viper.SetDefault("services.wms_base_url", defaults.Services.WMSBaseURL)
	viper.SetDefault("services.sms_base_url", defaults.Services.SMSBaseURL)
	viper.SetDefault("services.token", defaults.Services.Token)
	viper.SetDefault("services.timeout_seconds", defaults.Services.TimeoutSeconds)

	// Polling defaults
	viper.SetDefault("polling.wave_interval_ms", defaults.Polling.WaveIntervalMs)
	viper.SetDefault("polling.workflow_interval_ms", defaults.Polling.WorkflowIntervalMs)
	viper.SetDefault("polling.rate_shopping_interval_ms", defaults.Polling.RateShoppingIntervalMs)
	viper.SetDefault("polling.pause_when_hidden", defaults.Polling.PauseWhenHidden)

	// Gate defaults
	viper.SetDefault("gate.optimistic_stepless", defaults.Gate.OptimisticStepless)
	viper.SetDefault("gate.pack_step_pattern", defaults.Gate.PackStepPattern)

	// Rate shopping defaults
	viper.SetDefault("rate_shopping.require_all_carriers", defaults.RateShopping.RequireAllCarriers)
	viper.SetDefault("rate_shopping.timeout_seconds", defaults.RateShopping.TimeoutSeconds)

	// TUI defaults
	viper.SetDefault("tui.max_table_rows", defaults.TUI.MaxTableRows)
	viper.SetDefault("tui.show_blocking_reasons", defaults.TUI.ShowBlockingReasons)
	viper.SetDefault("tui.confirm_cancellations", defaults.TUI.ConfirmCancellations)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Paths defaults
	viper.SetDefault("paths.log_dir", defaults.Paths.LogDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "opsdeck")
	}
	// Fall back to ~/.config/opsdeck
	home, err := os.UserHomeDir()
	if err != nil {
		return ".opsdeck"
	}
	return filepath.Join(home, ".config", "opsdeck")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
