package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "polling.wave_interval_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateServices()...)
	errors = append(errors, c.validatePolling()...)
	errors = append(errors, c.validateGate()...)
	errors = append(errors, c.validateRateShopping()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateServices validates the ServicesConfig
func (c *Config) validateServices() []ValidationError {
	var errors []ValidationError

	urls := []struct {
		field string
		value string
	}{
		{"services.ims_base_url", c.Services.IMSBaseURL},
		{"services.oms_base_url", c.Services.OMSBaseURL},
		{"services.wms_base_url", c.Services.WMSBaseURL},
		{"services.sms_base_url", c.Services.SMSBaseURL},
	}

	for _, u := range urls {
		if u.value == "" {
			errors = append(errors, ValidationError{
				Field:   u.field,
				Value:   u.value,
				Message: "cannot be empty",
			})
			continue
		}
		parsed, err := url.Parse(u.value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errors = append(errors, ValidationError{
				Field:   u.field,
				Value:   u.value,
				Message: "must be an absolute URL (e.g. http://host:port)",
			})
		}
	}

	// Timeout bounds
	const minTimeout = 1
	const maxTimeout = 300
	if c.Services.TimeoutSeconds < minTimeout {
		errors = append(errors, ValidationError{
			Field:   "services.timeout_seconds",
			Value:   c.Services.TimeoutSeconds,
			Message: fmt.Sprintf("must be at least %d second", minTimeout),
		})
	}
	if c.Services.TimeoutSeconds > maxTimeout {
		errors = append(errors, ValidationError{
			Field:   "services.timeout_seconds",
			Value:   c.Services.TimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxTimeout),
		})
	}

	return errors
}

// validatePolling validates the PollingConfig
func (c *Config) validatePolling() []ValidationError {
	var errors []ValidationError

	// Intervals below 250ms hammer the backends for no visible benefit;
	// intervals above a minute make the console useless as a live view.
	const minIntervalMs = 250
	const maxIntervalMs = 60_000

	intervals := []struct {
		field string
		value int
	}{
		{"polling.wave_interval_ms", c.Polling.WaveIntervalMs},
		{"polling.workflow_interval_ms", c.Polling.WorkflowIntervalMs},
		{"polling.rate_shopping_interval_ms", c.Polling.RateShoppingIntervalMs},
	}

	for _, iv := range intervals {
		if iv.value < minIntervalMs {
			errors = append(errors, ValidationError{
				Field:   iv.field,
				Value:   iv.value,
				Message: fmt.Sprintf("must be at least %dms", minIntervalMs),
			})
		}
		if iv.value > maxIntervalMs {
			errors = append(errors, ValidationError{
				Field:   iv.field,
				Value:   iv.value,
				Message: fmt.Sprintf("exceeds maximum of %dms", maxIntervalMs),
			})
		}
	}

	return errors
}

// validateGate validates the GateConfig
func (c *Config) validateGate() []ValidationError {
	var errors []ValidationError

	if c.Gate.PackStepPattern == "" {
		errors = append(errors, ValidationError{
			Field:   "gate.pack_step_pattern",
			Value:   c.Gate.PackStepPattern,
			Message: "cannot be empty",
		})
	} else if _, err := glob.Compile(c.Gate.PackStepPattern); err != nil {
		errors = append(errors, ValidationError{
			Field:   "gate.pack_step_pattern",
			Value:   c.Gate.PackStepPattern,
			Message: fmt.Sprintf("invalid glob pattern: %v", err),
		})
	}

	return errors
}

// validateRateShopping validates the RateShoppingConfig
func (c *Config) validateRateShopping() []ValidationError {
	var errors []ValidationError

	if c.RateShopping.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "rate_shopping.timeout_seconds",
			Value:   c.RateShopping.TimeoutSeconds,
			Message: "must be non-negative (0 disables the timeout)",
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.MaxTableRows < 1 {
		errors = append(errors, ValidationError{
			Field:   "tui.max_table_rows",
			Value:   c.TUI.MaxTableRows,
			Message: "must be at least 1",
		})
	}

	const maxTableRowsLimit = 10_000
	if c.TUI.MaxTableRows > maxTableRowsLimit {
		errors = append(errors, ValidationError{
			Field:   "tui.max_table_rows",
			Value:   c.TUI.MaxTableRows,
			Message: fmt.Sprintf("exceeds maximum of %d", maxTableRowsLimit),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
