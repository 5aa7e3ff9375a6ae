package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

// hasErrorFor reports whether errs contains a validation error for field.
func hasErrorFor(errs []ValidationError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

func TestConfig_Validate_Services(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		badField string
	}{
		{
			name:     "empty wms url",
			mutate:   func(c *Config) { c.Services.WMSBaseURL = "" },
			badField: "services.wms_base_url",
		},
		{
			name:     "relative url",
			mutate:   func(c *Config) { c.Services.OMSBaseURL = "localhost:8082" },
			badField: "services.oms_base_url",
		},
		{
			name:     "garbage url",
			mutate:   func(c *Config) { c.Services.IMSBaseURL = "://nope" },
			badField: "services.ims_base_url",
		},
		{
			name:     "zero timeout",
			mutate:   func(c *Config) { c.Services.TimeoutSeconds = 0 },
			badField: "services.timeout_seconds",
		},
		{
			name:     "excessive timeout",
			mutate:   func(c *Config) { c.Services.TimeoutSeconds = 301 },
			badField: "services.timeout_seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if !hasErrorFor(errs, tt.badField) {
				t.Errorf("expected validation error for %s, got: %v", tt.badField, errs)
			}
		})
	}

	t.Run("https url is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Services.SMSBaseURL = "https://sms.internal.example.com"
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})
}

func TestConfig_Validate_Polling(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		badField string
	}{
		{
			name:     "wave interval too small",
			mutate:   func(c *Config) { c.Polling.WaveIntervalMs = 100 },
			badField: "polling.wave_interval_ms",
		},
		{
			name:     "workflow interval too small",
			mutate:   func(c *Config) { c.Polling.WorkflowIntervalMs = 0 },
			badField: "polling.workflow_interval_ms",
		},
		{
			name:     "rate shopping interval too large",
			mutate:   func(c *Config) { c.Polling.RateShoppingIntervalMs = 120_000 },
			badField: "polling.rate_shopping_interval_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if !hasErrorFor(errs, tt.badField) {
				t.Errorf("expected validation error for %s, got: %v", tt.badField, errs)
			}
		})
	}

	t.Run("boundary values are valid", func(t *testing.T) {
		cfg := Default()
		cfg.Polling.WaveIntervalMs = 250
		cfg.Polling.WorkflowIntervalMs = 60_000
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})
}

func TestConfig_Validate_Gate(t *testing.T) {
	t.Run("empty pattern", func(t *testing.T) {
		cfg := Default()
		cfg.Gate.PackStepPattern = ""
		errs := cfg.Validate()
		if !hasErrorFor(errs, "gate.pack_step_pattern") {
			t.Errorf("expected validation error, got: %v", errs)
		}
	})

	t.Run("invalid glob", func(t *testing.T) {
		cfg := Default()
		cfg.Gate.PackStepPattern = "[unclosed"
		errs := cfg.Validate()
		if !hasErrorFor(errs, "gate.pack_step_pattern") {
			t.Errorf("expected validation error, got: %v", errs)
		}
	})

	t.Run("custom pattern is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Gate.PackStepPattern = "{*PACK*,*PACKING*}"
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})
}

func TestConfig_Validate_RateShopping(t *testing.T) {
	cfg := Default()
	cfg.RateShopping.TimeoutSeconds = -1
	errs := cfg.Validate()
	if !hasErrorFor(errs, "rate_shopping.timeout_seconds") {
		t.Errorf("expected validation error, got: %v", errs)
	}

	cfg = Default()
	cfg.RateShopping.TimeoutSeconds = 0 // disabled, valid
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestConfig_Validate_Logging(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		badField string
	}{
		{
			name:     "invalid level",
			mutate:   func(c *Config) { c.Logging.Level = "verbose" },
			badField: "logging.level",
		},
		{
			name:     "zero max size",
			mutate:   func(c *Config) { c.Logging.MaxSizeMB = 0 },
			badField: "logging.max_size_mb",
		},
		{
			name:     "excessive max size",
			mutate:   func(c *Config) { c.Logging.MaxSizeMB = 2000 },
			badField: "logging.max_size_mb",
		},
		{
			name:     "negative backups",
			mutate:   func(c *Config) { c.Logging.MaxBackups = -1 },
			badField: "logging.max_backups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if !hasErrorFor(errs, tt.badField) {
				t.Errorf("expected validation error for %s, got: %v", tt.badField, errs)
			}
		})
	}

	t.Run("empty level is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = ""
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})
}

func TestConfig_Validate_TUI(t *testing.T) {
	cfg := Default()
	cfg.TUI.MaxTableRows = 0
	errs := cfg.Validate()
	if !hasErrorFor(errs, "tui.max_table_rows") {
		t.Errorf("expected validation error, got: %v", errs)
	}
}
