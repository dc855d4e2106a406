package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	// Provider validation
	switch c.Provider.Name {
	case ProviderAnthropic, ProviderGemini:
	default:
		errs = append(errs, fmt.Sprintf("provider.name must be %q or %q, got %q", ProviderAnthropic, ProviderGemini, c.Provider.Name))
	}
	if c.Provider.MaxTokens < 1 {
		errs = append(errs, "provider.max_tokens must be >= 1")
	}
	if c.Provider.TimeoutSeconds < 1 {
		errs = append(errs, "provider.timeout_seconds must be >= 1")
	}
	if c.Provider.MaxRetries < 0 {
		errs = append(errs, "provider.max_retries must be >= 0")
	}

	// Workflow validation
	if c.Workflow.MaxRoundTrips < 1 {
		errs = append(errs, "workflow.max_round_trips must be >= 1")
	}
	if c.Workflow.ToolConcurrency < 1 {
		errs = append(errs, "workflow.tool_concurrency must be >= 1")
	}

	// Tools validation
	if c.Tools.CalculatorMaxLength < 1 {
		errs = append(errs, "tools.calculator_max_length must be >= 1")
	}
	switch c.Tools.WeatherSource {
	case WeatherSourceStatic:
	case WeatherSourceWttr:
		if c.Tools.WeatherEndpoint == "" {
			errs = append(errs, "tools.weather_endpoint must be set when tools.weather_source is \"wttr\"")
		}
	default:
		errs = append(errs, fmt.Sprintf("tools.weather_source must be %q or %q, got %q", WeatherSourceStatic, WeatherSourceWttr, c.Tools.WeatherSource))
	}
	if c.Tools.WeatherTimeoutSeconds < 1 {
		errs = append(errs, "tools.weather_timeout_seconds must be >= 1")
	}

	// UI validation
	if c.UI.TickIntervalMs < 1 {
		errs = append(errs, "ui.tick_interval_ms must be >= 1")
	}
	if c.UI.MarkdownStyle == "" {
		errs = append(errs, "ui.markdown_style must not be empty")
	}

	// Log validation
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

// SlogLevel parses Level ("debug", "info", "warn" or "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(l.Level))); err != nil {
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", l.Level)
	}
	return level, nil
}
