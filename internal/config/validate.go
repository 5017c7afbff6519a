package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DatasetDir) == "" {
		return errors.New("paths.dataset_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if len(c.Pipeline.InterestedAreas) == 0 {
		return errors.New("pipeline.interested_areas must include at least one subject code (or ALL)")
	}
	if c.Pipeline.MaxPapersPerYear <= 0 {
		return errors.New("pipeline.max_papers_per_year must be positive")
	}
	if c.Pipeline.HistoryYears <= 0 {
		return errors.New("pipeline.history_years must be positive")
	}
	if c.Pipeline.BatchSize <= 0 {
		return errors.New("pipeline.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"dblp.timeout_seconds":          c.DBLP.TimeoutSeconds,
		"llm.timeout_seconds":           c.LLM.TimeoutSeconds,
		"llm.retry_attempts":            c.LLM.RetryAttempts,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func (c *Config) validateLLM() error {
	if c.LLM.TagTemperature < 0 || c.LLM.TagTemperature > 2 {
		return errors.New("llm.tag_temperature must be between 0 and 2")
	}
	if c.LLM.ThemeTemperature < 0 || c.LLM.ThemeTemperature > 2 {
		return errors.New("llm.theme_temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateEmail() error {
	if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
		return fmt.Errorf("email.smtp_port %d out of range", c.Email.SMTPPort)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
