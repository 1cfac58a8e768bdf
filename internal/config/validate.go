package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateArbitration(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/modscout/config.toml"
		}
		return fmt.Errorf("catalog.base_url is required; edit %s (create with 'modscout config init')", defaultPath)
	}
	if !strings.HasPrefix(c.Catalog.BaseURL, "http://") && !strings.HasPrefix(c.Catalog.BaseURL, "https://") {
		return fmt.Errorf("catalog.base_url must be an http(s) URL, got %q", c.Catalog.BaseURL)
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.TimeoutSeconds <= 0 {
		return errors.New("fetch.timeout_seconds must be positive")
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		return errors.New("fetch.max_body_bytes must be positive")
	}
	return nil
}

func (c *Config) validateArbitration() error {
	if c.Arbitration.ConfidenceThreshold <= 0 || c.Arbitration.ConfidenceThreshold > 1 {
		return errors.New("arbitration.confidence_threshold must be in (0, 1]")
	}
	if c.Arbitration.CandidateLimit <= 0 {
		return errors.New("arbitration.candidate_limit must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
