package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeFetch()
	c.normalizeJudge(&c.Judge)
	c.normalizeJudge(&c.Fallback)
	c.normalizeArbitration()
	if err := c.normalizeSnapshot(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	c.Catalog.APIKey = strings.TrimSpace(c.Catalog.APIKey)
	if c.Catalog.TimeoutSeconds <= 0 {
		c.Catalog.TimeoutSeconds = defaultCatalogTimeout
	}
}

func (c *Config) normalizeFetch() {
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeout
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = defaultFetchMaxBodyBytes
	}
	if strings.TrimSpace(c.Fetch.UserAgent) == "" {
		c.Fetch.UserAgent = defaultFetchUserAgent
	}
}

func (c *Config) normalizeJudge(j *Judge) {
	j.APIKey = strings.TrimSpace(j.APIKey)
	j.BaseURL = strings.TrimSpace(j.BaseURL)
	j.Model = strings.TrimSpace(j.Model)
	if j.TimeoutSeconds <= 0 {
		j.TimeoutSeconds = defaultJudgeTimeout
	}
}

func (c *Config) normalizeArbitration() {
	if c.Arbitration.ConfidenceThreshold <= 0 || c.Arbitration.ConfidenceThreshold > 1 {
		c.Arbitration.ConfidenceThreshold = defaultConfidenceThreshold
	}
	if c.Arbitration.CandidateLimit <= 0 {
		c.Arbitration.CandidateLimit = defaultCandidateLimit
	}
	if c.Arbitration.WeakSlugTokens <= 0 {
		c.Arbitration.WeakSlugTokens = defaultWeakSlugTokens
	}
}

func (c *Config) normalizeSnapshot() error {
	if strings.TrimSpace(c.Snapshot.Path) == "" {
		c.Snapshot.Path = defaultSnapshotPath
	}
	var err error
	if c.Snapshot.Path, err = expandPath(c.Snapshot.Path); err != nil {
		return fmt.Errorf("snapshot.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
