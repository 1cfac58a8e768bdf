package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for local state.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Catalog contains configuration for the canonical record store API.
type Catalog struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Fetch contains configuration for the page fetcher.
type Fetch struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxBodyBytes   int64  `toml:"max_body_bytes"`
	UserAgent      string `toml:"user_agent"`
}

// Judge contains connection settings for one arbitration judge backend.
type Judge struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Arbitration contains thresholds used when interpreting judge output.
type Arbitration struct {
	// ConfidenceThreshold is the minimum judge confidence required to accept
	// a match. Default: 0.93.
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	// CandidateLimit bounds how many candidates are shown to the judge and
	// surfaced for human review. Default: 35.
	CandidateLimit int `toml:"candidate_limit"`
	// WeakSlugTokens is the token count below which a slug counts as a weak
	// identity signal. Default: 3.
	WeakSlugTokens int `toml:"weak_slug_tokens"`
}

// Snapshot contains configuration for state export/import.
type Snapshot struct {
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for modscout.
//
// Configuration sections by subsystem:
//   - Paths: local state and log directories
//   - Catalog: canonical record store API access
//   - Fetch: page fetcher timeouts and body limits
//   - Judge / Judge.Fallback: arbitration judge backends, tried in order
//   - Arbitration: confidence threshold and candidate bounds
//   - Snapshot: default snapshot file location
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Catalog     Catalog     `toml:"catalog"`
	Fetch       Fetch       `toml:"fetch"`
	Judge       Judge       `toml:"judge"`
	Fallback    Judge       `toml:"judge_fallback"`
	Arbitration Arbitration `toml:"arbitration"`
	Snapshot    Snapshot    `toml:"snapshot"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/modscout/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("modscout.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JudgeBackends returns the configured judge backends in try order. The
// fallback is included only when it has an API key or base URL of its own.
func (c *Config) JudgeBackends() []Judge {
	backends := []Judge{c.Judge}
	if strings.TrimSpace(c.Fallback.APIKey) != "" || strings.TrimSpace(c.Fallback.BaseURL) != "" {
		backends = append(backends, c.Fallback)
	}
	return backends
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
