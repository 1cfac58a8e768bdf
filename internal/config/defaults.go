package config

const (
	defaultStateDir            = "~/.local/share/modscout"
	defaultLogDir              = "~/.local/share/modscout/logs"
	defaultSnapshotPath        = "~/.local/share/modscout/snapshot.json"
	defaultCatalogTimeout      = 15
	defaultFetchTimeout        = 10
	defaultFetchMaxBodyBytes   = 512 * 1024
	defaultFetchUserAgent      = "modscout/dev"
	defaultJudgeBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultJudgeModel          = "google/gemini-3-flash-preview"
	defaultJudgeTimeout        = 30
	defaultConfidenceThreshold = 0.93
	defaultCandidateLimit      = 35
	defaultWeakSlugTokens      = 3
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Catalog: Catalog{
			TimeoutSeconds: defaultCatalogTimeout,
		},
		Fetch: Fetch{
			TimeoutSeconds: defaultFetchTimeout,
			MaxBodyBytes:   defaultFetchMaxBodyBytes,
			UserAgent:      defaultFetchUserAgent,
		},
		Judge: Judge{
			BaseURL:        defaultJudgeBaseURL,
			Model:          defaultJudgeModel,
			TimeoutSeconds: defaultJudgeTimeout,
		},
		Arbitration: Arbitration{
			ConfidenceThreshold: defaultConfidenceThreshold,
			CandidateLimit:      defaultCandidateLimit,
			WeakSlugTokens:      defaultWeakSlugTokens,
		},
		Snapshot: Snapshot{
			Path: defaultSnapshotPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
