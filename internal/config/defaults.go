package config

const (
	// WildcardArea disables the subject filter when present in interested_areas.
	WildcardArea = "ALL"

	defaultDatasetDir          = "ccf-repo/conference"
	defaultDataDir             = "data"
	defaultMaxPapersPerYear    = 250
	defaultHistoryYears        = 3
	defaultBatchSize           = 10
	defaultDBLPBaseURL         = "https://dblp.org/search/publ/api"
	defaultDBLPTimeoutSeconds  = 15
	defaultDBLPPaceMillis      = 1500
	defaultLLMBaseURL          = "https://api.openai.com/v1"
	defaultLLMModel            = "gpt-3.5-turbo"
	defaultLLMTimeoutSeconds   = 120
	defaultLLMRetryAttempts    = 3
	defaultLLMRetryDelay       = 2
	defaultTagTemperature      = 0.1
	defaultThemeTemperature    = 0.2
	defaultPushPlusURL         = "http://www.pushplus.plus/send"
	defaultNotifyTimeout       = 5
	defaultSMTPPort            = 465
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultInterestedAreasList = "AI,NW,DB,SC"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatasetDir: defaultDatasetDir,
			DataDir:    defaultDataDir,
		},
		Pipeline: Pipeline{
			HistoryYears: defaultHistoryYears,
			BatchSize:    defaultBatchSize,
		},
		DBLP: DBLP{
			BaseURL:        defaultDBLPBaseURL,
			TimeoutSeconds: defaultDBLPTimeoutSeconds,
			PaceMillis:     defaultDBLPPaceMillis,
		},
		LLM: LLM{
			TimeoutSeconds:    defaultLLMTimeoutSeconds,
			RetryAttempts:     defaultLLMRetryAttempts,
			RetryDelaySeconds: defaultLLMRetryDelay,
			TagTemperature:    defaultTagTemperature,
			ThemeTemperature:  defaultThemeTemperature,
		},
		Notifications: Notifications{
			PushPlusURL:    defaultPushPlusURL,
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
