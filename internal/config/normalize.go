package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizePipeline(); err != nil {
		return err
	}
	c.normalizeDBLP()
	c.normalizeLLM()
	c.normalizeNotifications()
	if err := c.normalizeEmail(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DatasetDir) == "" {
		c.Paths.DatasetDir = defaultDatasetDir
	}
	if c.Paths.DatasetDir, err = expandPath(c.Paths.DatasetDir); err != nil {
		return fmt.Errorf("paths.dataset_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() error {
	if len(c.Pipeline.InterestedAreas) == 0 {
		raw := defaultInterestedAreasList
		if value, ok := os.LookupEnv("INTERESTED_AREAS"); ok && strings.TrimSpace(value) != "" {
			raw = value
		}
		c.Pipeline.InterestedAreas = strings.Split(raw, ",")
	}
	areas := make([]string, 0, len(c.Pipeline.InterestedAreas))
	seen := make(map[string]struct{}, len(c.Pipeline.InterestedAreas))
	for _, area := range c.Pipeline.InterestedAreas {
		normalized := strings.ToUpper(strings.TrimSpace(area))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		areas = append(areas, normalized)
	}
	c.Pipeline.InterestedAreas = areas

	if c.Pipeline.MaxPapersPerYear <= 0 {
		c.Pipeline.MaxPapersPerYear = defaultMaxPapersPerYear
		if value, ok := os.LookupEnv("MAX_PAPERS_PER_YEAR"); ok && strings.TrimSpace(value) != "" {
			parsed, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("MAX_PAPERS_PER_YEAR: %w", err)
			}
			c.Pipeline.MaxPapersPerYear = parsed
		}
	}
	if c.Pipeline.HistoryYears <= 0 {
		c.Pipeline.HistoryYears = defaultHistoryYears
	}
	if c.Pipeline.BatchSize <= 0 {
		c.Pipeline.BatchSize = defaultBatchSize
	}
	return nil
}

func (c *Config) normalizeDBLP() {
	c.DBLP.BaseURL = strings.TrimSpace(c.DBLP.BaseURL)
	if c.DBLP.BaseURL == "" {
		c.DBLP.BaseURL = defaultDBLPBaseURL
	}
	if c.DBLP.TimeoutSeconds <= 0 {
		c.DBLP.TimeoutSeconds = defaultDBLPTimeoutSeconds
	}
	if c.DBLP.PaceMillis < 0 {
		c.DBLP.PaceMillis = 0
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = envFallback(c.LLM.APIKey, "LLM_API_KEY")
	c.LLM.BaseURL = envFallback(c.LLM.BaseURL, "LLM_BASE_URL")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = envFallback(c.LLM.Model, "LLM_MODEL")
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
	if c.LLM.RetryDelaySeconds < 0 {
		c.LLM.RetryDelaySeconds = 0
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.PushPlusToken = envFallback(c.Notifications.PushPlusToken, "PUSHPLUS_TOKEN")
	c.Notifications.PushPlusURL = strings.TrimSpace(c.Notifications.PushPlusURL)
	if c.Notifications.PushPlusURL == "" {
		c.Notifications.PushPlusURL = defaultPushPlusURL
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeEmail() error {
	c.Email.SMTPHost = envFallback(c.Email.SMTPHost, "SMTP_HOST")
	c.Email.SMTPUser = envFallback(c.Email.SMTPUser, "SMTP_USER")
	c.Email.SMTPPass = envFallback(c.Email.SMTPPass, "SMTP_PASS")
	c.Email.Receiver = envFallback(c.Email.Receiver, "RECEIVER_EMAIL")
	if c.Email.SMTPPort <= 0 {
		c.Email.SMTPPort = defaultSMTPPort
		if value, ok := os.LookupEnv("SMTP_PORT"); ok && strings.TrimSpace(value) != "" {
			port, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("SMTP_PORT: %w", err)
			}
			c.Email.SMTPPort = port
		}
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	c.Telegram.BotToken = envFallback(c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	c.Telegram.ChatID = envFallback(c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}
