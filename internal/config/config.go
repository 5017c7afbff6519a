package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains dataset and persisted data locations.
type Paths struct {
	DatasetDir string `toml:"dataset_dir"`
	DataDir    string `toml:"data_dir"`
}

// Pipeline contains the knobs that shape a single tracking pass.
type Pipeline struct {
	InterestedAreas  []string `toml:"interested_areas"`
	MaxPapersPerYear int      `toml:"max_papers_per_year"`
	HistoryYears     int      `toml:"history_years"`
	BatchSize        int      `toml:"batch_size"`
}

// DBLP contains configuration for the bibliographic search API.
type DBLP struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PaceMillis     int    `toml:"pace_millis"`
}

// LLM contains text-generation connection settings.
type LLM struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RetryAttempts     int     `toml:"retry_attempts"`
	RetryDelaySeconds int     `toml:"retry_delay_seconds"`
	TagTemperature    float64 `toml:"tag_temperature"`
	ThemeTemperature  float64 `toml:"theme_temperature"`
}

// Notifications contains configuration for the PushPlus webhook channel.
type Notifications struct {
	PushPlusToken  string `toml:"pushplus_token"`
	PushPlusURL    string `toml:"pushplus_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Email contains SMTP-over-TLS delivery settings.
type Email struct {
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	SMTPUser string `toml:"smtp_user"`
	SMTPPass string `toml:"smtp_pass"`
	Receiver string `toml:"receiver"`
}

// Telegram contains optional Telegram bot delivery settings.
type Telegram struct {
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for confwatch.
//
// Configuration sections by subsystem:
//   - Paths: dataset checkout and the directory holding state/knowledge files
//   - Pipeline: interest filter, paper cap, history depth, batch size
//   - DBLP: bibliographic search endpoint and pacing
//   - LLM: text-generation endpoint, model, retry policy
//   - Notifications, Email, Telegram: delivery channels
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Pipeline      Pipeline      `toml:"pipeline"`
	DBLP          DBLP          `toml:"dblp"`
	LLM           LLM           `toml:"llm"`
	Notifications Notifications `toml:"notifications"`
	Email         Email         `toml:"email"`
	Telegram      Telegram      `toml:"telegram"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/confwatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

	projectPath, err := filepath.Abs("confwatch.toml")
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

// EnsureDirectories creates the data directory used for state, knowledge, and ledger files.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.DataDir, err)
	}
	return nil
}

// StatePath returns the location of the edition fingerprint file.
func (c *Config) StatePath() string {
	return filepath.Join(c.Paths.DataDir, "state.json")
}

// KnowledgeBasePath returns the location of the per-venue analysis file.
func (c *Config) KnowledgeBasePath() string {
	return filepath.Join(c.Paths.DataDir, "knowledge_base.json")
}

// HistoryPath returns the location of the run ledger database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// LockPath returns the location of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "confwatch.lock")
}

// InterestedIn reports whether the subject code passes the interest filter.
func (c *Config) InterestedIn(subject string) bool {
	subject = strings.TrimSpace(subject)
	for _, area := range c.Pipeline.InterestedAreas {
		if area == WildcardArea || area == subject {
			return true
		}
	}
	return false
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

// LLMConfig contains the text-generation settings in the shape the client expects.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	RetryAttempts  int
	RetryDelay     time.Duration
}

// GetLLM returns the text-generation connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		RetryAttempts:  c.LLM.RetryAttempts,
		RetryDelay:     time.Duration(c.LLM.RetryDelaySeconds) * time.Second,
	}
}

// EmailConfigured reports whether every SMTP field needed for delivery is present.
func (c *Config) EmailConfigured() bool {
	e := c.Email
	return e.SMTPHost != "" && e.SMTPUser != "" && e.SMTPPass != "" && e.Receiver != ""
}

// TelegramConfigured reports whether the Telegram channel has a token and chat.
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
