package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted in the configuration
const (
	SentimentLexicon     = "lexicon"
	SentimentVertex      = "vertex"
	SummarizerExtractive = "extractive"
	SummarizerVertex     = "vertex"
)

// EnvPrefix is prepended to every configuration key when read from the environment
const EnvPrefix = "IA"

// Config holds application configuration
type Config struct {
	GoogleCloudProject     string `json:"google_cloud_project" mapstructure:"google_cloud_project"`
	GoogleCloudLocation    string `json:"google_cloud_location" mapstructure:"google_cloud_location"`
	GoogleCredentialsPath  string `json:"google_credentials_path" mapstructure:"google_credentials_path"`
	GeminiModel            string `json:"gemini_model" mapstructure:"gemini_model"`
	GmailCredentialsPath   string `json:"gmail_credentials_path" mapstructure:"gmail_credentials_path"`
	GmailTokenPath         string `json:"gmail_token_path" mapstructure:"gmail_token_path"`
	UploadsDir             string `json:"uploads_dir" mapstructure:"uploads_dir"`
	ASRURL                 string `json:"asr_url" mapstructure:"asr_url"`
	RedisAddr              string `json:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword          string `json:"redis_password" mapstructure:"redis_password"`
	RedisDB                int    `json:"redis_db" mapstructure:"redis_db"`
	SummaryCacheTTLMinutes int    `json:"summary_cache_ttl_minutes" mapstructure:"summary_cache_ttl_minutes"`
	SentimentBackend       string `json:"sentiment_backend" mapstructure:"sentiment_backend"`
	SummarizerBackend      string `json:"summarizer_backend" mapstructure:"summarizer_backend"`
	KeywordTablePath       string `json:"keyword_table_path" mapstructure:"keyword_table_path"`
	Port                   int    `json:"port" mapstructure:"port"`
	LogLevel               string `json:"log_level" mapstructure:"log_level"`
	MaxAudioSeconds        int    `json:"max_audio_seconds" mapstructure:"max_audio_seconds"`
	Workers                int    `json:"workers" mapstructure:"workers"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		GoogleCloudLocation:    "us-central1",
		GeminiModel:            "gemini-1.5-flash",
		GmailTokenPath:         "token.json",
		UploadsDir:             "uploads",
		SummaryCacheTTLMinutes: 24 * 60,
		SentimentBackend:       SentimentLexicon,
		SummarizerBackend:      SummarizerExtractive,
		Port:                   8080,
		LogLevel:               "info",
		MaxAudioSeconds:        30,
		Workers:                4,
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/InterviewAnalyzer/config.json
// On Unix: ~/.config/InterviewAnalyzer/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		configDir = filepath.Join(os.Getenv("APPDATA"), "InterviewAnalyzer")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "InterviewAnalyzer")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load reads .env, then the default config file, then environment overrides
func Load() (*Config, error) {
	_ = godotenv.Load()

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path. A missing file yields
// the defaults with environment overrides applied.
func LoadFrom(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// newViper registers every key with its default so env overrides reach Unmarshal
func newViper() *viper.Viper {
	v := viper.New()

	defaults := map[string]any{}
	data, _ := json.Marshal(DefaultConfig())
	_ = json.Unmarshal(data, &defaults)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Google's own variable names are honoured too
	_ = v.BindEnv("google_cloud_project", EnvPrefix+"_GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_PROJECT")
	_ = v.BindEnv("google_cloud_location", EnvPrefix+"_GOOGLE_CLOUD_LOCATION", "GOOGLE_CLOUD_LOCATION")
	_ = v.BindEnv("google_credentials_path", EnvPrefix+"_GOOGLE_CREDENTIALS_PATH", "GOOGLE_APPLICATION_CREDENTIALS")
	_ = v.BindEnv("log_level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL")

	return v
}

// Save saves the configuration to the default config path
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// UsesVertex reports whether any collaborator is backed by Gemini
func (c *Config) UsesVertex() bool {
	return c.SentimentBackend == SentimentVertex || c.SummarizerBackend == SummarizerVertex
}

// MaxAudioDuration is the longest audio upload accepted
func (c *Config) MaxAudioDuration() time.Duration {
	return time.Duration(c.MaxAudioSeconds) * time.Second
}

// SummaryCacheTTL is how long cached summaries live in Redis
func (c *Config) SummaryCacheTTL() time.Duration {
	return time.Duration(c.SummaryCacheTTLMinutes) * time.Minute
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.SentimentBackend {
	case SentimentLexicon, SentimentVertex:
	default:
		return fmt.Errorf("sentiment_backend must be %q or %q, got %q", SentimentLexicon, SentimentVertex, c.SentimentBackend)
	}

	switch c.SummarizerBackend {
	case SummarizerExtractive, SummarizerVertex:
	default:
		return fmt.Errorf("summarizer_backend must be %q or %q, got %q", SummarizerExtractive, SummarizerVertex, c.SummarizerBackend)
	}

	if c.UsesVertex() {
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("google_cloud_project is required")
		}
		if c.GoogleCloudLocation == "" {
			return fmt.Errorf("google_cloud_location is required")
		}
	}

	if c.MaxAudioSeconds <= 0 {
		return fmt.Errorf("max_audio_seconds must be positive")
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}

	for name, path := range map[string]string{
		"google credentials": c.GoogleCredentialsPath,
		"gmail credentials":  c.GmailCredentialsPath,
		"keyword table":      c.KeywordTablePath,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s file not found: %w", name, err)
		}
	}

	return nil
}

// ApplyToEnv applies configuration values to environment variables
func (c *Config) ApplyToEnv() {
	if c.GoogleCloudProject != "" {
		os.Setenv("GOOGLE_CLOUD_PROJECT", c.GoogleCloudProject)
	}
	if c.GoogleCloudLocation != "" {
		os.Setenv("GOOGLE_CLOUD_LOCATION", c.GoogleCloudLocation)
	}
	if c.GoogleCredentialsPath != "" {
		os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", c.GoogleCredentialsPath)
	}
}
