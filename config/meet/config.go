package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDevelopment = "development"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port           int    `env:"PORT" env-default:"5002" yaml:"port"`
	HealthGRPCPort int    `env:"HEALTH_GRPC_PORT" env-default:"0" yaml:"health_grpc_port"`
	Env            string `env:"APP_ENV" env-default:"production" yaml:"env"`

	Log        LogConfig        `yaml:"log" env-prefix:"LOG_"`
	CORS       CORSConfig       `yaml:"cors" env-prefix:"CORS_"`
	Upload     UploadConfig     `yaml:"upload" env-prefix:"UPLOAD_"`
	OpenAI     OpenAIConfig     `yaml:"openai" env-prefix:"OPENAI_"`
	Gemini     GeminiConfig     `yaml:"gemini" env-prefix:"GEMINI_"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" env-default:"info" yaml:"level"`
	Format string `env:"FORMAT" env-default:"text" yaml:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"*" yaml:"allowed_origins"`
}

type UploadConfig struct {
	MaxFileSize       int64    `env:"MAX_FILE_SIZE" env-default:"26214400" yaml:"max_file_size"`
	AllowedExtensions []string `env:"ALLOWED_EXTENSIONS" env-separator:"," env-default:"mp3,mp4,mpeg,mpga,m4a,wav,webm" yaml:"allowed_extensions"`
	TempDir           string   `env:"TEMP_DIR" yaml:"temp_dir"`
}

type OpenAIConfig struct {
	APIKey                string  `env:"API_KEY" yaml:"api_key"`
	BaseURL               string  `env:"BASE_URL" yaml:"base_url"`
	TranscriptionModel    string  `env:"TRANSCRIPTION_MODEL" env-default:"whisper-1" yaml:"transcription_model"`
	TranscriptionLanguage string  `env:"TRANSCRIPTION_LANGUAGE" yaml:"transcription_language"`
	ChatModel             string  `env:"CHAT_MODEL" env-default:"gpt-4" yaml:"chat_model"`
	Temperature           float32 `env:"TEMPERATURE" env-default:"0.7" yaml:"temperature"`
	JSONMode              bool    `env:"JSON_MODE" env-default:"false" yaml:"json_mode"`
}

type GeminiConfig struct {
	APIKey      string  `env:"API_KEY" yaml:"api_key"`
	BaseURL     string  `env:"BASE_URL" yaml:"base_url"`
	Model       string  `env:"MODEL" env-default:"gemini-2.5-flash" yaml:"model"`
	Temperature float32 `env:"TEMPERATURE" env-default:"0.7" yaml:"temperature"`
}

type SummarizerConfig struct {
	Provider             string        `env:"SUMMARIZER_PROVIDER" env-default:"openai" yaml:"provider"`
	TranscriptionTimeout time.Duration `env:"TRANSCRIPTION_TIMEOUT" env-default:"5m" yaml:"transcription_timeout"`
	SummarizationTimeout time.Duration `env:"SUMMARIZATION_TIMEOUT" env-default:"2m" yaml:"summarization_timeout"`
}

// Load reads the YAML file named by CONFIG_PATH when set, otherwise the
// environment. Environment variables override file values in both cases.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	return cfg
}

// Validate checks credentials and limits and normalizes list values.
func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("port must be positive")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload.max_file_size must be positive")
	}

	exts := make([]string, 0, len(c.Upload.AllowedExtensions))
	for _, ext := range c.Upload.AllowedExtensions {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		return fmt.Errorf("upload.allowed_extensions is required")
	}
	c.Upload.AllowedExtensions = exts

	if c.Upload.TempDir == "" {
		c.Upload.TempDir = os.TempDir()
	}

	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required for transcription")
	}

	c.Summarizer.Provider = strings.ToLower(strings.TrimSpace(c.Summarizer.Provider))
	switch c.Summarizer.Provider {
	case "", ProviderOpenAI:
		c.Summarizer.Provider = ProviderOpenAI
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini.api_key is required when summarizer provider is gemini")
		}
	default:
		return fmt.Errorf("unknown summarizer provider %q", c.Summarizer.Provider)
	}

	if c.Summarizer.TranscriptionTimeout <= 0 {
		c.Summarizer.TranscriptionTimeout = 5 * time.Minute
	}
	if c.Summarizer.SummarizationTimeout <= 0 {
		c.Summarizer.SummarizationTimeout = 2 * time.Minute
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}
