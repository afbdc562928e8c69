package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port: 5002,
		Upload: UploadConfig{
			MaxFileSize:       1024,
			AllowedExtensions: []string{"mp3", "wav"},
		},
		OpenAI: OpenAIConfig{APIKey: "sk-test"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing openai key",
			mutate:  func(c *Config) { c.OpenAI.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "zero file size",
			mutate:  func(c *Config) { c.Upload.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "empty extensions",
			mutate:  func(c *Config) { c.Upload.AllowedExtensions = []string{" ", ""} },
			wantErr: true,
		},
		{
			name:    "gemini without key",
			mutate:  func(c *Config) { c.Summarizer.Provider = "gemini" },
			wantErr: true,
		},
		{
			name: "gemini with key",
			mutate: func(c *Config) {
				c.Summarizer.Provider = "Gemini"
				c.Gemini.APIKey = "g-key"
			},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Summarizer.Provider = "mistral" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizes(t *testing.T) {
	cfg := validConfig()
	cfg.Upload.AllowedExtensions = []string{".MP3", " wav ", ""}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if want := []string{"mp3", "wav"}; !reflect.DeepEqual(cfg.Upload.AllowedExtensions, want) {
		t.Errorf("AllowedExtensions = %v, want %v", cfg.Upload.AllowedExtensions, want)
	}
	if cfg.Upload.TempDir != os.TempDir() {
		t.Errorf("TempDir = %q, want %q", cfg.Upload.TempDir, os.TempDir())
	}
	if cfg.Summarizer.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q, want %q", cfg.Summarizer.Provider, ProviderOpenAI)
	}
	if cfg.Summarizer.TranscriptionTimeout != 5*time.Minute {
		t.Errorf("TranscriptionTimeout = %v, want 5m", cfg.Summarizer.TranscriptionTimeout)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "524288000")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", "mp3,m4a")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	t.Setenv("SUMMARIZATION_TIMEOUT", "30s")
	t.Setenv("APP_ENV", "development")
	t.Setenv("GEMINI_TEMPERATURE", "0.2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 5002 {
		t.Errorf("Port = %d, want 5002", cfg.Port)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want sk-env", cfg.OpenAI.APIKey)
	}
	if cfg.Upload.MaxFileSize != 500*1024*1024 {
		t.Errorf("MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 500*1024*1024)
	}
	if want := []string{"mp3", "m4a"}; !reflect.DeepEqual(cfg.Upload.AllowedExtensions, want) {
		t.Errorf("AllowedExtensions = %v, want %v", cfg.Upload.AllowedExtensions, want)
	}
	if want := []string{"http://localhost:3000"}; !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.CORS.AllowedOrigins, want)
	}
	if cfg.Summarizer.SummarizationTimeout != 30*time.Second {
		t.Errorf("SummarizationTimeout = %v, want 30s", cfg.Summarizer.SummarizationTimeout)
	}
	if cfg.OpenAI.TranscriptionModel != "whisper-1" {
		t.Errorf("TranscriptionModel = %q, want whisper-1", cfg.OpenAI.TranscriptionModel)
	}
	if cfg.Gemini.Temperature != 0.2 {
		t.Errorf("Gemini.Temperature = %v, want 0.2", cfg.Gemini.Temperature)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Errorf("OpenAI.Temperature = %v, want 0.7", cfg.OpenAI.Temperature)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: 8081
openai:
  api_key: "sk-file"
  chat_model: "gpt-4o"
upload:
  max_file_size: 2048
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8081 {
		t.Errorf("Port = %d, want 8081", cfg.Port)
	}
	if cfg.OpenAI.ChatModel != "gpt-4o" {
		t.Errorf("ChatModel = %q, want gpt-4o", cfg.OpenAI.ChatModel)
	}
	if cfg.Upload.MaxFileSize != 2048 {
		t.Errorf("MaxFileSize = %d, want 2048", cfg.Upload.MaxFileSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nonexistent.yaml"))

	if _, err := Load(); err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
