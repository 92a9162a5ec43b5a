package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither environment nor config file say otherwise.
const (
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultWhisperModels  = "./whisper.cpp/models"
	DefaultWhisperBinary  = "whisper-cli"
	DefaultDatabaseDriver = "sqlite3"
	DefaultDatabasePath   = "data/history.db"
	DefaultWorkDir        = "data/work"
	DefaultUploadDir      = "data/uploads"
	DefaultHTTPHost       = "0.0.0.0"
	DefaultHTTPPort       = "8080"
)

// Config is the full process configuration, assembled from an optional YAML
// file, a .env file and environment variables, in increasing precedence.
type Config struct {
	// External tools.
	FFmpegPath      string `yaml:"ffmpeg_path"`
	FFprobePath     string `yaml:"ffprobe_path"`
	WhisperBinary   string `yaml:"whisper_binary"`
	WhisperModelDir string `yaml:"whisper_model_dir"`

	// Summarization service.
	OllamaURL          string `yaml:"ollama_url"`
	SummarizerBackend  string `yaml:"summarizer_backend"` // "ollama" or "openai"
	OpenAIAPIKey       string `yaml:"-"`
	OpenAIBaseURL      string `yaml:"openai_base_url"`

	// Persistence.
	DatabaseDriver string `yaml:"database_driver"` // "sqlite3" or "postgres"
	DatabasePath   string `yaml:"database_path"`   // sqlite file path
	DatabaseDSN    string `yaml:"database_dsn"`    // postgres connection string

	// Filesystem.
	WorkDir   string `yaml:"work_dir"`
	UploadDir string `yaml:"upload_dir"`

	// HTTP server.
	HTTPHost    string        `yaml:"http_host"`
	HTTPPort    string        `yaml:"http_port"`
	Environment string        `yaml:"environment"`

	// Timeouts. Zero means no limit for subprocesses and the http default
	// for the service client.
	SubprocessTimeout time.Duration `yaml:"subprocess_timeout"`
	ServiceTimeout    time.Duration `yaml:"service_timeout"`
}

// Load builds the configuration. A .env file in the working directory or its
// parents is loaded first if present; configFile is optional ("" skips it).
func Load(configFile string) (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		FFmpegPath:        "ffmpeg",
		FFprobePath:       "ffprobe",
		WhisperBinary:     DefaultWhisperBinary,
		WhisperModelDir:   DefaultWhisperModels,
		OllamaURL:         DefaultOllamaURL,
		SummarizerBackend: "ollama",
		DatabaseDriver:    DefaultDatabaseDriver,
		DatabasePath:      DefaultDatabasePath,
		WorkDir:           DefaultWorkDir,
		UploadDir:         DefaultUploadDir,
		HTTPHost:          DefaultHTTPHost,
		HTTPPort:          DefaultHTTPPort,
		Environment:       "development",
		ServiceTimeout:    5 * time.Minute,
	}

	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads the first .env found near the working directory. Missing
// files are fine; system environment may already be set.
func loadDotEnv() {
	for _, p := range []string{".env", ".env.local", "../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func (c *Config) loadFile(path string) error {
	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	setString(&c.FFmpegPath, "FFMPEG_PATH")
	setString(&c.FFprobePath, "FFPROBE_PATH")
	setString(&c.WhisperBinary, "WHISPER_CLI_BINARY")
	setString(&c.WhisperModelDir, "WHISPER_MODEL_DIR")
	setString(&c.OllamaURL, "OLLAMA_SERVER_URL")
	setString(&c.SummarizerBackend, "SUMMARIZER_BACKEND")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.DatabaseDriver, "DATABASE_DRIVER")
	setString(&c.DatabasePath, "DATABASE_PATH")
	setString(&c.DatabaseDSN, "DATABASE_DSN")
	setString(&c.WorkDir, "WORK_DIR")
	setString(&c.UploadDir, "UPLOAD_DIR")
	setString(&c.HTTPHost, "HTTP_HOST")
	setString(&c.HTTPPort, "HTTP_PORT")
	setString(&c.Environment, "APP_ENV")
	setDuration(&c.SubprocessTimeout, "SUBPROCESS_TIMEOUT")
	setDuration(&c.ServiceTimeout, "SERVICE_TIMEOUT")
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "sqlite3":
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite3 driver")
		}
	case "postgres":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}

	switch c.SummarizerBackend {
	case "ollama":
		if c.OllamaURL == "" {
			return fmt.Errorf("OLLAMA_SERVER_URL is required for the ollama backend")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai backend")
		}
		if !strings.HasPrefix(c.OpenAIAPIKey, "sk-") {
			return fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
		}
	default:
		return fmt.Errorf("unsupported summarizer backend: %s", c.SummarizerBackend)
	}

	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.HTTPHost, c.HTTPPort)
}

// ResolveDataPaths makes the sqlite, work and upload paths absolute against
// root when they are relative.
func (c *Config) ResolveDataPaths(root string) {
	if c.DatabaseDriver == "sqlite3" && !filepath.IsAbs(c.DatabasePath) {
		c.DatabasePath = filepath.Join(root, c.DatabasePath)
	}
	if !filepath.IsAbs(c.WorkDir) {
		c.WorkDir = filepath.Join(root, c.WorkDir)
	}
	if !filepath.IsAbs(c.UploadDir) {
		c.UploadDir = filepath.Join(root, c.UploadDir)
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
