// Package config loads service configuration from the environment.
// Handles are built from this struct at process start and passed into
// component constructors; nothing here is read after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the animagen services.
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Queue    QueueConfig
	Jobs     JobsConfig
	AI       AIConfig
	Render   RenderConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           int
	CORSOrigins    []string
	RequestTimeout time.Duration
}

type RedisConfig struct {
	Addr string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type QueueConfig struct {
	// Name is the Redis key of the pending task list.
	Name string
	// Consumers is the worker pool size.
	Consumers int
}

type JobsConfig struct {
	// TTL is the lifetime of a job status document. It is set at
	// creation and never refreshed, so stalled jobs expire.
	TTL time.Duration
}

type AIConfig struct {
	Provider       string
	RequestTimeout time.Duration
	Gemini         GeminiConfig
	OpenAI         OpenAIConfig
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RenderConfig struct {
	// ManimBin is the renderer executable.
	ManimBin string
	// MediaDir is the renderer scratch directory.
	MediaDir string
	// Timeout bounds a single render.
	Timeout time.Duration
}

type StorageConfig struct {
	Provider  string
	LocalRoot string
	GDrive    GDriveConfig
}

type GDriveConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	FolderID     string
}

var validProviders = map[string]bool{
	"gemini": true,
	"openai": true,
	"mock":   true,
}

// Load reads configuration from environment variables and returns a
// validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           envInt("HTTP_PORT", 8080),
			CORSOrigins:    envCSV("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			RequestTimeout: envDuration("HTTP_REQUEST_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			Addr: envString("REDIS_ADDR", "localhost:6379"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Queue: QueueConfig{
			Name:      envString("JOB_QUEUE_NAME", "animagen:render"),
			Consumers: envInt("WORKER_CONSUMERS", 2),
		},
		Jobs: JobsConfig{
			TTL: envDuration("JOB_TTL", time.Hour),
		},
		AI: AIConfig{
			Provider:       envString("AI_PROVIDER", "gemini"),
			RequestTimeout: envDuration("AI_REQUEST_TIMEOUT", 30*time.Second),
			Gemini: GeminiConfig{
				APIKey:  os.Getenv("GEMINI_API_KEY"),
				Model:   envString("GEMINI_MODEL", "gemini-1.5-flash"),
				BaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			},
		},
		Render: RenderConfig{
			ManimBin: envString("MANIM_BIN", "manim"),
			MediaDir: envString("MANIM_MEDIA_DIR", "/tmp/manim_media"),
			Timeout:  envDuration("RENDER_TIMEOUT", 5*time.Minute),
		},
		Storage: StorageConfig{
			Provider:  envString("STORAGE_PROVIDER", "localfs"),
			LocalRoot: envString("STORAGE_LOCAL_ROOT", "/app/videos"),
			GDrive: GDriveConfig{
				ClientID:     os.Getenv("GDRIVE_CLIENT_ID"),
				ClientSecret: os.Getenv("GDRIVE_CLIENT_SECRET"),
				RefreshToken: os.Getenv("GDRIVE_REFRESH_TOKEN"),
				FolderID:     os.Getenv("GDRIVE_FOLDER_ID"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of gemini, openai, mock; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "gemini" && c.AI.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is gemini")
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.Queue.Consumers < 1 {
		return fmt.Errorf("WORKER_CONSUMERS must be at least 1; got %d", c.Queue.Consumers)
	}
	if c.Jobs.TTL <= 0 {
		return fmt.Errorf("JOB_TTL must be positive; got %s", c.Jobs.TTL)
	}
	switch c.Storage.Provider {
	case "localfs":
	case "gdrive":
		if c.Storage.GDrive.ClientID == "" || c.Storage.GDrive.ClientSecret == "" || c.Storage.GDrive.RefreshToken == "" {
			return fmt.Errorf("GDRIVE_CLIENT_ID, GDRIVE_CLIENT_SECRET and GDRIVE_REFRESH_TOKEN are required when STORAGE_PROVIDER is gdrive")
		}
	default:
		return fmt.Errorf("STORAGE_PROVIDER must be localfs or gdrive; got %q", c.Storage.Provider)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envCSV(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
