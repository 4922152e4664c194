package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	ModeRender = "render"
	ModeProxy  = "proxy"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	App     AppConfig
	Store   StoreConfig
	Runtime RuntimeConfig
	Ai      AIConfig
	Keys    APIKeys
}

type AppConfig struct {
	Port        string `env:"APP_PORT" envDefault:"8080"`
	BaseURL     string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	Environment string `env:"GO_ENV" envDefault:"development"`
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"logs/app.log"`
	// ViewerMode picks the facade behind /notebooks/:id: "render" or "proxy".
	ViewerMode  string `env:"VIEWER_MODE" envDefault:"render"`
	RenderStyle string `env:"RENDER_STYLE" envDefault:"simulated"`
	// AuthToken guards /api/save when set.
	AuthToken   string `env:"MARIMO_TOKEN"`
	BodyLimit   int    `env:"BODY_LIMIT" envDefault:"10485760"`
	OtelEnabled bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OtelURL     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
}

type StoreConfig struct {
	Backend       string        `env:"STORE_BACKEND" envDefault:"memory"`
	RedisURL      string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	Retention     time.Duration `env:"STORE_RETENTION" envDefault:"24h"`
	SweepInterval time.Duration `env:"STORE_SWEEP_INTERVAL" envDefault:"1h"`
	NotebooksDir  string        `env:"NOTEBOOKS_DIR" envDefault:"/app/notebooks"`
}

type RuntimeConfig struct {
	URL          string        `env:"RUNTIME_URL" envDefault:"http://127.0.0.1:2718"`
	Autostart    bool          `env:"RUNTIME_AUTOSTART" envDefault:"false"`
	Python       string        `env:"RUNTIME_PYTHON" envDefault:"python"`
	LogFilePath  string        `env:"RUNTIME_LOG_FILE_PATH" envDefault:"logs/runtime.log"`
	ReadyTimeout time.Duration `env:"RUNTIME_READY_TIMEOUT" envDefault:"30s"`
	ProxyTimeout time.Duration `env:"PROXY_TIMEOUT" envDefault:"30s"`
}

type AIConfig struct {
	LLMProvider   string `env:"LLM_PROVIDER" envDefault:"openai"` // "openai", "ollama", "huggingface"
	LLMModel      string `env:"LLM_MODEL" envDefault:"gpt-4.1"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OllamaBaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
}

type APIKeys struct {
	OpenAI      string `env:"OPENAI_API_KEY"`
	HuggingFace string `env:"HUGGINGFACE_API_KEY"`
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// Parse builds a Config from the environment and checks enumerated values.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.App.ViewerMode {
	case ModeRender, ModeProxy:
	default:
		return fmt.Errorf("VIEWER_MODE must be %q or %q, got %q", ModeRender, ModeProxy, c.App.ViewerMode)
	}
	switch c.Store.Backend {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMemory, StoreRedis, c.Store.Backend)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsTest() bool {
	return c.App.Environment == "test"
}
