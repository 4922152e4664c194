package bootstrap

import (
	"context"
	"fmt"
	"time"

	"marimo-hub-be/internal/config"
	"marimo-hub-be/internal/controller"
	"marimo-hub-be/internal/pkg/logger"
	"marimo-hub-be/internal/proxy"
	"marimo-hub-be/internal/repository/contract"
	"marimo-hub-be/internal/repository/implementation"
	"marimo-hub-be/internal/repository/memory"
	"marimo-hub-be/internal/runtime"
	"marimo-hub-be/internal/service"
	"marimo-hub-be/internal/viewer"
	"marimo-hub-be/pkg/llm"
	"marimo-hub-be/pkg/llm/factory"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const UIPrefix = "/ui"

type Container struct {
	Logger logger.ILogger

	// Controllers
	NotebookController controller.INotebookController
	MarimoController   controller.IMarimoController
	ViewerController   controller.IViewerController
	HealthController   controller.IHealthController

	// Lifecycle
	Launcher runtime.Launcher
	closers  []func() error
}

func NewContainer(cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Storage
	store, err := c.newStore(cfg)
	if err != nil {
		return nil, err
	}
	files, err := implementation.NewNotebookFileRepository(cfg.Store.NotebooksDir)
	if err != nil {
		return nil, err
	}

	// 2. Runtime
	launcher, err := runtime.New(cfg.Runtime, sysLogger)
	if err != nil {
		return nil, err
	}
	c.Launcher = launcher
	c.closers = append(c.closers, launcher.Stop)

	// 3. Viewer facade and proxy
	facade := viewer.New(cfg, UIPrefix)
	renderer := viewer.NewRenderer(cfg.App.RenderStyle)
	var proxyHandler fiber.Handler
	if cfg.App.ViewerMode == config.ModeProxy {
		rp, err := proxy.NewReverseProxy(cfg.Runtime.URL, cfg.Runtime.ProxyTimeout, sysLogger)
		if err != nil {
			return nil, err
		}
		proxyHandler = rp.Handler(proxy.NewWebSocketBridge(rp, sysLogger).Handler())
		sysLogger.Info("BOOTSTRAP", "Proxying "+UIPrefix+" to runtime", map[string]interface{}{"target": rp.Target()})
	}

	// 4. Services
	notebookService := service.NewNotebookService(store, files, launcher, facade.Mode(), cfg.Store.Backend, sysLogger)
	generationService := service.NewGenerationService(newLLMProvider(cfg, sysLogger), store, sysLogger)

	// 5. Controllers
	c.NotebookController = controller.NewNotebookController(notebookService, cfg.App.AuthToken)
	c.MarimoController = controller.NewMarimoController(notebookService, generationService, renderer)
	c.ViewerController = controller.NewViewerController(notebookService, facade, proxyHandler)
	c.HealthController = controller.NewHealthController(notebookService, facade.Mode())

	sysLogger.Info("BOOTSTRAP", "Container ready", map[string]interface{}{
		"mode":         facade.Mode(),
		"render_style": renderer.Style(),
		"store":        cfg.Store.Backend,
		"autostart":    cfg.Runtime.Autostart,
	})

	return c, nil
}

func (c *Container) newStore(cfg *config.Config) (contract.NotebookRepository, error) {
	if cfg.Store.Backend != config.StoreRedis {
		return memory.NewNotebookRepository(cfg.Store.Retention, cfg.Store.SweepInterval), nil
	}

	opt, err := redis.ParseURL(cfg.Store.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	c.closers = append(c.closers, rdb.Close)
	return implementation.NewNotebookRedisRepository(rdb, cfg.Store.Retention), nil
}

// newLLMProvider returns nil when the provider cannot be built, which makes
// generation answer with the fallback notebook.
func newLLMProvider(cfg *config.Config, sysLogger logger.ILogger) llm.LLMProvider {
	var baseURL, apiKey string
	switch cfg.Ai.LLMProvider {
	case "openai":
		baseURL, apiKey = cfg.Ai.OpenAIBaseURL, cfg.Keys.OpenAI
	case "ollama":
		baseURL = cfg.Ai.OllamaBaseURL
	case "huggingface":
		apiKey = cfg.Keys.HuggingFace
	}

	provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, apiKey)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "LLM provider unavailable, generation will use the fallback notebook", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"error":    err.Error(),
		})
		return nil
	}

	sysLogger.Info("BOOTSTRAP", "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})
	return provider
}

// Close stops the runtime and releases connections, last opened first.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
