// webpilot runs the browsing-agent daemon: it accepts goals over HTTP,
// plans with an LLM provider, drives a remote Chrome, and streams task
// lifecycle events over WebSocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/internal/executor"
	"github.com/webpilot-ai/webpilot/internal/hub"
	"github.com/webpilot-ai/webpilot/internal/memory"
	"github.com/webpilot-ai/webpilot/internal/observability"
	"github.com/webpilot-ai/webpilot/internal/planner"
	"github.com/webpilot-ai/webpilot/internal/planner/providers"
	"github.com/webpilot-ai/webpilot/internal/runtime"
	"github.com/webpilot-ai/webpilot/internal/server"
	"github.com/webpilot-ai/webpilot/internal/tools"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "webpilot: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(registry)

	tracer, shutdownTracer, err := observability.NewTracer(ctx, observability.TraceConfig{
		ServiceName: "webpilot",
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, "tracer shutdown error", "error", err)
		}
	}()

	taskPlanner, err := buildPlanner(ctx, cfg)
	if err != nil {
		return err
	}
	if taskPlanner == nil {
		logger.Warn(ctx, "no planner credentials; task creation is disabled",
			"provider", cfg.Provider)
	}

	exec, closeBrowser, err := buildExecutor(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBrowser()

	toolRegistry := tools.NewRegistry()
	memoryStore := memory.NewStore()
	eventHub := hub.New(logger, metrics)

	rt := runtime.New(runtime.Options{
		Policy:       cfg.Safety,
		Planner:      taskPlanner,
		PlannerModel: cfg.PlannerModel(),
		Executor:     exec,
		Registry:     toolRegistry,
		Memory:       memoryStore,
		Logger:       logger,
		Metrics:      metrics,
		Tracer:       tracer,
		Sink:         eventHub.Publish,
	})
	eventHub.SetSnapshot(func() ([]*models.Task, []models.ToolDefinition) {
		return rt.ListTasks(), toolRegistry.List()
	})

	srv := server.New(server.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Runtime:  rt,
		Registry: toolRegistry,
		Hub:      eventHub,
		Gatherer: registry,
		Logger:   logger,
	})
	if err := srv.Start(); err != nil {
		return err
	}
	logger.Info(ctx, "webpilot started",
		"addr", srv.Addr(),
		"provider", cfg.Provider,
		"model", cfg.PlannerModel(),
		"browser", cfg.BrowserDebugURL != "")

	<-ctx.Done()
	logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "http shutdown error", "error", err)
	}
	rt.Wait()
	return nil
}

// buildPlanner constructs the provider-backed planner, or nil when the
// selected provider has no credentials.
func buildPlanner(ctx context.Context, cfg *config.Config) (planner.Planner, error) {
	if !cfg.HasPlannerCredentials() {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderAnthropic:
		return providers.NewAnthropicPlanner(providers.AnthropicConfig{
			APIKey: cfg.AnthropicKey,
			Model:  cfg.Model,
			Policy: cfg.Safety,
		})
	case config.ProviderGemini:
		return providers.NewGooglePlanner(ctx, providers.GoogleConfig{
			APIKey: cfg.GoogleKey,
			Model:  cfg.Model,
			Policy: cfg.Safety,
		})
	default:
		return providers.NewOpenAIPlanner(providers.OpenAIConfig{
			APIKey: cfg.OpenAIKey,
			Model:  cfg.Model,
			Policy: cfg.Safety,
		})
	}
}

// buildExecutor attaches to remote Chrome when configured, falling back to
// the inert default executor.
func buildExecutor(cfg *config.Config, logger *observability.Logger) (executor.Executor, func(), error) {
	if cfg.BrowserDebugURL == "" {
		return executor.NewDefault(), func() {}, nil
	}

	browser, err := executor.NewBrowser(executor.BrowserConfig{
		DebugURL: cfg.BrowserDebugURL,
		Policy:   cfg.Safety,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("attach browser: %w", err)
	}
	return browser, func() { browser.Close() }, nil
}
