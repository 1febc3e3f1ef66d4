package main

import (
	"context"
	"fmt"
	"os"

	"github.com/voicelens/voicelens/internal/broker"
	"github.com/voicelens/voicelens/internal/config"
	"github.com/voicelens/voicelens/internal/db"
	"github.com/voicelens/voicelens/internal/llm"
	"github.com/voicelens/voicelens/internal/observability"
)

// loadConfig merges the optional --config file over environment defaults.
func loadConfig() (config.Config, error) {
	env := config.FromEnv()

	cfg := *env
	if configFile != "" {
		fileCfg, err := config.LoadFile(configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg.MergeWithDefaults(*env)
	} else {
		cfg = cfg.MergeWithDefaults(config.Config{})
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openDB connects and migrates.
func openDB(ctx context.Context, cfg config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required (environment variable or config file)")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// buildPort constructs the configured model adapter. The returned cleanup is
// always safe to call.
func buildPort(ctx context.Context, cfg config.Config, events *observability.Logger) (llm.Port, func(), error) {
	switch cfg.Adapter {
	case config.AdapterGemini:
		newBroker := func() llm.ToolBroker {
			return broker.New(broker.DefaultConfig(), events)
		}
		geminiCfg := llm.DefaultGeminiConfig()
		if cfg.Model != "" {
			geminiCfg.Model = cfg.Model
		}
		gemini, err := llm.NewGemini(ctx, cfg.GeminiKey, newBroker, geminiCfg)
		if err != nil {
			return nil, func() {}, err
		}
		return gemini, func() { _ = gemini.Close() }, nil
	default:
		return llm.NewStub(), func() {}, nil
	}
}

func newEventLogger() *observability.Logger {
	return observability.NewLogger(os.Stderr)
}
