package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"minutes/internal/config"
	"minutes/internal/logging"
	"minutes/internal/media"
	"minutes/internal/meeting"
	"minutes/internal/pipeline"
	"minutes/internal/services"
	"minutes/internal/services/llm"
	"minutes/internal/services/transcriber"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// runtime bundles everything a pipeline command needs. Close releases the
// catalog handle.
type runtime struct {
	cfg    *config.Config
	store  *meeting.Store
	orch   *pipeline.Orchestrator
	logger *slog.Logger
}

func (r *runtime) Close() {
	if r != nil && r.store != nil {
		r.store.Close()
	}
}

func (c *commandContext) buildRuntime() (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	store, err := meeting.Open(cfg)
	if err != nil {
		return nil, err
	}

	toolkit := media.New(cfg.FFmpegBinary(), cfg.FFprobeBinary())
	stt := transcriber.NewClient(transcriber.Config{
		Endpoint:       cfg.Transcriber.Endpoint,
		Model:          cfg.Transcriber.Model,
		Language:       cfg.Transcriber.Language,
		TimeoutSeconds: cfg.Transcriber.TimeoutSeconds,
		MaxRetries:     cfg.Transcriber.MaxRetries,
	})
	summarizer := llm.NewClient(llm.Config{
		Endpoint:       cfg.LLM.Endpoint,
		Model:          cfg.LLM.Model,
		ContextWindow:  cfg.LLM.ContextWindow,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		MaxRetries:     cfg.LLM.MaxRetries,
		BackoffBase:    cfg.LLMBackoffBase(),
	})

	orch := pipeline.New(cfg, store, toolkit, stt, summarizer, nil, logger)
	return &runtime{cfg: cfg, store: store, orch: orch, logger: logger}, nil
}

// withRuntime runs fn against a freshly built runtime and tears it down
// afterwards.
func (c *commandContext) withRuntime(fn func(*runtime) error) error {
	rt, err := c.buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// runContext tags the command context with a correlation identifier so
// every log line from one invocation can be tied together.
func runContext(parent context.Context) context.Context {
	return services.WithRunID(parent, uuid.NewString())
}
