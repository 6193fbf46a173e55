package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"trimscript/internal/config"
	"trimscript/internal/editor"
	"trimscript/internal/logging"
	"trimscript/internal/project"
	"trimscript/internal/render"
	"trimscript/internal/rewrite"
	"trimscript/internal/services/llm"
	"trimscript/internal/services/whisperx"
)

// collaborators lets tests replace the external tools behind the editor.
type collaborators struct {
	transcriber editor.Transcriber
	rewriter    editor.Rewriter
	renderer    editor.Renderer
}

type commandContext struct {
	configFlag   string
	projectFlag  string
	jsonFlag     bool
	logLevelFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	overrides *collaborators
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.logLevelFlag); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) withStore(fn func(*project.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := project.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// withEditor opens the store and an editor. When needProject is set the
// project named by --project, or the most recent one, is opened first.
func (c *commandContext) withEditor(cmd *cobra.Command, needProject bool, fn func(context.Context, *editor.Editor) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	return c.withStore(func(store *project.Store) error {
		ed := editor.New(c.editorOptions(cfg, store))
		defer ed.Close()

		ctx := cmd.Context()
		if needProject {
			if id := strings.TrimSpace(c.projectFlag); id != "" {
				_, err = ed.Open(ctx, id)
			} else {
				_, err = ed.OpenLatest(ctx)
			}
			if err != nil {
				return err
			}
		}
		return fn(ctx, ed)
	})
}

func (c *commandContext) editorOptions(cfg *config.Config, store *project.Store) editor.Options {
	logger := c.log()
	opts := editor.Options{
		Store:   store,
		WorkDir: cfg.Paths.WorkDir,
		Logger:  logger,
	}
	if c.overrides != nil {
		opts.Transcriber = c.overrides.transcriber
		opts.Rewriter = c.overrides.rewriter
		opts.Renderer = c.overrides.renderer
		return opts
	}

	opts.Transcriber = whisperx.NewService(whisperx.Config{
		Model:       cfg.WhisperX.Model,
		CUDAEnabled: cfg.WhisperX.CUDAEnabled,
		VADMethod:   cfg.WhisperX.VADMethod,
		HFToken:     cfg.WhisperX.HFToken,
		Language:    cfg.WhisperX.Language,
		ComputeType: cfg.WhisperX.ComputeType,
	}, cfg.Render.FFmpegBinary)

	if strings.TrimSpace(cfg.LLM.APIKey) != "" {
		client := llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
		opts.Rewriter = rewrite.New(client, rewrite.Options{
			ChunkWords:        cfg.LLM.ChunkWords,
			MaxConcurrent:     cfg.LLM.MaxConcurrent,
			RequestsPerMinute: cfg.LLM.RequestsPerMinute,
			Language:          cfg.WhisperX.Language,
		}, logger)
	}

	opts.Renderer = render.New(render.Options{
		FFmpegBinary:  cfg.Render.FFmpegBinary,
		FFprobeBinary: cfg.Render.FFprobeBinary,
		VideoCodec:    cfg.Render.VideoCodec,
		AudioCodec:    cfg.Render.AudioCodec,
		CRF:           cfg.Render.CRF,
		Preset:        cfg.Render.Preset,
		Concurrency:   cfg.Render.Concurrency,
		PreviewHeight: cfg.Render.PreviewHeight,
		WorkDir:       cfg.Paths.WorkDir,
	}, logger)
	return opts
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
