package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"trimscript/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"XDG_DATA_HOME", "XDG_CACHE_HOME", "TRIMSCRIPT_LLM_API_KEY", "OPENAI_API_KEY", "HF_TOKEN", "HUGGING_FACE_HUB_TOKEN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(home, ".local", "share", "trimscript")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.WorkDir != filepath.Join(home, ".cache", "trimscript", "work") {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "projects.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.WhisperX.VADMethod != "silero" {
		t.Fatalf("expected silero VAD by default, got %q", cfg.WhisperX.VADMethod)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected default model %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "" {
		t.Fatalf("expected empty API key, got %q", cfg.LLM.APIKey)
	}
	if err := cfg.RequireLLMKey(); err == nil {
		t.Fatal("expected RequireLLMKey to fail without a key")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadUsesXDGDirectories(t *testing.T) {
	isolateEnv(t)
	xdg := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(xdg, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(xdg, "cache"))

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.DataDir != filepath.Join(xdg, "data", "trimscript") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.WorkDir != filepath.Join(xdg, "cache", "trimscript", "work") {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	home := isolateEnv(t)

	custom := config.Default()
	custom.Paths.DataDir = "~/projects/data"
	custom.Paths.WorkDir = filepath.Join(home, "scratch")
	custom.LLM.APIKey = "file-key"
	custom.LLM.ChunkWords = 120
	custom.Render.Concurrency = 4

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(home, "custom.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %q to be loaded, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(home, "projects", "data") {
		t.Fatalf("expected tilde expansion, got %q", cfg.Paths.DataDir)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("unexpected api key %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.ChunkWords != 120 || cfg.Render.Concurrency != 4 {
		t.Fatalf("custom values not applied: chunk=%d concurrency=%d", cfg.LLM.ChunkWords, cfg.Render.Concurrency)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "bad.toml")
	if err := os.WriteFile(path, []byte("[llm]\nmodle = \"typo\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEnvFallbackForAPIKeys(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("HF_TOKEN", "hf-key")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "openai-key" {
		t.Fatalf("expected OPENAI_API_KEY fallback, got %q", cfg.LLM.APIKey)
	}
	if cfg.WhisperX.HFToken != "hf-key" {
		t.Fatalf("expected HF_TOKEN fallback, got %q", cfg.WhisperX.HFToken)
	}

	t.Setenv("TRIMSCRIPT_LLM_API_KEY", "own-key")
	cfg, _, _, err = config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "own-key" {
		t.Fatalf("expected TRIMSCRIPT_LLM_API_KEY to win, got %q", cfg.LLM.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if cfg.LLM.ChunkWords != config.Default().LLM.ChunkWords {
		t.Fatalf("sample chunk_words = %d, want default", cfg.LLM.ChunkWords)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample should load cleanly: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"vad method", func(c *config.Config) { c.WhisperX.VADMethod = "webrtc" }, "whisperx.vad_method"},
		{"pyannote token", func(c *config.Config) { c.WhisperX.VADMethod = "pyannote" }, "whisperx.hf_token"},
		{"base url", func(c *config.Config) { c.LLM.BaseURL = "not a url" }, "llm.base_url"},
		{"chunk words", func(c *config.Config) { c.LLM.ChunkWords = -1 }, "llm.chunk_words"},
		{"rpm", func(c *config.Config) { c.LLM.RequestsPerMinute = -5 }, "llm.requests_per_minute"},
		{"crf", func(c *config.Config) { c.Render.CRF = 60 }, "render.crf"},
		{"concurrency", func(c *config.Config) { c.Render.Concurrency = 0 }, "render.concurrency"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = t.TempDir()
			cfg.Paths.WorkDir = t.TempDir()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
