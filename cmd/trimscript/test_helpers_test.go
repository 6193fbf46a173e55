package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"trimscript/internal/config"
	"trimscript/internal/render"
	"trimscript/internal/services/whisperx"
	"trimscript/internal/testsupport"
	"trimscript/internal/transcript"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	media      string
	renderer   *fakeRenderer
	overrides  *collaborators
}

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(context.Context, string, string) (whisperx.TranscribeResult, error) {
	return whisperx.TranscribeResult{Segments: testsupport.SampleSegments(), Language: "en"}, nil
}

type rewriteFunc func(ctx context.Context, tokens []transcript.Token) ([]string, error)

func (f rewriteFunc) Rewrite(ctx context.Context, tokens []transcript.Token) ([]string, error) {
	return f(ctx, tokens)
}

// dropFiller removes "um" from the kept words.
func dropFiller(_ context.Context, tokens []transcript.Token) ([]string, error) {
	var words []string
	for _, word := range transcript.SpeechTexts(tokens) {
		if strings.TrimSpace(word) == "um" {
			continue
		}
		words = append(words, word)
	}
	return words, nil
}

type fakeRenderer struct {
	mu     sync.Mutex
	frames []float64
}

func (f *fakeRenderer) Render(_ context.Context, _ string, ranges transcript.Ranges, output string) (render.Result, error) {
	if err := os.WriteFile(output, []byte("rendered"), 0o644); err != nil {
		return render.Result{}, err
	}
	return render.Result{OutputPath: output, Ranges: ranges, Duration: ranges.Total()}, nil
}

func (f *fakeRenderer) Preview(ctx context.Context, source string, ranges transcript.Ranges, dir string) (render.Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return render.Result{}, err
	}
	return f.Render(ctx, source, ranges, filepath.Join(dir, "preview.mp4"))
}

func (f *fakeRenderer) ExtractFrame(_ context.Context, _ string, at float64, dest string) error {
	f.mu.Lock()
	f.frames = append(f.frames, at)
	f.mu.Unlock()
	return os.WriteFile(dest, []byte("frame"), 0o644)
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("TRIMSCRIPT_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = ""

	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	renderer := &fakeRenderer{}
	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		media:      testsupport.WriteMedia(t, base, "My Talk.mp4", 32),
		renderer:   renderer,
		overrides: &collaborators{
			transcriber: fakeTranscriber{},
			rewriter:    rewriteFunc(dropFiller),
			renderer:    renderer,
		},
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	ctx := newCommandContext()
	ctx.overrides = env.overrides
	cmd := newRootCommandWith(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func mustRunCLI(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, env, args...)
	if err != nil {
		t.Fatalf("trimscript %s: %v (stderr: %s)", strings.Join(args, " "), err, stderr)
	}
	return out
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nwork_dir = %q\nlog_dir = %q\n\n[llm]\napi_key = %q\n\n[logging]\nlevel = %q\n",
		cfg.Paths.DataDir,
		cfg.Paths.WorkDir,
		cfg.Paths.LogDir,
		cfg.LLM.APIKey,
		"error",
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
