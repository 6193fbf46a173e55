package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"trimscript/internal/logging"
	"trimscript/internal/services"
	"trimscript/internal/transcript"
)

// Completer sends one chat exchange and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const (
	defaultChunkWords    = 400
	defaultMaxConcurrent = 2
)

// Options tunes chunking and pacing.
type Options struct {
	ChunkWords        int
	MaxConcurrent     int
	RequestsPerMinute int
	Language          string
}

// Rewriter turns kept tokens into a candidate word list.
type Rewriter struct {
	completer Completer
	opts      Options
	logger    *slog.Logger
}

// New constructs a Rewriter. A nil logger discards output.
func New(completer Completer, opts Options, logger *slog.Logger) *Rewriter {
	if opts.ChunkWords <= 0 {
		opts.ChunkWords = defaultChunkWords
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	return &Rewriter{
		completer: completer,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "rewrite"),
	}
}

type chunkResult struct {
	index int
	words []string
}

// Rewrite returns the candidate words for tokens, in chunk order. The first
// failing chunk cancels the rest.
func (r *Rewriter) Rewrite(ctx context.Context, tokens []transcript.Token) ([]string, error) {
	if r == nil || r.completer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "rewrite", "init", "no language model configured", nil)
	}
	chunks := SplitChunks(tokens, r.opts.ChunkWords)
	if len(chunks) == 0 {
		return nil, nil
	}

	logger := logging.WithContext(ctx, r.logger)
	logger.Info("rewrite started",
		logging.Int("tokens", len(tokens)),
		logging.Int("chunks", len(chunks)),
		logging.Int("max_concurrent", r.opts.MaxConcurrent),
		logging.Int("requests_per_minute", r.opts.RequestsPerMinute),
	)
	started := time.Now()

	limiter := rate.NewLimiter(rate.Inf, 1)
	if r.opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(r.opts.RequestsPerMinute)/60.0), 1)
	}
	system := SystemPrompt(r.opts.Language)

	var (
		mu      sync.Mutex
		results = make([]chunkResult, 0, len(chunks))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.MaxConcurrent)
	for i, chunk := range chunks {
		if len(transcript.SpeechTexts(chunk)) == 0 {
			continue
		}
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
			words, err := r.rewriteChunk(gctx, system, chunk)
			if err != nil {
				return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
			}
			logger.Debug("rewrite chunk completed",
				logging.Int("chunk", i+1),
				logging.Int("sent", len(transcript.SpeechTexts(chunk))),
				logging.Int("returned", len(words)),
			)
			mu.Lock()
			results = append(results, chunkResult{index: i, words: words})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.WarnWithContext(logger, "rewrite failed", "rewrite_failed",
			append(logging.ErrorAttrs(err), logging.String(logging.FieldImpact, "transcript left unchanged"))...)
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	var out []string
	for _, res := range results {
		out = append(out, res.words...)
	}
	logger.Info("rewrite completed",
		logging.Int("candidates", len(out)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return out, nil
}

func (r *Rewriter) rewriteChunk(ctx context.Context, system string, chunk []transcript.Token) ([]string, error) {
	request, err := BuildRequest(chunk)
	if err != nil {
		return nil, err
	}
	reply, err := r.completer.Complete(ctx, system, request)
	if err != nil {
		return nil, err
	}
	return ParseResponse(reply)
}
