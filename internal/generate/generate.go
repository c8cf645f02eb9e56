// Package generate asks a chat model for analysis reports, with an on-disk
// cache in front of the model.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/goinsight/internal/cache"
	"github.com/hyperifyio/goinsight/internal/extract"
	"github.com/hyperifyio/goinsight/internal/llm"
	"github.com/hyperifyio/goinsight/internal/prompt"
	"github.com/hyperifyio/goinsight/internal/validate"
)

var (
	// ErrEmptyResponse indicates the model returned no usable report text.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrCacheMiss is returned in cache-only mode when no entry exists.
	ErrCacheMiss = errors.New("report not in cache")
)

// Generator produces raw report text for rendered prompts.
type Generator struct {
	Client llm.Client
	Cache  *cache.LLMCache
	// Limiter throttles model calls when set. Cache hits are not throttled.
	Limiter *rate.Limiter
	Model   string
	// Temperature and MaxTokens are passed through to the model.
	Temperature float32
	MaxTokens   int
	// Stream uses the streaming API when the client supports it.
	Stream  bool
	OnDelta llm.Delta
	// CacheOnly fails with ErrCacheMiss instead of calling the model.
	CacheOnly bool
	// RetryDelay is the pause before the single retry of a failed call.
	RetryDelay time.Duration
}

// Report is the outcome of one generation.
type Report struct {
	Category extract.Category
	Model    string
	Text     string
	Cached   bool
	Duration time.Duration
}

const defaultRetryDelay = 100 * time.Millisecond

// sleep waits for d unless ctx ends first. Tests replace it.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Generate returns the report for p, from the cache when possible.
func (g *Generator) Generate(ctx context.Context, p prompt.Prompt) (Report, error) {
	if g.Client == nil && !g.CacheOnly {
		return Report{}, errors.New("generator not configured: no client")
	}
	if strings.TrimSpace(g.Model) == "" {
		return Report{}, errors.New("generator not configured: no model")
	}
	start := time.Now()
	out := Report{Category: p.Profile.Category, Model: g.Model}
	key := cache.KeyFrom(g.Model, p.System, p.User)

	if g.Cache != nil {
		if e, ok, err := g.Cache.Get(ctx, key); err != nil {
			log.Warn().Err(err).Msg("llm cache read failed")
		} else if ok {
			out.Text, out.Cached, out.Duration = e.Text, true, time.Since(start)
			log.Debug().Str("category", string(p.Profile.Category)).Str("key", key[:12]).Msg("report cache hit")
			return out, nil
		}
	}
	if g.CacheOnly {
		return Report{}, fmt.Errorf("%s: %w", p.Profile.Category, ErrCacheMiss)
	}

	req := openai.ChatCompletionRequest{
		Model: g.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: g.Temperature,
		MaxTokens:   g.MaxTokens,
		N:           1,
	}
	text, err := g.call(ctx, req)
	if err != nil {
		delay := g.RetryDelay
		if delay <= 0 {
			delay = defaultRetryDelay
		}
		log.Warn().Err(err).Str("category", string(p.Profile.Category)).Dur("retry_in", delay).Msg("model call failed")
		if serr := sleep(ctx, delay); serr != nil {
			return Report{}, serr
		}
		text, err = g.call(ctx, req)
		if err != nil {
			return Report{}, fmt.Errorf("generate %s (after retry): %w", p.Profile.Category, err)
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Report{}, fmt.Errorf("generate %s: %w", p.Profile.Category, ErrEmptyResponse)
	}
	if !validate.HasSectionMarkers(text) {
		log.Warn().Str("category", string(p.Profile.Category)).Msg("report has no SECTION: markers; extraction will rely on raw text")
	}
	if g.Cache != nil {
		e := cache.Entry{Model: g.Model, Category: string(p.Profile.Category), Text: text}
		if err := g.Cache.Save(ctx, key, e); err != nil {
			log.Warn().Err(err).Msg("llm cache write failed")
		}
	}
	out.Text, out.Duration = text, time.Since(start)
	log.Debug().
		Str("category", string(p.Profile.Category)).
		Str("model", g.Model).
		Int("chars", len(text)).
		Dur("took", out.Duration).
		Msg("report generated")
	return out, nil
}

// call performs one model request, streaming when configured.
func (g *Generator) call(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if g.Limiter != nil {
		if err := g.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	if s, ok := g.Client.(llm.Streamer); ok && g.Stream {
		req.Stream = true
		stream, err := s.CreateChatCompletionStream(ctx, req)
		if err != nil {
			return "", err
		}
		return llm.Collect(stream, g.OnDelta)
	}
	resp, err := g.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
