package caching

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/dtnitsch/school-assistant/pkg/llm"
)

// Generator serves repeated prompts from a Cache and coalesces identical
// prompts that are in flight at the same time. Only usable results are stored.
type Generator struct {
	next   llm.Generator
	cache  Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewGenerator wraps next with cache.
func NewGenerator(next llm.Generator, cache Cache, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{next: next, cache: cache, logger: logger.With("component", "answer-cache")}
}

func (g *Generator) Generate(ctx context.Context, prompt string) llm.Result {
	if data, ok := g.cache.Get(ctx, prompt); ok {
		g.logger.Debug("Cache hit")
		return llm.Result{Text: string(data), Status: llm.StatusOK}
	}

	v, _, _ := g.group.Do(Key(prompt), func() (any, error) {
		if data, ok := g.cache.Get(ctx, prompt); ok {
			return llm.Result{Text: string(data), Status: llm.StatusOK}, nil
		}
		res := g.next.Generate(ctx, prompt)
		if res.Usable() {
			if err := g.cache.Set(ctx, prompt, []byte(res.Text)); err != nil {
				g.logger.Warn("Cache set failed", "error", err)
			}
		}
		return res, nil
	})
	return v.(llm.Result)
}

// Purge drops every cached answer.
func (g *Generator) Purge(ctx context.Context) error {
	return g.cache.Purge(ctx)
}
