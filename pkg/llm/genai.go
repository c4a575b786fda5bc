package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/dtnitsch/school-assistant/pkg/metrics"
)

// GenAI calls a Gemini model through the Google GenAI SDK.
type GenAI struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewGenAI creates a Gemini generator. An empty apiKey is an error; callers
// that run without a key should use Unavailable instead.
func NewGenAI(ctx context.Context, apiKey, model string, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) (*GenAI, error) {
	if apiKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenAI{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger.With("component", "llm"),
		metrics: m,
	}, nil
}

// Generate sends prompt to the model. The call is bounded by the configured
// timeout as well as ctx.
func (g *GenAI) Generate(ctx context.Context, prompt string) Result {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res := g.generate(ctx, prompt)
	g.metrics.ModelCall(string(res.Status))
	if res.Err != nil {
		g.logger.Warn("Model call failed", "status", res.Status, "error", res.Err)
	}
	return res
}

func (g *GenAI) generate(ctx context.Context, prompt string) Result {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return classify(ctx, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Result{Status: StatusEmpty}
	}
	return Result{Text: text, Status: StatusOK}
}

func classify(ctx context.Context, err error) Result {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Result{Status: StatusTimeout, Err: err}
	}
	return Result{Status: StatusFailed, Err: err}
}
