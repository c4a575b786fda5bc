// Package llm wraps the language model behind a small interface. Every call
// returns a Result rather than an error so callers can pick a fallback without
// inspecting error chains.
package llm

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Status describes the outcome of one generation.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
	StatusFailed      Status = "failed"
	StatusTimeout     Status = "timeout"
	StatusEmpty       Status = "empty"
)

// MinUsableLength is the rune count a reply must exceed before it is shown.
const MinUsableLength = 20

// Result is the outcome of a generation.
type Result struct {
	Text   string
	Status Status
	Err    error
}

// Usable reports whether the text can be returned to the user as is.
func (r Result) Usable() bool {
	return r.Status == StatusOK && utf8.RuneCountInString(strings.TrimSpace(r.Text)) > MinUsableLength
}

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) Result
}

// Unavailable is the generator used when no model is configured.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) Result {
	return Result{Status: StatusUnavailable}
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, prompt string) Result

func (f Func) Generate(ctx context.Context, prompt string) Result {
	return f(ctx, prompt)
}
