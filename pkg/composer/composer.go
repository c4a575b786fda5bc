// Package composer turns a question into an answer. Holiday questions are
// answered from the calendar, school questions from the best matching
// document, everything else by the language model with a canned fallback.
package composer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dtnitsch/school-assistant/models"
	"github.com/dtnitsch/school-assistant/pkg/llm"
	"github.com/dtnitsch/school-assistant/pkg/ranker"
)

const defaultTopK = 3

// DocumentSource returns the current knowledge base.
type DocumentSource interface {
	All() []models.Document
}

// HolidayLister lists public holidays. month is 0 for the whole year.
type HolidayLister interface {
	Holidays(ctx context.Context, month, year int) ([]models.HolidayEvent, error)
}

// Options parameterize the composer for one school.
type Options struct {
	SchoolName    string
	AssistantName string
	// Keywords identify the school by name or locality.
	Keywords []string
	TopK     int
	Now      func() time.Time
}

// Query is a single question.
type Query struct {
	Text     string
	Language string // "en" or "hi"
}

// Answer is the composed reply.
type Answer struct {
	Text    string
	Intent  Intent
	Sources []ranker.Result
}

type Composer struct {
	docs     DocumentSource
	gen      llm.Generator
	holidays HolidayLister
	keywords []string
	opts     Options
	logger   *slog.Logger
}

// New creates a Composer. A nil generator behaves as llm.Unavailable.
func New(docs DocumentSource, gen llm.Generator, holidays HolidayLister, opts Options, logger *slog.Logger) *Composer {
	if gen == nil {
		gen = llm.Unavailable{}
	}
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AssistantName == "" {
		opts.AssistantName = "the assistant"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		docs:     docs,
		gen:      gen,
		holidays: holidays,
		keywords: schoolKeywords(opts.SchoolName, opts.Keywords),
		opts:     opts,
		logger:   logger.With("component", "composer"),
	}
}

// IsSchoolRelated reports whether query mentions the school or a topic the
// school publishes.
func (c *Composer) IsSchoolRelated(query string) bool {
	return containsAny(strings.ToLower(query), c.keywords)
}

// Compose answers q. It never fails: every collaborator error degrades to a
// fallback text.
func (c *Composer) Compose(ctx context.Context, q Query) Answer {
	if ok, month := DetectHoliday(q.Text); ok {
		return Answer{Text: c.holidayAnswer(ctx, month), Intent: IntentHoliday}
	}

	results := ranker.Rank(q.Text, c.docs.All(), c.opts.TopK)
	if len(results) > 0 && (c.IsSchoolRelated(q.Text) || IsAmbiguous(q.Text)) {
		return Answer{Text: c.schoolAnswer(ctx, q, results[0].Document), Intent: IntentSchool, Sources: results}
	}

	res := c.gen.Generate(ctx, c.genericPrompt(q))
	if res.Usable() {
		return Answer{Text: res.Text, Intent: IntentGeneric}
	}
	return Answer{Text: CapabilityOverview(c.opts.AssistantName, c.opts.SchoolName), Intent: IntentGeneric}
}

func (c *Composer) holidayAnswer(ctx context.Context, month int) string {
	var holidays []models.HolidayEvent
	if c.holidays != nil {
		var err error
		holidays, err = c.holidays.Holidays(ctx, month, c.opts.Now().Year())
		if err != nil {
			c.logger.Warn("Holiday lookup failed", "month", month, "error", err)
			holidays = nil
		}
	}
	if len(holidays) == 0 {
		return NoHolidays(month)
	}
	return FormatHolidays(holidays, month)
}

func (c *Composer) schoolAnswer(ctx context.Context, q Query, best models.Document) string {
	var text string
	if res := c.gen.Generate(ctx, c.schoolPrompt(q, best.Content)); res.Usable() {
		text = res.Text
	} else {
		text = c.schoolFallback(q.Text, best.Content)
	}

	text = Linkify(text)
	if best.LinkableSource() {
		text += sourceFooter(best.SourceURL)
	}
	return text
}
