// Package chatbot is the assistant's entry point: it answers questions, takes
// manual knowledge-base entries and refreshes the crawled knowledge.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtnitsch/school-assistant/internal/common"
	"github.com/dtnitsch/school-assistant/models"
	"github.com/dtnitsch/school-assistant/pkg/composer"
	"github.com/dtnitsch/school-assistant/pkg/crawler"
	"github.com/dtnitsch/school-assistant/pkg/db"
	"github.com/dtnitsch/school-assistant/pkg/metrics"
	"github.com/dtnitsch/school-assistant/pkg/ranker"
)

var (
	// ErrEmptyCrawl means a refresh crawled nothing; the previous documents are kept.
	ErrEmptyCrawl = errors.New("crawl produced no documents")
	// ErrInvalidDocument is returned for manual documents without a title or content.
	ErrInvalidDocument = errors.New("invalid document")
)

const defaultMaxContentLength = 3000

var humanKeywords = []string{"human", "person", "staff", "talk to someone", "contact", "call", "meet"}

// KnowledgeStore is the document store the service reads and writes.
type KnowledgeStore interface {
	All() []models.Document
	Append(ctx context.Context, doc models.Document) error
	DeleteManual(ctx context.Context, id string) error
	ReplaceCrawled(ctx context.Context, docs []models.Document) error
}

type Crawler interface {
	Crawl(ctx context.Context, seed string) (*crawler.Result, error)
}

type Composer interface {
	Compose(ctx context.Context, q composer.Query) composer.Answer
}

type LanguageDetector interface {
	Detect(text string) string
}

// ConversationLog records exchanges and crawl runs.
type ConversationLog interface {
	LogConversation(ctx context.Context, c models.Conversation) error
	InsertCrawlRun(ctx context.Context, r db.CrawlRun) (int64, error)
}

// Purger drops cached model answers.
type Purger interface {
	Purge(ctx context.Context) error
}

// Options configure a Service.
type Options struct {
	SchoolName       string
	SeedURL          string
	MaxContentLength int
}

// Deps are the collaborators of a Service. Language, Log and Cache are optional.
type Deps struct {
	Store    KnowledgeStore
	Crawler  Crawler
	Composer Composer
	Language LanguageDetector
	Log      ConversationLog
	Cache    Purger
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Reply is the answer to one question.
type Reply struct {
	Text       string
	Intent     composer.Intent
	Language   string
	NeedsHuman bool
	Sources    []ranker.Result
}

type Service struct {
	deps Deps
	opts Options
	log  *slog.Logger
	now  func() time.Time
}

func New(deps Deps, opts Options) *Service {
	if opts.MaxContentLength <= 0 {
		opts.MaxContentLength = defaultMaxContentLength
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		deps: deps,
		opts: opts,
		log:  logger.With("component", "chatbot"),
		now:  time.Now,
	}
}

// Answer replies to question. It always returns text; failures along the way
// degrade to fallback wording.
func (s *Service) Answer(ctx context.Context, question, sessionID string) (reply Reply) {
	start := s.now()
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{Text: fmt.Sprintf("Please ask me something about %s school.", s.opts.SchoolName), Language: "en"}
	}

	lang := "en"
	if s.deps.Language != nil {
		lang = s.deps.Language.Detect(question)
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Answer panicked", "panic", r)
			reply = Reply{Text: s.noInformation(), Intent: composer.IntentGeneric, Language: lang}
		}
		s.deps.Metrics.Answer(string(reply.Intent), time.Since(start))
		s.logConversation(ctx, sessionID, question, reply)
	}()

	ans := s.deps.Composer.Compose(ctx, composer.Query{Text: question, Language: lang})
	text := ans.Text
	if strings.TrimSpace(text) == "" {
		text = s.noInformation()
	}
	return Reply{
		Text:       text,
		Intent:     ans.Intent,
		Language:   lang,
		NeedsHuman: NeedsHuman(question),
		Sources:    ans.Sources,
	}
}

// NeedsHuman reports whether the question asks to reach a person.
func NeedsHuman(question string) bool {
	q := strings.ToLower(question)
	for _, k := range humanKeywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

func (s *Service) noInformation() string {
	return fmt.Sprintf("I don't have information about that. Please ask about %s school admissions, timings, fees, events, or contact our staff for more details.", s.opts.SchoolName)
}

func (s *Service) logConversation(ctx context.Context, sessionID, question string, r Reply) {
	if s.deps.Log == nil {
		return
	}
	err := s.deps.Log.LogConversation(ctx, models.Conversation{
		SessionID:   sessionID,
		UserMessage: question,
		BotResponse: r.Text,
		Language:    r.Language,
		Intent:      string(r.Intent),
		Timestamp:   s.now(),
	})
	if err != nil {
		s.log.Warn("Failed to log conversation", "error", err)
	}
}

// AddManualDocument validates, truncates and stores a staff-provided
// document. It is visible to the next question without a reload.
func (s *Service) AddManualDocument(ctx context.Context, title, content, category, source string) (models.Document, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return models.Document{}, fmt.Errorf("%w: title is required", ErrInvalidDocument)
	}
	if content == "" {
		return models.Document{}, fmt.Errorf("%w: content is required", ErrInvalidDocument)
	}
	if source == "" {
		source = models.SourceManualEntry
	}
	if category = strings.TrimSpace(category); category == "" {
		category = models.DefaultCategory
	}

	doc := models.Document{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   common.Truncate(content, s.opts.MaxContentLength),
		Category:  category,
		Origin:    models.OriginManual,
		SourceURL: source,
		CreatedAt: s.now(),
	}
	if err := s.deps.Store.Append(ctx, doc); err != nil {
		return models.Document{}, err
	}
	s.log.Info("Manual document added", "id", doc.ID, "title", doc.Title, "category", doc.Category)
	return doc, nil
}

// DeleteManualDocument removes a manual document. Cached answers may quote
// it, so the answer cache is purged.
func (s *Service) DeleteManualDocument(ctx context.Context, id string) error {
	if err := s.deps.Store.DeleteManual(ctx, id); err != nil {
		return err
	}
	s.purgeCache(ctx)
	s.log.Info("Manual document deleted", "id", id)
	return nil
}

// Refresh crawls the school site and replaces the crawled documents. An
// empty crawl keeps the previous set and returns ErrEmptyCrawl.
func (s *Service) Refresh(ctx context.Context) (*crawler.Result, error) {
	started := s.now()
	res, err := s.refresh(ctx)

	run := db.CrawlRun{
		StartedAt:  started,
		FinishedAt: s.now(),
		SeedURL:    s.opts.SeedURL,
		Outcome:    metrics.OutcomeOK,
	}
	if res != nil {
		run.PagesFetched = res.PagesFetched
		run.FailedCount = res.Failed
		run.SkippedCount = res.Skipped
		run.DuplicateCount = res.Duplicates
		run.DocumentCount = len(res.Documents)
	}
	if err != nil {
		run.Outcome = metrics.OutcomeFailed
		run.ErrorMessage = err.Error()
		s.log.Warn("Refresh failed", "error", err)
	} else {
		s.log.Info("Refresh complete", "documents", run.DocumentCount, "pages", run.PagesFetched, "duration", run.FinishedAt.Sub(started))
	}
	s.deps.Metrics.Refresh(run.Outcome)

	if s.deps.Log != nil {
		// the run is recorded even when the caller's context is already done
		if _, lerr := s.deps.Log.InsertCrawlRun(context.WithoutCancel(ctx), run); lerr != nil {
			s.log.Warn("Failed to record crawl run", "error", lerr)
		}
	}
	return res, err
}

func (s *Service) refresh(ctx context.Context) (*crawler.Result, error) {
	res, err := s.deps.Crawler.Crawl(ctx, s.opts.SeedURL)
	if err != nil {
		return res, fmt.Errorf("crawling %s: %w", s.opts.SeedURL, err)
	}
	if len(res.Documents) == 0 {
		return res, ErrEmptyCrawl
	}
	if err := s.deps.Store.ReplaceCrawled(ctx, res.Documents); err != nil {
		return res, err
	}
	s.purgeCache(ctx)
	return res, nil
}

func (s *Service) purgeCache(ctx context.Context) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.Purge(ctx); err != nil {
		s.log.Warn("Failed to purge answer cache", "error", err)
	}
}
