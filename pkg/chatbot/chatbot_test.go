package chatbot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/school-assistant/models"
	"github.com/dtnitsch/school-assistant/pkg/composer"
	"github.com/dtnitsch/school-assistant/pkg/crawler"
	"github.com/dtnitsch/school-assistant/pkg/db"
	"github.com/dtnitsch/school-assistant/pkg/language"
	"github.com/dtnitsch/school-assistant/pkg/llm"
	"github.com/dtnitsch/school-assistant/pkg/metrics"
	"github.com/dtnitsch/school-assistant/pkg/storage"
	"github.com/dtnitsch/school-assistant/pkg/store"
)

type fakeCrawler struct {
	result *crawler.Result
	err    error
	seeds  []string
}

func (f *fakeCrawler) Crawl(_ context.Context, seed string) (*crawler.Result, error) {
	f.seeds = append(f.seeds, seed)
	return f.result, f.err
}

type countingPurger struct{ n int }

func (p *countingPurger) Purge(context.Context) error {
	p.n++
	return nil
}

type panickingComposer struct{}

func (panickingComposer) Compose(context.Context, composer.Query) composer.Answer {
	panic("index out of range")
}

type harness struct {
	svc     *Service
	db      *db.DB
	store   *store.Store
	crawler *fakeCrawler
	cache   *countingPurger
	metrics *metrics.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	m := metrics.New()
	st := store.New(database, nil, m)
	comp := composer.New(st, llm.Unavailable{}, nil, composer.Options{
		SchoolName:    "Greenfield",
		AssistantName: "GreenBot",
		Keywords:      []string{"greenfield"},
	}, nil)
	fc := &fakeCrawler{}
	cache := &countingPurger{}

	svc := New(Deps{
		Store:    st,
		Crawler:  fc,
		Composer: comp,
		Language: language.NewDetector(),
		Log:      database,
		Cache:    cache,
		Metrics:  m,
	}, Options{SchoolName: "Greenfield", SeedURL: "http://greenfield.example/", MaxContentLength: 100})

	return &harness{svc: svc, db: database, store: st, crawler: fc, cache: cache, metrics: m}
}

func TestAnswerEmptyQuestion(t *testing.T) {
	h := newHarness(t)
	reply := h.svc.Answer(context.Background(), "   ", "s1")
	assert.Equal(t, "Please ask me something about Greenfield school.", reply.Text)

	n, err := h.db.CountConversations(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddManualDocumentThenAnswer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	doc, err := h.svc.AddManualDocument(ctx, "Bus Routes", "Route 7 school bus stops at the Koyla market gate.", "", "")
	require.NoError(t, err)

	reply := h.svc.Answer(ctx, "school bus route", "s1")

	assert.Equal(t, composer.IntentSchool, reply.Intent)
	require.NotEmpty(t, reply.Sources)
	assert.Equal(t, doc.ID, reply.Sources[0].Document.ID)
	assert.Contains(t, reply.Text, "Route 7 school bus stops at the Koyla market gate.")
	assert.NotContains(t, reply.Text, "More details", "manual entries have no source link")
}

func TestDeleteManualDocument(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	doc, err := h.svc.AddManualDocument(ctx, "Bus Routes", "Route 7 school bus stops at the Koyla market gate.", "", "")
	require.NoError(t, err)
	require.NoError(t, h.svc.DeleteManualDocument(ctx, doc.ID))

	reply := h.svc.Answer(ctx, "school bus route", "s1")
	assert.Equal(t, composer.IntentGeneric, reply.Intent)
	assert.Empty(t, reply.Sources)
	assert.Equal(t, 1, h.cache.n)

	persisted, err := h.db.LoadManualDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)

	err = h.svc.DeleteManualDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, 1, h.cache.n, "a failed delete leaves the cache alone")
}

func TestAddManualDocumentValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.AddManualDocument(ctx, "", "content", "", "")
	assert.ErrorIs(t, err, ErrInvalidDocument)
	_, err = h.svc.AddManualDocument(ctx, "Title", "  \n ", "", "")
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.Empty(t, h.store.All())

	doc, err := h.svc.AddManualDocument(ctx, " Uniform ", strings.Repeat("u", 250), "", "")
	require.NoError(t, err)
	assert.Equal(t, "Uniform", doc.Title)
	assert.Len(t, doc.Content, 100)
	assert.Equal(t, models.DefaultCategory, doc.Category)
	assert.Equal(t, models.SourceManualEntry, doc.SourceURL)
	assert.Equal(t, models.OriginManual, doc.Origin)
	assert.NotEmpty(t, doc.ID)

	persisted, err := h.db.LoadManualDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, doc.ID, persisted[0].ID)
}

func TestAnswerFlagsHumanRequestsAndLogs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.AddManualDocument(ctx, "Contact", "Call the Greenfield office on 0326-123456 between 9 and 3.", "contact", "")
	require.NoError(t, err)

	reply := h.svc.Answer(ctx, "I want to talk to someone at the school", "s42")

	assert.True(t, reply.NeedsHuman)
	assert.Equal(t, composer.IntentSchool, reply.Intent, "human requests still get an answer")
	assert.Equal(t, "en", reply.Language)

	logs, err := h.db.RecentConversations(ctx, 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "s42", logs[0].SessionID)
	assert.Equal(t, "school", logs[0].Intent)
	assert.Equal(t, reply.Text, logs[0].BotResponse)

	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.AnswersTotal.WithLabelValues("school")))
}

func TestNeedsHuman(t *testing.T) {
	assert.True(t, NeedsHuman("Can I meet the principal?"))
	assert.True(t, NeedsHuman("contact number please"))
	assert.False(t, NeedsHuman("What are the fees?"))
}

func TestAnswerDetectsHindi(t *testing.T) {
	h := newHarness(t)
	reply := h.svc.Answer(context.Background(), "मुझे एक चुटकुला सुनाओ", "s1")
	assert.Equal(t, "hi", reply.Language)
	assert.Equal(t, composer.IntentGeneric, reply.Intent)
	assert.NotEmpty(t, reply.Text)
}

func TestAnswerSurvivesComposerPanic(t *testing.T) {
	h := newHarness(t)
	h.svc.deps.Composer = panickingComposer{}

	reply := h.svc.Answer(context.Background(), "what are the fees", "s1")

	assert.True(t, strings.HasPrefix(reply.Text, "I don't have information about that."))
	assert.Equal(t, composer.IntentGeneric, reply.Intent)
}

func TestRefreshReplacesCrawledDocuments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.AddManualDocument(ctx, "Note", "Manual note about sports day.", "", "")
	require.NoError(t, err)

	h.crawler.result = &crawler.Result{
		Documents: []models.Document{
			{ID: "c1", Title: "Home", Content: "Welcome to Greenfield.", Category: "home", Origin: models.OriginCrawled, SourceURL: "http://greenfield.example/"},
		},
		PagesFetched: 3,
		Failed:       1,
	}

	res, err := h.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.PagesFetched)
	assert.Equal(t, []string{"http://greenfield.example/"}, h.crawler.seeds)

	all := h.store.All()
	require.Len(t, all, 2)
	assert.Equal(t, "c1", all[0].ID, "crawled documents come first")
	assert.Equal(t, 1, h.cache.n)

	runs, err := h.db.ListCrawlRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "ok", runs[0].Outcome)
	assert.Equal(t, 1, runs[0].DocumentCount)
	assert.Equal(t, 1, runs[0].FailedCount)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.RefreshTotal.WithLabelValues("ok")))
}

func TestRefreshEmptyCrawlKeepsPreviousSet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.ReplaceCrawled(ctx, []models.Document{{ID: "old", Title: "Old", Content: "old content"}}))

	h.crawler.result = &crawler.Result{PagesFetched: 1, Failed: 1}
	_, err := h.svc.Refresh(ctx)

	assert.ErrorIs(t, err, ErrEmptyCrawl)
	require.Len(t, h.store.All(), 1)
	assert.Equal(t, "old", h.store.All()[0].ID)
	assert.Zero(t, h.cache.n)

	runs, _ := h.db.ListCrawlRuns(ctx, 5)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Outcome)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.RefreshTotal.WithLabelValues("failed")))
}

func TestRefreshInvalidSeed(t *testing.T) {
	h := newHarness(t)
	h.crawler.err = crawler.ErrInvalidSeed

	_, err := h.svc.Refresh(context.Background())
	assert.True(t, errors.Is(err, crawler.ErrInvalidSeed))
}

func TestImportFile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "Canteen Menu.txt")
	require.NoError(t, os.WriteFile(path, []byte("Lunch is served at 12:30 in the canteen."), 0644))

	doc, err := h.svc.ImportFile(ctx, path, "facilities")
	require.NoError(t, err)
	assert.Equal(t, "Canteen Menu", doc.Title)
	assert.Equal(t, models.SourceUploadedFile, doc.SourceURL)
	assert.Equal(t, "facilities", doc.Category)
	assert.False(t, doc.LinkableSource())

	_, err = h.svc.ImportFile(ctx, filepath.Join(dir, "prospectus.pdf"), "")
	assert.ErrorIs(t, err, storage.ErrUnsupportedFormat)
}

func TestExportImportDocuments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.AddManualDocument(ctx, "Fees", "Fees are paid quarterly.", "fees", "")
	require.NoError(t, err)
	_, err = h.svc.AddManualDocument(ctx, "Library", "Library opens at 8.", "", "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "kb.yaml")
	n, err := h.svc.ExportDocuments(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	other := newHarness(t)
	added, err := other.svc.ImportDocuments(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	all := other.store.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Fees", all[0].Title)
	assert.Equal(t, "fees", all[0].Category)
	assert.Equal(t, models.SourceManualEntry, all[0].SourceURL)
}

func TestAnswerUsesClock(t *testing.T) {
	h := newHarness(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	h.svc.now = func() time.Time { return fixed }

	h.svc.Answer(context.Background(), "tell me a joke", "s1")

	logs, err := h.db.RecentConversations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Timestamp.Equal(fixed))
}
