package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dtnitsch/school-assistant/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestInitSchemaIdempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.InitSchema(); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}
}

func TestOpenCreatesFile(t *testing.T) {
	path := t.TempDir() + "/nested/school.db"
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if err := db.InsertManualDocument(context.Background(), models.Document{ID: "m1", Title: "t", Content: "c"}); err != nil {
		t.Fatalf("insert into opened db failed: %v", err)
	}
}

func TestReplaceCrawledDocuments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first := []models.Document{
		{ID: "a", Title: "Home", Content: "welcome", Category: "home", SourceURL: "http://school.example/", CreatedAt: now},
		{ID: "b", Title: "Fees", Content: "fee table", SourceURL: "http://school.example/fees", CreatedAt: now},
	}
	if err := db.ReplaceCrawledDocuments(ctx, first); err != nil {
		t.Fatalf("ReplaceCrawledDocuments failed: %v", err)
	}

	got, err := db.LoadCrawledDocuments(ctx)
	if err != nil {
		t.Fatalf("LoadCrawledDocuments failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d documents, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("order = %s,%s, want a,b", got[0].ID, got[1].ID)
	}
	if got[1].Category != models.DefaultCategory {
		t.Errorf("empty category stored as %q, want %q", got[1].Category, models.DefaultCategory)
	}
	if got[0].Origin != models.OriginCrawled {
		t.Errorf("origin = %q, want crawled", got[0].Origin)
	}
	if !got[0].CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", got[0].CreatedAt, now)
	}

	second := []models.Document{{ID: "c", Title: "Contact", Content: "phone", SourceURL: "http://school.example/contact", CreatedAt: now}}
	if err := db.ReplaceCrawledDocuments(ctx, second); err != nil {
		t.Fatalf("second ReplaceCrawledDocuments failed: %v", err)
	}
	got, _ = db.LoadCrawledDocuments(ctx)
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("after replace got %+v, want only c", got)
	}
}

func TestReplaceCrawledDocumentsRollsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceCrawledDocuments(ctx, []models.Document{{ID: "keep", Title: "t", Content: "c"}}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// duplicate ids violate the unique constraint part way through
	bad := []models.Document{{ID: "x", Title: "t", Content: "c"}, {ID: "x", Title: "t", Content: "c"}}
	if err := db.ReplaceCrawledDocuments(ctx, bad); err == nil {
		t.Fatal("expected error for duplicate ids")
	}

	got, _ := db.LoadCrawledDocuments(ctx)
	if len(got) != 1 || got[0].ID != "keep" {
		t.Errorf("failed replace changed the set: %+v", got)
	}
}

func TestManualDocuments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"m1", "m2"} {
		doc := models.Document{ID: id, Title: "Note " + id, Content: "content", SourceURL: models.SourceManualEntry}
		if err := db.InsertManualDocument(ctx, doc); err != nil {
			t.Fatalf("InsertManualDocument(%s) failed: %v", id, err)
		}
	}

	got, err := db.LoadManualDocuments(ctx)
	if err != nil {
		t.Fatalf("LoadManualDocuments failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
		t.Fatalf("got %+v, want m1,m2", got)
	}
	if got[0].Origin != models.OriginManual || got[0].SourceURL != models.SourceManualEntry {
		t.Errorf("unexpected origin/source: %q %q", got[0].Origin, got[0].SourceURL)
	}

	if err := db.InsertManualDocument(ctx, models.Document{ID: "m1", Title: "dup", Content: "dup"}); err == nil {
		t.Error("expected duplicate id error")
	}

	if err := db.DeleteManualDocument(ctx, "m1"); err != nil {
		t.Fatalf("DeleteManualDocument failed: %v", err)
	}
	if err := db.DeleteManualDocument(ctx, "m1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	events := []models.Event{
		{Title: "Christmas Day", Date: time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), Category: "holiday", Tags: []string{"public", "national"}, IsPublicHoliday: true, CreatedBy: "system"},
		{Title: "Annual Day", Date: time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), Category: "celebration", CreatedBy: "admin"},
		{Title: "Republic Day", Date: time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC), Category: "holiday", IsPublicHoliday: true},
		{Title: "Christmas Day", Date: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), Category: "holiday", IsPublicHoliday: true},
	}
	for _, e := range events {
		if _, err := db.InsertEvent(ctx, e); err != nil {
			t.Fatalf("InsertEvent(%s) failed: %v", e.Title, err)
		}
	}

	tests := []struct {
		name   string
		filter EventFilter
		want   []string
	}{
		{"all", EventFilter{}, []string{"Christmas Day", "Republic Day", "Annual Day", "Christmas Day"}},
		{"december 2025", EventFilter{Month: 12, Year: 2025}, []string{"Annual Day", "Christmas Day"}},
		{"public december 2025", EventFilter{Month: 12, Year: 2025, PublicHolidays: true}, []string{"Christmas Day"}},
		{"public 2025", EventFilter{Year: 2025, PublicHolidays: true}, []string{"Republic Day", "Christmas Day"}},
		{"nothing in june", EventFilter{Month: 6, Year: 2025}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListEvents(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListEvents failed: %v", err)
			}
			var titles []string
			for _, e := range got {
				titles = append(titles, e.Title)
			}
			if len(titles) != len(tt.want) {
				t.Fatalf("got %v, want %v", titles, tt.want)
			}
			for i := range titles {
				if titles[i] != tt.want[i] {
					t.Errorf("titles[%d] = %q, want %q", i, titles[i], tt.want[i])
				}
			}
		})
	}

	got, _ := db.ListEvents(ctx, EventFilter{Month: 12, Year: 2025, PublicHolidays: true})
	if len(got) != 1 {
		t.Fatalf("expected one event, got %d", len(got))
	}
	xmas := got[0]
	if !xmas.Date.Equal(time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", xmas.Date)
	}
	if len(xmas.Tags) != 2 || xmas.Tags[0] != "public" {
		t.Errorf("tags = %v", xmas.Tags)
	}
	if !xmas.IsPublicHoliday || xmas.CreatedBy != "system" {
		t.Errorf("unexpected flags: %+v", xmas)
	}

	exists, err := db.PublicHolidayExists(ctx, time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC))
	if err != nil || !exists {
		t.Errorf("PublicHolidayExists(Jan 26) = %v, %v", exists, err)
	}
	exists, _ = db.PublicHolidayExists(ctx, time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC))
	if exists {
		t.Error("Annual Day is not a public holiday")
	}

	n, err := db.CountEvents(ctx)
	if err != nil || n != 4 {
		t.Errorf("CountEvents = %d, %v", n, err)
	}
}

func TestLeads(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id1, err := db.InsertLead(ctx, "Asha", "98765 43210", "admission for class 3")
	if err != nil {
		t.Fatalf("InsertLead failed: %v", err)
	}
	id2, _ := db.InsertLead(ctx, "Ravi", "ravi@example.com", "")

	lead, err := db.GetLead(ctx, id1)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if lead.Status != models.LeadNew || lead.Name != "Asha" {
		t.Errorf("unexpected lead: %+v", lead)
	}

	if err := db.UpdateLeadStatus(ctx, id2, models.LeadContacted, "office"); err != nil {
		t.Fatalf("UpdateLeadStatus failed: %v", err)
	}
	if err := db.UpdateLeadStatus(ctx, id2, "lost", "office"); err == nil {
		t.Error("expected invalid status error")
	}
	if err := db.UpdateLeadStatus(ctx, 999, models.LeadClosed, "office"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing lead err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetLead(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLead missing err = %v, want ErrNotFound", err)
	}

	all, _ := db.ListLeads(ctx, "")
	if len(all) != 2 {
		t.Fatalf("ListLeads() returned %d, want 2", len(all))
	}
	fresh, _ := db.ListLeads(ctx, models.LeadNew)
	if len(fresh) != 1 || fresh[0].ID != id1 {
		t.Errorf("new leads = %+v", fresh)
	}
	contacted, _ := db.GetLead(ctx, id2)
	if contacted.UpdatedBy != "office" {
		t.Errorf("updated_by = %q", contacted.UpdatedBy)
	}

	total, newCount, err := db.CountLeads(ctx)
	if err != nil || total != 2 || newCount != 1 {
		t.Errorf("CountLeads = %d, %d, %v", total, newCount, err)
	}
}

func TestConversations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, q := range []string{"fees?", "timings?", "address?"} {
		err := db.LogConversation(ctx, models.Conversation{
			SessionID:   "s1",
			UserMessage: q,
			BotResponse: "answer",
			Language:    "en",
			Intent:      "school",
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("LogConversation failed: %v", err)
		}
	}

	n, err := db.CountConversations(ctx)
	if err != nil || n != 3 {
		t.Fatalf("CountConversations = %d, %v", n, err)
	}

	recent, err := db.RecentConversations(ctx, 2)
	if err != nil {
		t.Fatalf("RecentConversations failed: %v", err)
	}
	if len(recent) != 2 || recent[0].UserMessage != "address?" || recent[1].UserMessage != "timings?" {
		t.Errorf("recent = %+v", recent)
	}
	if recent[0].Intent != "school" || recent[0].SessionID != "s1" {
		t.Errorf("fields not round-tripped: %+v", recent[0])
	}
}

func TestCrawlRuns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	runs := []CrawlRun{
		{StartedAt: start, FinishedAt: start.Add(time.Minute), SeedURL: "http://school.example/", PagesFetched: 12, DocumentCount: 10, Outcome: "ok"},
		{StartedAt: start.Add(2 * time.Hour), FinishedAt: start.Add(2*time.Hour + time.Second), SeedURL: "http://school.example/", FailedCount: 1, Outcome: "failed", ErrorMessage: "crawl produced no documents"},
	}
	for _, r := range runs {
		if _, err := db.InsertCrawlRun(ctx, r); err != nil {
			t.Fatalf("InsertCrawlRun failed: %v", err)
		}
	}

	got, err := db.ListCrawlRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListCrawlRuns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d runs, want 2", len(got))
	}
	if got[0].Outcome != "failed" || got[0].ErrorMessage == "" {
		t.Errorf("latest run = %+v", got[0])
	}
	if got[1].PagesFetched != 12 || !got[1].StartedAt.Equal(start) {
		t.Errorf("first run = %+v", got[1])
	}
}
