// Package store holds the in-memory knowledge base: crawled documents plus
// manually added ones, backed by persistent storage.
//
// Readers see an immutable snapshot. Every write builds a new snapshot and
// swaps it in atomically, so a concurrent reader observes either the old or
// the new document set, never a mix.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dtnitsch/school-assistant/models"
	"github.com/dtnitsch/school-assistant/pkg/metrics"
)

// Backend persists the two document sets.
type Backend interface {
	LoadCrawledDocuments(ctx context.Context) ([]models.Document, error)
	LoadManualDocuments(ctx context.Context) ([]models.Document, error)
	ReplaceCrawledDocuments(ctx context.Context, docs []models.Document) error
	InsertManualDocument(ctx context.Context, doc models.Document) error
	DeleteManualDocument(ctx context.Context, id string) error
}

type snapshot struct {
	crawled []models.Document
	manual  []models.Document
	all     []models.Document
}

func newSnapshot(crawled, manual []models.Document) *snapshot {
	all := make([]models.Document, 0, len(crawled)+len(manual))
	all = append(all, crawled...)
	all = append(all, manual...)
	return &snapshot{crawled: crawled, manual: manual, all: all}
}

type Store struct {
	backend Backend
	logger  *slog.Logger
	metrics *metrics.Metrics

	// writeMu serializes writers; readers only load snap.
	writeMu sync.Mutex
	snap    atomic.Pointer[snapshot]
}

func New(backend Backend, logger *slog.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		backend: backend,
		logger:  logger.With("component", "store"),
		metrics: m,
	}
	s.snap.Store(newSnapshot(nil, nil))
	return s
}

// All returns crawled documents followed by manual ones. The returned slice
// is shared and must not be modified.
func (s *Store) All() []models.Document {
	return s.snap.Load().all
}

// Counts returns the number of crawled and manual documents.
func (s *Store) Counts() (crawled, manual int) {
	snap := s.snap.Load()
	return len(snap.crawled), len(snap.manual)
}

// Load replaces the crawled documents from persisted state, keeping the
// manual set. An unreadable backend yields an empty crawled set; the error is
// returned for logging.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	crawled, err := s.backend.LoadCrawledDocuments(ctx)
	if err != nil {
		s.logger.Warn("Failed to load crawled documents, using empty set", "error", err)
		crawled = nil
		err = fmt.Errorf("loading crawled documents: %w", err)
	}
	s.swap(crawled, s.snap.Load().manual)
	return err
}

// Reload re-reads both persisted sets and fully replaces in-memory state.
func (s *Store) Reload(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var errs []error
	crawled, err := s.backend.LoadCrawledDocuments(ctx)
	if err != nil {
		s.logger.Warn("Failed to load crawled documents, using empty set", "error", err)
		crawled = nil
		errs = append(errs, fmt.Errorf("loading crawled documents: %w", err))
	}
	manual, err := s.backend.LoadManualDocuments(ctx)
	if err != nil {
		s.logger.Warn("Failed to load manual documents, using empty set", "error", err)
		manual = nil
		errs = append(errs, fmt.Errorf("loading manual documents: %w", err))
	}
	s.swap(crawled, manual)
	return errors.Join(errs...)
}

// Append persists a manual document and makes it visible to readers at once.
func (s *Store) Append(ctx context.Context, doc models.Document) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.InsertManualDocument(ctx, doc); err != nil {
		return fmt.Errorf("saving manual document: %w", err)
	}
	cur := s.snap.Load()
	manual := make([]models.Document, 0, len(cur.manual)+1)
	manual = append(manual, cur.manual...)
	manual = append(manual, doc)
	s.swap(cur.crawled, manual)
	return nil
}

// DeleteManual removes a manual document from storage and from the snapshot.
func (s *Store) DeleteManual(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.DeleteManualDocument(ctx, id); err != nil {
		return fmt.Errorf("deleting manual document: %w", err)
	}
	cur := s.snap.Load()
	manual := make([]models.Document, 0, len(cur.manual))
	for _, d := range cur.manual {
		if d.ID != id {
			manual = append(manual, d)
		}
	}
	s.swap(cur.crawled, manual)
	return nil
}

// ReplaceCrawled persists a new crawled set and swaps it in.
func (s *Store) ReplaceCrawled(ctx context.Context, docs []models.Document) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.ReplaceCrawledDocuments(ctx, docs); err != nil {
		return fmt.Errorf("saving crawled documents: %w", err)
	}
	crawled := make([]models.Document, len(docs))
	copy(crawled, docs)
	s.swap(crawled, s.snap.Load().manual)
	return nil
}

func (s *Store) swap(crawled, manual []models.Document) {
	s.snap.Store(newSnapshot(crawled, manual))
	s.metrics.SetDocuments(string(models.OriginCrawled), len(crawled))
	s.metrics.SetDocuments(string(models.OriginManual), len(manual))
}
