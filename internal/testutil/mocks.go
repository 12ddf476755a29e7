package testutil

import (
	"bibled/internal/models"
	"bibled/internal/providers"
	"bibled/internal/storage"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns the number of recorded entries at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface with counters.
type MockMetrics struct {
	mu                   sync.Mutex
	Requests             map[string]int
	CacheHits            int
	CacheMisses          int
	PersistenceCalls     int
	ChaptersScanned      int
	ChapterFetchFailures int
	SearchResults        []int
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Requests == nil {
		m.Requests = make(map[string]int)
	}
	m.Requests[fmt.Sprintf("%s %d", endpoint, status)]++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceCalls++
}
func (m *MockMetrics) IncChaptersScanned() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChaptersScanned++
}
func (m *MockMetrics) IncChapterFetchFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChapterFetchFailures++
}
func (m *MockMetrics) ObserveSearchResults(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchResults = append(m.SearchResults, count)
}

// FakeClock is a settable providers.Clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockCache implements providers.CacheStoreInterface without expiry.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
	Gets int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string, _ time.Duration) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.Data {
		if strings.HasPrefix(k, prefix) {
			delete(m.Data, k)
			n++
		}
	}
	return n
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {
	m.Closed = true
}

// FakeFetcher implements services.ContentFetcherInterface from in-memory fixtures.
// Chapters are keyed by "book:chapter".
type FakeFetcher struct {
	mu           sync.Mutex
	Books        []models.Book
	BooksErr     error
	Chapters     map[string]*models.ChapterDocument
	ChapterErrs  map[string]error
	BookCalls    int
	ChapterCalls []string
	// OnChapter runs before each chapter lookup.
	OnChapter func(bookID string, chapter int)
}

func NewFakeFetcher(books ...models.Book) *FakeFetcher {
	return &FakeFetcher{
		Books:       books,
		Chapters:    make(map[string]*models.ChapterDocument),
		ChapterErrs: make(map[string]error),
	}
}

func ChapterKey(bookID string, chapter int) string {
	return fmt.Sprintf("%s:%d", bookID, chapter)
}

// AddChapter registers a chapter whose verses are numbered from 1 in order.
func (f *FakeFetcher) AddChapter(bookID string, chapter int, verses ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content := make([]models.ContentItem, 0, len(verses)+1)
	content = append(content, models.ContentItem{Type: "heading", Content: []byte(`["Heading"]`)})
	for i, v := range verses {
		raw := fmt.Sprintf("[%q]", v)
		content = append(content, models.ContentItem{Type: models.ContentTypeVerse, Number: i + 1, Content: []byte(raw)})
	}
	f.Chapters[ChapterKey(bookID, chapter)] = &models.ChapterDocument{BookID: bookID, Number: chapter, Content: content}
}

func (f *FakeFetcher) GetBooks(_ context.Context, _ string) ([]models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BookCalls++
	if f.BooksErr != nil {
		return nil, f.BooksErr
	}
	return f.Books, nil
}

func (f *FakeFetcher) GetChapter(_ context.Context, translationID, bookID string, chapter int) (*models.ChapterDocument, error) {
	if f.OnChapter != nil {
		f.OnChapter(bookID, chapter)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ChapterKey(bookID, chapter)
	f.ChapterCalls = append(f.ChapterCalls, key)
	if err, ok := f.ChapterErrs[key]; ok {
		return nil, err
	}
	doc, ok := f.Chapters[key]
	if !ok {
		return &models.ChapterDocument{TranslationID: translationID, BookID: bookID, Number: chapter, Content: []models.ContentItem{}}, nil
	}
	doc.TranslationID = translationID
	return doc, nil
}

func (f *FakeFetcher) GetTranslation(ctx context.Context, translationID string) (*models.Translation, error) {
	books, err := f.GetBooks(ctx, translationID)
	if err != nil {
		return nil, err
	}
	return &models.Translation{ID: translationID, Books: books}, nil
}

// MemoryEntityStore implements the profile and journal store interfaces in memory.
type MemoryEntityStore struct {
	mu       sync.Mutex
	Profiles map[string]models.Profile
	Entries  []models.JournalEntry
	SaveErr  error
	Saves    int
}

func NewMemoryEntityStore() *MemoryEntityStore {
	return &MemoryEntityStore{Profiles: make(map[string]models.Profile)}
}

func (s *MemoryEntityStore) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Profiles[userID]
	if !ok {
		return &models.Profile{UserID: userID}, nil
	}
	return &p, nil
}

func (s *MemoryEntityStore) SaveProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saves++
	s.Profiles[p.UserID] = *p
	return nil
}

func (s *MemoryEntityStore) CreateEntry(_ context.Context, e *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	s.Entries = append(s.Entries, *e)
	return nil
}

func (s *MemoryEntityStore) SaveEntryWithProfile(_ context.Context, e *models.JournalEntry, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	s.Entries = append(s.Entries, *e)
	s.Saves++
	s.Profiles[p.UserID] = *p
	return nil
}

func (s *MemoryEntityStore) ListEntries(_ context.Context, userID, kind string) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.JournalEntry{}
	for _, e := range s.Entries {
		if e.UserID == userID && (kind == "" || e.Kind == kind) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryEntityStore) DeleteEntry(_ context.Context, userID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.Entries {
		if e.UserID == userID && e.ID == id {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
			return nil
		}
	}
	return storage.ErrEntryNotFound
}
