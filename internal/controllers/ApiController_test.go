package controllers

import (
	"bibled/internal/models"
	"bibled/internal/services"
	"bibled/internal/structures"
	"bibled/internal/testutil"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	ctrl    *ApiController
	fetcher *testutil.FakeFetcher
	store   *testutil.MemoryEntityStore
	cache   *testutil.MockCache
	clock   *testutil.FakeClock
}

func newFixture(t *testing.T) *controllerFixture {
	t.Helper()
	conf := &structures.Config{
		Provider: structures.ProviderConfig{DefaultTranslation: "KJV"},
		Search:   structures.SearchConfig{MaxResults: 50},
	}
	logger := &testutil.MockLogger{}
	clock := testutil.NewFakeClock(time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC))

	fetcher := testutil.NewFakeFetcher(models.Book{ID: "JHN", Name: "John", NumberOfChapters: 21})
	fetcher.AddChapter("JHN", 1, "In the beginning was the Word, and the Word was with God.")
	fetcher.AddChapter("JHN", 10, "I am the good shepherd.")

	store := testutil.NewMemoryEntityStore()
	cache := testutil.NewMockCache()
	streaks := services.NewStreakService(conf, clock, logger)
	journal := services.NewJournalService(store, store, streaks, clock, logger)
	search := services.NewSearchService(conf, fetcher, logger, &testutil.MockMetrics{})

	return &controllerFixture{
		ctrl:    NewApiController(conf, logger, search, fetcher, journal, cache),
		fetcher: fetcher,
		store:   store,
		cache:   cache,
		clock:   clock,
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// --- Search ---

func TestSearch_Success(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"beginning word"}`))
	rec := httptest.NewRecorder()

	f.ctrl.Search(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp struct {
		Results []models.SearchResult `json:"results"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "John 1:1", resp.Results[0].Reference)
	assert.Equal(t, 2, resp.Results[0].Score)
}

func TestSearch_NoMatchesIsEmptyArray(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"zzzz"}`))
	rec := httptest.NewRecorder()

	f.ctrl.Search(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestSearch_ShortQuery(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"a"}`))
	rec := httptest.NewRecorder()

	f.ctrl.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.fetcher.ChapterCalls)
}

func TestSearch_InvalidJSON(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{bad`))
	rec := httptest.NewRecorder()

	f.ctrl.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_BodyTooLarge(t *testing.T) {
	f := newFixture(t)
	body := `{"query":"` + strings.Repeat("x", maxRequestBodySize+1) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	rec := httptest.NewRecorder()

	f.ctrl.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_UpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.fetcher.BooksErr = &services.FetchError{URL: "http://upstream/KJV/books.json", Status: http.StatusServiceUnavailable}
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"shepherd"}`))
	rec := httptest.NewRecorder()

	f.ctrl.Search(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp errorResponse
	decode(t, rec, &resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
}

func TestSearch_UsesRequestedTranslation(t *testing.T) {
	f := newFixture(t)
	var seen []string
	f.fetcher.OnChapter = func(bookID string, chapter int) { seen = append(seen, bookID) }
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"shepherd","translation":"BSB"}`))
	rec := httptest.NewRecorder()

	f.ctrl.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Results []models.SearchResult `json:"results"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "John 10:1", resp.Results[0].Reference)
	assert.NotEmpty(t, seen)
}

func TestSearch_ClientCancelWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.fetcher.OnChapter = func(string, int) { cancel() }
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"beginning"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()

	f.ctrl.Search(rec, req)

	assert.Empty(t, rec.Body.String())
}

func TestSearch_DeadlineReturnsPartialResults(t *testing.T) {
	f := newFixture(t)
	f.ctrl.searchTimeout = 20 * time.Millisecond
	f.fetcher.OnChapter = func(string, int) { time.Sleep(40 * time.Millisecond) }
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"beginning"}`))
	rec := httptest.NewRecorder()

	f.ctrl.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Results []models.SearchResult `json:"results"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "John 1:1", resp.Results[0].Reference)
	assert.Len(t, f.fetcher.ChapterCalls, 1, "scan stops at the deadline")
}

func TestSearch_DeadlineBeforeBookListIsUpstreamError(t *testing.T) {
	f := newFixture(t)
	f.fetcher.BooksErr = &services.FetchError{URL: "http://upstream", Err: context.DeadlineExceeded}
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"beginning"}`))
	rec := httptest.NewRecorder()

	f.ctrl.Search(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// --- Content ---

func TestGetBooks(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()

	f.ctrl.GetBooks(rec, httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp translationResponse
	decode(t, rec, &resp)
	assert.Equal(t, "KJV", resp.ID)
	assert.Len(t, resp.Books, 1)
	assert.Len(t, resp.OldTestament, 1)
	assert.Empty(t, resp.NewTestament)
}

func TestGetBooks_ParseError(t *testing.T) {
	f := newFixture(t)
	f.fetcher.BooksErr = &services.ParseError{URL: "http://upstream", Err: errors.New("bad json")}
	rec := httptest.NewRecorder()

	f.ctrl.GetBooks(rec, httptest.NewRequest(http.MethodGet, "/books?translation=BSB", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetChapter(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()

	f.ctrl.GetChapter(rec, httptest.NewRequest(http.MethodGet, "/chapter?book=JHN&chapter=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var doc models.ChapterDocument
	decode(t, rec, &doc)
	assert.Equal(t, "KJV", doc.TranslationID)
	require.Len(t, doc.Verses(), 1)
	assert.Equal(t, "I am the good shepherd.", doc.Verses()[0].Text())
}

func TestGetChapter_BadParams(t *testing.T) {
	f := newFixture(t)
	for _, q := range []string{"", "?book=JHN", "?book=JHN&chapter=0", "?book=JHN&chapter=x", "?chapter=3"} {
		rec := httptest.NewRecorder()
		f.ctrl.GetChapter(rec, httptest.NewRequest(http.MethodGet, "/chapter"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestGetChapter_UpstreamStatus(t *testing.T) {
	f := newFixture(t)
	f.fetcher.ChapterErrs[testutil.ChapterKey("JHN", 99)] = &services.FetchError{URL: "http://upstream", Status: http.StatusNotFound}
	rec := httptest.NewRecorder()

	f.ctrl.GetChapter(rec, httptest.NewRequest(http.MethodGet, "/chapter?book=JHN&chapter=99", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"content provider request failed","status":404}`, rec.Body.String())
}

func TestGetChapter_UnexpectedError(t *testing.T) {
	f := newFixture(t)
	f.fetcher.ChapterErrs[testutil.ChapterKey("JHN", 2)] = errors.New("boom")
	rec := httptest.NewRecorder()

	f.ctrl.GetChapter(rec, httptest.NewRequest(http.MethodGet, "/chapter?book=JHN&chapter=2", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// --- Journal ---

func postJournal(f *controllerFixture, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.ctrl.SaveJournal(rec, httptest.NewRequest(http.MethodPost, "/journal", strings.NewReader(body)))
	return rec
}

func TestSaveJournal_Created(t *testing.T) {
	f := newFixture(t)

	rec := postJournal(f, `{"user_id":"u1","content":"Grateful today","reference":"John 10:11"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Entry   models.JournalEntry `json:"entry"`
		Profile models.Profile      `json:"profile"`
	}
	decode(t, rec, &resp)
	assert.NotEqual(t, uuid.Nil, resp.Entry.ID)
	assert.Equal(t, models.EntryKindJournal, resp.Entry.Kind)
	assert.Equal(t, 1, resp.Profile.CurrentStreak)
	assert.Equal(t, "2025-01-05", resp.Profile.LastEntryDate)
}

func TestSaveJournal_StreakAcrossDays(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusCreated, postJournal(f, `{"user_id":"u1","kind":"mood","mood":"calm"}`).Code)
	f.clock.Advance(24 * time.Hour)
	rec := postJournal(f, `{"user_id":"u1","content":"day two"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp journalResponse
	decode(t, rec, &resp)
	assert.Equal(t, 2, resp.Profile.CurrentStreak)
	assert.Equal(t, 2, resp.Profile.TotalEntries)
}

func TestSaveJournal_Invalid(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{
		`{bad`,
		`{"content":"no user"}`,
		`{"user_id":"u1"}`,
		`{"user_id":"u1","kind":"mood"}`,
		`{"user_id":"u1","kind":"poem","content":"x"}`,
	} {
		assert.Equal(t, http.StatusBadRequest, postJournal(f, body).Code, body)
	}
	assert.Empty(t, f.store.Entries)
}

func TestSaveJournal_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.SaveErr = errors.New("disk full")

	assert.Equal(t, http.StatusInternalServerError, postJournal(f, `{"user_id":"u1","content":"x"}`).Code)
}

func TestListJournal(t *testing.T) {
	f := newFixture(t)
	postJournal(f, `{"user_id":"u1","content":"first"}`)
	f.clock.Advance(time.Minute)
	postJournal(f, `{"user_id":"u1","kind":"mood","mood":"joyful"}`)

	rec := httptest.NewRecorder()
	f.ctrl.ListJournal(rec, httptest.NewRequest(http.MethodGet, "/journal?user=u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.JournalEntry
	decode(t, rec, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "joyful", entries[0].Mood)

	rec = httptest.NewRecorder()
	f.ctrl.ListJournal(rec, httptest.NewRequest(http.MethodGet, "/journal?user=u1&kind=journal", nil))
	decode(t, rec, &entries)
	assert.Len(t, entries, 1)

	rec = httptest.NewRecorder()
	f.ctrl.ListJournal(rec, httptest.NewRequest(http.MethodGet, "/journal?user=u1&kind=poem", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	f.ctrl.ListJournal(rec, httptest.NewRequest(http.MethodGet, "/journal", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteJournal(t *testing.T) {
	f := newFixture(t)
	var resp journalResponse
	decode(t, postJournal(f, `{"user_id":"u1","content":"to delete"}`), &resp)
	target := fmt.Sprintf("/journal?user=u1&id=%s", resp.Entry.ID)

	rec := httptest.NewRecorder()
	f.ctrl.DeleteJournal(rec, httptest.NewRequest(http.MethodDelete, target, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	f.ctrl.DeleteJournal(rec, httptest.NewRequest(http.MethodDelete, target, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	f.ctrl.DeleteJournal(rec, httptest.NewRequest(http.MethodDelete, "/journal?user=u1&id=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Profile ---

func TestGetProfile_BrokenStreakShownAsZero(t *testing.T) {
	f := newFixture(t)
	postJournal(f, `{"user_id":"u1","content":"x"}`)
	f.clock.Advance(3 * 24 * time.Hour)

	rec := httptest.NewRecorder()
	f.ctrl.GetProfile(rec, httptest.NewRequest(http.MethodGet, "/profile?user=u1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var p models.Profile
	decode(t, rec, &p)
	assert.Zero(t, p.CurrentStreak)
	assert.Equal(t, 1, p.LongestStreak)
	assert.Equal(t, 1, f.store.Profiles["u1"].CurrentStreak, "stored streak is untouched")
}

func TestGetProfile_MissingUser(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.ctrl.GetProfile(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetStreak(t *testing.T) {
	f := newFixture(t)
	postJournal(f, `{"user_id":"u1","content":"x"}`)

	rec := httptest.NewRecorder()
	f.ctrl.ResetStreak(rec, httptest.NewRequest(http.MethodDelete, "/streak?user=u1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var p models.Profile
	decode(t, rec, &p)
	assert.Zero(t, p.CurrentStreak)
	assert.Equal(t, 1, p.LongestStreak)
	assert.Empty(t, p.LastEntryDate)
}

// --- Cache ---

func TestClearCache(t *testing.T) {
	f := newFixture(t)
	f.cache.Set("KJV:books", []byte(`[]`))
	f.cache.Set("KJV:JHN:1", []byte(`{}`))
	f.cache.Set("BSB:books", []byte(`[]`))

	rec := httptest.NewRecorder()
	f.ctrl.ClearCache(rec, httptest.NewRequest(http.MethodDelete, "/cache?prefix=KJV:", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":2}`, rec.Body.String())
	assert.Len(t, f.cache.Data, 1)
}
