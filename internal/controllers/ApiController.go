package controllers

import (
	"bibled/internal/models"
	"bibled/internal/providers"
	"bibled/internal/services"
	"bibled/internal/storage"
	"bibled/internal/structures"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger             providers.Logger
	search             services.SearchServiceInterface
	fetcher            services.ContentFetcherInterface
	journal            services.JournalServiceInterface
	cache              providers.CacheStoreInterface
	defaultTranslation string
	searchTimeout      time.Duration
}

func NewApiController(conf *structures.Config, logger providers.Logger, search services.SearchServiceInterface, fetcher services.ContentFetcherInterface, journal services.JournalServiceInterface, cache providers.CacheStoreInterface) *ApiController {
	return &ApiController{
		logger:             logger,
		search:             search,
		fetcher:            fetcher,
		journal:            journal,
		cache:              cache,
		defaultTranslation: conf.Provider.DefaultTranslation,
		searchTimeout:      conf.Search.Timeout,
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

type searchRequest struct {
	Query       string `json:"query"`
	Translation string `json:"translation"`
}

type searchResponse struct {
	Results []models.SearchResult `json:"results"`
}

type journalResponse struct {
	Entry   *models.JournalEntry `json:"entry"`
	Profile *models.Profile      `json:"profile"`
}

type translationResponse struct {
	ID           string        `json:"id"`
	Books        []models.Book `json:"books"`
	OldTestament []models.Book `json:"old_testament"`
	NewTestament []models.Book `json:"new_testament"`
}

type clearResponse struct {
	Removed int `json:"removed"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (ac *ApiController) translation(value string) string {
	if value == "" {
		return ac.defaultTranslation
	}
	return value
}

// writeUpstreamError maps provider failures to 502 and surfaces the upstream status.
func (ac *ApiController) writeUpstreamError(w http.ResponseWriter, err error) {
	var fetchErr *services.FetchError
	if errors.As(err, &fetchErr) {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "content provider request failed", Status: fetchErr.Status})
		return
	}
	var parseErr *services.ParseError
	if errors.As(err, &parseErr) {
		writeError(w, http.StatusBadGateway, "content provider returned malformed data")
		return
	}
	ac.logger.Errorf(providers.TypeApp, "Unexpected error: %s", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func (ac *ApiController) Search(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload searchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	ctx := r.Context()
	if ac.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ac.searchTimeout)
		defer cancel()
	}

	results, err := ac.search.Search(ctx, payload.Query, ac.translation(payload.Translation))
	if err != nil {
		if errors.Is(err, services.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			ac.logger.Debugf(providers.TypeApp, "Search cancelled by client after %d results", len(results))
			return
		}
		// deadline hit mid-scan: serve what was found
		if results != nil && errors.Is(err, context.DeadlineExceeded) {
			ac.logger.Infof(providers.TypeApp, "Search %q stopped after %s with %d results", payload.Query, ac.searchTimeout, len(results))
			writeJSON(w, http.StatusOK, searchResponse{Results: results})
			return
		}
		ac.logger.Warnf(providers.TypeApp, "Search %q failed: %s", payload.Query, err)
		ac.writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (ac *ApiController) GetBooks(w http.ResponseWriter, r *http.Request) {
	translation, err := ac.fetcher.GetTranslation(r.Context(), ac.translation(r.URL.Query().Get("translation")))
	if err != nil {
		ac.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, translationResponse{
		ID:           translation.ID,
		Books:        translation.Books,
		OldTestament: translation.OldTestament(),
		NewTestament: translation.NewTestament(),
	})
}

func (ac *ApiController) GetChapter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	book := q.Get("book")
	chapter, err := strconv.Atoi(q.Get("chapter"))
	if book == "" || err != nil || chapter < 1 {
		writeError(w, http.StatusBadRequest, "book and a positive chapter are required")
		return
	}

	doc, err := ac.fetcher.GetChapter(r.Context(), ac.translation(q.Get("translation")), book, chapter)
	if err != nil {
		ac.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (ac *ApiController) SaveJournal(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var entry models.JournalEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	profile, err := ac.journal.SaveEntry(r.Context(), &entry)
	if err != nil {
		if errors.Is(err, services.ErrInvalidEntry) || errors.Is(err, services.ErrMissingUser) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ac.logger.Errorf(providers.TypeApp, "Save entry failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusCreated, journalResponse{Entry: &entry, Profile: profile})
}

func (ac *ApiController) ListJournal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := ac.journal.ListEntries(r.Context(), q.Get("user"), q.Get("kind"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidEntry) || errors.Is(err, services.ErrMissingUser) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ac.logger.Errorf(providers.TypeApp, "List entries failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (ac *ApiController) DeleteJournal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := uuid.Parse(q.Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	if err = ac.journal.DeleteEntry(r.Context(), q.Get("user"), id); err != nil {
		switch {
		case errors.Is(err, services.ErrMissingUser):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrEntryNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			ac.logger.Errorf(providers.TypeApp, "Delete entry failed: %s", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := ac.journal.GetProfile(r.Context(), r.URL.Query().Get("user"))
	if err != nil {
		if errors.Is(err, services.ErrMissingUser) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ac.logger.Errorf(providers.TypeApp, "Load profile failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (ac *ApiController) ResetStreak(w http.ResponseWriter, r *http.Request) {
	profile, err := ac.journal.ResetStreak(r.Context(), r.URL.Query().Get("user"))
	if err != nil {
		if errors.Is(err, services.ErrMissingUser) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ac.logger.Errorf(providers.TypeApp, "Reset streak failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (ac *ApiController) ClearCache(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	removed := ac.cache.Clear(prefix)
	ac.logger.Infof(providers.TypeApp, "Cleared %d cache entries with prefix %q", removed, prefix)
	writeJSON(w, http.StatusOK, clearResponse{Removed: removed})
}
