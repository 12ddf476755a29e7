package services

import (
	"bibled/internal/models"
	"bibled/internal/providers"
	"bibled/internal/structures"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const maxResponseBodySize = 8 << 20 // 8 MB

type ContentFetcherInterface interface {
	GetBooks(ctx context.Context, translationID string) ([]models.Book, error)
	GetChapter(ctx context.Context, translationID, bookID string, chapter int) (*models.ChapterDocument, error)
	GetTranslation(ctx context.Context, translationID string) (*models.Translation, error)
}

type maxAgeKey struct{}

// WithMaxAge overrides the cache max age for fetches made with the returned context.
func WithMaxAge(ctx context.Context, maxAge time.Duration) context.Context {
	return context.WithValue(ctx, maxAgeKey{}, maxAge)
}

type ContentFetcher struct {
	client  *http.Client
	baseURL string
	apiKey  string
	maxAge  time.Duration
	cache   providers.CacheStoreInterface
	logger  providers.Logger
}

func NewContentFetcher(conf *structures.Config, cache providers.CacheStoreInterface, logger providers.Logger) ContentFetcherInterface {
	return &ContentFetcher{
		client:  &http.Client{Timeout: conf.Provider.Timeout},
		baseURL: strings.TrimRight(conf.Provider.BaseURL, "/"),
		apiKey:  conf.Provider.APIKey,
		maxAge:  conf.Provider.CacheMaxAge,
		cache:   cache,
		logger:  logger,
	}
}

func BooksCacheKey(translationID string) string {
	return translationID + ":books"
}

func ChapterCacheKey(translationID, bookID string, chapter int) string {
	return translationID + ":" + bookID + ":" + strconv.Itoa(chapter)
}

type booksResponse struct {
	Books []models.Book `json:"books"`
}

type chapterResponse struct {
	Chapter *struct {
		Number  int                  `json:"number"`
		Content []models.ContentItem `json:"content"`
	} `json:"chapter"`
}

func (cf *ContentFetcher) GetBooks(ctx context.Context, translationID string) ([]models.Book, error) {
	key := BooksCacheKey(translationID)

	var books []models.Book
	if cf.fromCache(ctx, key, &books) {
		return books, nil
	}

	endpoint := cf.endpoint(translationID, "books.json")
	body, err := cf.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp booksResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{URL: endpoint, Err: err}
	}
	if resp.Books == nil {
		return nil, &ParseError{URL: endpoint, Err: errors.New(`missing "books" field`)}
	}

	cf.toCache(key, resp.Books)
	return resp.Books, nil
}

func (cf *ContentFetcher) GetChapter(ctx context.Context, translationID, bookID string, chapter int) (*models.ChapterDocument, error) {
	key := ChapterCacheKey(translationID, bookID, chapter)

	var doc models.ChapterDocument
	if cf.fromCache(ctx, key, &doc) {
		return &doc, nil
	}

	endpoint := cf.endpoint(translationID, bookID, strconv.Itoa(chapter)+".json")
	body, err := cf.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp chapterResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{URL: endpoint, Err: err}
	}
	if resp.Chapter == nil {
		return nil, &ParseError{URL: endpoint, Err: errors.New(`missing "chapter" field`)}
	}

	doc = models.ChapterDocument{
		TranslationID: translationID,
		BookID:        bookID,
		Number:        chapter,
		Content:       resp.Chapter.Content,
	}
	if doc.Content == nil {
		doc.Content = []models.ContentItem{}
	}

	cf.toCache(key, &doc)
	return &doc, nil
}

func (cf *ContentFetcher) GetTranslation(ctx context.Context, translationID string) (*models.Translation, error) {
	books, err := cf.GetBooks(ctx, translationID)
	if err != nil {
		return nil, err
	}
	return &models.Translation{ID: translationID, Books: books}, nil
}

func (cf *ContentFetcher) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return cf.baseURL + "/" + strings.Join(escaped, "/")
}

func (cf *ContentFetcher) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if cf.apiKey != "" {
		req.Header.Set("api-key", cf.apiKey)
	}

	resp, err := cf.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
		return nil, &FetchError{URL: endpoint, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, &FetchError{URL: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func (cf *ContentFetcher) maxAgeFor(ctx context.Context) time.Duration {
	if d, ok := ctx.Value(maxAgeKey{}).(time.Duration); ok {
		return d
	}
	return cf.maxAge
}

func (cf *ContentFetcher) fromCache(ctx context.Context, key string, dest any) bool {
	data, ok := cf.cache.Get(key, cf.maxAgeFor(ctx))
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		cf.logger.Warnf(providers.TypeApp, "Discarding undecodable cache entry %s: %s", key, err)
		return false
	}
	return true
}

func (cf *ContentFetcher) toCache(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		cf.logger.Warnf(providers.TypeApp, "%s: encode %s: %s", providers.ErrCacheUnavailable, key, err)
		return
	}
	cf.cache.Set(key, data)
}
