package services

import (
	"bibled/internal/models"
	"bibled/internal/providers"
	"bibled/internal/structures"
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMaxResults = 50
	minQueryLength    = 2
	// query tokens of this length or shorter are ignored
	minTokenLength = 2
)

type SearchServiceInterface interface {
	Search(ctx context.Context, query, translationID string) ([]models.SearchResult, error)
}

// SearchService answers free-text queries by scanning a fixed sample of
// chapters per book instead of the whole corpus. Books are visited in catalog
// order and scanning stops once maxResults matches are collected, so results
// favour earlier books before the final sort by score.
type SearchService struct {
	fetcher    ContentFetcherInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	maxResults int
}

func NewSearchService(conf *structures.Config, fetcher ContentFetcherInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) SearchServiceInterface {
	// never more than DefaultMaxResults, whatever the config says
	maxResults := min(conf.Search.MaxResults, DefaultMaxResults)
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &SearchService{
		fetcher:    fetcher,
		logger:     logger,
		metrics:    metrics,
		maxResults: maxResults,
	}
}

// Search returns at most maxResults verses matching any query token, sorted by
// descending score. When ctx is cancelled mid-scan the matches found so far are
// returned together with the context error.
func (ss *SearchService) Search(ctx context.Context, query, translationID string) ([]models.SearchResult, error) {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < minQueryLength {
		return nil, ErrInvalidQuery
	}

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		// only short words: nothing can match
		ss.metrics.ObserveSearchResults(0)
		return []models.SearchResult{}, nil
	}

	books, err := ss.fetcher.GetBooks(ctx, translationID)
	if err != nil {
		return nil, fmt.Errorf("load book list for %s: %w", translationID, err)
	}

	results := make([]models.SearchResult, 0, ss.maxResults)

	var scanErr error
scan:
	for _, book := range books {
		for _, chapter := range SampleChapters(book.NumberOfChapters) {
			if err := ctx.Err(); err != nil {
				scanErr = err
				break scan
			}

			doc, err := ss.fetcher.GetChapter(ctx, translationID, book.ID, chapter)
			if err != nil {
				ss.metrics.IncChapterFetchFailures()
				ss.logger.Debugf(providers.TypeApp, "Search skipped %s %s %d: %s", translationID, book.ID, chapter, err)
				continue
			}
			ss.metrics.IncChaptersScanned()

			results = ss.matchChapter(results, book, doc, tokens)
			if len(results) >= ss.maxResults {
				break scan
			}
		}
	}

	SortByScore(results)
	ss.metrics.ObserveSearchResults(len(results))
	return results, scanErr
}

func (ss *SearchService) matchChapter(results []models.SearchResult, book models.Book, doc *models.ChapterDocument, tokens []string) []models.SearchResult {
	for _, verse := range doc.Verses() {
		text := verse.Text()
		score := Score(strings.ToLower(text), tokens)
		if score == 0 {
			continue
		}
		results = append(results, models.SearchResult{
			BookName:  book.Name,
			BookID:    book.ID,
			Chapter:   doc.Number,
			Verse:     verse.Number,
			Reference: models.Reference(book.Name, doc.Number, verse.Number),
			Text:      text,
			Score:     score,
		})
		if len(results) >= ss.maxResults {
			break
		}
	}
	return results
}

// SampleChapters returns {1, n/2, n} with duplicates and values below 1
// removed, keeping first-occurrence order.
func SampleChapters(chapterCount int) []int {
	candidates := [3]int{1, chapterCount / 2, chapterCount}
	sample := make([]int, 0, len(candidates))
	for _, c := range candidates {
		if c < 1 {
			continue
		}
		dup := false
		for _, s := range sample {
			if s == c {
				dup = true
				break
			}
		}
		if !dup {
			sample = append(sample, c)
		}
	}
	return sample
}

// Tokenize lowercases the query, splits it on whitespace and drops tokens of
// two characters or fewer. Duplicate tokens are kept once.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	tokens := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= minTokenLength {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// Score counts the distinct tokens contained in text as substrings.
// text is expected to be lowercase already.
func Score(text string, tokens []string) int {
	score := 0
	for _, t := range tokens {
		if strings.Contains(text, t) {
			score++
		}
	}
	return score
}

func SortByScore(results []models.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
