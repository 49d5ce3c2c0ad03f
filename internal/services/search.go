package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/repository"
	"github.com/scripture-analysis-api/internal/texthash"
	pkgservices "github.com/scripture-analysis-api/pkg/platform/services"
)

// SearchService handles keyword search (cached permanently by query
// digest) and semantic search over verse embeddings.
type SearchService struct {
	verseRepo      repository.VerseSearchRepository
	cacheRepo      repository.SearchCacheRepository
	vectorRepo     repository.VectorSearchRepository
	embeddingsSvc  *pkgservices.EmbeddingsService
	samplesPerBook int
}

// NewSearchService creates a new search service
func NewSearchService(
	verseRepo repository.VerseSearchRepository,
	cacheRepo repository.SearchCacheRepository,
	vectorRepo repository.VectorSearchRepository,
	embeddingsSvc *pkgservices.EmbeddingsService,
	samplesPerBook int,
) *SearchService {
	return &SearchService{
		verseRepo:      verseRepo,
		cacheRepo:      cacheRepo,
		vectorRepo:     vectorRepo,
		embeddingsSvc:  embeddingsSvc,
		samplesPerBook: samplesPerBook,
	}
}

// SearchGrouped performs keyword search grouped by book, caching results
// by the digest of the normalized query. The corpus never changes, so a
// cached result is good forever. A cache failure degrades to a live
// search rather than an error.
func (s *SearchService) SearchGrouped(ctx context.Context, query string) (*models.GroupedSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	queryHash := texthash.Sum(strings.ToLower(query))

	cached, err := s.cacheRepo.Get(ctx, queryHash)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Printf("search: cache lookup failed: %v", err)
	}

	groups, err := s.verseRepo.SearchGroupedByBook(ctx, query, s.samplesPerBook)
	if err != nil {
		return nil, fmt.Errorf("search verses: %w", err)
	}

	total := 0
	for _, g := range groups {
		total += g.VerseCount
	}
	result := &models.GroupedSearchResult{
		Query:       query,
		BookGroups:  groups,
		TotalBooks:  len(groups),
		TotalVerses: total,
	}

	if err := s.cacheRepo.Put(ctx, queryHash, query, result); err != nil {
		log.Printf("search: cache store failed: %v", err)
	}
	return result, nil
}

// SearchSemantic embeds a query and performs vector search over verses.
func (s *SearchService) SearchSemantic(ctx context.Context, query string, topK int) ([]models.ScoredVerse, error) {
	if s.vectorRepo == nil || s.embeddingsSvc == nil {
		return nil, fmt.Errorf("semantic search is not configured")
	}
	embedding, err := s.embeddingsSvc.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.vectorRepo.SearchVersesByEmbedding(ctx, embedding, topK)
}
