package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/wbscout/wbscout/internal/domain"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	Limit int
	// Delay is the minimum spacing between two outbound searches
	Delay time.Duration
}

// SearchService runs the fetch -> render -> write pipeline for one query
type SearchService struct {
	client   domain.SearchClient
	renderer domain.PageRenderer
	writer   domain.PageWriter
	limiter  *rate.Limiter
	limit    int
}

// SearchOutcome is what one query produced
type SearchOutcome struct {
	Query  string
	Result *domain.SearchResult
	Page   *domain.RenderedPage
	Path   string
}

// NewSearchService creates a new search service with dependencies.
// writer may be nil when pages are only served, never saved.
func NewSearchService(
	client domain.SearchClient,
	renderer domain.PageRenderer,
	writer domain.PageWriter,
	config SearchServiceConfig,
) *SearchService {
	limit := config.Limit
	if limit <= 0 {
		limit = 50
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(config.Delay), 1)
	}

	return &SearchService{
		client:   client,
		renderer: renderer,
		writer:   writer,
		limiter:  limiter,
		limit:    limit,
	}
}

// Limit returns the default number of products requested per query
func (s *SearchService) Limit() int {
	return s.limit
}

// Fetch runs one search and never fails: transport, status and decoding
// errors are logged and produce an empty, unfetched result.
func (s *SearchService) Fetch(ctx context.Context, query string, limit int) *domain.SearchResult {
	log := zerolog.Ctx(ctx)
	if limit <= 0 {
		limit = s.limit
	}

	result, err := s.client.SearchProducts(ctx, query, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDecodeResponse):
			log.Error().Err(err).Str("query", query).Msg("Error parsing JSON response")
		case errors.Is(err, domain.ErrUnexpectedShape):
			log.Error().Err(err).Str("query", query).Msg("Search response has an unexpected shape")
		default:
			log.Error().Err(err).Str("query", query).Msg("Error fetching data")
		}
		return &domain.SearchResult{Query: query}
	}
	if result == nil {
		return &domain.SearchResult{Query: query}
	}

	return result
}

// Render renders the records of a result. Records that fail to decode are logged and skipped.
func (s *SearchService) Render(ctx context.Context, result *domain.SearchResult) (*domain.RenderedPage, error) {
	log := zerolog.Ctx(ctx)

	page, err := s.renderer.Render(result.Records, result.Query)
	if err != nil {
		return nil, err
	}

	for _, failure := range page.Failures {
		log.Warn().Err(failure.Err).Int("index", failure.Index).Msg("Error processing product")
	}
	log.Debug().
		Int("records", result.Len()).
		Int("cards", page.Cards).
		Int("skipped", len(page.Failures)).
		Msg("Rendered results page")

	return page, nil
}

// Search waits for the courtesy delay, fetches the normalized query and renders
// the page under the query as typed. A context cancelled during the fetch is
// returned as an error so an interrupted search never produces a page.
func (s *SearchService) Search(ctx context.Context, query string, limit int) (*SearchOutcome, error) {
	literal := strings.TrimSpace(query)
	normalized := NormalizeQuery(literal)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidRequest)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("courtesy delay interrupted: %w", err)
	}

	result := s.Fetch(ctx, normalized, limit)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search interrupted: %w", err)
	}
	result.Query = literal

	page, err := s.Render(ctx, result)
	if err != nil {
		return nil, err
	}

	return &SearchOutcome{
		Query:  literal,
		Result: result,
		Page:   page,
	}, nil
}

// SearchAndSave runs Search and writes the page. The outcome is returned even
// when the write fails so the caller can still report what was found.
func (s *SearchService) SearchAndSave(ctx context.Context, query string) (*SearchOutcome, error) {
	outcome, err := s.Search(ctx, query, s.limit)
	if err != nil {
		return nil, err
	}
	if s.writer == nil {
		return outcome, errors.New("no page writer configured")
	}

	if err := s.writer.WritePage(outcome.Page); err != nil {
		return outcome, err
	}
	outcome.Path = s.writer.Path()

	zerolog.Ctx(ctx).Info().
		Str("query", outcome.Query).
		Int("cards", outcome.Page.Cards).
		Str("path", outcome.Path).
		Msg("Results saved")

	return outcome, nil
}
