package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rxcart/rxcart/internal/api/dto"
	"github.com/rxcart/rxcart/internal/config"
	"github.com/rxcart/rxcart/internal/domain/catalog"
	"github.com/rxcart/rxcart/internal/logger"
)

// SearchSink receives the results of dispatched catalog searches. Results of
// superseded generations are never delivered.
type SearchSink func(result dto.SearchResponse)

// CatalogSearchService is the debounced, cancellable catalog lookup. Each
// call supersedes the previous one: only the call still outstanding after the
// debounce interval of caller inactivity is dispatched, and an in-flight
// response that resolves after being superseded is discarded. Every call
// carries a monotonically increasing generation; only the response matching
// the latest generation is applied.
type CatalogSearchService interface {
	// Search schedules a lookup for the query. Queries shorter than the
	// configured minimum yield an empty result immediately without a request.
	Search(ctx context.Context, query string)

	// SearchAndWait schedules a lookup like Search and blocks until this
	// call's result is delivered. ok is false when a newer call superseded
	// this one before its result could be applied.
	SearchAndWait(ctx context.Context, query string) (dto.SearchResponse, bool)

	// OnResults registers the sink receiving search outcomes
	OnResults(sink SearchSink)

	// Cancel invalidates any pending or in-flight search
	Cancel()
}

type searchWaiter chan dto.SearchResponse

type catalogSearchService struct {
	catalogRepo catalog.Repository
	logger      *logger.Logger

	minQueryLength int
	debounce       time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	waiters    map[uint64]searchWaiter
	sink       SearchSink
}

func NewCatalogSearchService(cfg *config.Configuration, catalogRepo catalog.Repository, logger *logger.Logger) CatalogSearchService {
	return &catalogSearchService{
		catalogRepo:    catalogRepo,
		logger:         logger,
		minQueryLength: cfg.Search.MinQueryLength,
		debounce:       cfg.Search.DebounceInterval,
		waiters:        make(map[uint64]searchWaiter),
	}
}

func (s *catalogSearchService) OnResults(sink SearchSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

func (s *catalogSearchService) Search(ctx context.Context, query string) {
	s.schedule(ctx, query, nil)
}

func (s *catalogSearchService) SearchAndWait(ctx context.Context, query string) (dto.SearchResponse, bool) {
	w := make(searchWaiter, 1)
	gen := s.schedule(ctx, query, w)

	select {
	case result, ok := <-w:
		if !ok {
			// superseded before dispatch or delivery
			return dto.SearchResponse{Query: strings.TrimSpace(query), Generation: gen}, false
		}
		return result, true
	case <-ctx.Done():
		return dto.SearchResponse{Query: strings.TrimSpace(query), Generation: gen}, false
	}
}

// schedule resets the debounce timer for the new generation. Any previously
// pending timer is discarded without side effect and outstanding waiters are
// released as superseded.
func (s *catalogSearchService) schedule(ctx context.Context, query string, w searchWaiter) uint64 {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	s.generation++
	gen := s.generation

	for g, old := range s.waiters {
		close(old)
		delete(s.waiters, g)
	}
	if w != nil {
		s.waiters[gen] = w
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	// Cheap short circuit: too-short input yields an empty result set
	// without issuing a request
	if len([]rune(query)) < s.minQueryLength {
		s.mu.Unlock()
		s.deliver(dto.SearchResponse{Query: query, Generation: gen, Entries: []dto.CatalogEntryResponse{}})
		return gen
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		s.dispatch(ctx, query, gen)
	})
	s.mu.Unlock()
	return gen
}

func (s *catalogSearchService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	for g, old := range s.waiters {
		close(old)
		delete(s.waiters, g)
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *catalogSearchService) dispatch(ctx context.Context, query string, gen uint64) {
	if s.superseded(gen) {
		return
	}

	entries, err := s.catalogRepo.Search(ctx, query)
	result := dto.SearchResponse{Query: query, Generation: gen}
	if err != nil {
		// Advisory failure: empty result plus a recoverable warning, never
		// an error into the mutation path
		s.logger.Warnw("catalog search failed", "query", query, "error", err)
		result.Entries = []dto.CatalogEntryResponse{}
		result.Warning = "catalog search is temporarily unavailable"
	} else {
		result.Entries = make([]dto.CatalogEntryResponse, 0, len(entries))
		for _, e := range entries {
			result.Entries = append(result.Entries, dto.NewCatalogEntryResponse(e))
		}
	}

	// Stale result rejection: a response that lost the race to a newer
	// keystroke is dropped, not applied
	if s.superseded(gen) {
		return
	}
	s.deliver(result)
}

func (s *catalogSearchService) superseded(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen != s.generation
}

func (s *catalogSearchService) deliver(result dto.SearchResponse) {
	s.mu.Lock()
	sink := s.sink
	if w, ok := s.waiters[result.Generation]; ok {
		w <- result
		delete(s.waiters, result.Generation)
	}
	s.mu.Unlock()

	if sink != nil {
		sink(result)
	}
}
