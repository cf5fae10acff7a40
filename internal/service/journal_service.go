package service

import (
	"context"
	"net/http"
	"slices"
	"time"

	"acaradar-web/internal/pkg/logger"
	"acaradar-web/pkg/upstream"

	"github.com/patrickmn/go-cache"
)

const (
	journalsPath     = "/journals"
	journalsCacheKey = "journals"
)

type IJournalService interface {
	// ListJournals never fails: the fallback list stands in for any upstream problem.
	ListJournals(ctx context.Context, holder upstream.CookieHolder) []string
}

type journalService struct {
	executor upstream.Executor
	cache    *cache.Cache
	logger   logger.ILogger
}

func NewJournalService(executor upstream.Executor, ttl time.Duration, log logger.ILogger) IJournalService {
	return &journalService{
		executor: executor,
		cache:    cache.New(ttl, 2*ttl),
		logger:   log,
	}
}

func (s *journalService) ListJournals(ctx context.Context, holder upstream.CookieHolder) []string {
	if cached, found := s.cache.Get(journalsCacheKey); found {
		return slices.Clone(cached.([]string))
	}

	resp, err := s.executor.Execute(ctx, holder, http.MethodGet, journalsPath, nil, nil)
	if err != nil {
		s.logger.Warn("Journals", "Journal list unavailable, using fallback", map[string]interface{}{"error": err.Error()})
		return slices.Clone(upstream.FallbackJournals)
	}
	if !resp.Success() {
		s.logger.Warn("Journals", "Journal list rejected, using fallback", map[string]interface{}{
			"status":  resp.StatusCode,
			"message": resp.Message(),
		})
		return slices.Clone(upstream.FallbackJournals)
	}

	names := upstream.ExtractJournalNames(resp.Data())
	// A fallback answer is retried on the next page view instead of being pinned.
	if !slices.Equal(names, upstream.FallbackJournals) {
		s.cache.SetDefault(journalsCacheKey, slices.Clone(names))
	}
	return names
}
