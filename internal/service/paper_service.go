package service

import (
	"context"
	"fmt"
	"net/http"

	"acaradar-web/internal/dto"
	"acaradar-web/internal/mapper"
	"acaradar-web/internal/pkg/logger"
	"acaradar-web/pkg/events"
	"acaradar-web/pkg/store"
	"acaradar-web/pkg/upstream"
)

const papersPath = "/papers"

type IPaperService interface {
	// List expects a request that already passed validation.
	List(ctx context.Context, sess *store.Session, req dto.ListPapersRequest) (*dto.PapersPage, error)
}

type paperService struct {
	executor  upstream.Executor
	mapper    *mapper.PaperMapper
	publisher IPublisherService
	logger    logger.ILogger
}

func NewPaperService(
	executor upstream.Executor,
	paperMapper *mapper.PaperMapper,
	publisher IPublisherService,
	log logger.ILogger,
) IPaperService {
	return &paperService{
		executor:  executor,
		mapper:    paperMapper,
		publisher: publisher,
		logger:    log,
	}
}

func (s *paperService) List(ctx context.Context, sess *store.Session, req dto.ListPapersRequest) (*dto.PapersPage, error) {
	resp, err := s.executor.Execute(ctx, sess, http.MethodGet, papersPath, nil, req.QueryParams())
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("list papers: %w", resp.Err())
	}

	page := s.mapper.ToPapersPage(resp.Data())

	// The upstream only echoes the interest when ranking; show the stored one otherwise.
	if page.ResearchInterestTerm == "" {
		page.ResearchInterestTerm = sess.ResearchInterestTerm
	}
	if page.ResearchInterestVector == nil && sess.ResearchInterestVector != nil {
		v := *sess.ResearchInterestVector
		page.ResearchInterestVector = &v
	}
	if len(page.Journals) == 0 {
		page.Journals = append([]string{}, req.Journals...)
	}

	s.logger.Debug("Papers", "Papers listed", map[string]interface{}{
		"journals": req.Journals,
		"count":    len(page.Papers),
	})
	s.publisher.Publish(ctx, events.New(events.PapersListed, map[string]interface{}{
		"journals":   req.Journals,
		"count":      len(page.Papers),
		"request_id": req.RequestID.Value,
		"top_n":      req.TopN.Value,
	}))
	return &page, nil
}
