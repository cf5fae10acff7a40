package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"acaradar-web/internal/dto"
	"acaradar-web/internal/pkg/logger"
	"acaradar-web/pkg/events"
	"acaradar-web/pkg/store"
	"acaradar-web/pkg/upstream"
)

var ErrMissingJobID = errors.New("job id is required")

// jobIDKeys are the fields the upstream has used for the embedding job id.
var jobIDKeys = []string{"request_id", "job_id", "id", "channel_id"}

// ProgressNotifier pushes poll progress to whoever listens on a channel.
// Implemented by the websocket hub.
type ProgressNotifier interface {
	Notify(frame dto.ProgressFrame)
}

type IResearchInterestService interface {
	Embed(ctx context.Context, sess *store.Session, req *dto.EmbedInterestRequest) (*dto.EmbedInterestResult, error)
	Status(ctx context.Context, sess *store.Session, jobID string) (*dto.ResearchInterestStatusResponse, error)
}

type researchInterestService struct {
	executor  upstream.Executor
	poller    *upstream.Poller
	notifier  ProgressNotifier
	publisher IPublisherService
	logger    logger.ILogger
}

func NewResearchInterestService(
	executor upstream.Executor,
	poller *upstream.Poller,
	notifier ProgressNotifier,
	publisher IPublisherService,
	log logger.ILogger,
) IResearchInterestService {
	return &researchInterestService{
		executor:  executor,
		poller:    poller,
		notifier:  notifier,
		publisher: publisher,
		logger:    log,
	}
}

// Embed submits the term, waits for the job within the poll budget and records the
// outcome on the session. A failed job, or an answer with neither a job id nor a
// vector, leaves the previous interest in place.
func (s *researchInterestService) Embed(ctx context.Context, sess *store.Session, req *dto.EmbedInterestRequest) (*dto.EmbedInterestResult, error) {
	resp, err := s.executor.Execute(ctx, sess, http.MethodPost, s.poller.BasePath(), dto.EmbedInterestPayload{Term: req.Term}, nil)
	if err != nil {
		return nil, fmt.Errorf("embed research interest: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("embed research interest: %w", resp.Err())
	}

	data := resp.Data()
	result := &dto.EmbedInterestResult{
		Term:      req.Term,
		RequestID: jobID(data),
		Status:    upstream.String(data["status"]),
		Concepts:  upstream.StringList(data["concepts"]),
	}
	if v, ok := upstream.FindVector(data); ok {
		result.Vector = &v
	}
	if result.RequestID == "" && result.Vector == nil {
		s.logger.Warn("ResearchInterest", "Embed answer carried neither a job id nor a vector", map[string]interface{}{
			"status": result.Status,
		})
		return nil, fmt.Errorf("embed research interest: %w", ErrMissingJobID)
	}

	job := s.poller.PollUntilTerminal(ctx, sess, result.RequestID, s.progressObserver(req.Channel))
	result.Attempts = job.Attempts
	if job.Status != upstream.StatusUnknown || result.Status == "" {
		result.Status = job.Status
	}
	if len(job.Concepts) > 0 {
		result.Concepts = job.Concepts
	}
	if job.Vector != nil {
		result.Vector = job.Vector
	}
	// No job to wait for but the vector came back with the submission.
	if result.RequestID == "" && result.Vector != nil {
		result.Status = upstream.StatusCompleted
	}
	if result.Concepts == nil {
		result.Concepts = []string{}
	}

	if result.Status != upstream.StatusFailed {
		sess.SetResearchInterest(result.Term, result.RequestID, result.Vector, result.Concepts)
	}

	s.logger.Info("ResearchInterest", "Embedding finished", map[string]interface{}{
		"request_id": result.RequestID,
		"status":     result.Status,
		"attempts":   result.Attempts,
	})
	s.publisher.Publish(ctx, events.New(events.ResearchInterestEmbedded, map[string]interface{}{
		"term":       result.Term,
		"request_id": result.RequestID,
		"status":     result.Status,
		"attempts":   result.Attempts,
	}))
	return result, nil
}

// Status makes a single status call, for browsers that gave up waiting on Embed.
func (s *researchInterestService) Status(ctx context.Context, sess *store.Session, jobID string) (*dto.ResearchInterestStatusResponse, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrMissingJobID
	}

	resp, err := s.executor.Execute(ctx, sess, http.MethodGet, s.poller.JobPath(jobID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("research interest status: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("research interest status: %w", resp.Err())
	}

	data := resp.Data()
	status := upstream.String(data["status"])
	if status == "" {
		status = upstream.StatusUnknown
	}
	out := &dto.ResearchInterestStatusResponse{
		RequestID: jobID,
		Status:    status,
		Terminal:  upstream.IsTerminalStatus(status),
		Concepts:  upstream.StringList(data["concepts"]),
	}
	if v, ok := upstream.FindVector(data); ok {
		out.Vector = &v
	}

	// Late results fill in the interest this session is waiting on.
	if sess.ResearchInterestRequestID == jobID && status != upstream.StatusFailed {
		sess.SetResearchInterest(sess.ResearchInterestTerm, jobID, out.Vector, out.Concepts)
	}
	if len(out.Concepts) == 0 && sess.ResearchInterestRequestID == jobID {
		out.Concepts = append([]string{}, sess.ResearchInterestConcepts...)
	}
	if out.Concepts == nil {
		out.Concepts = []string{}
	}
	return out, nil
}

func (s *researchInterestService) progressObserver(channel string) upstream.AttemptObserver {
	if channel == "" || s.notifier == nil {
		return nil
	}
	return func(attempt, maxAttempts int, job upstream.JobResult) {
		percent := attempt * 100 / maxAttempts
		if job.Terminal() {
			percent = 100
		}
		s.notifier.Notify(dto.ProgressFrame{
			Channel: channel,
			Data: dto.ProgressFrameData{
				Status:      job.Status,
				Attempt:     attempt,
				MaxAttempts: maxAttempts,
				Percent:     percent,
				Concepts:    job.Concepts,
			},
		})
	}
}

func jobID(data map[string]any) string {
	for _, key := range jobIDKeys {
		if id := upstream.String(data[key]); id != "" {
			return id
		}
	}
	return ""
}
