package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"acaradar-web/internal/dto"
	"acaradar-web/internal/pkg/logger"
	"acaradar-web/internal/pkg/serverutils"
	"acaradar-web/internal/repository/memory"
	"acaradar-web/internal/service"
	"acaradar-web/pkg/store"
	"acaradar-web/pkg/upstream"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJournalService struct{}

func (fakeJournalService) ListJournals(context.Context, upstream.CookieHolder) []string {
	return []string{"MIS Quarterly"}
}

type fakeResearchInterestService struct {
	result *dto.EmbedInterestResult
	err    error
	calls  int
}

func (f *fakeResearchInterestService) Embed(_ context.Context, sess *store.Session, req *dto.EmbedInterestRequest) (*dto.EmbedInterestResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	sess.SetResearchInterest(req.Term, f.result.RequestID, f.result.Vector, f.result.Concepts)
	return f.result, nil
}

func (f *fakeResearchInterestService) Status(_ context.Context, _ *store.Session, jobID string) (*dto.ResearchInterestStatusResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if jobID == "" {
		return nil, service.ErrMissingJobID
	}
	return &dto.ResearchInterestStatusResponse{RequestID: jobID, Status: "pending", Concepts: []string{}}, nil
}

type fakePaperService struct {
	page  *dto.PapersPage
	err   error
	calls int
	got   dto.ListPapersRequest
}

func (f *fakePaperService) List(_ context.Context, _ *store.Session, req dto.ListPapersRequest) (*dto.PapersPage, error) {
	f.calls++
	f.got = req
	return f.page, f.err
}

type harness struct {
	app      *fiber.App
	interest *fakeResearchInterestService
	papers   *fakePaperService
	cookie   *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		interest: &fakeResearchInterestService{result: &dto.EmbedInterestResult{Status: upstream.StatusCompleted, RequestID: "r1"}},
		papers:   &fakePaperService{page: &dto.PapersPage{Journals: []string{"A"}, Papers: []dto.Paper{{Title: "P"}}, Pagination: map[string]any{}}},
	}

	app := fiber.New(fiber.Config{Immutable: true})
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Use(serverutils.SessionMiddleware(serverutils.SessionConfig{
		CookieName: "acaradar_session",
		TTL:        time.Hour,
		Tokens:     serverutils.NewSessionTokenCodec("secret", time.Hour),
		Repository: memory.NewSessionRepository(time.Hour),
		Logger:     logger.NewNopLogger(),
	}))

	watchlist := service.NewWatchlistService(20, service.NewNoopPublisher())
	NewHomeController(fakeJournalService{}, watchlist).RegisterRoutes(app)
	NewResearchInterestController(h.interest).RegisterRoutes(app)
	NewPaperController(h.papers, 200).RegisterRoutes(app)
	NewWatchlistController(watchlist).RegisterRoutes(app)

	h.app = app
	return h
}

func (h *harness) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	resp, err := h.app.Test(req)
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		if c.Name == "acaradar_session" {
			h.cookie = c
		}
	}
	return resp
}

func (h *harness) postForm(t *testing.T, path string, form url.Values) *http.Response {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(t, req)
}

type view struct {
	View   string         `json:"view"`
	Locals map[string]any `json:"locals"`
}

func (h *harness) home(t *testing.T) view {
	t.Helper()
	resp := h.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v view
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func flashOf(v view) (string, string) {
	f, _ := v.Locals["flash"].(map[string]any)
	kind, _ := f["kind"].(string)
	msg, _ := f["message"].(string)
	return kind, msg
}

func TestHomeShowsFlashOnce(t *testing.T) {
	h := newHarness(t)

	resp := h.postForm(t, "/research_interest", url.Values{"term": {"  "}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	v := h.home(t)
	assert.Equal(t, "home", v.View)
	assert.Equal(t, []any{"MIS Quarterly"}, v.Locals["journals"])
	kind, msg := flashOf(v)
	assert.Equal(t, "error", kind)
	assert.Equal(t, emptyInterestMessage, msg)

	_, msg = flashOf(h.home(t))
	assert.Empty(t, msg)
	assert.Equal(t, 0, h.interest.calls)
}

func TestEmbedResearchInterestOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		result   *dto.EmbedInterestResult
		err      error
		wantKind string
		wantMsg  string
	}{
		{"invalid characters", "graphs; drop", nil, nil, "error", "Research interest may only contain letters, numbers, spaces and hyphens."},
		{"completed", "graph learning", &dto.EmbedInterestResult{Status: "completed"}, nil, "notice", interestSetMessage},
		{"still running", "graph learning", &dto.EmbedInterestResult{Status: "pending"}, nil, "notice", interestPendingMessage},
		{"failed", "graph learning", &dto.EmbedInterestResult{Status: "failed"}, nil, "error", interestFailedMessage},
		{"unreachable", "graph learning", nil, &upstream.UnavailableError{Method: "POST", URL: "x", Err: io.EOF}, "error", "Connection to API refused"},
		{"rejected", "graph learning", nil, &upstream.HTTPError{StatusCode: 422, Message: "term too short"}, "error", "term too short"},
		{"no job and no vector", "graph learning", nil, fmt.Errorf("embed research interest: %w", service.ErrMissingJobID), "error", interestFailedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.interest.result = tt.result
			h.interest.err = tt.err

			resp := h.postForm(t, "/research_interest", url.Values{"term": {tt.term}})
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

			kind, msg := flashOf(h.home(t))
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestEmbedStoresInterestInSession(t *testing.T) {
	h := newHarness(t)
	h.interest.result = &dto.EmbedInterestResult{Status: "completed", RequestID: "r7", Concepts: []string{"graphs"}}

	h.postForm(t, "/research_interest", url.Values{"term": {"graph learning"}})

	v := h.home(t)
	assert.Equal(t, "graph learning", v.Locals["researchInterestTerm"])
	assert.Equal(t, "r7", v.Locals["researchInterestRequestId"])
	assert.Equal(t, []any{"graphs"}, v.Locals["researchInterestConcepts"])
}

func TestResearchInterestStatusEndpoint(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, httptest.NewRequest(http.MethodGet, "/research_interest/r1/status", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body serverutils.BaseResponse[dto.ResearchInterestStatusResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "r1", body.Data.RequestID)

	h.interest.err = &upstream.UnavailableError{Err: io.EOF}
	resp = h.do(t, httptest.NewRequest(http.MethodGet, "/research_interest/r1/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSelectedJournals(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, httptest.NewRequest(http.MethodGet, "/selected_journals?journals[]=A&journals[]=B&top_n=3&request_id=r1", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "private, no-store", resp.Header.Get("Cache-Control"))

	var v view
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "selected_journals", v.View)
	assert.Len(t, v.Locals["papers"], 1)
	assert.Contains(t, v.Locals, "error")
	assert.Equal(t, []string{"A", "B"}, h.papers.got.Journals)
}

func TestSelectedJournalsRejections(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		err     error
		wantMsg string
	}{
		{"no journals", "", nil, "You must select at least one journal"},
		{"top n without job", "?journals=A&top_n=5", nil, "Top N requires an embedded research interest (request_id). Please click 'Embed' first."},
		{"upstream error", "?journals=A", &upstream.HTTPError{StatusCode: 500, Message: "nope"}, "API Error: nope"},
		{"upstream down", "?journals=A", &upstream.UnavailableError{Err: io.EOF}, "Connection to API refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.papers.err = tt.err

			resp := h.do(t, httptest.NewRequest(http.MethodGet, "/selected_journals"+tt.query, nil))
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

			_, msg := flashOf(h.home(t))
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestSelectedJournalsValidationSkipsUpstream(t *testing.T) {
	h := newHarness(t)
	h.do(t, httptest.NewRequest(http.MethodGet, "/selected_journals?journals=A&min_date=2024-02-01&max_date=2024-01-01", nil))
	assert.Equal(t, 0, h.papers.calls)
}

func TestWatchlistEndpoints(t *testing.T) {
	h := newHarness(t)

	resp := h.postForm(t, "/watched", url.Values{"key": {"arxiv:1/2"}, "title": {"Paper"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ack dto.WatchAck
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.True(t, ack.Ok)

	resp = h.postForm(t, "/watched", url.Values{"key": {"k"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.False(t, ack.Ok)
	assert.Equal(t, "title is required", ack.Error)

	resp = h.do(t, httptest.NewRequest(http.MethodGet, "/watched", nil))
	var list dto.WatchlistResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "arxiv:1/2", list.Items[0].Key)

	resp = h.do(t, httptest.NewRequest(http.MethodDelete, "/watched/"+url.PathEscape("arxiv:1/2"), nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, httptest.NewRequest(http.MethodDelete, "/watched/arxiv:1", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
