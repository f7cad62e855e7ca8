package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentmart/agentmart/internal/query"
	"github.com/agentmart/agentmart/internal/slogutil"
	"github.com/agentmart/agentmart/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	lastCtx       context.Context
	lastParams    query.Params
	lastID        string
	lastSkipCache bool
	listResult    *query.PagedResult
	listErr       error
	detailResult  *store.AgentRecord
	detailErr     error
}

func (s *stubService) ListAgents(ctx context.Context, params query.Params) (*query.PagedResult, error) {
	s.lastCtx = ctx
	s.lastParams = params
	return s.listResult, s.listErr
}

func (s *stubService) GetAgentDetail(ctx context.Context, id string, skipCache bool) (*store.AgentRecord, error) {
	s.lastID = id
	s.lastSkipCache = skipCache
	return s.detailResult, s.detailErr
}

type stubInvalidator struct {
	agentID       string
	agentCategory string
	category      string
	allCalls      int
}

func (s *stubInvalidator) InvalidateAgent(ctx context.Context, id, category string) {
	s.agentID = id
	s.agentCategory = category
}

func (s *stubInvalidator) InvalidateCategory(ctx context.Context, category string) {
	s.category = category
}

func (s *stubInvalidator) InvalidateAll(ctx context.Context) {
	s.allCalls++
}

func newTestServer(service *stubService, invalidator *stubInvalidator, statsFn func() any) *Server {
	return NewServer(nil, service, invalidator, statsFn)
}

func doRequest(t *testing.T, s *Server, method, target string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	return resp, body
}

func TestListAgents_ParsesQueryParams(t *testing.T) {
	service := &stubService{listResult: &query.PagedResult{Items: []*store.AgentRecord{}}}
	server := newTestServer(service, &stubInvalidator{}, nil)

	resp, body := doRequest(t, server, http.MethodGet,
		"/api/agents?category=Design&sort=hot-now&q=email&page=2&limit=6&price_min=5&price_max=50&rating_min=4&tags=a,%20b&features=free")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	p := service.lastParams
	assert.Equal(t, "Design", p.Category)
	assert.Equal(t, query.SortHotNow, p.Sort)
	assert.Equal(t, "email", p.Search)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 6, p.Limit)
	require.NotNil(t, p.PriceMin)
	assert.Equal(t, 5.0, *p.PriceMin)
	require.NotNil(t, p.PriceMax)
	assert.Equal(t, 50.0, *p.PriceMax)
	require.NotNil(t, p.RatingMin)
	assert.Equal(t, 4.0, *p.RatingMin)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
	assert.Equal(t, []string{"free"}, p.Features)
}

func TestListAgents_RequestContextTagged(t *testing.T) {
	service := &stubService{listResult: &query.PagedResult{}}
	server := newTestServer(service, &stubInvalidator{}, nil)

	_, _ = doRequest(t, server, http.MethodGet, "/api/agents")

	require.NotNil(t, service.lastCtx)
	tags := map[string]string{}
	for _, a := range slogutil.Attrs(service.lastCtx) {
		tags[a.Key] = a.Value.String()
	}
	assert.NotEmpty(t, tags["request_id"])
	assert.Equal(t, http.MethodGet, tags["method"])
	assert.Equal(t, "/api/agents", tags["path"])
}

func TestListAgents_MalformedNumbersDropped(t *testing.T) {
	service := &stubService{listResult: &query.PagedResult{}}
	server := newTestServer(service, &stubInvalidator{}, nil)

	resp, _ := doRequest(t, server, http.MethodGet, "/api/agents?price_min=abc&rating_min=&page=xyz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, service.lastParams.PriceMin)
	assert.Nil(t, service.lastParams.RatingMin)
	assert.Zero(t, service.lastParams.Page)
}

func TestListAgents_StoreFailure(t *testing.T) {
	service := &stubService{listErr: errors.New("store down")}
	server := newTestServer(service, &stubInvalidator{}, nil)

	resp, body := doRequest(t, server, http.MethodGet, "/api/agents")

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	errObj := body["error"].(map[string]any)
	assert.Equal(t, ErrCodeUnavailable, errObj["code"])
}

func TestGetAgent(t *testing.T) {
	service := &stubService{detailResult: &store.AgentRecord{ID: "a1", Name: "Email Triage"}}
	server := newTestServer(service, &stubInvalidator{}, nil)

	resp, body := doRequest(t, server, http.MethodGet, "/api/agents/a1?skip_cache=true")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a1", service.lastID)
	assert.True(t, service.lastSkipCache)

	data := body["data"].(map[string]any)
	assert.Equal(t, "Email Triage", data["name"])
}

func TestGetAgent_NotFound(t *testing.T) {
	service := &stubService{detailErr: &query.NotFoundError{ID: "nope"}}
	server := newTestServer(service, &stubInvalidator{}, nil)

	resp, body := doRequest(t, server, http.MethodGet, "/api/agents/nope")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, ErrCodeNotFound, errObj["code"])
}

func TestGetAgent_StoreFailure(t *testing.T) {
	service := &stubService{detailErr: errors.New("store down")}
	server := newTestServer(service, &stubInvalidator{}, nil)

	resp, _ := doRequest(t, server, http.MethodGet, "/api/agents/a1")

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestInvalidateAgent(t *testing.T) {
	invalidator := &stubInvalidator{}
	server := newTestServer(&stubService{}, invalidator, nil)

	resp, body := doRequest(t, server, http.MethodPost, "/api/agents/a1/invalidate?category=Design")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "a1", invalidator.agentID)
	assert.Equal(t, "Design", invalidator.agentCategory)
}

func TestInvalidateCategory(t *testing.T) {
	invalidator := &stubInvalidator{}
	server := newTestServer(&stubService{}, invalidator, nil)

	resp, _ := doRequest(t, server, http.MethodPost, "/api/categories/Design/invalidate")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Design", invalidator.category)
}

func TestInvalidateAll(t *testing.T) {
	invalidator := &stubInvalidator{}
	server := newTestServer(&stubService{}, invalidator, nil)

	resp, _ := doRequest(t, server, http.MethodPost, "/api/cache/invalidate")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, invalidator.allCalls)
}

func TestCacheStats(t *testing.T) {
	server := newTestServer(&stubService{}, &stubInvalidator{}, func() any {
		return map[string]any{"hits": 42}
	})

	resp, body := doRequest(t, server, http.MethodGet, "/api/cache/stats")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(42), data["hits"])
}

func TestCacheStats_NilStatsFn(t *testing.T) {
	server := newTestServer(&stubService{}, &stubInvalidator{}, nil)

	resp, body := doRequest(t, server, http.MethodGet, "/api/cache/stats")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["data"])
}

func TestLive(t *testing.T) {
	server := newTestServer(&stubService{}, &stubInvalidator{}, nil)

	resp, body := doRequest(t, server, http.MethodGet, "/live")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
