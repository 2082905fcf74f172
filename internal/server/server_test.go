package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisllmlab/fabsearch/internal/cache"
	"github.com/praxisllmlab/fabsearch/internal/health"
	"github.com/praxisllmlab/fabsearch/internal/model"
	"github.com/praxisllmlab/fabsearch/internal/provider"
	"github.com/praxisllmlab/fabsearch/internal/search"
	"github.com/praxisllmlab/fabsearch/internal/suggest"
)

type fakeProvider struct {
	desc    model.ProviderDescriptor
	payload []model.RawResult
	err     error
}

func (f *fakeProvider) Descriptor() model.ProviderDescriptor { return f.desc }
func (f *fakeProvider) Configured() bool                     { return true }

func (f *fakeProvider) Search(_ context.Context, _ provider.SearchParams) (any, error) {
	return f.payload, f.err
}

func newTestServer(t *testing.T, providers ...provider.Provider) *Server {
	t.Helper()
	if len(providers) == 0 {
		providers = []provider.Provider{&fakeProvider{
			desc: model.ProviderDescriptor{
				ID:         "alpha",
				Label:      "Alpha",
				Mode:       model.ModeAPI,
				Public:     true,
				AssetTypes: []model.AssetType{model.AssetModel3D},
				Supports:   model.Capabilities{Search: true},
			},
			payload: []model.RawResult{{
				"source": "alpha",
				"id":     "1",
				"title":  "Benchy Boat",
				"url":    "https://example.com/alpha/1",
				"stats":  map[string]any{"likes": 12.0},
			}},
		}}
	}
	reg := provider.NewRegistry(providers...)
	tracker := health.NewTracker(5, 2*time.Minute)
	store := suggest.NewStore()
	svc := search.NewService(reg, cache.NewMemoryCache(), tracker, store, search.Settings{})

	return NewServer(Config{Search: svc, Registry: reg, Tracker: tracker, Store: store})
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestSearch(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/search?q=benchy")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp model.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "benchy", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Benchy Boat", resp.Results[0].Title)
	assert.False(t, resp.Cached)
	assert.NotEmpty(t, resp.RequestID)
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/search")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request_error", resp.Error.Type)
	assert.NotEmpty(t, resp.Error.Message)
}

func TestSearch_RequestParamsParsed(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/search?q=benchy&limit=3&page=2&sort=likes&sources=alpha,%20nope")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Limit)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, "likes", resp.Sort)
	assert.Equal(t, []string{"alpha"}, resp.Sources)
}

func TestSuggest_ReflectsSearches(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, doGet(t, s, "/api/search?q=benchy").Code)

	rec := doGet(t, s, "/api/suggest?q=ben")
	require.Equal(t, http.StatusOK, rec.Code)

	var groups model.SuggestionGroups
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	require.Len(t, groups.Recent, 1)
	assert.Equal(t, "benchy", groups.Recent[0].Title)
	assert.NotNil(t, groups.Items)
	assert.NotNil(t, groups.Popular)
}

func TestSources(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sources []model.ProviderDescriptor `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "alpha", resp.Sources[0].ID)
}

func TestItem(t *testing.T) {
	s := newTestServer(t)

	rec := doGet(t, s, "/api/item?source=alpha&id=1")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusOK, doGet(t, s, "/api/search?q=benchy").Code)

	rec = doGet(t, s, "/api/item?source=alpha&id=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var item model.NormalizedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "Benchy Boat", item.Title)
}

func TestItem_MissingParams(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/item?source=alpha")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProviderHealth(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/health/providers")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status    string           `json:"status"`
		Providers []providerHealth `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Providers, 1)
	assert.Equal(t, "alpha", resp.Providers[0].ID)
	assert.True(t, resp.Providers[0].Configured)
	assert.False(t, resp.Providers[0].CoolingDown)
}

func TestProviderMetrics(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, doGet(t, s, "/api/search?q=benchy").Code)

	rec := doGet(t, s, "/api/metrics/providers")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Providers []health.ProviderMetrics `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Providers, 1)
	assert.Equal(t, "alpha", resp.Providers[0].ID)
	assert.Equal(t, int64(1), resp.Providers[0].Total)
	assert.Equal(t, int64(0), resp.Providers[0].Errors)
}
