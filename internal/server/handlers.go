package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/praxisllmlab/fabsearch/internal/model"
	"github.com/praxisllmlab/fabsearch/internal/search"
)

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Search handles GET /api/search
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req := searchRequestFromQuery(r)

	resp, err := s.search.Execute(r.Context(), req)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "invalid_request_error", err.Error())
			return
		}
		log.Printf("server: search failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "search failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func searchRequestFromQuery(r *http.Request) model.SearchRequest {
	q := r.URL.Query()
	return model.SearchRequest{
		Query:     q.Get("q"),
		Limit:     intParam(q.Get("limit")),
		Page:      intParam(q.Get("page")),
		Sort:      q.Get("sort"),
		Tab:       q.Get("tab"),
		Sources:   csvParam(q.Get("sources")),
		License:   q.Get("license"),
		Format:    q.Get("format"),
		Price:     q.Get("price"),
		TimeRange: q.Get("timeRange"),
	}
}

func intParam(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func csvParam(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Suggest handles GET /api/suggest
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Suggestions(r.URL.Query().Get("q")))
}

// Sources handles GET /api/sources
func (s *Server) Sources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sources": s.registry.Descriptors(),
	})
}

// Item handles GET /api/item. It resolves a previously-seen result by
// source and id from the suggestion store's item index.
func (s *Server) Item(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimSpace(r.URL.Query().Get("source"))
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if source == "" || id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "source and id parameters are required")
		return
	}
	item, ok := s.store.Item(source, id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found_error", "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// providerHealth is one row of the /api/health/providers payload.
type providerHealth struct {
	ID          string             `json:"id"`
	Label       string             `json:"label"`
	Mode        model.ProviderMode `json:"mode"`
	Configured  bool               `json:"configured"`
	Public      bool               `json:"isPublic"`
	CoolingDown bool               `json:"coolingDown"`
	Supports    model.Capabilities `json:"supports"`
	AssetTypes  []model.AssetType  `json:"assetTypes"`
}

// ProviderHealth handles GET /api/health/providers
func (s *Server) ProviderHealth(w http.ResponseWriter, r *http.Request) {
	providers := []providerHealth{}
	for _, p := range s.registry.All() {
		d := p.Descriptor()
		providers = append(providers, providerHealth{
			ID:          d.ID,
			Label:       d.Label,
			Mode:        d.Mode,
			Configured:  p.Configured(),
			Public:      d.Public,
			CoolingDown: s.tracker.ShouldSkip(d.ID),
			Supports:    d.Supports,
			AssetTypes:  d.AssetTypes,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": providers,
	})
}

// ProviderMetrics handles GET /api/metrics/providers
func (s *Server) ProviderMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": s.tracker.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, model.ErrorResponse{Error: model.ErrorDetail{
		Message: message,
		Type:    errType,
	}})
}
