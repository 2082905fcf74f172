// Package suggest maintains the recent-query and top-result indexes that
// back autocomplete and result-detail lookups.
package suggest

import (
	"sort"
	"strings"
	"sync"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

const (
	maxRecentQueries = 20
	maxQuerySummary  = 8
	maxItemIndex     = 2000
	maxRecentMatches = 5
	maxItemMatches   = 5
	maxPopular       = 3
)

// Store is the process-wide suggestion state, shared across concurrent
// requests.
type Store struct {
	mu        sync.Mutex
	recent    []string // most recent first
	byQuery   map[string][]model.Suggestion
	items     map[string]*model.NormalizedResult
	itemOrder []string
}

// NewStore creates an empty suggestion store.
func NewStore() *Store {
	return &Store{
		byQuery: make(map[string][]model.Suggestion),
		items:   make(map[string]*model.NormalizedResult),
	}
}

func itemKey(source, id string) string {
	return source + ":" + id
}

// Remember records a completed search: the query joins the recent list, the
// top results become that query's summary, and every result is indexed for
// point lookup. The item index is capacity-bounded with oldest-insertion
// eviction.
func (s *Store) Remember(query string, results []*model.NormalizedResult) {
	if query == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	known := false
	for _, q := range s.recent {
		if q == query {
			known = true
			break
		}
	}
	if !known {
		s.recent = append([]string{query}, s.recent...)
		if len(s.recent) > maxRecentQueries {
			s.recent = s.recent[:maxRecentQueries]
		}
	}

	for _, item := range results {
		if item.Source == "" || item.ID == "" {
			continue
		}
		key := itemKey(item.Source, item.ID)
		if _, exists := s.items[key]; !exists {
			if len(s.items) >= maxItemIndex && len(s.itemOrder) > 0 {
				oldest := s.itemOrder[0]
				s.itemOrder = s.itemOrder[1:]
				delete(s.items, oldest)
			}
			s.itemOrder = append(s.itemOrder, key)
		}
		s.items[key] = item
	}

	summary := make([]model.Suggestion, 0, maxQuerySummary)
	for _, item := range results {
		if len(summary) >= maxQuerySummary {
			break
		}
		source := item.SourceLabel
		if source == "" {
			source = item.Source
		}
		summary = append(summary, model.Suggestion{
			Type:      string(item.AssetType),
			Title:     item.Title,
			Thumbnail: item.Thumbnail,
			Source:    source,
		})
	}
	s.byQuery[query] = summary
}

// Suggestions returns grouped autocomplete entries for a partial query:
// recent queries containing it, a popular slice of the matched query's top
// results, and a fallback item slice from any indexed query containing it.
func (s *Store) Suggestions(partial string) model.SuggestionGroups {
	trimmed := strings.TrimSpace(partial)
	q := strings.ToLower(trimmed)

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := make([]model.Suggestion, 0, maxRecentMatches)
	for _, past := range s.recent {
		if len(recent) >= maxRecentMatches {
			break
		}
		if strings.Contains(strings.ToLower(past), q) {
			recent = append(recent, model.Suggestion{Type: "query", Title: past})
		}
	}

	items := s.byQuery[trimmed]
	if len(items) == 0 {
		// No exact match: pull summaries from any query containing the
		// partial, in sorted key order for determinism.
		keys := make([]string, 0, len(s.byQuery))
		for key := range s.byQuery {
			if strings.Contains(strings.ToLower(key), q) {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, entry := range s.byQuery[key] {
				if len(items) >= maxItemMatches {
					break
				}
				items = append(items, entry)
			}
			if len(items) >= maxItemMatches {
				break
			}
		}
	} else if len(items) > maxItemMatches {
		items = items[:maxItemMatches]
	}

	popular := items
	if len(popular) > maxPopular {
		popular = popular[:maxPopular]
	}

	// Non-nil slices keep the JSON groups as arrays.
	if items == nil {
		items = []model.Suggestion{}
	}
	return model.SuggestionGroups{
		Popular: popular,
		Recent:  recent,
		Items:   items,
	}
}

// Item returns an indexed result by source and id.
func (s *Store) Item(source, id string) (*model.NormalizedResult, bool) {
	if source == "" || id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemKey(source, id)]
	return item, ok
}
