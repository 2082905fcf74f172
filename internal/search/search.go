// Package search orchestrates a federated search: fan-out to the enabled
// provider adapters, normalization, merging, filtering, and caching of the
// assembled response.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/praxisllmlab/fabsearch/internal/cache"
	"github.com/praxisllmlab/fabsearch/internal/facet"
	"github.com/praxisllmlab/fabsearch/internal/health"
	"github.com/praxisllmlab/fabsearch/internal/model"
	"github.com/praxisllmlab/fabsearch/internal/normalize"
	"github.com/praxisllmlab/fabsearch/internal/provider"
	"github.com/praxisllmlab/fabsearch/internal/query"
	"github.com/praxisllmlab/fabsearch/internal/rank"
	"github.com/praxisllmlab/fabsearch/internal/suggest"
)

// ErrEmptyQuery is returned when the request carries no query text.
var ErrEmptyQuery = errors.New("query parameter is required")

const (
	defaultLimit = 24
	maxLimit     = 100
	maxPage      = 20

	titleBoost   = 4
	formatBoost  = 5
	licenseBoost = 3
	freeBoost    = 3
)

var timeRangePattern = regexp.MustCompile(`^(\d+)d$`)

// Settings tunes the orchestrator. Zero values fall back to defaults.
type Settings struct {
	Concurrency     int
	CacheTTL        time.Duration
	ProviderTimeout time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.Concurrency <= 0 {
		s.Concurrency = 4
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = 30 * time.Second
	}
	if s.ProviderTimeout <= 0 {
		s.ProviderTimeout = 8 * time.Second
	}
	return s
}

// Service executes federated searches.
type Service struct {
	registry *provider.Registry
	cache    cache.Cache
	tracker  *health.Tracker
	store    *suggest.Store
	sem      *semaphore.Weighted
	settings Settings
}

// NewService wires the orchestrator. All collaborators are required.
func NewService(reg *provider.Registry, c cache.Cache, tracker *health.Tracker, store *suggest.Store, settings Settings) *Service {
	settings = settings.withDefaults()
	return &Service{
		registry: reg,
		cache:    c,
		tracker:  tracker,
		store:    store,
		sem:      semaphore.NewWeighted(int64(settings.Concurrency)),
		settings: settings,
	}
}

// filters is the effective facet-filter set after advanced-token overrides.
type filters struct {
	Format    string `json:"format,omitempty"`
	License   string `json:"license,omitempty"`
	Price     string `json:"price,omitempty"`
	TimeRange string `json:"timeRange,omitempty"`
}

// cacheKeyPayload pins every request dimension that changes the response.
type cacheKeyPayload struct {
	Query   string            `json:"q"`
	Limit   int               `json:"limit"`
	Page    int               `json:"page"`
	Sort    string            `json:"sort"`
	Tab     string            `json:"tab"`
	Intent  model.Intent      `json:"intent"`
	Chips   []model.QueryChip `json:"chips"`
	Sources []string          `json:"sources"`
	Filters filters           `json:"filters"`
}

func clampInt(v, def, min, max int) int {
	if v == 0 {
		v = def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func normalizeTab(tab string) string {
	tab = strings.ToLower(strings.TrimSpace(tab))
	switch tab {
	case "":
		return "models"
	case "laser-cut":
		return "laser"
	}
	return tab
}

// Execute runs one federated search end to end.
func (s *Service) Execute(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	start := time.Now()

	rawQuery := strings.TrimSpace(req.Query)
	if rawQuery == "" {
		return nil, ErrEmptyQuery
	}

	adv := query.ParseAdvanced(rawQuery)
	q := adv.QueryText
	if q == "" {
		q = rawQuery
	}
	intent := query.ParseIntent(q)

	limit := clampInt(req.Limit, defaultLimit, 1, maxLimit)
	page := clampInt(req.Page, 1, 1, maxPage)
	sortMode := strings.ToLower(strings.TrimSpace(req.Sort))
	if sortMode == "" {
		sortMode = "relevant"
	}
	tab := adv.Type
	if tab == "" {
		tab = req.Tab
	}
	tab = normalizeTab(tab)

	eff := filters{
		Format:    strings.ToLower(strings.TrimSpace(req.Format)),
		License:   strings.ToLower(strings.TrimSpace(req.License)),
		Price:     strings.ToLower(strings.TrimSpace(req.Price)),
		TimeRange: strings.ToLower(strings.TrimSpace(req.TimeRange)),
	}
	if adv.Format != "" {
		eff.Format = adv.Format
	}
	if adv.License != "" {
		eff.License = adv.License
	}
	if adv.Price != "" {
		eff.Price = adv.Price
	}

	selected := s.selectProviders(req.Sources, adv.Source)

	descriptors := make(map[string]model.ProviderDescriptor, len(selected))
	var apiProviders []provider.Provider
	var linkIDs, apiIDs []string
	errorBySource := map[string]bool{}
	var searchErrors []model.SearchError

	for _, p := range selected {
		d := p.Descriptor()
		descriptors[d.ID] = d
		if d.Mode == model.ModeLink {
			linkIDs = append(linkIDs, d.ID)
			continue
		}
		if !p.Configured() && !d.Public {
			continue
		}
		// Circuit-open skips are not errors: the provider is simply left
		// out of the eligible set for this request.
		if s.tracker.ShouldSkip(d.ID) {
			continue
		}
		apiProviders = append(apiProviders, p)
		apiIDs = append(apiIDs, d.ID)
	}

	quickLinks := buildQuickLinks(selected, q)

	key, err := cacheKey(cacheKeyPayload{
		Query:   q,
		Limit:   limit,
		Page:    page,
		Sort:    sortMode,
		Tab:     tab,
		Intent:  intent,
		Chips:   adv.Chips,
		Sources: apiIDs,
		Filters: eff,
	})
	if err == nil {
		if payload, cerr := s.cache.Get(ctx, key); cerr == nil && payload != nil {
			var resp model.SearchResponse
			if jerr := json.Unmarshal(payload, &resp); jerr == nil {
				resp.RequestID = uuid.NewString()
				resp.Cached = true
				resp.QuickLinks = quickLinks
				resp.TookMs = time.Since(start).Milliseconds()
				return &resp, nil
			}
		}
	}

	results, fanErrs := s.fanOut(ctx, apiProviders, provider.SearchParams{
		Query: intent.ExpandedQuery,
		Limit: limit,
		Page:  page,
		Sort:  sortMode,
		Tab:   tab,
	}, intent, descriptors)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	for _, e := range fanErrs {
		errorBySource[e.Source] = true
	}
	searchErrors = append(searchErrors, fanErrs...)

	ranked := rank.Merge(results, sortMode)
	faceted := applyFilters(ranked, eff)

	var final []*model.RankedResult
	for _, r := range faceted {
		if facet.MatchesTab(&r.NormalizedResult, tab) {
			final = append(final, r)
		}
	}
	if len(final) > limit {
		final = final[:limit]
	}

	allLinkResults := buildLinkResults(q, quickLinks, descriptors)
	var linkResults []*model.NormalizedResult
	for _, lr := range allLinkResults {
		if facet.MatchesTab(lr, tab) {
			linkResults = append(linkResults, lr)
		}
	}

	status := buildStatus(selected, errorBySource)

	remembered := make([]*model.NormalizedResult, 0, len(final)+len(linkResults))
	facetItems := make([]*model.NormalizedResult, 0, len(faceted)+len(linkResults))
	countItems := make([]*model.NormalizedResult, 0, len(ranked)+len(allLinkResults))
	for _, r := range final {
		remembered = append(remembered, &r.NormalizedResult)
	}
	for _, r := range faceted {
		facetItems = append(facetItems, &r.NormalizedResult)
	}
	for _, r := range ranked {
		countItems = append(countItems, &r.NormalizedResult)
	}
	for _, lr := range linkResults {
		remembered = append(remembered, lr)
		facetItems = append(facetItems, lr)
	}
	// Tab counts consider every link platform, even those hidden by the
	// active tab, so the tab bar can advertise them.
	countItems = append(countItems, allLinkResults...)
	s.store.Remember(q, remembered)

	if final == nil {
		final = []*model.RankedResult{}
	}
	if linkResults == nil {
		linkResults = []*model.NormalizedResult{}
	}
	if searchErrors == nil {
		searchErrors = []model.SearchError{}
	}
	if apiIDs == nil {
		apiIDs = []string{}
	}
	if linkIDs == nil {
		linkIDs = []string{}
	}

	resp := &model.SearchResponse{
		RequestID:      uuid.NewString(),
		Query:          q,
		ExpandedQuery:  intent.ExpandedQuery,
		Intent:         intent,
		QueryChips:     chipsOrEmpty(adv.Chips),
		Page:           page,
		Limit:          limit,
		Sort:           sortMode,
		Tab:            tab,
		Sources:        apiIDs,
		Links:          linkIDs,
		Count:          len(final),
		Results:        final,
		LinkResults:    linkResults,
		QuickLinks:     quickLinks,
		Facets:         facet.Build(facetItems),
		Errors:         searchErrors,
		ProviderStatus: status,
		TabCounts:      facet.TabCounts(countItems),
		Cached:         false,
		TookMs:         time.Since(start).Milliseconds(),
	}

	if err == nil {
		if payload, jerr := json.Marshal(resp); jerr == nil {
			if serr := s.cache.Set(ctx, key, payload, s.settings.CacheTTL); serr != nil {
				log.Printf("search: cache write failed: %v", serr)
			}
		}
	}
	return resp, nil
}

// selectProviders resolves the requested source ids (query params plus
// source: tokens) against the registry, preserving registration order when
// nothing was requested and request order otherwise.
func (s *Service) selectProviders(requested, fromTokens []string) []provider.Provider {
	ids := make([]string, 0, len(requested)+len(fromTokens))
	seen := map[string]bool{}
	add := func(id string) {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, id := range requested {
		add(id)
	}
	for _, id := range fromTokens {
		add(id)
	}
	if len(ids) == 0 {
		ids = s.registry.IDs()
	}

	var out []provider.Provider
	for _, id := range ids {
		if p, err := s.registry.Get(id); err == nil {
			out = append(out, p)
		}
	}
	return out
}

type fanResult struct {
	items []*model.NormalizedResult
	errs  []model.SearchError
}

// fanOut queries the api providers concurrently, bounded by the semaphore.
// Every provider contributes either results or exactly one provider-level
// error; item-level rejections are collected individually.
func (s *Service) fanOut(ctx context.Context, providers []provider.Provider, params provider.SearchParams, intent model.Intent, descriptors map[string]model.ProviderDescriptor) ([]*model.NormalizedResult, []model.SearchError) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []*model.NormalizedResult
		errs    []model.SearchError
	)

	for _, p := range providers {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(p provider.Provider) {
			defer wg.Done()
			defer s.sem.Release(1)

			res := s.queryProvider(ctx, p, params, intent, descriptors)

			mu.Lock()
			results = append(results, res.items...)
			errs = append(errs, res.errs...)
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return results, errs
}

func (s *Service) queryProvider(ctx context.Context, p provider.Provider, params provider.SearchParams, intent model.Intent, descriptors map[string]model.ProviderDescriptor) fanResult {
	id := p.Descriptor().ID
	pctx, cancel := context.WithTimeout(ctx, s.settings.ProviderTimeout)
	defer cancel()

	start := time.Now()
	payload, err := p.Search(pctx, params)
	elapsed := time.Since(start)

	if err == nil {
		var raws []model.RawResult
		raws, err = normalize.Payload(payload)
		if err == nil {
			s.tracker.RecordOutcome(id, true)
			s.tracker.RecordLatency(id, elapsed, true)
			return normalizeAll(id, raws, intent, descriptors)
		}
	}

	// A caller abort is not a provider failure: the request is being
	// discarded, so don't let it count toward the cooldown streak.
	if ctx.Err() != nil {
		return fanResult{errs: []model.SearchError{{Source: id, Message: err.Error()}}}
	}

	s.tracker.RecordOutcome(id, false)
	s.tracker.RecordLatency(id, elapsed, false)
	log.Printf("search: provider %s failed: %v", id, err)
	return fanResult{errs: []model.SearchError{{Source: id, Message: err.Error()}}}
}

func normalizeAll(id string, raws []model.RawResult, intent model.Intent, descriptors map[string]model.ProviderDescriptor) fanResult {
	var out fanResult
	for _, raw := range raws {
		if _, ok := raw["source"]; !ok {
			raw["source"] = id
		}
		n, err := normalize.Result(raw, descriptors)
		if err != nil {
			out.errs = append(out.errs, model.SearchError{Source: id, Message: err.Error()})
			continue
		}
		applyBoost(n, intent)
		out.items = append(out.items, n)
	}
	return out
}

// applyBoost bumps the relevance score for results matching the parsed
// intent and marks them boosted.
func applyBoost(n *model.NormalizedResult, intent model.Intent) {
	bonus := 0.0
	title := strings.ToLower(n.Title)
	for _, tok := range intent.Tokens {
		if strings.Contains(title, tok) {
			bonus += titleBoost
			break
		}
	}
	for _, want := range intent.Formats {
		if containsFold(n.Formats, want) {
			bonus += formatBoost
			break
		}
	}
	if intent.LicenseHint != "" && strings.Contains(strings.ToLower(n.License), intent.LicenseHint) {
		bonus += licenseBoost
	}
	if intent.FreeOnly && n.Price != nil && *n.Price == 0 {
		bonus += freeBoost
	}
	if bonus > 0 {
		n.Score += bonus
		n.Boosted = true
	}
}

// applyFilters drops ranked results that fail the effective facet filters.
func applyFilters(items []*model.RankedResult, f filters) []*model.RankedResult {
	if f.Format == "" && f.License == "" && f.Price == "" && f.TimeRange == "" {
		return items
	}
	var cutoff time.Time
	if m := timeRangePattern.FindStringSubmatch(f.TimeRange); m != nil {
		var days int
		fmt.Sscanf(m[1], "%d", &days)
		cutoff = time.Now().AddDate(0, 0, -days)
	}

	var out []*model.RankedResult
	for _, r := range items {
		if f.License != "" && !strings.Contains(strings.ToLower(r.License), f.License) {
			continue
		}
		if f.Format != "" && !containsFold(r.Formats, f.Format) {
			continue
		}
		switch f.Price {
		case "free":
			if r.Price == nil || *r.Price != 0 {
				continue
			}
		case "paid":
			if r.Price == nil || *r.Price <= 0 {
				continue
			}
		}
		if !cutoff.IsZero() {
			stamp := r.PublishedAt
			if stamp == nil {
				stamp = r.UpdatedAt
			}
			if stamp == nil || stamp.Before(cutoff) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func buildQuickLinks(selected []provider.Provider, q string) []model.QuickLink {
	links := []model.QuickLink{}
	for _, p := range selected {
		d := p.Descriptor()
		if d.SearchURLTemplate == "" {
			continue
		}
		links = append(links, model.QuickLink{
			Source:     d.ID,
			Label:      d.Label,
			IconURL:    d.IconURL,
			Mode:       d.Mode,
			AssetTypes: d.AssetTypes,
			URL:        provider.BuildSearchURL(d.SearchURLTemplate, q),
		})
	}
	return links
}

// buildLinkResults synthesizes a normalized "search on X" entry for every
// link-only provider so link platforms still show up in result lists. The
// caller decides which entries the active tab displays.
func buildLinkResults(q string, links []model.QuickLink, descriptors map[string]model.ProviderDescriptor) []*model.NormalizedResult {
	var out []*model.NormalizedResult
	for _, link := range links {
		if link.Mode != model.ModeLink {
			continue
		}
		asset := model.AssetModel3D
		if len(link.AssetTypes) > 0 {
			asset = link.AssetTypes[0]
		}
		raw := model.RawResult{
			"source":    link.Source,
			"id":        "link-" + link.Source,
			"title":     fmt.Sprintf("Search %q on %s", q, link.Label),
			"url":       link.URL,
			"thumbnail": link.IconURL,
			"author":    "Direct platform search",
			"assetType": string(asset),
			"tags":      []any{"external-search"},
		}
		n, err := normalize.Result(raw, descriptors)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func buildStatus(selected []provider.Provider, errorBySource map[string]bool) []model.ProviderStatus {
	status := []model.ProviderStatus{}
	for _, p := range selected {
		d := p.Descriptor()
		state := "warn"
		switch {
		case d.Mode == model.ModeLink:
			state = "link"
		case errorBySource[d.ID]:
			state = "error"
		case p.Configured() || d.Public:
			state = "ok"
		}
		status = append(status, model.ProviderStatus{
			Source:     d.Label,
			ID:         d.ID,
			Mode:       d.Mode,
			State:      state,
			Supports:   d.Supports,
			AssetTypes: d.AssetTypes,
		})
	}
	return status
}

func chipsOrEmpty(chips []model.QueryChip) []model.QueryChip {
	if chips == nil {
		return []model.QueryChip{}
	}
	return chips
}

func cacheKey(p cacheKeyPayload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return "search:" + string(b), nil
}
