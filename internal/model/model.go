// Package model holds the shared data types exchanged between the search
// orchestrator, the provider adapters, and the HTTP surface.
package model

import "time"

// RawResult is the untyped payload an adapter returns for a single item.
// It carries no guarantees; the normalizer turns it into a NormalizedResult
// or rejects it.
type RawResult map[string]any

// AssetType classifies what kind of fabrication asset a result is.
type AssetType string

const (
	AssetModel3D AssetType = "model3d"
	AssetLaser2D AssetType = "laser2d"
	AssetCNC     AssetType = "cnc"
	AssetScan3D  AssetType = "scan3d"
	AssetCAD     AssetType = "cad"
)

// ProviderMode distinguishes retrieval providers from link-only ones.
type ProviderMode string

const (
	ModeAPI  ProviderMode = "api"
	ModeLink ProviderMode = "link"
)

// Capabilities declares what a provider's payloads can be trusted to carry.
type Capabilities struct {
	Search  bool `json:"search"`
	Stats   bool `json:"stats"`
	License bool `json:"license"`
	Formats bool `json:"formats"`
}

// ProviderDescriptor is the static identity of a provider. One descriptor
// per provider id, immutable after registration.
type ProviderDescriptor struct {
	ID                string       `json:"id"`
	Label             string       `json:"label"`
	Mode              ProviderMode `json:"mode"`
	Homepage          string       `json:"homepage,omitempty"`
	IconURL           string       `json:"iconUrl,omitempty"`
	SearchURLTemplate string       `json:"searchUrlTemplate,omitempty"`
	Public            bool         `json:"isPublic"`
	Notes             string       `json:"notes,omitempty"`
	AssetTypes        []AssetType  `json:"assetTypes"`
	Supports          Capabilities `json:"supports"`
}

// Stats carries per-item popularity counters. A nil field means the provider
// did not report that counter; zero means it reported zero.
type Stats struct {
	Likes     *float64 `json:"likes"`
	Downloads *float64 `json:"downloads"`
	Views     *float64 `json:"views"`
}

// NormalizedResult is the canonical result schema. Instances are only
// produced by the normalizer; required fields are always populated and URL
// is always a well-formed http(s) URI.
type NormalizedResult struct {
	ID            string     `json:"id"`
	Source        string     `json:"source"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Thumbnail     string     `json:"thumbnail,omitempty"`
	CreatorName   string     `json:"creatorName,omitempty"`
	CreatorURL    string     `json:"creatorUrl,omitempty"`
	Stats         Stats      `json:"stats"`
	AssetType     AssetType  `json:"assetType"`
	License       string     `json:"license,omitempty"`
	Price         *float64   `json:"price,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	Tags          []string   `json:"tags"`
	Formats       []string   `json:"formats"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
	SourceLabel   string     `json:"sourceLabel,omitempty"`
	SourceIconURL string     `json:"sourceIconUrl,omitempty"`
	Boosted       bool       `json:"boosted,omitempty"`
	Score         float64    `json:"score"`
}

// RankedResult is a NormalizedResult after cross-provider merging.
type RankedResult struct {
	NormalizedResult
	AlsoFoundOn    []string          `json:"alsoFoundOn,omitempty"`
	SourceVariants map[string]string `json:"sourceVariants,omitempty"`
}

// Intent is the structured interpretation of the plain query text.
type Intent struct {
	ExpandedQuery string   `json:"expandedQuery"`
	Tokens        []string `json:"tokens"`
	Formats       []string `json:"formats"`
	LicenseHint   string   `json:"licenseHint,omitempty"`
	FreeOnly      bool     `json:"freeOnly"`
}

// QueryChip is a user-facing description of one extracted advanced filter.
type QueryChip struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SearchRequest is the normalized inbound search request. Limit and Page are
// clamped server-side regardless of what the client sent.
type SearchRequest struct {
	Query     string
	Limit     int
	Page      int
	Sort      string
	Tab       string
	Sources   []string
	License   string
	Format    string
	Price     string
	TimeRange string
}

// SearchError records one provider-level or item-level failure. The request
// as a whole still succeeds.
type SearchError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// ProviderStatus summarizes one provider's participation in a response.
// State is one of ok, warn, error, link.
type ProviderStatus struct {
	Source     string       `json:"source"`
	ID         string       `json:"id"`
	Mode       ProviderMode `json:"mode"`
	State      string       `json:"state"`
	Supports   Capabilities `json:"supports"`
	AssetTypes []AssetType  `json:"assetTypes"`
}

// QuickLink is a deep-link into a provider's own search page.
type QuickLink struct {
	Source     string       `json:"source"`
	Label      string       `json:"label"`
	IconURL    string       `json:"iconUrl,omitempty"`
	Mode       ProviderMode `json:"kind"`
	AssetTypes []AssetType  `json:"assetTypes"`
	URL        string       `json:"url"`
}

// PriceFacet buckets results by price. Free + Paid + Unknown equals the
// number of faceted results.
type PriceFacet struct {
	Free    int `json:"free"`
	Paid    int `json:"paid"`
	Unknown int `json:"unknown"`
}

// TimeFacet buckets results by recency. The day windows are cumulative.
type TimeFacet struct {
	Last7   int `json:"7d"`
	Last30  int `json:"30d"`
	Last365 int `json:"365d"`
	Older   int `json:"older"`
	Unknown int `json:"unknown"`
}

// Facets aggregates counts over one result set.
type Facets struct {
	Sources   map[string]int `json:"sources"`
	Licenses  map[string]int `json:"licenses"`
	Formats   map[string]int `json:"formats"`
	Price     PriceFacet     `json:"price"`
	TimeRange TimeFacet      `json:"timeRange"`
}

// SearchResponse is the full search payload returned to clients.
type SearchResponse struct {
	RequestID      string              `json:"requestId"`
	Query          string              `json:"query"`
	ExpandedQuery  string              `json:"expandedQuery"`
	Intent         Intent              `json:"intent"`
	QueryChips     []QueryChip         `json:"queryChips"`
	Page           int                 `json:"page"`
	Limit          int                 `json:"limit"`
	Sort           string              `json:"sort"`
	Tab            string              `json:"tab"`
	Sources        []string            `json:"sources"`
	Links          []string            `json:"links"`
	Count          int                 `json:"count"`
	Results        []*RankedResult     `json:"results"`
	LinkResults    []*NormalizedResult `json:"linkResults"`
	QuickLinks     []QuickLink         `json:"quickLinks"`
	Facets         Facets              `json:"facets"`
	Errors         []SearchError       `json:"errors"`
	ProviderStatus []ProviderStatus    `json:"providerStatus"`
	TabCounts      map[string]int      `json:"tabCounts"`
	Cached         bool                `json:"cached"`
	TookMs         int64               `json:"tookMs"`
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Source    string `json:"source,omitempty"`
}

// SuggestionGroups is the grouped autocomplete payload.
type SuggestionGroups struct {
	Popular []Suggestion `json:"popular"`
	Recent  []Suggestion `json:"recent"`
	Items   []Suggestion `json:"items"`
}

// ErrorResponse is the JSON error envelope used by all handlers.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one request-level error.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
