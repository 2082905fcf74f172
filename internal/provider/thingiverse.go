package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

// Thingiverse queries the official Thingiverse API. Requires an app token.
type Thingiverse struct {
	opts Options
}

// NewThingiverse creates the Thingiverse adapter.
func NewThingiverse(opts Options) *Thingiverse {
	return &Thingiverse{opts: opts}
}

func (t *Thingiverse) Descriptor() model.ProviderDescriptor {
	notes := "needs thingiverse api_key"
	if t.opts.APIKey != "" {
		notes = "token set"
	}
	return model.ProviderDescriptor{
		ID:                "thingiverse",
		Label:             "Thingiverse",
		Mode:              model.ModeAPI,
		Homepage:          "https://www.thingiverse.com",
		IconURL:           "https://www.google.com/s2/favicons?domain=thingiverse.com&sz=64",
		SearchURLTemplate: "https://www.thingiverse.com/search?q={q}",
		Public:            false,
		Notes:             notes,
		AssetTypes:        []model.AssetType{model.AssetModel3D},
		Supports:          model.Capabilities{Search: true, Stats: true, License: false, Formats: false},
	}
}

func (t *Thingiverse) Configured() bool {
	return t.opts.APIKey != ""
}

func (t *Thingiverse) apiBase() string {
	if t.opts.APIBase != "" {
		return t.opts.APIBase
	}
	return "https://api.thingiverse.com/search"
}

type thingiverseThing struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	PublicURL    string  `json:"public_url"`
	Thumbnail    string  `json:"thumbnail"`
	LikeCount    float64 `json:"like_count"`
	CollectCount float64 `json:"collect_count"`
	CreatedAt    string  `json:"created_at"`
	ModifiedAt   string  `json:"modified_at"`
	Creator      struct {
		Name      string `json:"name"`
		PublicURL string `json:"public_url"`
	} `json:"creator"`
}

func (t *Thingiverse) Search(ctx context.Context, params SearchParams) (any, error) {
	if t.opts.APIKey == "" {
		return nil, fmt.Errorf("thingiverse: api_key not set")
	}

	perPage := params.Limit
	if perPage > 30 {
		perPage = 30
	}
	v := url.Values{}
	v.Set("access_token", t.opts.APIKey)
	v.Set("page", fmt.Sprintf("%d", params.Page))
	v.Set("per_page", fmt.Sprintf("%d", perPage))

	endpoint := t.apiBase() + "/" + url.PathEscape(params.Query) + "?" + v.Encode()

	var payload struct {
		Hits []thingiverseThing `json:"hits"`
	}
	if err := fetchJSON(ctx, http.MethodGet, endpoint, nil, "", &payload); err != nil {
		return nil, fmt.Errorf("thingiverse: %w", err)
	}

	qLower := strings.ToLower(params.Query)
	results := make([]model.RawResult, 0, len(payload.Hits))
	for _, it := range payload.Hits {
		if len(results) >= params.Limit {
			break
		}
		// The search endpoint can return loosely matched hits; keep the
		// ones that actually mention a query token.
		if qLower != "" && !titleMatches(it.Name, qLower) {
			continue
		}
		results = append(results, model.RawResult{
			"source":    "thingiverse",
			"id":        fmt.Sprintf("%d", it.ID),
			"title":     it.Name,
			"url":       it.PublicURL,
			"thumbnail": it.Thumbnail,
			"author":    it.Creator.Name,
			"meta": map[string]any{
				"likes":      it.LikeCount,
				"collects":   it.CollectCount,
				"creatorUrl": it.Creator.PublicURL,
				"createdAt":  it.CreatedAt,
				"updatedAt":  it.ModifiedAt,
			},
			"score": it.LikeCount + it.CollectCount,
		})
	}
	return results, nil
}

func titleMatches(title, qLower string) bool {
	lower := strings.ToLower(title)
	for _, tok := range strings.Fields(qLower) {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
