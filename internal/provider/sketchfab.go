package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

// Sketchfab searches the public Sketchfab v3 API. Works without a token;
// a token raises rate limits.
type Sketchfab struct {
	opts Options
}

// NewSketchfab creates the Sketchfab adapter.
func NewSketchfab(opts Options) *Sketchfab {
	return &Sketchfab{opts: opts}
}

func (s *Sketchfab) Descriptor() model.ProviderDescriptor {
	notes := "public search (token optional)"
	if s.opts.APIKey != "" {
		notes = "token set"
	}
	return model.ProviderDescriptor{
		ID:                "sketchfab",
		Label:             "Sketchfab",
		Mode:              model.ModeAPI,
		Homepage:          "https://sketchfab.com",
		IconURL:           "https://www.google.com/s2/favicons?domain=sketchfab.com&sz=64",
		SearchURLTemplate: "https://sketchfab.com/search?q={q}&type=models",
		Public:            true,
		Notes:             notes,
		AssetTypes:        []model.AssetType{model.AssetModel3D, model.AssetScan3D},
		Supports:          model.Capabilities{Search: true, Stats: true, License: true, Formats: false},
	}
}

func (s *Sketchfab) Configured() bool {
	// Public search works without a token.
	return true
}

func (s *Sketchfab) apiBase() string {
	if s.opts.APIBase != "" {
		return s.opts.APIBase
	}
	return "https://api.sketchfab.com/v3/search"
}

type sketchfabModel struct {
	UID         string  `json:"uid"`
	Name        string  `json:"name"`
	ViewerURL   string  `json:"viewerUrl"`
	LikeCount   float64 `json:"likeCount"`
	ViewCount   float64 `json:"viewCount"`
	PublishedAt string  `json:"publishedAt"`
	CreatedAt   string  `json:"createdAt"`
	License     struct {
		Label string `json:"label"`
	} `json:"license"`
	User struct {
		DisplayName string `json:"displayName"`
		Username    string `json:"username"`
		ProfileURL  string `json:"profileUrl"`
	} `json:"user"`
	Thumbnails struct {
		Images []struct {
			URL   string `json:"url"`
			Width int    `json:"width"`
		} `json:"images"`
	} `json:"thumbnails"`
}

func (m *sketchfabModel) bestThumb() string {
	best := ""
	bestWidth := -1
	for _, img := range m.Thumbnails.Images {
		if img.Width > bestWidth {
			best, bestWidth = img.URL, img.Width
		}
	}
	return best
}

func (s *Sketchfab) Search(ctx context.Context, params SearchParams) (any, error) {
	perPage := params.Limit
	if perPage > 24 {
		perPage = 24
	}

	v := url.Values{}
	v.Set("type", "models")
	v.Set("q", params.Query)
	v.Set("per_page", fmt.Sprintf("%d", perPage))

	headers := http.Header{}
	if s.opts.APIKey != "" {
		headers.Set("Authorization", "Token "+s.opts.APIKey)
	}

	var page struct {
		Results []sketchfabModel `json:"results"`
		Next    string           `json:"next"`
	}
	if err := fetchJSON(ctx, http.MethodGet, s.apiBase()+"?"+v.Encode(), headers, "", &page); err != nil {
		return nil, fmt.Errorf("sketchfab: %w", err)
	}

	// Sketchfab uses cursor pagination; walk "next" links for deeper pages.
	steps := params.Page - 1
	if steps > 3 {
		steps = 3
	}
	for steps > 0 && page.Next != "" {
		next := page.Next
		page.Results = nil
		page.Next = ""
		if err := fetchJSON(ctx, http.MethodGet, next, headers, "", &page); err != nil {
			return nil, fmt.Errorf("sketchfab: %w", err)
		}
		steps--
	}

	results := make([]model.RawResult, 0, len(page.Results))
	for _, m := range page.Results {
		if len(results) >= params.Limit {
			break
		}
		publicURL := m.ViewerURL
		if publicURL == "" && m.UID != "" {
			publicURL = "https://sketchfab.com/models/" + m.UID
		}
		author := m.User.DisplayName
		if author == "" {
			author = m.User.Username
		}
		publishedAt := m.PublishedAt
		if publishedAt == "" {
			publishedAt = m.CreatedAt
		}
		results = append(results, model.RawResult{
			"source":    "sketchfab",
			"id":        m.UID,
			"title":     m.Name,
			"url":       publicURL,
			"thumbnail": m.bestThumb(),
			"author":    author,
			"meta": map[string]any{
				"likes":       m.LikeCount,
				"views":       m.ViewCount,
				"license":     m.License.Label,
				"creatorUrl":  m.User.ProfileURL,
				"publishedAt": publishedAt,
			},
			"score": m.LikeCount + m.ViewCount*0.01,
		})
	}
	return results, nil
}
