package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

// MyMiniFactory queries the MyMiniFactory v2 search API.
type MyMiniFactory struct {
	opts Options
}

// NewMyMiniFactory creates the MyMiniFactory adapter.
func NewMyMiniFactory(opts Options) *MyMiniFactory {
	return &MyMiniFactory{opts: opts}
}

func (m *MyMiniFactory) Descriptor() model.ProviderDescriptor {
	notes := "needs myminifactory api_key"
	if m.opts.APIKey != "" {
		notes = "api key set"
	}
	return model.ProviderDescriptor{
		ID:                "mmf",
		Label:             "MyMiniFactory",
		Mode:              model.ModeAPI,
		Homepage:          "https://www.myminifactory.com",
		IconURL:           "https://www.google.com/s2/favicons?domain=myminifactory.com&sz=64",
		SearchURLTemplate: "https://www.myminifactory.com/search/?query={q}",
		Public:            false,
		Notes:             notes,
		AssetTypes:        []model.AssetType{model.AssetModel3D},
		Supports:          model.Capabilities{Search: true, Stats: true, License: false, Formats: false},
	}
}

func (m *MyMiniFactory) Configured() bool {
	return m.opts.APIKey != ""
}

func (m *MyMiniFactory) apiBase() string {
	if m.opts.APIBase != "" {
		return m.opts.APIBase
	}
	return "https://www.myminifactory.com/api/v2/search"
}

type mmfItem struct {
	ID          any     `json:"id"`
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Visits      float64 `json:"visits"`
	Likes       float64 `json:"likes"`
	PublishedAt string  `json:"published_at"`
	Cover       struct {
		URL string `json:"url"`
	} `json:"cover"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Owner struct {
		Username string `json:"username"`
		Name     string `json:"name"`
	} `json:"owner"`
}

func (it *mmfItem) thumbnail() string {
	if it.Cover.URL != "" {
		return it.Cover.URL
	}
	if len(it.Images) > 0 {
		return it.Images[0].URL
	}
	return ""
}

func (it *mmfItem) author() string {
	if it.Owner.Username != "" {
		return it.Owner.Username
	}
	return it.Owner.Name
}

func (m *MyMiniFactory) Search(ctx context.Context, params SearchParams) (any, error) {
	if m.opts.APIKey == "" {
		return nil, fmt.Errorf("mmf: api_key not set")
	}

	perPage := params.Limit
	if perPage > 30 {
		perPage = 30
	}
	v := url.Values{}
	v.Set("q", params.Query)
	v.Set("page", fmt.Sprintf("%d", params.Page))
	v.Set("per_page", fmt.Sprintf("%d", perPage))
	v.Set("key", m.opts.APIKey)

	var payload struct {
		Items []mmfItem `json:"items"`
	}
	if err := fetchJSON(ctx, http.MethodGet, m.apiBase()+"?"+v.Encode(), nil, "", &payload); err != nil {
		return nil, fmt.Errorf("mmf: %w", err)
	}

	results := make([]model.RawResult, 0, len(payload.Items))
	for i := range payload.Items {
		it := &payload.Items[i]
		if len(results) >= params.Limit {
			break
		}
		results = append(results, model.RawResult{
			"source":    "mmf",
			"id":        fmt.Sprintf("%v", it.ID),
			"title":     it.Name,
			"url":       it.URL,
			"thumbnail": it.thumbnail(),
			"author":    it.author(),
			"meta": map[string]any{
				"likes":       it.Likes,
				"visits":      it.Visits,
				"publishedAt": it.PublishedAt,
			},
			"score": it.Likes + it.Visits*0.01,
		})
	}
	return results, nil
}
