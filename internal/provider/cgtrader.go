package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

// CGTrader queries the CGTrader v1 models API with a bearer token.
type CGTrader struct {
	opts Options
}

// NewCGTrader creates the CGTrader adapter.
func NewCGTrader(opts Options) *CGTrader {
	return &CGTrader{opts: opts}
}

func (c *CGTrader) Descriptor() model.ProviderDescriptor {
	notes := "needs cgtrader bearer token"
	if c.opts.APIKey != "" {
		notes = "bearer token set"
	}
	return model.ProviderDescriptor{
		ID:                "cgtrader",
		Label:             "CGTrader",
		Mode:              model.ModeAPI,
		Homepage:          "https://www.cgtrader.com",
		IconURL:           "https://www.google.com/s2/favicons?domain=cgtrader.com&sz=64",
		SearchURLTemplate: "https://www.cgtrader.com/3d-models?keywords={q}",
		Public:            false,
		Notes:             notes,
		AssetTypes:        []model.AssetType{model.AssetModel3D, model.AssetCAD},
		Supports:          model.Capabilities{Search: true, Stats: false, License: true, Formats: true},
	}
}

func (c *CGTrader) Configured() bool {
	return c.opts.APIKey != ""
}

func (c *CGTrader) apiBase() string {
	if c.opts.APIBase != "" {
		return c.opts.APIBase
	}
	return "https://api.cgtrader.com/v1/models"
}

type cgtraderModel struct {
	ID           any      `json:"id"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Rating       float64  `json:"rating"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	License      string   `json:"license"`
	Formats      []string `json:"formats"`
	PublishedAt  string   `json:"published_at"`
	PreviewImage string   `json:"preview_image"`
	Author       struct {
		Username string `json:"username"`
	} `json:"author"`
}

func (c *CGTrader) Search(ctx context.Context, params SearchParams) (any, error) {
	if c.opts.APIKey == "" {
		return nil, fmt.Errorf("cgtrader: bearer token not set")
	}

	v := url.Values{}
	v.Set("keywords", params.Query)
	v.Set("page", fmt.Sprintf("%d", params.Page))

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.opts.APIKey)

	var payload struct {
		Models []cgtraderModel `json:"models"`
	}
	if err := fetchJSON(ctx, http.MethodGet, c.apiBase()+"?"+v.Encode(), headers, "", &payload); err != nil {
		return nil, fmt.Errorf("cgtrader: %w", err)
	}

	results := make([]model.RawResult, 0, len(payload.Models))
	for _, it := range payload.Models {
		if len(results) >= params.Limit {
			break
		}
		results = append(results, model.RawResult{
			"source":    "cgtrader",
			"id":        fmt.Sprintf("%v", it.ID),
			"title":     it.Title,
			"url":       it.URL,
			"thumbnail": it.PreviewImage,
			"author":    it.Author.Username,
			"assetType": "cad",
			"meta": map[string]any{
				"rating":      it.Rating,
				"price":       it.Price,
				"currency":    it.Currency,
				"license":     it.License,
				"formats":     it.Formats,
				"publishedAt": it.PublishedAt,
			},
			"score": it.Rating * 10,
		})
	}
	return results, nil
}
