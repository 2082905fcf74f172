package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

// Cults queries the Cults3D GraphQL API with basic auth. The APIKey option
// carries "user:password".
type Cults struct {
	opts Options
}

// NewCults creates the Cults3D adapter.
func NewCults(opts Options) *Cults {
	return &Cults{opts: opts}
}

func (c *Cults) Descriptor() model.ProviderDescriptor {
	notes := "needs cults basic auth (api_key as user:pass)"
	if c.opts.APIKey != "" {
		notes = "basic auth set"
	}
	return model.ProviderDescriptor{
		ID:                "cults",
		Label:             "Cults3D",
		Mode:              model.ModeAPI,
		Homepage:          "https://cults3d.com",
		IconURL:           "https://www.google.com/s2/favicons?domain=cults3d.com&sz=64",
		SearchURLTemplate: "https://cults3d.com/en/search?q={q}",
		Public:            false,
		Notes:             notes,
		AssetTypes:        []model.AssetType{model.AssetModel3D},
		Supports:          model.Capabilities{Search: true, Stats: true, License: true, Formats: false},
	}
}

func (c *Cults) Configured() bool {
	return strings.Contains(c.opts.APIKey, ":")
}

func (c *Cults) apiBase() string {
	if c.opts.APIBase != "" {
		return c.opts.APIBase
	}
	return "https://cults3d.com/graphql"
}

type cultsCreation struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	URL            string  `json:"url"`
	LikesCount     float64 `json:"likesCount"`
	DownloadsCount float64 `json:"downloadsCount"`
	PublishedAt    string  `json:"publishedAt"`
	Price          struct {
		Cents    float64 `json:"cents"`
		Currency string  `json:"currency"`
	} `json:"price"`
	Illustration struct {
		ImageURL string `json:"imageUrl"`
	} `json:"illustration"`
	Creator struct {
		Nick string `json:"nick"`
		URL  string `json:"url"`
	} `json:"creator"`
}

func (c *Cults) Search(ctx context.Context, params SearchParams) (any, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("cults: basic auth not set")
	}

	gql := fmt.Sprintf(`query($q: String!) {
  creationsSearch(query: $q, limit: %d) {
    id name url likesCount downloadsCount publishedAt
    price { cents currency }
    illustration { imageUrl }
    creator { nick url }
  }
}`, params.Limit)
	body := url.Values{
		"query":     {gql},
		"variables": {fmt.Sprintf(`{"q":%q}`, params.Query)},
	}.Encode()

	headers := http.Header{}
	headers.Set("Content-Type", "application/x-www-form-urlencoded")
	headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.opts.APIKey)))

	var payload struct {
		Data struct {
			CreationsSearch []cultsCreation `json:"creationsSearch"`
		} `json:"data"`
	}
	if err := fetchJSON(ctx, http.MethodPost, c.apiBase(), headers, body, &payload); err != nil {
		return nil, fmt.Errorf("cults: %w", err)
	}

	results := make([]model.RawResult, 0, len(payload.Data.CreationsSearch))
	for _, it := range payload.Data.CreationsSearch {
		if len(results) >= params.Limit {
			break
		}
		meta := map[string]any{
			"likes":       it.LikesCount,
			"downloads":   it.DownloadsCount,
			"publishedAt": it.PublishedAt,
			"creatorUrl":  it.Creator.URL,
			"price":       it.Price.Cents / 100,
			"currency":    it.Price.Currency,
		}
		results = append(results, model.RawResult{
			"source":    "cults",
			"id":        it.ID,
			"title":     it.Name,
			"url":       it.URL,
			"thumbnail": it.Illustration.ImageURL,
			"author":    it.Creator.Nick,
			"meta":      meta,
			"score":     it.LikesCount + it.DownloadsCount,
		})
	}
	return results, nil
}
