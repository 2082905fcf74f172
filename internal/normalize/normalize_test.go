package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

func descriptors() map[string]model.ProviderDescriptor {
	return map[string]model.ProviderDescriptor{
		"sketchfab": {
			ID:      "sketchfab",
			Label:   "Sketchfab",
			IconURL: "https://example.com/sf.png",
		},
	}
}

func TestResult_FullItem(t *testing.T) {
	raw := model.RawResult{
		"source":    "sketchfab",
		"id":        "abc123",
		"title":     "  Gear Box  ",
		"url":       "https://sketchfab.com/models/abc123",
		"thumbnail": "https://img.example.com/t.jpg",
		"author":    "maker",
		"meta": map[string]any{
			"likes":       float64(12),
			"views":       float64(340),
			"license":     "CC-BY",
			"price":       float64(0),
			"formats":     []any{"stl", "", "obj"},
			"publishedAt": "2026-04-01T10:00:00Z",
		},
		"score": float64(3),
	}

	n, err := Result(raw, descriptors())
	require.NoError(t, err)

	assert.Equal(t, "abc123", n.ID)
	assert.Equal(t, "Gear Box", n.Title)
	assert.Equal(t, "maker", n.CreatorName)
	require.NotNil(t, n.Stats.Likes)
	assert.Equal(t, float64(12), *n.Stats.Likes)
	assert.Nil(t, n.Stats.Downloads)
	require.NotNil(t, n.Price)
	assert.Equal(t, float64(0), *n.Price)
	assert.Equal(t, []string{"stl", "obj"}, n.Formats)
	assert.Equal(t, "Sketchfab", n.SourceLabel)
	assert.Equal(t, "https://example.com/sf.png", n.SourceIconURL)
	require.NotNil(t, n.PublishedAt)
	assert.Equal(t, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), *n.PublishedAt)
}

func TestResult_MissingURL(t *testing.T) {
	raw := model.RawResult{"source": "x", "id": "1", "title": "thing"}

	_, err := Result(raw, nil)
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestResult_NonHTTPURL(t *testing.T) {
	raw := model.RawResult{"source": "x", "id": "1", "title": "thing", "url": "ftp://example.com/a"}

	_, err := Result(raw, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "invalid url")
}

func TestResult_NegativeStatsDropped(t *testing.T) {
	raw := model.RawResult{
		"source": "x", "id": "1", "title": "thing",
		"url":  "https://example.com/a",
		"meta": map[string]any{"likes": float64(-4), "views": "not-a-number"},
	}

	n, err := Result(raw, nil)
	require.NoError(t, err)
	assert.Nil(t, n.Stats.Likes)
	assert.Nil(t, n.Stats.Views)
}

func TestResult_IDFallback(t *testing.T) {
	raw := model.RawResult{"source": "x", "title": "thing", "url": "https://example.com/a"}

	n, err := Result(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "x:https://example.com/a", n.ID)
}

func TestResult_AssetTypeAliases(t *testing.T) {
	for input, want := range map[string]model.AssetType{
		"laser":      model.AssetLaser2D,
		"laser2d":    model.AssetLaser2D,
		"cnc":        model.AssetCNC,
		"scan":       model.AssetScan3D,
		"openaccess": model.AssetScan3D,
		"cad":        model.AssetCAD,
		"whatever":   model.AssetModel3D,
		"":           model.AssetModel3D,
	} {
		raw := model.RawResult{
			"source": "x", "id": "1", "title": "t",
			"url": "https://example.com/a", "assetType": input,
		}
		n, err := Result(raw, nil)
		require.NoError(t, err)
		assert.Equal(t, want, n.AssetType, "assetType %q", input)
	}
}

func TestResult_InvalidDateDropped(t *testing.T) {
	raw := model.RawResult{
		"source": "x", "id": "1", "title": "t", "url": "https://example.com/a",
		"meta": map[string]any{"publishedAt": "not a date"},
	}

	n, err := Result(raw, nil)
	require.NoError(t, err)
	assert.Nil(t, n.PublishedAt)
}

func TestResult_Idempotent(t *testing.T) {
	raw := model.RawResult{
		"source": "sketchfab",
		"id":     "abc",
		"title":  "Widget",
		"url":    "https://example.com/w",
		"author": "maker",
		"meta": map[string]any{
			"likes":       float64(5),
			"downloads":   float64(9),
			"price":       float64(2.5),
			"currency":    "USD",
			"formats":     []any{"stl"},
			"tags":        []any{"tool"},
			"publishedAt": "2026-01-15T00:00:00Z",
		},
		"score": float64(7),
	}

	first, err := Result(raw, descriptors())
	require.NoError(t, err)

	data, err := json.Marshal(first)
	require.NoError(t, err)
	var roundTripped model.RawResult
	require.NoError(t, json.Unmarshal(data, &roundTripped))

	second, err := Result(roundTripped, descriptors())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPayload_List(t *testing.T) {
	items, err := Payload([]any{map[string]any{"id": "1"}})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPayload_NonList(t *testing.T) {
	_, err := Payload(map[string]any{"results": []any{}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "must be a list")
}
