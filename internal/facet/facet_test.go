package facet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

func f(v float64) *float64 { return &v }

func TestBuild_PriceBucketsSumToTotal(t *testing.T) {
	items := []*model.NormalizedResult{
		{Source: "a", Price: f(0)},
		{Source: "a", Price: f(12.5)},
		{Source: "b"},
		{Source: "b", Price: f(0)},
		{Source: "c", Price: f(3)},
	}

	facets := Build(items)
	assert.Equal(t, 2, facets.Price.Free)
	assert.Equal(t, 2, facets.Price.Paid)
	assert.Equal(t, 1, facets.Price.Unknown)
	assert.Equal(t, len(items), facets.Price.Free+facets.Price.Paid+facets.Price.Unknown)
}

func TestBuild_SourcePrefersLabel(t *testing.T) {
	items := []*model.NormalizedResult{
		{Source: "sketchfab", SourceLabel: "Sketchfab"},
		{Source: "sketchfab", SourceLabel: "Sketchfab"},
		{Source: "mmf"},
	}

	facets := Build(items)
	assert.Equal(t, 2, facets.Sources["Sketchfab"])
	assert.Equal(t, 1, facets.Sources["mmf"])
}

func TestBuild_TimeRangeCumulative(t *testing.T) {
	ago := func(d time.Duration) *time.Time {
		t := time.Now().Add(-d)
		return &t
	}
	items := []*model.NormalizedResult{
		{Source: "a", PublishedAt: ago(2 * 24 * time.Hour)},
		{Source: "a", PublishedAt: ago(20 * 24 * time.Hour)},
		{Source: "a", PublishedAt: ago(200 * 24 * time.Hour)},
		{Source: "a", PublishedAt: ago(800 * 24 * time.Hour)},
		{Source: "a"},
	}

	facets := Build(items)
	assert.Equal(t, 1, facets.TimeRange.Last7)
	assert.Equal(t, 2, facets.TimeRange.Last30)
	assert.Equal(t, 3, facets.TimeRange.Last365)
	assert.Equal(t, 2, facets.TimeRange.Older)
	assert.Equal(t, 1, facets.TimeRange.Unknown)
}

func TestBuild_LicenseAndFormats(t *testing.T) {
	items := []*model.NormalizedResult{
		{Source: "a", License: "CC-BY", Formats: []string{"stl", "obj"}},
		{Source: "a", Formats: []string{"stl"}},
	}

	facets := Build(items)
	assert.Equal(t, 1, facets.Licenses["CC-BY"])
	assert.Equal(t, 1, facets.Licenses["unknown"])
	assert.Equal(t, 2, facets.Formats["stl"])
	assert.Equal(t, 1, facets.Formats["obj"])
}

func TestMatchesTab(t *testing.T) {
	laser := &model.NormalizedResult{AssetType: model.AssetLaser2D}
	assert.True(t, MatchesTab(laser, "laser"))
	assert.False(t, MatchesTab(laser, "models"))

	// Empty asset type defaults to model3d; unknown tab falls back to models.
	blank := &model.NormalizedResult{}
	assert.True(t, MatchesTab(blank, "models"))
	assert.True(t, MatchesTab(blank, "bogus-tab"))
}

func TestTabCounts(t *testing.T) {
	items := []*model.NormalizedResult{
		{AssetType: model.AssetModel3D},
		{AssetType: model.AssetModel3D},
		{AssetType: model.AssetLaser2D},
		{AssetType: model.AssetCAD},
	}

	counts := TabCounts(items)
	assert.Equal(t, 2, counts["models"])
	assert.Equal(t, 1, counts["laser"])
	assert.Equal(t, 1, counts["cad"])
	assert.Equal(t, 0, counts["cnc"])
	assert.Equal(t, 0, counts["scans"])
}
