// Package facet derives aggregate counts from a result set. Pure
// aggregation; inputs are never mutated.
package facet

import (
	"time"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

const day = 24 * time.Hour

// Build computes per-source, per-license, per-format, price, and recency
// counts over one result set.
func Build(items []*model.NormalizedResult) model.Facets {
	f := model.Facets{
		Sources:  map[string]int{},
		Licenses: map[string]int{},
		Formats:  map[string]int{},
	}
	now := time.Now()

	for _, it := range items {
		source := it.SourceLabel
		if source == "" {
			source = it.Source
		}
		if source == "" {
			source = "unknown"
		}
		f.Sources[source]++

		license := it.License
		if license == "" {
			license = "unknown"
		}
		f.Licenses[license]++

		for _, format := range it.Formats {
			f.Formats[format]++
		}

		switch {
		case it.Price != nil && *it.Price == 0:
			f.Price.Free++
		case it.Price != nil && *it.Price > 0:
			f.Price.Paid++
		default:
			f.Price.Unknown++
		}

		stamp := it.PublishedAt
		if stamp == nil {
			stamp = it.UpdatedAt
		}
		switch {
		case stamp == nil:
			f.TimeRange.Unknown++
		case now.Sub(*stamp) <= 7*day:
			f.TimeRange.Last7++
			f.TimeRange.Last30++
			f.TimeRange.Last365++
		case now.Sub(*stamp) <= 30*day:
			f.TimeRange.Last30++
			f.TimeRange.Last365++
		case now.Sub(*stamp) <= 365*day:
			f.TimeRange.Last365++
			f.TimeRange.Older++
		default:
			f.TimeRange.Older++
		}
	}
	return f
}

// tabAssets maps each category tab to the asset types it shows.
var tabAssets = map[string][]model.AssetType{
	"models": {model.AssetModel3D},
	"laser":  {model.AssetLaser2D},
	"cnc":    {model.AssetCNC},
	"scans":  {model.AssetScan3D},
	"cad":    {model.AssetCAD},
}

// Tabs returns the known category tabs in display order.
func Tabs() []string {
	return []string{"models", "laser", "cnc", "scans", "cad"}
}

// MatchesTab reports whether a result belongs on the given tab. Unknown
// tabs fall back to the models tab.
func MatchesTab(it *model.NormalizedResult, tab string) bool {
	allowed, ok := tabAssets[tab]
	if !ok {
		allowed = tabAssets["models"]
	}
	assetType := it.AssetType
	if assetType == "" {
		assetType = model.AssetModel3D
	}
	for _, a := range allowed {
		if a == assetType {
			return true
		}
	}
	return false
}

// TabCounts counts how many results each tab would show.
func TabCounts(items []*model.NormalizedResult) map[string]int {
	counts := make(map[string]int, len(tabAssets))
	for _, tab := range Tabs() {
		counts[tab] = 0
	}
	for _, it := range items {
		for _, tab := range Tabs() {
			if MatchesTab(it, tab) {
				counts[tab]++
			}
		}
	}
	return counts
}
