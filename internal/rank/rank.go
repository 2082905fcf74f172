// Package rank merges duplicate results across providers and orders the
// combined set.
package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

// trending blend weights over normalized popularity counters.
const (
	likesWeight     = 1.3
	downloadsWeight = 1.1
	viewsWeight     = 0.08
	freshnessWeight = 10
	boostBonus      = 25
)

// exactKey identifies one concrete listing: the canonical URL when present,
// else source+id+title.
func exactKey(n *model.NormalizedResult) string {
	if u := strings.ToLower(strings.TrimSpace(n.URL)); u != "" {
		return u
	}
	return n.Source + ":" + n.ID + ":" + strings.ToLower(n.Title)
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canonicalKey recognizes "the same asset" listed on different platforms.
func canonicalKey(n *model.NormalizedResult) string {
	return stripNonAlnum(n.Title) + "|" + stripNonAlnum(n.CreatorName)
}

func statValue(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func maxStat(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil || *a >= *b {
		return a
	}
	return b
}

func hasSource(r *model.RankedResult, source string) bool {
	for _, s := range r.AlsoFoundOn {
		if s == source {
			return true
		}
	}
	return false
}

// mergeVariant folds a record from another provider into an existing group:
// missing display fields are filled in, stats take the field-wise max, and
// the contributing provider is recorded.
func mergeVariant(into *model.RankedResult, v *model.NormalizedResult) {
	if into.Thumbnail == "" {
		into.Thumbnail = v.Thumbnail
	}
	if into.CreatorName == "" {
		into.CreatorName = v.CreatorName
	}
	if into.CreatorURL == "" {
		into.CreatorURL = v.CreatorURL
	}
	if into.License == "" {
		into.License = v.License
	}
	if len(into.Formats) == 0 && len(v.Formats) > 0 {
		into.Formats = v.Formats
	}
	into.Stats.Likes = maxStat(into.Stats.Likes, v.Stats.Likes)
	into.Stats.Downloads = maxStat(into.Stats.Downloads, v.Stats.Downloads)
	into.Stats.Views = maxStat(into.Stats.Views, v.Stats.Views)
	if v.Score > into.Score {
		into.Score = v.Score
	}
	into.Boosted = into.Boosted || v.Boosted
	into.AlsoFoundOn = append(into.AlsoFoundOn, v.Source)
	into.SourceVariants[v.Source] = v.URL
}

// Merge deduplicates and orders one request's combined result set. Exact
// duplicates are dropped outright; records from different providers sharing
// a canonical (title, creator) key collapse into one merged entry. Ordering
// is fully determined by the sort mode, raw score, and title.
func Merge(items []*model.NormalizedResult, sortMode string) []*model.RankedResult {
	seen := make(map[string]bool, len(items))
	groups := make(map[string][]*model.RankedResult)
	var out []*model.RankedResult

	for _, n := range items {
		k := exactKey(n)
		if seen[k] {
			continue
		}
		seen[k] = true

		ck := canonicalKey(n)
		merged := false
		for _, g := range groups[ck] {
			// Same-source collisions stay separate: the canonical key only
			// links listings from different providers.
			if !hasSource(g, n.Source) {
				mergeVariant(g, n)
				merged = true
				break
			}
		}
		if merged {
			continue
		}

		r := &model.RankedResult{
			NormalizedResult: *n,
			AlsoFoundOn:      []string{n.Source},
			SourceVariants:   map[string]string{n.Source: n.URL},
		}
		groups[ck] = append(groups[ck], r)
		out = append(out, r)
	}

	now := time.Now()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ka, kb := sortValue(a, sortMode, now), sortValue(b, sortMode, now)
		if ka != kb {
			return ka > kb
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Title < b.Title
	})
	return out
}

func publishedMs(r *model.RankedResult) float64 {
	if r.PublishedAt != nil {
		return float64(r.PublishedAt.UnixMilli())
	}
	if r.UpdatedAt != nil {
		return float64(r.UpdatedAt.UnixMilli())
	}
	return 0
}

func trendingScore(r *model.RankedResult, now time.Time) float64 {
	popularity := statValue(r.Stats.Likes)*likesWeight +
		statValue(r.Stats.Downloads)*downloadsWeight +
		statValue(r.Stats.Views)*viewsWeight

	freshness := 0.0
	stamp := r.PublishedAt
	if stamp == nil {
		stamp = r.UpdatedAt
	}
	if stamp != nil {
		days := now.Sub(*stamp).Hours() / 24
		if days < 0 {
			days = 0
		}
		freshness = 1 / (1 + days)
	}
	return popularity + freshness*freshnessWeight
}

func sortValue(r *model.RankedResult, mode string, now time.Time) float64 {
	switch strings.ToLower(mode) {
	case "newest":
		return publishedMs(r)
	case "likes":
		return statValue(r.Stats.Likes)
	case "downloads":
		return statValue(r.Stats.Downloads)
	case "views":
		return statValue(r.Stats.Views)
	case "trending":
		return trendingScore(r, now)
	case "boosts":
		score := trendingScore(r, now)
		if r.Boosted {
			score += boostBonus
		}
		return score
	default: // relevant / relevance
		return r.Score
	}
}
