// Package normalize converts untyped provider payloads into the canonical
// result schema. Normalization is a total function: it returns a valid
// NormalizedResult or a *ValidationError, never a partial instance.
package normalize

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

// ValidationError reports a malformed raw result or payload. Callers decide
// whether to drop the offending item or halt.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Payload checks the top-level shape of an adapter response. Anything but a
// list of objects is a contract violation.
func Payload(v any) ([]model.RawResult, error) {
	switch t := v.(type) {
	case []model.RawResult:
		return t, nil
	case []map[string]any:
		out := make([]model.RawResult, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, nil
	case []any:
		out := make([]model.RawResult, 0, len(t))
		for _, e := range t {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, invalid("adapter payload items must be objects")
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, invalid("adapter payload must be a list of results")
	}
}

func cleanString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// cleanNumber coerces v to a non-negative finite float. Anything else maps
// to absent.
func cleanNumber(v any) *float64 {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return nil
	}
	return &n
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func cleanDate(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		u := t.UTC()
		return &u
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				u := parsed.UTC()
				return &u
			}
		}
		return nil
	case float64:
		if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		u := time.UnixMilli(int64(t)).UTC()
		return &u
	default:
		return nil
	}
}

func cleanArray(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			if s := cleanString(e); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func cleanBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func normalizeAssetType(v any) model.AssetType {
	switch strings.ToLower(cleanString(v)) {
	case "laser", "laser2d":
		return model.AssetLaser2D
	case "cnc":
		return model.AssetCNC
	case "scan", "scan3d", "openaccess":
		return model.AssetScan3D
	case "cad":
		return model.AssetCAD
	default:
		return model.AssetModel3D
	}
}

func subMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case model.RawResult:
		return t
	default:
		return nil
	}
}

// firstString returns the first candidate that cleans to a non-empty string.
func firstString(candidates ...any) string {
	for _, c := range candidates {
		if s := cleanString(c); s != "" {
			return s
		}
	}
	return ""
}

func firstNumber(candidates ...any) *float64 {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if n := cleanNumber(c); n != nil {
			return n
		}
	}
	return nil
}

func firstDate(candidates ...any) *time.Time {
	for _, c := range candidates {
		if d := cleanDate(c); d != nil {
			return d
		}
	}
	return nil
}

func firstArray(candidates ...any) []string {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if arr := cleanArray(c); len(arr) > 0 {
			return arr
		}
	}
	return []string{}
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Result maps one raw provider item into the canonical schema, applying
// field-level coercions and enriching source label/icon from the registered
// descriptors. Normalizing an already-normalized item is a fixed point.
func Result(raw model.RawResult, descriptors map[string]model.ProviderDescriptor) (*model.NormalizedResult, error) {
	if raw == nil {
		return nil, invalid("raw result must be an object")
	}
	meta := subMap(raw["meta"])
	stats := subMap(raw["stats"])

	source := firstString(raw["source"])
	if source == "" {
		source = "unknown"
	}
	title := firstString(raw["title"])
	if title == "" {
		title = "Untitled"
	}
	urlStr := firstString(raw["url"])

	id := firstString(raw["id"])
	if id == "" {
		tail := urlStr
		if tail == "" {
			tail = title
		}
		id = source + ":" + tail
	}

	score := 0.0
	if n := cleanNumber(raw["score"]); n != nil {
		score = *n
	}

	n := &model.NormalizedResult{
		ID:          id,
		Source:      source,
		Title:       title,
		URL:         urlStr,
		Thumbnail:   firstString(raw["thumbnail"]),
		CreatorName: firstString(raw["creatorName"], raw["author"]),
		CreatorURL:  firstString(raw["creatorUrl"], meta["creatorUrl"]),
		Stats: model.Stats{
			Likes:     firstNumber(stats["likes"], meta["likes"]),
			Downloads: firstNumber(stats["downloads"], meta["downloads"], meta["download_count"], meta["collects"]),
			Views:     firstNumber(stats["views"], meta["views"], meta["visits"]),
		},
		AssetType:     normalizeAssetType(firstString(raw["assetType"], meta["assetType"])),
		License:       firstString(raw["license"], meta["license"], meta["store_license"]),
		Price:         firstNumber(raw["price"], meta["price"]),
		Currency:      firstString(raw["currency"], meta["currency"]),
		Tags:          firstArray(raw["tags"], meta["tags"]),
		Formats:       firstArray(raw["formats"], meta["formats"]),
		PublishedAt:   firstDate(raw["publishedAt"], meta["publishedAt"], meta["createdAt"]),
		UpdatedAt:     firstDate(raw["updatedAt"], meta["updatedAt"]),
		SourceLabel:   firstString(raw["sourceLabel"]),
		SourceIconURL: firstString(raw["sourceIconUrl"]),
		Boosted:       cleanBool(raw["boosted"]) || cleanBool(meta["boosted"]),
		Score:         score,
	}

	if desc, ok := descriptors[n.Source]; ok {
		if n.SourceLabel == "" {
			n.SourceLabel = desc.Label
		}
		if n.SourceIconURL == "" {
			n.SourceIconURL = desc.IconURL
		}
	}

	if err := Validate(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate re-checks a constructed candidate against the canonical schema.
func Validate(n *model.NormalizedResult) error {
	if n.ID == "" || n.Source == "" || n.Title == "" {
		return invalid("missing required fields")
	}
	if n.URL == "" || !validURL(n.URL) {
		return invalid("invalid url %q", n.URL)
	}
	for _, stat := range []*float64{n.Stats.Likes, n.Stats.Downloads, n.Stats.Views} {
		if stat != nil && (*stat < 0 || math.IsNaN(*stat) || math.IsInf(*stat, 0)) {
			return invalid("negative or non-finite stat")
		}
	}
	if n.Price != nil && (*n.Price < 0 || math.IsNaN(*n.Price) || math.IsInf(*n.Price, 0)) {
		return invalid("negative or non-finite price")
	}
	switch n.AssetType {
	case model.AssetModel3D, model.AssetLaser2D, model.AssetCNC, model.AssetScan3D, model.AssetCAD:
	default:
		return invalid("unknown asset type %q", n.AssetType)
	}
	return nil
}
