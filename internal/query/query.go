// Package query parses raw query strings into structured search intent.
// Everything here is a pure function of its input.
package query

import (
	"regexp"
	"strings"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

var tokenPattern = regexp.MustCompile(`(?i)(?:^|\s)(source|type|format|license|price):(\S+)`)

// Advanced holds the filters extracted from key:value tokens plus the
// residual plain-text query.
type Advanced struct {
	QueryText string
	Source    []string
	Type      string
	Format    string
	License   string
	Price     string
	Chips     []model.QueryChip
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseAdvanced splits key:value tokens out of a raw query. Repeated source:
// tokens accumulate; the other keys are singletons where the last occurrence
// wins. The residual text has its whitespace collapsed.
func ParseAdvanced(raw string) Advanced {
	adv := Advanced{}

	stripped := tokenPattern.ReplaceAllStringFunc(raw, func(m string) string {
		parts := tokenPattern.FindStringSubmatch(m)
		key, value := clean(parts[1]), clean(parts[2])
		switch key {
		case "source":
			adv.Source = append(adv.Source, value)
		case "type":
			adv.Type = value
		case "format":
			adv.Format = value
		case "license":
			adv.License = value
		case "price":
			adv.Price = value
		}
		return " "
	})

	adv.QueryText = strings.Join(strings.Fields(stripped), " ")

	for _, src := range adv.Source {
		adv.Chips = append(adv.Chips, model.QueryChip{Key: "source", Value: src})
	}
	for _, kv := range []struct{ key, value string }{
		{"type", adv.Type},
		{"format", adv.Format},
		{"license", adv.License},
		{"price", adv.Price},
	} {
		if kv.value != "" {
			adv.Chips = append(adv.Chips, model.QueryChip{Key: kv.key, Value: kv.value})
		}
	}
	return adv
}

var knownFormats = []string{"stl", "3mf", "svg", "dxf", "step", "obj"}

// synonyms expands common maker-search terms into the aliases providers
// actually index under.
var synonyms = map[string][]string{
	"box":       {"case", "enclosure", "container"},
	"gear":      {"cog", "sprocket"},
	"gift":      {"present"},
	"vase":      {"planter", "pot"},
	"organizer": {"holder", "tray", "caddy"},
	"mount":     {"bracket", "stand"},
	"keychain":  {"keyring", "fob"},
	"lamp":      {"light", "lantern"},
	"sign":      {"plaque", "nameplate"},
	"drone":     {"quadcopter", "uav"},
	"robot":     {"bot", "mech"},
	"puzzle":    {"brain-teaser"},
	"mini":      {"miniature", "figurine"},
	"coaster":   {"drink-mat"},
}

// ParseIntent tokenizes the plain query, detects format/license/free hints,
// and expands tokens through the synonym table. The expanded set keeps the
// original tokens first, followed by aliases in token order, deduplicated.
func ParseIntent(q string) model.Intent {
	tokens := strings.Fields(strings.ToLower(q))

	var formats []string
	for _, fmt := range knownFormats {
		for _, tok := range tokens {
			if tok == fmt {
				formats = append(formats, fmt)
				break
			}
		}
	}

	licenseHint := ""
	for _, tok := range tokens {
		if tok == "cc-by" || tok == "commercial" {
			licenseHint = tok
			break
		}
	}

	freeOnly := false
	for _, tok := range tokens {
		if tok == "free" {
			freeOnly = true
			break
		}
	}

	seen := make(map[string]bool, len(tokens))
	expanded := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			expanded = append(expanded, tok)
		}
	}
	for _, tok := range tokens {
		for _, alias := range synonyms[tok] {
			alias = strings.ToLower(alias)
			if !seen[alias] {
				seen[alias] = true
				expanded = append(expanded, alias)
			}
		}
	}

	return model.Intent{
		ExpandedQuery: strings.Join(expanded, " "),
		Tokens:        expanded,
		Formats:       formats,
		LicenseHint:   licenseHint,
		FreeOnly:      freeOnly,
	}
}
