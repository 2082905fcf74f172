// Package provider defines the adapter contract for upstream asset sources
// and the registry the orchestrator selects providers from.
package provider

import (
	"context"
	"net/url"
	"strings"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

// SearchParams holds the normalized parameters for one provider call.
// Query is the intent-expanded query text, not the raw user input.
type SearchParams struct {
	Query string
	Limit int
	Page  int
	Sort  string
	Tab   string
}

// Provider is a pluggable upstream data source. Retrieval providers return
// raw, unvalidated result candidates; link-only providers return an empty
// list and exist solely to contribute a deep-link.
type Provider interface {
	// Descriptor returns the static identity of this provider.
	Descriptor() model.ProviderDescriptor

	// Configured reports whether the provider is currently usable.
	Configured() bool

	// Search performs the upstream call and returns the raw candidate
	// list. The orchestrator validates the payload shape; anything but a
	// list of objects is treated as a contract violation. Implementations
	// must return an empty list, not an error, when there are simply no
	// matches.
	Search(ctx context.Context, params SearchParams) (any, error)
}

// Options carries per-provider credentials and overrides from config.
type Options struct {
	APIKey  string
	APIBase string
}

// BuildSearchURL expands a descriptor's search-URL template by substituting
// {q} with the escaped query. Returns "" when there is no template.
func BuildSearchURL(template, q string) string {
	if template == "" {
		return ""
	}
	return strings.ReplaceAll(template, "{q}", url.QueryEscape(q))
}
