package provider

import (
	"context"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

// linkProvider contributes only a deep-link to its platform's own search
// page. Search always returns an empty list.
type linkProvider struct {
	desc model.ProviderDescriptor
}

func (l *linkProvider) Descriptor() model.ProviderDescriptor { return l.desc }
func (l *linkProvider) Configured() bool                     { return true }

func (l *linkProvider) Search(_ context.Context, _ SearchParams) (any, error) {
	return []model.RawResult{}, nil
}

func newLink(id, label, homepage, template string, assetTypes ...model.AssetType) Provider {
	if len(assetTypes) == 0 {
		assetTypes = []model.AssetType{model.AssetModel3D}
	}
	return &linkProvider{desc: model.ProviderDescriptor{
		ID:                id,
		Label:             label,
		Mode:              model.ModeLink,
		Homepage:          homepage,
		IconURL:           "https://www.google.com/s2/favicons?domain=" + homepage[len("https://"):] + "&sz=64",
		SearchURLTemplate: template,
		Public:            true,
		Notes:             "link-only: no search API integrated",
		AssetTypes:        assetTypes,
		Supports:          model.Capabilities{Search: false},
	}}
}

// NewPrintablesLink returns the Printables link-only provider.
func NewPrintablesLink() Provider {
	return newLink("printables", "Printables", "https://www.printables.com",
		"https://www.printables.com/search/models?q={q}")
}

// NewThangsLink returns the Thangs link-only provider.
func NewThangsLink() Provider {
	return newLink("thangs", "Thangs", "https://thangs.com",
		"https://thangs.com/search/{q}")
}

// NewMakerWorldLink returns the MakerWorld link-only provider.
func NewMakerWorldLink() Provider {
	return newLink("makerworld", "MakerWorld", "https://makerworld.com",
		"https://makerworld.com/en/search/models?keyword={q}")
}

// NewTurboSquidLink returns the TurboSquid link-only provider.
func NewTurboSquidLink() Provider {
	return newLink("turbosquid", "TurboSquid", "https://www.turbosquid.com",
		"https://www.turbosquid.com/Search/Index.cfm?keyword={q}",
		model.AssetModel3D, model.AssetCAD)
}
