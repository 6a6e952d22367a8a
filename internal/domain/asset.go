package domain

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed assets.yaml
var defaultAssetsYAML []byte

// AssetDescriptor describes a ledger asset and how it maps to the price feed.
type AssetDescriptor struct {
	Symbol      string `yaml:"symbol" json:"symbol"`
	Name        string `yaml:"name" json:"name"`
	Icon        string `yaml:"icon" json:"icon"`
	PriceFeedID string `yaml:"price_feed_id" json:"priceFeedId,omitempty"`
}

// HasPrice reports whether the asset has a price-feed mapping.
func (a AssetDescriptor) HasPrice() bool {
	return a.PriceFeedID != ""
}

// AssetRegistry is the single table of supported assets, in display order.
type AssetRegistry struct {
	assets []AssetDescriptor
}

type assetsFile struct {
	Assets []AssetDescriptor `yaml:"assets"`
}

// DefaultAssets returns the registry compiled into the binary.
func DefaultAssets() *AssetRegistry {
	reg, err := ParseAssets(defaultAssetsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded assets.yaml is invalid: %v", err))
	}
	return reg
}

// LoadAssets reads a registry from a YAML file. An empty path yields the default registry.
func LoadAssets(path string) (*AssetRegistry, error) {
	if path == "" {
		return DefaultAssets(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading assets file %s: %w", path, err)
	}
	return ParseAssets(data)
}

// ParseAssets decodes a YAML asset table. Symbols must be non-empty and unique.
func ParseAssets(data []byte) (*AssetRegistry, error) {
	var f assetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing assets: %w", err)
	}
	if len(f.Assets) == 0 {
		return nil, fmt.Errorf("asset table is empty")
	}

	seen := make(map[string]bool, len(f.Assets))
	for _, a := range f.Assets {
		if a.Symbol == "" {
			return nil, fmt.Errorf("asset with empty symbol")
		}
		if seen[a.Symbol] {
			return nil, fmt.Errorf("duplicate asset symbol %q", a.Symbol)
		}
		seen[a.Symbol] = true
	}
	return &AssetRegistry{assets: f.Assets}, nil
}

// NewAssetRegistry builds a registry from descriptors without validation.
func NewAssetRegistry(assets ...AssetDescriptor) *AssetRegistry {
	return &AssetRegistry{assets: assets}
}

// All returns a copy of every descriptor in display order.
func (r *AssetRegistry) All() []AssetDescriptor {
	return append([]AssetDescriptor(nil), r.assets...)
}

// Symbols returns the asset symbols in display order.
func (r *AssetRegistry) Symbols() []string {
	if r == nil {
		return nil
	}
	return lo.Map(r.assets, func(a AssetDescriptor, _ int) string { return a.Symbol })
}

// Lookup finds the descriptor for a ledger symbol.
func (r *AssetRegistry) Lookup(symbol string) (AssetDescriptor, bool) {
	if r == nil {
		return AssetDescriptor{}, false
	}
	return lo.Find(r.assets, func(a AssetDescriptor) bool { return a.Symbol == symbol })
}

// Supports reports whether symbol is in the table.
func (r *AssetRegistry) Supports(symbol string) bool {
	_, ok := r.Lookup(symbol)
	return ok
}

// PriceFeedID translates a ledger symbol to its price-feed identifier.
// The second result is false for unknown symbols and for assets without a mapping.
func (r *AssetRegistry) PriceFeedID(symbol string) (string, bool) {
	a, ok := r.Lookup(symbol)
	if !ok || !a.HasPrice() {
		return "", false
	}
	return a.PriceFeedID, true
}

// PriceFeedIDs returns the distinct price-feed identifiers referenced by the table.
func (r *AssetRegistry) PriceFeedIDs() []string {
	priced := lo.Filter(r.assets, func(a AssetDescriptor, _ int) bool { return a.HasPrice() })
	return lo.Uniq(lo.Map(priced, func(a AssetDescriptor, _ int) string { return a.PriceFeedID }))
}
