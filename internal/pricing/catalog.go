package pricing

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/types"
)

// Entry holds USD prices per one million tokens.
type Entry struct {
	Input  float64 `yaml:"input" json:"input"`
	Output float64 `yaml:"output" json:"output"`
}

// Catalog maps exact model identifiers to their pricing. It is built
// once at startup and read-only afterwards.
type Catalog struct {
	log     *logger.Logger
	entries map[string]Entry
}

// defaultEntries mirrors published per-million-token prices. A YAML
// file can replace or extend individual models without a rebuild.
func defaultEntries() map[string]Entry {
	return map[string]Entry{
		"gpt-4o-mini":   {Input: 0.15, Output: 0.60},
		"gpt-4o":        {Input: 2.50, Output: 10.00},
		"gpt-4-turbo":   {Input: 10.00, Output: 30.00},
		"gpt-3.5-turbo": {Input: 0.50, Output: 1.50},
		"gpt-5":         {Input: 5.00, Output: 15.00},
	}
}

// NewCatalog loads the defaults and, when path is non-empty, merges
// entries from the YAML file at path over them.
func NewCatalog(baseLog *logger.Logger, path string) (*Catalog, error) {
	c := &Catalog{
		log:     baseLog.With("service", "PricingCatalog"),
		entries: defaultEntries(),
	}
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}
	var override map[string]Entry
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("parse pricing file: %w", err)
	}
	for model, entry := range override {
		c.entries[model] = entry
	}
	c.log.Info("Pricing catalog loaded", "models", len(c.entries), "override_file", path)
	return c, nil
}

// Lookup returns the pricing entry for an exact model identifier.
func (c *Catalog) Lookup(model string) (Entry, error) {
	entry, ok := c.entries[model]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", types.ErrPricingUnavailable, model)
	}
	return entry, nil
}

// All returns every entry keyed by model identifier.
func (c *Catalog) All() map[string]Entry {
	out := make(map[string]Entry, len(c.entries))
	for model, entry := range c.entries {
		out[model] = entry
	}
	return out
}

// Models returns the known model identifiers in stable order.
func (c *Catalog) Models() []string {
	models := make([]string, 0, len(c.entries))
	for model := range c.entries {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}
