package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTable reads a YAML rate card and merges it over the defaults, so a
// deployment can reprice a single mode without restating the whole card.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate table: %w", err)
	}
	var override Table
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse rate table: %w", err)
	}

	t := DefaultTable()
	for mode, r := range override.Rates {
		merged := t.Rates[mode]
		if r.PerKm > 0 {
			merged.PerKm = r.PerKm
		}
		if r.MinFare > 0 {
			merged.MinFare = r.MinFare
		}
		if merged.PerKm == 0 {
			merged.PerKm = t.DefaultRate.PerKm
		}
		if merged.MinFare == 0 {
			merged.MinFare = t.DefaultRate.MinFare
		}
		t.Rates[mode] = merged
	}
	for tier, m := range override.Tiers {
		if m > 0 {
			t.Tiers[tier] = m
		}
	}
	if override.Currency != "" {
		t.Currency = override.Currency
	}
	return t, nil
}
