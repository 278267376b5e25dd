package sim

import (
	"os"

	"modellbahn-go/errcode"
	"modellbahn-go/services/config"
	"modellbahn-go/types"
)

// DefaultConfig is used when no file is given.
func DefaultConfig() types.RailwayConfig {
	return types.RailwayConfig{
		Layout:            "modellbahn",
		IntervalMs:        100,
		SelectorActiveLow: true,
	}
}

// LoadConfig reads a YAML railway config. An empty path yields DefaultConfig.
func LoadConfig(path string) (types.RailwayConfig, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.RailwayConfig{}, errcode.Wrap(errcode.InvalidParams, "sim", err)
	}
	return config.Decode(raw)
}
