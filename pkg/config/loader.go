package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadParameters reads a flat JSON parameter file. Fields absent from the
// file keep their preset defaults, so partial overrides are fine.
func LoadParameters(path string) (StrategyParameters, error) {
	params := DefaultParameters()

	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("could not read parameter file: %w", err)
	}

	if err := json.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("could not parse parameter file %s: %w", path, err)
	}

	if err := params.Validate(); err != nil {
		return params, fmt.Errorf("parameter validation failed: %w", err)
	}

	return params, nil
}

// SaveParameters writes the parameter set as indented JSON, creating the
// target directory when needed.
func SaveParameters(params StrategyParameters, path string) error {
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}
