package policy

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

func LoadIndex(path string) (*Index, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := toml.Unmarshal(d, &idx); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return &idx, nil
}

func LoadPolicy(path string) (*Policy, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Policy
	if err := toml.Unmarshal(d, &p); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return &p, nil
}

func LoadSyncPolicy(path string) (*SyncPolicy, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sp SyncPolicy
	if err := toml.Unmarshal(d, &sp); err != nil {
		return nil, fmt.Errorf("parse sync policy %s: %w", path, err)
	}
	return &sp, nil
}
