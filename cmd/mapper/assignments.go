package main

import (
	"encoding/json"
	"fmt"
	"os"

	"photomapper/internal/mapping"
)

// assignmentOverride is one entry of the overrides file: the operator's
// decision for a photo, applied over the matcher's suggestion. Player is a
// pointer so "clear the assignment" (explicit "") can be told apart from
// "keep the suggestion" (field absent).
type assignmentOverride struct {
	Player   *string `json:"player"`
	Excluded bool    `json:"excluded"`
}

// loadOverrides reads a JSON file keyed by photo ID.
func loadOverrides(path string) (map[string]assignmentOverride, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assignments: %w", err)
	}
	var overrides map[string]assignmentOverride
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse assignments: %w", err)
	}
	return overrides, nil
}

// applyOverrides mutates the store with the operator's decisions. Unknown
// photo IDs are reported so a stale overrides file is visible.
func applyOverrides(store *mapping.AssignmentStore, overrides map[string]assignmentOverride) []string {
	var unknown []string
	for photoID, o := range overrides {
		known := store.SetExcluded(photoID, o.Excluded)
		if o.Player != nil {
			known = store.SetName(photoID, *o.Player) && known
		}
		if !known {
			unknown = append(unknown, photoID)
		}
	}
	return unknown
}
