package save

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Decode parses a save document of any supported version, migrating old
// layouts forward before unmarshaling.
//
// Version history:
//
//	v1: resource amounts and prestige points stored as bare JSON numbers,
//	    which silently lost precision past 2^53.
//	v2: all big quantities stored as decimal strings.
//	v3: producer production_multiplier dropped from the document; the
//	    first tick after load rebuilds every multiplier anyway.
func Decode(data []byte) (*Snapshot, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("save: not a valid document: %w", err)
	}

	switch {
	case probe.Version > CurrentVersion:
		return nil, fmt.Errorf("save: version %d is newer than supported %d", probe.Version, CurrentVersion)
	case probe.Version < 1:
		return nil, fmt.Errorf("save: missing or invalid version")
	case probe.Version < CurrentVersion:
		migrated, err := migrate(data, probe.Version)
		if err != nil {
			return nil, err
		}
		data = migrated
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("save: decode v%d document: %w", probe.Version, err)
	}
	s.Version = CurrentVersion
	return &s, nil
}

// migrate walks the document through each version step on the raw JSON
// tree, so unknown sibling fields survive untouched.
func migrate(data []byte, from int) ([]byte, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("save: migrate v%d: %w", from, err)
	}

	for v := from; v < CurrentVersion; v++ {
		switch v {
		case 1:
			migrateV1toV2(raw)
		case 2:
			migrateV2toV3(raw)
		}
	}
	raw["version"] = CurrentVersion

	return json.Marshal(raw)
}

// migrateV1toV2 rewrites bare numeric quantities as decimal strings.
func migrateV1toV2(raw map[string]interface{}) {
	if resources, ok := raw["resources"].(map[string]interface{}); ok {
		for _, v := range resources {
			if entry, ok := v.(map[string]interface{}); ok {
				numberToString(entry, "amount")
			}
		}
	}
	if prestige, ok := raw["prestige"].(map[string]interface{}); ok {
		numberToString(prestige, "points")
	}
	if stats, ok := raw["stats"].(map[string]interface{}); ok {
		if lifetime, ok := stats["lifetime"].(map[string]interface{}); ok {
			for k := range lifetime {
				numberToString(lifetime, k)
			}
		}
	}
}

// migrateV2toV3 drops persisted producer multipliers.
func migrateV2toV3(raw map[string]interface{}) {
	producers, ok := raw["producers"].(map[string]interface{})
	if !ok {
		return
	}
	for _, v := range producers {
		if entry, ok := v.(map[string]interface{}); ok {
			delete(entry, "production_multiplier")
		}
	}
}

func numberToString(m map[string]interface{}, key string) {
	if f, ok := m[key].(float64); ok {
		m[key] = strconv.FormatFloat(f, 'g', -1, 64)
	}
}
