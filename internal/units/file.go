package units

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// storedUnit is the on-disk shape of a unit. The file as a whole is a map of
// unit key to storedUnit, so the key is not repeated inside the value.
type storedUnit struct {
	Modality   string            `json:"modality"`
	Vector     []float64         `json:"vector"`
	Attributes map[string]string `json:"attributes"`
}

// Save writes the store to path as JSON. The write is atomic: data is
// written to a temp file in the same directory and renamed into place.
func Save(store *UnitStore, path string) error {
	blob := make(map[string]storedUnit, store.Len())
	for _, key := range store.Keys() {
		u, _ := store.Get(key)
		blob[key] = storedUnit{
			Modality:   u.Modality,
			Vector:     u.Vector,
			Attributes: u.Attributes,
		}
	}

	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal unit store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".units-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

// Load reads a store from a JSON file written by Save. Units with a null
// vector load with Vector nil.
func Load(path string) (*UnitStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var blob map[string]storedUnit
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("parse unit store %s: %w", path, err)
	}

	store := NewUnitStore()
	for key, d := range blob {
		store.Add(FeatureUnit{
			Key:        key,
			Modality:   d.Modality,
			Vector:     d.Vector,
			Attributes: d.Attributes,
		})
	}
	return store, nil
}
