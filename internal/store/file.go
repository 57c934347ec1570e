package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/engram/internal/concept"
)

// SaveEngramFile writes a concept's engram snapshot to path as indented
// JSON. The write is atomic: data is written to a temp file in the same
// directory and renamed into place.
func SaveEngramFile(c *concept.Concept, path string) error {
	data, err := concept.MarshalEngram(c)
	if err != nil {
		return fmt.Errorf("serialize engram for %s: %w", c.Name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".engram-*.json")
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

// LoadEngramFile reads an engram JSON file and reconstructs the concept
// with identities preserved.
func LoadEngramFile(path string) (*concept.Concept, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := concept.UnmarshalEngram(data)
	if err != nil {
		return nil, fmt.Errorf("load engram %s: %w", path, err)
	}
	return c, nil
}
