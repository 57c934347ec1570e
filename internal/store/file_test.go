package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/engram/internal/seed"
)

func TestEngramFileRoundTrip(t *testing.T) {
	dog := seed.Dog()
	path := filepath.Join(t.TempDir(), "dog.json")

	if err := SaveEngramFile(dog, path); err != nil {
		t.Fatalf("SaveEngramFile: %v", err)
	}

	got, err := LoadEngramFile(path)
	if err != nil {
		t.Fatalf("LoadEngramFile: %v", err)
	}

	if got.ID != dog.ID || got.Name != dog.Name {
		t.Errorf("identity changed: %v/%q", got.ID, got.Name)
	}
	if got.Len() != dog.Len() {
		t.Errorf("ensembles = %d, want %d", got.Len(), dog.Len())
	}
	shape := got.Ensemble("shape_canine")
	if shape == nil || shape.ID != dog.Ensemble("shape_canine").ID {
		t.Error("ensemble identity not preserved")
	}
}

func TestLoadEngramFileMissing(t *testing.T) {
	if _, err := LoadEngramFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error loading missing file")
	}
}

func TestLoadEngramFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"name": "no id"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadEngramFile(path); err == nil {
		t.Error("expected error for engram without concept_id")
	}
}
