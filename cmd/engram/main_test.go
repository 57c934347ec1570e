package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/engram/internal/store"
)

// isolateHome sets HOME to a temp directory to avoid touching real ~/.engram/
func isolateHome(t *testing.T, tmpDir string) {
	t.Helper()
	tmpHome := filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(tmpHome, 0700); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpHome)
	t.Cleanup(func() {
		os.Setenv("HOME", oldHome)
	})
}

// runEngram executes the CLI with args against the given project root and
// returns the combined command output.
func runEngram(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append(args, "--root", root))
	err := cmd.Execute()
	return buf.String(), err
}

func TestParseVector(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr bool
	}{
		{"simple", "1,0,0.5", []float64{1, 0, 0.5}, false},
		{"spaces", " 1 , 2 ", []float64{1, 2}, false},
		{"single", "0.25", []float64{0.25}, false},
		{"negative", "-1,0", []float64{-1, 0}, false},
		{"empty", "", nil, true},
		{"garbage", "1,x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVector(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseVector(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseVector(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseVector(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseCues(t *testing.T) {
	cues, err := parseCues([]string{"shape=1,0", "color=0,1"})
	if err != nil {
		t.Fatalf("parseCues: %v", err)
	}
	if len(cues) != 2 || cues["shape"][0] != 1 || cues["color"][1] != 1 {
		t.Errorf("cues = %v", cues)
	}

	if _, err := parseCues([]string{"no-equals-sign"}); err == nil {
		t.Error("expected error for cue without '='")
	}
	if _, err := parseCues([]string{"shape="}); err == nil {
		t.Error("expected error for cue with empty vector")
	}
}

func TestParseLabels(t *testing.T) {
	labels, err := parseLabels([]string{"canine=shape_canine,color_brown", "feline=shape_feline"})
	if err != nil {
		t.Fatalf("parseLabels: %v", err)
	}
	if len(labels) != 2 || len(labels["canine"]) != 2 || labels["feline"][0] != "shape_feline" {
		t.Errorf("labels = %v", labels)
	}

	if _, err := parseLabels([]string{"no-equals-sign"}); err == nil {
		t.Error("expected error for label without '='")
	}
	if _, err := parseLabels([]string{"canine="}); err == nil {
		t.Error("expected error for label with no ensembles")
	}
}

func TestParseSpikes(t *testing.T) {
	spikes, err := parseSpikes([]string{"a:0.05:0.8", "b:0.15"})
	if err != nil {
		t.Fatalf("parseSpikes: %v", err)
	}
	if len(spikes) != 2 {
		t.Fatalf("spikes = %v", spikes)
	}
	if spikes[0].Key != "a" || spikes[0].Time != 0.05 || spikes[0].Strength != 0.8 {
		t.Errorf("spikes[0] = %+v", spikes[0])
	}
	if spikes[1].Strength != 1.0 {
		t.Errorf("default strength = %v, want 1.0", spikes[1].Strength)
	}

	if _, err := parseSpikes([]string{"a"}); err == nil {
		t.Error("expected error for spike without time")
	}
	if _, err := parseSpikes([]string{"a:x:1"}); err == nil {
		t.Error("expected error for bad time")
	}
}

func TestInitCreatesStore(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	if _, err := runEngram(t, root, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".engram", "engram.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".engram", "manifest.yaml")); err != nil {
		t.Errorf("manifest not created: %v", err)
	}
}

func TestSeedListShow(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	if _, err := runEngram(t, root, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Seeding twice without --force fails.
	if _, err := runEngram(t, root, "seed"); err == nil {
		t.Error("expected error seeding twice")
	}
	if _, err := runEngram(t, root, "seed", "--force"); err != nil {
		t.Errorf("seed --force: %v", err)
	}

	out, err := runEngram(t, root, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, name := range []string{"Animal", "Dog", "Cat", "Car"} {
		if !strings.Contains(out, name) {
			t.Errorf("list output missing %q:\n%s", name, out)
		}
	}

	out, err = runEngram(t, root, "show", "Dog")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "shape_canine") || !strings.Contains(out, "IS_A") {
		t.Errorf("show output incomplete:\n%s", out)
	}

	if _, err := runEngram(t, root, "show", "ghost"); err == nil {
		t.Error("expected error for unknown concept")
	}
}

func TestStimulateRecall(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	if _, err := runEngram(t, root, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := runEngram(t, root, "stimulate", "Dog", "--cue", "shape_canine=1,0,0,0", "--top", "2")
	if err != nil {
		t.Fatalf("stimulate: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("output = %q", out)
	}
	// Cued ensemble ranks first.
	if !strings.Contains(lines[1], "shape_canine") {
		t.Errorf("top recall line = %q", lines[1])
	}

	if _, err := runEngram(t, root, "stimulate", "Dog"); err == nil {
		t.Error("expected error without cues")
	}
}

func TestDecodeCommand(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	if _, err := runEngram(t, root, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Cueing shape_canine at gain 2 spreads to color_brown; the canine
	// label's mean activation lands at 0.7164 after inhibition, while
	// word_dog stays at zero and keeps "silent" below the 0.25 threshold.
	out, err := runEngram(t, root, "decode", "Dog",
		"--cue", "shape_canine=1,0,0,0", "--gain", "2",
		"--label", "canine=shape_canine,color_brown",
		"--label", "silent=word_dog")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(out, "canine") || !strings.Contains(out, "0.7164") {
		t.Errorf("decode output = %q, want canine at 0.7164", out)
	}
	if strings.Contains(out, "silent") {
		t.Errorf("sub-threshold label emitted: %q", out)
	}

	if _, err := runEngram(t, root, "decode", "Dog"); err == nil {
		t.Error("expected error without labels")
	}
	if _, err := runEngram(t, root, "decode", "ghost", "--label", "x=y"); err == nil {
		t.Error("expected error for unknown concept")
	}
}

func TestLearnPersistsWeights(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	if _, err := runEngram(t, root, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := runEngram(t, root, "learn", "Dog",
		"--cue", "shape_canine=1,0,0,0",
		"--cue", "color_brown=0,1,0,0",
		"--gain", "2")
	if err != nil {
		t.Fatalf("learn: %v", err)
	}

	s, err := store.NewSQLiteStore(root)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()
	dog, err := s.LoadConcept(context.Background(), "Dog")
	if err != nil {
		t.Fatalf("LoadConcept: %v", err)
	}
	shape := dog.Ensemble("shape_canine")
	color := dog.Ensemble("color_brown")
	if w := shape.Links[color.ID]; w <= 0.2 {
		t.Errorf("shape->color = %v, want > 0.2 after learning", w)
	}
}

func TestAlgebraCommands(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	if _, err := runEngram(t, root, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := runEngram(t, root, "compare", "Dog", "Cat")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "Compare: jaccard=") {
		t.Errorf("compare output = %q", out)
	}

	out, err = runEngram(t, root, "merge", "Dog", "Cat", "--name", "DogCat")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.Contains(out, "Merged Dog and Cat into DogCat") {
		t.Errorf("merge output = %q", out)
	}

	// The derived concept is persisted and visible to later commands.
	out, err = runEngram(t, root, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "DogCat") {
		t.Errorf("merged concept missing from list:\n%s", out)
	}

	// Duplicate names are rejected.
	if _, err := runEngram(t, root, "merge", "Dog", "Cat", "--name", "DogCat"); err == nil {
		t.Error("expected error for duplicate derived name")
	}

	if _, err := runEngram(t, root, "intersect", "Dog", "Cat"); err != nil {
		t.Fatalf("intersect: %v", err)
	}
	if _, err := runEngram(t, root, "subtract", "Dog", "Cat"); err != nil {
		t.Fatalf("subtract: %v", err)
	}

	out, err = runEngram(t, root, "bind", "Car", "Animal", "--relation", "NEAR")
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if !strings.Contains(out, "Added relation NEAR from Car to Animal.") {
		t.Errorf("bind output = %q", out)
	}
}

func TestGraphCommand(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	if _, err := runEngram(t, root, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := runEngram(t, root, "graph")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.HasPrefix(out, "digraph engram {") {
		t.Errorf("graph output = %q", out[:40])
	}

	outFile := filepath.Join(root, "graph.json")
	if _, err := runEngram(t, root, "graph", "--format", "json", "-o", outFile); err != nil {
		t.Fatalf("graph json: %v", err)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read graph file: %v", err)
	}
	if !strings.Contains(string(data), "\"node_count\": 4") {
		t.Errorf("graph json = %s", data)
	}

	if _, err := runEngram(t, root, "graph", "--format", "svg"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestStepCommand(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	out, err := runEngram(t, root, "step",
		"--spike", "a:0.05:1.0",
		"--spike", "b:0.05:0.8",
		"--dt", "0.1")
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !strings.Contains(out, "fired: a, b") {
		t.Errorf("step output = %q", out)
	}
	if !strings.Contains(out, "a <-> b") {
		t.Errorf("expected learned weight in output: %q", out)
	}
}

func TestOscillateCommand(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	out, err := runEngram(t, root, "oscillate",
		"--units", "x,y",
		"--theta", "5", "--gamma", "4", "--time", "1.0")
	if err != nil {
		t.Fatalf("oscillate: %v", err)
	}
	if !strings.Contains(out, "Ran 20 gamma packets") {
		t.Errorf("oscillate output = %q", out)
	}
	if !strings.Contains(out, "x <-> y") {
		t.Errorf("expected learned weight in output: %q", out)
	}

	if _, err := runEngram(t, root, "oscillate", "--units", ""); err == nil {
		t.Error("expected error without units")
	}
}

func TestUnitsAndSearch(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	if _, err := runEngram(t, root, "units", "add", "dog.shape",
		"--modality", "vision", "--vector", "1,0", "--attr", "category=shape"); err != nil {
		t.Fatalf("units add: %v", err)
	}
	if _, err := runEngram(t, root, "units", "add", "cat.shape",
		"--modality", "vision", "--vector", "0.9,0.1"); err != nil {
		t.Fatalf("units add: %v", err)
	}

	out, err := runEngram(t, root, "units", "list")
	if err != nil {
		t.Fatalf("units list: %v", err)
	}
	if !strings.Contains(out, "dog.shape") || !strings.Contains(out, "cat.shape") {
		t.Errorf("units list = %q", out)
	}

	out, err = runEngram(t, root, "units", "cosine", "dog.shape", "cat.shape")
	if err != nil {
		t.Fatalf("units cosine: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "0.99") {
		t.Errorf("cosine = %q", out)
	}

	out, err = runEngram(t, root, "search", "--query", "1,0", "--k", "1")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "dog.shape") {
		t.Errorf("search = %q", out)
	}
}
