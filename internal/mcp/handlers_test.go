package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/nvandessel/engram/internal/config"
	"github.com/nvandessel/engram/internal/store"
	"github.com/nvandessel/engram/internal/workspace"
)

// newTestServer builds a server around a temp-dir store, bypassing the MCP
// transport so handlers can be called directly.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return &Server{
		store: st,
		cfg:   config.Default(),
		ws:    workspace.New(),
	}
}

func seedTestServer(t *testing.T, s *Server) {
	t.Helper()
	if _, _, err := s.handleSeed(context.Background(), nil, SeedInput{}); err != nil {
		t.Fatalf("handleSeed: %v", err)
	}
}

func TestHandleSeedAndList(t *testing.T) {
	s := newTestServer(t)
	seedTestServer(t, s)

	_, out, err := s.handleList(context.Background(), nil, ListInput{})
	if err != nil {
		t.Fatalf("handleList: %v", err)
	}
	if out.Count != 4 {
		t.Fatalf("count = %d, want 4", out.Count)
	}
	if out.Concepts[0].Name != "Animal" || out.Concepts[1].Name != "Dog" {
		t.Errorf("concepts out of order: %+v", out.Concepts)
	}
	if out.Concepts[1].Ensembles != 4 {
		t.Errorf("Dog ensembles = %d, want 4", out.Concepts[1].Ensembles)
	}

	// Seeding twice is rejected.
	if _, _, err := s.handleSeed(context.Background(), nil, SeedInput{}); err == nil {
		t.Error("expected error seeding over an existing catalog")
	}
}

func TestHandleShow(t *testing.T) {
	s := newTestServer(t)
	seedTestServer(t, s)

	_, out, err := s.handleShow(context.Background(), nil, ShowInput{Concept: "Dog"})
	if err != nil {
		t.Fatalf("handleShow: %v", err)
	}
	if out.Name != "Dog" || len(out.Ensembles) != 4 {
		t.Fatalf("show = %+v", out)
	}
	var shape *EnsembleView
	for i := range out.Ensembles {
		if out.Ensembles[i].Name == "shape_canine" {
			shape = &out.Ensembles[i]
		}
	}
	if shape == nil {
		t.Fatal("shape_canine missing")
	}
	// Links resolve to target ensemble names.
	if shape.Links["color_brown"] != 0.2 {
		t.Errorf("shape links = %v", shape.Links)
	}
	if len(out.Relationships) != 1 || out.Relationships[0].TargetName != "Animal" {
		t.Errorf("relationships = %+v", out.Relationships)
	}

	if _, _, err := s.handleShow(context.Background(), nil, ShowInput{Concept: "ghost"}); err == nil {
		t.Error("expected error for unknown concept")
	}
}

func TestHandleStimulate(t *testing.T) {
	s := newTestServer(t)
	seedTestServer(t, s)

	_, out, err := s.handleStimulate(context.Background(), nil, StimulateInput{
		Concept: "Dog",
		Cues:    map[string][]float64{"shape_canine": {1, 0, 0, 0}},
		TopK:    2,
	})
	if err != nil {
		t.Fatalf("handleStimulate: %v", err)
	}
	if len(out.Recall) != 2 {
		t.Fatalf("recall = %+v", out.Recall)
	}
	if out.Recall[0].Name != "shape_canine" {
		t.Errorf("top recall = %q, want shape_canine", out.Recall[0].Name)
	}
	if out.Activations["shape_canine"] <= out.Activations["color_brown"] {
		t.Errorf("cued ensemble not dominant: %v", out.Activations)
	}
}

func TestHandleStimulateLearnPersists(t *testing.T) {
	s := newTestServer(t)
	seedTestServer(t, s)

	_, _, err := s.handleStimulate(context.Background(), nil, StimulateInput{
		Concept: "Dog",
		Cues: map[string][]float64{
			"shape_canine": {1, 0, 0, 0},
			"color_brown":  {0, 1, 0, 0},
		},
		Gain:  2.0,
		Learn: true,
	})
	if err != nil {
		t.Fatalf("handleStimulate: %v", err)
	}

	// Learned weights survive reload from the store.
	reloaded, err := s.store.LoadConcept(context.Background(), "Dog")
	if err != nil {
		t.Fatalf("LoadConcept: %v", err)
	}
	shape := reloaded.Ensemble("shape_canine")
	color := reloaded.Ensemble("color_brown")
	if w := shape.Links[color.ID]; w <= 0.2 {
		t.Errorf("shape->color = %v, want > 0.2 after learning", w)
	}
}

func TestHandleMerge(t *testing.T) {
	s := newTestServer(t)
	seedTestServer(t, s)

	_, out, err := s.handleMerge(context.Background(), nil, AlgebraInput{A: "Dog", B: "Cat", Name: "DogCat"})
	if err != nil {
		t.Fatalf("handleMerge: %v", err)
	}
	if out.Concept.Name != "DogCat" || !out.Persisted {
		t.Errorf("merge output = %+v", out)
	}
	if len(out.Delta.Added) != 2 {
		t.Errorf("delta added = %+v, want 2 MERGED_FROM edges", out.Delta.Added)
	}
	for _, rv := range out.Delta.Added {
		if rv.Type != "MERGED_FROM" {
			t.Errorf("edge type = %q", rv.Type)
		}
	}

	// Derived concept is persisted.
	if _, err := s.store.LoadConcept(context.Background(), "DogCat"); err != nil {
		t.Errorf("merged concept not stored: %v", err)
	}

	// Name collisions are rejected.
	if _, _, err := s.handleMerge(context.Background(), nil, AlgebraInput{A: "Dog", B: "Cat", Name: "DogCat"}); err == nil {
		t.Error("expected error for duplicate concept name")
	}
}

func TestHandleIntersect(t *testing.T) {
	s := newTestServer(t)
	seedTestServer(t, s)

	_, out, err := s.handleIntersect(context.Background(), nil, AlgebraInput{A: "Dog", B: "Cat"})
	if err != nil {
		t.Fatalf("handleIntersect: %v", err)
	}
	if out.Concept.Name != "intersect_Dog_Cat" {
		t.Errorf("default name = %q", out.Concept.Name)
	}
	// Dog and Cat share no ensemble names but share IS_A -> Animal.
	if out.Concept.Ensembles != 0 || out.Concept.Relationships != 1 {
		t.Errorf("intersection = %+v", out.Concept)
	}
	if len(out.Delta.Added) != 1 || out.Delta.Added[0].TargetName != "Animal" {
		t.Errorf("delta = %+v", out.Delta)
	}
}

func TestHandleCompare(t *testing.T) {
	s := newTestServer(t)
	seedTestServer(t, s)

	_, out, err := s.handleCompare(context.Background(), nil, CompareInput{A: "Dog", B: "Cat"})
	if err != nil {
		t.Fatalf("handleCompare: %v", err)
	}
	if !strings.HasPrefix(out.Notes, "Compare: jaccard=") {
		t.Errorf("notes = %q", out.Notes)
	}

	if _, _, err := s.handleCompare(context.Background(), nil, CompareInput{A: "Dog", B: "ghost"}); err == nil {
		t.Error("expected error for unknown concept")
	}
}

func TestHandleBind(t *testing.T) {
	s := newTestServer(t)
	seedTestServer(t, s)

	_, out, err := s.handleBind(context.Background(), nil, BindInput{
		Source:   "Car",
		Target:   "Animal",
		Relation: "NEAR",
	})
	if err != nil {
		t.Fatalf("handleBind: %v", err)
	}
	if len(out.Delta.Added) != 1 || out.Delta.Added[0].Type != "NEAR" {
		t.Errorf("delta = %+v", out.Delta)
	}

	reloaded, err := s.store.LoadConcept(context.Background(), "Car")
	if err != nil {
		t.Fatalf("LoadConcept: %v", err)
	}
	if len(reloaded.Relationships) != 1 {
		t.Errorf("bound edge not persisted: %+v", reloaded.Relationships)
	}
}

func TestHandleGraph(t *testing.T) {
	s := newTestServer(t)
	seedTestServer(t, s)

	_, dotOut, err := s.handleGraph(context.Background(), nil, GraphInput{Format: "dot"})
	if err != nil {
		t.Fatalf("handleGraph dot: %v", err)
	}
	if dotOut.NodeCount != 4 || dotOut.EdgeCount != 2 {
		t.Errorf("dot counts = %d/%d", dotOut.NodeCount, dotOut.EdgeCount)
	}
	if dot, ok := dotOut.Graph.(string); !ok || !strings.Contains(dot, "digraph engram") {
		t.Errorf("dot graph = %v", dotOut.Graph)
	}

	_, jsonOut, err := s.handleGraph(context.Background(), nil, GraphInput{})
	if err != nil {
		t.Fatalf("handleGraph json: %v", err)
	}
	if jsonOut.Format != "json" || jsonOut.NodeCount != 4 {
		t.Errorf("json output = %+v", jsonOut)
	}

	if _, _, err := s.handleGraph(context.Background(), nil, GraphInput{Format: "svg"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}
