package seed

import (
	"math"
	"testing"

	"github.com/nvandessel/engram/internal/algebra"
)

func TestCatalogShape(t *testing.T) {
	w := Catalog()

	want := []string{"Animal", "Dog", "Cat", "Car"}
	got := w.Names()
	if len(got) != len(want) {
		t.Fatalf("catalog names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	for _, name := range want {
		c, _ := w.Get(name)
		if c.Len() != 4 {
			t.Errorf("%s has %d ensembles, want 4", name, c.Len())
		}
	}
}

func TestCatalogLinksAndRelations(t *testing.T) {
	w := Catalog()
	animal, _ := w.Get("Animal")
	dog, _ := w.Get("Dog")
	car, _ := w.Get("Car")

	shape := dog.Ensemble("shape_canine")
	color := dog.Ensemble("color_brown")
	sound := dog.Ensemble("sound_bark")
	word := dog.Ensemble("word_dog")

	if got := shape.Links[color.ID]; math.Abs(got-0.2) > 1e-12 {
		t.Errorf("shape->color = %v, want 0.2", got)
	}
	if got := shape.Links[sound.ID]; math.Abs(got-0.15) > 1e-12 {
		t.Errorf("shape->sound = %v, want 0.15", got)
	}
	if got := word.Links[shape.ID]; math.Abs(got-0.25) > 1e-12 {
		t.Errorf("word->shape = %v, want 0.25", got)
	}

	if len(dog.Relationships) != 1 || dog.Relationships[0].RelationType != "IS_A" ||
		dog.Relationships[0].TargetConceptID != animal.ID {
		t.Errorf("dog relationships = %+v, want one IS_A to Animal", dog.Relationships)
	}
	if len(car.Relationships) != 0 {
		t.Errorf("car relationships = %+v, want none", car.Relationships)
	}
}

func TestCatalogIntersectSharesAnimalEdge(t *testing.T) {
	w := Catalog()
	dog, _ := w.Get("Dog")
	cat, _ := w.Get("Cat")

	res := algebra.Intersect(dog, cat, "DogCat")

	// Dog and Cat share no ensemble names but both point IS_A at Animal.
	if res.Concept.Len() != 0 {
		t.Errorf("intersect kept ensembles: %v", res.Concept.EnsembleNames())
	}
	if len(res.Concept.Relationships) != 1 {
		t.Fatalf("intersect relationships = %+v, want the shared IS_A", res.Concept.Relationships)
	}
	if res.Concept.Relationships[0].Description != "shared relation" {
		t.Errorf("description = %q, want %q", res.Concept.Relationships[0].Description, "shared relation")
	}
}

func TestCatalogStimulateRecalls(t *testing.T) {
	w := Catalog()
	dog, _ := w.Get("Dog")

	dog.Stimulate(map[string][]float64{"shape_canine": {1, 0, 0, 0}}, 1.0)

	recall := dog.RecallPartial(2)
	if recall[0].Name != "shape_canine" {
		t.Errorf("top recall = %+v, want shape_canine", recall[0])
	}
	// Spread along shape->color (0.2) beats shape->sound (0.15).
	if recall[1].Name != "color_brown" {
		t.Errorf("second recall = %+v, want color_brown", recall[1])
	}
}
