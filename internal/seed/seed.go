// Package seed provides a small demo catalog of ready-made concepts (Animal,
// Dog, Cat, Car) with toy feature vectors, intra-concept links, and IS_A
// edges up to the Animal hub.
package seed

import (
	"github.com/nvandessel/engram/internal/concept"
	"github.com/nvandessel/engram/internal/workspace"
)

// Animal is the superclass hub with coarse morphology/mobility/biology
// features.
func Animal() *concept.Concept {
	c := concept.New("Animal", "Superclass for animals")
	c.AddEnsemble(concept.NewFeatureEnsemble("morphology", "vision", []float64{1, 0, 0, 0}))
	c.AddEnsemble(concept.NewFeatureEnsemble("mobility", "vision", []float64{0, 1, 0, 0}))
	c.AddEnsemble(concept.NewFeatureEnsemble("biology", "knowledge", []float64{0, 0, 1, 0}))
	c.AddEnsemble(concept.NewFeatureEnsemble("word_animal", "language", []float64{0, 0, 0, 1}))
	return c
}

// fourFeature builds the standard shape/color/sound/word layout shared by
// the leaf concepts: shape links to color (0.2) and sound (0.15), and the
// word ensemble links back to shape (0.25).
func fourFeature(name, description, shape, color, sound, word string) *concept.Concept {
	c := concept.New(name, description)
	eShape := concept.NewFeatureEnsemble(shape, "vision", []float64{1, 0, 0, 0})
	eColor := concept.NewFeatureEnsemble(color, "vision", []float64{0, 1, 0, 0})
	eSound := concept.NewFeatureEnsemble(sound, "audio", []float64{0, 0, 1, 0})
	eWord := concept.NewFeatureEnsemble(word, "language", []float64{0, 0, 0, 1})

	eShape.AddLink(eColor.ID, 0.2)
	eShape.AddLink(eSound.ID, 0.15)
	eWord.AddLink(eShape.ID, 0.25)

	c.AddEnsemble(eShape)
	c.AddEnsemble(eColor)
	c.AddEnsemble(eSound)
	c.AddEnsemble(eWord)
	return c
}

// Dog builds the canine demo concept.
func Dog() *concept.Concept {
	return fourFeature("Dog", "Canine animal concept", "shape_canine", "color_brown", "sound_bark", "word_dog")
}

// Cat builds the feline demo concept.
func Cat() *concept.Concept {
	return fourFeature("Cat", "Feline animal concept", "shape_feline", "color_black", "sound_meow", "word_cat")
}

// Car builds the vehicle demo concept.
func Car() *concept.Concept {
	return fourFeature("Car", "Vehicle concept", "shape_vehicle", "color_red", "sound_engine", "word_car")
}

// Catalog builds the full demo set in a fresh workspace, wiring IS_A edges
// from Dog and Cat to Animal. Car stays unrelated on purpose, as the
// odd-one-out for algebra demos.
func Catalog() *workspace.Workspace {
	w := workspace.New()
	animal := Animal()
	dog := Dog()
	cat := Cat()
	car := Car()

	dog.AddRelationship("IS_A", animal.ID, "dog is an animal")
	cat.AddRelationship("IS_A", animal.ID, "cat is an animal")

	w.Add(animal)
	w.Add(dog)
	w.Add(cat)
	w.Add(car)
	return w
}
