package vectorsearch

import (
	"math"
	"testing"
)

func TestSearchRanksByDescendingCosine(t *testing.T) {
	b := NewInMemory()
	b.Add("east", []float64{1, 0})
	b.Add("north", []float64{0, 1})
	b.Add("northeast", []float64{1, 1})

	got := b.Search([]float64{1, 0}, 5)

	if len(got) != 3 {
		t.Fatalf("got %d matches, want 3", len(got))
	}
	if got[0].Key != "east" || math.Abs(got[0].Score-1.0) > 1e-9 {
		t.Errorf("top match = %+v, want east/1.0", got[0])
	}
	if got[1].Key != "northeast" {
		t.Errorf("second match = %+v, want northeast", got[1])
	}
	if got[2].Key != "north" || math.Abs(got[2].Score) > 1e-9 {
		t.Errorf("third match = %+v, want north/0.0", got[2])
	}
}

func TestSearchSkipsShapeMismatch(t *testing.T) {
	b := NewInMemory()
	b.Add("fits", []float64{1, 0})
	b.Add("too-long", []float64{1, 0, 0})
	b.Add("too-short", []float64{1})

	got := b.Search([]float64{1, 0}, 5)

	if len(got) != 1 || got[0].Key != "fits" {
		t.Errorf("matches = %v, want only fits", got)
	}
}

func TestSearchTruncatesToK(t *testing.T) {
	b := NewInMemory()
	b.Add("a", []float64{1, 0})
	b.Add("b", []float64{1, 0})
	b.Add("c", []float64{1, 0})

	got := b.Search([]float64{1, 0}, 2)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	// Equal scores break ties by key.
	if got[0].Key != "a" || got[1].Key != "b" {
		t.Errorf("tie order = %v, want [a b]", got)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	b := NewInMemory()
	b.Add("a", []float64{1, 0})

	if got := b.Search(nil, 5); got != nil {
		t.Errorf("empty query returned %v, want nil", got)
	}
}

func TestGetAndReplace(t *testing.T) {
	b := NewInMemory()
	b.Add("k", []float64{1, 0})
	b.Add("k", []float64{0, 1})

	v, ok := b.Get("k")
	if !ok || v[0] != 0 || v[1] != 1 {
		t.Errorf("Get(k) = %v/%v, want [0 1]/true", v, ok)
	}
	if _, ok := b.Get("ghost"); ok {
		t.Error("Get(ghost) reported present")
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}
