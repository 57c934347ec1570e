// Package decoder maps ensemble activity to symbolic labels. Two decoders
// are provided: a rule-based population-threshold decoder and a small linear
// readout over concatenated activations.
package decoder

import (
	"sort"

	"github.com/nvandessel/engram/internal/concept"
)

// Label pairs a symbolic label with its decoded score.
type Label struct {
	Name  string  `json:"label"`
	Score float64 `json:"score"`
}

// sortLabels orders descending by score, ties by name for determinism.
func sortLabels(ls []Label) {
	sort.Slice(ls, func(i, j int) bool {
		if ls[i].Score != ls[j].Score {
			return ls[i].Score > ls[j].Score
		}
		return ls[i].Name < ls[j].Name
	})
}

// PopulationThresholdDecoder emits a label when the mean activation over its
// named ensembles reaches the threshold. Missing ensembles contribute zero.
type PopulationThresholdDecoder struct {
	LabelToEnsembles map[string][]string
	Threshold        float64
}

// NewPopulationThresholdDecoder uses the standard 0.25 threshold.
func NewPopulationThresholdDecoder(labelToEnsembles map[string][]string) *PopulationThresholdDecoder {
	return &PopulationThresholdDecoder{
		LabelToEnsembles: labelToEnsembles,
		Threshold:        0.25,
	}
}

// Decode returns the labels whose score passes the threshold, descending by
// score. Labels with an empty ensemble list are skipped.
func (d *PopulationThresholdDecoder) Decode(c *concept.Concept) []Label {
	var out []Label
	for label, names := range d.LabelToEnsembles {
		if len(names) == 0 {
			continue
		}
		var sum float64
		for _, n := range names {
			if e := c.Ensemble(n); e != nil {
				sum += e.Activation
			}
		}
		score := sum / float64(len(names))
		if score >= d.Threshold {
			out = append(out, Label{Name: label, Score: score})
		}
	}
	sortLabels(out)
	return out
}

// LinearReadoutDecoder scores labels as W*v over activations taken in a
// fixed ensemble order. Weights are supplied externally (fit offline or
// hand-tuned); this is not a trainable layer.
type LinearReadoutDecoder struct {
	EnsembleOrder []string
	Weights       [][]float64 // one row per label, len(row) == len(EnsembleOrder)
	Labels        []string
}

// Vectorize concatenates activations in the decoder's ensemble order.
// Missing ensembles read as zero.
func (d *LinearReadoutDecoder) Vectorize(c *concept.Concept) []float64 {
	v := make([]float64, len(d.EnsembleOrder))
	for i, n := range d.EnsembleOrder {
		if e := c.Ensemble(n); e != nil {
			v[i] = e.Activation
		}
	}
	return v
}

// Decode computes per-label dot products and returns all labels, descending
// by score.
func (d *LinearReadoutDecoder) Decode(c *concept.Concept) []Label {
	v := d.Vectorize(c)
	out := make([]Label, 0, len(d.Labels))
	for i, label := range d.Labels {
		var score float64
		row := d.Weights[i]
		for j := range v {
			if j < len(row) {
				score += row[j] * v[j]
			}
		}
		out = append(out, Label{Name: label, Score: score})
	}
	sortLabels(out)
	return out
}
