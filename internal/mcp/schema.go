// Package mcp provides an MCP (Model Context Protocol) server for engram.
package mcp

// ListInput defines the input for engram_list.
type ListInput struct{}

// ConceptListItem provides a list view of a concept.
type ConceptListItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Ensembles     int    `json:"ensembles"`
	Relationships int    `json:"relationships"`
}

// ListOutput defines the output for engram_list.
type ListOutput struct {
	Concepts []ConceptListItem `json:"concepts" jsonschema:"description=Concepts in workspace order"`
	Count    int               `json:"count" jsonschema:"description=Number of concepts"`
}

// ShowInput defines the input for engram_show.
type ShowInput struct {
	Concept string `json:"concept" jsonschema:"description=Concept name,required"`
}

// EnsembleView is the detail view of one feature ensemble.
type EnsembleView struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Modality   string             `json:"modality"`
	Vector     []float64          `json:"vector,omitempty"`
	Activation float64            `json:"activation"`
	Links      map[string]float64 `json:"links,omitempty"`
}

// RelationView is the detail view of one relationship edge.
type RelationView struct {
	Type        string `json:"type"`
	Target      string `json:"target"`
	TargetName  string `json:"target_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ShowOutput defines the output for engram_show.
type ShowOutput struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Ensembles     []EnsembleView `json:"ensembles"`
	Relationships []RelationView `json:"relationships,omitempty"`
}

// StimulateInput defines the input for engram_stimulate.
type StimulateInput struct {
	Concept string               `json:"concept" jsonschema:"description=Concept name,required"`
	Cues    map[string][]float64 `json:"cues" jsonschema:"description=Cue vectors keyed by ensemble name,required"`
	Gain    float64              `json:"gain,omitempty" jsonschema:"description=Input gain (default from config)"`
	TopK    int                  `json:"top_k,omitempty" jsonschema:"description=Number of recall entries to return (default 5)"`
	Learn   bool                 `json:"learn,omitempty" jsonschema:"description=Apply Hebbian learning to co-active ensembles after stimulation"`
}

// RecallEntry is one ranked recall result.
type RecallEntry struct {
	Name       string  `json:"name"`
	Activation float64 `json:"activation"`
}

// StimulateOutput defines the output for engram_stimulate.
type StimulateOutput struct {
	Concept     string             `json:"concept"`
	Activations map[string]float64 `json:"activations" jsonschema:"description=Post-inhibition activation snapshot"`
	Recall      []RecallEntry      `json:"recall" jsonschema:"description=Ensembles ranked by activation"`
	Learned     bool               `json:"learned" jsonschema:"description=Whether Hebbian learning was applied"`
}

// DecayInput defines the input for engram_decay.
type DecayInput struct {
	Concept  string  `json:"concept" jsonschema:"description=Concept name,required"`
	Fraction float64 `json:"fraction,omitempty" jsonschema:"description=Decay fraction in [0,1] (default 0.1)"`
}

// DecayOutput defines the output for engram_decay.
type DecayOutput struct {
	Concept string `json:"concept"`
	Message string `json:"message"`
}

// CompareInput defines the input for engram_compare.
type CompareInput struct {
	A string `json:"a" jsonschema:"description=First concept name,required"`
	B string `json:"b" jsonschema:"description=Second concept name,required"`
}

// CompareOutput defines the output for engram_compare.
type CompareOutput struct {
	Notes string `json:"notes" jsonschema:"description=Structural comparison metrics: jaccard and mean vector cosine and link density difference"`
}

// AlgebraInput defines the input for the derivation tools
// (engram_merge, engram_intersect, engram_subtract).
type AlgebraInput struct {
	A    string `json:"a" jsonschema:"description=First concept name,required"`
	B    string `json:"b" jsonschema:"description=Second concept name,required"`
	Name string `json:"name,omitempty" jsonschema:"description=Name for the derived concept (default depends on operation)"`
}

// RelationDelta reports relationship changes from an operation.
type RelationDelta struct {
	Added   []RelationView `json:"added,omitempty"`
	Removed []RelationView `json:"removed,omitempty"`
}

// AlgebraOutput defines the output for the derivation tools.
type AlgebraOutput struct {
	Concept   ConceptListItem `json:"concept" jsonschema:"description=The derived concept"`
	Delta     RelationDelta   `json:"delta"`
	Notes     string          `json:"notes"`
	Persisted bool            `json:"persisted" jsonschema:"description=Whether the derived concept was saved to the workspace"`
}

// BindInput defines the input for engram_bind.
type BindInput struct {
	Source      string `json:"source" jsonschema:"description=Source concept name,required"`
	Target      string `json:"target" jsonschema:"description=Target concept name,required"`
	Relation    string `json:"relation" jsonschema:"description=Relation type (e.g. IS_A, PART_OF),required"`
	Description string `json:"description,omitempty" jsonschema:"description=Edge description"`
}

// BindOutput defines the output for engram_bind.
type BindOutput struct {
	Delta RelationDelta `json:"delta"`
	Notes string        `json:"notes"`
}

// GraphInput defines the input for engram_graph.
type GraphInput struct {
	Format string `json:"format,omitempty" jsonschema:"description=Output format: 'dot' or 'json' (default 'json')"`
}

// GraphOutput defines the output for engram_graph.
type GraphOutput struct {
	Format    string      `json:"format"`
	Graph     interface{} `json:"graph" jsonschema:"description=DOT string or JSON graph document"`
	NodeCount int         `json:"node_count"`
	EdgeCount int         `json:"edge_count"`
}

// SeedInput defines the input for engram_seed.
type SeedInput struct{}

// SeedOutput defines the output for engram_seed.
type SeedOutput struct {
	Concepts []string `json:"concepts" jsonschema:"description=Names of seeded concepts"`
	Message  string   `json:"message"`
}
